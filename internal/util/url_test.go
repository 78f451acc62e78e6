package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocalRedirect(t *testing.T) {
	const base = "https://mail.example.com"

	tests := []struct {
		name     string
		target   string
		baseURL  string
		expected bool
	}{
		{"empty", "", base, true},
		{"relative path", "/settings/mailbox?tab=mail", base, true},
		{"same host absolute", "https://mail.example.com/done", base, true},
		{"same host different case", "https://Mail.Example.com/done", base, true},
		{"protocol relative", "//evil.com/path", base, false},
		{"backslash trick", "/\\evil.com", base, false},
		{"other host", "https://evil.com/done", base, false},
		{"javascript scheme", "javascript:alert(1)", base, false},
		{"bare word", "done", base, false},
		{"header injection", "/done\r\nSet-Cookie: x=1", base, false},
		{"absolute without base url", "https://mail.example.com/done", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLocalRedirect(tt.target, tt.baseURL))
		})
	}
}
