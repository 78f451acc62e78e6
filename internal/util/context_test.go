package util

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIPContext(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		expected string
	}{
		{name: "Valid IPv4", ip: "192.168.1.1", expected: "192.168.1.1"},
		{
			name:     "Valid IPv6",
			ip:       "2001:0db8:85a3:0000:0000:8a2e:0370:7334",
			expected: "2001:0db8:85a3:0000:0000:8a2e:0370:7334",
		},
		{name: "Empty IP", ip: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := SetIPContext(context.Background(), tt.ip)
			assert.NotNil(t, ctx)
			assert.Equal(t, tt.expected, GetIPFromContext(ctx))
		})
	}
}

func TestUserIDContext(t *testing.T) {
	ctx := SetUserIDContext(context.Background(), "user-1")
	assert.Equal(t, "user-1", GetUserIDFromContext(ctx))
	assert.Empty(t, GetUserIDFromContext(context.Background()))
	assert.Empty(t, GetUserIDFromContext(SetUserIDContext(context.Background(), "")))
}

func TestContextChaining(t *testing.T) {
	type testKey int
	const testKeyOther testKey = 0

	ctx := context.WithValue(context.Background(), testKeyOther, "other_value")
	ctx = SetIPContext(ctx, "192.168.1.1")
	ctx = SetUserIDContext(ctx, "user-1")

	assert.Equal(t, "192.168.1.1", GetIPFromContext(ctx))
	assert.Equal(t, "user-1", GetUserIDFromContext(ctx))
	assert.Equal(t, "other_value", ctx.Value(testKeyOther))
}
