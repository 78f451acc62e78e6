package util

import (
	"net/url"
	"strings"
)

// IsLocalRedirect reports whether target may be used as a post-link redirect.
// Accepted: empty, a path rooted at "/" (not "//" and no backslash),
// or an http(s) URL whose host equals the host of baseURL.
func IsLocalRedirect(target, baseURL string) bool {
	if target == "" {
		return true
	}
	if strings.ContainsAny(target, "\r\n\\") {
		return false
	}
	if strings.HasPrefix(target, "//") {
		return false
	}
	if strings.HasPrefix(target, "/") {
		return true
	}

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	base, err := url.Parse(baseURL)
	return err == nil && base.Host != "" && strings.EqualFold(u.Host, base.Host)
}
