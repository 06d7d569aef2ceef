package textutil

import (
	"net/url"
	"strings"
)

// IsHTTPURL reports whether raw is an absolute http(s) URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
