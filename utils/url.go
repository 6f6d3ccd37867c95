package utils

import (
	"fmt"
	"net/url"
)

// RewriteOrigin moves rawURL onto the scheme and host of base, keeping
// path and query intact. Used to route upstream screenshot URLs through
// a configured mirror. An empty base leaves the URL unchanged.
func RewriteOrigin(rawURL, base string) (string, error) {
	if base == "" {
		return rawURL, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse rewrite base %q: %w", base, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return "", fmt.Errorf("rewrite base %q must carry scheme and host", base)
	}
	parsed.Scheme = baseURL.Scheme
	parsed.Host = baseURL.Host
	return parsed.String(), nil
}
