package request

import (
	"errors"
	"fmt"
	"net/url"
)

// ElideURL renders a URL safe for logging. The query string carries the
// signature and credential material of a pre-signed URL, so it is dropped
// whole; scheme, host and path survive for diagnostics.
func ElideURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid-url]"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}

// MaskCredential hides a credential value, leaving a short identifying
// prefix for values long enough to stay unguessable.
func MaskCredential(value string) string {
	if value == "" {
		return ""
	}
	if len(value) < 8 {
		return "****"
	}
	return value[:4] + "****"
}

// ElideURLError rewrites a url.Error so its message carries the elided
// URL instead of the signed one. The cause stays in the chain for
// errors.Is/As checks; other errors pass through untouched.
func ElideURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s %s: %w", urlErr.Op, ElideURL(urlErr.URL), urlErr.Err)
	}
	return err
}
