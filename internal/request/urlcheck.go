package request

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// cgnatBlock is 100.64.0.0/10 (RFC 6598), not covered by net.IP helpers.
var cgnatBlock = mustParseCIDR("100.64.0.0/10")

func mustParseCIDR(s string) *net.IPNet {
	_, block, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return block
}

// validateSignedURL checks one pre-signed URL: scheme, object-store host,
// signing parameter, path shape. Source URLs must additionally name a PDF.
func validateSignedURL(raw, side string, isSource bool, opts Options) error {
	if raw == "" {
		return validationError(fmt.Sprintf("%s URL is required", side))
	}

	u, err := url.Parse(raw)
	if err != nil {
		return validationError(fmt.Sprintf("%s is not a valid URL", side))
	}

	switch u.Scheme {
	case "https":
	case "http":
		if !opts.AllowHTTP {
			return validationError(fmt.Sprintf("%s URL must use https", side))
		}
	default:
		return validationError(fmt.Sprintf("%s URL must use https", side))
	}

	if u.Hostname() == "" {
		return validationError(fmt.Sprintf("%s URL has no host", side))
	}
	if !isObjectStoreHost(u.Hostname(), opts.EndpointHosts) {
		return validationError(fmt.Sprintf("%s URL does not point at an object store", side))
	}

	if u.Query().Get("X-Amz-Algorithm") == "" {
		return validationError(fmt.Sprintf("%s URL is not pre-signed (missing signing algorithm)", side))
	}

	if hasTraversal(u.Path) {
		return validationError(fmt.Sprintf("%s URL path contains a traversal segment", side))
	}
	if !validPathCharset(u.EscapedPath()) {
		return validationError(fmt.Sprintf("%s URL path contains unsupported characters", side))
	}

	if isSource && !strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return validationError("source URL must point to a .pdf object")
	}

	return nil
}

// isObjectStoreHost accepts AWS S3 hosts in virtual-hosted or path-style
// form, and any configured endpoint override host (exact or as the parent
// of a virtual-hosted bucket subdomain).
func isObjectStoreHost(host string, endpointHosts []string) bool {
	host = strings.ToLower(host)

	for _, endpoint := range endpointHosts {
		endpoint = strings.ToLower(strings.TrimSpace(endpoint))
		if endpoint == "" {
			continue
		}
		if host == endpoint || strings.HasSuffix(host, "."+endpoint) {
			return true
		}
	}

	if !strings.HasSuffix(host, ".amazonaws.com") {
		return false
	}

	// bucket.s3.amazonaws.com, bucket.s3.us-east-1.amazonaws.com,
	// s3.amazonaws.com, s3.eu-west-2.amazonaws.com, legacy s3-region forms
	rest := strings.TrimSuffix(host, ".amazonaws.com")
	for _, label := range strings.Split(rest, ".") {
		if label == "s3" || strings.HasPrefix(label, "s3-") {
			return true
		}
	}
	return false
}

// hasTraversal reports whether any path segment is "..".
func hasTraversal(path string) bool {
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

// validPathCharset restricts the escaped path to RFC 3986 pchar plus "/".
func validPathCharset(escaped string) bool {
	for i := 0; i < len(escaped); i++ {
		c := escaped[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case strings.IndexByte("-._~!$&'()*+,;=:@/%", c) >= 0:
		default:
			return false
		}
	}
	return true
}

// validateWebhook checks the notification URL and guards against requests
// into internal address space, both by literal IP and by what the
// hostname resolves to.
func validateWebhook(ctx context.Context, raw string, opts Options) error {
	u, err := url.Parse(raw)
	if err != nil {
		return validationError("webhook is not a valid URL")
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return validationError("webhook URL must use http or https")
	}
	host := u.Hostname()
	if host == "" {
		return validationError("webhook URL has no host")
	}

	if opts.AllowPrivateWebhook {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		if isDisallowedIP(ip) {
			return validationError("webhook host is not reachable from this service")
		}
		return nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return validationError("webhook host could not be resolved")
	}
	for _, addr := range addrs {
		if isDisallowedIP(addr.IP) {
			return validationError("webhook host resolves to an address that is not reachable from this service")
		}
	}
	return nil
}

// isDisallowedIP rejects loopback, private, link-local, CGNAT and
// unspecified addresses as webhook destinations.
func isDisallowedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() ||
		cgnatBlock.Contains(ip)
}
