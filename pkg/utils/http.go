// Package utils provides common utility functions.
package utils

import (
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// UserAgent identifies outbound requests.
const UserAgent = "JobPosting-Processor/1.0"

// urlPattern accepts a dotted hostname with a 2-6 letter top-level label,
// localhost, or a dotted-quad address, then an optional port and an optional
// path or query.
var urlPattern = regexp.MustCompile(`(?i)^https?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// HTTPHelper provides HTTP utility functions.
type HTTPHelper struct{}

// NewHTTPHelper creates a new HTTP helper.
func NewHTTPHelper() *HTTPHelper {
	return &HTTPHelper{}
}

// IsValidURL reports whether candidate is an absolute http(s) URL with a
// well-formed authority. The scheme prefix must be lowercase; host matching
// is case-insensitive. No network access is performed.
func (h *HTTPHelper) IsValidURL(candidate string) bool {
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		return false
	}

	return urlPattern.MatchString(candidate)
}

// BuildHeaders creates HTTP headers with defaults.
func (h *HTTPHelper) BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	headers.Set("User-Agent", UserAgent)
	headers.Set("Accept", "application/json, text/plain")

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}

// NewHTTPClient returns a client whose every request is bounded by timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{Timeout: timeout, Transport: tr}
}
