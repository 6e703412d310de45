package visitors

import (
	"net"
	"net/http"
	"strings"
)

// Proxy headers consulted for the visitor address, in priority order.
var ipHeaders = []string{"X-Forwarded-For", "CF-Connecting-IP", "X-Real-IP"}

// ClientIP extracts the originating address of a request. X-Forwarded-For
// may carry a proxy chain; only the first hop counts. Falls back to the
// socket address when no proxy header is present.
func ClientIP(r *http.Request) string {
	for _, header := range ipHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		first, _, _ := strings.Cut(value, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
