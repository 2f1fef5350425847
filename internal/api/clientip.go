package api

import (
	"net"
	"net/http"
	"strings"
)

const unknownIP = "unknown"

// ipHeaders are consulted in order; the socket address is never used.
var ipHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"X-Vercel-Forwarded-For",
	"Client-IP",
}

// ClientIP returns the visitor address as reported by the proxy in front of us.
// For comma-separated lists the first hop wins.
func ClientIP(r *http.Request) string {
	for _, h := range ipHeaders {
		v := r.Header.Get(h)
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return unknownIP
}

// limiterKey is ClientIP, falling back to the connection's host when no proxy
// header is present so that direct visitors get their own bucket.
func limiterKey(r *http.Request) string {
	if ip := ClientIP(r); ip != unknownIP {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return unknownIP
}
