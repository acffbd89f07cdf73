package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// UnknownClient identifies requests with no API key and no usable address.
const UnknownClient = "unknown"

// ClientID returns the identity a request is limited under: "key:<api key>"
// when X-API-Key is present, otherwise "ip:<address>".
func ClientID(ctx huma.Context) string {
	if key := strings.TrimSpace(ctx.Header("X-API-Key")); key != "" {
		return "key:" + key
	}

	if ip := ClientIP(ctx); ip != "" {
		return "ip:" + ip
	}

	return UnknownClient
}

// ClientIP extracts the client address, preferring proxy headers.
func ClientIP(ctx huma.Context) string {
	if ip := strings.TrimSpace(ctx.Header("CF-Connecting-IP")); ip != "" {
		return ip
	}

	// X-Forwarded-For may carry a chain; the first hop is the client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(ctx.Header("X-Real-IP")); xri != "" {
		return xri
	}

	addr := ctx.RemoteAddr()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}
