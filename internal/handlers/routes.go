package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	URL        *URLHandler
	RateLimit  *RateLimitHandler
	Capability *CapabilityHandler
}

func limitMetadata(cfg ratelimit.EndpointConfig) map[string]any {
	return map[string]any{ratelimit.MetadataKey: cfg}
}

// RegisterRoutes registers all routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, h Handlers) {
	registerURLRoutes(api, h.URL)
	registerEdgeRoutes(api, h.RateLimit, h.Capability)
}

func registerURLRoutes(api huma.API, urlHandler *URLHandler) {
	// Stricter limits for writes
	huma.Register(api, huma.Operation{
		OperationID: "create-short-url",
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short URL",
		Description: "Creates a shortened URL using the specified strategy (token or hash).",
		Tags:        []string{"URLs"},
		Metadata: limitMetadata(ratelimit.EndpointConfig{
			Limits: []ratelimit.LimitConfig{
				{Window: time.Minute, Max: 10},
				{Window: time.Hour, Max: 100},
				{Window: 24 * time.Hour, Max: 500},
			},
		}),
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"URLs"},
		Metadata: limitMetadata(ratelimit.EndpointConfig{
			Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 1000}},
		}),
	}, urlHandler.RedirectToURL)

	// Falls back to the read scope of the default policy
	huma.Register(api, huma.Operation{
		OperationID: "get-stats",
		Method:      http.MethodGet,
		Path:        "/stats/{code}",
		Summary:     "Short URL stats",
		Description: "Returns the original URL, creation time and click count.",
		Tags:        []string{"URLs"},
	}, urlHandler.GetStats)
}

func registerEdgeRoutes(api huma.API, rateHandler *RateLimitHandler, capHandler *CapabilityHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "protected",
		Method:      http.MethodGet,
		Path:        ProtectedPath,
		Summary:     "Rate limited resource",
		Description: "Succeeds while the caller is inside its sliding window.",
		Tags:        []string{"Rate limiter"},
		Metadata:    limitMetadata(rateHandler.Config()),
	}, rateHandler.Protected)

	huma.Register(api, huma.Operation{
		OperationID: "rate-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Rate limit status",
		Description: "Reports the caller's window on the protected resource without consuming it.",
		Tags:        []string{"Rate limiter"},
		Metadata:    limitMetadata(ratelimit.EndpointConfig{Disabled: true}),
	}, rateHandler.Status)

	huma.Register(api, huma.Operation{
		OperationID: "capability-probe",
		Method:      http.MethodGet,
		Path:        "/api/capability",
		Summary:     "Probe a capability",
		Tags:        []string{"Capabilities"},
		Metadata:    limitMetadata(capHandler.Config()),
	}, capHandler.Probe)

	huma.Register(api, huma.Operation{
		OperationID: "capabilities",
		Method:      http.MethodGet,
		Path:        "/api/capabilities",
		Summary:     "List capabilities",
		Tags:        []string{"Capabilities"},
		Metadata:    limitMetadata(ratelimit.EndpointConfig{Disabled: true}),
	}, capHandler.List)

	huma.Register(api, huma.Operation{
		OperationID: "vote",
		Method:      http.MethodPost,
		Path:        "/api/vote",
		Summary:     "2oo3 sensor vote",
		Tags:        []string{"Telemetry"},
		Metadata:    limitMetadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead}),
	}, Vote)

	huma.Register(api, huma.Operation{
		OperationID: "parse-frame",
		Method:      http.MethodPost,
		Path:        "/api/parse",
		Summary:     "Parse a Modbus RTU frame",
		Tags:        []string{"Telemetry"},
		Metadata:    limitMetadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead}),
	}, ParseFrame)
}
