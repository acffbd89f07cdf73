package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope selects which policy limits a request counts against.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeRead   Scope = "read"
	ScopeWrite  Scope = "write"
)

// MetadataKey is the huma operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig tunes rate limiting for one operation.
//
// Non-empty Limits replace the policy for the endpoint and Scope is then
// ignored. Without Limits, Scope (or the HTTP method when Scope is empty)
// picks the policy limits.
type EndpointConfig struct {
	Scope Scope

	// Namespace keys counters by namespace and client instead of by route, so
	// several operations can read or consume the same window.
	Namespace string

	Limits []LimitConfig

	// Disabled lets every request through without touching the store.
	Disabled bool
}

// ScopeResolver maps a request to the scopes it counts against.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// MethodScopeResolver treats safe methods as reads and everything else as writes.
type MethodScopeResolver struct{}

func NewMethodScopeResolver() *MethodScopeResolver {
	return &MethodScopeResolver{}
}

func (r *MethodScopeResolver) Resolve(ctx huma.Context) []Scope {
	return []Scope{ScopeGlobal, methodScope(ctx.Method())}
}

func methodScope(method string) Scope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ScopeRead
	default:
		return ScopeWrite
	}
}

// OperationScopeResolver prefers the Scope of the operation's EndpointConfig
// and falls back to MethodScopeResolver.
type OperationScopeResolver struct {
	fallback *MethodScopeResolver
}

func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{fallback: NewMethodScopeResolver()}
}

func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	if cfg := GetEndpointConfig(ctx); cfg != nil && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	return r.fallback.Resolve(ctx)
}

// EndpointKey returns the counter key for clientKey on the route template path.
func EndpointKey(cfg *EndpointConfig, clientKey, path string) string {
	if cfg != nil && cfg.Namespace != "" {
		return cfg.Namespace + ":" + clientKey
	}

	return clientKey + ":" + path
}

// GetEndpointConfig returns the operation's EndpointConfig, or nil when the
// operation has none.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
