package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusOK        = "ok"
	StatusDegraded  = "degraded"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// DefaultTimeout bounds each dependency check.
const DefaultTimeout = 2 * time.Second

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// NewRedisChecker checks Redis connectivity.
func NewRedisChecker(client *redis.Client) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// NewPostgresChecker checks PostgreSQL connectivity.
func NewPostgresChecker(pool *pgxpool.Pool) Checker {
	return CheckerFunc(pool.Ping)
}

// Handler reports the health of named dependencies.
type Handler struct {
	checks  map[string]Checker
	timeout time.Duration
}

// NewHandler creates a handler with no dependencies; it reports ok until
// checks are registered with Add.
func NewHandler() *Handler {
	return &Handler{
		checks:  make(map[string]Checker),
		timeout: DefaultTimeout,
	}
}

// Add registers a dependency check under name.
func (h *Handler) Add(name string, checker Checker) *Handler {
	h.checks[name] = checker

	return h
}

// Names returns the registered dependency names in order.
func (h *Handler) Names() []string {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status       string            `json:"status" enum:"ok,degraded"`
		Dependencies map[string]string `json:"dependencies"`
	}
}

// Check pings every dependency. Failing dependencies degrade the status but
// the endpoint still answers 200.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = StatusOK
	resp.Body.Dependencies = make(map[string]string, len(h.checks))

	for _, name := range h.Names() {
		status := StatusHealthy

		if err := h.ping(ctx, h.checks[name]); err != nil {
			status = StatusUnhealthy
			resp.Body.Status = StatusDegraded
		}

		resp.Body.Dependencies[name] = status
	}

	return resp, nil
}

func (h *Handler) ping(ctx context.Context, checker Checker) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	return checker.Ping(ctx)
}

// RegisterRoutes registers health check routes. Health checks are never rate limited.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, h.Check)
}
