package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
	"go.uber.org/zap"
)

// ProtectedPath is the rate limited demo endpoint.
const ProtectedPath = "/api/protected"

// RateLimitHandler serves the protected demo endpoint and its status report.
type RateLimitHandler struct {
	limiter *ratelimit.PolicyLimiter
	config  ratelimit.EndpointConfig
	now     func() time.Time
	logger  *zap.Logger
}

// NewRateLimitHandler reports on the window that config applies to ProtectedPath.
// config must carry exactly one limit.
func NewRateLimitHandler(
	limiter *ratelimit.PolicyLimiter, config ratelimit.EndpointConfig, now func() time.Time, logger *zap.Logger,
) *RateLimitHandler {
	if now == nil {
		now = time.Now
	}

	return &RateLimitHandler{limiter: limiter, config: config, now: now, logger: logger}
}

// Config is the endpoint configuration to attach to ProtectedPath.
func (h *RateLimitHandler) Config() ratelimit.EndpointConfig {
	return h.config
}

// Protected is only reached once the middleware has admitted the request.
func (h *RateLimitHandler) Protected(_ context.Context, req *ProtectedRequest) (*ProtectedResponse, error) {
	resp := &ProtectedResponse{}
	resp.Body.Message = "You have accessed the protected resource!"
	resp.Body.Timestamp = h.now().Unix()
	resp.Body.EdgeLocation = edgeLocation(req.CFRay)

	return resp, nil
}

// Status reports the caller's window on ProtectedPath without consuming a request.
func (h *RateLimitHandler) Status(ctx context.Context, _ *struct{}) (*RateStatusResponse, error) {
	clientID := RequestMetaFromContext(ctx).ClientID
	if clientID == "" {
		clientID = "unknown"
	}

	if len(h.config.Limits) == 0 {
		return nil, huma.Error500InternalServerError("rate limit not configured")
	}

	key := ratelimit.EndpointKey(&h.config, clientID, ProtectedPath)

	status, err := h.limiter.Status(ctx, key, h.config.Limits[0], h.now())
	if err != nil {
		h.logger.Warn("rate limit status unavailable", zap.String("client_id", clientID), zap.Error(err))

		if errors.Is(err, ratelimit.ErrStoreUnavailable) {
			return nil, huma.Error503ServiceUnavailable("rate limit store unavailable")
		}

		return nil, huma.Error500InternalServerError("rate limit status failed")
	}

	resp := &RateStatusResponse{CacheControl: "public, max-age=2"}
	resp.Body.ClientID = truncateClientID(clientID)
	resp.Body.RequestsMade = status.RequestsMade
	resp.Body.RequestsRemaining = status.Remaining
	resp.Body.Limit = status.Limit
	resp.Body.ResetInSeconds = status.ResetSeconds

	return resp, nil
}

// edgeLocation takes the data center suffix of a ray id such as "8a1b2c3d-LAX".
func edgeLocation(ray string) string {
	if i := strings.LastIndex(ray, "-"); i >= 0 && i < len(ray)-1 {
		return ray[i+1:]
	}

	return "unknown"
}

func truncateClientID(id string) string {
	runes := []rune(id)
	if len(runes) > 8 {
		runes = runes[:8]
	}

	return string(runes) + "..."
}
