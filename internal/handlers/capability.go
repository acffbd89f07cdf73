package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gammahazard/edge-protocol-demo/internal/capability"
	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
)

// DefaultCapabilityLimit is the number of probes a client may run per minute.
const DefaultCapabilityLimit = 30

// CapabilityHandler serves the capability explorer.
type CapabilityHandler struct {
	prober *capability.Prober
	limit  int64
}

func NewCapabilityHandler(prober *capability.Prober, limit int64) *CapabilityHandler {
	return &CapabilityHandler{prober: prober, limit: limit}
}

// Config shares one per-minute window across all probe types.
func (h *CapabilityHandler) Config() ratelimit.EndpointConfig {
	return ratelimit.EndpointConfig{
		Namespace: "capability-demo",
		Limits:    []ratelimit.LimitConfig{{Window: time.Minute, Max: h.limit}},
	}
}

func (h *CapabilityHandler) Probe(ctx context.Context, req *CapabilityRequest) (*CapabilityResponse, error) {
	t, err := capability.ParseType(req.Test)
	if err != nil {
		return nil, huma.Error400BadRequest(capability.ErrUnknown.Error())
	}

	return &CapabilityResponse{Body: h.prober.Probe(ctx, t)}, nil
}

func (h *CapabilityHandler) List(_ context.Context, _ *struct{}) (*CapabilitiesResponse, error) {
	return &CapabilitiesResponse{
		CacheControl: "public, max-age=60",
		Body:         capability.Catalog(),
	}, nil
}
