package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gammahazard/edge-protocol-demo/internal/analytics"
	"github.com/gammahazard/edge-protocol-demo/internal/messaging"
	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler serves the shortener endpoints. Analytics events are published
// best effort: a failed publish is logged and the request still succeeds.
type URLHandler struct {
	repo       shortener.Repository
	strategies map[shortener.StrategyName]shortener.Strategy
	baseURL    string
	created    messaging.Publish[analytics.URLCreatedEvent]
	accessed   messaging.Publish[analytics.URLAccessedEvent]
	logger     *zap.Logger
	now        func() time.Time
}

func NewURLHandler(
	repo shortener.Repository,
	baseURL string,
	strategies map[shortener.StrategyName]shortener.Strategy,
	created messaging.Publish[analytics.URLCreatedEvent],
	accessed messaging.Publish[analytics.URLAccessedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		repo:       repo,
		strategies: strategies,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		created:    created,
		accessed:   accessed,
		logger:     logger,
		now:        time.Now,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	name := req.Body.Strategy
	if name == "" {
		name = shortener.StrategyToken
	}

	strategy, ok := h.strategies[name]
	if !ok {
		return nil, huma.Error400BadRequest("invalid strategy: must be 'token' or 'hash'")
	}

	shortURL, err := strategy.Shorten(ctx, req.Body.URL)
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return nil, huma.Error400BadRequest(shortener.ErrInvalidURL.Error())
	case err != nil:
		h.logger.Error("failed to save url", zap.String("strategy", string(name)), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	meta := RequestMetaFromContext(ctx)
	h.logPublish(string(shortURL.Code), h.created(ctx, &analytics.URLCreatedEvent{
		Code:        string(shortURL.Code),
		OriginalURL: shortURL.OriginalURL,
		URLHash:     string(shortURL.URLHash),
		Strategy:    string(name),
		CreatedAt:   shortURL.CreatedAt,
		ClientID:    meta.ClientID,
		UserAgent:   meta.UserAgent,
	}))

	link := h.baseURL + "/" + string(shortURL.Code)

	resp := &CreateShortURLResponse{Location: link}
	resp.Body.Code = string(shortURL.Code)
	resp.Body.ShortURL = link
	resp.Body.OriginalURL = shortURL.OriginalURL

	return resp, nil
}

// RedirectToURL answers 301. The click is counted by the analytics consumer.
func (h *URLHandler) RedirectToURL(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	shortURL, err := h.lookup(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	meta := RequestMetaFromContext(ctx)
	h.logPublish(req.Code, h.accessed(ctx, &analytics.URLAccessedEvent{
		Code:       req.Code,
		AccessedAt: h.now().UTC(),
		ClientID:   meta.ClientID,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}))

	return &RedirectResponse{Status: http.StatusMovedPermanently, Location: shortURL.OriginalURL}, nil
}

func (h *URLHandler) GetStats(ctx context.Context, req *CodeRequest) (*StatsResponse, error) {
	shortURL, err := h.lookup(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	resp := &StatsResponse{}
	resp.Body.Code = string(shortURL.Code)
	resp.Body.OriginalURL = shortURL.OriginalURL
	resp.Body.CreatedAt = shortURL.CreatedAt
	resp.Body.Clicks = shortURL.Clicks

	return resp, nil
}

func (h *URLHandler) lookup(ctx context.Context, code string) (*shortener.ShortURL, error) {
	shortURL, err := h.repo.GetByCode(ctx, shortener.Code(code))
	switch {
	case errors.Is(err, shortener.ErrNotFound):
		return nil, huma.Error404NotFound("short url not found")
	case err != nil:
		h.logger.Error("failed to get url", zap.String("code", code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	return shortURL, nil
}

func (h *URLHandler) logPublish(code string, err error) {
	if err != nil {
		h.logger.Error("failed to publish analytics event", zap.String("code", code), zap.Error(err))
	}
}
