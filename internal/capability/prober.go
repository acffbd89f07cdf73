package capability

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/acronis/go-appkit/httpclient"
	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
)

// DefaultFetchURL is the target of the fetch probe.
const DefaultFetchURL = "https://example.com"

// DefaultFetchTimeout bounds a single fetch attempt.
const DefaultFetchTimeout = 5 * time.Second

const probeKey = "capability-demo:probe"

// NewHTTPClient builds the client behind the fetch capability. Each fetch is
// a single attempt bounded by timeout.
func NewHTTPClient(timeout time.Duration) (*http.Client, error) {
	cfg := httpclient.NewConfig()
	cfg.Timeout = timeout
	cfg.Retries.Enabled = false

	client, err := httpclient.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return client, nil
}

// Prober exercises granted capabilities for real and reports refused ones.
type Prober struct {
	client   *http.Client
	store    ratelimit.Store
	fetchURL string
}

// ProberOption customizes a Prober.
type ProberOption func(*Prober)

// WithHTTPClient replaces the client used by the fetch probe.
func WithHTTPClient(client *http.Client) ProberOption {
	return func(p *Prober) {
		p.client = client
	}
}

// WithFetchURL replaces DefaultFetchURL.
func WithFetchURL(url string) ProberOption {
	return func(p *Prober) {
		p.fetchURL = url
	}
}

// NewProber creates a Prober whose kv probe round-trips through store.
func NewProber(store ratelimit.Store, opts ...ProberOption) *Prober {
	p := &Prober{
		store:    store,
		fetchURL: DefaultFetchURL,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		cfg := httpclient.NewConfig()
		cfg.Timeout = DefaultFetchTimeout
		p.client = httpclient.Must(cfg)
	}

	return p
}

// Probe tests capability t. It never fails: problems are reported in the
// Result message.
func (p *Prober) Probe(ctx context.Context, t Type) Result {
	switch t {
	case Fetch:
		return p.fetch(ctx)
	case KVStorage:
		return p.kv(ctx)
	case Filesystem:
		return Result{
			Capability: Filesystem,
			Message:    "BLOCKED: handlers have no filesystem access. No file reads, no file writes, no path lookups.",
		}
	case RawSockets:
		return Result{
			Capability: RawSockets,
			Message:    "BLOCKED: handlers cannot open raw sockets. Outbound traffic is limited to HTTP.",
		}
	case Subprocess:
		return Result{
			Capability: Subprocess,
			Message:    "BLOCKED: handlers cannot spawn subprocesses. No exec, no shell access.",
		}
	default:
		return Result{Capability: t, Message: "BLOCKED: unknown capability"}
	}
}

// fetch reports the capability as granted even when the request itself fails.
func (p *Prober) fetch(ctx context.Context) Result {
	result := Result{Capability: Fetch, Allowed: true}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.fetchURL, nil)
	if err != nil {
		result.Message = fmt.Sprintf("fetch available but request failed: %v", err)

		return result
	}

	resp, err := p.client.Do(req)
	if err != nil {
		result.Message = fmt.Sprintf("fetch available but request failed: %v", err)

		return result
	}

	_ = resp.Body.Close()

	result.Message = fmt.Sprintf("fetch succeeded - status %d", resp.StatusCode)

	return result
}

func (p *Prober) kv(ctx context.Context) Result {
	result := Result{Capability: KVStorage, Allowed: true}
	want := []byte(time.Now().UTC().Format(time.RFC3339Nano))

	if err := p.store.Put(ctx, probeKey, want, time.Minute); err != nil {
		result.Message = fmt.Sprintf("kv storage available but write failed: %v", err)

		return result
	}

	got, found, err := p.store.Get(ctx, probeKey)

	switch {
	case err != nil:
		result.Message = fmt.Sprintf("kv storage available but read failed: %v", err)
	case !found || !bytes.Equal(got, want):
		result.Message = "kv storage available but read back a different value"
	default:
		result.Message = "kv storage round trip succeeded"
	}

	return result
}
