package handlers

import (
	"time"

	"github.com/gammahazard/edge-protocol-demo/internal/capability"
	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
	"github.com/gammahazard/edge-protocol-demo/internal/telemetry"
)

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL      string                 `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"url"`
		Strategy shortener.StrategyName `doc:"Token or hash, default token" enum:"token,hash" json:"strategy,omitempty"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     struct {
		Code        string `doc:"The short code"     example:"abc123"                             json:"code"`
		ShortURL    string `doc:"The full short URL" example:"http://localhost:8888/abc123"       json:"shortUrl"`
		OriginalURL string `doc:"The original URL"   example:"https://example.com/very/long/path" json:"originalUrl"`
	}
}

// CodeRequest addresses a short URL by code.
type CodeRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// RedirectResponse sends the client on to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// StatsResponse reports a short URL and its click count.
type StatsResponse struct {
	Body struct {
		Code        string    `json:"code"`
		OriginalURL string    `json:"originalUrl"`
		CreatedAt   time.Time `json:"createdAt"`
		Clicks      int64     `json:"clicks"`
	}
}

// ProtectedRequest carries the edge ray id used to report the serving location.
type ProtectedRequest struct {
	CFRay string `header:"CF-Ray" doc:"Edge ray id, e.g. 8a1b2c3d4e5f-LAX"`
}

// ProtectedResponse is returned by the rate limited demo endpoint.
type ProtectedResponse struct {
	Body struct {
		Message      string `json:"message"`
		Timestamp    int64  `doc:"Unix seconds" json:"timestamp"`
		EdgeLocation string `json:"edgeLocation"`
	}
}

// RateStatusResponse reports a client's window without consuming it.
type RateStatusResponse struct {
	CacheControl string `header:"Cache-Control"`
	Body         struct {
		ClientID          string `doc:"Truncated client identity" json:"clientId"`
		RequestsMade      int64  `json:"requestsMade"`
		RequestsRemaining int64  `json:"requestsRemaining"`
		Limit             int64  `json:"limit"`
		ResetInSeconds    int64  `json:"resetInSeconds"`
	}
}

// CapabilityRequest selects the capability to probe.
type CapabilityRequest struct {
	Test string `doc:"fetch, kv, filesystem, sockets or subprocess" query:"test"`
}

// CapabilityResponse is the outcome of one probe.
type CapabilityResponse struct {
	Body capability.Result
}

// CapabilitiesResponse lists every capability.
type CapabilitiesResponse struct {
	CacheControl string `header:"Cache-Control"`
	Body         []capability.Entry
}

// VoteRequest carries three redundant sensor readings.
type VoteRequest struct {
	Body struct {
		Readings []float64 `doc:"Exactly three readings" json:"readings"`
	}
}

// VoteResponse is the 2oo3 vote outcome.
type VoteResponse struct {
	Body telemetry.VoteResult
}

// ParseFrameRequest carries a hex-encoded Modbus RTU frame.
type ParseFrameRequest struct {
	Body struct {
		Frame string `doc:"Hex-encoded frame" example:"01030000000AC5CD" json:"frame"`
	}
}

// ParseFrameResponse is a decoded Modbus RTU frame.
type ParseFrameResponse struct {
	Body struct {
		DeviceID     uint8  `json:"deviceId"`
		FunctionCode uint8  `json:"functionCode"`
		Function     string `json:"function"`
		Data         []int  `json:"data"`
		CRC          string `json:"crc"`
		CRCValid     bool   `json:"crcValid"`
	}
}
