// Package client is the transport gateway to the optimization service.
// It performs exactly one HTTP exchange per call and never interprets payloads.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/vire-optimizer/internal/common"
	"github.com/bobmcallan/vire-optimizer/internal/config"
	"golang.org/x/time/rate"
)

// maxResponseSize caps the response body read from the service.
const maxResponseSize = 1 << 20 // 1MB

// ErrResponseTooLarge is returned when a response body exceeds maxResponseSize.
// A response was obtained, so it is not a TransportError.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// Response is a raw HTTP response of any status.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// TransportError is returned when no HTTP response was obtained: dial, DNS,
// timeout, cancellation or a failed body read. An HTTP error status is not a
// TransportError.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to reach optimization service (%s %s): %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Gateway is an HTTP client bound to one base URL.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// NewGateway creates a gateway targeting baseURL with an explicit request timeout.
func NewGateway(baseURL string, timeout time.Duration, logger *common.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetRateLimit throttles outgoing requests to rps per second. rps <= 0 disables it.
func (g *Gateway) SetRateLimit(rps float64) {
	if rps <= 0 {
		g.limiter = nil
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// BaseURL returns the configured service URL.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Get performs GET path.
func (g *Gateway) Get(ctx context.Context, path string) (*Response, error) {
	return g.do(ctx, http.MethodGet, path, nil, nil)
}

// Put performs PUT path with body encoded as JSON. headers are copied onto
// the request after the defaults.
func (g *Gateway) Put(ctx context.Context, path string, body any, headers http.Header) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	return g.do(ctx, http.MethodPut, path, payload, headers)
}

func (g *Gateway) do(ctx context.Context, method, path string, payload []byte, headers http.Header) (*Response, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: method, Path: path, Err: err}
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", config.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	cid := common.CorrelationID(ctx)
	if cid != "" {
		req.Header.Set("X-Correlation-ID", cid)
	}
	for key, vals := range headers {
		req.Header.Del(key)
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}

	g.logger.Debug().Str("correlation_id", cid).Str("method", method).Str("path", path).Msg("gateway request")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		g.logger.Warn().Str("correlation_id", cid).Str("method", method).Str("path", path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("gateway request failed")
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if len(body) > maxResponseSize {
		g.logger.Warn().Str("correlation_id", cid).Str("method", method).Str("path", path).Int("status", resp.StatusCode).Int("limit_bytes", maxResponseSize).Msg("gateway response too large")
		return nil, fmt.Errorf("%w: %s %s returned more than %d bytes", ErrResponseTooLarge, method, path, maxResponseSize)
	}

	g.logger.Debug().Str("correlation_id", cid).Str("method", method).Str("path", path).Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("gateway response")

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
