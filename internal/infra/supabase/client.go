// Package supabase provides a client for Supabase PostgREST, used as a
// remote backend for the key-value store.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/controletok-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		cfg:            cfg,
		logger:         logger,
	}
}

// do executes an authenticated request against /rest/v1/<path>. A 4xx
// answer other than 429 is not retried.
func (c *Client) do(ctx context.Context, method, path string, body []byte, prefer string) ([]byte, error) {
	result, err := c.cb.Execute(func() (any, error) {
		var out []byte
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			var reader io.Reader
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path), reader)
			if err != nil {
				return resilience.Permanent(err)
			}

			req.Header.Set("apikey", c.apiKey)
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
			req.Header.Set("Content-Type", "application/json")
			if prefer != "" {
				req.Header.Set("Prefer", prefer)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Error("supabase: request failed",
					zap.String("method", method),
					zap.String("path", path),
					zap.Error(err),
				)
				return err
			}
			defer resp.Body.Close()

			raw, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				c.logger.Warn("supabase: non-2xx response",
					zap.String("method", method),
					zap.String("path", path),
					zap.Int("status", resp.StatusCode),
					zap.String("body", string(raw)),
				)
				statusErr := fmt.Errorf("supabase %s %s returned %d: %s", method, path, resp.StatusCode, string(raw))
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return resilience.Permanent(statusErr)
				}
				return statusErr
			}

			c.logger.Debug("supabase: request OK",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
			)
			out = raw
			return nil
		})
		return out, innerErr
	})
	if err != nil {
		return nil, err
	}
	raw, _ := result.([]byte)
	return raw, nil
}
