// Package client holds the outbound adapters for the text-generation
// service: a plain JSON agent endpoint and any OpenAI-compatible API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// AgentClient calls an HTTP agent exposing POST /v1/generate.
type AgentClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewAgentClient creates a new AgentClient.
func NewAgentClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *AgentClient {
	return &AgentClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
	}
}

// Generate sends the prompt to the agent and returns its text.
func (c *AgentClient) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResponse, error) {
	ctx, span := tracer.Start(ctx, "AgentClient.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("advice.context", string(req.Context)),
		attribute.Int("prompt.length", len(req.Prompt)),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	result, err := c.cb.Execute(func() (any, error) {
		var out domain.GenerationResponse
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
			if err != nil {
				return resilience.Permanent(err)
			}
			httpReq.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				statusErr := fmt.Errorf("agent API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return resilience.Permanent(statusErr)
				}
				return statusErr
			}

			return json.NewDecoder(resp.Body).Decode(&out)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &out, nil
	})

	if err != nil {
		span.RecordError(err)
		return nil, &domain.ErrExternalService{Service: "agent", Err: err}
	}

	resp := result.(*domain.GenerationResponse)
	span.SetAttributes(attribute.Int("tokens.total", resp.TokensUsed.TotalTokens))
	return resp, nil
}
