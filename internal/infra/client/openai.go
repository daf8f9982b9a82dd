package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/boddenberg/controletok-go/internal/domain"
	"github.com/boddenberg/controletok-go/internal/infra/resilience"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// OpenAIConfig configures an OpenAI-compatible chat completion backend.
// Gemini is reachable through its OpenAI compatibility endpoint.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// OpenAIClient generates text through the chat completions API.
type OpenAIClient struct {
	api   *openai.Client
	model string
	cb    *gobreaker.CircuitBreaker
	cfg   resilience.Config
}

// NewOpenAIClient creates a client for any OpenAI-compatible endpoint.
func NewOpenAIClient(httpClient *http.Client, oc OpenAIConfig, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *OpenAIClient {
	apiCfg := openai.DefaultConfig(oc.APIKey)
	if oc.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(oc.BaseURL, "/")
	}
	if httpClient != nil {
		apiCfg.HTTPClient = httpClient
	}
	return &OpenAIClient{
		api:   openai.NewClientWithConfig(apiCfg),
		model: oc.Model,
		cb:    cb,
		cfg:   cfg,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResponse, error) {
	ctx, span := tracer.Start(ctx, "OpenAIClient.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.String("advice.context", string(req.Context)),
	)

	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}

	result, err := c.cb.Execute(func() (any, error) {
		var out openai.ChatCompletionResponse
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			resp, err := c.api.CreateChatCompletion(ctx, chatReq)
			if err != nil {
				if isPermanent(err) {
					return resilience.Permanent(err)
				}
				return err
			}
			out = resp
			return nil
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &out, nil
	})

	if err != nil {
		span.RecordError(err)
		return nil, &domain.ErrExternalService{Service: "openai", Err: err}
	}

	resp := result.(*openai.ChatCompletionResponse)
	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}

	span.SetAttributes(attribute.Int("tokens.total", resp.Usage.TotalTokens))
	return &domain.GenerationResponse{
		Text: text,
		TokensUsed: domain.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// isPermanent reports 4xx API errors other than rate limiting.
func isPermanent(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 &&
			apiErr.HTTPStatusCode != http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 400 && reqErr.HTTPStatusCode < 500 &&
			reqErr.HTTPStatusCode != http.StatusTooManyRequests
	}
	return false
}
