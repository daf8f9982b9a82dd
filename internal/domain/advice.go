package domain

import "time"

// ============================================================
// Consultor IA
// ============================================================

// GenerationRequest é o payload enviado ao gerador de texto.
type GenerationRequest struct {
	Prompt  string  `json:"prompt"`
	Context Context `json:"context"`
}

// GenerationResponse é a resposta do gerador de texto.
type GenerationResponse struct {
	Text       string     `json:"text"`
	TokensUsed TokenUsage `json:"tokens_used"`
}

// TokenUsage rastreia o consumo de tokens do LLM para monitoramento de custos.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Advice é a análise entregue ao usuário. Fallback indica que o texto é uma
// mensagem fixa (sem dados ou falha do gerador).
type Advice struct {
	Text        string    `json:"text"`
	Context     Context   `json:"context"`
	Fallback    bool      `json:"fallback"`
	Cached      bool      `json:"cached"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// AdviceMetrics is returned by GET /v1/metrics/advice.
type AdviceMetrics struct {
	TotalRequests       int64   `json:"totalRequests"`
	ErrorRate           float64 `json:"errorRate"`
	FallbackRate        float64 `json:"fallbackRate"`
	AvgTokensPerRequest float64 `json:"avgTokensPerRequest"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	Period              string  `json:"period"`
}
