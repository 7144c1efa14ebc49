package llm

import "context"

// placeholderLocalKey stands in for providers that run with no real API
// key.
const placeholderLocalKey = "ollama-local"

// newOllamaClient builds the OpenAI-compatible adapter with the
// max_tokens→num_predict translation and placeholder-key substitution
// Ollama requires. Ollama exposes an OpenAI-compatible /v1/chat/completions
// surface as well as its native /api/generate; this module uses the
// compatible surface and rewrites the one divergent parameter.
func newOllamaClient(spec ModelSpec) Client {
	if spec.APIKey == "" {
		spec.APIKey = placeholderLocalKey
	}
	if spec.BaseURL == "" {
		spec.BaseURL = "http://localhost:11434/v1"
	}
	base := newOpenAICompatibleClient(spec).(*openAICompatibleClient)
	return &ollamaClient{inner: base}
}

type ollamaClient struct {
	inner *openAICompatibleClient
}

func (o *ollamaClient) Generate(ctx context.Context, req Request) (Response, error) {
	// Ollama's OpenAI-compatible endpoint accepts max_tokens directly, but
	// its native options use num_predict; Extras carries the translated
	// value through for agents that bypass the compatible surface.
	if req.Extras == nil {
		req.Extras = map[string]any{}
	}
	req.Extras["num_predict"] = req.MaxTokens
	return o.inner.Generate(ctx, req)
}

func (o *ollamaClient) CountTokens(text string) int {
	return o.inner.CountTokens(text)
}
