package llm

// newGroqClient reuses the OpenAI-compatible transport with Groq's
// `groq/` model-prefix routing policy.
func newGroqClient(spec ModelSpec) Client {
	if spec.BaseURL == "" {
		spec.BaseURL = "https://api.groq.com/openai/v1"
	}
	base := newOpenAICompatibleClient(spec).(*openAICompatibleClient)
	base.modelName = groqModelName
	return base
}

// newOpenRouterClient reuses the OpenAI-compatible transport with
// OpenRouter's `openrouter/` prefix and vendor-namespace inference.
func newOpenRouterClient(spec ModelSpec) Client {
	if spec.BaseURL == "" {
		spec.BaseURL = "https://openrouter.ai/api/v1"
	}
	base := newOpenAICompatibleClient(spec).(*openAICompatibleClient)
	base.modelName = openRouterModelName
	return base
}
