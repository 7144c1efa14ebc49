// Package llm provides a uniform call surface over the many LLM provider
// families the agent pool (pkg/agent) can be configured against: OpenAI,
// Anthropic, Gemini, Mistral, Ollama, Codestral, DeepSeek, LMStudio,
// OpenRouter and Groq. Provider-specific quirks (Groq/OpenRouter model
// prefixing, Ollama's token-count parameter) live inside the concrete
// adapters; callers only ever see Client.
package llm

import (
	"context"
	"fmt"
)

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation passed to Generate.
type Message struct {
	Role    Role
	Content string
}

// Request is the provider-agnostic call contract.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature *float64
	Stream      bool
	Extras      map[string]any
}

// Usage reports token accounting when the provider exposes it.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the provider-agnostic call result.
type Response struct {
	Content string
	Model   string
	Usage   *Usage
}

// Client is the uniform surface every provider adapter implements.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
	CountTokens(text string) int
}

// ModelSpec normalizes the mixed provider-config shape into a single
// struct passed uniformly to the facade.
type ModelSpec struct {
	Provider    string
	ModelID     string
	APIKey      string
	BaseURL     string
	Temperature *float64
}

// knownVendorPrefix maps a model-name prefix to the vendor namespace
// OpenRouter expects when one wasn't already supplied.
var knownVendorPrefix = map[string]string{
	"gemini":   "google",
	"claude":   "anthropic",
	"mistral":  "mistralai",
	"codestral": "mistralai",
	"deepseek": "deepseek",
	"gpt":      "openai",
	"o3":       "openai",
}

// NewClient builds the concrete adapter for spec.ModelSpec.Provider. This
// is the registry's factory, following the same "tag selects concrete
// implementation" shape as pkg/dbadapter.Factory and pkg/vectorstore.Factory.
func NewClient(spec ModelSpec) (Client, error) {
	switch normalizeProvider(spec.Provider) {
	case "openai", "codestral", "deepseek", "lmstudio", "mistral":
		return newOpenAICompatibleClient(spec), nil
	case "anthropic":
		return newAnthropicClient(spec), nil
	case "gemini":
		return newGenAIClient(spec), nil
	case "ollama", "llama":
		return newOllamaClient(spec), nil
	case "groq":
		return newGroqClient(spec), nil
	case "openrouter":
		return newOpenRouterClient(spec), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", spec.Provider)
	}
}

func normalizeProvider(p string) string {
	switch p {
	case "OpenAI", "openai":
		return "openai"
	case "Anthropic", "anthropic":
		return "anthropic"
	case "Gemini", "gemini":
		return "gemini"
	case "Mistral", "mistral":
		return "mistral"
	case "Ollama", "ollama":
		return "ollama"
	case "Codestral", "codestral":
		return "codestral"
	case "DeepSeek", "deepseek":
		return "deepseek"
	case "LMStudio", "lmstudio":
		return "lmstudio"
	case "OpenRouter", "openrouter":
		return "openrouter"
	case "Groq", "groq":
		return "groq"
	case "Llama", "llama":
		return "llama"
	default:
		return p
	}
}

// groqModelName applies the `groq/` routing prefix. A model already
// namespaced by a known vendor prefix is kept verbatim and re-prefixed,
// never double-namespaced.
func groqModelName(model string) string {
	return "groq/" + model
}

// openRouterModelName applies the `openrouter/` prefix, inferring a vendor
// namespace from knownVendorPrefix when the caller didn't supply one.
func openRouterModelName(model string) string {
	if containsSlash(model) {
		return "openrouter/" + model
	}
	for prefix, vendor := range knownVendorPrefix {
		if hasPrefixFold(model, prefix) {
			return "openrouter/" + vendor + "/" + model
		}
	}
	return "openrouter/" + model
}

func containsSlash(s string) bool {
	for _, r := range s {
		if r == '/' {
			return true
		}
	}
	return false
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		a, b := s[i], prefix[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// approxTokenCount is a stand-in character-per-token heuristic shared by
// adapters that don't expose a real tokenizer. 4 chars/token is the common
// rough ratio used for English prose.
func approxTokenCount(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		return 1
	}
	return n
}
