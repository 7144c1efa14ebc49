package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroqModelName(t *testing.T) {
	assert.Equal(t, "groq/llama3-70b", groqModelName("llama3-70b"))
}

func TestOpenRouterModelNameInfersVendor(t *testing.T) {
	cases := map[string]string{
		"gemini-1.5-pro": "openrouter/google/gemini-1.5-pro",
		"claude-3-opus":  "openrouter/anthropic/claude-3-opus",
		"mistral-large":  "openrouter/mistralai/mistral-large",
		"deepseek-chat":  "openrouter/deepseek/deepseek-chat",
		"gpt-4o":         "openrouter/openai/gpt-4o",
	}
	for in, want := range cases {
		assert.Equal(t, want, openRouterModelName(in))
	}
}

func TestOpenRouterModelNameKeepsExplicitNamespace(t *testing.T) {
	assert.Equal(t, "openrouter/anthropic/claude-3-opus", openRouterModelName("anthropic/claude-3-opus"))
}

func TestOpenRouterModelNameUnknownPrefix(t *testing.T) {
	assert.Equal(t, "openrouter/some-custom-model", openRouterModelName("some-custom-model"))
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, err := NewClient(ModelSpec{Provider: "not-a-provider"})
	assert.Error(t, err)
}

func TestRegistryCachesSingleInstancePerSpec(t *testing.T) {
	reg := NewRegistry()
	spec := ModelSpec{Provider: "openai", ModelID: "gpt-4o", APIKey: "k"}

	a, err := reg.Get(spec)
	assert.NoError(t, err)
	b, err := reg.Get(spec)
	assert.NoError(t, err)
	assert.Same(t, a, b)
}

func TestApproxTokenCount(t *testing.T) {
	assert.Equal(t, 0, approxTokenCount(""))
	assert.Equal(t, 1, approxTokenCount("hi"))
	assert.Greater(t, approxTokenCount("this is a longer sentence with several words"), 5)
}
