package llm

import (
	"context"

	"google.golang.org/genai"
)

// genaiClient adapts the Gemini family through google.golang.org/genai,
// grounded on theRebelliousNerd-codenerd's internal/embedding/genai.go and
// internal/core/llm_client.go usage of the same SDK for completion calls.
type genaiClient struct {
	spec ModelSpec
}

func newGenAIClient(spec ModelSpec) Client {
	return &genaiClient{spec: spec}
}

func (g *genaiClient) Generate(ctx context.Context, req Request) (Response, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.spec.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return Response{}, newLLMError(g.spec, 1, err)
	}

	cfg := &genai.GenerateContentConfig{}
	if t := temperature(req.Temperature, g.spec.Temperature); t != nil {
		v := float32(*t)
		cfg.Temperature = &v
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	parts := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		parts = append(parts, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	result, err := client.Models.GenerateContent(ctx, g.spec.ModelID, parts, cfg)
	if err != nil {
		return Response{}, newLLMError(g.spec, 1, err)
	}

	return Response{
		Content: result.Text(),
		Model:   g.spec.ModelID,
	}, nil
}

func (g *genaiClient) CountTokens(text string) int {
	return approxTokenCount(text)
}
