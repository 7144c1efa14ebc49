package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// openAICompatibleClient covers OpenAI, Codestral, DeepSeek, and LMStudio:
// providers whose model string passes through unchanged and whose wire
// format is the OpenAI chat-completions shape.
type openAICompatibleClient struct {
	spec       ModelSpec
	httpClient *http.Client
	modelName  func(string) string
}

func newOpenAICompatibleClient(spec ModelSpec) Client {
	return &openAICompatibleClient{
		spec:       spec,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		modelName:  func(m string) string { return m },
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *openAICompatibleClient) baseURL() string {
	if c.spec.BaseURL != "" {
		return c.spec.BaseURL
	}
	return "https://api.openai.com/v1"
}

func (c *openAICompatibleClient) Generate(ctx context.Context, req Request) (Response, error) {
	body := chatCompletionRequest{
		Model:       c.modelName(c.spec.ModelID),
		Messages:    toChatMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: temperature(req.Temperature, c.spec.Temperature),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, newLLMError(c.spec, 1, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Response{}, newLLMError(c.spec, 1, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.spec.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.spec.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, newLLMError(c.spec, 1, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, newLLMError(c.spec, 1, err)
	}
	if resp.StatusCode >= 400 {
		return Response{}, newLLMError(c.spec, 1, fmt.Errorf("provider returned %d: %s", resp.StatusCode, data))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Response{}, newLLMError(c.spec, 1, err)
	}
	if len(parsed.Choices) == 0 {
		return Response{}, newLLMError(c.spec, 1, fmt.Errorf("provider returned no choices"))
	}

	return Response{
		Content: parsed.Choices[0].Message.Content,
		Model:   parsed.Model,
		Usage: &Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}

func (c *openAICompatibleClient) CountTokens(text string) int {
	return approxTokenCount(text)
}

func toChatMessages(msgs []Message) []chatMessage {
	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}
