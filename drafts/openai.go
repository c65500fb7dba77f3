package drafts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	systemPrompt = "You write short, helpful Reddit replies for someone doing " +
		"founder-led sales. Be genuinely useful first, mention the product once, " +
		"never sound like an ad. Keep it under 120 words."
)

// OpenAIClient generates drafts through an OpenAI-compatible chat completions
// endpoint.
type OpenAIClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewOpenAIClient(client *http.Client, baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &OpenAIClient{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Generate(ctx context.Context, leadText string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Draft a reply to this Reddit lead:\n\n" + leadText},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return "", fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrProvider, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrProvider)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
