package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	openAIBaseURL    = "https://api.openai.com"
	aiTimeout        = 2 * time.Minute
)

// AIProvider is the interface for AI model providers
type AIProvider interface {
	GenerateText(ctx context.Context, prompt string, systemPrompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string, systemPrompt string) (string, error)
	GetProviderName() string
}

// AnthropicProvider implements Claude AI
type AnthropicProvider struct {
	APIKey string
	Model  string
	client *resty.Client
}

// OpenAIProvider implements OpenAI
type OpenAIProvider struct {
	APIKey string
	Model  string
	client *resty.Client
}

func NewAIProvider(provider, apiKey, model string) AIProvider {
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAIProvider(apiKey, model, openAIBaseURL)
	default:
		return NewAnthropicProvider(apiKey, model, anthropicBaseURL)
	}
}

func NewAnthropicProvider(apiKey, model, baseURL string) *AnthropicProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(aiTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", "2023-06-01")
	return &AnthropicProvider{APIKey: apiKey, Model: model, client: client}
}

func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(aiTimeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey)
	return &OpenAIProvider{APIKey: apiKey, Model: model, client: client}
}

func (a *AnthropicProvider) GetProviderName() string {
	return "anthropic"
}

func (a *AnthropicProvider) GenerateText(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":      a.Model,
		"max_tokens": 4096,
		"system":     systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := post(ctx, a.client, "/v1/messages", reqBody, &result); err != nil {
		return "", err
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return result.Content[0].Text, nil
}

// GenerateJSON is the same as GenerateText for Anthropic (no special JSON mode)
func (a *AnthropicProvider) GenerateJSON(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	return a.GenerateText(ctx, prompt, systemPrompt)
}

func (o *OpenAIProvider) GetProviderName() string {
	return "openai"
}

func (o *OpenAIProvider) GenerateText(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	return o.chat(ctx, prompt, systemPrompt, false)
}

// GenerateJSON asks for a JSON object response
func (o *OpenAIProvider) GenerateJSON(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	return o.chat(ctx, prompt, systemPrompt, true)
}

func (o *OpenAIProvider) chat(ctx context.Context, prompt, systemPrompt string, jsonMode bool) (string, error) {
	reqBody := map[string]interface{}{
		"model": o.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens": 4096,
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := post(ctx, o.client, "/v1/chat/completions", reqBody, &result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

func post(ctx context.Context, client *resty.Client, path string, body, out interface{}) error {
	resp, err := client.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode(), resp.String())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
