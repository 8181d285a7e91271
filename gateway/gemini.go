package gateway

import (
	"context"

	genai "google.golang.org/genai"
)

// GeminiProvider implements Provider on top of the Google Gemini API.
// This is the default provider; the original tool targets Google AI Studio
// keys.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a provider for the given Google AI Studio key.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, NewError(KindInvalidCredential, "empty API key", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	return &GeminiProvider{client: client}, nil
}

// Name identifies the provider in logs.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Complete sends a single-content generation request and returns the
// response text. Failures are classified into the gateway taxonomy.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string, cfg CallConfig) (string, error) {
	temperature := cfg.Temperature
	maxTokens := int32(cfg.MaxOutputTokens)

	genConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if maxTokens > 0 {
		genConfig.MaxOutputTokens = maxTokens
	}

	resp, err := p.client.Models.GenerateContent(ctx, cfg.Model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, genConfig)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", NewError(KindMalformedResponse, "model returned an empty response", nil)
	}
	return text, nil
}
