package gateway

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider on top of the OpenAI-compatible chat
// completion API. A BaseURL override lets it target any compatible endpoint,
// including local inference servers.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a provider for the given API key. When baseURL is
// non-empty it overrides the default OpenAI endpoint.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(clientConfig)}
}

// Name identifies the provider in logs.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete sends a single-message chat completion request and returns the
// response text. Failures are classified into the gateway taxonomy.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, cfg CallConfig) (string, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   cfg.MaxOutputTokens,
			Temperature: cfg.Temperature,
		},
	)

	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewError(KindMalformedResponse, "no response choices returned", nil)
	}

	return resp.Choices[0].Message.Content, nil
}
