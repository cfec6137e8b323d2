package factcheck

import (
	"context"

	"debatewatch-server/pkg/errors"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIProvider verifies claims through the OpenAI chat completions API
type OpenAIProvider struct {
	logger    *logrus.Entry
	apiKey    string
	modelName string

	client *openai.Client
}

// NewOpenAIProvider creates an OpenAI verification provider
func NewOpenAIProvider(logger *logrus.Logger, apiKey, modelName string) *OpenAIProvider {
	return &OpenAIProvider{
		logger:    logger.WithField("component", "openai_provider"),
		apiKey:    apiKey,
		modelName: modelName,
	}
}

// Name returns the provider's registry name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Initialize creates the OpenAI client
func (p *OpenAIProvider) Initialize(ctx context.Context) error {
	if p.apiKey == "" {
		return errors.New("openai API key not configured")
	}

	p.client = openai.NewClient(p.apiKey)
	p.logger.WithField("model", p.modelName).Info("OpenAI provider initialized")
	return nil
}

// Verify checks one claim against the OpenAI API
func (p *OpenAIProvider) Verify(ctx context.Context, req Request) (*Result, error) {
	if p.client == nil {
		return nil, errors.New("openai provider not initialized")
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.modelName,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: providerPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildVerificationPrompt(req),
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "openai completion failed",
			map[string]interface{}{"model": p.modelName})
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	result := parseProviderResponse(resp.Choices[0].Message.Content)
	if result.Source == "" {
		result.Source = "OpenAI analysis"
	}

	p.logger.WithFields(logrus.Fields{
		"verdict":    result.Verdict,
		"confidence": result.ConfidenceScore,
	}).Debug("OpenAI verification completed")

	return result, nil
}
