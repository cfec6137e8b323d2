package factcheck

import (
	"context"
	"fmt"
	"strings"

	"debatewatch-server/pkg/errors"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiProvider verifies claims through the Google Gemini API
type GeminiProvider struct {
	logger    *logrus.Entry
	apiKey    string
	modelName string

	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider creates a Gemini verification provider
func NewGeminiProvider(logger *logrus.Logger, apiKey, modelName string) *GeminiProvider {
	return &GeminiProvider{
		logger:    logger.WithField("component", "gemini_provider"),
		apiKey:    apiKey,
		modelName: modelName,
	}
}

// Name returns the provider's registry name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Initialize creates the Gemini client
func (p *GeminiProvider) Initialize(ctx context.Context) error {
	if p.apiKey == "" {
		return errors.New("gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return errors.Wrap(err, "failed to create Gemini client")
	}

	p.client = client
	p.model = client.GenerativeModel(p.modelName)

	// Fact verdicts should not vary between runs
	temperature := float32(0.2)
	p.model.Temperature = &temperature

	p.logger.WithField("model", p.modelName).Info("Gemini provider initialized")
	return nil
}

// Verify checks one claim against the Gemini API
func (p *GeminiProvider) Verify(ctx context.Context, req Request) (*Result, error) {
	if p.model == nil {
		return nil, errors.New("gemini provider not initialized")
	}

	prompt := buildVerificationPrompt(req)

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, errors.Wrap(err, "gemini generation failed",
			map[string]interface{}{"model": p.modelName})
	}

	raw := collectGeminiText(resp)
	if raw == "" {
		return nil, errors.New("gemini returned an empty response")
	}

	result := parseProviderResponse(raw)
	if result.Source == "" {
		result.Source = "Gemini AI analysis"
	}

	p.logger.WithFields(logrus.Fields{
		"verdict":    result.Verdict,
		"confidence": result.ConfidenceScore,
	}).Debug("Gemini verification completed")

	return result, nil
}

// Close releases the underlying client
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func collectGeminiText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(builder.String())
}

func buildVerificationPrompt(req Request) string {
	var builder strings.Builder
	builder.WriteString(providerPrompt)
	builder.WriteString("\n\nClaim: ")
	builder.WriteString(req.ClaimText)
	if req.Topic != "" {
		builder.WriteString("\nTopic: ")
		builder.WriteString(req.Topic)
	}
	if req.TolerancePercent > 0 {
		builder.WriteString(fmt.Sprintf("\nTreat numeric figures within %.0f%% of the reference value as a match.", req.TolerancePercent))
	}
	return builder.String()
}
