package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Backend is a single generation provider in the fallback chain.
type Backend interface {
	// Name identifies the backend in logs and quota state.
	Name() string
	// Tier is the backend's position in the priority order.
	Tier() Tier
	// GenerateText produces free-form text for a prompt.
	GenerateText(ctx context.Context, req Request) (string, error)
	// GenerateJSON produces a JSON document for a prompt.
	GenerateJSON(ctx context.Context, req Request) (string, error)
	// Close releases any resources held by the backend.
	Close() error
}

// GeminiBackend implements Backend on top of Google Gemini.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates the primary-remote backend.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = DefaultConfig().GeminiModel
	}

	return &GeminiBackend{client: client, model: model}, nil
}

// Name identifies the backend in logs and quota state.
func (b *GeminiBackend) Name() string { return "gemini" }

// Tier returns the backend's priority slot.
func (b *GeminiBackend) Tier() Tier { return TierPrimary }

// GenerateText produces free-form text for a prompt.
func (b *GeminiBackend) GenerateText(ctx context.Context, req Request) (string, error) {
	return b.generate(ctx, req, "")
}

// GenerateJSON produces a JSON document for a prompt.
func (b *GeminiBackend) GenerateJSON(ctx context.Context, req Request) (string, error) {
	text, err := b.generate(ctx, req, "application/json")
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (b *GeminiBackend) generate(ctx context.Context, req Request, mimeType string) (string, error) {
	model := b.client.GenerativeModel(b.model)
	model.SetTemperature(0.1) // Low temperature for consistent output

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	model.SetMaxOutputTokens(int32(maxTokens))

	if mimeType != "" {
		model.ResponseMIMEType = mimeType
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the backend.
func (b *GeminiBackend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
