package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAICompatBackend implements Backend against any OpenAI-compatible chat
// completions endpoint. One constructor serves both the Groq fast-remote
// tier and the LM Studio local tier; only the base URL and model differ.
type OpenAICompatBackend struct {
	client openai.Client
	name   string
	tier   Tier
	model  string
}

const interviewerSystemPrompt = "You are a professional technical interviewer. Always respond with valid JSON when asked for JSON."

// NewGroqBackend creates the fast-remote backend against Groq's
// OpenAI-compatible API.
func NewGroqBackend(apiKey, baseURL, model string) (*OpenAICompatBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	def := DefaultConfig()
	if baseURL == "" {
		baseURL = def.GroqBaseURL
	}
	if model == "" {
		model = def.GroqModel
	}
	return newOpenAICompatBackend("groq", TierFastRemote, apiKey, baseURL, model), nil
}

// NewLocalBackend creates the local backend against an LM Studio style
// endpoint. LM Studio ignores the API key but the SDK requires one.
func NewLocalBackend(baseURL, model string) *OpenAICompatBackend {
	def := DefaultConfig()
	if baseURL == "" {
		baseURL = def.LocalBaseURL
	}
	if model == "" {
		model = def.LocalModel
	}
	return newOpenAICompatBackend("lm-studio", TierLocal, "lm-studio", baseURL, model)
}

func newOpenAICompatBackend(name string, tier Tier, apiKey, baseURL, model string) *OpenAICompatBackend {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &OpenAICompatBackend{client: client, name: name, tier: tier, model: model}
}

// Name identifies the backend in logs and quota state.
func (b *OpenAICompatBackend) Name() string { return b.name }

// Tier returns the backend's priority slot.
func (b *OpenAICompatBackend) Tier() Tier { return b.tier }

// GenerateText produces free-form text for a prompt.
func (b *OpenAICompatBackend) GenerateText(ctx context.Context, req Request) (string, error) {
	return b.generate(ctx, req)
}

// GenerateJSON produces a JSON document for a prompt. The smaller models
// behind this backend wrap JSON in markdown fences despite instructions, so
// the response is cleaned before return.
func (b *OpenAICompatBackend) GenerateJSON(ctx context.Context, req Request) (string, error) {
	text, err := b.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (b *OpenAICompatBackend) generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	system := req.System
	if system == "" {
		system = interviewerSystemPrompt
	}

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(req.Prompt),
		},
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
		Temperature:         openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", b.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Close releases resources held by the backend. The HTTP client has nothing
// to release.
func (b *OpenAICompatBackend) Close() error { return nil }
