// Package llm provides generation backends and the dispatcher that tries
// them in priority order with quota tracking and bounded retries.
package llm

// Tier identifies a backend's position in the fallback chain.
type Tier string

// Backend tiers in priority order: a healthy local model is tried first,
// then the fast remote provider, then the primary remote provider.
const (
	TierLocal      Tier = "local"
	TierFastRemote Tier = "fast-remote"
	TierPrimary    Tier = "primary"
)

// Config holds backend credentials and model selection.
type Config struct {
	// Gemini (primary remote)
	GeminiAPIKey string
	GeminiModel  string

	// Groq (fast remote, OpenAI-compatible)
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	// LM Studio (local, OpenAI-compatible)
	UseLocalLLM  bool
	LocalBaseURL string
	LocalModel   string
}

// DefaultConfig returns the default backend configuration. API keys are
// expected from the environment or config file.
func DefaultConfig() *Config {
	return &Config{
		GeminiModel:  "gemini-2.0-flash",
		GroqBaseURL:  "https://api.groq.com/openai/v1",
		GroqModel:    "llama-3.3-70b-versatile",
		LocalBaseURL: "http://127.0.0.1:1234/v1",
		LocalModel:   "local-model",
	}
}

// Request is a single generation request passed to a backend.
type Request struct {
	Prompt    string
	System    string
	MaxTokens int
}

// defaultMaxTokens is applied when the caller does not set a budget.
const defaultMaxTokens = 1024
