package llm

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Retry and short-circuit tuning. Only quota-class failures are retried on
// the same backend; transport and parse failures escalate immediately.
const (
	// QuotaShortCircuitThreshold is the consecutive quota-error count at
	// which the dispatcher stops calling backends entirely and reports
	// ErrUnavailable until a success resets the counter.
	QuotaShortCircuitThreshold = 2

	maxQuotaAttempts = 2
	initialBackoff   = 2 * time.Second
	maxBackoff       = 8 * time.Second
)

// Generator is the dispatcher surface consumed by the orchestration
// packages. Tests substitute deterministic fakes.
type Generator interface {
	GenerateText(ctx context.Context, req Request) (string, error)
	GenerateJSON(ctx context.Context, req Request) (string, error)
	ShortCircuited() bool
}

// ProviderState is the per-backend quota bookkeeping, shared process-wide
// across all concurrent interview sessions.
type ProviderState struct {
	Available              bool
	ConsecutiveQuotaErrors int
	LastQuotaError         time.Time
}

// Dispatcher tries backends in priority order and tracks quota failures.
// A Dispatcher is safe for use by multiple goroutines.
type Dispatcher struct {
	backends []Backend
	log      *zap.Logger

	mu     sync.Mutex
	states map[string]*ProviderState

	// sleep is replaced in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a dispatcher over the given backends. Backends are
// tried in the order supplied; callers pass them local-first.
func NewDispatcher(log *zap.Logger, backends ...Backend) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	states := make(map[string]*ProviderState, len(backends))
	for _, b := range backends {
		states[b.Name()] = &ProviderState{Available: true}
	}
	return &Dispatcher{
		backends: backends,
		log:      log,
		states:   states,
		sleep:    sleepContext,
	}
}

// NewDispatcherFromConfig assembles the backend chain from configuration:
// local LM Studio when enabled, Groq when a key is present, then Gemini.
func NewDispatcherFromConfig(ctx context.Context, cfg *Config, log *zap.Logger) (*Dispatcher, error) {
	var backends []Backend

	if cfg.UseLocalLLM {
		backends = append(backends, NewLocalBackend(cfg.LocalBaseURL, cfg.LocalModel))
	}
	if cfg.GroqAPIKey != "" {
		groq, err := NewGroqBackend(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
		if err != nil {
			return nil, err
		}
		backends = append(backends, groq)
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		backends = append(backends, gemini)
	}

	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	return NewDispatcher(log, backends...), nil
}

// GenerateText runs the prompt through the backend chain and returns the
// first successful result. Returns ErrUnavailable when every backend is
// exhausted or the quota short-circuit is active.
func (d *Dispatcher) GenerateText(ctx context.Context, req Request) (string, error) {
	return d.generate(ctx, req, false)
}

// GenerateJSON is GenerateText for structured JSON output.
func (d *Dispatcher) GenerateJSON(ctx context.Context, req Request) (string, error) {
	return d.generate(ctx, req, true)
}

func (d *Dispatcher) generate(ctx context.Context, req Request, jsonMode bool) (string, error) {
	if d.ShortCircuited() {
		d.log.Warn("quota short-circuit active, skipping all backends")
		return "", ErrUnavailable
	}

	for _, backend := range d.backends {
		text, err := d.tryBackend(ctx, backend, req, jsonMode)
		if err == nil {
			d.log.Debug("generation succeeded",
				zap.String("backend", backend.Name()),
				zap.String("tier", string(backend.Tier())))
			return text, nil
		}
		d.log.Warn("backend failed, escalating",
			zap.String("backend", backend.Name()),
			zap.Bool("quota", IsQuotaError(err)),
			zap.Error(err))
		if ctx.Err() != nil {
			return "", ErrUnavailable
		}
	}

	return "", ErrUnavailable
}

// tryBackend calls one backend with bounded quota retries. Transport and
// parse failures return after the first attempt.
func (d *Dispatcher) tryBackend(ctx context.Context, backend Backend, req Request, jsonMode bool) (string, error) {
	delay := initialBackoff
	var lastErr error

	for attempt := 0; attempt < maxQuotaAttempts; attempt++ {
		var (
			text string
			err  error
		)
		if jsonMode {
			text, err = backend.GenerateJSON(ctx, req)
		} else {
			text, err = backend.GenerateText(ctx, req)
		}
		if err == nil {
			d.recordSuccess(backend.Name())
			return text, nil
		}
		if !IsQuotaError(err) {
			return "", err
		}

		d.recordQuotaError(backend.Name())
		lastErr = err
		if attempt < maxQuotaAttempts-1 {
			d.log.Info("quota error, backing off",
				zap.String("backend", backend.Name()),
				zap.Duration("delay", delay))
			if serr := d.sleep(ctx, delay); serr != nil {
				return "", serr
			}
			delay *= 2
			if delay > maxBackoff {
				delay = maxBackoff
			}
		}
	}

	return "", &QuotaError{Backend: backend.Name(), Cause: lastErr}
}

// ShortCircuited reports whether any backend has reached the consecutive
// quota-error threshold. While true, callers should serve offline fallbacks
// without attempting generation.
func (d *Dispatcher) ShortCircuited() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.states {
		if s.ConsecutiveQuotaErrors >= QuotaShortCircuitThreshold {
			return true
		}
	}
	return false
}

// QuotaStatus returns a snapshot of per-backend quota state for operator
// introspection.
func (d *Dispatcher) QuotaStatus() map[string]ProviderState {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]ProviderState, len(d.states))
	for name, s := range d.states {
		out[name] = *s
	}
	return out
}

func (d *Dispatcher) recordQuotaError(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.states[name]; ok {
		s.ConsecutiveQuotaErrors++
		s.LastQuotaError = time.Now().UTC()
	}
}

func (d *Dispatcher) recordSuccess(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.states[name]; ok {
		s.ConsecutiveQuotaErrors = 0
		s.Available = true
	}
}

// Close closes every backend.
func (d *Dispatcher) Close() error {
	var firstErr error
	for _, b := range d.backends {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
