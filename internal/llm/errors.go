package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"google.golang.org/api/googleapi"
)

// ErrUnavailable signals that every backend was exhausted. Callers treat it
// as the cue to switch to their offline fallback, never as a fatal error.
var ErrUnavailable = errors.New("generation unavailable on all backends")

// ErrNoBackends is returned when configuration yields an empty backend chain.
var ErrNoBackends = errors.New("no generation backends configured")

// QuotaError marks a rate-limit or quota failure from a backend. Quota
// failures are retried with backoff and feed the short-circuit counter;
// transport and parse failures escalate to the next backend immediately.
type QuotaError struct {
	Backend string
	Cause   error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exhausted on %s: %v", e.Backend, e.Cause)
}

func (e *QuotaError) Unwrap() error {
	return e.Cause
}

// IsQuotaError reports whether err represents throughput limiting rather
// than a hard failure.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var qe *QuotaError
	if errors.As(err, &qe) {
		return true
	}

	var gapi *googleapi.Error
	if errors.As(err, &gapi) && gapi.Code == 429 {
		return true
	}

	var oai *openai.Error
	if errors.As(err, &oai) && oai.StatusCode == 429 {
		return true
	}

	// Providers are inconsistent about error types; fall back to message
	// matching the way their SDKs surface throttling.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource exhausted")
}
