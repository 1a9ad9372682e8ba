package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/scouthq/scout/internal/models"
)

// Adapter is the contract every source implements: translate one upstream
// API into the common Record schema. An adapter call either succeeds with a
// full record list or fails atomically; it never returns partial data.
type Adapter interface {
	Name() string
	// Enabled reports whether the adapter can run at all (credentials
	// resolved once at startup).
	Enabled() bool
	Info() Info
	Fetch(ctx context.Context, query string, limit int) ([]models.Record, error)
	// Probe makes a trivial upstream call for health checks.
	Probe(ctx context.Context) error
}

// Info describes a registered source for list-sources output.
type Info struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	EngagementFields []string `json:"engagement_fields"`
	Notes            string   `json:"notes,omitempty"`
}

// UpstreamError wraps a per-adapter network, HTTP, or parse failure. It is
// isolated by the orchestrator and never aborts sibling adapters.
type UpstreamError struct {
	Source string
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConfigurationError marks a missing credential for an optional adapter.
// Fatal only for the adapter that needs it.
type ConfigurationError struct {
	Source string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func upstreamErr(source, reason string, err error) *UpstreamError {
	return &UpstreamError{Source: source, Reason: reason, Err: err}
}

func statusErr(source string, code int) *UpstreamError {
	return &UpstreamError{Source: source, Reason: fmt.Sprintf("HTTP %d", code)}
}

// truncate caps a string at max runes, never splitting a multi-byte
// character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// newClient builds the shared resty client config used by all adapters.
func newClient(userAgent string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
}
