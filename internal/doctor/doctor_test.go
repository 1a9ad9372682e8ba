package doctor

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/models"
	"github.com/scouthq/scout/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeAdapter struct {
	name string
	err  error
}

func (p *probeAdapter) Name() string       { return p.name }
func (p *probeAdapter) Enabled() bool      { return true }
func (p *probeAdapter) Info() sources.Info { return sources.Info{Name: p.name} }
func (p *probeAdapter) Fetch(ctx context.Context, query string, limit int) ([]models.Record, error) {
	return nil, p.err
}
func (p *probeAdapter) Probe(ctx context.Context) error { return p.err }

func probeRegistry(adapters ...*probeAdapter) *sources.Registry {
	registry := sources.NewRegistry(&config.Config{UserAgent: "test", Timeout: time.Second})
	for _, name := range registry.Names() {
		// Neutralize the real adapters so no network is touched.
		registry.Register(&probeAdapter{name: name})
	}
	for _, a := range adapters {
		registry.Register(a)
	}
	return registry
}

func TestRunAllHealthy(t *testing.T) {
	report := Run(context.Background(), probeRegistry(), time.Second)

	assert.True(t, report.Healthy)
	require.Len(t, report.Checks, 8)
	for _, check := range report.Checks {
		assert.Equal(t, StatusOK, check.Status, check.Name)
	}
}

func TestRunClassifiesFailures(t *testing.T) {
	registry := probeRegistry(
		&probeAdapter{name: "down", err: &sources.UpstreamError{Source: "down", Reason: "HTTP 503"}},
		&probeAdapter{name: "gated", err: &sources.ConfigurationError{Source: "gated", Reason: "BRAVE_API_KEY not set"}},
		&probeAdapter{name: "slow", err: context.DeadlineExceeded},
	)

	report := Run(context.Background(), registry, time.Second)
	assert.False(t, report.Healthy)

	byName := make(map[string]Check)
	for _, check := range report.Checks {
		byName[check.Name] = check
	}

	assert.Equal(t, StatusError, byName["down"].Status)
	assert.Contains(t, byName["down"].Detail, "HTTP 503")

	// A missing credential degrades the source without failing the report
	// verdict for it.
	assert.Equal(t, StatusWarn, byName["gated"].Status)
	assert.Equal(t, "BRAVE_API_KEY not set", byName["gated"].Detail)

	assert.Equal(t, StatusError, byName["slow"].Status)
	assert.Equal(t, "timeout", byName["slow"].Detail)
}

func TestRunWarnOnlyStaysHealthy(t *testing.T) {
	registry := probeRegistry(
		&probeAdapter{name: "gated", err: &sources.ConfigurationError{Source: "gated", Reason: "key not set"}},
	)

	report := Run(context.Background(), registry, time.Second)
	assert.True(t, report.Healthy)
}

func TestReportPrint(t *testing.T) {
	report := &Report{
		Checks: []Check{
			{Name: "alpha", Status: StatusOK, DurationMS: 12},
			{Name: "beta", Status: StatusError, Detail: "HTTP 500", DurationMS: 40},
			{Name: "gamma", Status: StatusWarn, Detail: "key not set", DurationMS: 1},
		},
		Healthy: false,
	}

	var buf bytes.Buffer
	report.Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "HTTP 500")
	assert.Contains(t, out, "1 ok, 1 warn, 1 error")
	// A plain writer gets no ANSI escapes.
	assert.NotContains(t, out, "\033[")
}

func TestProbeUnwrapsPlainErrors(t *testing.T) {
	registry := probeRegistry(&probeAdapter{name: "odd", err: errors.New("boom")})

	report := Run(context.Background(), registry, time.Second)
	byName := make(map[string]Check)
	for _, check := range report.Checks {
		byName[check.Name] = check
	}
	assert.Equal(t, StatusError, byName["odd"].Status)
	assert.Equal(t, "boom", byName["odd"].Detail)
}
