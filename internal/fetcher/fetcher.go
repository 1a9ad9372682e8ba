// Package fetcher coordinates the multi-source fan-out: it validates the
// request, dispatches every requested adapter concurrently under the global
// time budget, and joins the per-source outcomes into one response envelope.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/scouthq/scout/internal/models"
	"github.com/scouthq/scout/internal/sources"
	"github.com/sirupsen/logrus"
)

const (
	reasonTimeout   = "timeout"
	reasonCancelled = "cancelled"
)

// CallerError is a bad request from the caller (empty query, unknown source
// name). It surfaces before any network call is made.
type CallerError struct {
	Reason string
}

func (e *CallerError) Error() string { return e.Reason }

// Request describes one fetch invocation.
type Request struct {
	Query   string
	Sources []string // empty: defaults derived from Depth
	Limit   int      // <= 0: default derived from Depth
	Depth   string   // quick, default, or deep
}

// Service is the fetch orchestrator. Stateless between calls: it holds only
// the adapter registry and the time budget.
type Service struct {
	registry *sources.Registry
	timeout  time.Duration
}

// NewService creates an orchestrator with the given total budget per call.
func NewService(registry *sources.Registry, timeout time.Duration) *Service {
	return &Service{registry: registry, timeout: timeout}
}

// Fetch dispatches all requested adapters concurrently and returns the
// assembled envelope. Individual source failures are recorded per source and
// never fail the call; only caller-input errors return a non-nil error.
func (s *Service) Fetch(ctx context.Context, req Request) (*models.ResponseEnvelope, error) {
	if req.Query == "" {
		return nil, &CallerError{Reason: "empty query"}
	}

	names := req.Sources
	if len(names) == 0 {
		names = sources.SourcesForDepth(req.Depth)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = sources.LimitForDepth(req.Depth)
	}

	// Resolve every name before any network call: one unknown source fails
	// the whole request with zero adapter invocations.
	requested := make([]string, 0, len(names))
	adapters := make([]sources.Adapter, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		adapter, ok := s.registry.Resolve(name)
		if !ok {
			return nil, &CallerError{Reason: fmt.Sprintf("unknown source: %s", name)}
		}
		canonical := adapter.Name()
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		requested = append(requested, canonical)
		adapters = append(adapters, adapter)
	}

	budget := s.timeout
	if req.Depth != "" && len(req.Sources) == 0 {
		budget = sources.TimeoutForDepth(req.Depth)
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	logrus.Debugf("fetching %d sources for query %q (budget %v)", len(adapters), req.Query, budget)

	// One goroutine per source, buffered outcome channel, closer goroutine,
	// single-writer merge at join time.
	outcomes := make(chan models.SourceOutcome, len(adapters))
	var wg sync.WaitGroup
	for _, adapter := range adapters {
		wg.Add(1)
		go func(a sources.Adapter) {
			defer wg.Done()
			outcomes <- s.fetchOne(ctx, a, req.Query, limit)
		}(adapter)
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	collected := make([]models.SourceOutcome, 0, len(adapters))
	for outcome := range outcomes {
		if !outcome.Success {
			logrus.Warnf("source %s failed: %s", outcome.SourceName, outcome.ErrorReason)
		}
		collected = append(collected, outcome)
	}

	return assemble(req.Query, req.Depth, requested, collected), nil
}

// FetchOne fetches a single source and returns just its outcome.
func (s *Service) FetchOne(ctx context.Context, source, query string, limit int) (models.SourceOutcome, error) {
	envelope, err := s.Fetch(ctx, Request{Query: query, Sources: []string{source}, Limit: limit})
	if err != nil {
		return models.SourceOutcome{}, err
	}
	return envelope.Results[envelope.Meta.SourcesRequested[0]], nil
}

// fetchOne runs a single adapter against its own derived deadline. A call
// that outlives the deadline is abandoned and recorded as a timeout; its
// partial results are discarded.
func (s *Service) fetchOne(ctx context.Context, a sources.Adapter, query string, limit int) models.SourceOutcome {
	start := time.Now()

	type result struct {
		items []models.Record
		err   error
	}
	done := make(chan result, 1)
	go func() {
		items, err := a.Fetch(ctx, query, limit)
		done <- result{items: items, err: err}
	}()

	select {
	case <-ctx.Done():
		// A closed deadline is a timeout; a cancelled parent (caller gone,
		// client disconnect) is not.
		reason := reasonTimeout
		if errors.Is(ctx.Err(), context.Canceled) {
			reason = reasonCancelled
		}
		return models.SourceOutcome{
			SourceName:  a.Name(),
			Success:     false,
			Items:       []models.Record{},
			ErrorReason: reason,
			DurationMS:  time.Since(start).Milliseconds(),
		}
	case res := <-done:
		if res.err != nil {
			return models.SourceOutcome{
				SourceName:  a.Name(),
				Success:     false,
				Items:       []models.Record{},
				ErrorReason: failureReason(res.err),
				DurationMS:  time.Since(start).Milliseconds(),
			}
		}
		items := res.items
		if items == nil {
			items = []models.Record{}
		}
		return models.SourceOutcome{
			SourceName: a.Name(),
			Success:    true,
			ItemCount:  len(items),
			Items:      items,
			DurationMS: time.Since(start).Milliseconds(),
		}
	}
}

func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return reasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return reasonCancelled
	}
	var cfgErr *sources.ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.Reason
	}
	var upErr *sources.UpstreamError
	if errors.As(err, &upErr) {
		if upErr.Err != nil {
			return fmt.Sprintf("%s: %v", upErr.Reason, upErr.Err)
		}
		return upErr.Reason
	}
	return err.Error()
}
