// Package doctor probes every registered source and reports which ones are
// reachable with the current configuration.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/scouthq/scout/internal/sources"
	"github.com/sirupsen/logrus"
)

// Status classifies one probe result.
type Status string

const (
	StatusOK    Status = "ok"
	StatusWarn  Status = "warn" // degraded but expected (e.g. key not set)
	StatusError Status = "error"
)

// Check is one source's probe result.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Detail     string `json:"detail,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Report holds all checks plus the overall verdict.
type Report struct {
	Checks  []Check `json:"checks"`
	Healthy bool    `json:"healthy"`
}

// Run probes every adapter in the registry concurrently and returns the
// report with checks in registration order.
func Run(ctx context.Context, registry *sources.Registry, timeout time.Duration) *Report {
	names := registry.Names()
	checks := make([]Check, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		adapter, _ := registry.Resolve(name)
		wg.Add(1)
		go func(i int, a sources.Adapter) {
			defer wg.Done()
			checks[i] = probe(ctx, a, timeout)
		}(i, adapter)
	}
	wg.Wait()

	report := &Report{Checks: checks, Healthy: true}
	for _, c := range checks {
		if c.Status == StatusError {
			report.Healthy = false
		}
	}
	return report
}

func probe(ctx context.Context, a sources.Adapter, timeout time.Duration) Check {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := a.Probe(ctx)
	elapsed := time.Since(start).Milliseconds()

	check := Check{Name: a.Name(), Status: StatusOK, DurationMS: elapsed}
	if err == nil {
		return check
	}

	logrus.Debugf("probe %s failed: %v", a.Name(), err)

	// A missing key is a warning, not a failure: the source is simply off.
	var cfgErr *sources.ConfigurationError
	if errors.As(err, &cfgErr) {
		check.Status = StatusWarn
		check.Detail = cfgErr.Reason
		return check
	}

	check.Status = StatusError
	if errors.Is(err, context.DeadlineExceeded) {
		check.Detail = "timeout"
	} else {
		check.Detail = err.Error()
	}
	return check
}

// ANSI colors, suppressed when not writing to a terminal or when NO_COLOR
// is set.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Print writes the human-readable report.
func (r *Report) Print(w io.Writer) {
	color := useColor(w)
	paint := func(c, s string) string {
		if !color {
			return s
		}
		return c + s + colorReset
	}

	okCount, warnCount, errCount := 0, 0, 0
	for _, c := range r.Checks {
		var label string
		switch c.Status {
		case StatusOK:
			label = paint(colorGreen, "ok")
			okCount++
		case StatusWarn:
			label = paint(colorYellow, "warn")
			warnCount++
		default:
			label = paint(colorRed, "error")
			errCount++
		}
		line := fmt.Sprintf("%-14s %-6s %4dms", c.Name, label, c.DurationMS)
		if c.Detail != "" {
			line += "  " + c.Detail
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\n%d ok, %d warn, %d error\n", okCount, warnCount, errCount)
}
