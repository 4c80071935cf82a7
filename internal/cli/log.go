// Package cli implements the tilegrid command-line interface.
//
// The commands load a layout file (TOML, YAML or JSON), build a live tree
// from it, and then inspect, drag, render or serve it. The CLI is built using
// cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - inspect: Print the node tree and a table of weights and constraints
//   - edges: Show the resolved edges of a node on all four sides
//   - resize: Apply drag steps and print or save the resulting layout
//   - render: Draw the layout as boxes or as a Graphviz diagram
//   - tui: Drag panels interactively in the terminal
//   - serve: Expose a layout over HTTP with Prometheus metrics
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// surfaces the engine's own debug output for drags and commit flushes. HTTP
// handlers find a request-scoped logger in their context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Rendered boxes.svg (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
