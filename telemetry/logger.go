// Package telemetry provides the structured logger, tracer, and Prometheus
// metrics the collection engine and its descriptor/transport layers log
// and instrument through. Grounded on observability/logger.go,
// observability/tracing.go and observability/metrics.go.
package telemetry

import (
	"context"
	"io"
	"os"

	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"
	"github.com/willibrandon/mtlog/sinks"
)

// Logger is the structured logger interface used throughout the engine.
// Wraps mtlog for zero-allocation templated logging.
type Logger interface {
	Verbose(messageTemplate string, args ...any)
	VerboseContext(ctx context.Context, messageTemplate string, args ...any)

	Debug(messageTemplate string, args ...any)
	DebugContext(ctx context.Context, messageTemplate string, args ...any)

	Info(messageTemplate string, args ...any)
	InfoContext(ctx context.Context, messageTemplate string, args ...any)

	Warn(messageTemplate string, args ...any)
	WarnContext(ctx context.Context, messageTemplate string, args ...any)

	Error(messageTemplate string, args ...any)
	ErrorContext(ctx context.Context, messageTemplate string, args ...any)

	ForContext(key string, value any) Logger
	WithProperty(key string, value any) Logger
}

type mtlogAdapter struct {
	logger core.Logger
}

// LogLevel is the minimum severity a Logger emits.
type LogLevel int

const (
	VerboseLevel LogLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// NewLogger creates a Logger writing templated console output to w at the
// given minimum level.
func NewLogger(w io.Writer, level LogLevel) Logger {
	consoleSink := sinks.NewConsoleSinkWithWriter(w)

	opts := []mtlog.Option{
		mtlog.WithSink(consoleSink),
		mtlog.WithTimestamp(),
		mtlog.WithMachineName(),
		mtlog.WithProcess(),
	}

	switch level {
	case VerboseLevel:
		opts = append(opts, mtlog.Verbose())
	case DebugLevel:
		opts = append(opts, mtlog.Debug())
	case InfoLevel:
		opts = append(opts, mtlog.Information())
	case WarnLevel:
		opts = append(opts, mtlog.Warning())
	case ErrorLevel:
		opts = append(opts, mtlog.Error())
	}

	return &mtlogAdapter{logger: mtlog.New(opts...)}
}

// NewDefaultLogger returns a Logger writing to stdout at InfoLevel.
func NewDefaultLogger() Logger {
	return NewLogger(os.Stdout, InfoLevel)
}

func (a *mtlogAdapter) Verbose(messageTemplate string, args ...any) {
	a.logger.Verbose(messageTemplate, args...)
}

func (a *mtlogAdapter) VerboseContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.VerboseContext(ctx, messageTemplate, args...)
}

func (a *mtlogAdapter) Debug(messageTemplate string, args ...any) {
	a.logger.Debug(messageTemplate, args...)
}

func (a *mtlogAdapter) DebugContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.DebugContext(ctx, messageTemplate, args...)
}

func (a *mtlogAdapter) Info(messageTemplate string, args ...any) {
	a.logger.Info(messageTemplate, args...)
}

func (a *mtlogAdapter) InfoContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.InfoContext(ctx, messageTemplate, args...)
}

func (a *mtlogAdapter) Warn(messageTemplate string, args ...any) {
	a.logger.Warn(messageTemplate, args...)
}

func (a *mtlogAdapter) WarnContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.WarnContext(ctx, messageTemplate, args...)
}

func (a *mtlogAdapter) Error(messageTemplate string, args ...any) {
	a.logger.Error(messageTemplate, args...)
}

func (a *mtlogAdapter) ErrorContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.ErrorContext(ctx, messageTemplate, args...)
}

func (a *mtlogAdapter) ForContext(key string, value any) Logger {
	return &mtlogAdapter{logger: a.logger.ForContext(key, value)}
}

func (a *mtlogAdapter) WithProperty(key string, value any) Logger {
	return a.ForContext(key, value)
}

type nullLogger struct{}

// NewNullLogger returns a Logger that discards everything — the default
// when a caller supplies no logger.
func NewNullLogger() Logger { return &nullLogger{} }

func (n *nullLogger) Verbose(string, ...any)                             {}
func (n *nullLogger) VerboseContext(context.Context, string, ...any)     {}
func (n *nullLogger) Debug(string, ...any)                               {}
func (n *nullLogger) DebugContext(context.Context, string, ...any)       {}
func (n *nullLogger) Info(string, ...any)                                {}
func (n *nullLogger) InfoContext(context.Context, string, ...any)        {}
func (n *nullLogger) Warn(string, ...any)                                {}
func (n *nullLogger) WarnContext(context.Context, string, ...any)        {}
func (n *nullLogger) Error(string, ...any)                               {}
func (n *nullLogger) ErrorContext(context.Context, string, ...any)       {}
func (n *nullLogger) ForContext(key string, value any) Logger            { return n }
func (n *nullLogger) WithProperty(key string, value any) Logger          { return n }
