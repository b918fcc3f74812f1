// Package notify defines the progress notification contract used by the
// distillation pipeline and ingestion processors.
//
// Notifications are fire-and-forget: implementations must swallow their
// own failures, and callers never alter behavior based on delivery.
package notify

import (
	"context"
	"log/slog"
)

// Notifier receives human-readable progress strings.
type Notifier interface {
	// Notify delivers a progress message. Best-effort; never returns an error.
	Notify(ctx context.Context, message string)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, message string)

// Notify calls f.
func (f Func) Notify(ctx context.Context, message string) {
	f(ctx, message)
}

// Nop is a Notifier that discards all messages.
type Nop struct{}

// Notify discards the message.
func (Nop) Notify(context.Context, string) {}

// Logger is a Notifier that writes messages to a slog.Logger at info level.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a logging notifier.
// A nil logger falls back to slog.Default().
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With("component", "notify")}
}

// Notify logs the message.
func (l *Logger) Notify(_ context.Context, message string) {
	l.logger.Info(message)
}
