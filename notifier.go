package codelearn

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier surfaces user-facing outcomes of a request, the way a UI shows a
// toast. Implementations must be safe for concurrent use.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// Messages holds the fallback texts used when the server does not supply one.
type Messages struct {
	Network        string
	Server         string
	Authentication string
	Validation     string
}

// DefaultMessages returns the stock fallback texts.
func DefaultMessages() Messages {
	return Messages{
		Network:        "Connection error. Check your internet connection.",
		Server:         "Something went wrong on the server. Please try again later.",
		Authentication: "Authentication error. Please sign in again.",
		Validation:     "Please check the information you entered.",
	}
}

// LogNotifier writes notifications as structured log events.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier returns a Notifier backed by logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Success implements Notifier.
func (n *LogNotifier) Success(_ context.Context, message string) {
	n.logger.Info().Str("notification", "success").Msg(message)
}

// Error implements Notifier.
func (n *LogNotifier) Error(_ context.Context, message string) {
	n.logger.Error().Str("notification", "error").Msg(message)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

// Success implements Notifier.
func (NopNotifier) Success(context.Context, string) {}

// Error implements Notifier.
func (NopNotifier) Error(context.Context, string) {}
