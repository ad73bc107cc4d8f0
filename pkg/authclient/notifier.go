package authclient

import "github.com/rs/zerolog"

// Notifier surfaces user-visible messages, e.g. as toasts.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to a zerolog logger.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Success(msg string) {
	n.Log.Info().Str("kind", "success").Msg(msg)
}

func (n LogNotifier) Error(msg string) {
	n.Log.Warn().Str("kind", "error").Msg(msg)
}
