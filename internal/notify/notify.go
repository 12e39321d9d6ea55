// Package notify delivers user-facing outcome notifications for catalog
// operations: the "toast" collaborator of the dashboard core.
package notify

import (
	"context"
	"log/slog"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// Notifier surfaces an operation outcome to the user. onActivate, when
// non-nil, is the action behind the notification (the undo for a delete);
// transports that cannot carry a callback may ignore it.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, message string, onActivate func())
}

// LogNotifier writes notifications as structured log records. It is the
// default backend when no message broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier logging through the given logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notify")}
}

// Notify logs the notification. The activation callback is recorded as an
// attribute but never invoked; activation is up to the presentation layer.
func (n *LogNotifier) Notify(ctx context.Context, kind Kind, message string, onActivate func()) {
	n.logger.InfoContext(ctx, "notification",
		"kind", string(kind),
		"message", message,
		"undoable", onActivate != nil,
	)
}
