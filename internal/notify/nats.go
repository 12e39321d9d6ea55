package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// notificationEvent is the wire shape published for every notification so
// external consumers (toast relays, audit) can subscribe.
type notificationEvent struct {
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
	Undoable bool   `json:"undoable"`
}

// NatsNotifier publishes notifications to a JetStream subject. Activation
// callbacks are transport-local and never serialized; subscribers only learn
// that an undo affordance existed.
type NatsNotifier struct {
	js      jetstream.JetStream
	subject string
	logger  *slog.Logger
}

// NewNatsNotifier returns a notifier publishing to subject.
func NewNatsNotifier(js jetstream.JetStream, subject string, logger *slog.Logger) *NatsNotifier {
	return &NatsNotifier{
		js:      js,
		subject: subject,
		logger:  logger.With("component", "notify"),
	}
}

// Notify publishes the notification. Publish failures are logged and
// swallowed: notification delivery is best effort and never blocks a catalog
// operation.
func (n *NatsNotifier) Notify(ctx context.Context, kind Kind, message string, onActivate func()) {
	payload, err := json.Marshal(notificationEvent{
		Kind:     kind,
		Message:  message,
		Undoable: onActivate != nil,
	})
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to encode notification", "error", err)
		return
	}
	if _, err := n.js.Publish(ctx, n.subject, payload); err != nil {
		n.logger.ErrorContext(ctx, "failed to publish notification", "subject", n.subject, "error", err)
	}
}
