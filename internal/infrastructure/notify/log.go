// Package notify holds the delivery adapters behind notification.Notifier.
package notify

import (
	"context"
	"log/slog"

	"flexemi-backend/internal/domain/notification"
)

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct{ log *slog.Logger }

func NewLogNotifier(log *slog.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) Notify(ctx context.Context, msg notification.Message) {
	n.log.InfoContext(ctx, "notification", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
}
