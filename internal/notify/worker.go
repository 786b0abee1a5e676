package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/skillswap/backend/internal/models"
)

type DeliverNotificationArgs struct {
	UserID    uuid.UUID  `json:"user_id"`
	Type      string     `json:"type"`
	Content   string     `json:"content"`
	RelatedID *uuid.UUID `json:"related_id,omitempty"`
}

func (DeliverNotificationArgs) Kind() string { return "deliver_notification" }

// NotificationStore defines the contract the worker needs to persist notifications
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

type DeliverNotificationWorker struct {
	river.WorkerDefaults[DeliverNotificationArgs]
	store  NotificationStore
	logger *slog.Logger
}

func NewDeliverNotificationWorker(store NotificationStore, logger *slog.Logger) *DeliverNotificationWorker {
	return &DeliverNotificationWorker{store: store, logger: logger}
}

func (w *DeliverNotificationWorker) Work(ctx context.Context, job *river.Job[DeliverNotificationArgs]) error {
	args := job.Args

	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    args.UserID,
		Type:      args.Type,
		Content:   args.Content,
		RelatedID: args.RelatedID,
	}
	if err := w.store.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	// Email delivery is stubbed: log the send instead of calling a provider.
	w.logger.Info("notification delivered",
		"notification_id", n.ID,
		"user_id", args.UserID,
		"type", args.Type,
	)
	return nil
}
