package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-ops-api/internal/models"
	"github.com/noah-isme/sma-ops-api/pkg/config"
	"github.com/noah-isme/sma-ops-api/pkg/jobs"
)

// Notifier delivers a transition event to interested parties. The actual
// transport (mail, chat, push) lives outside this service.
type Notifier interface {
	Notify(ctx context.Context, event models.TransitionEvent) error
}

// NotifierFunc allows using plain functions as notifiers.
type NotifierFunc func(ctx context.Context, event models.TransitionEvent) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, event models.TransitionEvent) error {
	return f(ctx, event)
}

// LogNotifier is the default delivery target: it records the event in the
// structured log so downstream transports can be attached later.
func LogNotifier(logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NotifierFunc(func(_ context.Context, event models.TransitionEvent) error {
		logger.Info("workflow_transition",
			zap.String("work_item_type", string(event.WorkItemType)),
			zap.String("work_item_id", event.WorkItemID),
			zap.String("action", string(event.Action)),
			zap.String("from_status", string(event.FromStatus)),
			zap.String("to_status", string(event.ToStatus)),
			zap.String("actor_id", event.ActorID),
		)
		return nil
	})
}

// NotificationDispatcher fans transition events out to the notifier on a
// background worker queue, keeping delivery off the request path. A full
// queue drops the event with a warning; notifications are best-effort and
// the timeline remains the durable record.
type NotificationDispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationDispatcher constructs the dispatcher.
func NewNotificationDispatcher(notifier Notifier, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(models.TransitionEvent)
		if !ok {
			return fmt.Errorf("unexpected notification payload %T", job.Payload)
		}
		return notifier.Notify(ctx, event)
	}
	queue := jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		BufferSize: cfg.QueueBuffer,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return &NotificationDispatcher{queue: queue, logger: logger}
}

// Start begins background delivery.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *NotificationDispatcher) Stop() {
	d.queue.Stop()
}

// Dispatch enqueues a transition event for async delivery.
func (d *NotificationDispatcher) Dispatch(event models.TransitionEvent) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(event.Action),
		Payload: event,
	}
	if err := d.queue.Enqueue(job); err != nil {
		d.logger.Warn("failed to enqueue notification",
			zap.String("work_item_id", event.WorkItemID), zap.Error(err))
	}
}
