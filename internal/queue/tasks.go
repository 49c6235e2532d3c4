package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/nuvme-configurator/internal/events"
)

const (
	// TypeQuoteSaved delivers a quote.saved event to the webhook.
	TypeQuoteSaved = "quote:saved"
	// QueueWebhooks is the asynq queue webhook tasks run on.
	QueueWebhooks = "webhooks"

	defaultMaxRetry  = 8
	defaultRetention = 24 * time.Hour
)

// Enqueuer is the subset of *asynq.Client used to publish tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewQuoteSavedTask wraps ev in a task. The event id doubles as the asynq
// task id so the same event is never queued twice.
func NewQuoteSavedTask(ev events.Event, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode task payload: %w", err)
	}
	if maxRetry <= 0 {
		maxRetry = defaultMaxRetry
	}
	return asynq.NewTask(TypeQuoteSaved, payload,
		asynq.TaskID(ev.ID.String()),
		asynq.Queue(QueueWebhooks),
		asynq.MaxRetry(maxRetry),
		asynq.Retention(defaultRetention),
	), nil
}

// Notifier is an events.Notifier that queues webhook delivery of saved quotes.
type Notifier struct {
	Client   Enqueuer
	MaxRetry int
}

// Notify implements events.Notifier. Topics other than quote.saved are ignored.
func (n Notifier) Notify(ctx context.Context, ev events.Event) error {
	if ev.Topic != events.TopicQuoteSaved {
		return nil
	}
	if n.Client == nil {
		return errors.New("queue: client not configured")
	}
	task, err := NewQuoteSavedTask(ev, n.MaxRetry)
	if err != nil {
		return err
	}
	if _, err := n.Client.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", TypeQuoteSaved, err)
	}
	return nil
}
