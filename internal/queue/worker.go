package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nuvme-configurator/internal/events"
	"github.com/noah-isme/nuvme-configurator/internal/notify"
	"github.com/noah-isme/nuvme-configurator/internal/resilience"
)

// Deliverer sends one event to its destination.
type Deliverer interface {
	Deliver(ctx context.Context, ev events.Event) error
}

// Worker handles webhook tasks.
type Worker struct {
	Deliverer Deliverer
	Logger    zerolog.Logger
}

// HandleQuoteSaved decodes the event and delivers it. Malformed payloads and
// permanent webhook rejections skip the remaining retries.
func (w Worker) HandleQuoteSaved(ctx context.Context, t *asynq.Task) error {
	if w.Deliverer == nil {
		return fmt.Errorf("queue: deliverer not configured: %w", asynq.SkipRetry)
	}
	var ev events.Event
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		countResult(t, "invalid")
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	retried, _ := asynq.GetRetryCount(ctx)
	log := w.Logger.With().Str("event_id", ev.ID.String()).Int("retry", retried).Logger()

	if err := w.Deliverer.Deliver(ctx, ev); err != nil {
		if errors.Is(err, notify.ErrPermanent) {
			countResult(t, "rejected")
			log.Error().Err(err).Msg("webhook rejected event")
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		countResult(t, "retry")
		log.Warn().Err(err).Msg("webhook delivery failed")
		return err
	}
	countResult(t, "done")
	log.Debug().Msg("webhook delivered")
	return nil
}

// NewServeMux routes task types to w.
func NewServeMux(w Worker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeQuoteSaved, w.HandleQuoteSaved)
	return mux
}

// RetryDelay backs off exponentially from 5s up to 10m. An open circuit
// waits the full cap.
func RetryDelay(n int, err error, _ *asynq.Task) time.Duration {
	const limit = 10 * time.Minute
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return limit
	}
	return resilience.Backoff(5*time.Second, n+1, 0.2, limit)
}

// ServerConfig builds the asynq server configuration for the worker.
func ServerConfig(concurrency int, logger zerolog.Logger) asynq.Config {
	if concurrency <= 0 {
		concurrency = 1
	}
	return asynq.Config{
		Concurrency:    concurrency,
		Queues:         map[string]int{QueueWebhooks: 1},
		RetryDelayFunc: RetryDelay,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			evt := logger.Warn()
			if retried >= maxRetry || errors.Is(err, asynq.SkipRetry) {
				evt = logger.Error()
				countResult(t, "archived")
			}
			evt.Err(err).Str("task", t.Type()).Int("retry", retried).Msg("task failed")
		}),
		Logger:   asynqLogger{log: logger},
		LogLevel: asynq.WarnLevel,
	}
}

// asynqLogger adapts zerolog to asynq.Logger.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
