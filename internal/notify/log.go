package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/nuvme-configurator/internal/events"
)

// LogNotifier writes emitted events to the structured log. Topics, when set,
// limits which topics are logged.
type LogNotifier struct {
	Logger zerolog.Logger
	Topics map[string]bool
}

// Notify implements events.Notifier.
func (n LogNotifier) Notify(_ context.Context, ev events.Event) error {
	if n.Topics != nil && !n.Topics[ev.Topic] {
		return nil
	}
	n.Logger.Info().
		Str("event_id", ev.ID.String()).
		Str("topic", ev.Topic).
		Str("aggregate_id", ev.AggregateID).
		RawJSON("payload", ev.Payload).
		Msg("domain event")
	return nil
}
