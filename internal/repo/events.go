package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/nuvme-configurator/internal/events"
)

const insertDomainEvent = `INSERT INTO domain_events (id, topic, aggregate_id, payload, occurred_at)
VALUES ($1, $2, $3, $4, $5)`

// Events persists domain events for the events bus.
type Events struct {
	DB DBTX
}

// InsertEvent satisfies events.EventStore.
func (r Events) InsertEvent(ctx context.Context, ev events.Event) error {
	if r.DB == nil {
		return errors.New("repo: database not configured")
	}
	_, err := r.DB.Exec(ctx, insertDomainEvent,
		pgUUID(ev.ID), ev.Topic, ev.AggregateID, []byte(ev.Payload),
		pgtype.Timestamptz{Time: ev.OccurredAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert domain event: %w", err)
	}
	return nil
}
