package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// SavedQuote is an archived price breakdown.
type SavedQuote struct {
	ID         uuid.UUID       `json:"id"`
	SessionID  string          `json:"session_id"`
	MissionID  string          `json:"mission_id,omitempty"`
	PlanID     string          `json:"plan_id,omitempty"`
	TotalCents int64           `json:"total_cents"`
	Breakdown  json.RawMessage `json:"breakdown"`
	CreatedAt  time.Time       `json:"created_at"`
}

const insertSavedQuote = `INSERT INTO saved_quotes (id, session_id, mission_id, plan_id, total_cents, breakdown)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`

const getSavedQuote = `SELECT id, session_id, mission_id, plan_id, total_cents, breakdown, created_at
FROM saved_quotes WHERE id = $1`

const listSavedQuotesBySession = `SELECT id, session_id, mission_id, plan_id, total_cents, breakdown, created_at
FROM saved_quotes WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

// SavedQuotes stores archived quotes in Postgres.
type SavedQuotes struct {
	DB DBTX
}

// Insert persists q. A zero ID is replaced with a fresh UUID; CreatedAt is
// assigned by the database.
func (r SavedQuotes) Insert(ctx context.Context, q SavedQuote) (SavedQuote, error) {
	if r.DB == nil {
		return SavedQuote{}, errors.New("repo: database not configured")
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if len(q.Breakdown) == 0 {
		q.Breakdown = json.RawMessage("{}")
	}
	var created pgtype.Timestamptz
	err := r.DB.QueryRow(ctx, insertSavedQuote,
		pgUUID(q.ID), q.SessionID, q.MissionID, q.PlanID, q.TotalCents, []byte(q.Breakdown),
	).Scan(&created)
	if err != nil {
		return SavedQuote{}, fmt.Errorf("insert saved quote: %w", err)
	}
	q.CreatedAt = created.Time
	return q, nil
}

// Get returns the saved quote with id or ErrNotFound.
func (r SavedQuotes) Get(ctx context.Context, id uuid.UUID) (SavedQuote, error) {
	if r.DB == nil {
		return SavedQuote{}, errors.New("repo: database not configured")
	}
	q, err := scanSavedQuote(r.DB.QueryRow(ctx, getSavedQuote, pgUUID(id)))
	if err != nil {
		return SavedQuote{}, notFound(err)
	}
	return q, nil
}

// ListBySession returns saved quotes of a session, newest first.
func (r SavedQuotes) ListBySession(ctx context.Context, sessionID string, limit, offset int32) ([]SavedQuote, error) {
	if r.DB == nil {
		return nil, errors.New("repo: database not configured")
	}
	rows, err := r.DB.Query(ctx, listSavedQuotesBySession, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list saved quotes: %w", err)
	}
	defer rows.Close()
	var out []SavedQuote
	for rows.Next() {
		q, err := scanSavedQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSavedQuote(row scanner) (SavedQuote, error) {
	var (
		q         SavedQuote
		id        pgtype.UUID
		breakdown []byte
		created   pgtype.Timestamptz
	)
	if err := row.Scan(&id, &q.SessionID, &q.MissionID, &q.PlanID, &q.TotalCents, &breakdown, &created); err != nil {
		return SavedQuote{}, err
	}
	q.ID = uuid.UUID(id.Bytes)
	q.Breakdown = json.RawMessage(breakdown)
	q.CreatedAt = created.Time
	return q, nil
}
