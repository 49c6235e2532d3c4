package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/events"
	"github.com/noah-isme/nuvme-configurator/internal/lock"
	"github.com/noah-isme/nuvme-configurator/internal/obs"
	"github.com/noah-isme/nuvme-configurator/internal/pricing"
	"github.com/noah-isme/nuvme-configurator/internal/repo"
)

const defaultLockTTL = 5 * time.Second

// Locker serializes mutations of one session.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Archive persists saved quotes.
type Archive interface {
	Insert(ctx context.Context, q repo.SavedQuote) (repo.SavedQuote, error)
	Get(ctx context.Context, id uuid.UUID) (repo.SavedQuote, error)
	ListBySession(ctx context.Context, sessionID string, limit, offset int32) ([]repo.SavedQuote, error)
}

// Emitter publishes domain events.
type Emitter interface {
	Emit(ctx context.Context, topic, aggregateID string, payload any) (events.Event, error)
}

// Quote is the current state of a session together with its undiscounted breakdown.
type Quote struct {
	ID        string            `json:"id"`
	Mission   catalog.MissionID `json:"mission,omitempty"`
	Entries   []EntryState      `json:"entries"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SavedEvent is the payload of events.TopicQuoteSaved.
type SavedEvent struct {
	SavedQuoteID string            `json:"saved_quote_id"`
	SessionID    string            `json:"session_id"`
	Mission      catalog.MissionID `json:"mission,omitempty"`
	Plan         catalog.PlanID    `json:"plan,omitempty"`
	Total        int64             `json:"total"`
	TotalLabel   string            `json:"total_label"`
}

// ServiceConfig wires the Service dependencies. Store and Catalog are
// required; a nil Locker falls back to an in-process lock and a nil Archive
// disables saving.
type ServiceConfig struct {
	Catalog *catalog.Catalog
	Store   Store
	Locker  Locker
	LockTTL time.Duration
	Archive Archive
	Events  Emitter
	Logger  zerolog.Logger
	Meter   metric.Meter
	Now     func() time.Time
}

// Service manages quote sessions. Each session owns its own ledger.
type Service struct {
	catalog    *catalog.Catalog
	store      Store
	locker     Locker
	lockTTL    time.Duration
	archive    Archive
	events     Emitter
	log        zerolog.Logger
	now        func() time.Time
	breakdowns metric.Int64Counter
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("quote: catalog is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("quote: store is required")
	}
	s := &Service{
		catalog: cfg.Catalog,
		store:   cfg.Store,
		locker:  cfg.Locker,
		lockTTL: cfg.LockTTL,
		archive: cfg.Archive,
		events:  cfg.Events,
		log:     cfg.Logger,
		now:     cfg.Now,
	}
	if s.locker == nil {
		s.locker = &lock.Local{}
	}
	if s.lockTTL <= 0 {
		s.lockTTL = defaultLockTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	meter := cfg.Meter
	if meter == nil {
		meter = otel.Meter("github.com/noah-isme/nuvme-configurator/internal/quote")
	}
	counter, err := meter.Int64Counter("quote.breakdowns",
		metric.WithDescription("Price breakdowns computed for quote sessions."))
	if err != nil {
		return nil, fmt.Errorf("quote: breakdown counter: %w", err)
	}
	s.breakdowns = counter
	return s, nil
}

// Create starts an empty session.
func (s *Service) Create(ctx context.Context) (Quote, error) {
	now := s.now().UTC()
	sess := Session{ID: uuid.NewString(), Entries: []EntryState{}, CreatedAt: now, UpdatedAt: now}
	if err := s.store.Save(ctx, sess); err != nil {
		return Quote{}, fmt.Errorf("create session: %w", err)
	}
	s.log.Debug().Str("quote_id", sess.ID).Msg("quote session created")
	return s.view(ctx, sess, NewLedger(s.catalog))
}

// Get returns the current state of a session.
func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	sess, l, err := s.load(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	return s.view(ctx, sess, l)
}

// SetMission switches the session mission, pruning modules it does not offer.
func (s *Service) SetMission(ctx context.Context, id string, mission catalog.MissionID) (Quote, error) {
	return s.mutate(ctx, id, func(l *Ledger) error { return l.SetMission(mission) })
}

// Select adds or updates a module in the session.
func (s *Service) Select(ctx context.Context, id, moduleID string, opts Options) (Quote, error) {
	q, err := s.mutate(ctx, id, func(l *Ledger) error { return l.Select(moduleID, opts) })
	recordSelection(err)
	return q, err
}

// Deselect removes a module from the session.
func (s *Service) Deselect(ctx context.Context, id, moduleID string) (Quote, error) {
	return s.mutate(ctx, id, func(l *Ledger) error {
		l.Deselect(moduleID)
		return nil
	})
}

// Reset clears the session mission and entries.
func (s *Service) Reset(ctx context.Context, id string) (Quote, error) {
	return s.mutate(ctx, id, func(l *Ledger) error {
		l.Reset()
		return nil
	})
}

// Total computes the breakdown of a session for a plan and discount.
func (s *Service) Total(ctx context.Context, id string, plan catalog.PlanID, discountPercent decimal.Decimal) (pricing.Breakdown, error) {
	_, l, err := s.load(ctx, id)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return s.total(ctx, l, plan, discountPercent)
}

// Save archives the current breakdown of a session and emits quote.saved.
func (s *Service) Save(ctx context.Context, id string, plan catalog.PlanID, discountPercent decimal.Decimal) (repo.SavedQuote, error) {
	if s.archive == nil {
		return repo.SavedQuote{}, ErrArchiveUnavailable
	}
	sess, l, err := s.load(ctx, id)
	if err != nil {
		return repo.SavedQuote{}, err
	}
	b, err := s.total(ctx, l, plan, discountPercent)
	if err != nil {
		return repo.SavedQuote{}, err
	}
	encoded, err := json.Marshal(b)
	if err != nil {
		return repo.SavedQuote{}, fmt.Errorf("encode breakdown: %w", err)
	}
	saved, err := s.archive.Insert(ctx, repo.SavedQuote{
		SessionID:  sess.ID,
		MissionID:  string(sess.Mission),
		PlanID:     string(plan),
		TotalCents: int64(b.Total),
		Breakdown:  encoded,
	})
	if err != nil {
		obs.IncCounter(obs.QuoteSavesTotal, "error")
		return repo.SavedQuote{}, fmt.Errorf("archive quote: %w", err)
	}
	obs.IncCounter(obs.QuoteSavesTotal, "ok")
	if obs.QuoteTotalBRL != nil {
		obs.QuoteTotalBRL.Observe(b.Total.Decimal().InexactFloat64())
	}

	if s.events != nil {
		payload := SavedEvent{
			SavedQuoteID: saved.ID.String(),
			SessionID:    sess.ID,
			Mission:      sess.Mission,
			Plan:         plan,
			Total:        int64(b.Total),
			TotalLabel:   b.TotalLabel,
		}
		if _, err := s.events.Emit(ctx, events.TopicQuoteSaved, saved.ID.String(), payload); err != nil {
			// the quote is archived; delivery problems must not fail the request
			s.log.Warn().Err(err).Str("quote_id", sess.ID).Msg("emit quote.saved")
		}
	}
	return saved, nil
}

// SavedQuote returns an archived quote by id.
func (s *Service) SavedQuote(ctx context.Context, id string) (repo.SavedQuote, error) {
	if s.archive == nil {
		return repo.SavedQuote{}, ErrArchiveUnavailable
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return repo.SavedQuote{}, repo.ErrNotFound
	}
	return s.archive.Get(ctx, parsed)
}

// SavedQuotes lists archived quotes of a session, newest first.
func (s *Service) SavedQuotes(ctx context.Context, sessionID string, page, perPage int) ([]repo.SavedQuote, error) {
	if s.archive == nil {
		return nil, ErrArchiveUnavailable
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.archive.ListBySession(ctx, sessionID, int32(perPage), int32((page-1)*perPage))
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*Ledger) error) (Quote, error) {
	var out Quote
	err := s.locker.WithLock(ctx, "quote:"+id, s.lockTTL, func(ctx context.Context) error {
		sess, l, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(l); err != nil {
			return err
		}
		l.Snapshot(&sess)
		sess.UpdatedAt = s.now().UTC()
		if err := s.store.Save(ctx, sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		out, err = s.view(ctx, sess, l)
		return err
	})
	if err != nil {
		return Quote{}, err
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (Session, *Ledger, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Session{}, nil, err
		}
		return Session{}, nil, fmt.Errorf("load session: %w", err)
	}
	l, err := Restore(s.catalog, sess)
	if err != nil {
		return Session{}, nil, err
	}
	return sess, l, nil
}

func (s *Service) view(ctx context.Context, sess Session, l *Ledger) (Quote, error) {
	b, err := s.total(ctx, l, "", decimal.Zero)
	if err != nil {
		return Quote{}, err
	}
	l.Snapshot(&sess)
	return Quote{
		ID:        sess.ID,
		Mission:   sess.Mission,
		Entries:   sess.Entries,
		Breakdown: b,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}, nil
}

func (s *Service) total(ctx context.Context, l *Ledger, plan catalog.PlanID, discountPercent decimal.Decimal) (pricing.Breakdown, error) {
	b, err := l.Total(plan, discountPercent)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	s.breakdowns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("plan", plan != "")))
	return b, nil
}

func recordSelection(err error) {
	var conflict *ConflictError
	switch {
	case err == nil:
		obs.IncCounter(obs.QuoteSelectionsTotal, "ok")
	case errors.As(err, &conflict):
		obs.IncCounter(obs.QuoteSelectionsTotal, "conflict")
		obs.IncCounter(obs.QuoteConflictsTotal, conflict.ModuleID, conflict.ConflictsWith)
	case errors.Is(err, ErrValidation):
		obs.IncCounter(obs.QuoteSelectionsTotal, "invalid")
	default:
		obs.IncCounter(obs.QuoteSelectionsTotal, "error")
	}
}
