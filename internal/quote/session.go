package quote

import (
	"fmt"
	"time"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/pricing"
)

// EntryState is the persisted form of a ledger entry. Modules are stored by id
// and resolved against the catalog when the session is loaded.
type EntryState struct {
	ModuleID     string               `json:"module_id"`
	Quantity     int                  `json:"quantity"`
	Complexity   catalog.Complexity   `json:"complexity,omitempty"`
	Services     []string             `json:"services,omitempty"`
	DatabaseSize catalog.DatabaseSize `json:"database_size,omitempty"`
}

// Session is a persisted quote session.
type Session struct {
	ID        string            `json:"id"`
	Mission   catalog.MissionID `json:"mission,omitempty"`
	Entries   []EntryState      `json:"entries"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Snapshot captures the ledger state into s.
func (l *Ledger) Snapshot(s *Session) {
	s.Mission = l.mission
	s.Entries = make([]EntryState, 0, len(l.entries))
	for _, e := range l.entries {
		s.Entries = append(s.Entries, EntryState{
			ModuleID:     e.Module.ID,
			Quantity:     e.Selection.Quantity,
			Complexity:   e.Selection.Complexity,
			Services:     e.Selection.Services,
			DatabaseSize: e.Selection.DatabaseSize,
		})
	}
}

// Restore rebuilds a ledger from a persisted session.
func Restore(c *catalog.Catalog, s Session) (*Ledger, error) {
	l := NewLedger(c)
	l.mission = s.Mission
	for _, st := range s.Entries {
		m, err := c.Module(st.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("restore session %s: %s: %w", s.ID, st.ModuleID, err)
		}
		l.entries = append(l.entries, Entry{
			Module: m,
			Selection: pricing.Selection{
				Quantity:     st.Quantity,
				Complexity:   st.Complexity,
				Services:     st.Services,
				DatabaseSize: st.DatabaseSize,
			},
		})
	}
	return l, nil
}
