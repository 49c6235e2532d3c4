package quote

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/money"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(catalog.MustDefault())
}

func entryIDs(l *Ledger) []string {
	ids := make([]string, 0, l.Len())
	for _, e := range l.Entries() {
		ids = append(ids, e.Module.ID)
	}
	return ids
}

func TestSelectUpsertKeepsPosition(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Select("cicd", Options{Quantity: 5}))
	require.NoError(t, l.Select("kubernetes", Options{Quantity: 3}))
	require.NoError(t, l.Select("cicd", Options{Quantity: 10}))

	require.Equal(t, []string{"cicd", "kubernetes"}, entryIDs(l))
	require.Equal(t, 10, l.Entries()[0].Selection.Quantity)
}

func TestSelectIsIdempotent(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Select("cicd", Options{Quantity: 5}))
	first, err := l.Total("", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, l.Select("cicd", Options{Quantity: 5}))
	second, err := l.Total("", decimal.Zero)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, l.Len())
}

func TestCICDAndGitOpsAreExclusive(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Select("cicd", Options{Quantity: 5}))

	err := l.Select("gitops", Options{Quantity: 2})
	require.ErrorIs(t, err, ErrConflict)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, "gitops", conflict.ModuleID)
	require.Equal(t, "cicd", conflict.ConflictsWith)
	require.Contains(t, conflict.Message, "CI/CD Implementation")
	require.Equal(t, []string{"cicd"}, entryIDs(l))

	// updating the present member is not a conflict
	require.NoError(t, l.Select("cicd", Options{Quantity: 7}))

	l.Deselect("cicd")
	require.NoError(t, l.Select("gitops", Options{Quantity: 2}))
	require.ErrorIs(t, l.Select("cicd", Options{}), ErrConflict)
}

func TestSelectValidation(t *testing.T) {
	cases := []struct {
		name   string
		module string
		opts   Options
		field  string
	}{
		{"unknown module", "nope", Options{}, "module"},
		{"quantity above max", "kubernetes", Options{Quantity: 21}, "quantity"},
		{"negative quantity", "kubernetes", Options{Quantity: -1}, "quantity"},
		{"complexity on variable module", "cicd", Options{Complexity: "simple"}, "complexity"},
		{"unknown complexity", "security_hub", Options{Complexity: "extreme"}, "complexity"},
		{"services on complexity module", "security_hub", Options{Services: []string{"waf"}}, "services"},
		{"unknown service", "skyguard", Options{Services: []string{"waf", "ddos"}}, "services"},
		{"size on skyguard", "skyguard", Options{DatabaseSize: "small"}, "database_size"},
		{"unknown size", "database", Options{DatabaseSize: "huge"}, "database_size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLedger(t)
			err := l.Select(tc.module, tc.opts)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected validation error, got %v", err)
			require.Equal(t, tc.field, vErr.Field)
			require.ErrorIs(t, err, ErrValidation)
			require.Zero(t, l.Len())
		})
	}
}

func TestSelectNormalizesOptions(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Select("kubernetes", Options{}))
	require.NoError(t, l.Select("security_hub", Options{Complexity: "moderate"}))
	require.NoError(t, l.Select("skyguard", Options{Services: []string{"kms", "waf", "kms"}}))

	entries := l.Entries()
	require.Equal(t, 3, entries[0].Selection.Quantity, "zero quantity selects the default")
	require.Equal(t, catalog.ComplexityComplex, entries[1].Selection.Complexity)
	require.Equal(t, []string{"waf", "kms"}, entries[2].Selection.Services)
}

func TestSelectOutsideMission(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.SetMission(catalog.MissionSecurity))
	err := l.Select("kubernetes", Options{})
	require.ErrorIs(t, err, ErrValidation)
	require.NoError(t, l.Select("skyguard", Options{Services: []string{"waf"}}))
}

func TestSetMissionPrunes(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Select("cicd", Options{Quantity: 5}))
	require.NoError(t, l.Select("database", Options{Services: []string{"rds_setup"}}))
	require.NoError(t, l.Select("faturamento", Options{}))

	require.NoError(t, l.SetMission(catalog.MissionMigration))
	require.Equal(t, []string{"database", "faturamento"}, entryIDs(l))
	require.Equal(t, catalog.MissionMigration, l.Mission())

	require.ErrorIs(t, l.SetMission("space"), ErrValidation)
	require.Equal(t, catalog.MissionMigration, l.Mission())
}

func TestDeselectAndReset(t *testing.T) {
	l := newTestLedger(t)
	l.Deselect("cicd")
	require.Zero(t, l.Len())

	require.NoError(t, l.SetMission(catalog.MissionModernization))
	require.NoError(t, l.Select("cicd", Options{Quantity: 5}))
	require.NoError(t, l.Select("kubernetes", Options{Quantity: 3}))
	l.Deselect("cicd")
	require.Equal(t, []string{"kubernetes"}, entryIDs(l))

	l.Reset()
	require.Zero(t, l.Len())
	require.Empty(t, l.Mission())
	b, err := l.Total("", decimal.Zero)
	require.NoError(t, err)
	require.Zero(t, b.Total)
}

func TestLedgerTotal(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.SetMission(catalog.MissionModernization))
	require.NoError(t, l.Select("cicd", Options{Quantity: 5}))
	require.NoError(t, l.Select("kubernetes", Options{Quantity: 3}))

	b, err := l.Total("", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Equal(t, money.BRL(31800), b.Subtotal)
	require.Equal(t, money.BRL(28620), b.Total)

	_, err = l.Total("gold", decimal.Zero)
	require.ErrorIs(t, err, ErrValidation)

	_, err = l.Total("", decimal.NewFromInt(101))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "discount", vErr.Field)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	c := catalog.MustDefault()
	l := NewLedger(c)
	require.NoError(t, l.SetMission(catalog.MissionSecurity))
	require.NoError(t, l.Select("skyguard", Options{Services: []string{"waf", "kms"}}))
	require.NoError(t, l.Select("security_practices", Options{Complexity: "very_complex"}))

	var s Session
	l.Snapshot(&s)
	restored, err := Restore(c, s)
	require.NoError(t, err)
	require.Equal(t, l.Entries(), restored.Entries())
	require.Equal(t, l.Mission(), restored.Mission())

	s.Entries = append(s.Entries, EntryState{ModuleID: "retired"})
	_, err = Restore(c, s)
	require.ErrorIs(t, err, catalog.ErrModuleNotFound)
}
