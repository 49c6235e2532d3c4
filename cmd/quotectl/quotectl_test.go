package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvme-configurator/internal/quote"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseSelection(t *testing.T) {
	sel, err := parseSelection("database:services=rds_setup|backup,db=small")
	require.NoError(t, err)
	require.Equal(t, "database", sel.moduleID)
	require.Equal(t, quote.Options{Services: []string{"rds_setup", "backup"}, DatabaseSize: "small"}, sel.opts)

	sel, err = parseSelection("security_hub:complexity=complex")
	require.NoError(t, err)
	require.Equal(t, "complex", sel.opts.Complexity)

	sel, err = parseSelection("cicd")
	require.NoError(t, err)
	require.Zero(t, sel.opts.Quantity)

	for _, bad := range []string{"", ":qty=1", "cicd:qty=five", "cicd:size", "cicd:color=red"} {
		_, err := parseSelection(bad)
		require.Error(t, err, bad)
	}
}

func TestPriceJSON(t *testing.T) {
	out, err := run(t, "", "price", "--mission", "modernization",
		"--select", "cicd:qty=5", "--select", "kubernetes:qty=3", "--discount", "10%", "--format", "json")
	require.NoError(t, err)

	var b struct {
		Total      int64  `json:"total"`
		TotalLabel string `json:"total_label"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	require.Equal(t, int64(2862000), b.Total)
	require.Equal(t, "R$ 28.620,00", b.TotalLabel)
}

func TestPriceTable(t *testing.T) {
	out, err := run(t, "", "price", "--select", "cicd:qty=5", "--select", "kubernetes:qty=3")
	require.NoError(t, err)
	require.Contains(t, out, "Subtotal")
	require.Contains(t, out, "R$ 31.800,00")
}

func TestPriceRejectsConflict(t *testing.T) {
	_, err := run(t, "", "price", "--select", "cicd", "--select", "gitops")
	require.ErrorIs(t, err, quote.ErrConflict)

	_, err = run(t, "", "price", "--select", "cicd", "--format", "xml")
	require.Error(t, err)
}

func TestListCommands(t *testing.T) {
	out, err := run(t, "", "missions")
	require.NoError(t, err)
	require.Contains(t, out, "modernization")

	out, err = run(t, "", "modules", "--mission", "security")
	require.NoError(t, err)
	require.Contains(t, out, "skyguard")
	require.NotContains(t, out, "kubernetes")

	out, err = run(t, "", "plans")
	require.NoError(t, err)
	require.Contains(t, out, "premier")
}

func TestHashPIN(t *testing.T) {
	out, err := run(t, "2468\n", "hash-pin")
	require.NoError(t, err)
	match, err := argon2id.ComparePasswordAndHash("2468", strings.TrimSpace(out))
	require.NoError(t, err)
	require.True(t, match)

	_, err = run(t, "", "hash-pin", "12")
	require.Error(t, err)
}
