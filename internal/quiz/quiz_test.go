package quiz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
)

func TestScorePlanThresholds(t *testing.T) {
	cases := []struct {
		name    string
		answers map[string]string
		want    catalog.PlanID
	}{
		{"empty", nil, catalog.PlanEssential},
		{"three premier", map[string]string{
			"relationship":         "strategic-partnership",
			"incident-handling":    "systemic-improvement",
			"objective-3-6-months": "performance-innovation",
			"interaction-rhythm":   "recurring-rituals",
		}, catalog.PlanPremier},
		{"premier wins over advanced", map[string]string{
			"relationship":           "strategic-partnership",
			"incident-handling":      "systemic-improvement",
			"interaction-rhythm":     "executive-tracking",
			"objective-3-6-months":   "efficiency",
			"finops-expected":        "recurring-practices",
			"observability-decision": "advanced-monitoring",
		}, catalog.PlanPremier},
		{"three advanced", map[string]string{
			"relationship":      "daily-comanagement",
			"incident-handling": "active-response",
			"finops-expected":   "recurring-practices",
		}, catalog.PlanAdvanced},
		{"two of each", map[string]string{
			"relationship":           "daily-comanagement",
			"incident-handling":      "active-response",
			"interaction-rhythm":     "executive-tracking",
			"objective-3-6-months":   "performance-innovation",
			"finops-expected":        "alerts-reports",
			"observability-decision": "essential-indicators",
		}, catalog.PlanEssential},
		{"unknown answers ignored", map[string]string{
			"relationship": "nope",
			"weather":      "sunny",
		}, catalog.PlanEssential},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ScorePlan(tc.answers).Recommended)
		})
	}
}

func TestScorePlanUpgrades(t *testing.T) {
	res := ScorePlan(map[string]string{"interaction-rhythm": "recurring-rituals"})
	require.Equal(t, catalog.PlanEssential, res.Recommended)
	require.NotNil(t, res.Upgrade)
	require.Equal(t, catalog.PlanAdvanced, res.Upgrade.To)

	res = ScorePlan(map[string]string{
		"relationship":           "daily-comanagement",
		"incident-handling":      "active-response",
		"interaction-rhythm":     "recurring-rituals",
		"observability-decision": "advanced-observability",
	})
	require.Equal(t, catalog.PlanAdvanced, res.Recommended)
	require.NotNil(t, res.Upgrade)
	require.Equal(t, catalog.PlanPremier, res.Upgrade.To)

	res = ScorePlan(map[string]string{
		"relationship":         "strategic-partnership",
		"incident-handling":    "systemic-improvement",
		"objective-3-6-months": "performance-innovation",
	})
	require.Nil(t, res.Upgrade)

	require.Nil(t, ScorePlan(map[string]string{"relationship": "stable-base"}).Upgrade)
}

func TestScoreMission(t *testing.T) {
	res := ScoreMission(nil)
	require.Equal(t, catalog.MissionModernization, res.Recommended)

	res = ScoreMission(map[string]string{
		"main-challenge":      "high-costs",
		"priority-problem":    "reduce-costs",
		"current-environment": "lacks-security",
	})
	require.Equal(t, catalog.MissionFinOps, res.Recommended)
	require.Equal(t, 2, res.Votes[catalog.MissionFinOps])

	// tie between security and nextgen keeps the earlier mission
	res = ScoreMission(map[string]string{
		"main-challenge":   "innovation",
		"priority-problem": "strengthen-security",
	})
	require.Equal(t, catalog.MissionSecurity, res.Recommended)

	res = ScoreMission(map[string]string{"infrastructure-management": "migrating-starting"})
	require.Equal(t, catalog.MissionMigration, res.Recommended)
}

func TestScoreCulturalFit(t *testing.T) {
	all := map[string]string{
		"transparency": "open", "partnership": "longterm", "proactivity": "high-autonomy",
		"communication": "realtime", "best-practices": "open-access", "lead-kindness": "collaborative",
		"cloud-as-pillar": "strategic",
	}
	res := ScoreCulturalFit(all)
	require.Equal(t, 7.0, res.Score)
	require.Equal(t, FitHigh, res.Level)
	require.Equal(t, 7.0, res.MaxScore)

	res = ScoreCulturalFit(map[string]string{
		"transparency": "selective", "partnership": "project", "proactivity": "guided",
		"communication": "mixed", "best-practices": "reviewed", "lead-kindness": "professional",
	})
	require.Equal(t, 3.0, res.Score)
	require.Equal(t, FitMedium, res.Level)

	res = ScoreCulturalFit(map[string]string{"transparency": "closed", "partnership": "project", "unknown": "x"})
	require.Equal(t, 0.5, res.Score)
	require.Equal(t, FitLow, res.Level)
	require.NotEmpty(t, res.Recommendations)
}

func TestHandlers(t *testing.T) {
	h := Handler{}
	rr := httptest.NewRecorder()
	h.Mission(rr, httptest.NewRequest(http.MethodPost, "/api/v1/quiz/mission",
		strings.NewReader(`{"answers":{"main-challenge":"migration-planning"}}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data MissionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, catalog.MissionMigration, body.Data.Recommended)

	rr = httptest.NewRecorder()
	h.Plan(rr, httptest.NewRequest(http.MethodPost, "/api/v1/quiz/plan", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	h.CulturalFit(rr, httptest.NewRequest(http.MethodPost, "/api/v1/quiz/cultural-fit", strings.NewReader(`{"answers":`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
