package quiz

import "github.com/noah-isme/nuvme-configurator/internal/catalog"

var missionQuestions = map[string]map[string]catalog.MissionID{
	"main-challenge": {
		"high-costs":         catalog.MissionFinOps,
		"legacy-environment": catalog.MissionModernization,
		"security-concerns":  catalog.MissionSecurity,
		"migration-planning": catalog.MissionMigration,
		"innovation":         catalog.MissionNextGen,
	},
	"priority-problem": {
		"reduce-costs":        catalog.MissionFinOps,
		"automate-deploys":    catalog.MissionModernization,
		"strengthen-security": catalog.MissionSecurity,
		"safe-transition":     catalog.MissionMigration,
		"full-visibility":     catalog.MissionNextGen,
	},
	"current-environment": {
		"evaluating-change":       catalog.MissionMigration,
		"no-automation":           catalog.MissionModernization,
		"automated-no-control":    catalog.MissionFinOps,
		"mature-needs-innovation": catalog.MissionNextGen,
		"lacks-security":          catalog.MissionSecurity,
	},
	"future-concerns": {
		"unpredictable-costs": catalog.MissionFinOps,
		"lack-automation":     catalog.MissionModernization,
		"data-breach":         catalog.MissionSecurity,
		"solid-foundation":    catalog.MissionMigration,
		"lack-visibility":     catalog.MissionNextGen,
	},
	"infrastructure-management": {
		"manually":                catalog.MissionModernization,
		"scripts-no-cost-control": catalog.MissionFinOps,
		"governance-priority":     catalog.MissionSecurity,
		"migrating-starting":      catalog.MissionMigration,
		"advanced-dashboards":     catalog.MissionNextGen,
	},
	"main-gain": {
		"reduce-optimize-costs": catalog.MissionFinOps,
		"modernize-automate":    catalog.MissionModernization,
		"elevate-security":      catalog.MissionSecurity,
		"correct-migration":     catalog.MissionMigration,
		"innovate-intelligence": catalog.MissionNextGen,
	},
	"support-expectation": {
		"stability-predictability": catalog.MissionFinOps,
		"modern-standardized":      catalog.MissionModernization,
		"secure-monitored":         catalog.MissionSecurity,
		"structure-reorganize":     catalog.MissionMigration,
		"intelligent-monitoring":   catalog.MissionNextGen,
	},
}

// missionOrder breaks ties: the earlier mission wins.
var missionOrder = []catalog.MissionID{
	catalog.MissionModernization,
	catalog.MissionSecurity,
	catalog.MissionMigration,
	catalog.MissionFinOps,
	catalog.MissionNextGen,
}

// MissionResult is the outcome of the mission quiz.
type MissionResult struct {
	Recommended catalog.MissionID         `json:"recommended"`
	Votes       map[catalog.MissionID]int `json:"votes"`
}

// ScoreMission recommends the mission with the strictly highest vote count,
// modernization when nothing was answered.
func ScoreMission(answers map[string]string) MissionResult {
	votes := make(map[catalog.MissionID]int, len(missionOrder))
	for _, m := range missionOrder {
		votes[m] = 0
	}
	for question, option := range answers {
		if mission, ok := missionQuestions[question][option]; ok {
			votes[mission]++
		}
	}
	best, bestCount := catalog.MissionModernization, 0
	for _, m := range missionOrder {
		if votes[m] > bestCount {
			best, bestCount = m, votes[m]
		}
	}
	return MissionResult{Recommended: best, Votes: votes}
}
