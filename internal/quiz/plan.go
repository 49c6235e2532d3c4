package quiz

import "github.com/noah-isme/nuvme-configurator/internal/catalog"

// planQuestions maps question id to option id to the plan the option votes for.
var planQuestions = map[string]map[string]catalog.PlanID{
	"relationship": {
		"stable-base":           catalog.PlanEssential,
		"daily-comanagement":    catalog.PlanAdvanced,
		"strategic-partnership": catalog.PlanPremier,
	},
	"incident-handling": {
		"notification":         catalog.PlanEssential,
		"active-response":      catalog.PlanAdvanced,
		"systemic-improvement": catalog.PlanPremier,
	},
	"interaction-rhythm": {
		"reactive-support":   catalog.PlanEssential,
		"recurring-rituals":  catalog.PlanAdvanced,
		"executive-tracking": catalog.PlanPremier,
	},
	"objective-3-6-months": {
		"organize":               catalog.PlanEssential,
		"efficiency":             catalog.PlanAdvanced,
		"performance-innovation": catalog.PlanPremier,
	},
	"finops-expected": {
		"alerts-reports":      catalog.PlanEssential,
		"recurring-practices": catalog.PlanAdvanced,
		"strategic-finops":    catalog.PlanPremier,
	},
	"observability-decision": {
		"essential-indicators":   catalog.PlanEssential,
		"advanced-monitoring":    catalog.PlanAdvanced,
		"advanced-observability": catalog.PlanPremier,
	},
}

const planThreshold = 3

// Upgrade is a suggested move to the next plan.
type Upgrade struct {
	To     catalog.PlanID `json:"to"`
	Reason string         `json:"reason"`
}

// PlanResult is the outcome of the plan quiz.
type PlanResult struct {
	Recommended catalog.PlanID         `json:"recommended"`
	Votes       map[catalog.PlanID]int `json:"votes"`
	Upgrade     *Upgrade               `json:"upgrade,omitempty"`
}

// ScorePlan recommends a plan from answers (question id to option id).
// Unknown questions and options are ignored.
func ScorePlan(answers map[string]string) PlanResult {
	votes := map[catalog.PlanID]int{
		catalog.PlanEssential: 0,
		catalog.PlanAdvanced:  0,
		catalog.PlanPremier:   0,
	}
	for question, option := range answers {
		if plan, ok := planQuestions[question][option]; ok {
			votes[plan]++
		}
	}

	res := PlanResult{Recommended: catalog.PlanEssential, Votes: votes}
	switch {
	case votes[catalog.PlanPremier] >= planThreshold:
		res.Recommended = catalog.PlanPremier
	case votes[catalog.PlanAdvanced] >= planThreshold:
		res.Recommended = catalog.PlanAdvanced
	}
	res.Upgrade = suggestUpgrade(answers, res.Recommended)
	return res
}

func suggestUpgrade(answers map[string]string, recommended catalog.PlanID) *Upgrade {
	switch recommended {
	case catalog.PlanEssential:
		if answers["interaction-rhythm"] == "recurring-rituals" || answers["finops-expected"] == "recurring-practices" {
			return &Upgrade{
				To:     catalog.PlanAdvanced,
				Reason: "Co-management and continuous optimization fit the Advanced plan with a dedicated DevOps squad.",
			}
		}
	case catalog.PlanAdvanced:
		if answers["objective-3-6-months"] == "performance-innovation" ||
			answers["finops-expected"] == "strategic-finops" ||
			answers["observability-decision"] == "advanced-observability" {
			return &Upgrade{
				To:     catalog.PlanPremier,
				Reason: "High-maturity teams after peak performance and continuous innovation get the most from Premier.",
			}
		}
	}
	return nil
}
