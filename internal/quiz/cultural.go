package quiz

// FitLevel grades the cultural fit score.
type FitLevel string

const (
	FitHigh   FitLevel = "high"
	FitMedium FitLevel = "medium"
	FitLow    FitLevel = "low"
)

var culturalQuestions = map[string]map[string]float64{
	"transparency":    {"open": 1, "selective": 0.5, "closed": 0},
	"partnership":     {"longterm": 1, "project": 0.5, "transactional": 0},
	"proactivity":     {"high-autonomy": 1, "guided": 0.5, "controlled": 0},
	"communication":   {"realtime": 1, "mixed": 0.5, "formal": 0},
	"best-practices":  {"open-access": 1, "reviewed": 0.5, "restricted": 0},
	"lead-kindness":   {"collaborative": 1, "professional": 0.5, "demanding": 0},
	"cloud-as-pillar": {"strategic": 1, "important": 0.5, "operational": 0},
}

var fitRecommendations = map[FitLevel][]string{
	FitHigh: {
		"Open a deeper conversation about a strategic partnership",
		"Consider the Advanced or Premier plans",
		"Schedule a long-term roadmap meeting",
	},
	FitMedium: {
		"Hold an initial conversation to align partnership expectations",
		"Start with the Essential plan and evolve the relationship",
	},
	FitLow: {
		"Have a transparent conversation about expectations",
		"Start with a scoped project to evaluate the fit",
	},
}

// CulturalFitResult is the outcome of the cultural fit quiz.
type CulturalFitResult struct {
	Score           float64  `json:"score"`
	MaxScore        float64  `json:"max_score"`
	Level           FitLevel `json:"level"`
	Recommendations []string `json:"recommendations"`
}

// ScoreCulturalFit sums option scores: high from 6, medium from 3.
func ScoreCulturalFit(answers map[string]string) CulturalFitResult {
	var score float64
	for question, option := range answers {
		score += culturalQuestions[question][option]
	}
	level := FitLow
	switch {
	case score >= 6:
		level = FitHigh
	case score >= 3:
		level = FitMedium
	}
	return CulturalFitResult{
		Score:           score,
		MaxScore:        float64(len(culturalQuestions)),
		Level:           level,
		Recommendations: fitRecommendations[level],
	}
}
