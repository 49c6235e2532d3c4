package quiz

import (
	"net/http"

	"github.com/noah-isme/nuvme-configurator/internal/common"
)

// Handler exposes the quiz scoring endpoints. It holds no state.
type Handler struct{}

type answersRequest struct {
	Answers map[string]string `json:"answers" validate:"required,max=32"`
}

func decodeAnswers(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	var req answersRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return nil, false
	}
	return req.Answers, true
}

// Plan handles POST /api/v1/quiz/plan.
func (Handler) Plan(w http.ResponseWriter, r *http.Request) {
	answers, ok := decodeAnswers(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": ScorePlan(answers)})
}

// Mission handles POST /api/v1/quiz/mission.
func (Handler) Mission(w http.ResponseWriter, r *http.Request) {
	answers, ok := decodeAnswers(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": ScoreMission(answers)})
}

// CulturalFit handles POST /api/v1/quiz/cultural-fit.
func (Handler) CulturalFit(w http.ResponseWriter, r *http.Request) {
	answers, ok := decodeAnswers(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": ScoreCulturalFit(answers)})
}
