package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omjain/venture-lens/internal/agents/scoring"
	"github.com/omjain/venture-lens/internal/apperr"
	"github.com/omjain/venture-lens/internal/model"
)

const minScoreFieldLength = 10

// Scorer is the narrow interface ScoreHandler needs from the Scoring
// Agent.
type Scorer interface {
	Score(ctx context.Context, fields scoring.Fields) (model.ScoreReport, error)
}

type ScoreHandler struct {
	agent Scorer
}

func NewScoreHandler(agent Scorer) *ScoreHandler {
	return &ScoreHandler{agent: agent}
}

// Score handles POST /score. Rejects any of {idea, team, traction, market}
// shorter than 10 characters with a 400 naming the offending field, per
// §6.
func (h *ScoreHandler) Score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Input("body", "invalid json body"))
		return
	}

	fields := scoring.Fields{Idea: req.Idea, Team: req.Team, Traction: req.Traction, Market: req.Market}
	if err := validateScoreFields(fields); err != nil {
		writeError(c, err)
		return
	}

	report, err := h.agent.Score(c.Request.Context(), fields)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func validateScoreFields(fields scoring.Fields) error {
	checks := []struct {
		field string
		value string
	}{
		{"idea", fields.Idea},
		{"team", fields.Team},
		{"traction", fields.Traction},
		{"market", fields.Market},
	}
	for _, check := range checks {
		if len(check.value) < minScoreFieldLength {
			return apperr.Input(check.field, "must be at least 10 characters")
		}
	}
	return nil
}
