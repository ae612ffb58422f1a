package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omjain/venture-lens/internal/apperr"
	"github.com/omjain/venture-lens/internal/model"
)

// Critiquer is the narrow interface CritiqueHandler needs from the
// Critique Agent.
type Critiquer interface {
	Critique(ctx context.Context, startupName string, scores model.ScoreReport, facts model.StartupFacts, summary string) (model.CritiqueReport, error)
}

type CritiqueHandler struct {
	agent Critiquer
}

func NewCritiqueHandler(agent Critiquer) *CritiqueHandler {
	return &CritiqueHandler{agent: agent}
}

// Critique handles POST /critique.
func (h *CritiqueHandler) Critique(c *gin.Context) {
	var req critiqueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Input("body", "invalid json body"))
		return
	}

	report, err := h.agent.Critique(c.Request.Context(), req.StartupName, req.ScoreReport, model.StartupFacts{Name: req.StartupName}, req.PitchdeckSummary)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
