package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omjain/venture-lens/internal/agents/ingestion"
	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/internal/orchestrator"
)

// Evaluator is the narrow interface EvaluateHandler needs from the
// Orchestrator.
type Evaluator interface {
	Evaluate(ctx context.Context, source ingestion.Source, opts orchestrator.EvaluateOptions) (model.EvaluationResult, error)
	Fetch(reportID string) ([]byte, bool)
}

type EvaluateHandler struct {
	orchestrator Evaluator
}

func NewEvaluateHandler(orchestrator Evaluator) *EvaluateHandler {
	return &EvaluateHandler{orchestrator: orchestrator}
}

// Evaluate handles POST /evaluate.
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	source, err := parseSource(c)
	if err != nil {
		writeError(c, err)
		return
	}

	startupID := firstNonEmpty(c.PostForm("startup_id"), c.Query("startup_id"))
	useCache := firstNonEmpty(c.PostForm("use_cache"), c.Query("use_cache")) != "false"

	opts := orchestrator.EvaluateOptions{CacheKey: startupID, UseCache: useCache}

	result, err := h.orchestrator.Evaluate(c.Request.Context(), source, opts)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newEvaluateResponse(result))
}

// FetchReport handles GET /evaluate/reports/{id}.
func (h *EvaluateHandler) FetchReport(c *gin.Context) {
	id := reportIDFromParam(c.Param("id"))
	blob, ok := h.orchestrator.Fetch(id)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "report not found", Field: "id"})
		return
	}
	c.Data(http.StatusOK, "application/pdf", blob)
}

// reportIDFromParam strips a trailing ".pdf" from the {id}.pdf route
// segment per §6's report url format.
func reportIDFromParam(raw string) string {
	const suffix = ".pdf"
	if len(raw) > len(suffix) && raw[len(raw)-len(suffix):] == suffix {
		return raw[:len(raw)-len(suffix)]
	}
	return raw
}
