package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omjain/venture-lens/internal/agents/ingestion"
	"github.com/omjain/venture-lens/internal/model"
)

// Ingester is the narrow interface IngestHandler needs from the Ingestion
// Agent.
type Ingester interface {
	Ingest(ctx context.Context, source ingestion.Source) (model.StartupFacts, error)
}

type IngestHandler struct {
	agent Ingester
}

func NewIngestHandler(agent Ingester) *IngestHandler {
	return &IngestHandler{agent: agent}
}

// Ingest handles POST /ingest.
func (h *IngestHandler) Ingest(c *gin.Context) {
	source, err := parseSource(c)
	if err != nil {
		writeError(c, err)
		return
	}

	facts, err := h.agent.Ingest(c.Request.Context(), source)
	if err != nil {
		slog.Error("ingestion failed", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, facts)
}
