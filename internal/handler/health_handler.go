package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and a configuration summary, in the
// teacher's GetHealth style but without a database dependency to probe —
// this service has no required datastore, so liveness is unconditional and
// the interesting signal is which optional features are configured.
type HealthHandler struct {
	llmConfigured      bool
	cacheConfigured    bool
	critiqueLogEnabled bool
}

func NewHealthHandler(llmConfigured, cacheConfigured, critiqueLogEnabled bool) *HealthHandler {
	return &HealthHandler{
		llmConfigured:      llmConfigured,
		cacheConfigured:    cacheConfigured,
		critiqueLogEnabled: critiqueLogEnabled,
	}
}

func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"configuration": gin.H{
			"llm_configured":       h.llmConfigured,
			"cache_configured":     h.cacheConfigured,
			"critique_log_enabled": h.critiqueLogEnabled,
		},
	})
}
