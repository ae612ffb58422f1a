package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omjain/venture-lens/internal/apperr"
	"github.com/omjain/venture-lens/internal/model"
)

// Narrator is the narrow interface NarrativeHandler needs from the
// Narrative Agent.
type Narrator interface {
	Narrative(ctx context.Context, facts model.StartupFacts, cacheKey string, useCache bool) (model.Narrative, error)
}

// NarrativeCache is the narrow interface NarrativeHandler needs for the
// cache-by-id endpoints, satisfied by store.CacheStore.
type NarrativeCache interface {
	GetNarrative(ctx context.Context, key string) (model.Narrative, bool)
	Delete(ctx context.Context, key string) error
}

type NarrativeHandler struct {
	agent Narrator
	cache NarrativeCache
}

func NewNarrativeHandler(agent Narrator, cache NarrativeCache) *NarrativeHandler {
	return &NarrativeHandler{agent: agent, cache: cache}
}

// Narrative handles POST /narrative.
func (h *NarrativeHandler) Narrative(c *gin.Context) {
	var req narrativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Input("body", "invalid json body"))
		return
	}

	narrative, err := h.agent.Narrative(c.Request.Context(), req.StartupData, req.StartupID, req.useCache())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, narrative)
}

// GetCached handles GET /narrative/cache/{id}.
func (h *NarrativeHandler) GetCached(c *gin.Context) {
	id := c.Param("id")
	if h.cache == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no cached narrative"})
		return
	}
	narrative, ok := h.cache.GetNarrative(c.Request.Context(), id)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no cached narrative"})
		return
	}
	c.JSON(http.StatusOK, narrative)
}

// DeleteCached handles DELETE /narrative/cache/{id}.
func (h *NarrativeHandler) DeleteCached(c *gin.Context) {
	id := c.Param("id")
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"deleted": false})
		return
	}
	if err := h.cache.Delete(c.Request.Context(), id); err != nil {
		writeError(c, apperr.Store("failed to delete cached narrative", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
