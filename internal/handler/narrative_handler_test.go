package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"github.com/omjain/venture-lens/internal/model"
)

type fakeNarrator struct {
	narrative model.Narrative
	err       error
}

func (f *fakeNarrator) Narrative(ctx context.Context, facts model.StartupFacts, cacheKey string, useCache bool) (model.Narrative, error) {
	return f.narrative, f.err
}

type fakeNarrativeCache struct {
	stored map[string]model.Narrative
	getErr error
}

func (f *fakeNarrativeCache) GetNarrative(ctx context.Context, key string) (model.Narrative, bool) {
	n, ok := f.stored[key]
	return n, ok
}

func (f *fakeNarrativeCache) Delete(ctx context.Context, key string) error {
	delete(f.stored, key)
	return f.getErr
}

func newTestNarrativeRouter(n Narrator, cache NarrativeCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewNarrativeHandler(n, cache)
	r.POST("/narrative", h.Narrative)
	r.GET("/narrative/cache/:id", h.GetCached)
	r.DELETE("/narrative/cache/:id", h.DeleteCached)
	return r
}

func TestNarrative_ReturnsNarrative(t *testing.T) {
	n := model.Narrative{Vision: "big vision", Tagline: "Ship fast."}
	r := newTestNarrativeRouter(&fakeNarrator{narrative: n}, &fakeNarrativeCache{stored: map[string]model.Narrative{}})

	body, _ := json.Marshal(narrativeRequest{StartupData: model.StartupFacts{Name: "Acme"}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/narrative", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNarrativeCache_HitReturnsNarrative(t *testing.T) {
	cache := &fakeNarrativeCache{stored: map[string]model.Narrative{"abc": {Vision: "cached"}}}
	r := newTestNarrativeRouter(&fakeNarrator{}, cache)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/narrative/cache/abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNarrativeCache_MissReturns404(t *testing.T) {
	cache := &fakeNarrativeCache{stored: map[string]model.Narrative{}}
	r := newTestNarrativeRouter(&fakeNarrator{}, cache)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/narrative/cache/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNarrativeCache_DeleteAcks(t *testing.T) {
	cache := &fakeNarrativeCache{stored: map[string]model.Narrative{"abc": {Vision: "cached"}}}
	r := newTestNarrativeRouter(&fakeNarrator{}, cache)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/narrative/cache/abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	if _, ok := cache.stored["abc"]; ok {
		t.Fatal("expected key to be deleted")
	}
}
