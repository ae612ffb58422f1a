package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"github.com/omjain/venture-lens/internal/agents/scoring"
	"github.com/omjain/venture-lens/internal/model"
)

type fakeScorer struct {
	report model.ScoreReport
	err    error
}

func (f *fakeScorer) Score(ctx context.Context, fields scoring.Fields) (model.ScoreReport, error) {
	return f.report, f.err
}

func newTestScoreRouter(s Scorer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewScoreHandler(s)
	r.POST("/score", h.Score)
	return r
}

func validScoreBody() []byte {
	body, _ := json.Marshal(scoreRequest{
		Idea:     "A marketplace connecting independent coffee roasters with office buyers.",
		Team:     "Two ex-Blue Bottle operators with 8 years combined roasting experience.",
		Traction: "120 paying office accounts, $40k MRR, 15% MoM growth for 6 months.",
		Market:   "The US specialty coffee market is valued at $20B and growing 9% annually.",
	})
	return body
}

func TestScore_RejectsShortFields(t *testing.T) {
	r := newTestScoreRouter(&fakeScorer{})

	body, _ := json.Marshal(scoreRequest{Idea: "too short", Team: "also short here", Traction: "nope", Market: "nope"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/score", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScore_ReturnsReportOnValidInput(t *testing.T) {
	report := model.ScoreReport{OverallScore: 7.5, Recommendation: "Good Investment Opportunity"}
	r := newTestScoreRouter(&fakeScorer{report: report})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/score", bytes.NewReader(validScoreBody()))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got model.ScoreReport
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	assert.Equal(t, report.OverallScore, got.OverallScore)
}

func TestScore_PropagatesAgentError(t *testing.T) {
	r := newTestScoreRouter(&fakeScorer{err: errors.New("boom")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/score", bytes.NewReader(validScoreBody()))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestScore_RejectsInvalidJSON(t *testing.T) {
	r := newTestScoreRouter(&fakeScorer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/score", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
