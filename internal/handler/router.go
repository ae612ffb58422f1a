package handler

import (
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/omjain/venture-lens/internal/telemetry"
)

// Dependencies bundles every handler NewRouter wires into the gin engine.
type Dependencies struct {
	Ingest    *IngestHandler
	Score     *ScoreHandler
	Critique  *CritiqueHandler
	Narrative *NarrativeHandler
	Evaluate  *EvaluateHandler
	Health    *HealthHandler

	Observability *telemetry.Observability

	RateLimitWindowMS    int
	RateLimitMaxRequests int
}

// NewRouter builds the gin engine exposing every §6 endpoint, in the
// teacher's cmd/api/main.go style (gin.Default(), gin-contrib/cors with an
// env-driven allowed-origins list).
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))
	r.Use(RateLimitMiddleware(deps.RateLimitWindowMS, deps.RateLimitMaxRequests))

	r.POST("/ingest", deps.Ingest.Ingest)
	r.POST("/score", deps.Score.Score)
	r.POST("/critique", deps.Critique.Critique)
	r.POST("/narrative", deps.Narrative.Narrative)
	r.GET("/narrative/cache/:id", deps.Narrative.GetCached)
	r.DELETE("/narrative/cache/:id", deps.Narrative.DeleteCached)
	r.POST("/evaluate", deps.Evaluate.Evaluate)
	r.GET("/evaluate/reports/:id", deps.Evaluate.FetchReport)
	r.GET("/health", deps.Health.GetHealth)

	if deps.Observability != nil {
		r.GET("/metrics", gin.WrapH(deps.Observability.MetricsHandler()))
	} else {
		r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	return r
}
