package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omjain/venture-lens/internal/apperr"
)

// writeError maps an apperr.Kind to the §7 status code and writes the JSON
// error body; unrecognized errors (a bug, not a modeled failure) log at
// Error level and surface as 500.
func writeError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindInput:
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Field: apperr.FieldOf(err)})
	case apperr.KindIngestion:
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	case apperr.KindStore:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	case apperr.KindCancelled:
		c.JSON(http.StatusRequestTimeout, errorResponse{Error: err.Error()})
	default:
		slog.Error("unhandled handler error", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
