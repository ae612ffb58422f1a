package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"

	"github.com/asaskevich/govalidator"
	"github.com/gin-gonic/gin"

	"github.com/omjain/venture-lens/internal/agents/ingestion"
	"github.com/omjain/venture-lens/internal/apperr"
	"github.com/omjain/venture-lens/internal/model"
)

// parseSource builds an ingestion.Source from a request that may present a
// multipart file upload, a url form/query value, or a json_data payload —
// exactly one, per §6. Companion text fields are collected regardless of
// which primary source is used.
func parseSource(c *gin.Context) (ingestion.Source, error) {
	companion := ingestion.CompanionText{
		StartupName: firstNonEmpty(c.PostForm("startup_name"), c.Query("startup_name")),
		Description: firstNonEmpty(c.PostForm("description"), c.Query("description")),
		Market:      firstNonEmpty(c.PostForm("market"), c.Query("market")),
		Team:        firstNonEmpty(c.PostForm("team"), c.Query("team")),
		Traction:    firstNonEmpty(c.PostForm("traction"), c.Query("traction")),
	}

	fileHeader, fileErr := c.FormFile("file")
	rawURL := firstNonEmpty(c.PostForm("url"), c.Query("url"))
	jsonData := c.PostForm("json_data")

	var structured *model.StartupFacts
	if jsonData != "" {
		var facts model.StartupFacts
		if err := json.Unmarshal([]byte(jsonData), &facts); err != nil {
			return ingestion.Source{}, apperr.Input("json_data", "invalid json: "+err.Error())
		}
		structured = &facts
	} else if c.ContentType() == gin.MIMEJSON {
		var facts model.StartupFacts
		if err := c.ShouldBindJSON(&facts); err == nil {
			structured = &facts
		}
	}

	present := 0
	if fileErr == nil {
		present++
	}
	if rawURL != "" {
		present++
	}
	if structured != nil {
		present++
	}
	if present != 1 {
		return ingestion.Source{}, apperr.Input("source", "exactly one of file, url, json_data must be provided")
	}

	if fileErr == nil {
		data, err := readMultipartFile(fileHeader)
		if err != nil {
			return ingestion.Source{}, apperr.Input("file", "failed to read uploaded file: "+err.Error())
		}
		return ingestion.Source{PDF: data, Companion: companion}, nil
	}

	if rawURL != "" {
		if !govalidator.IsURL(rawURL) {
			return ingestion.Source{}, apperr.Input("url", "not a valid url")
		}
		return ingestion.Source{URL: rawURL, Companion: companion}, nil
	}

	return ingestion.Source{Structured: structured, Companion: companion}, nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
