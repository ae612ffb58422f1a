package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"

	"github.com/omjain/venture-lens/internal/model"
)

// Renderer turns rendered HTML into a PDF blob. The production
// implementation shells out to wkhtmltopdf; tests substitute a fake that
// returns a fixed %PDF blob, matching §9's "non-empty %PDF blob retrievable
// by id" contract without needing the binary installed.
type Renderer interface {
	RenderHTML(html string) ([]byte, error)
}

const docTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #222; margin: 40px; }
.header { border-bottom: 2px solid #333; padding-bottom: 12px; margin-bottom: 24px; }
.header h1 { margin: 0; }
.section { margin-bottom: 28px; }
.section h2 { border-bottom: 1px solid #ccc; padding-bottom: 4px; }
.score-box { display: inline-block; margin-right: 16px; text-align: center; }
.score-value { font-size: 28px; font-weight: bold; }
.breakdown { margin-top: 12px; }
.breakdown-item { margin-bottom: 10px; }
.bar { background: #eee; height: 10px; width: 200px; display: inline-block; vertical-align: middle; }
.bar-fill { background: #2a6; height: 10px; }
.red-flag { border-left: 4px solid #c33; padding-left: 10px; margin-bottom: 10px; }
.red-flag.severity-critical { border-left-color: #900; }
.red-flag.severity-high { border-left-color: #c33; }
.red-flag.severity-medium { border-left-color: #e90; }
.red-flag.severity-low { border-left-color: #aaa; }
.comparison-table { width: 100%; border-collapse: collapse; }
.comparison-table th, .comparison-table td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
.narrative-box { background: #f7f7f7; padding: 16px; border-radius: 4px; }
.footer { margin-top: 40px; font-size: 11px; color: #888; }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Facts.Name}} — Investment Evaluation</h1>
  <p>Generated {{.CreatedAt.Format "2006-01-02 15:04 UTC"}}</p>
</div>

<div class="section">
  <h2>Executive Summary</h2>
  <div class="score-box">
    <div class="score-value">{{printf "%.1f" .Scores.OverallScore}}/10</div>
    <div>venture_lens_score</div>
  </div>
  <p>{{.Scores.Recommendation}}</p>
</div>

<div class="section">
  <h2>Dimension Scores</h2>
  <div class="breakdown">
  {{range .DimensionRows}}
    <div class="breakdown-item">
      <strong>{{.Label}}</strong>: {{printf "%.1f" .Score}}/10
      <div class="bar"><div class="bar-fill" style="width: {{.BarWidth}}px;"></div></div>
      <div>{{.Assessment}}</div>
    </div>
  {{end}}
  </div>
</div>

<div class="section">
  <h2>Narrative</h2>
  <div class="narrative-box">
    <p><strong>Vision:</strong> {{.Narrative.Vision}}</p>
    <p><strong>Differentiation:</strong> {{.Narrative.Differentiation}}</p>
    <p><strong>Timing:</strong> {{.Narrative.Timing}}</p>
    <p><strong>Tagline:</strong> {{.Narrative.Tagline}}</p>
  </div>
</div>

<div class="section">
  <h2>Critique</h2>
  <p>Overall risk: <strong>{{.Critique.OverallRiskLabel}}</strong> — {{.Critique.Summary}}</p>
  {{range .Critique.RedFlags}}
    <div class="red-flag severity-{{.Severity}}">
      <strong>{{.Flag}}</strong> ({{.Severity}}, {{.Category}})<br>
      {{.Explanation}}
    </div>
  {{end}}
</div>

<div class="section">
  <h2>Benchmark — {{.Benchmarks.Industry}}</h2>
  <table class="comparison-table">
    <tr><th>Metric</th><th>Startup</th><th>Sector Avg</th><th>Percentile</th><th>Insight</th></tr>
    {{range .Benchmarks.Comparisons}}
    <tr>
      <td>{{.Metric}}</td><td>{{printf "%.1f" .StartupValue}}</td><td>{{printf "%.1f" .SectorAvg}}</td>
      <td>{{.Percentile}}</td><td>{{.Insight}}</td>
    </tr>
    {{end}}
  </table>
  <p>Overall position: <strong>{{.Benchmarks.OverallPosition}}</strong> — {{.Benchmarks.Summary}}</p>
</div>

<div class="footer">
  Report id: {{.ReportID}} — evaluation id: {{.EvaluationID}}
</div>
</body>
</html>`

var parsedTemplate = template.Must(template.New("report").Parse(docTemplate))

type dimensionRow struct {
	Label      string
	Score      float64
	BarWidth   int
	Assessment string
}

type templateData struct {
	model.EvaluationResult
	DimensionRows []dimensionRow
}

func renderHTML(evaluation model.EvaluationResult) (string, error) {
	rows := make([]dimensionRow, 0, len(model.DimensionOrder))
	for _, dim := range model.DimensionOrder {
		a := evaluation.Scores.Dimensions[dim]
		rows = append(rows, dimensionRow{
			Label:      titleCase(string(dim)),
			Score:      a.Score,
			BarWidth:   int(a.Score * 20),
			Assessment: a.Assessment,
		})
	}

	var buf bytes.Buffer
	if err := parsedTemplate.Execute(&buf, templateData{EvaluationResult: evaluation, DimensionRows: rows}); err != nil {
		return "", fmt.Errorf("report: render template: %w", err)
	}
	return buf.String(), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func newReportID() string {
	return uuid.New().String()
}

func filenameFor(startupName string) string {
	slug := slugify(startupName)
	return fmt.Sprintf("%s_evaluation.pdf", slug)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('_')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "startup"
	}
	return out
}
