package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/splitpilot/splitpilot/internal/stats"
)

// Dashboard template data structures
type listData struct {
	Tests []testListItem
}

type testListItem struct {
	ID           string
	Name         string
	Active       bool
	VariantCount int
	Exposures    int
	Conversions  int
	TargetMetric string
}

type detailData struct {
	ID            string
	Name          string
	Description   string
	Active        bool
	TargetMetric  string
	Variants      []detailVariant
	LeadingName   string
	ConfidencePct float64
	Confident     bool
	HasComparison bool
}

type detailVariant struct {
	VariantID   string
	Name        string
	WeightPct   float64
	Exposures   int
	Conversions int
	RatePct     float64
	Leading     bool
}

var listTmpl = template.Must(template.New("list").Parse(`<!DOCTYPE html>
<html><head><title>splitpilot</title><style>` + dashboardCSS + `</style></head>
<body>
<h1>splitpilot</h1>
<p><a href="/dashboard?logout=1">Log out</a></p>
{{if not .Tests}}<p>No tests registered yet. Add tests to splitpilot.yaml and restart.</p>{{end}}
<table>
<tr><th>Test</th><th>State</th><th>Variants</th><th>Exposures</th><th>Conversions</th><th>Metric</th></tr>
{{range .Tests}}
<tr>
  <td><a href="/dashboard/test/{{.ID}}">{{.Name}}</a></td>
  <td>{{if .Active}}ACTIVE{{else}}INACTIVE{{end}}</td>
  <td>{{.VariantCount}}</td>
  <td>{{.Exposures}}</td>
  <td>{{.Conversions}}</td>
  <td>{{.TargetMetric}}</td>
</tr>
{{end}}
</table>
</body></html>`))

var detailTmpl = template.Must(template.New("detail").Parse(`<!DOCTYPE html>
<html><head><title>{{.Name}} - splitpilot</title><style>` + dashboardCSS + `</style></head>
<body>
<p><a href="/dashboard">&larr; All tests</a></p>
<h1>{{.Name}}</h1>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<p>State: {{if .Active}}ACTIVE{{else}}INACTIVE{{end}}{{if .TargetMetric}} &middot; Metric: {{.TargetMetric}}{{end}}</p>
<table>
<tr><th>Variant</th><th>Weight</th><th>Exposures</th><th>Conversions</th><th>Rate</th></tr>
{{range .Variants}}
<tr{{if .Leading}} class="leading"{{end}}>
  <td>{{.Name}}</td>
  <td>{{printf "%.0f%%" .WeightPct}}</td>
  <td>{{.Exposures}}</td>
  <td>{{.Conversions}}</td>
  <td>{{printf "%.2f%%" .RatePct}}{{if .Leading}} &larr; leading{{end}}</td>
</tr>
{{end}}
</table>
{{if .HasComparison}}
  {{if .Confident}}
  <p class="sig">{{printf "%.1f%%" .ConfidencePct}} confident "{{.LeadingName}}" is the winner (chi-squared, illustrative)</p>
  {{else}}
  <p class="sig">Not yet significant ({{printf "%.1f%%" .ConfidencePct}} confidence, chi-squared, illustrative)</p>
  {{end}}
{{end}}
</body></html>`))

const dashboardCSS = `
body{font-family:system-ui,sans-serif;max-width:720px;margin:2rem auto;padding:0 1rem;color:#222}
table{border-collapse:collapse;width:100%}
th,td{text-align:left;padding:.4rem .6rem;border-bottom:1px solid #ddd}
tr.leading td{font-weight:600}
.sig{color:#555}
a{color:#0a58ca}
`

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// Handle logout
	if r.URL.Query().Get("logout") == "1" {
		http.SetCookie(w, &http.Cookie{
			Name:   tokenCookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	ctx := context.Background()
	data := listData{}

	for _, t := range s.hub.Registry().All() {
		item := testListItem{
			ID:           t.ID,
			Name:         t.Name,
			Active:       t.Active,
			VariantCount: len(t.Variants),
			TargetMetric: t.TargetMetric,
		}

		variantStats, err := s.archive.VariantStats(ctx, t.ID)
		if err == nil {
			for _, st := range variantStats {
				item.Exposures += st.Exposures
				item.Conversions += st.Conversions
			}
		}

		data.Tests = append(data.Tests, item)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := listTmpl.Execute(w, data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleDashboardTest(w http.ResponseWriter, r *http.Request) {
	testID := strings.TrimPrefix(r.URL.Path, "/dashboard/test/")
	if testID == "" {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	test, ok := s.hub.Registry().Get(testID)
	if !ok {
		http.Error(w, fmt.Sprintf("test %q not found", testID), http.StatusNotFound)
		return
	}

	variantStats, err := s.archive.VariantStats(context.Background(), testID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	result := stats.Analyze(test, variantStats)

	data := detailData{
		ID:            test.ID,
		Name:          test.Name,
		Description:   test.Description,
		Active:        test.Active,
		TargetMetric:  test.TargetMetric,
		LeadingName:   result.Variants[result.Leading].Name,
		ConfidencePct: result.Confidence * 100,
		Confident:     result.Confident,
		HasComparison: len(result.Variants) > 1,
	}
	for i, v := range result.Variants {
		data.Variants = append(data.Variants, detailVariant{
			VariantID:   v.VariantID,
			Name:        v.Name,
			WeightPct:   test.Variants[i].Weight * 100,
			Exposures:   v.Exposures,
			Conversions: v.Conversions,
			RatePct:     v.Rate * 100,
			Leading:     i == result.Leading,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := detailTmpl.Execute(w, data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
