package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/channelintel/pricewire/internal/models"
)

var markerRe = regexp.MustCompile(`\[SOURCE_ID:(\d+)\]`)

var htmlFuncs = template.FuncMap{
	"footnotes": renderFootnotes,
	"title": func(p models.Priority) string {
		switch p {
		case models.PriorityAlpha:
			return "Act Now"
		case models.PriorityBeta:
			return "Plan For It"
		default:
			return "Watch"
		}
	},
}

// renderFootnotes escapes the insight text and rewrites citation
// markers into anchor links targeting the source table. Escaping runs
// first so only the links we generate survive as markup.
func renderFootnotes(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	linked := markerRe.ReplaceAllStringFunc(escaped, func(m string) string {
		id, err := strconv.Atoi(markerRe.FindStringSubmatch(m)[1])
		if err != nil {
			return m
		}
		return fmt.Sprintf(`<sup><a href="#source-%d">[%d]</a></sup>`, id, id)
	})
	return template.HTML(linked)
}

var reportTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Pricewire Report {{.GeneratedAt.Format "2006-01-02 15:04"}} UTC</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
h1 { border-bottom: 2px solid #16213e; padding-bottom: .3rem; }
h2 { margin-top: 2rem; color: #16213e; }
.summary { background: #f0f4f8; border-left: 4px solid #16213e; padding: 1rem; }
.insight { margin: .8rem 0; padding: .6rem .8rem; border-left: 3px solid #ccc; }
.insight.alpha { border-color: #c0392b; }
.insight.beta { border-color: #d68910; }
.insight.gamma { border-color: #2471a3; }
.meta { font-size: .8rem; color: #666; }
.redundant { opacity: .6; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #ddd; font-size: .9rem; }
</style>
</head>
<body>
<h1>Pricing Intelligence Report</h1>
<p class="meta">Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC &middot; run {{.RunStats.RunID}}</p>

{{if .ExecutiveSummary}}<div class="summary">{{.ExecutiveSummary}}</div>{{end}}

{{range .InsightsByPriority}}
<h2>{{title .Priority}}</h2>
{{range .Insights}}
<div class="insight {{.Priority}}{{if .Redundant}} redundant{{end}}">
<p>{{footnotes .Text}}</p>
<p class="meta">{{.Role}} &middot; confidence: {{.Confidence}}</p>
</div>
{{end}}
{{end}}

{{if .VendorRollup}}
<h2>Vendor Activity</h2>
<table>
<tr><th>Vendor</th><th>Tier</th><th>Mentions</th><th>Weighted</th></tr>
{{range .VendorRollup}}<tr><td>{{.Vendor}}</td><td>{{.Tier}}</td><td>{{printf "%.1f" .Mentions}}</td><td>{{printf "%.1f" .Weighted}}</td></tr>
{{end}}</table>
{{end}}

{{if .Sources}}
<h2>Sources</h2>
<table>
<tr><th>#</th><th>Title</th><th>Kind</th><th>Posted</th></tr>
{{range .Sources}}<tr id="source-{{.SourceID}}"><td>{{.SourceID}}</td><td><a href="{{.URL}}">{{.Title}}</a></td><td>{{.SourceKind}}</td><td>{{.PostedAt.Format "2006-01-02"}}</td></tr>
{{end}}</table>
{{end}}

<p class="meta">{{.RunStats.ItemsSelected}} items selected &middot; {{.RunStats.LLMTokensUsed}} tokens &middot; {{.RunStats.DurationMS}}ms</p>
</body>
</html>
`))

// WriteHTML renders the report into dir next to the JSON artifact,
// with the same no-overwrite policy.
func WriteHTML(r *models.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, Filename(r, "html"))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, r); err != nil {
		return "", fmt.Errorf("failed to render report HTML: %w", err)
	}
	return path, nil
}
