package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// HTMLConfig controls standalone HTML rendering of a run report.
type HTMLConfig struct {
	OutputPath string // defaults to report.html next to the artifacts
	Title      string // defaults to the scenario path
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"ms": func(ms int64) string {
		return time.Duration(ms * int64(time.Millisecond)).String()
	},
	"payload": func(p any) string {
		return fmt.Sprintf("%v", p)
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, sans-serif; margin: 2rem; color: #1a1a2e; }
h1 { font-size: 1.3rem; }
.meta { color: #666; font-size: 0.85rem; margin-bottom: 1.5rem; }
.passed { color: #1a7f37; }
.failed { color: #cf222e; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #e0e0e0; font-size: 0.9rem; }
td.err { color: #cf222e; font-family: monospace; font-size: 0.8rem; }
td.ctx { color: #666; font-size: 0.8rem; max-width: 30rem; }
img { max-width: 24rem; border: 1px solid #ccc; display: block; margin-top: 0.3rem; }
</style>
</head>
<body>
<h1>{{.Title}} <span class="{{.Report.Status}}">{{.Report.Status}}</span></h1>
<div class="meta">
run {{.Report.RunID}} · started {{.Report.StartedAt.Format "2006-01-02 15:04:05 MST"}} ·
{{len .Report.Steps}} step(s)
</div>
<table>
<tr><th>#</th><th>Action</th><th>Payload</th><th>Status</th><th>Duration</th><th>Detail</th></tr>
{{range .Report.Steps}}
<tr>
<td>{{.Index}}</td>
<td>{{.Action}}</td>
<td>{{payload .Payload}}</td>
<td class="{{.Status}}">{{.Status}}</td>
<td>{{ms .DurationMs}}</td>
<td>
{{if .Error}}<div class="err">{{.Error}}</div>{{end}}
{{if .Context}}<div class="ctx">{{.Context}}</div>{{end}}
{{if .Screenshot}}<img src="{{.Screenshot}}" alt="failure screenshot">{{end}}
</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

// RenderHTML writes a self-contained HTML rendering of the report.
func RenderHTML(r *RunReport, cfg HTMLConfig) error {
	if cfg.Title == "" {
		cfg.Title = r.ScenarioPath
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "report.html"
	}

	if dir := filepath.Dir(cfg.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(cfg.OutputPath) //#nosec G304 -- output path comes from configuration
	if err != nil {
		return fmt.Errorf("failed to create html report: %w", err)
	}
	defer f.Close()

	data := struct {
		Title  string
		Report *RunReport
	}{Title: cfg.Title, Report: r}

	if err := htmlTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}
