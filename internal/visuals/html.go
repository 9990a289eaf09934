package visuals

import (
	"cmp"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strings"

	"jira-stage-metrics/internal/stats"
	"jira-stage-metrics/internal/workflow"

	"github.com/evanw/esbuild/pkg/api"
)

const dashboardScript = `
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true, theme: "neutral" });

for (const header of document.querySelectorAll("[data-toggle]")) {
  header.addEventListener("click", () => {
    const target = document.getElementById(header.dataset.toggle);
    target.hidden = !target.hidden;
  });
}
`

const dashboardStyle = `
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 1100px; color: #222; }
h1 { margin-bottom: 0.2rem; }
.meta { color: #666; margin-bottom: 2rem; }
.cards { display: flex; gap: 1rem; flex-wrap: wrap; }
.card { border: 1px solid #ddd; border-radius: 6px; padding: 0.8rem 1.2rem; min-width: 140px; }
.card strong { display: block; font-size: 1.6rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0 2rem; }
th, td { border-bottom: 1px solid #eee; padding: 0.35rem 0.6rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.flagged { color: #b00020; font-weight: 600; }
[data-toggle] { cursor: pointer; }
`

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.Style}}</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">As of {{.Report.AsOf.Format "2006-01-02 15:04 MST"}} · weekends {{if .Report.Options.ExcludeWeekends}}excluded{{else}}included{{end}} · threshold {{.Report.Options.MinTimeThreshold}}h</div>

<div class="cards">
  <div class="card"><strong>{{.Report.TotalIssues}}</strong>issues</div>
  <div class="card"><strong>{{.Report.CompletedIssues}}</strong>completed</div>
  <div class="card"><strong>{{.Report.InProgressIssues}}</strong>in progress</div>
  <div class="card"><strong>{{.Report.Churn.TotalChurn}}</strong>backward moves</div>
  <div class="card"><strong>{{.Report.Churn.FlaggedIssues}}</strong>flagged tickets</div>
</div>

<h2>Stages</h2>
<table>
<tr><th>Stage</th><th>Tickets</th><th>Open</th><th>Closed</th><th>Total h</th><th>Avg h/ticket</th><th>Occurrences</th><th>Avg h/occurrence</th></tr>
{{range .Stages}}<tr><td>{{.Stage}}</td><td>{{.M.TicketCount}}</td><td>{{.M.OpenTicketCount}}</td><td>{{.M.ClosedTicketCount}}</td><td>{{.M.TotalHours}}</td><td>{{.M.AvgHoursPerTicket}}</td><td>{{.M.Occurrences}}</td><td>{{.M.AvgHoursPerOccurrence}}</td></tr>
{{end}}</table>

{{range .Charts}}<pre class="mermaid">
{{.}}
</pre>
{{end}}

<h2 data-toggle="churn-detail">Churn ({{.Report.Churn.IssuesWithChurn}} tickets)</h2>
<table id="churn-detail">
<tr><th>Ticket</th><th>Score</th><th>Backward moves</th></tr>
{{range .Churn}}<tr><td{{if .Flagged}} class="flagged"{{end}}>{{.Key}}</td><td>{{.Score}}</td><td>{{.Moves}}</td></tr>
{{end}}</table>

<h2 data-toggle="workflow-detail">Workflow</h2>
<table id="workflow-detail" hidden>
<tr><th>Status</th><th>Stage</th></tr>
{{range .Mapping}}<tr><td>{{.Label}}</td><td>{{.Stage}}</td></tr>
{{end}}</table>

<script type="module">{{.Script}}</script>
</body>
</html>
`))

type stageRow struct {
	Stage workflow.Stage
	M     stats.StageMetrics
}

type churnRow struct {
	Key     string
	Score   int
	Flagged bool
	Moves   string
}

type mappingRow struct {
	Label string
	Stage workflow.Stage
}

type dashboard struct {
	Title   string
	Report  stats.Report
	Stages  []stageRow
	Charts  []string
	Churn   []churnRow
	Mapping []mappingRow
	Style   template.CSS
	Script  template.JS
}

// RenderHTML writes a self-contained dashboard for a report. Inline script and styles are
// minified before embedding.
func RenderHTML(w io.Writer, title string, report stats.Report) error {
	script, err := minify(dashboardScript, api.LoaderJS)
	if err != nil {
		return err
	}
	style, err := minify(dashboardStyle, api.LoaderCSS)
	if err != nil {
		return err
	}

	d := dashboard{
		Title:  title,
		Report: report,
		Style:  template.CSS(style),
		Script: template.JS(script),
	}
	for _, s := range workflow.Ordered {
		d.Stages = append(d.Stages, stageRow{Stage: s, M: report.StageMetrics[s]})
	}
	for _, chart := range []string{
		CurrentStatusChart(report),
		StageHoursChart(report),
		CycleTimeChart(report),
		ChurnHistogramChart(report),
		AgingChart(report),
	} {
		if chart != "" {
			d.Charts = append(d.Charts, chart)
		}
	}
	d.Churn = churnRows(report)
	for _, label := range report.Diagnostics.AllStatuses {
		d.Mapping = append(d.Mapping, mappingRow{Label: label, Stage: report.Diagnostics.StatusMapping[label]})
	}

	if err := dashboardTmpl.Execute(w, d); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

func churnRows(report stats.Report) []churnRow {
	rows := make([]churnRow, 0, len(report.Churn.Issues))
	for key, ic := range report.Churn.Issues {
		var moves []string
		for _, c := range ic.Transitions {
			if c.Backward {
				moves = append(moves, fmt.Sprintf("%s → %s", c.From, c.To))
			}
		}
		rows = append(rows, churnRow{Key: key, Score: ic.Score, Flagged: ic.Flagged, Moves: strings.Join(moves, ", ")})
	}
	slices.SortFunc(rows, func(a, b churnRow) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return rows
}

func minify(code string, loader api.Loader) (string, error) {
	result := api.Transform(code, api.TransformOptions{
		Loader:           loader,
		MinifyWhitespace: true,
		MinifySyntax:     true,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("failed to minify dashboard asset: %s", result.Errors[0].Text)
	}
	return string(result.Code), nil
}
