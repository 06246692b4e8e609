package output

import (
	"html/template"
	"io"
	"time"
)

const htmlDescriptionLimit = 200

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"rfc3339": func(t time.Time) string { return t.Format(time.RFC3339) },
	"short":   shortDescription,
	"orDash":  dash,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Job Search Results</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.job { border: 1px solid #ddd; margin: 10px 0; padding: 15px; border-radius: 5px; }
.title { font-size: 18px; font-weight: bold; color: #2c5aa0; }
.company { font-size: 16px; color: #666; margin: 5px 0; }
.details { margin: 10px 0; }
.score { background: #4caf50; color: white; padding: 2px 8px; border-radius: 3px; }
.description { margin: 10px 0; color: #333; }
table.providers { border-collapse: collapse; }
table.providers td, table.providers th { border: 1px solid #ddd; padding: 4px 8px; }
</style>
</head>
<body>
<h1>Job Search Results</h1>
<p>Generated on {{rfc3339 .Generated}} (run {{.RunID}})</p>
{{- if .Terms}}
<p>Search terms: {{range $i, $t := .Terms}}{{if $i}}, {{end}}{{$t}}{{end}}</p>
{{- end}}
<p>Total jobs found: {{len .Jobs}}</p>
<table class="providers">
<tr><th>Provider</th><th>Status</th><th>Adapter</th><th>Count</th></tr>
{{- range .Providers}}
<tr><td>{{.Provider}}</td><td>{{.Status}}</td><td>{{orDash .Adapter}}</td><td>{{.Count}}</td></tr>
{{- end}}
</table>
{{- range .Jobs}}
<div class="job">
<div class="title">{{.Title}}</div>
<div class="company">{{orDash .Company}}</div>
<div class="details">{{orDash .Location}} | {{orDash .Salary}} | {{.Source}} | <span class="score">Score: {{printf "%.1f" .Score}}</span></div>
{{- with short .Description}}
<div class="description">{{.}}</div>
{{- end}}
{{- if .URL}}
<a href="{{.URL}}" target="_blank" rel="noopener">View Job</a>
{{- end}}
</div>
{{- else}}
<p>No jobs found.</p>
{{- end}}
</body>
</html>
`))

func encodeHTML(w io.Writer, r Report) error {
	return htmlReport.Execute(w, r)
}

func shortDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= htmlDescriptionLimit {
		return s
	}
	return string(runes[:htmlDescriptionLimit]) + "..."
}
