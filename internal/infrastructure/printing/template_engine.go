package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/jass/bff/internal/domain/report"
)

// TemplateEngine renders report tables with Go's html/template
type TemplateEngine struct {
	funcMap  template.FuncMap
	table    *template.Template
	location *time.Location
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithLocation sets the time zone used to print dates
func WithLocation(loc *time.Location) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// NewTemplateEngine creates a template engine with the listing template parsed
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{location: time.UTC}
	for _, opt := range opts {
		opt(e)
	}

	e.funcMap = template.FuncMap{
		"formatDateTime": e.formatDateTime,
		"toneClass":      toneClass,
		"alignClass":     alignClass,
		"safeCSS":        func(s string) template.CSS { return template.CSS(s) },
		"default": func(def, val string) string {
			if strings.TrimSpace(val) == "" {
				return def
			}
			return val
		},
		"inc": func(i int) int { return i + 1 },
	}
	e.table = template.Must(template.New("table").Funcs(e.funcMap).Parse(tableTemplate))

	return e
}

// RenderTable renders t as a complete HTML document
func (e *TemplateEngine) RenderTable(ctx context.Context, t *report.Table) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "report table is nil", nil)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return "", NewRenderError(ErrCodeInvalidHTML,
				fmt.Sprintf("row %d has %d cells, expected %d", i, len(row), len(t.Columns)), nil)
		}
	}

	var buf bytes.Buffer
	if err := e.table.Execute(&buf, t); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute report template", err)
	}
	return buf.String(), nil
}

// FooterHTML is the per-page footer with page numbers
func (e *TemplateEngine) FooterHTML(t *report.Table) string {
	return `<div style="width:100%;font-size:8px;color:#6b7280;padding:0 10mm;display:flex;justify-content:space-between;">` +
		`<span>` + template.HTMLEscapeString(t.Title) + `</span>` +
		`<span>Página <span class="pageNumber"></span> de <span class="totalPages"></span></span></div>`
}

func (e *TemplateEngine) formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(e.location).Format("02/01/2006 15:04")
}

func toneClass(tone report.Tone) string {
	if tone == report.ToneNone {
		return ""
	}
	return "tone-" + string(tone)
}

func alignClass(a report.Align) string {
	switch a {
	case report.AlignCenter, report.AlignRight:
		return "align-" + string(a)
	default:
		return ""
	}
}

const tableTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  * { box-sizing: border-box; }
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 10px; color: #111827; margin: 0; }
  header { border-bottom: 2px solid #1d4ed8; margin-bottom: 10px; padding-bottom: 6px; }
  header h1 { font-size: 16px; margin: 0 0 4px 0; color: #1e3a8a; }
  header .meta { display: flex; justify-content: space-between; color: #4b5563; }
  table { width: 100%; border-collapse: collapse; table-layout: fixed; }
  thead { display: table-header-group; }
  th { background: #1d4ed8; color: #ffffff; font-weight: 600; text-align: left; padding: 5px 4px; border: 1px solid #1e40af; }
  td { padding: 4px; border: 1px solid #d1d5db; word-wrap: break-word; vertical-align: top; }
  tbody tr:nth-child(even) td { background: #f3f4f6; }
  tr { page-break-inside: avoid; }
  .align-center { text-align: center; }
  .align-right { text-align: right; }
  td.tone-danger { background: #fee2e2 !important; color: #991b1b; font-weight: 600; }
  td.tone-success { background: #dcfce7 !important; color: #166534; font-weight: 600; }
  td.tone-warning { background: #fef3c7 !important; color: #92400e; font-weight: 600; }
  .empty { text-align: center; color: #6b7280; padding: 12px; }
  .summary { margin-top: 10px; display: flex; gap: 24px; }
  .summary span { font-weight: 600; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <div class="meta">
    <div>{{default "Todas las organizaciones" .OrganizationName}}</div>
    <div>Generado: {{formatDateTime .GeneratedAt}}{{if .GeneratedBy}} por {{.GeneratedBy}}{{end}}</div>
  </div>
</header>
<table>
  <colgroup>
    <col style="width: 4%">
    {{- range .Columns}}
    <col{{if .Width}} style="width: {{safeCSS .Width}}"{{end}}>
    {{- end}}
  </colgroup>
  <thead>
    <tr>
      <th class="align-center">#</th>
      {{- range .Columns}}
      <th class="{{alignClass .Align}}">{{.Header}}</th>
      {{- end}}
    </tr>
  </thead>
  <tbody>
    {{- $cols := .Columns}}
    {{- range $i, $row := .Rows}}
    <tr>
      <td class="align-center">{{inc $i}}</td>
      {{- range $j, $cell := $row}}
      <td class="{{alignClass (index $cols $j).Align}} {{toneClass $cell.Tone}}">{{$cell.Text}}</td>
      {{- end}}
    </tr>
    {{- else}}
    <tr><td class="empty" colspan="{{inc (len .Columns)}}">No hay registros para mostrar</td></tr>
    {{- end}}
  </tbody>
</table>
{{- if .Summary}}
<div class="summary">
  {{- range .Summary}}
  <div>{{.Label}}: <span>{{.Value}}</span></div>
  {{- end}}
</div>
{{- end}}
</body>
</html>
`
