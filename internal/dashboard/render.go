package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/assets"
	"github.com/vango-dev/salesdash/pkg/format"
	"github.com/vango-dev/salesdash/pkg/listview"
	"github.com/vango-dev/salesdash/pkg/pagination"
	"github.com/vango-dev/salesdash/pkg/table"
)

//go:embed templates/*.html
var templateFS embed.FS

// renderer executes the page and fragment templates.
type renderer struct {
	tmpl   *template.Template
	tables *table.Renderer
	assets assets.Resolver
}

func newRenderer(resolver assets.Resolver) (*renderer, error) {
	r := &renderer{
		tables: table.NewRenderer(),
		assets: resolver,
	}
	r.tables.Register(listview.CustomTruncate, truncateCell)

	tmpl, err := template.New("dashboard").
		Option("missingkey=zero").
		Funcs(r.funcs()).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"asset":      r.assets.Asset,
		"table":      r.tables.HTML,
		"pagination": pagination.HTML,
		"currency": func(n api.Number) string {
			return format.Currency(n.Float())
		},
		"large": func(n api.Number) string {
			return format.LargeNumber(n.Float())
		},
		"decimal": func(n api.Number) string {
			return format.Decimal(n.Float())
		},
		"percent": func(n api.Number) string {
			return strconv.Itoa(format.Percentage(n.Float())) + "%"
		},
		"datetime": format.DateTime,
		"month":    format.MonthString,
		"field": field,
		"orNotFound": func(s string) string {
			if s == "" {
				return listview.NotFound
			}
			return s
		},
	}
}

// fieldData is the data of the "input" template.
type fieldData struct {
	Name  string
	Label string
	Type  string
	Value string
	Error string
}

func field(f *formState, name, label, typ string) fieldData {
	return fieldData{
		Name:  name,
		Label: label,
		Type:  typ,
		Value: f.Value(name),
		Error: f.Error(name),
	}
}

// fragment renders the named template into a fragment.
func (r *renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("dashboard: render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *renderer) execute(w io.Writer, name string, data any) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// truncateCell renders long text clipped to one line with the full text as
// its title.
func truncateCell(data any) (template.HTML, error) {
	s, _ := data.(string)
	if s == "" {
		s = listview.NotFound
	}
	esc := template.HTMLEscapeString(s)
	return template.HTML(`<span class="truncate" title="` + esc + `">` + esc + `</span>`), nil
}
