package table

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"sync"
)

//go:embed table.html
var source string

var tmpl = template.Must(template.New("table").Parse(source))

// CustomFunc renders the data of a Custom cell.
type CustomFunc func(data any) (template.HTML, error)

// Renderer writes table Views as HTML.
type Renderer struct {
	mu     sync.RWMutex
	custom map[string]CustomFunc
}

// NewRenderer creates a Renderer with no custom cell kinds.
func NewRenderer() *Renderer {
	return &Renderer{custom: make(map[string]CustomFunc)}
}

var defaultRenderer = NewRenderer()

// Register adds fn as the renderer for Custom cells of kind.
func (r *Renderer) Register(kind string, fn CustomFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[kind] = fn
}

type renderRow struct {
	ID    string
	Cells []template.HTML
}

type renderView struct {
	Status     string
	Columns    []Column
	Rows       []renderRow
	Message    string
	RetryEvent string
}

// Render writes v to w.
func (r *Renderer) Render(w io.Writer, v View) error {
	rv := renderView{
		Status:     v.Status.String(),
		Columns:    v.Columns,
		Message:    v.Message,
		RetryEvent: v.RetryEvent,
	}
	for _, row := range v.Rows {
		rr := renderRow{ID: row.ID, Cells: make([]template.HTML, len(v.Columns))}
		for i, col := range v.Columns {
			if v.Status == StatusLoading {
				rr.Cells[i] = `<span class="skeleton skeleton--text"></span>`
				continue
			}
			html, err := r.cell(row.Cells[col.Key])
			if err != nil {
				return fmt.Errorf("table: row %q column %q: %w", row.ID, col.Key, err)
			}
			rr.Cells[i] = html
		}
		rv.Rows = append(rv.Rows, rr)
	}
	return tmpl.Execute(w, rv)
}

// HTML renders v for embedding in another template.
func (r *Renderer) HTML(v View) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, v); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Render writes v with the default renderer.
func Render(w io.Writer, v View) error {
	return defaultRenderer.Render(w, v)
}

// Register adds a custom cell renderer to the default renderer.
func Register(kind string, fn CustomFunc) {
	defaultRenderer.Register(kind, fn)
}

// HTML renders v with the default renderer.
func HTML(v View) (template.HTML, error) {
	return defaultRenderer.HTML(v)
}

func (r *Renderer) cell(c Cell) (template.HTML, error) {
	switch c := c.(type) {
	case nil:
		return "", nil
	case Text:
		return template.HTML(template.HTMLEscapeString(string(c))), nil
	case Badge:
		return execute("badge", c)
	case Actions:
		return execute("actions", c)
	case Custom:
		r.mu.RLock()
		fn, ok := r.custom[c.Kind]
		r.mu.RUnlock()
		if !ok {
			return "", fmt.Errorf("no renderer for custom cell kind %q", c.Kind)
		}
		return fn(c.Data)
	default:
		return "", fmt.Errorf("unsupported cell type %T", c)
	}
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
