package pagination

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
)

//go:embed pagination.html
var source string

var tmpl = template.Must(template.New("pagination").Parse(source))

// Render writes the control as HTML.
func Render(w io.Writer, c Control) error {
	return tmpl.Execute(w, c)
}

// HTML renders the control for embedding in another template.
func HTML(c Control) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, c); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
