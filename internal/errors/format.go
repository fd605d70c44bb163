package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// lineWidth is where detail text wraps on the terminal.
const lineWidth = 70

// style is an ANSI SGR sequence.
type style string

const (
	styleRed      style = "31"
	styleCyan     style = "36"
	styleBoldRed  style = "1;31"
	styleBoldText style = "1;37"
)

var colorEnabled = true

// DisableColors turns off ANSI escapes in Format and Print.
func DisableColors() { colorEnabled = false }

// EnableColors turns ANSI escapes back on.
func EnableColors() { colorEnabled = true }

func (s style) paint(text string) string {
	if !colorEnabled || text == "" {
		return text
	}
	return "\033[" + string(s) + "m" + text + "\033[0m"
}

// headline is "ERROR E200: Missing route parameter", or "ERROR: ..." for
// errors without a code.
func (e *DashError) headline() string {
	if e.Code == "" {
		return styleBoldRed.paint("ERROR:") + " " + e.Message
	}
	return styleBoldRed.paint("ERROR") + " " + styleBoldText.paint(e.Code+":") + " " + e.Message
}

// Format renders the error as a terminal block: headline, wrapped detail
// with the cause in parentheses, then the hint.
func (e *DashError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n\n", e.headline())

	body := e.Detail
	if e.Wrapped != nil {
		body = strings.TrimSpace(body + " (" + e.Wrapped.Error() + ")")
	}
	if lines := wrapText(body, lineWidth); len(lines) > 0 {
		for _, line := range lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteByte('\n')
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n\n", styleCyan.paint("Hint:"), e.Suggestion)
	}
	return b.String()
}

// FormatCompact renders "CODE: message (detail)" on one line.
func (e *DashError) FormatCompact() string {
	parts := make([]string, 0, 2)
	if e.Code != "" {
		parts = append(parts, e.Code+":")
	}
	parts = append(parts, e.Message)
	out := strings.Join(parts, " ")
	if e.Detail != "" {
		out += " (" + e.Detail + ")"
	}
	return out
}

// LogValue implements slog.LogValuer so coded errors log as a group.
func (e *DashError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", e.Code),
		slog.String("message", e.Message),
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	if e.Wrapped != nil {
		attrs = append(attrs, slog.String("cause", e.Wrapped.Error()))
	}
	return slog.GroupValue(attrs...)
}

// MarshalJSON leaves the wrapped cause out; it may carry internals.
func (e *DashError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code       string   `json:"code,omitempty"`
		Category   Category `json:"category"`
		Message    string   `json:"message"`
		Detail     string   `json:"detail,omitempty"`
		Suggestion string   `json:"suggestion,omitempty"`
	}{e.Code, e.Category, e.Message, e.Detail, e.Suggestion})
}

// wrapText breaks text into lines of at most width bytes, splitting on
// whitespace. A single word longer than width gets its own line.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lines := []string{words[0]}
	for _, w := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(w) > width {
			lines = append(lines, w)
			continue
		}
		*last += " " + w
	}
	return lines
}

// Print writes err to w, formatted when it is a DashError.
func Print(w io.Writer, err error) {
	var de *DashError
	if stderrors.As(err, &de) {
		io.WriteString(w, de.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", styleBoldRed.paint("ERROR:"), err.Error())
}
