package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantMsg    string
		wantCat    Category
		wantStatus int
	}{
		{
			name:       "config error",
			code:       "E100",
			wantMsg:    "Configuration file not found",
			wantCat:    CategoryConfig,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "guard failure",
			code:       "E200",
			wantMsg:    "Missing route parameter",
			wantCat:    CategoryGuard,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "api error",
			code:       "E300",
			wantMsg:    "Remote API unreachable",
			wantCat:    CategoryAPI,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unknown error code",
			code:       "E999",
			wantMsg:    "Unknown error",
			wantCat:    "",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.HTTPStatus() != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", err.HTTPStatus(), tt.wantStatus)
			}
		})
	}
}

func TestNewReturnsFreshCopies(t *testing.T) {
	a := New("E200").WithDetail("first")
	b := New("E200")
	if b.Detail == "first" {
		t.Error("Expected registry template to be unaffected by WithDetail")
	}
	if a == b {
		t.Error("Expected distinct errors")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown flag %q", "--x")
	if err.Message != `unknown flag "--x"` {
		t.Errorf("Message = %q, want %q", err.Message, `unknown flag "--x"`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestDashError_Error(t *testing.T) {
	if got := New("E201").Error(); got != "E201: Authentication required" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := New("E300").Wrap(fmt.Errorf("dial tcp: refused"))
	if got := wrapped.Error(); got != "E300: Remote API unreachable: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}

	plain := &DashError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestIsAndUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := fmt.Errorf("load: %w", New("E101").Wrap(cause))

	if !stderrors.Is(err, New("E101")) {
		t.Error("Expected errors.Is to match by code")
	}
	if stderrors.Is(err, New("E102")) {
		t.Error("Expected errors.Is not to match a different code")
	}
	if !stderrors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the wrapped cause")
	}
	if got := CodeOf(err); got != "E101" {
		t.Errorf("CodeOf() = %q, want E101", got)
	}
	if got := CodeOf(cause); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E300") != nil {
		t.Error("Expected nil for nil error")
	}

	existing := New("E200")
	if got := FromError(fmt.Errorf("ctx: %w", existing), "E300"); got != existing {
		t.Error("Expected the existing DashError to be returned")
	}

	got := FromError(stderrors.New("eof"), "E301")
	if got.Code != "E301" || got.Wrapped == nil {
		t.Errorf("Expected E301 wrapping the cause, got %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E200").
		WithDetail("/transactions/ has no reference number").
		WithSuggestion("Open the invoice from the transactions list")

	out := err.Format()
	for _, want := range []string{
		"ERROR E200: Missing route parameter",
		"/transactions/ has no reference number",
		"Hint: Open the invoice from the transactions list",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Expected no ANSI codes with colors disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	got := New("E102").WithDetail("server.port must be 1-65535").FormatCompact()
	want := "E102: Invalid configuration value (server.port must be 1-65535)"
	if got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(New("E201").Wrap(stderrors.New("secret")))
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["code"] != "E201" || decoded["category"] != "guard" {
		t.Errorf("Unexpected JSON: %s", data)
	}
	if strings.Contains(string(data), "secret") {
		t.Error("Expected wrapped cause to be left out of JSON")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	if len(lines) < 2 {
		t.Fatalf("Expected several lines, got %d", len(lines))
	}
	for _, line := range lines {
		if len(line) > 20 {
			t.Errorf("Line %q exceeds width", line)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("Expected nil for empty text")
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, New("E100"))
	if !strings.Contains(buf.String(), "Hint: Run 'salesdash config init'") {
		t.Errorf("Unexpected output: %q", buf.String())
	}

	buf.Reset()
	Print(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

func TestLogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := New("E200").WithDetail("no").Wrap(fmt.Errorf("boom"))
	logger.Error("request failed", "error", err)

	out := buf.String()
	for _, want := range []string{"error.code=E200", "error.detail=no", "error.cause=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log line to contain %q, got %q", want, out)
		}
	}
}
