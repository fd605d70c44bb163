package pagination

import (
	"errors"
	"strings"
	"testing"
)

func TestRange(t *testing.T) {
	tests := []struct {
		name                 string
		page, perPage, total int
		wantStart, wantEnd   int
	}{
		{"last partial page", 3, 10, 25, 21, 25},
		{"single short page", 1, 10, 3, 1, 3},
		{"full page", 2, 20, 100, 21, 40},
		{"exact end", 5, 20, 100, 81, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Range(tt.page, tt.perPage, tt.total)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Range(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.perPage, tt.total, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestBuildDisabledFlags(t *testing.T) {
	tests := []struct {
		name              string
		page, last        int
		wantBack, wantFwd bool
	}{
		{"first page", 1, 3, true, false},
		{"middle page", 2, 3, false, false},
		{"last page", 3, 3, false, true},
		{"only page", 1, 1, true, true},
		{"no pages", 1, 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Build(Props{CurrentPage: tt.page, LastPage: tt.last, PerPage: 10, Total: 25})
			if c.FirstDisabled != tt.wantBack || c.PrevDisabled != tt.wantBack {
				t.Errorf("Expected first/prev disabled=%v, got %v/%v", tt.wantBack, c.FirstDisabled, c.PrevDisabled)
			}
			if c.NextDisabled != tt.wantFwd || c.LastDisabled != tt.wantFwd {
				t.Errorf("Expected next/last disabled=%v, got %v/%v", tt.wantFwd, c.NextDisabled, c.LastDisabled)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	c := Build(Props{CurrentPage: 1, LastPage: 1, PerPage: 10, Total: 0})
	if c.Start != 0 || c.End != 0 {
		t.Errorf("Expected empty range 0-0, got %d-%d", c.Start, c.End)
	}
	if len(c.PerPageOptions) != 4 {
		t.Errorf("Expected default page size options, got %v", c.PerPageOptions)
	}
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent(EventPage, "4", nil)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if got, ok := ev.(PageChanged); !ok || got.Page != 4 {
		t.Errorf("Expected PageChanged{4}, got %#v", ev)
	}

	ev, err = ParseEvent(EventPerPage, "50", nil)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if got, ok := ev.(PerPageChanged); !ok || got.PerPage != 50 {
		t.Errorf("Expected PerPageChanged{50}, got %#v", ev)
	}

	if _, err := ParseEvent(EventPerPage, "15", nil); !errors.Is(err, ErrInvalidPerPage) {
		t.Errorf("Expected ErrInvalidPerPage, got %v", err)
	}
	if _, err := ParseEvent(EventPage, "0", nil); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Expected ErrInvalidPage, got %v", err)
	}
	if _, err := ParseEvent("sort", "name", nil); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("Expected ErrUnknownEvent, got %v", err)
	}
}

func TestRender(t *testing.T) {
	var sb strings.Builder
	c := Build(Props{CurrentPage: 3, LastPage: 3, PerPage: 10, Total: 25})
	if err := Render(&sb, c); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "Showing 21-25 of 25") {
		t.Errorf("Expected range text, got:\n%s", out)
	}
	if !strings.Contains(out, `<option value="10" selected>`) {
		t.Errorf("Expected current page size selected, got:\n%s", out)
	}
	if !strings.Contains(out, `data-value="3" disabled aria-label="Next page"`) {
		t.Errorf("Expected next button disabled on last page, got:\n%s", out)
	}
}

func TestRenderLoading(t *testing.T) {
	var sb strings.Builder
	if err := Render(&sb, Build(Props{Loading: true})); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(sb.String(), `aria-busy="true"`) {
		t.Errorf("Expected skeleton control, got:\n%s", sb.String())
	}
	if strings.Contains(sb.String(), "Showing") {
		t.Error("Expected no range text while loading")
	}
}
