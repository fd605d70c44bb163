// Package table renders tabular data with loading, error and empty states.
//
// Build is the pure state machine. It decides which of the four states a
// table is in and returns a View; a Renderer turns the View into HTML.
// Precedence is loading, then error, then empty, then populated: a refetch
// shows skeleton rows even when the previous request failed, and a failed
// request shows the error panel even when stale rows are still around.
package table

// SkeletonRows is the number of placeholder rows shown while loading.
const SkeletonRows = 5

// DefaultEmptyMessage is shown when a settled table has no rows.
const DefaultEmptyMessage = "No data available"

// DefaultRetryEvent is the event emitted by the error panel's retry button.
const DefaultRetryEvent = "retry"

// Status is the rendering state of a table.
type Status int

const (
	StatusPopulated Status = iota
	StatusLoading
	StatusError
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	default:
		return "populated"
	}
}

// Column describes one table column.
type Column struct {
	Key   string
	Title string
	Align string
}

// Row is one data row. Cells are keyed by Column.Key; missing cells render
// empty.
type Row struct {
	ID    string
	Cells map[string]Cell
}

// Props are the inputs of a table.
type Props struct {
	Columns      []Column
	Rows         []Row
	Loading      bool
	Err          error
	EmptyMessage string
	RetryEvent   string
}

// View is a resolved table, ready to render.
type View struct {
	Status     Status
	Columns    []Column
	Rows       []Row
	Message    string
	RetryEvent string
}

// Resolve picks the state for the given inputs.
func Resolve(loading bool, err error, rows int) Status {
	switch {
	case loading:
		return StatusLoading
	case err != nil:
		return StatusError
	case rows == 0:
		return StatusEmpty
	default:
		return StatusPopulated
	}
}

// Build resolves p into a View.
func Build(p Props) View {
	v := View{
		Status:     Resolve(p.Loading, p.Err, len(p.Rows)),
		Columns:    p.Columns,
		RetryEvent: p.RetryEvent,
	}
	if v.RetryEvent == "" {
		v.RetryEvent = DefaultRetryEvent
	}

	switch v.Status {
	case StatusLoading:
		v.Rows = skeleton(len(p.Columns))
	case StatusError:
		v.Message = p.Err.Error()
	case StatusEmpty:
		v.Message = p.EmptyMessage
		if v.Message == "" {
			v.Message = DefaultEmptyMessage
		}
	default:
		v.Rows = p.Rows
	}
	return v
}

func skeleton(columns int) []Row {
	rows := make([]Row, SkeletonRows)
	for i := range rows {
		rows[i].Cells = make(map[string]Cell, columns)
	}
	return rows
}
