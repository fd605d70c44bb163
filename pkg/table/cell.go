package table

// Cell is the content of one table cell. It is one of Text, Badge, Actions
// or Custom. Cells carry data only; anything interactive is expressed as
// an Action and rendered by the table.
type Cell interface {
	isCell()
}

// Text is plain, escaped text.
type Text string

// Badge is a short colored label.
type Badge struct {
	Label   string
	Variant string
	Icon    string
}

// Badge variants understood by the stylesheet.
const (
	VariantSuccess = "success"
	VariantWarning = "warning"
	VariantDanger  = "danger"
	VariantInfo    = "info"
	VariantNeutral = "neutral"
)

// Action is a row button. Pressing it emits the event Name with value
// Target.
type Action struct {
	Name   string
	Label  string
	Icon   string
	Target string
}

// Actions is a group of row buttons.
type Actions []Action

// Custom is rendered by the renderer registered for Kind.
type Custom struct {
	Kind string
	Data any
}

func (Text) isCell()    {}
func (Badge) isCell()   {}
func (Actions) isCell() {}
func (Custom) isCell()  {}
