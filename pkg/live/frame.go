package live

// Frame types sent to the browser.
const (
	FramePatch    = "patch"
	FrameNavigate = "navigate"
	FrameError    = "error"
)

// Event is a browser event. View names the [data-view] fragment the element
// lives in; Values carries the fields of a submitted form.
type Event struct {
	View   string            `json:"view"`
	Name   string            `json:"name"`
	Value  string            `json:"value,omitempty"`
	Values map[string]string `json:"values,omitempty"`
}

// Frame is a server message.
type Frame struct {
	Type    string `json:"type"`
	View    string `json:"view,omitempty"`
	HTML    string `json:"html,omitempty"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
}
