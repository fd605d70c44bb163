package toast

// EventName is the frame type used for toasts.
const EventName = "toast"

// Type is the toast level.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Position is the screen corner a toast appears in.
type Position string

const (
	TopRight    Position = "top-right"
	TopCenter   Position = "top-center"
	TopLeft     Position = "top-left"
	BottomRight Position = "bottom-right"
	BottomLeft  Position = "bottom-left"
)

// DefaultPosition is used when a toast names none.
const DefaultPosition = TopRight

// Fallback messages for empty texts.
const (
	FallbackError   = "An error occurred."
	FallbackSuccess = "Success!"
)

// Toast is the payload of a toast frame.
type Toast struct {
	Level    Type     `json:"level"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message"`
	Position Position `json:"position"`
}

// Emitter sends named events to the browser. live.Ctx implements it.
type Emitter interface {
	Emit(event string, payload any)
}

// Option adjusts a toast before it is sent.
type Option func(*Toast)

// At sets the position.
func At(p Position) Option {
	return func(t *Toast) {
		t.Position = p
	}
}

// Titled sets a title above the message.
func Titled(title string) Option {
	return func(t *Toast) {
		t.Title = title
	}
}

// New builds a toast, applying defaults.
func New(level Type, message string, opts ...Option) Toast {
	t := Toast{Level: level, Message: message, Position: DefaultPosition}
	for _, opt := range opts {
		opt(&t)
	}
	if t.Message == "" {
		switch level {
		case TypeError:
			t.Message = FallbackError
		case TypeSuccess:
			t.Message = FallbackSuccess
		}
	}
	return t
}

// Show sends a toast through e.
func Show(e Emitter, level Type, message string, opts ...Option) {
	e.Emit(EventName, New(level, message, opts...))
}

// Success shows a success toast.
func Success(e Emitter, message string, opts ...Option) {
	Show(e, TypeSuccess, message, opts...)
}

// Error shows an error toast.
func Error(e Emitter, message string, opts ...Option) {
	Show(e, TypeError, message, opts...)
}

// Warning shows a warning toast.
func Warning(e Emitter, message string, opts ...Option) {
	Show(e, TypeWarning, message, opts...)
}

// Info shows an info toast.
func Info(e Emitter, message string, opts ...Option) {
	Show(e, TypeInfo, message, opts...)
}
