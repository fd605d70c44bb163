package form

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vango-dev/salesdash/pkg/api"
)

// Fallback toast texts for failures without a server message.
const (
	FallbackLogin    = "Login failed. Please try again."
	FallbackRegister = "Registration failed. Please try again."
	FallbackSave     = "Failed to save customer. Please try again."
	FallbackPassword = "Failed to change password. Please try again."
	FallbackLogout   = "Logout failed. Please try again."
)

// Outcome is where a submission failure is shown: either on fields or in a
// single toast, never both.
type Outcome struct {
	Fields FieldErrors
	Toast  string
}

// IsZero reports whether there is nothing to show.
func (o Outcome) IsZero() bool {
	return len(o.Fields) == 0 && o.Toast == ""
}

// Route decides how err is shown. Server validation failures go to fields;
// every other failure becomes one toast with the server message, or fallback
// when there is none.
func Route(err error, fallback string) Outcome {
	if err == nil {
		return Outcome{}
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.IsValidation() {
			fields := make(FieldErrors, len(apiErr.Errors))
			for name, msg := range apiErr.Errors {
				fields[name] = msg
			}
			return Outcome{Fields: fields}
		}
		if apiErr.ResponseMessage != "" && apiErr.ResponseMessage != api.MessageUnknown {
			return Outcome{Toast: apiErr.ResponseMessage}
		}
	}
	return Outcome{Toast: fallback}
}

// Rename returns o with field names translated through names. Fields
// without an entry keep their name.
func (o Outcome) Rename(names map[string]string) Outcome {
	if len(o.Fields) == 0 {
		return o
	}
	fields := make(FieldErrors, len(o.Fields))
	for name, msg := range o.Fields {
		if to, ok := names[name]; ok {
			name = to
		}
		fields[name] = msg
	}
	return Outcome{Fields: fields, Toast: o.Toast}
}

// Bind copies submitted string values into the json-tagged fields of dst.
func Bind(values map[string]string, dst any) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("form: encode values: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("form: bind values: %w", err)
	}
	return nil
}
