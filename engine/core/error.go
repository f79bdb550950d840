package core

import (
	"encoding/json"
	"fmt"
)

// -----------------------------------------------------------------------------
// Error
// -----------------------------------------------------------------------------

// Error is the structured failure surfaced to the tool-call layer. Code is a
// canonical machine-readable identifier; Details carry diagnostic context
// such as the offending path or the configured allow-list.
type Error struct {
	err     error
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewError wraps err with a canonical code and optional details.
func NewError(err error, code string, details map[string]any) *Error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &Error{
		err:     err,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// JSON renders the error in its wire form.
func (e *Error) JSON() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"code":%q}`, e.Code)
	}
	return string(data)
}
