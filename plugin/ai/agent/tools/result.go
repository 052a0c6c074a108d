// Package tools holds the assistant's tool catalog and the executors behind it.
package tools

import (
	"encoding/json"
	"log/slog"

	"github.com/hrygo/eidos/internal/errors"
)

// Result is what a tool call reports back into the dialogue.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// OK wraps data in a successful result.
func OK(data any) *Result {
	return &Result{Success: true, Data: data}
}

// Failed reports a failure the model can explain to the user.
func Failed(code errors.ErrorCode, msg string) *Result {
	return &Result{Success: false, Error: msg, Code: string(code)}
}

// FromError turns a domain error into a failed result. Errors that must abort
// the turn are returned unchanged as the second value.
func FromError(err error) (*Result, error) {
	switch code := errors.CodeOf(err); code {
	case errors.ErrCodeInvalidArgument, errors.ErrCodeNotFound, errors.ErrCodeTransport:
		return Failed(code, errors.MessageOf(err)), nil
	default:
		return nil, err
	}
}

// JSON renders the result for a tool message.
func (r *Result) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		slog.Warn("failed to encode tool result", slog.String("error", err.Error()))
		return `{"success":false,"error":"failed to encode tool result"}`
	}
	return string(b)
}
