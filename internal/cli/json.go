package cli

import (
	"encoding/json"
	"io"

	"github.com/rmalloy/keyup/internal/errors"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine
// parsing. All --json output uses this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
// The code is the failure taxonomy code and the exit code is what the
// process will exit with, so automation never has to re-derive it.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	ExitCode   int    `json:"exit_code"`
}

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONFromError converts an error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts an error to a JSONError. Structured errors carry
// their code and suggestion through; plain errors surface as
// INVALID_ARGUMENT_COUNT, matching how ExitCode treats them.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	if kerr, ok := err.(*errors.Error); ok {
		return &JSONError{
			Code:       kerr.Code,
			Message:    kerr.Message,
			Suggestion: kerr.Suggestion,
			ExitCode:   errors.ExitCode(err),
		}
	}

	return &JSONError{
		Code:     errors.ErrInvalidArgumentCount,
		Message:  err.Error(),
		ExitCode: errors.ExitCode(err),
	}
}
