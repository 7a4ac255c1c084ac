package mcp

import (
	"errors"
	"fmt"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

// Custom MCP error codes, following the JSON-RPC reserved-range convention
// the standard codes below also use.
const (
	ErrCodeNotFound            = -32001
	ErrCodeInvalidInput        = -32002
	ErrCodeSchemaMismatch      = -32003
	ErrCodeResourceExhausted   = -32004
	ErrCodeConcurrencyConflict = -32005
	ErrCodeExternalFailure     = -32006
	ErrCodeCancelled           = -32007
	ErrCodeCorrupted           = -32008

	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts an engine error to an MCPError, branching on
// CaseError.Kind (spec.md §7) rather than string-matching messages.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var ce *caseerrors.CaseError
	if !errors.As(err, &ce) {
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}

	message := ce.Message
	if ce.Suggestion != "" {
		message = fmt.Sprintf("%s %s", ce.Message, ce.Suggestion)
	}

	code := ErrCodeInternalError
	switch ce.Kind {
	case caseerrors.KindNotFound:
		code = ErrCodeNotFound
	case caseerrors.KindInvalidInput:
		code = ErrCodeInvalidInput
	case caseerrors.KindSchemaMismatch:
		code = ErrCodeSchemaMismatch
	case caseerrors.KindResourceExhausted:
		code = ErrCodeResourceExhausted
	case caseerrors.KindConcurrencyConflict:
		code = ErrCodeConcurrencyConflict
	case caseerrors.KindExternalFailure:
		code = ErrCodeExternalFailure
	case caseerrors.KindCancelled:
		code = ErrCodeCancelled
	case caseerrors.KindCorrupted:
		code = ErrCodeCorrupted
	}
	return &MCPError{Code: code, Message: message}
}

// NewInvalidParamsError builds a plain invalid-parameters error, for
// handler-side validation that has no corresponding CaseError.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}
