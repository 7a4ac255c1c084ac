package errors

import (
	"errors"
	"fmt"
)

// CaseError is the structured error type used throughout the engine.
// It carries enough context for logging, user presentation, and programmatic
// branching on Kind without string matching.
type CaseError struct {
	Code       string
	Kind       Kind
	Message    string
	Severity   Severity
	Details    map[string]string
	Cause      error
	Retryable  bool
	Suggestion string
}

// Error implements the error interface.
func (e *CaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CaseError) Unwrap() error {
	return e.Cause
}

// Is enables errors.Is to match by code.
func (e *CaseError) Is(target error) bool {
	var t *CaseError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error. Returns the error for chaining.
func (e *CaseError) WithDetail(key, value string) *CaseError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets an actionable suggestion for the user.
func (e *CaseError) WithSuggestion(s string) *CaseError {
	e.Suggestion = s
	return e
}

// New creates a CaseError with Kind/Severity/Retryable derived from the code.
func New(code, message string, cause error) *CaseError {
	return &CaseError{
		Code:      code,
		Kind:      kindFromCode(code),
		Message:   message,
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a CaseError from an existing error, or returns nil if err is nil.
func Wrap(code string, err error) *CaseError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound builds a NotFound-kind error for the given resource.
func NotFound(code, resource, id string) *CaseError {
	return New(code, fmt.Sprintf("%s %q not found", resource, id), nil)
}

// DuplicateDocument builds the InvalidInput error required by spec.md §3/§7:
// ingesting an already-present content hash fails and returns the existing id.
func DuplicateDocument(existingID string) *CaseError {
	return New(ErrCodeDuplicateDocument, "document with this content hash already exists", nil).
		WithDetail("existing_id", existingID).
		WithSuggestion("use the existing document id, or delete it before re-ingesting")
}

// ResourceExhausted builds the tier-limit error carrying {resource, current, max}.
func ResourceExhausted(resource string, current, max int) *CaseError {
	return New(ErrCodeTierLimitExceeded,
		fmt.Sprintf("%s limit exceeded: %d/%d", resource, current, max), nil).
		WithDetail("resource", resource).
		WithDetail("current", fmt.Sprintf("%d", current)).
		WithDetail("max", fmt.Sprintf("%d", max)).
		WithSuggestion("upgrade your tier or free up " + resource)
}

// FutureSchemaVersion builds the fatal schema error for stored > supported versions.
func FutureSchemaVersion(stored, supported int) *CaseError {
	return New(ErrCodeFutureSchemaVersion,
		fmt.Sprintf("stored schema version %d is newer than supported version %d", stored, supported), nil).
		WithSuggestion("update the application to a version that supports this schema")
}

// MigrationRequired builds the error for the Open Question resolution: a case
// with both legacy per-embedder keys and the unified emb:* record must refuse
// to load rather than silently picking one.
func MigrationRequired(caseID string) *CaseError {
	return New(ErrCodeMigrationRequired,
		"case has both legacy per-embedder keys and unified embedding records; migration required", nil).
		WithDetail("case_id", caseID).
		WithSuggestion("run the migration tool before opening this case")
}

// EmbedderNotLoaded builds the error for requesting an embedding slot that
// was never configured (spec.md §4.G).
func EmbedderNotLoaded(slot string) *CaseError {
	return New(ErrCodeEmbedderNotLoaded, fmt.Sprintf("%s embedder slot is not configured", slot), nil).
		WithDetail("slot", slot).
		WithSuggestion("configure embed." + slot + "_model_path before requesting this slot")
}

// ModelNotDownloaded builds the error for a configured slot whose model
// weights are not present on disk.
func ModelNotDownloaded(slot, path string) *CaseError {
	return New(ErrCodeModelNotDownloaded, fmt.Sprintf("%s model weights not found", slot), nil).
		WithDetail("slot", slot).
		WithDetail("path", path).
		WithSuggestion("download the model weights to the configured path")
}

// InferenceFailed wraps a runtime embedding backend failure.
func InferenceFailed(slot string, cause error) *CaseError {
	return New(ErrCodeInferenceFailed, fmt.Sprintf("%s embedding inference failed", slot), cause).
		WithDetail("slot", slot)
}

// Cancelled builds the Cancelled-kind error for deadline/cancellation paths.
func Cancelled(cause error) *CaseError {
	return New(ErrCodeCancelled, "operation cancelled", cause)
}

// Corrupted builds a fatal Corrupted-kind error for invariant violations.
// These are never silently repaired.
func Corrupted(code, message string) *CaseError {
	e := New(code, message, nil)
	e.Severity = SeverityFatal
	return e
}

// IsRetryable reports whether err is a retryable CaseError.
func IsRetryable(err error) bool {
	var ce *CaseError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// KindOf extracts the Kind of err, or "" if err is not a CaseError.
func KindOf(err error) Kind {
	var ce *CaseError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
