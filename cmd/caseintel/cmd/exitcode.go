package cmd

import (
	"errors"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

// invalidArgsError marks a command-line argument error (exit code 2),
// distinct from a generic runtime failure (exit code 1).
type invalidArgsError struct{ msg string }

func (e *invalidArgsError) Error() string { return e.msg }

// newInvalidArgsError builds an invalidArgsError for a subcommand's flag
// validation failures.
func newInvalidArgsError(msg string) error { return &invalidArgsError{msg: msg} }

// ExitCode maps err to the process exit code spec.md §6 defines: 0 success,
// 1 generic error, 2 invalid arguments, 3 licence/tier violation.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var argErr *invalidArgsError
	if errors.As(err, &argErr) {
		return 2
	}

	var caseErr *caseerrors.CaseError
	if errors.As(err, &caseErr) {
		if caseErr.Kind == caseerrors.KindResourceExhausted || caseErr.Code == caseerrors.ErrCodeInvalidLicense {
			return 3
		}
		if caseErr.Kind == caseerrors.KindInvalidInput {
			return 2
		}
	}

	return 1
}
