package mcp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

func TestMapError_NilReturnsNil(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError_NotFoundKindMapsToNotFoundCode(t *testing.T) {
	err := caseerrors.NotFound(caseerrors.ErrCodeDocumentNotFound, "document", "doc-1")

	mapped := MapError(err)

	require.NotNil(t, mapped)
	assert.Equal(t, ErrCodeNotFound, mapped.Code)
	assert.Contains(t, mapped.Message, "doc-1")
}

func TestMapError_NonCaseErrorFallsBackToInternalError(t *testing.T) {
	mapped := MapError(errors.New("boom"))

	require.NotNil(t, mapped)
	assert.Equal(t, ErrCodeInternalError, mapped.Code)
	assert.Equal(t, "boom", mapped.Message)
}

func TestMapError_IncludesSuggestionInMessage(t *testing.T) {
	mapped := MapError(caseerrors.DuplicateDocument("existing-id"))

	require.NotNil(t, mapped)
	assert.Contains(t, mapped.Message, "already exists")
	assert.Contains(t, mapped.Message, "existing document id")
}

func TestNewInvalidParamsError_SetsInvalidParamsCode(t *testing.T) {
	err := NewInvalidParamsError("name is required")

	assert.Equal(t, ErrCodeInvalidParams, err.Code)
	assert.Equal(t, "name is required", err.Message)
}
