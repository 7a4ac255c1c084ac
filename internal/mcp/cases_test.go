package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalcase/caseintel/internal/registry"
)

func TestHandleCreateCase_CreatesActiveCase(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleCreateCase(context.Background(), nil, CreateCaseInput{
		Name:       "Doe v. Roe",
		CaseNumber: "1:24-cv-00001",
		Parties:    []PartyInput{{Name: "Jane Doe", Role: "Plaintiff"}},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, out.Case.ID)
	assert.Equal(t, "Doe v. Roe", out.Case.Name)
	assert.Equal(t, string(registry.StatusActive), out.Case.Status)
	require.Len(t, out.Case.Parties, 1)
	assert.Equal(t, "Jane Doe", out.Case.Parties[0].Name)
}

func TestHandleCreateCase_RejectsEmptyName(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.handleCreateCase(context.Background(), nil, CreateCaseInput{})

	require.Error(t, err)
}

func TestHandleListCases_ReturnsEveryCreatedCase(t *testing.T) {
	s := newTestServer(t)
	mustCreateCase(t, s, "Case A")
	mustCreateCase(t, s, "Case B")

	_, out, err := s.handleListCases(context.Background(), nil, ListCasesInput{})

	require.NoError(t, err)
	assert.Len(t, out.Cases, 2)
}

func TestHandleSwitchCase_DoesNotAffectOtherCasesOpenHandles(t *testing.T) {
	s := newTestServer(t)
	a := mustCreateCase(t, s, "Case A")
	b := mustCreateCase(t, s, "Case B")

	_, _, err := s.handleSwitchCase(context.Background(), nil, CaseIDInput{CaseID: a.ID})
	require.NoError(t, err)

	// Operating on case B by explicit id must not depend on which case is
	// active; every per-case tool resolves its handle via OpenHandle.
	_, docsOut, err := s.handleListDocuments(context.Background(), nil, CaseIDInput{CaseID: b.ID})
	require.NoError(t, err)
	assert.Empty(t, docsOut.Documents)
}

func TestHandleCloseCase_SetsClosedStatus(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")

	_, out, err := s.handleCloseCase(context.Background(), nil, CaseIDInput{CaseID: c.ID})

	require.NoError(t, err)
	assert.Equal(t, string(registry.StatusClosed), out.Case.Status)
}

func TestHandleArchiveCase_SetsArchivedStatus(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")

	_, out, err := s.handleArchiveCase(context.Background(), nil, CaseIDInput{CaseID: c.ID})

	require.NoError(t, err)
	assert.Equal(t, string(registry.StatusArchived), out.Case.Status)
}

func TestHandleDeleteCase_RemovesCaseFromList(t *testing.T) {
	s := newTestServer(t)
	c := mustCreateCase(t, s, "Case A")

	_, del, err := s.handleDeleteCase(context.Background(), nil, CaseIDInput{CaseID: c.ID})
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	_, list, err := s.handleListCases(context.Background(), nil, ListCasesInput{})
	require.NoError(t, err)
	assert.Empty(t, list.Cases)
}
