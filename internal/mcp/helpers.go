package mcp

import (
	"time"

	caseerrors "github.com/legalcase/caseintel/internal/errors"
)

func nowUnix() int64 { return time.Now().Unix() }

func documentNotFoundError(id string) error {
	return caseerrors.NotFound(caseerrors.ErrCodeDocumentNotFound, "document", id)
}

func chunkNotFoundError(id string) error {
	return caseerrors.NotFound(caseerrors.ErrCodeChunkNotFound, "chunk", id)
}

func watchNotFoundError(id string) error {
	return caseerrors.NotFound(caseerrors.ErrCodeWatchNotFound, "watch", id)
}

func entityNotFoundError(id string) error {
	return caseerrors.NotFound(caseerrors.ErrCodeEntityNotFound, "entity", id)
}

func citationNotFoundError(id string) error {
	return caseerrors.NotFound(caseerrors.ErrCodeCitationNotFound, "citation", id)
}
