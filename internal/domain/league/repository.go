package league

import (
	"context"
	"errors"
)

// ErrVersionConflict reports that the stored document changed since it was fetched.
var ErrVersionConflict = errors.New("league document version conflict")

// Snapshot is a fetched document together with the version token it was read at.
type Snapshot struct {
	Document Document
	Version  string
}

// DocumentStore persists the league document with optimistic concurrency.
type DocumentStore interface {
	Fetch(ctx context.Context) (Snapshot, error)
	// Commit writes doc only if the stored version still equals version and
	// returns the new version token.
	Commit(ctx context.Context, doc Document, version, message string) (string, error)
}
