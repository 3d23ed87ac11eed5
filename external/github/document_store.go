package github

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
)

// DocumentStore keeps the league document as a file in a GitHub repository. Each
// commit is a real git commit whose message is the submission text, and the blob
// sha is the version token.
type DocumentStore struct {
	client *Client
	path   string
	branch string
}

func NewDocumentStore(client *Client, path, branch string) *DocumentStore {
	return &DocumentStore{
		client: client,
		path:   strings.Trim(strings.TrimSpace(path), "/"),
		branch: strings.TrimSpace(branch),
	}
}

// Fetch reads the document. A missing file reads as an empty document with an
// empty version, which Commit treats as "create".
func (s *DocumentStore) Fetch(ctx context.Context) (league.Snapshot, error) {
	file, err := s.client.GetFile(ctx, s.path, s.branch)
	if err != nil {
		if crerr.Is(err, ErrFileNotFound) {
			return league.Snapshot{Document: league.Document{Leagues: map[string]*league.League{}}}, nil
		}
		return league.Snapshot{}, crerr.Wrapf(err, "fetch %s", s.path)
	}

	doc, err := league.Decode(file.Content)
	if err != nil {
		return league.Snapshot{}, err
	}
	return league.Snapshot{Document: doc, Version: file.SHA}, nil
}

func (s *DocumentStore) Commit(ctx context.Context, doc league.Document, version, message string) (string, error) {
	raw, err := league.Encode(doc)
	if err != nil {
		return "", err
	}

	sha, err := s.client.PutFile(ctx, s.path, s.branch, version, message, raw)
	if err != nil {
		if crerr.Is(err, ErrStaleSHA) {
			return "", league.ErrVersionConflict
		}
		return "", crerr.Wrapf(err, "commit %s", s.path)
	}
	return sha, nil
}
