package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
	qb "github.com/riskibarqy/swiss-league/internal/platform/querybuilder"
)

const leagueDocumentsTable = "league_documents"

// DocumentStore keeps the whole league document in one row of league_documents.
// The row's version column is the optimistic concurrency token.
type DocumentStore struct {
	db  *sqlx.DB
	key string
}

func NewDocumentStore(db *sqlx.DB, key string) *DocumentStore {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "default"
	}
	return &DocumentStore{db: db, key: key}
}

// Fetch returns an empty document at version "0" when no row exists yet.
func (s *DocumentStore) Fetch(ctx context.Context) (league.Snapshot, error) {
	query, args, err := qb.Select("key", "version", "body", "message", "updated_at").
		From(leagueDocumentsTable).
		Where(qb.Eq("key", s.key)).
		ToSQL()
	if err != nil {
		return league.Snapshot{}, fmt.Errorf("build select league document query: %w", err)
	}

	var row leagueDocumentTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.Snapshot{Document: league.Document{Leagues: map[string]*league.League{}}, Version: "0"}, nil
		}
		return league.Snapshot{}, fmt.Errorf("select league document: %w", err)
	}

	doc, err := league.Decode([]byte(row.Body))
	if err != nil {
		return league.Snapshot{}, err
	}
	return league.Snapshot{Document: doc, Version: strconv.FormatInt(row.Version, 10)}, nil
}

func (s *DocumentStore) Commit(ctx context.Context, doc league.Document, version, message string) (string, error) {
	expected, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse document version %q: %w", version, err)
	}
	body, err := league.Encode(doc)
	if err != nil {
		return "", err
	}

	var (
		query string
		args  []any
	)
	if expected == 0 {
		query, args, err = qb.Insert(leagueDocumentsTable).
			Model(leagueDocumentInsertModel{
				Key:     s.key,
				Version: 1,
				Body:    string(body),
				Message: message,
			}).
			OnConflictDoNothing("key").
			Returning("version").
			ToSQL()
	} else {
		query, args, err = qb.Update(leagueDocumentsTable).
			Set("body", string(body)).
			Set("message", message).
			SetRaw("version", "version + 1").
			SetRaw("updated_at", "NOW()").
			Where(
				qb.Eq("key", s.key),
				qb.Eq("version", expected),
			).
			Returning("version").
			ToSQL()
	}
	if err != nil {
		return "", fmt.Errorf("build commit league document query: %w", err)
	}

	var next int64
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&next); err != nil {
		if isNotFound(err) {
			return "", league.ErrVersionConflict
		}
		return "", fmt.Errorf("commit league document: %w", err)
	}

	return strconv.FormatInt(next, 10), nil
}
