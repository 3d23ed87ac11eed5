//go:build integration

package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupDocumentStore(t *testing.T) *DocumentStore {
	t.Helper()

	ctx := context.Background()
	initScript, err := filepath.Abs(filepath.Join("..", "..", "..", "..", "db", "migrations", "000001_create_league_documents.up.sql"))
	require.NoError(t, err)

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("swiss_league"),
		tcpostgres.WithUsername("league"),
		tcpostgres.WithPassword("league"),
		tcpostgres.WithInitScripts(initScript),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewDocumentStore(db, "integration")
}

func integrationDocument() league.Document {
	active := true
	return league.Document{Leagues: map[string]*league.League{
		"spring": {
			Info: league.Info{Name: "Spring Swiss", Status: league.StatusActive, BestOfFrames: 3},
			Players: []league.Player{
				{ID: "p-alice", Name: "alice", Active: &active},
				{ID: "p-bob", Name: "bob", Active: &active},
			},
			Rounds: []league.Round{},
		},
	}}
}

func TestDocumentStore_FetchCommitRoundTrip(t *testing.T) {
	store := setupDocumentStore(t)
	ctx := context.Background()

	empty, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.Equal(t, "0", empty.Version)
	require.Empty(t, empty.Document.Leagues)

	version, err := store.Commit(ctx, integrationDocument(), "0", "seed")
	require.NoError(t, err)
	require.Equal(t, "1", version)

	snap, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.Equal(t, "1", snap.Version)
	require.Equal(t, "Spring Swiss", snap.Document.Leagues["spring"].Info.Name)

	snap.Document.Leagues["spring"].Info.Name = "Spring Swiss 2025"
	version, err = store.Commit(ctx, snap.Document, snap.Version, "rename")
	require.NoError(t, err)
	require.Equal(t, "2", version)
}

func TestDocumentStore_StaleVersionConflicts(t *testing.T) {
	store := setupDocumentStore(t)
	ctx := context.Background()

	_, err := store.Commit(ctx, integrationDocument(), "0", "seed")
	require.NoError(t, err)

	_, err = store.Commit(ctx, integrationDocument(), "0", "seed again")
	require.True(t, errors.Is(err, league.ErrVersionConflict))

	_, err = store.Commit(ctx, integrationDocument(), "7", "stale")
	require.True(t, errors.Is(err, league.ErrVersionConflict))
}
