package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/riskibarqy/swiss-league/external/directory"
	"github.com/riskibarqy/swiss-league/external/github"
	"github.com/riskibarqy/swiss-league/internal/config"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/player"
	cachestore "github.com/riskibarqy/swiss-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/swiss-league/internal/infrastructure/repository/file"
	"github.com/riskibarqy/swiss-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/swiss-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/swiss-league/internal/platform/cache"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
)

// NewDocumentStore builds the store selected by LEAGUE_STORE. Remote stores sit
// behind the snapshot cache when caching is enabled. The returned closer
// releases any connection the store holds.
func NewDocumentStore(cfg config.Config, logger *logging.Logger) (league.DocumentStore, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }

	switch cfg.LeagueStore {
	case config.StoreFile:
		logger.Info("league store selected", "kind", cfg.LeagueStore, "path", cfg.LeagueFilePath)
		return file.NewDocumentStore(cfg.LeagueFilePath), noop, nil

	case config.StoreMemory:
		seed, err := loadSeed(cfg.LeagueFilePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("league store selected", "kind", cfg.LeagueStore, "leagues", len(seed.Leagues))
		return memory.NewDocumentStore(seed), noop, nil

	case config.StoreGitHub:
		client, err := github.NewClient(github.ClientConfig{
			APIURL:         cfg.GitHubAPIURL,
			Token:          cfg.GitHubToken,
			Repo:           cfg.GitHubRepo,
			Timeout:        cfg.GitHubTimeout,
			Logger:         logger,
			CircuitBreaker: cfg.GitHubCircuit,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build github client: %w", err)
		}
		logger.Info("league store selected", "kind", cfg.LeagueStore, "repo", cfg.GitHubRepo, "branch", cfg.GitHubBranch, "path", cfg.LeagueFilePath)
		return withSnapshotCache(cfg, github.NewDocumentStore(client, cfg.LeagueFilePath, cfg.GitHubBranch)), noop, nil

	case config.StorePostgres:
		db, err := postgres.Open(cfg.DBURL, cfg.DBDisablePreparedBinary)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("league store selected", "kind", cfg.LeagueStore, "db", postgres.DatabaseName(cfg.DBURL), "key", cfg.DBDocumentKey)
		return withSnapshotCache(cfg, postgres.NewDocumentStore(db, cfg.DBDocumentKey)), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported league store %q", cfg.LeagueStore)
	}
}

func withSnapshotCache(cfg config.Config, store league.DocumentStore) league.DocumentStore {
	if !cfg.CacheEnabled {
		return store
	}
	return cachestore.NewDocumentStore(store, cache.NewStore[league.Snapshot](cfg.CacheTTL))
}

// loadSeed reads an initial document for the memory store. A missing file
// yields an empty document.
func loadSeed(path string) (league.Document, error) {
	empty := league.Document{Leagues: map[string]*league.League{}}
	if path == "" {
		return empty, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return empty, nil
	}
	if err != nil {
		return league.Document{}, fmt.Errorf("read seed document %s: %w", path, err)
	}
	doc, err := league.Decode(raw)
	if err != nil {
		return league.Document{}, err
	}
	return doc, nil
}

// NewDirectory picks the HTTP member directory when a base URL is configured,
// then the static member list from the config file. Nil means names are used
// as given.
func NewDirectory(cfg config.Config, logger *logging.Logger) player.Directory {
	if cfg.DirectoryBaseURL != "" {
		return directory.NewClient(directory.ClientConfig{
			BaseURL:        cfg.DirectoryBaseURL,
			Token:          cfg.DirectoryToken,
			Timeout:        cfg.DirectoryTimeout,
			CacheTTL:       cfg.DirectoryCacheTTL,
			Logger:         logger,
			CircuitBreaker: cfg.DirectoryCircuit,
		})
	}
	if len(cfg.DirectoryMembers) > 0 {
		return directory.NewStatic(cfg.DirectoryMembers)
	}
	return nil
}
