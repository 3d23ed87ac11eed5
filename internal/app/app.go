package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/swiss-league/internal/config"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/domain/player"
	"github.com/riskibarqy/swiss-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/swiss-league/internal/platform/cache"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
	"github.com/riskibarqy/swiss-league/internal/usecase"
)

// Services holds the use cases shared by the API and the CLI.
type Services struct {
	Store       league.DocumentStore
	Directory   player.Directory
	Results     *usecase.ResultService
	Standings   *usecase.StandingsService
	Matches     *usecase.MatchService
	Recalculate *usecase.RecalculateService

	closers []func() error
}

func NewServices(cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, closeStore, err := NewDocumentStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	dir := NewDirectory(cfg, logger)

	var views *cache.Store[usecase.StandingsView]
	if cfg.CacheEnabled {
		views = cache.NewStore[usecase.StandingsView](cfg.CacheTTL)
	}
	standings := usecase.NewStandingsService(store, views, cfg.LeagueID)

	return &Services{
		Store:     store,
		Directory: dir,
		Results: usecase.NewResultService(store, dir, usecase.ResultServiceConfig{
			LeagueID:       cfg.LeagueID,
			MaxAttempts:    cfg.ResultCommitMaxAttempts,
			FuzzyThreshold: cfg.FuzzyThreshold,
		}, logger, standings),
		Standings:   standings,
		Matches:     usecase.NewMatchService(store, dir, cfg.LeagueID),
		Recalculate: usecase.NewRecalculateService(store, cfg.RecalcWorkers, cfg.ResultCommitMaxAttempts, logger, standings),
		closers:     []func() error{closeStore},
	}, nil
}

func (s *Services) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewHTTPServer(cfg config.Config, services *Services, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var limiter *httpapi.ClientRateLimiter
	if cfg.RateLimitEnabled {
		limiter = httpapi.NewClientRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	handler := httpapi.NewHandler(services.Results, services.Standings, services.Matches, services.Recalculate, logger)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ServiceToken:       cfg.ServiceToken,
		SubmitLimiter:      limiter,
	}, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
