package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/riskibarqy/swiss-league/internal/app"
	"github.com/riskibarqy/swiss-league/internal/config"
	"github.com/riskibarqy/swiss-league/internal/domain/player"
	"github.com/riskibarqy/swiss-league/internal/interfaces/render"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
	"github.com/riskibarqy/swiss-league/internal/usecase"
	"github.com/urfave/cli/v2"
)

var errAborted = errors.New("cancelled")

type deps struct {
	loadConfig func() (config.Config, error)
	logger     *logging.Logger
	git        gitRunner
	stdin      io.Reader
}

func newApp(d deps) *cli.App {
	if d.logger == nil {
		d.logger = logging.Default()
	}

	return &cli.App{
		Name:  "leaguectl",
		Usage: "record Swiss league results and inspect standings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", EnvVars: []string{"LEAGUE_FILE"}, Usage: "league JSON file; forces the file store"},
			&cli.StringFlag{Name: "league", Usage: "league id"},
		},
		Commands: []*cli.Command{
			{
				Name:      "submit",
				Usage:     "apply a result line such as \"alice vs bob 2-1 63-45 52-60 71-38\"",
				ArgsUsage: "<text>",
				Flags:     submitFlags(),
				Action: func(c *cli.Context) error {
					return d.withSession(c, func(s *session) error {
						return s.submit(c.Context, strings.Join(c.Args().Slice(), " "), "")
					})
				},
			},
			{
				Name:      "forfeit",
				Usage:     "apply a forfeit line such as \"alice vs bob forfeit bob\" or \"alice vs bob double_forfeit\"",
				ArgsUsage: "<text>",
				Flags:     submitFlags(),
				Action: func(c *cli.Context) error {
					return d.withSession(c, func(s *session) error {
						return s.submit(c.Context, strings.Join(c.Args().Slice(), " "), usecase.SubmissionKindForfeit)
					})
				},
			},
			{
				Name:  "standings",
				Usage: "print the standings table",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "show only the top N rows"},
				},
				Action: func(c *cli.Context) error {
					return d.withSession(c, func(s *session) error {
						return s.standings(c.Context, c.Int("limit"))
					})
				},
			},
			{
				Name:      "matches",
				Usage:     "list a player's pending matches",
				ArgsUsage: "<player>",
				Action: func(c *cli.Context) error {
					return d.withSession(c, func(s *session) error {
						return s.matches(c.Context, strings.Join(c.Args().Slice(), " "))
					})
				},
			},
			{
				Name:  "recalc",
				Usage: "rebuild every player's stats from match history",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "report changes without writing"},
					&cli.IntFlag{Name: "workers", Usage: "parallel leagues"},
					&cli.BoolFlag{Name: "dev", Usage: "skip the git commit"},
					&cli.BoolFlag{Name: "git-commit", Usage: "stage and commit the data file without asking"},
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "answer yes to every prompt"},
				},
				Action: func(c *cli.Context) error {
					return d.withSession(c, func(s *session) error {
						return s.recalc(c.Context, c.Int("workers"), c.Bool("dry-run"))
					})
				},
			},
		},
	}
}

func submitFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "round", Usage: "pick the match from this round"},
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "answer yes to every prompt"},
		&cli.BoolFlag{Name: "dev", Usage: "skip the git commit"},
		&cli.BoolFlag{Name: "git-commit", Usage: "stage and commit the data file without asking"},
	}
}

// session is one command run against a fully wired set of services.
type session struct {
	services  *app.Services
	cfg       config.Config
	logger    *logging.Logger
	git       gitRunner
	in        *bufio.Reader
	out       io.Writer
	leagueID  string
	round     int
	yes       bool
	dev       bool
	gitCommit bool
}

func (d deps) withSession(c *cli.Context, run func(s *session) error) error {
	cfg, err := d.loadConfig()
	if err != nil {
		return err
	}
	if path := strings.TrimSpace(c.String("file")); path != "" {
		cfg.LeagueStore = config.StoreFile
		cfg.LeagueFilePath = path
	}
	if league := strings.TrimSpace(c.String("league")); league != "" {
		cfg.LeagueID = league
	}

	services, err := app.NewServices(cfg, d.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			d.logger.Warn("close services", "error", err)
		}
	}()

	return run(&session{
		services:  services,
		cfg:       cfg,
		logger:    d.logger,
		git:       d.git,
		in:        bufio.NewReader(d.stdin),
		out:       c.App.Writer,
		leagueID:  cfg.LeagueID,
		round:     c.Int("round"),
		yes:       c.Bool("yes"),
		dev:       c.Bool("dev"),
		gitCommit: c.Bool("git-commit"),
	})
}

func (s *session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *session) standings(ctx context.Context, limit int) error {
	view, err := s.services.Standings.Get(ctx, s.leagueID, limit)
	if err != nil {
		return err
	}
	s.printf("%s", render.StandingsTable(view, func(name string) string {
		return player.FormatName(ctx, s.services.Directory, name)
	}))
	return nil
}

func (s *session) matches(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("matches requires a player name")
	}
	view, err := s.services.Matches.ListPending(ctx, s.leagueID, name)
	if err != nil {
		return err
	}
	s.printf("%s\n", strings.TrimRight(render.PendingMatches(view), "\n"))
	return nil
}

func (s *session) recalc(ctx context.Context, workers int, dryRun bool) error {
	result, err := s.services.Recalculate.RecalculateAll(ctx, usecase.RecalculateInput{MaxWorkers: workers, DryRun: dryRun})
	if err != nil {
		return err
	}
	if len(result.ChangedLeagues) == 0 {
		s.printf("Stats are up to date across %d leagues.\n", result.LeagueCount)
		return nil
	}
	s.printf("Recalculated %d of %d leagues: %s\n", len(result.ChangedLeagues), result.LeagueCount, strings.Join(result.ChangedLeagues, ", "))
	if !result.Committed {
		s.printf("[DRY RUN] Nothing written.\n")
		return nil
	}
	return s.maybeGitCommit(ctx, "recalculate stats")
}
