package main

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/riskibarqy/swiss-league/internal/config"
)

type gitRunner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

type execGit struct{}

func (execGit) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}

// maybeGitCommit stages and commits the league file. --dev skips it and
// --git-commit skips the prompt. Stores other than the file store are not
// backed by the working tree.
func (s *session) maybeGitCommit(ctx context.Context, message string) error {
	if s.cfg.LeagueStore != config.StoreFile {
		return nil
	}
	if s.dev {
		s.printf("[DEV MODE] Skipping git commit\n")
		return nil
	}
	if !s.gitCommit {
		ok, err := s.confirm("Create git commit?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if _, err := s.git.Run(ctx, "add", s.cfg.LeagueFilePath); err != nil {
		return err
	}
	out, err := s.git.Run(ctx, "commit", "-m", message)
	if err != nil {
		return err
	}
	s.logger.Debug("git commit created", "output", strings.TrimSpace(out))
	s.printf("Git commit created: %s\n", message)
	return nil
}
