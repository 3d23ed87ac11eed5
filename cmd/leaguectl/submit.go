package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/swiss-league/internal/interfaces/render"
	"github.com/riskibarqy/swiss-league/internal/usecase"
)

// submit walks a result or forfeit line through candidate selection, preview
// and confirmation before writing it. wantKind restricts the accepted kind.
func (s *session) submit(ctx context.Context, text, wantKind string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("nothing to submit: pass the result line as an argument")
	}

	found, err := s.services.Results.FindCandidates(ctx, text)
	if err != nil {
		return err
	}
	if wantKind != "" && found.Kind != wantKind {
		return fmt.Errorf("%q is not a %s line", text, wantKind)
	}

	candidate, err := s.chooseCandidate(found.Candidates)
	if err != nil {
		return err
	}

	input := usecase.SubmitTextInput{
		Text:     text,
		LeagueID: candidate.LeagueID,
		Round:    candidate.Round,
		MatchID:  candidate.MatchID,
		DryRun:   true,
	}
	preview, err := s.services.Results.SubmitText(ctx, input)
	if err != nil {
		return err
	}
	s.printf("\n%s\n", render.Preview(preview))

	question := "Apply this result?"
	if preview.Kind == usecase.SubmissionKindForfeit {
		question = "Apply this forfeit result?"
	}
	ok, err := s.confirm(question)
	if err != nil {
		return err
	}
	if !ok {
		return errAborted
	}

	input.DryRun = false
	receipt, err := s.services.Results.SubmitText(ctx, input)
	if err != nil {
		return err
	}
	s.printf("Result applied to %s round %d (version %s).\n", receipt.LeagueName, receipt.Round, receipt.Version)

	return s.maybeGitCommit(ctx, receipt.CommitMessage)
}

func (s *session) chooseCandidate(candidates []usecase.Candidate) (usecase.Candidate, error) {
	filtered := make([]usecase.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if s.leagueID != "" && c.LeagueID != s.leagueID {
			continue
		}
		if s.round > 0 && c.Round != s.round {
			continue
		}
		filtered = append(filtered, c)
	}

	switch {
	case len(filtered) == 0:
		return usecase.Candidate{}, fmt.Errorf("no pending match fits --league/--round")
	case len(filtered) == 1:
		return filtered[0], nil
	case s.yes:
		return usecase.Candidate{}, fmt.Errorf("%d pending matches found; pick one with --league or --round", len(filtered))
	}

	s.printf("%s", render.Candidates(filtered))
	for {
		answer, err := s.ask("\nSelect match number (or 'q' to quit): ")
		if err != nil {
			return usecase.Candidate{}, err
		}
		if strings.EqualFold(answer, "q") {
			return usecase.Candidate{}, errAborted
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(filtered) {
			return filtered[n-1], nil
		}
		s.printf("Invalid selection. Enter a number between 1 and %d.\n", len(filtered))
	}
}

func (s *session) ask(prompt string) (string, error) {
	s.printf("%s", prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%w: no answer", errAborted)
	}
	return strings.TrimSpace(line), nil
}

func (s *session) confirm(question string) (bool, error) {
	if s.yes {
		return true, nil
	}
	answer, err := s.ask("\n" + question + " (y/n): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
