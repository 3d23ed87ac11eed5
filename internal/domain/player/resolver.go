package player

import (
	"strings"

	"github.com/riskibarqy/swiss-league/internal/domain/league"
)

// DefaultFuzzyThreshold is the minimum similarity a fuzzy match must reach.
const DefaultFuzzyThreshold = 0.6

// Resolver maps free text to a roster entry and a confidence in [0, 1].
type Resolver interface {
	Resolve(players []league.Player, text string) (league.Player, float64, bool)
}

// ExactResolver accepts only a case-insensitive name match. Use it for any
// identity that authorizes a submission.
type ExactResolver struct{}

func (ExactResolver) Resolve(players []league.Player, text string) (league.Player, float64, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return league.Player{}, 0, false
	}
	for _, p := range players {
		if strings.ToLower(p.Name) == needle {
			return p, 1, true
		}
	}
	return league.Player{}, 0, false
}

// FuzzyResolver falls back to name similarity when no exact match exists.
type FuzzyResolver struct {
	Threshold float64
}

func NewFuzzyResolver(threshold float64) FuzzyResolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	return FuzzyResolver{Threshold: threshold}
}

func (r FuzzyResolver) Resolve(players []league.Player, text string) (league.Player, float64, bool) {
	threshold := r.Threshold
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}

	needle := strings.ToLower(strings.TrimSpace(text))
	var (
		best      league.Player
		bestScore float64
		found     bool
	)
	for _, p := range players {
		name := strings.ToLower(p.Name)
		if name == needle {
			return p, 1, true
		}
		score := Ratio(name, needle)
		if score > bestScore && score >= threshold {
			best, bestScore, found = p, score, true
		}
	}
	if !found {
		return league.Player{}, 0, false
	}
	return best, bestScore, true
}

// ChooseBetween resolves text against exactly two known players: an exact name
// first, then the strictly more similar name at or above threshold. Equal
// similarity is ambiguous and resolves to nothing.
func ChooseBetween(text string, first, second league.Player, threshold float64) (league.Player, float64, bool) {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return league.Player{}, 0, false
	}
	switch needle {
	case strings.ToLower(first.Name):
		return first, 1, true
	case strings.ToLower(second.Name):
		return second, 1, true
	}

	score1 := Ratio(needle, strings.ToLower(first.Name))
	score2 := Ratio(needle, strings.ToLower(second.Name))
	switch {
	case score1 > score2 && score1 >= threshold:
		return first, score1, true
	case score2 > score1 && score2 >= threshold:
		return second, score2, true
	}
	return league.Player{}, 0, false
}
