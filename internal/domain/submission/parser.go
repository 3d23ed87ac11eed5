package submission

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidFrameFormat = errors.New("invalid frame score format")
	ErrInvalidResult      = errors.New("invalid result input")
	ErrInvalidForfeit     = errors.New("invalid forfeit input")
)

var (
	scorePattern         = regexp.MustCompile(`^(\d+)-(\d+)$`)
	versusPattern        = regexp.MustCompile(`\s+[Vv][Ss]\s+`)
	doubleForfeitPattern = regexp.MustCompile(`(?i)\s+double[_-]?forfeit\s*$`)
	singleForfeitPattern = regexp.MustCompile(`(?i)\s+forfeit\s+(.+?)\s*$`)
	forfeitMarkerPattern = regexp.MustCompile(`(?i)\s+(forfeit|double[_-]?forfeit)\b`)
)

// Score is a pair of numbers in submission order: left side first.
type Score struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

func (s Score) String() string {
	return fmt.Sprintf("%d-%d", s.Left, s.Right)
}

// Swap returns the score seen from the other side.
func (s Score) Swap() Score {
	return Score{Left: s.Right, Right: s.Left}
}

// Result is a parsed "<name> vs <name> <overall> <frames...>" line.
type Result struct {
	Player1 string
	Player2 string
	Overall Score
	Frames  []Score
}

type ForfeitKind string

const (
	ForfeitSingle ForfeitKind = "single"
	ForfeitDouble ForfeitKind = "double"
)

// Forfeit is a parsed forfeit declaration. Forfeiter is empty for a double forfeit.
type Forfeit struct {
	Player1   string
	Player2   string
	Kind      ForfeitKind
	Forfeiter string
}

// ParseFrameScore accepts only "<digits>-<digits>".
func ParseFrameScore(text string) (Score, bool) {
	m := scorePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Score{}, false
	}
	left, err := strconv.Atoi(m[1])
	if err != nil {
		return Score{}, false
	}
	right, err := strconv.Atoi(m[2])
	if err != nil {
		return Score{}, false
	}
	return Score{Left: left, Right: right}, true
}

// ParseFrameScores parses positional frame inputs, naming the first bad one.
func ParseFrameScores(texts []string) ([]Score, error) {
	out := make([]Score, 0, len(texts))
	for i, text := range texts {
		score, ok := ParseFrameScore(text)
		if !ok {
			return nil, fmt.Errorf("%w: frame %d %q, use a format like 63-45", ErrInvalidFrameFormat, i+1, text)
		}
		out = append(out, score)
	}
	return out, nil
}

// ParseResult reads "<player1> vs <player2> <overall> <frame> <frame> ...".
// The first token shaped like a score ends player2's name; later tokens that are not
// scores are ignored.
func ParseResult(text string) (Result, error) {
	parts := versusPattern.Split(text, 2)
	if len(parts) != 2 {
		return Result{}, fmt.Errorf("%w: input must contain a 'vs' separator between player names", ErrInvalidResult)
	}

	tokens := strings.Fields(parts[1])
	if len(tokens) < 2 {
		return Result{}, fmt.Errorf("%w: expected player 2 name and overall score", ErrInvalidResult)
	}

	overallIdx := -1
	for i, token := range tokens {
		if scorePattern.MatchString(token) {
			overallIdx = i
			break
		}
	}
	if overallIdx < 0 {
		return Result{}, fmt.Errorf("%w: could not find overall score in format X-X", ErrInvalidResult)
	}

	player2 := strings.Join(tokens[:overallIdx], " ")
	if player2 == "" {
		return Result{}, fmt.Errorf("%w: player 2 name is empty", ErrInvalidResult)
	}

	overall, _ := ParseFrameScore(tokens[overallIdx])
	frames := make([]Score, 0, len(tokens)-overallIdx-1)
	for _, token := range tokens[overallIdx+1:] {
		if score, ok := ParseFrameScore(token); ok {
			frames = append(frames, score)
		}
	}

	return Result{
		Player1: strings.TrimSpace(parts[0]),
		Player2: player2,
		Overall: overall,
		Frames:  frames,
	}, nil
}

// IsForfeit reports whether text declares a forfeit rather than a played result.
func IsForfeit(text string) bool {
	return forfeitMarkerPattern.MatchString(text)
}

// ParseForfeit reads "<p1> vs <p2> forfeit <name>" or "<p1> vs <p2> double-forfeit".
func ParseForfeit(text string) (Forfeit, error) {
	if loc := doubleForfeitPattern.FindStringIndex(text); loc != nil {
		p1, p2, err := splitNames(text[:loc[0]])
		if err != nil {
			return Forfeit{}, err
		}
		return Forfeit{Player1: p1, Player2: p2, Kind: ForfeitDouble}, nil
	}

	if m := singleForfeitPattern.FindStringSubmatchIndex(text); m != nil {
		p1, p2, err := splitNames(text[:m[0]])
		if err != nil {
			return Forfeit{}, err
		}
		return Forfeit{
			Player1:   p1,
			Player2:   p2,
			Kind:      ForfeitSingle,
			Forfeiter: strings.TrimSpace(text[m[2]:m[3]]),
		}, nil
	}

	return Forfeit{}, fmt.Errorf("%w: use 'forfeit <player>' or 'double-forfeit'", ErrInvalidForfeit)
}

func splitNames(prefix string) (string, string, error) {
	parts := versusPattern.Split(prefix, 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: input must contain a 'vs' separator between player names", ErrInvalidForfeit)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
