package league

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusCompleted = "completed"

	ForfeitSingle = "single"
	ForfeitDouble = "double"

	DefaultBestOfFrames = 3
)

// Document is the persisted root: every league keyed by its identifier.
type Document struct {
	Leagues map[string]*League `json:"leagues"`
	Extra   Extras             `json:"-"`
}

// IDs returns league identifiers in lexical order.
func (d *Document) IDs() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.Leagues))
	for id := range d.Leagues {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Active returns the first league with active status, falling back to the first league.
func (d *Document) Active() (string, *League, bool) {
	ids := d.IDs()
	for _, id := range ids {
		if d.Leagues[id].Info.Status == StatusActive {
			return id, d.Leagues[id], true
		}
	}
	if len(ids) == 0 {
		return "", nil, false
	}
	return ids[0], d.Leagues[ids[0]], true
}

// Info holds league-level settings.
type Info struct {
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	BestOfFrames int       `json:"bestOfFrames"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Extra        Extras    `json:"-"`
}

// League is the single owned aggregate the engine operates on.
type League struct {
	Info    Info     `json:"league"`
	Players []Player `json:"players"`
	Rounds  []Round  `json:"rounds"`
	Extra   Extras   `json:"-"`
}

// FramesToWin is the majority threshold for a best-of-N match.
func (l *League) FramesToWin() int {
	return FramesToWin(l.Info.BestOfFrames)
}

func FramesToWin(bestOfFrames int) int {
	return bestOfFrames/2 + 1
}

// Player returns the roster entry with the given id.
func (l *League) Player(id string) (*Player, bool) {
	for i := range l.Players {
		if l.Players[i].ID == id {
			return &l.Players[i], true
		}
	}
	return nil, false
}

// PlayerName returns the display name for id, or id itself when it is not on the roster.
func (l *League) PlayerName(id string) string {
	if p, ok := l.Player(id); ok {
		return p.Name
	}
	return id
}

// ErrInvalidDocument marks a stored document that breaks the league rules.
var ErrInvalidDocument = errors.New("invalid league document")

// Validate checks the rules the engine relies on: an odd positive best-of and
// unique, non-empty player ids.
func (l *League) Validate() error {
	if l.Info.BestOfFrames < 1 || l.Info.BestOfFrames%2 == 0 {
		return fmt.Errorf("%w: bestOfFrames must be an odd positive number, got %d", ErrInvalidDocument, l.Info.BestOfFrames)
	}
	seen := make(map[string]struct{}, len(l.Players))
	for i, p := range l.Players {
		if p.ID == "" {
			return fmt.Errorf("%w: player %d has no id", ErrInvalidDocument, i+1)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: duplicate player id %q", ErrInvalidDocument, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

type Player struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Active *bool       `json:"active,omitempty"`
	Stats  PlayerStats `json:"stats"`
	Extra  Extras      `json:"-"`
}

func (p Player) IsActive() bool {
	return p.Active == nil || *p.Active
}

// PlayerStats is derived from match history and never edited directly.
type PlayerStats struct {
	MatchesPlayed      int     `json:"matchesPlayed"`
	MatchesWon         int     `json:"matchesWon"`
	MatchesLost        int     `json:"matchesLost"`
	FramesWon          int     `json:"framesWon"`
	FramesLost         int     `json:"framesLost"`
	FrameDifference    int     `json:"frameDifference"`
	Points             int     `json:"points"`
	ByesReceived       int     `json:"byesReceived"`
	StrengthOfSchedule float64 `json:"strengthOfSchedule"`
	BuchholzScore      int     `json:"buchholzScore"`
}

type Round struct {
	RoundNumber int     `json:"roundNumber"`
	Status      string  `json:"status"`
	Matches     []Match `json:"matches"`
	Extra       Extras  `json:"-"`
}

// AllCompleted reports whether every match in the round is completed.
func (r *Round) AllCompleted() bool {
	for i := range r.Matches {
		if r.Matches[i].Status != StatusCompleted {
			return false
		}
	}
	return true
}

type Match struct {
	ID               string     `json:"id"`
	Player1ID        string     `json:"player1Id"`
	Player2ID        string     `json:"player2Id"`
	IsBye            bool       `json:"isBye"`
	Status           string     `json:"status"`
	WinnerID         string     `json:"winnerId,omitempty"`
	Player1FramesWon int        `json:"player1FramesWon"`
	Player2FramesWon int        `json:"player2FramesWon"`
	Frames           []Frame    `json:"frames"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	Forfeit          string     `json:"forfeit,omitempty"`
	ForfeitedBy      []string   `json:"forfeitedBy,omitempty"`
	Extra            Extras     `json:"-"`
}

func (m *Match) IsCompleted() bool {
	return m.Status == StatusCompleted
}

func (m *Match) IsForfeit() bool {
	return m.Forfeit != ""
}

// Involves reports whether id is one of the two participants.
func (m *Match) Involves(id string) bool {
	return id != "" && (m.Player1ID == id || m.Player2ID == id)
}

// Opponent returns the other participant's id.
func (m *Match) Opponent(id string) string {
	if m.Player1ID == id {
		return m.Player2ID
	}
	return m.Player1ID
}

// Pairs reports whether the match is between a and b in either order.
func (m *Match) Pairs(a, b string) bool {
	return (m.Player1ID == a && m.Player2ID == b) || (m.Player1ID == b && m.Player2ID == a)
}

type Frame struct {
	FrameNumber  int    `json:"frameNumber"`
	Player1Score int    `json:"player1Score"`
	Player2Score int    `json:"player2Score"`
	WinnerID     string `json:"winnerId"`
	Extra        Extras `json:"-"`
}
