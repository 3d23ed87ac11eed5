// Package render formats league views as plain text for the CLI and chat replies.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/swiss-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const ruleWidth = 60

// NameFormatter decorates a player name, for example with a directory display name.
type NameFormatter func(name string) string

// StandingsTable renders the fixed-width table "#, Player, Pts, W-L, Frames, +/-".
func StandingsTable(view usecase.StandingsView, format NameFormatter) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	names := make([]string, len(view.Rows))
	width := len("Player")
	for i, row := range view.Rows {
		names[i] = row.Player.Name
		if format != nil {
			names[i] = format(row.Player.Name)
		}
		width = max(width, len(names[i]))
	}

	header := fmt.Sprintf("%-4s %-*s  %3s  %5s  %7s  %4s", "#", width, "Player", "Pts", "W-L", "Frames", "+/-")
	_, _ = fmt.Fprintf(buf, "%s Standings\n", view.LeagueName)
	_, _ = buf.WriteString(header)
	_ = buf.WriteByte('\n')
	_, _ = buf.WriteString(strings.Repeat("-", len(header)))
	_ = buf.WriteByte('\n')

	for i, row := range view.Rows {
		st := row.Player.Stats
		_, _ = fmt.Fprintf(buf, "%-4s %-*s  %3d  %5s  %7s  %4s\n",
			row.Label(),
			width, names[i],
			st.Points,
			strconv.Itoa(st.MatchesWon)+"-"+strconv.Itoa(st.MatchesLost),
			strconv.Itoa(st.FramesWon)+"-"+strconv.Itoa(st.FramesLost),
			signed(st.FrameDifference),
		)
	}
	return buf.String()
}

// Preview renders a receipt the way the confirmation prompt shows it.
func Preview(r usecase.SubmissionReceipt) string {
	if r.Kind == usecase.SubmissionKindForfeit {
		return ForfeitPreview(r)
	}
	return ResultPreview(r)
}

func ResultPreview(r usecase.SubmissionReceipt) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeMatchHeader(buf, r)
	line(buf, "Player Matching:")
	line(buf, fmt.Sprintf("  '%s' -> %s (score: %.2f)", r.Player1.Input, r.Player1.Name, r.Player1.Confidence))
	line(buf, fmt.Sprintf("  '%s' -> %s (score: %.2f)", r.Player2.Input, r.Player2.Name, r.Player2.Confidence))
	line(buf, strings.Repeat("-", ruleWidth))
	line(buf, fmt.Sprintf("Result: %s vs %s", r.Player1.Name, r.Player2.Name))
	line(buf, "Overall: "+r.Score.String())
	line(buf, "")
	line(buf, "Frames:")
	for i, f := range r.Frames {
		winner := r.Player2.Name
		if f.Left > f.Right {
			winner = r.Player1.Name
		}
		line(buf, fmt.Sprintf("  Frame %d: %s (%s)", i+1, f, winner))
	}
	line(buf, "")
	line(buf, "Match Winner: "+r.WinnerName)
	_, _ = buf.WriteString(strings.Repeat("=", ruleWidth))
	return buf.String()
}

func ForfeitPreview(r usecase.SubmissionReceipt) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeMatchHeader(buf, r)
	line(buf, fmt.Sprintf("Match: %s vs %s", r.Player1.Name, r.Player2.Name))
	line(buf, strings.Repeat("-", ruleWidth))
	if r.WinnerID == "" {
		line(buf, "DOUBLE FORFEIT")
		line(buf, "  Both players forfeit")
		line(buf, fmt.Sprintf("  %s: 0 points (loss)", r.Player1.Name))
		line(buf, fmt.Sprintf("  %s: 0 points (loss)", r.Player2.Name))
	} else {
		forfeiter := r.Player1.Name
		if r.WinnerID == r.Player1.ID {
			forfeiter = r.Player2.Name
		}
		line(buf, "SINGLE FORFEIT")
		line(buf, fmt.Sprintf("  %s forfeits", forfeiter))
		line(buf, fmt.Sprintf("  %s: 1 point (win by forfeit)", r.WinnerName))
		line(buf, fmt.Sprintf("  %s: 0 points (loss by forfeit)", forfeiter))
	}
	line(buf, "  No frames recorded")
	line(buf, strings.Repeat("-", ruleWidth))
	line(buf, "NOTE: Forfeits are excluded from SOS and Buchholz calculations")
	_, _ = buf.WriteString(strings.Repeat("=", ruleWidth))
	return buf.String()
}

// Candidates renders a numbered list for choosing between pending matches.
func Candidates(items []usecase.Candidate) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "Found %d matches for these players:\n", len(items))
	for i, c := range items {
		_, _ = fmt.Fprintf(buf, "  %d. %s - Round %d\n", i+1, c.LeagueName, c.Round)
	}
	return buf.String()
}

// PendingMatches renders "Round N: vs Opponent" lines for one player.
func PendingMatches(v usecase.PlayerMatchesView) string {
	if len(v.Pending) == 0 {
		return "No pending matches for " + v.PlayerName + "."
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "Pending matches for %s\n", v.PlayerName)
	for _, m := range v.Pending {
		_, _ = fmt.Fprintf(buf, "Round %d: vs %s\n", m.Round, m.OpponentName)
	}
	return buf.String()
}

func writeMatchHeader(buf *bytebufferpool.ByteBuffer, r usecase.SubmissionReceipt) {
	line(buf, strings.Repeat("=", ruleWidth))
	line(buf, "League: "+r.LeagueName)
	line(buf, "Round: "+strconv.Itoa(r.Round))
	line(buf, "Match ID: "+r.MatchID)
	line(buf, strings.Repeat("-", ruleWidth))
}

func line(buf *bytebufferpool.ByteBuffer, s string) {
	_, _ = buf.WriteString(s)
	_ = buf.WriteByte('\n')
}

func signed(v int) string {
	if v > 0 {
		return "+" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}
