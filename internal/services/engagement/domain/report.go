package domain

import (
	"strings"
	"unicode/utf16"

	"github.com/raidroom/engagebot/internal/services/engagement/i18n"
	"golang.org/x/text/message"
)

// MessageLimit is the platform's maximum message length in UTF-16 code units.
const MessageLimit = 4096

// Printer renders catalog messages. *message.Printer satisfies it.
type Printer interface {
	Sprintf(key message.Reference, a ...any) string
}

// RenderReport formats a scored session.
func RenderReport(p Printer, result ScoreResult, threshold int) string {
	lines := []string{
		p.Sprintf(i18n.ReportHeader, result.Session),
		"",
		p.Sprintf(i18n.ReportTotal, result.Total),
		"",
	}
	if len(result.Engaged) > 0 {
		lines = append(lines, p.Sprintf(i18n.ReportEngagedHeader))
		for _, s := range result.Engaged {
			marker := ""
			if s.Perfect() {
				marker = p.Sprintf(i18n.ReportPerfectMarker)
			}
			lines = append(lines, p.Sprintf(i18n.ReportEngagedLine, s.Label, s.Handle, s.Clicked, s.Eligible, s.Percent, marker))
		}
	} else {
		lines = append(lines, p.Sprintf(i18n.ReportEngagedNone))
	}
	lines = append(lines, "")
	if len(result.NonEngaged) > 0 {
		lines = append(lines, p.Sprintf(i18n.ReportNonHeader, threshold))
		for _, s := range result.NonEngaged {
			lines = append(lines, p.Sprintf(i18n.ReportNonEngagedLine, s.Label, s.Handle, s.Clicked, s.Eligible, s.Percent))
		}
	} else {
		lines = append(lines, p.Sprintf(i18n.ReportNonNone))
	}
	return strings.Join(lines, "\n")
}

// RenderLeaderboard formats the end-of-session streak leaderboard. It
// returns "" when there are no entries.
func RenderLeaderboard(p Printer, session int, entries []StreakEntry, label func(int64) string) string {
	if len(entries) == 0 {
		return ""
	}
	lines := []string{p.Sprintf(i18n.LeaderboardHeader, session), ""}
	for i, entry := range entries {
		lines = append(lines, p.Sprintf(i18n.LeaderboardLine, i+1, label(entry.UserID), entry.Count, TierFor(entry.Count).Marker()))
	}
	lines = append(lines, "", p.Sprintf(i18n.LeaderboardFooter))
	return strings.Join(lines, "\n")
}

// RenderTopStreaks formats the dashboard streak list.
func RenderTopStreaks(p Printer, entries []StreakEntry, label func(int64) string) string {
	if len(entries) == 0 {
		return p.Sprintf(i18n.StreaksEmpty)
	}
	lines := []string{p.Sprintf(i18n.TopStreaksHeader), ""}
	for i, entry := range entries {
		lines = append(lines, p.Sprintf(i18n.TopStreaksLine, i+1, label(entry.UserID), entry.Count, TierFor(entry.Count).Marker()))
	}
	return strings.Join(lines, "\n")
}

// RenderPost formats the bot's re-published copy of a post. Streaks of
// three or more carry their tier marker after the name.
func RenderPost(p Printer, post Post, name string, streak int) string {
	marker := ""
	if streak >= 3 {
		marker = " " + TierFor(streak).Marker()
	}
	return p.Sprintf(i18n.PostBody, post.Sequence, name, marker, post.Handle, post.URL)
}

// Chunk splits body at line boundaries into pieces of at most limit UTF-16
// code units. A single line longer than limit becomes its own chunk intact.
// Joining the chunks with "\n" yields body.
func Chunk(body string, limit int) []string {
	if limit <= 0 || TextLength(body) <= limit {
		return []string{body}
	}
	var (
		chunks []string
		cur    strings.Builder
		curLen int
		open   bool
	)
	for _, line := range strings.Split(body, "\n") {
		lineLen := TextLength(line)
		if open && curLen+1+lineLen <= limit {
			cur.WriteByte('\n')
			cur.WriteString(line)
			curLen += 1 + lineLen
			continue
		}
		if open {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
		curLen = lineLen
		open = true
	}
	if open {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// TextLength measures s the way the messaging platform does, in UTF-16 code
// units.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
