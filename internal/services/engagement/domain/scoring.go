package domain

import (
	"math"
	"sort"
)

// ClickEvent records that a member opened another member's post link.
type ClickEvent struct {
	RaterID      int64
	PostSequence int
	// Session is the session the click was reported for; zero means the
	// feed did not say and the event is assumed to match.
	Session int
}

// ScoreInput is everything needed to score one session.
type ScoreInput struct {
	Session   int
	Posts     []Post
	Members   []int64
	Clicks    []ClickEvent
	Threshold int
	// Exempt members never appear among non-engagers.
	Exempt map[int64]bool
	// Label renders a member's display identity.
	Label func(userID int64) string
}

// Score is one member's engagement.
type Score struct {
	UserID   int64
	Label    string
	Handle   string
	Clicked  int
	Eligible int
	Percent  int
}

// Perfect reports whether the member opened every eligible post.
func (s Score) Perfect() bool {
	return s.Percent == 100
}

// ScoreResult partitions members by the engagement threshold.
type ScoreResult struct {
	Session int
	Total   int
	// Engaged is sorted by descending percentage; ties keep member order.
	Engaged []Score
	// NonEngaged keeps member order and excludes exempt members.
	NonEngaged []Score
}

// ScoreSession computes each member's share of other members' posts they
// opened. A member is never scored against their own posts, and a member
// with nothing eligible scores zero.
func ScoreSession(in ScoreInput) ScoreResult {
	label := in.Label
	if label == nil {
		label = FallbackLabel
	}

	ownBy := make(map[int64]map[int]struct{})
	handleBy := make(map[int64]string)
	published := make(map[int]struct{}, len(in.Posts))
	for _, post := range in.Posts {
		published[post.Sequence] = struct{}{}
		own, ok := ownBy[post.PosterID]
		if !ok {
			own = make(map[int]struct{})
			ownBy[post.PosterID] = own
			handleBy[post.PosterID] = "@" + post.Handle
		}
		own[post.Sequence] = struct{}{}
	}

	clickedBy := make(map[int64]map[int]struct{})
	for _, click := range in.Clicks {
		if click.Session != 0 && in.Session != 0 && click.Session != in.Session {
			continue
		}
		set, ok := clickedBy[click.RaterID]
		if !ok {
			set = make(map[int]struct{})
			clickedBy[click.RaterID] = set
		}
		set[click.PostSequence] = struct{}{}
	}

	total := len(in.Posts)
	result := ScoreResult{Session: in.Session, Total: total}
	for _, userID := range in.Members {
		own := ownBy[userID]
		eligible := total - len(own)
		clicked := 0
		for seq := range clickedBy[userID] {
			if _, isOwn := own[seq]; isOwn {
				continue
			}
			// Clicks on posts that never existed do not count.
			if _, ok := published[seq]; ok {
				clicked++
			}
		}
		handle, ok := handleBy[userID]
		if !ok {
			handle = "?"
		}
		score := Score{
			UserID:   userID,
			Label:    label(userID),
			Handle:   handle,
			Clicked:  clicked,
			Eligible: eligible,
			Percent:  Percentage(clicked, eligible),
		}
		if score.Percent >= in.Threshold {
			result.Engaged = append(result.Engaged, score)
			continue
		}
		if in.Exempt[userID] {
			continue
		}
		result.NonEngaged = append(result.NonEngaged, score)
	}
	sort.SliceStable(result.Engaged, func(i, j int) bool {
		return result.Engaged[i].Percent > result.Engaged[j].Percent
	})
	return result
}

// Percentage returns part/whole as a whole percentage, rounding halves to
// even. It is zero when whole is not positive.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(part) / float64(whole) * 100))
}
