package domain

import "sort"

// LeaderboardSize caps the streak leaderboard.
const LeaderboardSize = 10

// StreakRecord tracks consecutive-session participation for one member.
type StreakRecord struct {
	Count       int
	LastSession int
}

// StreakEntry is one leaderboard row.
type StreakEntry struct {
	UserID int64
	Count  int
}

// StreakTracker keeps streaks for every member seen in the process lifetime.
type StreakTracker struct {
	records map[int64]StreakRecord
	order   []int64
}

// NewStreakTracker creates an empty tracker.
func NewStreakTracker() *StreakTracker {
	return &StreakTracker{records: make(map[int64]StreakRecord)}
}

// Record notes that userID posted in session current of a cycle of total.
// The count grows when the member's last session is the cyclic predecessor,
// restarts at 1 after a gap, and is left alone when current was already
// recorded.
func (t *StreakTracker) Record(userID int64, current, total int) StreakRecord {
	record, seen := t.records[userID]
	if !seen {
		t.order = append(t.order, userID)
	}
	switch {
	case seen && record.LastSession == PreviousNumber(current, total) && record.LastSession != current:
		record.Count++
	case !seen || record.LastSession != current:
		record.Count = 1
	}
	record.LastSession = current
	t.records[userID] = record
	return record
}

// Count returns the member's streak, zero when unknown.
func (t *StreakTracker) Count(userID int64) int {
	return t.records[userID].Count
}

// Len returns how many members have a streak record.
func (t *StreakTracker) Len() int {
	return len(t.records)
}

// Leaderboard returns up to limit entries by descending count. Ties keep the
// order in which members were first seen.
func (t *StreakTracker) Leaderboard(limit int) []StreakEntry {
	entries := make([]StreakEntry, 0, len(t.order))
	for _, userID := range t.order {
		entries = append(entries, StreakEntry{UserID: userID, Count: t.records[userID].Count})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// StreakTier is the display band of a streak.
type StreakTier int

const (
	StreakTierNone StreakTier = iota
	StreakTierLow
	StreakTierMid
	StreakTierHigh
	StreakTierTop
)

// TierFor maps a streak count to its display band.
func TierFor(count int) StreakTier {
	switch {
	case count >= 30:
		return StreakTierTop
	case count >= 14:
		return StreakTierHigh
	case count >= 7:
		return StreakTierMid
	case count >= 3:
		return StreakTierLow
	default:
		return StreakTierNone
	}
}

// Marker is the emoji shown next to a member's name.
func (t StreakTier) Marker() string {
	switch t {
	case StreakTierTop:
		return "🔥👑"
	case StreakTierHigh:
		return "🔥🔥"
	case StreakTierMid:
		return "🔥"
	case StreakTierLow:
		return "⚡"
	default:
		return ""
	}
}
