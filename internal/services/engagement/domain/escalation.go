package domain

import "time"

// MuteDuration is how long an escalation mute lasts.
const MuteDuration = 24 * time.Hour

// WarningLimit is the count at which a member is removed; it is also the
// denominator shown in warning notices ("Warning 2/4").
const WarningLimit = 4

// Action is the platform consequence of a warning.
type Action int

const (
	// ActionNotify only posts the warning notice.
	ActionNotify Action = iota
	// ActionMute restricts posting for MuteDuration.
	ActionMute
	// ActionRemove ejects the member (ban immediately followed by unban).
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionMute:
		return "mute"
	case ActionRemove:
		return "remove"
	default:
		return "notify"
	}
}

// ActionFor maps a post-increment warning count to its action. The table is
// deliberately not monotonic: the second warning mutes, the third is a bare
// notice again, and every warning from the fourth on removes.
func ActionFor(count int) Action {
	switch {
	case count == 2:
		return ActionMute
	case count >= WarningLimit:
		return ActionRemove
	default:
		return ActionNotify
	}
}

// Escalation is the outcome of one warning.
type Escalation struct {
	UserID int64
	Count  int
	Action Action
}

// Warnings holds per-member warning counters for the process lifetime.
type Warnings struct {
	counts map[int64]int
}

// NewWarnings creates an empty counter set.
func NewWarnings() *Warnings {
	return &Warnings{counts: make(map[int64]int)}
}

// Escalate increments the member's counter and returns the resulting action.
func (w *Warnings) Escalate(userID int64) Escalation {
	w.counts[userID]++
	count := w.counts[userID]
	return Escalation{UserID: userID, Count: count, Action: ActionFor(count)}
}

// Clear resets the member's counter to zero.
func (w *Warnings) Clear(userID int64) {
	w.counts[userID] = 0
}

// Count returns the member's current counter.
func (w *Warnings) Count(userID int64) int {
	return w.counts[userID]
}
