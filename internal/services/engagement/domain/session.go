package domain

import (
	"fmt"
	"time"
)

// Phase describes where the current session is in its lifecycle.
type Phase int

const (
	// PhaseClosed means no session is accepting posts and none is awaiting a report.
	PhaseClosed Phase = iota
	// PhaseOpen means posts are being accepted.
	PhaseOpen
	// PhaseAwaitingCheck means posting has closed and the report has not run yet.
	PhaseAwaitingCheck
	// PhaseReported means the scheduled report has run for the session.
	PhaseReported
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpen:
		return "open"
	case PhaseAwaitingCheck:
		return "awaiting_check"
	case PhaseReported:
		return "reported"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Session is the single current round of the campaign.
type Session struct {
	Number   int
	Phase    Phase
	OpenedAt time.Time
	ClosedAt time.Time
	// Warned records that the scheduled report already escalated this
	// session's non-engaged members.
	Warned bool
}

// AcceptsPosts reports whether submissions may be accepted.
func (s Session) AcceptsPosts() bool {
	return s.Phase == PhaseOpen
}

// NextNumber returns the session number that follows current in a cycle of
// total sessions. Numbers are 1-based and wrap from total back to 1.
func NextNumber(current, total int) int {
	if total <= 0 {
		return 1
	}
	return current%total + 1
}

// PreviousNumber returns the cyclic predecessor of current.
func PreviousNumber(current, total int) int {
	if total <= 0 {
		return 1
	}
	return (current-2+total)%total + 1
}

// ValidNumber reports whether n is a session number in a cycle of total.
func ValidNumber(n, total int) bool {
	return n >= 1 && n <= total
}
