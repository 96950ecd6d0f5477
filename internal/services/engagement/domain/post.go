package domain

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrSessionClosed rejects a submission outside the open phase.
	ErrSessionClosed = errors.New("session is not open for posting")
	// ErrNotALink marks chatter that carries no link; it is ignored, not rejected.
	ErrNotALink = errors.New("message does not contain a link")
	// ErrAlreadyPosted rejects a second post by the same participant.
	ErrAlreadyPosted = errors.New("participant already posted this session")
	// ErrDuplicateLink rejects a link another participant already posted.
	ErrDuplicateLink = errors.New("link already posted this session")
	// ErrPlaceholderHandle rejects links that use the "/i/" placeholder
	// instead of the participant's own handle.
	ErrPlaceholderHandle = errors.New("link uses a placeholder handle")
)

// UnknownHandle is recorded when no external handle can be derived from a link.
const UnknownHandle = "Unknown"

// Identity is what the bot knows about a group member.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// FullName joins the first and last names.
func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// Mention renders "@username" when available, otherwise the full name.
func (i Identity) Mention() string {
	if i.Username != "" {
		return "@" + i.Username
	}
	if name := i.FullName(); name != "" {
		return name
	}
	return FallbackLabel(i.ID)
}

// FallbackLabel is the synthetic label for a member with no cached identity.
func FallbackLabel(userID int64) string {
	return "User" + strconv.FormatInt(userID, 10)
}

// MessageRef addresses a message in the group.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero reports whether the reference is unset.
func (r MessageRef) IsZero() bool {
	return r.MessageID == 0
}

// Post is one accepted link submission.
type Post struct {
	Sequence int
	PosterID int64
	Handle   string
	URL      string
	// Rendered is the bot's re-published copy of the post, set once the
	// platform call completes.
	Rendered MessageRef
}

// ContainsLink reports whether text looks like a link submission.
func ContainsLink(text string) bool {
	return strings.Contains(text, "http")
}

// HasPlaceholderHandle reports whether the link uses the "/i/" form that
// hides the poster's real handle.
func HasPlaceholderHandle(text string) bool {
	return strings.Contains(text, "x.com/i/") || strings.Contains(text, "/i/")
}

// ExtractHandle derives the poster's external handle from an x.com link,
// which has the form scheme://x.com/<handle>/status/<id>.
func ExtractHandle(link string) string {
	if !strings.Contains(link, "x.com") {
		return UnknownHandle
	}
	parts := strings.Split(link, "/")
	if len(parts) < 4 || strings.TrimSpace(parts[3]) == "" {
		return UnknownHandle
	}
	return parts[3]
}
