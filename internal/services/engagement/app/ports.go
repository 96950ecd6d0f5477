package app

import (
	"context"
	"time"

	"github.com/raidroom/engagebot/internal/services/engagement/domain"
)

// Target addresses a sub-channel of the group. ThreadID zero is the
// group's general channel.
type Target struct {
	ChatID   int64
	ThreadID int
}

// Button is an inline keyboard button carrying either a URL or callback data.
type Button struct {
	Text string
	URL  string
	Data string
}

// Outgoing is one message the bot sends.
type Outgoing struct {
	Target   Target
	Text     string
	Buttons  [][]Button
	Markdown bool
}

// Messenger is the messaging platform as the engine uses it.
type Messenger interface {
	Send(ctx context.Context, msg Outgoing) (domain.MessageRef, error)
	Delete(ctx context.Context, ref domain.MessageRef) error
	Edit(ctx context.Context, ref domain.MessageRef, text string) error
	Restrict(ctx context.Context, chatID, userID int64, until time.Time) error
	Unrestrict(ctx context.Context, chatID, userID int64) error
	Ban(ctx context.Context, chatID, userID int64) error
	Unban(ctx context.Context, chatID, userID int64) error
	Pin(ctx context.Context, ref domain.MessageRef) error
	Unpin(ctx context.Context, ref domain.MessageRef) error
	OpenThread(ctx context.Context, target Target) error
	CloseThread(ctx context.Context, target Target) error
	Admins(ctx context.Context, chatID int64) ([]domain.Identity, error)
	Member(ctx context.Context, chatID, userID int64) (domain.Identity, error)
}

// ClickFeed is the click-tracking collaborator.
type ClickFeed interface {
	Fetch(ctx context.Context, session int) ([]domain.ClickEvent, error)
	TrackURL(post domain.Post, session int) string
}

// Handler receives inbound platform updates.
type Handler interface {
	HandleMessage(ctx context.Context, msg Incoming)
	HandleCommand(ctx context.Context, cmd Command)
	HandleCallback(ctx context.Context, cb Callback)
	HandleJoin(ctx context.Context, chatID int64, members []domain.Identity)
}

// Transport is a messaging platform connection that both carries outbound
// calls and delivers inbound updates to a Handler until ctx ends.
type Transport interface {
	Messenger
	Serve(ctx context.Context, handler Handler) error
}

// Incoming is a plain message seen in the group.
type Incoming struct {
	ChatID    int64
	ThreadID  int
	MessageID int
	Sender    domain.Identity
	Text      string
}

// Ref addresses the incoming message.
func (m Incoming) Ref() domain.MessageRef {
	return domain.MessageRef{ChatID: m.ChatID, MessageID: m.MessageID}
}

// Command is a slash command with its arguments.
type Command struct {
	Incoming
	Name string
	Args []string
	// ReplyTo is set when the command was sent as a reply.
	ReplyTo *Incoming
}

// Callback is an inline button press.
type Callback struct {
	ChatID    int64
	ThreadID  int
	MessageID int
	Sender    domain.Identity
	Data      string
}

// Ref addresses the message carrying the pressed button.
func (c Callback) Ref() domain.MessageRef {
	return domain.MessageRef{ChatID: c.ChatID, MessageID: c.MessageID}
}
