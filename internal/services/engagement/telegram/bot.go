// Package telegram connects the engagement engine to the Telegram Bot API.
// Outbound calls implement app.Messenger; inbound updates are routed to an
// app.Handler by Serve.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/raidroom/engagebot/internal/services/engagement/app"
	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	tele "gopkg.in/telebot.v3"
)

const defaultPollTimeout = 10 * time.Second

// Config controls the Bot API connection.
type Config struct {
	Token       string
	PollTimeout time.Duration
	// APIURL overrides the Bot API endpoint.
	APIURL string
	// Offline skips the startup identity check.
	Offline bool
	Logger  *slog.Logger
}

// Bot is a Telegram connection usable as an app.Transport.
type Bot struct {
	bot    *tele.Bot
	logger *slog.Logger
}

var _ app.Transport = (*Bot)(nil)

// New connects to the Bot API.
func New(cfg Config) (*Bot, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is required")
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bot, err := tele.NewBot(tele.Settings{
		URL:     cfg.APIURL,
		Token:   cfg.Token,
		Poller:  &tele.LongPoller{Timeout: cfg.PollTimeout},
		Offline: cfg.Offline,
		OnError: func(err error, c tele.Context) {
			attrs := []any{slog.Any("error", err)}
			if c != nil && c.Update().ID != 0 {
				attrs = append(attrs, slog.Int("update_id", c.Update().ID))
			}
			logger.Warn("telegram update failed", attrs...)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	return &Bot{bot: bot, logger: logger}, nil
}

// Send posts a message, optionally with an inline keyboard.
func (b *Bot) Send(_ context.Context, msg app.Outgoing) (domain.MessageRef, error) {
	sent, err := b.bot.Send(chat(msg.Target.ChatID), msg.Text, sendOptions(msg))
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("send message: %w", err)
	}
	return domain.MessageRef{ChatID: sent.Chat.ID, MessageID: sent.ID}, nil
}

// Delete removes a message.
func (b *Bot) Delete(_ context.Context, ref domain.MessageRef) error {
	if err := b.bot.Delete(stored(ref)); err != nil {
		return fmt.Errorf("delete message %d: %w", ref.MessageID, err)
	}
	return nil
}

// Edit replaces a message's text and drops its keyboard.
func (b *Bot) Edit(_ context.Context, ref domain.MessageRef, text string) error {
	if _, err := b.bot.Edit(stored(ref), text); err != nil {
		return fmt.Errorf("edit message %d: %w", ref.MessageID, err)
	}
	return nil
}

// Restrict stops a member from posting until the given time.
func (b *Bot) Restrict(_ context.Context, chatID, userID int64, until time.Time) error {
	member := &tele.ChatMember{
		User:            &tele.User{ID: userID},
		Rights:          tele.NoRights(),
		RestrictedUntil: until.Unix(),
	}
	if err := b.bot.Restrict(chat(chatID), member); err != nil {
		return fmt.Errorf("restrict %d: %w", userID, err)
	}
	return nil
}

// Unrestrict lifts every restriction on a member.
func (b *Bot) Unrestrict(_ context.Context, chatID, userID int64) error {
	member := &tele.ChatMember{
		User:   &tele.User{ID: userID},
		Rights: tele.NoRestrictions(),
	}
	if err := b.bot.Restrict(chat(chatID), member); err != nil {
		return fmt.Errorf("unrestrict %d: %w", userID, err)
	}
	return nil
}

// Ban removes a member and keeps them out.
func (b *Bot) Ban(_ context.Context, chatID, userID int64) error {
	if err := b.bot.Ban(chat(chatID), &tele.ChatMember{User: &tele.User{ID: userID}}); err != nil {
		return fmt.Errorf("ban %d: %w", userID, err)
	}
	return nil
}

// Unban lets a removed member rejoin.
func (b *Bot) Unban(_ context.Context, chatID, userID int64) error {
	if err := b.bot.Unban(chat(chatID), &tele.User{ID: userID}); err != nil {
		return fmt.Errorf("unban %d: %w", userID, err)
	}
	return nil
}

// Pin pins a message.
func (b *Bot) Pin(_ context.Context, ref domain.MessageRef) error {
	if err := b.bot.Pin(stored(ref)); err != nil {
		return fmt.Errorf("pin message %d: %w", ref.MessageID, err)
	}
	return nil
}

// Unpin unpins a message.
func (b *Bot) Unpin(_ context.Context, ref domain.MessageRef) error {
	if err := b.bot.Unpin(chat(ref.ChatID), ref.MessageID); err != nil {
		return fmt.Errorf("unpin message %d: %w", ref.MessageID, err)
	}
	return nil
}

// OpenThread reopens a forum topic.
func (b *Bot) OpenThread(_ context.Context, target app.Target) error {
	if err := b.bot.ReopenTopic(chat(target.ChatID), &tele.Topic{ThreadID: target.ThreadID}); err != nil {
		return fmt.Errorf("reopen topic %d: %w", target.ThreadID, err)
	}
	return nil
}

// CloseThread closes a forum topic.
func (b *Bot) CloseThread(_ context.Context, target app.Target) error {
	if err := b.bot.CloseTopic(chat(target.ChatID), &tele.Topic{ThreadID: target.ThreadID}); err != nil {
		return fmt.Errorf("close topic %d: %w", target.ThreadID, err)
	}
	return nil
}

// Admins lists the chat's administrators.
func (b *Bot) Admins(_ context.Context, chatID int64) ([]domain.Identity, error) {
	members, err := b.bot.AdminsOf(chat(chatID))
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	out := make([]domain.Identity, 0, len(members))
	for _, member := range members {
		if member.User != nil {
			out = append(out, identity(member.User))
		}
	}
	return out, nil
}

// Member looks up one chat member.
func (b *Bot) Member(_ context.Context, chatID, userID int64) (domain.Identity, error) {
	member, err := b.bot.ChatMemberOf(chat(chatID), &tele.User{ID: userID})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("get member %d: %w", userID, err)
	}
	if member == nil || member.User == nil {
		return domain.Identity{}, fmt.Errorf("get member %d: empty response", userID)
	}
	return identity(member.User), nil
}

func chat(id int64) *tele.Chat {
	return &tele.Chat{ID: id}
}

func stored(ref domain.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
}

func sendOptions(msg app.Outgoing) *tele.SendOptions {
	opts := &tele.SendOptions{ThreadID: msg.Target.ThreadID}
	if msg.Markdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	if len(msg.Buttons) > 0 {
		keyboard := make([][]tele.InlineButton, 0, len(msg.Buttons))
		for _, row := range msg.Buttons {
			buttons := make([]tele.InlineButton, 0, len(row))
			for _, button := range row {
				buttons = append(buttons, tele.InlineButton{Text: button.Text, URL: button.URL, Data: button.Data})
			}
			keyboard = append(keyboard, buttons)
		}
		opts.ReplyMarkup = &tele.ReplyMarkup{InlineKeyboard: keyboard}
	}
	return opts
}

func identity(user *tele.User) domain.Identity {
	if user == nil {
		return domain.Identity{}
	}
	return domain.Identity{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}
