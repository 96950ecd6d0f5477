package telegram

import (
	"context"

	"github.com/raidroom/engagebot/internal/services/engagement/app"
	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	tele "gopkg.in/telebot.v3"
)

// Serve routes updates to handler until ctx ends.
func (b *Bot) Serve(ctx context.Context, handler app.Handler) error {
	b.route(ctx, handler)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		b.bot.Start()
	}()
	b.logger.InfoContext(ctx, "telegram polling started", "bot", b.bot.Me.Username)

	<-ctx.Done()
	b.bot.Stop()
	<-stopped
	b.logger.InfoContext(context.WithoutCancel(ctx), "telegram polling stopped")
	return nil
}

func (b *Bot) route(ctx context.Context, handler app.Handler) {
	for _, name := range app.Commands {
		b.bot.Handle("/"+name, func(c tele.Context) error {
			if cmd, ok := toCommand(c.Message(), name, c.Args()); ok {
				handler.HandleCommand(ctx, cmd)
			}
			return nil
		})
	}
	onMessage := func(c tele.Context) error {
		if msg, ok := toIncoming(c.Message()); ok {
			handler.HandleMessage(ctx, msg)
		}
		return nil
	}
	b.bot.Handle(tele.OnText, onMessage)
	b.bot.Handle(tele.OnMedia, onMessage)
	b.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		if cb, ok := toCallback(c.Callback()); ok {
			handler.HandleCallback(ctx, cb)
		}
		return c.Respond()
	})
	b.bot.Handle(tele.OnUserJoined, func(c tele.Context) error {
		msg := c.Message()
		if msg == nil || msg.Chat == nil || msg.UserJoined == nil {
			return nil
		}
		handler.HandleJoin(ctx, msg.Chat.ID, []domain.Identity{identity(msg.UserJoined)})
		return nil
	})
}

func toIncoming(msg *tele.Message) (app.Incoming, bool) {
	if msg == nil || msg.Chat == nil || msg.Sender == nil {
		return app.Incoming{}, false
	}
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	return app.Incoming{
		ChatID:    msg.Chat.ID,
		ThreadID:  msg.ThreadID,
		MessageID: msg.ID,
		Sender:    identity(msg.Sender),
		Text:      text,
	}, true
}

func toCommand(msg *tele.Message, name string, args []string) (app.Command, bool) {
	incoming, ok := toIncoming(msg)
	if !ok {
		return app.Command{}, false
	}
	cmd := app.Command{Incoming: incoming, Name: name, Args: args}
	if reply, ok := toIncoming(msg.ReplyTo); ok && !isThreadRoot(msg, msg.ReplyTo) {
		cmd.ReplyTo = &reply
	}
	return cmd, true
}

// isThreadRoot reports whether reply is only the topic's opening message,
// which every message in a forum topic implicitly replies to.
func isThreadRoot(msg, reply *tele.Message) bool {
	return msg.ThreadID != 0 && reply.ID == msg.ThreadID
}

func toCallback(cb *tele.Callback) (app.Callback, bool) {
	if cb == nil || cb.Sender == nil || cb.Message == nil || cb.Message.Chat == nil {
		return app.Callback{}, false
	}
	return app.Callback{
		ChatID:    cb.Message.Chat.ID,
		ThreadID:  cb.Message.ThreadID,
		MessageID: cb.Message.ID,
		Sender:    identity(cb.Sender),
		Data:      cb.Data,
	}, true
}
