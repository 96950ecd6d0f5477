package app

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"github.com/raidroom/engagebot/internal/services/engagement/i18n"
)

const (
	callbackDeletePrefix = "delete_"
	callbackCancel       = "cancel"
)

// HandleMessage routes a plain group message. Only the posting sub-channel
// is policed; elsewhere the sender is just cached.
func (e *Engine) HandleMessage(ctx context.Context, msg Incoming) {
	if msg.ChatID != e.cfg.ChatID || msg.ThreadID != e.cfg.PostThread {
		e.remember(msg.Sender)
		return
	}
	if _, err := e.Submit(ctx, msg); err != nil {
		e.logger.DebugContext(ctx, "submission not accepted",
			slog.Int64("user_id", msg.Sender.ID),
			slog.Any("error", err),
		)
	}
}

// HandleJoin caches new members.
func (e *Engine) HandleJoin(_ context.Context, chatID int64, members []domain.Identity) {
	if chatID != e.cfg.ChatID {
		return
	}
	e.remember(members...)
}

// Submit processes a message in the posting sub-channel. Outside the open
// phase every message is deleted. While open, chatter without a link is
// left alone, rejected links are deleted, and an accepted link is replaced
// by the bot's rendered post.
func (e *Engine) Submit(ctx context.Context, msg Incoming) (domain.Post, error) {
	ctx, span := e.startSpan(ctx, "submit")
	defer span.End()

	e.mu.Lock()
	e.store.Remember(msg.Sender)
	if !e.session.AcceptsPosts() {
		e.mu.Unlock()
		e.deleteNow(ctx, "delete_closed", msg.Ref())
		return domain.Post{}, domain.ErrSessionClosed
	}
	e.tracked[msg.ThreadID] = append(e.tracked[msg.ThreadID], msg.MessageID)
	number := e.session.Number
	post, streak, err := e.store.Accept(domain.Submission{
		PosterID: msg.Sender.ID,
		Text:     msg.Text,
		Session:  number,
		Total:    e.total(),
	})
	generation := e.store.Generation()
	e.mu.Unlock()

	switch {
	case errors.Is(err, domain.ErrNotALink):
		return domain.Post{}, err
	case errors.Is(err, domain.ErrPlaceholderHandle):
		e.deleteNow(ctx, "delete_rejected", msg.Ref())
		notice, ok := e.send(ctx, "placeholder_notice", Outgoing{
			Target: e.postTarget(),
			Text:   e.text(i18n.PlaceholderLink, displayName(msg.Sender)),
		})
		if ok {
			e.deleteLater(notice, e.cfg.NoticeTTL)
		}
		return domain.Post{}, err
	case err != nil:
		e.deleteNow(ctx, "delete_rejected", msg.Ref())
		return domain.Post{}, err
	}

	e.deleteNow(ctx, "delete_original", msg.Ref())
	rendered, ok := e.send(ctx, "render_post", Outgoing{
		Target: e.postTarget(),
		Text:   domain.RenderPost(e.printer, post, displayName(msg.Sender), streak.Count),
		Buttons: [][]Button{{
			{Text: e.text(i18n.PostVisitButton), URL: e.feed.TrackURL(post, number)},
		}},
	})
	if ok {
		e.mu.Lock()
		if e.store.Generation() == generation && e.store.SetRendered(post.PosterID, post.Sequence, rendered) {
			post.Rendered = rendered
			e.tracked[e.cfg.PostThread] = append(e.tracked[e.cfg.PostThread], rendered.MessageID)
		}
		e.mu.Unlock()
	}
	e.logger.InfoContext(ctx, "post accepted",
		slog.Int("session", number),
		slog.Int("sequence", post.Sequence),
		slog.Int64("user_id", post.PosterID),
		slog.Int("streak", streak.Count),
	)
	return post, nil
}

// requestDelete asks a member to confirm deleting their own post.
func (e *Engine) requestDelete(ctx context.Context, cmd Command) {
	e.mu.Lock()
	_, ok := e.store.PostBy(cmd.Sender.ID)
	e.mu.Unlock()
	if !ok {
		return
	}
	e.send(ctx, "delete_prompt", Outgoing{
		Target: Target{ChatID: cmd.ChatID, ThreadID: cmd.ThreadID},
		Text:   e.text(i18n.PostDeleteAsk),
		Buttons: [][]Button{{
			{Text: e.text(i18n.ButtonYes), Data: callbackDeletePrefix + strconv.FormatInt(cmd.Sender.ID, 10)},
			{Text: e.text(i18n.ButtonNo), Data: callbackCancel},
		}},
	})
}

// confirmDelete removes a post once its owner or an administrator confirms.
func (e *Engine) confirmDelete(ctx context.Context, cb Callback) {
	ownerID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, callbackDeletePrefix), 10, 64)
	if err != nil {
		return
	}
	if cb.Sender.ID != ownerID && !e.isAdmin(ctx, cb.Sender.ID) {
		return
	}

	e.mu.Lock()
	removed, ok := e.store.RemovePost(ownerID)
	e.mu.Unlock()
	if !ok {
		return
	}

	e.deleteNow(ctx, "delete_post", removed.Rendered)
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, "edit_prompt", cb.Sender.ID, e.messenger.Edit(callCtx, cb.Ref(), e.text(i18n.PostDeleted)))
	e.logger.InfoContext(ctx, "post deleted",
		slog.Int("sequence", removed.Sequence),
		slog.Int64("user_id", ownerID),
	)
}

func (e *Engine) cancelDelete(ctx context.Context, cb Callback) {
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, "edit_prompt", cb.Sender.ID, e.messenger.Edit(callCtx, cb.Ref(), e.text(i18n.PostDeleteNo)))
}

// displayName is the name shown on rendered posts.
func displayName(identity domain.Identity) string {
	if name := identity.FullName(); name != "" {
		return name
	}
	return identity.Mention()
}
