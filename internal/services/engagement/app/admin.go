package app

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	platformerrors "github.com/raidroom/engagebot/internal/platform/errors"
	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"github.com/raidroom/engagebot/internal/services/engagement/i18n"
)

// Command names.
const (
	cmdStartSession = "startsession"
	cmdEndSession   = "endsession"
	cmdReport       = "report"
	cmdCoolMe       = "coolme"
	cmdPin          = "pin"
	cmdUnpin        = "unpin"
	cmdDel          = "del"
	cmdMute         = "mute"
	cmdUnmute       = "unmute"
	cmdWarn         = "warn"
	cmdRemoveWarn   = "removewarn"
	cmdRemove       = "remove"
	cmdBan          = "ban"
	cmdUnban        = "unban"
	cmdOpenTopic    = "opentopic"
	cmdCloseTopic   = "closetopic"
	cmdClear        = "clear"
	cmdTopicID      = "topicid"
	cmdSetSession   = "setsession"
)

// Commands lists every command the engine understands.
var Commands = []string{
	cmdStartSession, cmdEndSession, cmdReport, cmdCoolMe, cmdPin, cmdUnpin,
	cmdDel, cmdMute, cmdUnmute, cmdWarn, cmdRemoveWarn, cmdRemove, cmdBan,
	cmdUnban, cmdOpenTopic, cmdCloseTopic, cmdClear, cmdTopicID, cmdSetSession,
}

type commandFunc func(ctx context.Context, cmd Command) error

func (e *Engine) commandTable() map[string]commandFunc {
	return map[string]commandFunc{
		cmdStartSession: func(ctx context.Context, cmd Command) error {
			if err := e.requirePostThread(cmd); err != nil {
				return err
			}
			e.ForceOpen(ctx)
			return nil
		},
		cmdEndSession: func(ctx context.Context, cmd Command) error {
			if err := e.requirePostThread(cmd); err != nil {
				return err
			}
			e.ForceClose(ctx)
			return nil
		},
		cmdReport:     e.cmdReport,
		cmdPin:        e.cmdPin,
		cmdUnpin:      e.cmdUnpin,
		cmdDel:        e.cmdDel,
		cmdMute:       e.cmdMute,
		cmdUnmute:     e.cmdUnmute,
		cmdWarn:       e.cmdWarn,
		cmdRemoveWarn: e.cmdRemoveWarn,
		cmdRemove:     e.cmdRemove,
		cmdBan:        e.cmdBan,
		cmdUnban:      e.cmdUnban,
		cmdOpenTopic: func(ctx context.Context, cmd Command) error {
			return e.topic(ctx, cmd, true)
		},
		cmdCloseTopic: func(ctx context.Context, cmd Command) error {
			return e.topic(ctx, cmd, false)
		},
		cmdClear:      e.cmdClear,
		cmdTopicID:    e.cmdTopicID,
		cmdSetSession: e.cmdDashboard,
	}
}

// HandleCommand runs a slash command. Everything except /coolme is
// reserved for administrators; other senders are ignored silently.
func (e *Engine) HandleCommand(ctx context.Context, cmd Command) {
	if cmd.ChatID != e.cfg.ChatID {
		return
	}
	e.remember(cmd.Sender)
	if cmd.ReplyTo != nil {
		e.remember(cmd.ReplyTo.Sender)
	}

	if cmd.Name == cmdCoolMe {
		if cmd.ThreadID == e.cfg.PostThread {
			e.deleteLater(cmd.Ref(), e.cfg.CommandTTL)
			e.requestDelete(ctx, cmd)
		}
		return
	}

	run, ok := e.commandTable()[cmd.Name]
	if !ok {
		return
	}
	if !e.isAdmin(ctx, cmd.Sender.ID) {
		e.logger.InfoContext(ctx, "command ignored",
			slog.String("command", cmd.Name),
			slog.Int64("user_id", cmd.Sender.ID),
			slog.String("code", string(platformerrors.CodeNotAdmin)),
		)
		return
	}

	ttl := e.cfg.CommandTTL
	if cmd.Name == cmdTopicID {
		ttl = e.cfg.NoticeTTL
	}
	if cmd.Name != cmdClear {
		e.deleteLater(cmd.Ref(), ttl)
	}

	if err := run(ctx, cmd); err != nil {
		code := platformerrors.CodeOf(err)
		e.logger.InfoContext(ctx, "command failed",
			slog.String("command", cmd.Name),
			slog.Int64("user_id", cmd.Sender.ID),
			slog.String("code", string(code)),
			slog.Any("error", err),
		)
		if code.UserVisible() {
			e.reply(ctx, cmd, e.text(i18n.UserNotFound), e.cfg.CommandTTL)
		}
	}
}

// reply answers in the command's sub-channel and removes the answer after ttl.
func (e *Engine) reply(ctx context.Context, cmd Command, text string, ttl time.Duration) {
	ref, ok := e.send(ctx, "reply", Outgoing{
		Target: Target{ChatID: cmd.ChatID, ThreadID: cmd.ThreadID},
		Text:   text,
	})
	if ok {
		e.deleteLater(ref, ttl)
	}
}

// requirePostThread rejects session commands sent outside the posting
// sub-channel.
func (e *Engine) requirePostThread(cmd Command) error {
	if cmd.ThreadID != e.cfg.PostThread {
		return platformerrors.WithMetadata(platformerrors.CodeWrongThread, cmd.Name+" is only available in the posting sub-channel",
			map[string]string{"thread": strconv.Itoa(cmd.ThreadID)})
	}
	return nil
}

func (e *Engine) cmdReport(ctx context.Context, cmd Command) error {
	if err := e.requirePostThread(cmd); err != nil {
		return err
	}
	n := e.Session().Number
	if len(cmd.Args) > 0 {
		parsed, err := strconv.Atoi(cmd.Args[0])
		if err != nil || !domain.ValidNumber(parsed, e.total()) {
			return platformerrors.WithMetadata(platformerrors.CodeInvalidSession, "invalid session number",
				map[string]string{"arg": cmd.Args[0]})
		}
		n = parsed
	}
	e.AdHocReport(ctx, n)
	return nil
}

func (e *Engine) replyTarget(cmd Command) (domain.MessageRef, error) {
	if cmd.ReplyTo == nil || cmd.ReplyTo.MessageID == 0 {
		return domain.MessageRef{}, platformerrors.New(platformerrors.CodeNoReplyTarget, cmd.Name+" needs a reply")
	}
	return cmd.ReplyTo.Ref(), nil
}

func (e *Engine) cmdPin(ctx context.Context, cmd Command) error {
	ref, err := e.replyTarget(cmd)
	if err != nil {
		return err
	}
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, "pin", 0, e.messenger.Pin(callCtx, ref))
	return nil
}

func (e *Engine) cmdUnpin(ctx context.Context, cmd Command) error {
	ref, err := e.replyTarget(cmd)
	if err != nil {
		return err
	}
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, "unpin", 0, e.messenger.Unpin(callCtx, ref))
	return nil
}

func (e *Engine) cmdDel(ctx context.Context, cmd Command) error {
	ref, err := e.replyTarget(cmd)
	if err != nil {
		return err
	}
	e.deleteNow(ctx, "delete_message", ref)
	return nil
}

func (e *Engine) cmdMute(ctx context.Context, cmd Command) error {
	target, rest, err := e.resolveTarget(ctx, cmd)
	if err != nil {
		return err
	}
	days := 1
	if len(rest) > 0 {
		if parsed, err := strconv.Atoi(rest[0]); err == nil && parsed > 0 {
			days = parsed
		}
	}
	e.mute(ctx, target.ID, e.now().Add(time.Duration(days)*24*time.Hour))
	e.warn(ctx, "mute_notice", e.text(i18n.Muted, target.Mention(), days))
	return nil
}

func (e *Engine) cmdUnmute(ctx context.Context, cmd Command) error {
	target, _, err := e.resolveTarget(ctx, cmd)
	if err != nil {
		return err
	}
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, "unrestrict", target.ID, e.messenger.Unrestrict(callCtx, e.cfg.ChatID, target.ID))
	e.warn(ctx, "unmute_notice", e.text(i18n.Unmuted, target.Mention()))
	return nil
}

// cmdWarn is a manual warning. It shares the counter and action table with
// report-driven warnings.
func (e *Engine) cmdWarn(ctx context.Context, cmd Command) error {
	target, _, err := e.resolveTarget(ctx, cmd)
	if err != nil {
		return err
	}
	e.mu.Lock()
	esc := e.store.Warnings.Escalate(target.ID)
	e.mu.Unlock()

	key := i18n.ManualWarn
	switch esc.Action {
	case domain.ActionMute:
		e.mute(ctx, target.ID, e.now().Add(domain.MuteDuration))
		key = i18n.ManualWarnMuted
	case domain.ActionRemove:
		e.eject(ctx, target.ID)
		key = i18n.ManualWarnRemoved
	}
	e.logger.InfoContext(ctx, "member warned manually",
		slog.Int64("user_id", target.ID),
		slog.Int("warnings", esc.Count),
		slog.String("action", esc.Action.String()),
	)
	e.warn(ctx, "warn_notice", e.text(key, target.Mention(), esc.Count, domain.WarningLimit))
	return nil
}

func (e *Engine) cmdRemoveWarn(ctx context.Context, cmd Command) error {
	target, _, err := e.resolveTarget(ctx, cmd)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.store.Warnings.Clear(target.ID)
	e.mu.Unlock()
	e.warn(ctx, "reset_notice", e.text(i18n.WarningsReset, target.Mention()))
	return nil
}

func (e *Engine) cmdRemove(ctx context.Context, cmd Command) error {
	target, _, err := e.resolveTarget(ctx, cmd)
	if err != nil {
		return err
	}
	e.eject(ctx, target.ID)
	e.warn(ctx, "remove_notice", e.text(i18n.Removed, target.Mention()))
	return nil
}

func (e *Engine) cmdBan(ctx context.Context, cmd Command) error {
	target, _, err := e.resolveTarget(ctx, cmd)
	if err != nil {
		return err
	}
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, "ban", target.ID, e.messenger.Ban(callCtx, e.cfg.ChatID, target.ID))
	e.warn(ctx, "ban_notice", e.text(i18n.Banned, target.Mention()))
	return nil
}

func (e *Engine) cmdUnban(ctx context.Context, cmd Command) error {
	target, _, err := e.resolveTarget(ctx, cmd)
	if err != nil {
		return err
	}
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, "unban", target.ID, e.messenger.Unban(callCtx, e.cfg.ChatID, target.ID))
	e.warn(ctx, "unban_notice", e.text(i18n.Unbanned, target.Mention()))
	return nil
}

func (e *Engine) topic(ctx context.Context, cmd Command, open bool) error {
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	target := Target{ChatID: cmd.ChatID, ThreadID: cmd.ThreadID}
	if open {
		e.effect(ctx, "open_thread", 0, e.messenger.OpenThread(callCtx, target))
	} else {
		e.effect(ctx, "close_thread", 0, e.messenger.CloseThread(callCtx, target))
	}
	return nil
}

// cmdClear deletes every remembered message of the command's sub-channel,
// then the command itself. Deletions are paced and stop when ctx ends.
func (e *Engine) cmdClear(ctx context.Context, cmd Command) error {
	e.mu.Lock()
	ids := e.tracked[cmd.ThreadID]
	delete(e.tracked, cmd.ThreadID)
	e.mu.Unlock()
	ids = append(ids, cmd.MessageID)

	deleted := 0
	for i, id := range ids {
		if i > 0 && e.cfg.ClearInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.cfg.ClearInterval):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		callCtx, cancel := e.callCtx(ctx)
		err := e.messenger.Delete(callCtx, domain.MessageRef{ChatID: cmd.ChatID, MessageID: id})
		cancel()
		if err != nil {
			e.logger.DebugContext(ctx, "clear delete failed", slog.Int("message_id", id), slog.Any("error", err))
			continue
		}
		deleted++
	}
	e.logger.InfoContext(ctx, "sub-channel cleared",
		slog.Int("thread_id", cmd.ThreadID),
		slog.Int("deleted", deleted),
		slog.Int("tracked", len(ids)),
	)
	return nil
}

func (e *Engine) cmdTopicID(ctx context.Context, cmd Command) error {
	e.reply(ctx, cmd, e.text(i18n.TopicID, strconv.Itoa(cmd.ThreadID)), e.cfg.NoticeTTL)
	return nil
}

// resolveTarget finds the member a moderation command acts on and returns
// the arguments that follow the target. A reply wins over arguments; a
// numeric argument is looked up in the cache and then on the platform; a
// handle is looked up in the cache and then among the administrators.
func (e *Engine) resolveTarget(ctx context.Context, cmd Command) (domain.Identity, []string, error) {
	if cmd.ReplyTo != nil && cmd.ReplyTo.Sender.ID != 0 {
		return cmd.ReplyTo.Sender, cmd.Args, nil
	}
	if len(cmd.Args) == 0 {
		return domain.Identity{}, nil, platformerrors.New(platformerrors.CodeNoReplyTarget, cmd.Name+" needs a reply or a user")
	}
	arg, rest := cmd.Args[0], cmd.Args[1:]

	if userID, err := strconv.ParseInt(arg, 10, 64); err == nil {
		e.mu.Lock()
		identity, ok := e.store.IdentityByID(userID)
		e.mu.Unlock()
		if ok {
			return identity, rest, nil
		}
		callCtx, cancel := e.callCtx(ctx)
		identity, err = e.messenger.Member(callCtx, e.cfg.ChatID, userID)
		cancel()
		if err == nil && identity.ID != 0 {
			e.remember(identity)
			return identity, rest, nil
		}
	}

	e.mu.Lock()
	identity, ok := e.store.IdentityByHandle(arg)
	e.mu.Unlock()
	if ok {
		return identity, rest, nil
	}

	handle := strings.ToLower(strings.TrimPrefix(arg, "@"))
	if admins, err := e.admins(ctx); err == nil {
		for _, admin := range admins {
			if admin.Username != "" && strings.ToLower(admin.Username) == handle {
				return admin, rest, nil
			}
		}
	}
	return domain.Identity{}, nil, platformerrors.WithMetadata(platformerrors.CodeUserNotFound, "user not found",
		map[string]string{"arg": arg})
}
