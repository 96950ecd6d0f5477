package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"github.com/raidroom/engagebot/internal/services/engagement/i18n"
)

// AutoOpen is the scheduled open of session n. It is skipped while
// automated sessions are disabled; the other scheduled transitions are not
// gated, so an in-flight session still winds down.
func (e *Engine) AutoOpen(ctx context.Context, n int) {
	ctx, span := e.startSpan(ctx, "open")
	defer span.End()

	if !e.AutoSessions() {
		e.logger.InfoContext(ctx, "automated open skipped", slog.Int("session", n))
		return
	}
	e.open(ctx, n, false)
}

// ForceOpen opens the current session number regardless of the automated
// flag or phase.
func (e *Engine) ForceOpen(ctx context.Context) domain.MessageRef {
	ctx, span := e.startSpan(ctx, "force_open")
	defer span.End()

	return e.open(ctx, e.Session().Number, true)
}

// open clears session data and starts accepting posts for session n.
// Re-opening the session that is already open keeps its posts.
func (e *Engine) open(ctx context.Context, n int, manual bool) domain.MessageRef {
	if !domain.ValidNumber(n, e.total()) {
		e.logger.WarnContext(ctx, "open ignored for invalid session", slog.Int("session", n))
		return domain.MessageRef{}
	}

	e.mu.Lock()
	if e.session.Phase != domain.PhaseOpen || e.session.Number != n {
		e.store.Reset()
		e.session = domain.Session{Number: n, Phase: domain.PhaseOpen, OpenedAt: e.now()}
	}
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "session opened", slog.Int("session", n), slog.Bool("manual", manual))

	callCtx, cancel := e.callCtx(ctx)
	e.effect(ctx, "open_thread", 0, e.messenger.OpenThread(callCtx, e.postTarget()))
	cancel()

	if manual {
		ref, _ := e.send(ctx, "announce_open", Outgoing{Target: e.postTarget(), Text: e.text(i18n.SessionOpened, n)})
		e.deleteLater(ref, e.cfg.CommandTTL)
		return ref
	}
	ref, _ := e.announce(ctx, "announce_open", e.text(i18n.SessionOpened, n), false)
	return ref
}

// Close stops accepting posts and announces the post count. Closing a
// session that is not open changes nothing but repeats the announcement.
func (e *Engine) Close(ctx context.Context) {
	ctx, span := e.startSpan(ctx, "close")
	defer span.End()

	e.close(ctx, false)
}

// ForceClose is the administrator close.
func (e *Engine) ForceClose(ctx context.Context) domain.MessageRef {
	ctx, span := e.startSpan(ctx, "force_close")
	defer span.End()

	return e.close(ctx, true)
}

func (e *Engine) close(ctx context.Context, manual bool) domain.MessageRef {
	e.mu.Lock()
	if e.session.Phase == domain.PhaseOpen {
		e.session.Phase = domain.PhaseAwaitingCheck
		e.session.ClosedAt = e.now()
	}
	number := e.session.Number
	total := e.store.PostCount()
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "session closed",
		slog.Int("session", number),
		slog.Int("posts", total),
		slog.Bool("manual", manual),
	)

	body := e.text(i18n.SessionClosed, number, total, e.timings())
	var ref domain.MessageRef
	if manual {
		ref, _ = e.send(ctx, "announce_close", Outgoing{Target: e.postTarget(), Text: body})
		e.deleteLater(ref, e.cfg.CommandTTL)
	} else {
		ref, _ = e.announce(ctx, "announce_close", body, false)
	}

	callCtx, cancel := e.callCtx(ctx)
	e.effect(ctx, "close_thread", 0, e.messenger.CloseThread(callCtx, e.postTarget()))
	cancel()
	return ref
}

// PreCheck reminds members to finish engaging. It has no state change.
func (e *Engine) PreCheck(ctx context.Context) {
	ctx, span := e.startSpan(ctx, "pre_check")
	defer span.End()

	e.announce(ctx, "announce_check", e.text(i18n.SessionCheck, e.Session().Number), false)
}

// Notify announces the upcoming session lead ahead of its opening. With
// commit set, the session number rolls over to the upcoming one and the
// phase returns to Closed; earlier notices leave state untouched so that
// ad-hoc reports still see the finished session.
func (e *Engine) Notify(ctx context.Context, lead time.Duration, commit bool) {
	ctx, span := e.startSpan(ctx, "notify")
	defer span.End()

	e.mu.Lock()
	upcoming := e.session.Number
	if e.session.Phase != domain.PhaseClosed {
		upcoming = domain.NextNumber(e.session.Number, e.total())
	}
	if commit && e.session.Phase != domain.PhaseClosed {
		e.session = domain.Session{Number: upcoming, Phase: domain.PhaseClosed}
	}
	e.mu.Unlock()

	e.announce(ctx, "announce_notice", e.text(i18n.SessionNotice, upcoming, int(lead/time.Minute)), true)
}

// timings lists the opening times in the schedule's reference zone.
func (e *Engine) timings() string {
	return strings.Join(e.cfg.Schedule.OpenTimes(), "\n• ")
}
