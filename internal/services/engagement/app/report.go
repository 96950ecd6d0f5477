package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"github.com/raidroom/engagebot/internal/services/engagement/i18n"
)

// Report is the scheduled report: streak leaderboard, engagement report,
// then warnings for every non-engaged member. A repeated firing for the same
// session re-sends the report without warning anyone again. Only a closed
// session moves to Reported; a report that fires while posting is still open
// leaves the phase alone.
func (e *Engine) Report(ctx context.Context) {
	ctx, span := e.startSpan(ctx, "report")
	defer span.End()

	e.mu.Lock()
	number := e.session.Number
	phase := e.session.Phase
	escalate := !e.session.Warned
	e.session.Warned = true
	if phase == domain.PhaseAwaitingCheck {
		e.session.Phase = domain.PhaseReported
	}
	e.mu.Unlock()

	if phase == domain.PhaseOpen {
		e.logger.WarnContext(ctx, "report fired while session is open", slog.Int("session", number))
	}

	e.runReport(ctx, number, escalate, true)
}

// AdHocReport scores the current posts against session n's clicks. It
// neither changes the phase nor warns anyone.
func (e *Engine) AdHocReport(ctx context.Context, n int) {
	ctx, span := e.startSpan(ctx, "adhoc_report")
	defer span.End()

	e.runReport(ctx, n, false, false)
}

func (e *Engine) runReport(ctx context.Context, number int, escalate, leaderboard bool) {
	e.mu.Lock()
	posts := e.store.ScoredPosts()
	members := e.store.Members()
	var board []domain.StreakEntry
	if leaderboard && len(members) > 0 {
		board = e.store.Streaks.Leaderboard(domain.LeaderboardSize)
	}
	e.mu.Unlock()

	if len(members) == 0 {
		e.announce(ctx, "announce_no_posts", e.text(i18n.SessionNoPosts, number), false)
		return
	}

	admins, err := e.admins(ctx)
	if err != nil {
		e.effect(ctx, "admins", 0, err)
	}
	exempt := make(map[int64]bool, len(admins))
	for id := range admins {
		exempt[id] = true
	}

	clicks, err := e.feed.Fetch(ctx, number)
	if err != nil {
		e.logger.WarnContext(ctx, "click feed unavailable, scoring without clicks",
			slog.Int("session", number),
			slog.Any("error", err),
		)
		clicks = nil
	}

	e.mu.Lock()
	result := domain.ScoreSession(domain.ScoreInput{
		Session:   number,
		Posts:     posts,
		Members:   members,
		Clicks:    clicks,
		Threshold: e.cfg.Threshold,
		Exempt:    exempt,
		Label:     e.labelLocked,
	})
	var escalations []escalation
	if escalate {
		for _, score := range result.NonEngaged {
			escalations = append(escalations, escalation{
				Escalation: e.store.Warnings.Escalate(score.UserID),
				label:      score.Label,
			})
		}
	}
	boardText := domain.RenderLeaderboard(e.printer, number, board, e.labelLocked)
	e.mu.Unlock()

	if boardText != "" {
		e.announce(ctx, "announce_leaderboard", boardText, false)
	}
	for _, chunk := range domain.Chunk(domain.RenderReport(e.printer, result, e.cfg.Threshold), domain.MessageLimit) {
		e.announce(ctx, "announce_report", chunk, false)
	}

	e.logger.InfoContext(ctx, "report sent",
		slog.Int("session", number),
		slog.Int("engaged", len(result.Engaged)),
		slog.Int("non_engaged", len(result.NonEngaged)),
		slog.Int("clicks", len(clicks)),
	)

	for _, esc := range escalations {
		e.applyAutoWarning(ctx, number, esc)
	}
}

type escalation struct {
	domain.Escalation
	label string
}

// applyAutoWarning carries out a report-driven warning. Platform failures
// never stop the notice.
func (e *Engine) applyAutoWarning(ctx context.Context, session int, esc escalation) {
	key := i18n.AutoWarn
	switch esc.Action {
	case domain.ActionMute:
		e.mute(ctx, esc.UserID, e.now().Add(domain.MuteDuration))
		key = i18n.AutoWarnMuted
	case domain.ActionRemove:
		e.eject(ctx, esc.UserID)
		key = i18n.AutoWarnRemoved
	}
	e.logger.InfoContext(ctx, "member warned",
		slog.Int64("user_id", esc.UserID),
		slog.Int("warnings", esc.Count),
		slog.String("action", esc.Action.String()),
	)
	e.warn(ctx, "warn_notice", e.text(key, esc.label, session, esc.Count, domain.WarningLimit))
}

func (e *Engine) mute(ctx context.Context, userID int64, until time.Time) {
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, "restrict", userID, e.messenger.Restrict(callCtx, e.cfg.ChatID, userID, until))
}

// eject removes a member without leaving a lasting ban.
func (e *Engine) eject(ctx context.Context, userID int64) {
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, "ban", userID, e.messenger.Ban(callCtx, e.cfg.ChatID, userID))
	e.effect(ctx, "unban", userID, e.messenger.Unban(callCtx, e.cfg.ChatID, userID))
}
