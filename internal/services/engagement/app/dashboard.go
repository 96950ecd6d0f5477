package app

import (
	"context"
	"strings"

	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"github.com/raidroom/engagebot/internal/services/engagement/i18n"
)

// Dashboard button data.
const (
	callbackViewTimes  = "view_times"
	callbackToggleAuto = "toggle_auto"
	callbackStats      = "stats"
	callbackStreaks    = "streaks"
)

func (e *Engine) cmdDashboard(ctx context.Context, cmd Command) error {
	ref, ok := e.send(ctx, "dashboard", Outgoing{
		Target: Target{ChatID: cmd.ChatID, ThreadID: cmd.ThreadID},
		Text:   e.text(i18n.Dashboard),
		Buttons: [][]Button{
			{{Text: e.text(i18n.DashboardTimes), Data: callbackViewTimes}},
			{{Text: e.text(i18n.DashboardToggle), Data: callbackToggleAuto}},
			{{Text: e.text(i18n.DashboardStats), Data: callbackStats}},
			{{Text: e.text(i18n.DashboardStreaks), Data: callbackStreaks}},
		},
	})
	if ok {
		e.track(cmd.ThreadID, ref)
	}
	return nil
}

// HandleCallback routes an inline button press.
func (e *Engine) HandleCallback(ctx context.Context, cb Callback) {
	if cb.ChatID != e.cfg.ChatID {
		return
	}
	e.remember(cb.Sender)

	switch {
	case strings.HasPrefix(cb.Data, callbackDeletePrefix):
		e.confirmDelete(ctx, cb)
	case cb.Data == callbackCancel:
		e.cancelDelete(ctx, cb)
	case cb.Data == callbackViewTimes, cb.Data == callbackToggleAuto,
		cb.Data == callbackStats, cb.Data == callbackStreaks:
		if !e.isAdmin(ctx, cb.Sender.ID) {
			return
		}
		e.dashboardAction(ctx, cb)
	}
}

func (e *Engine) dashboardAction(ctx context.Context, cb Callback) {
	var text string
	switch cb.Data {
	case callbackViewTimes:
		text = e.text(i18n.ScheduleTimes, e.cfg.Schedule.Zone, e.timings())
	case callbackToggleAuto:
		e.mu.Lock()
		e.auto = !e.auto
		enabled := e.auto
		e.mu.Unlock()
		text = e.text(i18n.AutoSessionsOff)
		if enabled {
			text = e.text(i18n.AutoSessionsOn)
		}
		e.logger.InfoContext(ctx, "automated sessions toggled", "enabled", enabled)
	case callbackStats:
		e.mu.Lock()
		number, posts := e.session.Number, e.store.PostCount()
		e.mu.Unlock()
		text = e.text(i18n.Stats, number, posts, e.cfg.Threshold)
	case callbackStreaks:
		e.mu.Lock()
		text = domain.RenderTopStreaks(e.printer, e.store.Streaks.Leaderboard(domain.LeaderboardSize), e.labelLocked)
		e.mu.Unlock()
	}

	ref, ok := e.send(ctx, "dashboard_"+cb.Data, Outgoing{
		Target: Target{ChatID: cb.ChatID, ThreadID: cb.ThreadID},
		Text:   text,
	})
	if ok {
		e.deleteLater(ref, e.cfg.NoticeTTL)
	}
}
