package i18n

// Session lifecycle announcements.
const (
	SessionOpened   = "session.opened"
	SessionClosed   = "session.closed"
	SessionCheck    = "session.check"
	SessionNotice   = "session.notice"
	SessionNoPosts  = "session.no_posts"
	PlaceholderLink = "post.placeholder_handle"
)

// Posts.
const (
	PostBody        = "post.body"
	PostVisitButton = "post.visit_button"
	PostDeleteAsk   = "post.delete.ask"
	PostDeleted     = "post.delete.done"
	PostDeleteNo    = "post.delete.cancelled"
	ButtonYes       = "button.yes"
	ButtonNo        = "button.no"
)

// Engagement report.
const (
	ReportHeader         = "report.header"
	ReportTotal          = "report.total"
	ReportEngagedHeader  = "report.engaged.header"
	ReportEngagedNone    = "report.engaged.none"
	ReportNonHeader      = "report.non_engaged.header"
	ReportNonNone        = "report.non_engaged.none"
	ReportEngagedLine    = "report.engaged.line"
	ReportNonEngagedLine = "report.non_engaged.line"
	ReportPerfectMarker  = "report.perfect"
)

// Streaks.
const (
	LeaderboardHeader = "streaks.leaderboard.header"
	LeaderboardLine   = "streaks.leaderboard.line"
	LeaderboardFooter = "streaks.leaderboard.footer"
	TopStreaksHeader  = "streaks.top.header"
	TopStreaksLine    = "streaks.top.line"
	StreaksEmpty      = "streaks.empty"
)

// Moderation notices.
const (
	AutoWarn          = "moderation.auto_warn"
	AutoWarnMuted     = "moderation.auto_warn.muted"
	AutoWarnRemoved   = "moderation.auto_warn.removed"
	ManualWarn        = "moderation.warn"
	ManualWarnMuted   = "moderation.warn.muted"
	ManualWarnRemoved = "moderation.warn.removed"
	WarningsReset     = "moderation.warnings_reset"
	Muted             = "moderation.muted"
	Unmuted           = "moderation.unmuted"
	Removed           = "moderation.removed"
	Banned            = "moderation.banned"
	Unbanned          = "moderation.unbanned"
	UserNotFound      = "moderation.user_not_found"
)

// Admin dashboard.
const (
	TopicID          = "admin.topic_id"
	Dashboard        = "admin.dashboard"
	DashboardTimes   = "admin.dashboard.view_times"
	DashboardToggle  = "admin.dashboard.toggle_auto"
	DashboardStats   = "admin.dashboard.stats"
	DashboardStreaks = "admin.dashboard.streaks"
	ScheduleTimes    = "admin.schedule"
	AutoSessionsOn   = "admin.auto.on"
	AutoSessionsOff  = "admin.auto.off"
	Stats            = "admin.stats"
)
