package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	// Session lifecycle
	message.SetString(lang, SessionOpened, "❑ Session %d Started Now ❑\n\n✅ Start Posting Your Links Now")
	message.SetString(lang, SessionClosed, "❑ Session %d Closed Now ❑\n\n"+
		"> Total Links - %d\n\n"+
		"✅ Make Sure Engage With All Links Do Like & Drop Meaningful Comments\n\n"+
		"✅ Follow Before Engaging\n\n"+
		"❌ Don't Delete The Links ( If You Caught = Permanent Ban )\n\n"+
		"> Session Timing :-\n• %s")
	message.SetString(lang, SessionCheck, "✅ It's Checking Time Now For Session %d ✅")
	message.SetString(lang, SessionNotice, "⚡️ **ATTENTION ALL MEMBERS** ⚡️\n\n❑ Session %d Starting In %d Minutes Be Ready With Your Links")
	message.SetString(lang, SessionNoPosts, "📊 Session %d — No posts")
	message.SetString(lang, PlaceholderLink, "⟡ Hey %s\n\nPlease Replace The @i With Your Real X Username\n\nThank You 😊")

	// Posts
	message.SetString(lang, PostBody, "Post - %d\n𖣯 Name - %s%s\n𖣯 X - @%s\n‣ %s")
	message.SetString(lang, PostVisitButton, "✅ Visit & Engage")
	message.SetString(lang, PostDeleteAsk, "Delete your post?")
	message.SetString(lang, PostDeleted, "✅ Post deleted")
	message.SetString(lang, PostDeleteNo, "❌ Cancelled")
	message.SetString(lang, ButtonYes, "Yes")
	message.SetString(lang, ButtonNo, "No")

	// Engagement report
	message.SetString(lang, ReportHeader, "📊 Session %d — Engagement Report")
	message.SetString(lang, ReportTotal, "Total Posts: %d")
	message.SetString(lang, ReportEngagedHeader, "✅ Engaged Members:")
	message.SetString(lang, ReportEngagedNone, "✅ Engaged: None")
	message.SetString(lang, ReportNonHeader, "❌ Non-Engagers (below %d%%):")
	message.SetString(lang, ReportNonNone, "❌ Non-Engagers: None 🎉")
	message.SetString(lang, ReportEngagedLine, "  • %s (%s) — %d/%d (%d%%)%s")
	message.SetString(lang, ReportNonEngagedLine, "  • %s (%s) — %d/%d (%d%%)")
	message.SetString(lang, ReportPerfectMarker, " ⭐")

	// Streaks
	message.SetString(lang, LeaderboardHeader, "🏆 Streak Leaderboard — Session %d")
	message.SetString(lang, LeaderboardLine, "%d. %s — %d sessions %s")
	message.SetString(lang, LeaderboardFooter, "🔥 Keep posting every session!")
	message.SetString(lang, TopStreaksHeader, "🔥 Top Streaks")
	message.SetString(lang, TopStreaksLine, "%d. %s — %d %s")
	message.SetString(lang, StreaksEmpty, "No streak data yet")

	// Moderation
	message.SetString(lang, AutoWarn, "🚨 User — %s\n\n❌ Warned For Not Engaging In Session %d\n\n>> Warning %d/%d")
	message.SetString(lang, AutoWarnMuted, "🚨 User — %s\n\n❌ Warned For Not Engaging In Session %d\n\n>> Warning %d/%d\n🔕 Muted For 1 Day")
	message.SetString(lang, AutoWarnRemoved, "🚨 User — %s\n\n❌ Warned For Not Engaging In Session %d\n\n>> Warning %d/%d\n🚫 Removed From Group")
	message.SetString(lang, ManualWarn, "⚠️ User — %s\n\n>> Warning %d/%d")
	message.SetString(lang, ManualWarnMuted, "⚠️ User — %s\n\n>> Warned %d/%d\n🔕 Muted For 1 Day")
	message.SetString(lang, ManualWarnRemoved, "🚫 User — %s\n\n>> Warned %d/%d\n❌ Removed From Group")
	message.SetString(lang, WarningsReset, "✅ User — %s\n\n>> Warnings Reset")
	message.SetString(lang, Muted, "🔕 User — %s\n\n>> Muted For %d Days")
	message.SetString(lang, Unmuted, "🔔 User — %s\n\n>> Unmuted")
	message.SetString(lang, Removed, "👋 User — %s\n\n>> Removed From Group")
	message.SetString(lang, Banned, "⛔ User — %s\n\n>> Banned")
	message.SetString(lang, Unbanned, "✅ User — %s\n\n>> Unbanned")
	message.SetString(lang, UserNotFound, "❌ User not found")

	// Admin dashboard
	message.SetString(lang, TopicID, "📌 Topic ID: `%s`")
	message.SetString(lang, Dashboard, "⚙ Dashboard")
	message.SetString(lang, DashboardTimes, "View Timings")
	message.SetString(lang, DashboardToggle, "Toggle Auto")
	message.SetString(lang, DashboardStats, "Stats")
	message.SetString(lang, DashboardStreaks, "Streaks")
	message.SetString(lang, ScheduleTimes, "📅 Session Times (%s):\n\n• %s")
	message.SetString(lang, AutoSessionsOn, "🤖 Auto Sessions: ✅ ON")
	message.SetString(lang, AutoSessionsOff, "🤖 Auto Sessions: ❌ OFF")
	message.SetString(lang, Stats, "📊 Current Stats:\n\nSession: %d\nPosts: %d\nThreshold: %d%%")
}
