// Package app runs the engagement campaign: the session lifecycle, post
// intake, scoring and escalation, administrator commands, and the trigger
// wiring that drives them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	platformerrors "github.com/raidroom/engagebot/internal/platform/errors"
	platformotel "github.com/raidroom/engagebot/internal/platform/otel"
	"github.com/raidroom/engagebot/internal/platform/timeouts"
	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"github.com/raidroom/engagebot/internal/services/engagement/i18n"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/raidroom/engagebot/internal/services/engagement/app"

const (
	defaultCommandTTL    = 10 * time.Second
	defaultNoticeTTL     = 30 * time.Second
	defaultClearInterval = 50 * time.Millisecond
)

// Config holds the group layout and campaign policy.
type Config struct {
	ChatID     int64
	PostThread int
	// WarnThread receives moderation notices; zero posts them to the
	// general channel.
	WarnThread   int
	Threshold    int
	Schedule     domain.Schedule
	AutoSessions bool
	// CommandTTL is how long command messages and their replies stay up.
	CommandTTL time.Duration
	// NoticeTTL is how long corrective notices and /topicid replies stay up.
	NoticeTTL time.Duration
	// ClearInterval paces deletions during /clear.
	ClearInterval time.Duration
	// InitialSession is the session number at startup; zero places the
	// engine from the clock and the schedule.
	InitialSession int
}

func (c Config) normalized() Config {
	if c.CommandTTL <= 0 {
		c.CommandTTL = defaultCommandTTL
	}
	if c.NoticeTTL <= 0 {
		c.NoticeTTL = defaultNoticeTTL
	}
	if c.ClearInterval < 0 {
		c.ClearInterval = 0
	} else if c.ClearInterval == 0 {
		c.ClearInterval = defaultClearInterval
	}
	return c
}

// EffectResult reports the outcome of one best-effort platform call.
type EffectResult struct {
	Name    string
	Session int
	UserID  int64
	Err     error
}

// OK reports whether the effect succeeded.
func (r EffectResult) OK() bool {
	return r.Err == nil
}

// Engine is the single owner of session and participation state. All state
// changes happen under mu; platform and click-feed I/O happens outside it.
type Engine struct {
	cfg       Config
	messenger Messenger
	feed      ClickFeed
	printer   domain.Printer
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	after     func(time.Duration, func())
	observer  func(EffectResult)

	mu      sync.Mutex
	session domain.Session
	store   *domain.Store
	auto    bool
	tracked map[int][]int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithAfterFunc replaces the timer used for delayed deletions.
func WithAfterFunc(after func(time.Duration, func())) Option {
	return func(e *Engine) {
		if after != nil {
			e.after = after
		}
	}
}

// WithObserver receives every platform effect result.
func WithObserver(observer func(EffectResult)) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithPrinter replaces the message printer.
func WithPrinter(printer domain.Printer) Option {
	return func(e *Engine) {
		if printer != nil {
			e.printer = printer
		}
	}
}

// WithTracer replaces the tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// NewEngine creates an engine in the Closed phase.
func NewEngine(cfg Config, messenger Messenger, feed ClickFeed, opts ...Option) (*Engine, error) {
	if messenger == nil {
		return nil, errors.New("messenger is required")
	}
	if feed == nil {
		return nil, errors.New("click feed is required")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("chat id is required")
	}
	if cfg.Threshold < 0 || cfg.Threshold > 100 {
		return nil, fmt.Errorf("threshold %d must be within 0..100", cfg.Threshold)
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized()

	e := &Engine{
		cfg:       cfg,
		messenger: messenger,
		feed:      feed,
		printer:   i18n.DefaultPrinter(),
		logger:    slog.Default(),
		tracer:    platformotel.Tracer(tracerName),
		now:       time.Now,
		after:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		store:     domain.NewStore(),
		auto:      cfg.AutoSessions,
		tracked:   make(map[int][]int),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.session = startupSession(cfg, e.now().UTC())
	return e, nil
}

// startupSession places the engine in the schedule. Starting inside a
// session's window resumes that session awaiting its report, so the check
// and report still name it; otherwise the next session waits to open.
func startupSession(cfg Config, now time.Time) domain.Session {
	if domain.ValidNumber(cfg.InitialSession, cfg.Schedule.Count()) {
		return domain.Session{Number: cfg.InitialSession, Phase: domain.PhaseClosed}
	}
	if n, ok := cfg.Schedule.InProgressSession(now); ok {
		return domain.Session{Number: n, Phase: domain.PhaseAwaitingCheck}
	}
	return domain.Session{Number: cfg.Schedule.UpcomingSession(now), Phase: domain.PhaseClosed}
}

// Session returns a copy of the current session.
func (e *Engine) Session() domain.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// AutoSessions reports whether scheduled opens are enabled.
func (e *Engine) AutoSessions() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auto
}

// SetAutoSessions enables or disables scheduled opens.
func (e *Engine) SetAutoSessions(enabled bool) {
	e.mu.Lock()
	e.auto = enabled
	e.mu.Unlock()
}

func (e *Engine) total() int {
	return e.cfg.Schedule.Count()
}

func (e *Engine) postTarget() Target {
	return Target{ChatID: e.cfg.ChatID, ThreadID: e.cfg.PostThread}
}

func (e *Engine) warnTarget() Target {
	return Target{ChatID: e.cfg.ChatID, ThreadID: e.cfg.WarnThread}
}

func (e *Engine) text(key string, args ...any) string {
	return e.printer.Sprintf(key, args...)
}

// startSpan opens a span for a transition, tagged with the session it
// started in.
func (e *Engine) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	current := e.Session()
	attrs := []attribute.KeyValue{
		attribute.Int("session.number", current.Number),
		attribute.String("session.phase", current.Phase.String()),
	}
	if runID := RunIDFrom(ctx); runID != "" {
		attrs = append(attrs, attribute.String("trigger.run_id", runID))
	}
	return e.tracer.Start(ctx, "engagement."+name, trace.WithAttributes(attrs...))
}

// effect records a best-effort platform call. Failures are logged and
// reported to the observer but never returned.
func (e *Engine) effect(ctx context.Context, name string, userID int64, err error) {
	result := EffectResult{Name: name, Session: e.Session().Number, UserID: userID}
	if err != nil {
		result.Err = platformerrors.Wrap(platformerrors.CodeExternalFailure, name, err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, name)
		e.logger.WarnContext(ctx, "platform effect failed",
			slog.String("effect", name),
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
	}
	if e.observer != nil {
		e.observer(result)
	}
}

func (e *Engine) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeouts.PlatformCall)
}

// send delivers a message and reports whether it was sent.
func (e *Engine) send(ctx context.Context, name string, msg Outgoing) (domain.MessageRef, bool) {
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	ref, err := e.messenger.Send(callCtx, msg)
	e.effect(ctx, name, 0, err)
	return ref, err == nil
}

// announce posts to the posting sub-channel and remembers the message for
// /clear.
func (e *Engine) announce(ctx context.Context, name, text string, markdown bool) (domain.MessageRef, bool) {
	ref, ok := e.send(ctx, name, Outgoing{Target: e.postTarget(), Text: text, Markdown: markdown})
	if ok {
		e.track(e.cfg.PostThread, ref)
	}
	return ref, ok
}

// warn posts a moderation notice. Notices are never auto-deleted.
func (e *Engine) warn(ctx context.Context, name, text string) {
	e.send(ctx, name, Outgoing{Target: e.warnTarget(), Text: text})
}

func (e *Engine) track(thread int, ref domain.MessageRef) {
	if ref.IsZero() {
		return
	}
	e.mu.Lock()
	e.tracked[thread] = append(e.tracked[thread], ref.MessageID)
	e.mu.Unlock()
}

// deleteLater removes a message after d. Failures are ignored; the message
// may already be gone.
func (e *Engine) deleteLater(ref domain.MessageRef, d time.Duration) {
	if ref.IsZero() {
		return
	}
	e.after(d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.PlatformCall)
		defer cancel()
		if err := e.messenger.Delete(ctx, ref); err != nil {
			e.logger.DebugContext(ctx, "delayed delete failed",
				slog.Int("message_id", ref.MessageID),
				slog.Any("error", err),
			)
		}
	})
}

// deleteNow removes a message immediately, best-effort.
func (e *Engine) deleteNow(ctx context.Context, name string, ref domain.MessageRef) {
	if ref.IsZero() {
		return
	}
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	e.effect(ctx, name, 0, e.messenger.Delete(callCtx, ref))
}

// labelLocked renders a member from the identity cache. Callers hold mu.
func (e *Engine) labelLocked(userID int64) string {
	return e.store.MentionFor(userID)
}

// remember caches identities seen on the platform.
func (e *Engine) remember(identities ...domain.Identity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, identity := range identities {
		e.store.Remember(identity)
	}
}

// admins fetches the group's administrators and caches their identities.
func (e *Engine) admins(ctx context.Context) (map[int64]domain.Identity, error) {
	callCtx, cancel := e.callCtx(ctx)
	defer cancel()
	list, err := e.messenger.Admins(callCtx, e.cfg.ChatID)
	if err != nil {
		return nil, err
	}
	e.remember(list...)
	byID := make(map[int64]domain.Identity, len(list))
	for _, admin := range list {
		byID[admin.ID] = admin
	}
	return byID, nil
}

func (e *Engine) isAdmin(ctx context.Context, userID int64) bool {
	admins, err := e.admins(ctx)
	if err != nil {
		e.effect(ctx, "admins", userID, err)
		return false
	}
	_, ok := admins[userID]
	return ok
}
