package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"github.com/raidroom/engagebot/internal/services/engagement/i18n"
	"github.com/robfig/cron/v3"
)

const (
	testChat       int64 = -1001
	testPostThread       = 2
	testWarnThread       = 902
)

type recordedCall struct {
	Method string
	Msg    Outgoing
	Ref    domain.MessageRef
	UserID int64
	Until  time.Time
	Target Target
	Text   string
}

type fakeMessenger struct {
	mu       sync.Mutex
	nextID   int
	calls    []recordedCall
	admins   []domain.Identity
	members  map[int64]domain.Identity
	failures map[string]error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		nextID:   100,
		members:  make(map[int64]domain.Identity),
		failures: make(map[string]error),
	}
}

func (m *fakeMessenger) record(call recordedCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return m.failures[call.Method]
}

func (m *fakeMessenger) Send(_ context.Context, msg Outgoing) (domain.MessageRef, error) {
	m.mu.Lock()
	m.nextID++
	ref := domain.MessageRef{ChatID: msg.Target.ChatID, MessageID: m.nextID}
	m.mu.Unlock()
	if err := m.record(recordedCall{Method: "Send", Msg: msg, Ref: ref}); err != nil {
		return domain.MessageRef{}, err
	}
	return ref, nil
}

func (m *fakeMessenger) Delete(_ context.Context, ref domain.MessageRef) error {
	return m.record(recordedCall{Method: "Delete", Ref: ref})
}

func (m *fakeMessenger) Edit(_ context.Context, ref domain.MessageRef, text string) error {
	return m.record(recordedCall{Method: "Edit", Ref: ref, Text: text})
}

func (m *fakeMessenger) Restrict(_ context.Context, _ int64, userID int64, until time.Time) error {
	return m.record(recordedCall{Method: "Restrict", UserID: userID, Until: until})
}

func (m *fakeMessenger) Unrestrict(_ context.Context, _ int64, userID int64) error {
	return m.record(recordedCall{Method: "Unrestrict", UserID: userID})
}

func (m *fakeMessenger) Ban(_ context.Context, _ int64, userID int64) error {
	return m.record(recordedCall{Method: "Ban", UserID: userID})
}

func (m *fakeMessenger) Unban(_ context.Context, _ int64, userID int64) error {
	return m.record(recordedCall{Method: "Unban", UserID: userID})
}

func (m *fakeMessenger) Pin(_ context.Context, ref domain.MessageRef) error {
	return m.record(recordedCall{Method: "Pin", Ref: ref})
}

func (m *fakeMessenger) Unpin(_ context.Context, ref domain.MessageRef) error {
	return m.record(recordedCall{Method: "Unpin", Ref: ref})
}

func (m *fakeMessenger) OpenThread(_ context.Context, target Target) error {
	return m.record(recordedCall{Method: "OpenThread", Target: target})
}

func (m *fakeMessenger) CloseThread(_ context.Context, target Target) error {
	return m.record(recordedCall{Method: "CloseThread", Target: target})
}

func (m *fakeMessenger) Admins(context.Context, int64) ([]domain.Identity, error) {
	if err := m.record(recordedCall{Method: "Admins"}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Identity(nil), m.admins...), nil
}

func (m *fakeMessenger) Member(_ context.Context, _ int64, userID int64) (domain.Identity, error) {
	if err := m.record(recordedCall{Method: "Member", UserID: userID}); err != nil {
		return domain.Identity{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.members[userID]
	if !ok {
		return domain.Identity{}, fmt.Errorf("member %d not found", userID)
	}
	return identity, nil
}

func (m *fakeMessenger) fail(method string, err error) {
	m.mu.Lock()
	m.failures[method] = err
	m.mu.Unlock()
}

func (m *fakeMessenger) reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

func (m *fakeMessenger) callsOf(method string) []recordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []recordedCall
	for _, call := range m.calls {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

func (m *fakeMessenger) sentTexts() []string {
	var out []string
	for _, call := range m.callsOf("Send") {
		out = append(out, call.Msg.Text)
	}
	return out
}

func (m *fakeMessenger) deletedIDs() []int {
	var out []int
	for _, call := range m.callsOf("Delete") {
		out = append(out, call.Ref.MessageID)
	}
	return out
}

func (m *fakeMessenger) sentContaining(substr string) []recordedCall {
	var out []recordedCall
	for _, call := range m.callsOf("Send") {
		if strings.Contains(call.Msg.Text, substr) {
			out = append(out, call)
		}
	}
	return out
}

type fakeFeed struct {
	mu      sync.Mutex
	clicks  map[int][]domain.ClickEvent
	err     error
	fetched []int
}

func (f *fakeFeed) Fetch(_ context.Context, session int) ([]domain.ClickEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, session)
	if f.err != nil {
		return nil, f.err
	}
	return f.clicks[session], nil
}

func (f *fakeFeed) TrackURL(post domain.Post, session int) string {
	return fmt.Sprintf("https://clicks.test/track?uid=%d&post=%d&sess=%d", post.PosterID, post.Sequence, session)
}

type fakeRegistrar struct {
	specs []string
	jobs  []func()
	err   error
}

func (r *fakeRegistrar) AddFunc(spec string, cmd func()) (cron.EntryID, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.specs = append(r.specs, spec)
	r.jobs = append(r.jobs, cmd)
	return cron.EntryID(len(r.jobs)), nil
}

type testHarness struct {
	engine    *Engine
	messenger *fakeMessenger
	feed      *fakeFeed
	now       time.Time
	delays    []time.Duration
	effects   []EffectResult
}

func testConfig(t *testing.T) Config {
	t.Helper()
	schedule, err := domain.DefaultSchedule()
	if err != nil {
		t.Fatalf("default schedule: %v", err)
	}
	return Config{
		ChatID:         testChat,
		PostThread:     testPostThread,
		WarnThread:     testWarnThread,
		Threshold:      90,
		Schedule:       schedule,
		AutoSessions:   true,
		ClearInterval:  -1,
		InitialSession: 1,
	}
}

func newHarness(t *testing.T, mutate ...func(*Config)) *testHarness {
	t.Helper()
	cfg := testConfig(t)
	for _, m := range mutate {
		m(&cfg)
	}
	h := &testHarness{
		messenger: newFakeMessenger(),
		feed:      &fakeFeed{clicks: make(map[int][]domain.ClickEvent)},
		now:       time.Date(2026, 3, 1, 5, 30, 0, 0, time.UTC),
	}
	engine, err := NewEngine(cfg, h.messenger, h.feed,
		WithClock(func() time.Time { return h.now }),
		WithAfterFunc(func(d time.Duration, f func()) {
			h.delays = append(h.delays, d)
			f()
		}),
		WithObserver(func(result EffectResult) {
			h.effects = append(h.effects, result)
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	h.engine = engine
	return h
}

func (h *testHarness) text(key string, args ...any) string {
	return i18n.DefaultPrinter().Sprintf(key, args...)
}

func member(id int64, username string) domain.Identity {
	return domain.Identity{ID: id, Username: username, FirstName: strings.ToUpper(username[:1]) + username[1:]}
}

func postMessage(id int, sender domain.Identity, text string) Incoming {
	return Incoming{
		ChatID:    testChat,
		ThreadID:  testPostThread,
		MessageID: id,
		Sender:    sender,
		Text:      text,
	}
}

func xLink(handle string, status int) string {
	return fmt.Sprintf("https://x.com/%s/status/%d", handle, status)
}

// submitPosts opens session 1 and accepts one post from each member.
func (h *testHarness) submitPosts(t *testing.T, members ...domain.Identity) []domain.Post {
	t.Helper()
	ctx := context.Background()
	if !h.engine.Session().AcceptsPosts() {
		h.engine.AutoOpen(ctx, h.engine.Session().Number)
	}
	var posts []domain.Post
	for i, m := range members {
		post, err := h.engine.Submit(ctx, postMessage(1000+i, m, xLink(m.Username, 500+i)))
		if err != nil {
			t.Fatalf("submit %s: %v", m.Username, err)
		}
		posts = append(posts, post)
	}
	return posts
}
