package clicks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/raidroom/engagebot/internal/services/engagement/domain"
)

func TestFetchDecodesClicks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/clicks/3" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"clicks":[{"tg_id":11,"post_num":2},{"tg_id":12,"post_num":1}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL + "/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	events, err := client.Fetch(context.Background(), 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := []domain.ClickEvent{
		{RaterID: 11, PostSequence: 2, Session: 3},
		{RaterID: 12, PostSequence: 1, Session: 3},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestFetchFailures(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"clicks":`))
		},
		"slow": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			client, err := NewClient(srv.URL, WithTimeout(100*time.Millisecond))
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			events, err := client.Fetch(context.Background(), 1)
			if err == nil {
				t.Fatal("expected error")
			}
			if len(events) != 0 {
				t.Fatalf("expected no events, got %d", len(events))
			}
		})
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "://bad"} {
		if _, err := NewClient(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestTrackURL(t *testing.T) {
	client, err := NewClient("http://tracker.local:5000")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	post := domain.Post{Sequence: 4, PosterID: 77, Handle: "ann", URL: "https://x.com/ann/status/1?s=20"}
	raw := client.TrackURL(post, 2)

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse track url: %v", err)
	}
	if u.Host != "tracker.local:5000" || u.Path != "/track" {
		t.Fatalf("unexpected track url %q", raw)
	}
	q := u.Query()
	checks := map[string]string{"uid": "77", "post": "4", "sess": "2", "x": "ann", "link": post.URL}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
}
