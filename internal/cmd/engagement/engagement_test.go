package engagement

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("engagement", flag.ContinueOnError)
	t.Setenv("ENGAGE_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ENGAGE_THRESHOLD", "80")
	t.Setenv("ENGAGE_CLICK_TIMEOUT", "3s")

	cfg, err := ParseConfig(fs, []string{"-post-topic", "5", "-auto-sessions=false"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.TelegramToken != "123:abc" {
		t.Fatalf("token = %q, want %q", cfg.TelegramToken, "123:abc")
	}
	if cfg.Threshold != 80 {
		t.Fatalf("threshold = %d, want 80", cfg.Threshold)
	}
	if cfg.ClickTimeout != 3*time.Second {
		t.Fatalf("click timeout = %v, want 3s", cfg.ClickTimeout)
	}
	if cfg.PostTopicID != 5 {
		t.Fatalf("post topic = %d, want 5", cfg.PostTopicID)
	}
	if cfg.AutoSessions {
		t.Fatal("auto sessions = true, want false")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("engagement", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.ChatID != -1003800205030 {
		t.Fatalf("chat id = %d, want -1003800205030", cfg.ChatID)
	}
	if cfg.PostTopicID != 2 || cfg.WarnTopicID != 902 {
		t.Fatalf("topics = %d/%d, want 2/902", cfg.PostTopicID, cfg.WarnTopicID)
	}
	if cfg.Threshold != 90 {
		t.Fatalf("threshold = %d, want 90", cfg.Threshold)
	}
	if cfg.HealthPort != 8090 {
		t.Fatalf("health port = %d, want 8090", cfg.HealthPort)
	}
	if !cfg.AutoSessions {
		t.Fatal("auto sessions = false, want true")
	}
}

func TestParseConfig_RejectsThreshold(t *testing.T) {
	fs := flag.NewFlagSet("engagement", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-threshold", "150"}); err == nil {
		t.Fatal("expected threshold error")
	}
}

func TestRunRequiresToken(t *testing.T) {
	t.Setenv("ENGAGE_OTEL_ENABLED", "false")
	err := Run(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected missing token error")
	}
}

func TestLoadSchedule(t *testing.T) {
	schedule, err := LoadSchedule("")
	if err != nil {
		t.Fatalf("default schedule: %v", err)
	}
	if schedule.Count() != 4 {
		t.Fatalf("default sessions = %d, want 4", schedule.Count())
	}

	path := filepath.Join(t.TempDir(), "schedule.yaml")
	data := "zone: UTC\nutc_offset_minutes: 0\nsessions:\n" +
		"  - {open: \"09:00\", close: \"10:00\", check: \"11:00\", report: \"11:30\", notify10: \"08:50\", notify5: \"08:55\"}\n" +
		"  - {open: \"18:00\", close: \"19:00\", check: \"20:00\", report: \"20:30\", notify10: \"17:50\", notify5: \"17:55\"}\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write schedule: %v", err)
	}
	schedule, err = LoadSchedule(path)
	if err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	if schedule.Count() != 2 || schedule.Zone != "UTC" {
		t.Fatalf("schedule = %+v", schedule)
	}

	if _, err := LoadSchedule(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
