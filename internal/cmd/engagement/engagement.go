// Package engagement parses engagement bot command flags and launches the
// bot runtime.
package engagement

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	entrypoint "github.com/raidroom/engagebot/internal/platform/cmd"
	platformgrpc "github.com/raidroom/engagebot/internal/platform/grpc"
	"github.com/raidroom/engagebot/internal/platform/timeouts"
	engagementapp "github.com/raidroom/engagebot/internal/services/engagement/app"
	"github.com/raidroom/engagebot/internal/services/engagement/clicks"
	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"github.com/raidroom/engagebot/internal/services/engagement/telegram"
)

// Config holds engagement command configuration. Variables are read with
// the ENGAGE_ prefix, e.g. ENGAGE_TELEGRAM_TOKEN.
type Config struct {
	TelegramToken   string        `env:"TELEGRAM_TOKEN"`
	ChatID          int64         `env:"CHAT_ID" envDefault:"-1003800205030"`
	PostTopicID     int           `env:"POST_TOPIC_ID" envDefault:"2"`
	WarnTopicID     int           `env:"WARN_TOPIC_ID" envDefault:"902"`
	ClickServerURL  string        `env:"CLICK_SERVER_URL" envDefault:"http://localhost:5000"`
	Threshold       int           `env:"THRESHOLD" envDefault:"90"`
	ScheduleFile    string        `env:"SCHEDULE_FILE"`
	AutoSessions    bool          `env:"AUTO_SESSIONS" envDefault:"true"`
	ClickTimeout    time.Duration `env:"CLICK_TIMEOUT" envDefault:"10s"`
	AutoDeleteDelay time.Duration `env:"AUTO_DELETE_DELAY" envDefault:"10s"`
	HealthPort      int           `env:"HEALTH_PORT" envDefault:"8090"`
	PollTimeout     time.Duration `env:"POLL_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	// HealthCheck probes a running instance instead of starting one.
	HealthCheck bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.Int64Var(&cfg.ChatID, "chat-id", cfg.ChatID, "Telegram group chat id")
	fs.IntVar(&cfg.PostTopicID, "post-topic", cfg.PostTopicID, "Posting sub-channel (forum topic) id")
	fs.IntVar(&cfg.WarnTopicID, "warn-topic", cfg.WarnTopicID, "Moderation notice sub-channel id; 0 uses the general channel")
	fs.StringVar(&cfg.ClickServerURL, "click-server", cfg.ClickServerURL, "Click tracking server base URL")
	fs.IntVar(&cfg.Threshold, "threshold", cfg.Threshold, "Engagement threshold percentage")
	fs.StringVar(&cfg.ScheduleFile, "schedule", cfg.ScheduleFile, "Session schedule YAML file; empty uses the built-in table")
	fs.BoolVar(&cfg.AutoSessions, "auto-sessions", cfg.AutoSessions, "Open sessions on schedule")
	fs.DurationVar(&cfg.ClickTimeout, "click-timeout", cfg.ClickTimeout, "Click feed request timeout")
	fs.DurationVar(&cfg.AutoDeleteDelay, "auto-delete-delay", cfg.AutoDeleteDelay, "Delay before command messages are removed")
	fs.IntVar(&cfg.HealthPort, "port", cfg.HealthPort, "The health gRPC server port")
	fs.DurationVar(&cfg.PollTimeout, "poll-timeout", cfg.PollTimeout, "Telegram long-poll timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.HealthCheck, "healthcheck", false, "Probe the local health server and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Threshold < 0 || cfg.Threshold > 100 {
		return Config{}, fmt.Errorf("threshold %d must be within 0..100", cfg.Threshold)
	}
	return cfg, nil
}

// Run starts the engagement bot, or probes a running one in health check mode.
func Run(ctx context.Context, cfg Config) error {
	if cfg.HealthCheck {
		probeCtx, cancel := context.WithTimeout(ctx, 3*timeouts.HealthCheck)
		defer cancel()
		return platformgrpc.Probe(probeCtx, fmt.Sprintf("127.0.0.1:%d", cfg.HealthPort), engagementapp.RuntimeHealthService, nil)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEngagement, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return errors.New("ENGAGE_TELEGRAM_TOKEN is required")
	}
	schedule, err := LoadSchedule(cfg.ScheduleFile)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	feed, err := clicks.NewClient(cfg.ClickServerURL, clicks.WithTimeout(cfg.ClickTimeout))
	if err != nil {
		return err
	}
	bot, err := telegram.New(telegram.Config{
		Token:       cfg.TelegramToken,
		PollTimeout: cfg.PollTimeout,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	log.Printf("loaded %d-session schedule (%s)", schedule.Count(), schedule.Zone)

	return engagementapp.Run(ctx, engagementapp.RuntimeConfig{
		Engine: engagementapp.Config{
			ChatID:       cfg.ChatID,
			PostThread:   cfg.PostTopicID,
			WarnThread:   cfg.WarnTopicID,
			Threshold:    cfg.Threshold,
			Schedule:     schedule,
			AutoSessions: cfg.AutoSessions,
			CommandTTL:   cfg.AutoDeleteDelay,
		},
		HealthAddr: fmt.Sprintf(":%d", cfg.HealthPort),
		Transport:  bot,
		Feed:       feed,
		Logger:     logger,
	})
}

// LoadSchedule reads the schedule table from path, or returns the built-in
// table when path is empty.
func LoadSchedule(path string) (domain.Schedule, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultSchedule()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("read schedule: %w", err)
	}
	schedule, err := domain.ParseSchedule(data)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("load schedule %s: %w", path, err)
	}
	return schedule, nil
}

func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}
