package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const minutesPerDay = 24 * 60

// maxOffsetMinutes bounds the UTC offset of a reference zone (UTC-14..UTC+14).
const maxOffsetMinutes = 14 * 60

//go:embed schedule_default.yaml
var defaultScheduleYAML []byte

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (24-hour clock).
func ParseClockTime(value string) (ClockTime, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("clock time %q: want HH:MM", value)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return ClockTime{}, fmt.Errorf("clock time %q: hour: %w", value, err)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return ClockTime{}, fmt.Errorf("clock time %q: minute: %w", value, err)
	}
	t := ClockTime{Hour: hour, Minute: minute}
	if !t.Valid() {
		return ClockTime{}, fmt.Errorf("clock time %q: out of range", value)
	}
	return t, nil
}

// Valid reports whether the time lies within a single day.
func (t ClockTime) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// MinutesSinceMidnight returns the time as an offset into the day.
func (t ClockTime) MinutesSinceMidnight() int {
	return t.Hour*60 + t.Minute
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Format12h renders the time on a 12-hour clock, e.g. "4:00 PM".
func (t ClockTime) Format12h() string {
	period := "AM"
	if t.Hour >= 12 {
		period = "PM"
	}
	hour := t.Hour
	if hour > 12 {
		hour -= 12
	}
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, period)
}

// UnmarshalYAML accepts "HH:MM" scalars.
func (t *ClockTime) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ToSchedulerZone converts a wall-clock time in a zone that is
// offsetMinutes ahead of the scheduler's zone into the scheduler's zone.
// The result is normalized into the same day, wrapping across midnight.
func ToSchedulerZone(local ClockTime, offsetMinutes int) ClockTime {
	total := (local.MinutesSinceMidnight() - offsetMinutes) % minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return ClockTime{Hour: total / 60, Minute: total % 60}
}

// TriggerKind names one of the six per-session wall-clock events.
type TriggerKind string

const (
	TriggerOpen     TriggerKind = "open"
	TriggerClose    TriggerKind = "close"
	TriggerPreCheck TriggerKind = "pre_check"
	TriggerReport   TriggerKind = "report"
	TriggerNotify10 TriggerKind = "notify_10m"
	TriggerNotify5  TriggerKind = "notify_5m"
)

// Lead returns how far ahead of the next open a notice trigger fires. It is
// zero for non-notice triggers.
func (k TriggerKind) Lead() time.Duration {
	switch k {
	case TriggerNotify10:
		return 10 * time.Minute
	case TriggerNotify5:
		return 5 * time.Minute
	default:
		return 0
	}
}

// SessionTimes lists the reference-zone times of one session's triggers.
type SessionTimes struct {
	Open     ClockTime `yaml:"open"`
	Close    ClockTime `yaml:"close"`
	Check    ClockTime `yaml:"check"`
	Report   ClockTime `yaml:"report"`
	Notify10 ClockTime `yaml:"notify10"`
	Notify5  ClockTime `yaml:"notify5"`
}

func (s SessionTimes) byKind() []struct {
	kind TriggerKind
	at   ClockTime
} {
	return []struct {
		kind TriggerKind
		at   ClockTime
	}{
		{TriggerOpen, s.Open},
		{TriggerClose, s.Close},
		{TriggerPreCheck, s.Check},
		{TriggerReport, s.Report},
		{TriggerNotify10, s.Notify10},
		{TriggerNotify5, s.Notify5},
	}
}

// Schedule is the daily timetable of every session in the cycle. Session
// i (0-based) of Sessions carries number i+1.
type Schedule struct {
	Zone          string         `yaml:"zone"`
	OffsetMinutes int            `yaml:"utc_offset_minutes"`
	Sessions      []SessionTimes `yaml:"sessions"`
}

// Trigger is one registered wall-clock event, already converted into the
// scheduler's zone.
type Trigger struct {
	Kind         TriggerKind
	SessionIndex int
	Session      int
	At           ClockTime
}

// CronSpec renders the trigger as a daily five-field cron expression.
func (t Trigger) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", t.At.Minute, t.At.Hour)
}

// ID is a stable identifier for logs, e.g. "open_0".
func (t Trigger) ID() string {
	return fmt.Sprintf("%s_%d", t.Kind, t.SessionIndex)
}

// DefaultSchedule returns the embedded reference timetable.
func DefaultSchedule() (Schedule, error) {
	return ParseSchedule(defaultScheduleYAML)
}

// ParseSchedule decodes and validates a YAML timetable.
func ParseSchedule(data []byte) (Schedule, error) {
	var schedule Schedule
	if err := yaml.Unmarshal(data, &schedule); err != nil {
		return Schedule{}, fmt.Errorf("decode schedule: %w", err)
	}
	if err := schedule.Validate(); err != nil {
		return Schedule{}, err
	}
	return schedule, nil
}

// Validate checks the timetable is usable.
func (s Schedule) Validate() error {
	if len(s.Sessions) == 0 {
		return errors.New("schedule: at least one session is required")
	}
	if s.OffsetMinutes < -maxOffsetMinutes || s.OffsetMinutes > maxOffsetMinutes {
		return fmt.Errorf("schedule: utc offset %d minutes out of range", s.OffsetMinutes)
	}
	for i, session := range s.Sessions {
		for _, entry := range session.byKind() {
			if !entry.at.Valid() {
				return fmt.Errorf("schedule: session %d %s time %s out of range", i+1, entry.kind, entry.at)
			}
		}
	}
	return nil
}

// Count returns N, the number of sessions in one cycle.
func (s Schedule) Count() int {
	return len(s.Sessions)
}

// Triggers expands the timetable into one entry per (session, kind), with
// times converted into the scheduler's zone.
func (s Schedule) Triggers() []Trigger {
	triggers := make([]Trigger, 0, len(s.Sessions)*6)
	for i, session := range s.Sessions {
		for _, entry := range session.byKind() {
			triggers = append(triggers, Trigger{
				Kind:         entry.kind,
				SessionIndex: i,
				Session:      i + 1,
				At:           ToSchedulerZone(entry.at, s.OffsetMinutes),
			})
		}
	}
	return triggers
}

// OpenTimes lists the reference-zone opening times, e.g. "11:00 AM IST".
func (s Schedule) OpenTimes() []string {
	times := make([]string, 0, len(s.Sessions))
	for _, session := range s.Sessions {
		label := session.Open.Format12h()
		if zone := strings.TrimSpace(s.Zone); zone != "" {
			label += " " + zone
		}
		times = append(times, label)
	}
	return times
}

// UpcomingSession returns the number of the session whose opening comes
// next after now, reading now in the scheduler's zone. A session opening at
// exactly now counts as upcoming.
func (s Schedule) UpcomingSession(now time.Time) int {
	current := now.Hour()*60 + now.Minute()
	best, bestWait := 1, minutesPerDay
	for i, session := range s.Sessions {
		open := ToSchedulerZone(session.Open, s.OffsetMinutes).MinutesSinceMidnight()
		wait := (open - current + minutesPerDay) % minutesPerDay
		if wait < bestWait {
			best, bestWait = i+1, wait
		}
	}
	return best
}

// InProgressSession returns the session whose posting or review window
// contains now: after its opening and before its report. Boundary minutes
// belong to the trigger that fires in them.
func (s Schedule) InProgressSession(now time.Time) (int, bool) {
	current := now.Hour()*60 + now.Minute()
	for i, session := range s.Sessions {
		open := ToSchedulerZone(session.Open, s.OffsetMinutes).MinutesSinceMidnight()
		report := ToSchedulerZone(session.Report, s.OffsetMinutes).MinutesSinceMidnight()
		elapsed := (current - open + minutesPerDay) % minutesPerDay
		span := (report - open + minutesPerDay) % minutesPerDay
		if elapsed > 0 && elapsed < span {
			return i + 1, true
		}
	}
	return 0, false
}
