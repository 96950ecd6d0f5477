package domain

import (
	"strings"
	"testing"
	"time"
)

func TestToSchedulerZone(t *testing.T) {
	tests := []struct {
		local  ClockTime
		offset int
		want   ClockTime
	}{
		{ClockTime{11, 0}, 330, ClockTime{5, 30}},
		{ClockTime{0, 0}, 330, ClockTime{18, 30}},
		{ClockTime{0, 30}, 330, ClockTime{19, 0}},
		{ClockTime{23, 55}, 330, ClockTime{18, 25}},
		{ClockTime{22, 0}, -180, ClockTime{1, 0}},
		{ClockTime{9, 15}, 0, ClockTime{9, 15}},
	}
	for _, tc := range tests {
		if got := ToSchedulerZone(tc.local, tc.offset); got != tc.want {
			t.Fatalf("ToSchedulerZone(%s, %d) = %s, want %s", tc.local, tc.offset, got, tc.want)
		}
	}
}

func TestParseClockTime(t *testing.T) {
	got, err := ParseClockTime(" 07:05 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != (ClockTime{7, 5}) {
		t.Fatalf("expected 07:05, got %s", got)
	}
	for _, bad := range []string{"", "7", "24:00", "12:60", "aa:10", "-1:00"} {
		if _, err := ParseClockTime(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFormat12h(t *testing.T) {
	tests := map[ClockTime]string{
		{0, 0}:   "12:00 AM",
		{11, 0}:  "11:00 AM",
		{12, 5}:  "12:05 PM",
		{16, 0}:  "4:00 PM",
		{23, 30}: "11:30 PM",
	}
	for in, want := range tests {
		if got := in.Format12h(); got != want {
			t.Fatalf("Format12h(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultScheduleTriggers(t *testing.T) {
	schedule, err := DefaultSchedule()
	if err != nil {
		t.Fatalf("default schedule: %v", err)
	}
	if schedule.Count() != 4 {
		t.Fatalf("expected 4 sessions, got %d", schedule.Count())
	}
	triggers := schedule.Triggers()
	if len(triggers) != 24 {
		t.Fatalf("expected 24 triggers, got %d", len(triggers))
	}

	first := triggers[0]
	if first.Kind != TriggerOpen || first.Session != 1 || first.ID() != "open_0" {
		t.Fatalf("unexpected first trigger %+v", first)
	}
	if first.CronSpec() != "30 5 * * *" {
		t.Fatalf("expected cron 30 5 * * *, got %q", first.CronSpec())
	}

	seen := make(map[string]bool)
	for _, trigger := range triggers {
		if seen[trigger.ID()] {
			t.Fatalf("duplicate trigger id %s", trigger.ID())
		}
		seen[trigger.ID()] = true
		if !trigger.At.Valid() {
			t.Fatalf("trigger %s at invalid time %s", trigger.ID(), trigger.At)
		}
	}

	last := triggers[len(triggers)-1]
	if last.Kind != TriggerNotify5 || last.Session != 4 {
		t.Fatalf("unexpected last trigger %+v", last)
	}
	// 10:55 IST is 05:25 UTC.
	if last.At != (ClockTime{5, 25}) {
		t.Fatalf("expected 05:25, got %s", last.At)
	}
}

func TestOpenTimes(t *testing.T) {
	schedule, err := DefaultSchedule()
	if err != nil {
		t.Fatalf("default schedule: %v", err)
	}
	got := strings.Join(schedule.OpenTimes(), ", ")
	want := "11:00 AM IST, 4:00 PM IST, 8:00 PM IST, 12:00 AM IST"
	if got != want {
		t.Fatalf("open times = %q, want %q", got, want)
	}
}

func TestParseScheduleRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"no sessions": "zone: UTC\nutc_offset_minutes: 0\nsessions: []\n",
		"bad offset": "zone: X\nutc_offset_minutes: 900\nsessions:\n" +
			"  - {open: \"01:00\", close: \"02:00\", check: \"03:00\", report: \"04:00\", notify10: \"05:00\", notify5: \"06:00\"}\n",
		"bad time": "zone: X\nutc_offset_minutes: 0\nsessions:\n" +
			"  - {open: \"25:00\", close: \"02:00\", check: \"03:00\", report: \"04:00\", notify10: \"05:00\", notify5: \"06:00\"}\n",
		"not yaml": "sessions: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSchedule([]byte(data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseScheduleSingleSession(t *testing.T) {
	data := "zone: UTC\nutc_offset_minutes: 0\nsessions:\n" +
		"  - {open: \"09:00\", close: \"10:00\", check: \"11:00\", report: \"11:30\", notify10: \"08:50\", notify5: \"08:55\"}\n"
	schedule, err := ParseSchedule([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	triggers := schedule.Triggers()
	if len(triggers) != 6 {
		t.Fatalf("expected 6 triggers, got %d", len(triggers))
	}
	if triggers[3].Kind != TriggerReport || triggers[3].At != (ClockTime{11, 30}) {
		t.Fatalf("unexpected report trigger %+v", triggers[3])
	}
}

func TestTriggerLead(t *testing.T) {
	if TriggerNotify10.Lead() != 10*time.Minute {
		t.Fatalf("expected 10m lead")
	}
	if TriggerNotify5.Lead() != 5*time.Minute {
		t.Fatalf("expected 5m lead")
	}
	if TriggerOpen.Lead() != 0 {
		t.Fatalf("expected no lead for open")
	}
}

func TestUpcomingSession(t *testing.T) {
	schedule, err := DefaultSchedule()
	if err != nil {
		t.Fatalf("default schedule: %v", err)
	}
	tests := []struct {
		utc  string
		want int
	}{
		{"05:00", 1}, // 10:30 IST
		{"05:30", 1}, // 11:00 IST, opening now
		{"05:31", 2},
		{"14:00", 3}, // 19:30 IST
		{"17:00", 4}, // 22:30 IST
		{"23:00", 1}, // 04:30 IST
	}
	for _, tc := range tests {
		at, err := time.Parse("15:04", tc.utc)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.utc, err)
		}
		if got := schedule.UpcomingSession(at); got != tc.want {
			t.Fatalf("UpcomingSession(%s UTC) = %d, want %d", tc.utc, got, tc.want)
		}
	}
}

func TestInProgressSession(t *testing.T) {
	schedule, err := DefaultSchedule()
	if err != nil {
		t.Fatalf("default schedule: %v", err)
	}
	tests := []struct {
		utc    string
		want   int
		wantOK bool
	}{
		{"05:30", 0, false}, // 11:00 IST, session 1 opening now
		{"05:45", 1, true},  // 11:15 IST, posting
		{"06:30", 1, true},  // 12:00 IST, awaiting report
		{"10:15", 0, false}, // 15:45 IST, session 1 reporting now
		{"10:20", 0, false}, // 15:50 IST, between report and next open
		{"20:00", 4, true},  // 01:30 IST, session 4 window crosses midnight
	}
	for _, tc := range tests {
		at, err := time.Parse("15:04", tc.utc)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.utc, err)
		}
		got, ok := schedule.InProgressSession(at)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("InProgressSession(%s UTC) = %d, %v, want %d, %v", tc.utc, got, ok, tc.want, tc.wantOK)
		}
	}
}
