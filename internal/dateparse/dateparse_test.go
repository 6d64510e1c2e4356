package dateparse

import (
	"testing"
	"time"
)

// Fixed reference time: Wednesday, 2026-02-18 12:00:00 UTC
var testNow = time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2026-03-01", "2026-03-01"},
		{"today", "2026-02-18"},
		{"Tomorrow", "2026-02-19"},
		{"yesterday", "2026-02-17"},
		{"next-week", "2026-02-23"},
		{"next-month", "2026-03-01"},
		{"+0d", "2026-02-18"},
		{"+10d", "2026-02-28"},
		{"+2w", "2026-03-04"},
		{"+1m", "2026-03-18"},
		{"friday", "2026-02-20"},
		{"wednesday", "2026-02-25"},
		{"mon", "2026-02-23"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input, testNow)
			if err != nil {
				t.Fatalf("ParseDate(%q): unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFromWithTime(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2026-03-01 14:30", time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)},
		{"2026-03-01T09:05", time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)},
		{"2026-03-01T09:05:00Z", time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)},
		{"16:45", time.Date(2026, 2, 18, 16, 45, 0, 0, time.UTC)},
		{"tomorrow 08:00", time.Date(2026, 2, 19, 8, 0, 0, 0, time.UTC)},
		{"friday 10:15", time.Date(2026, 2, 20, 10, 15, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, hasTime, err := ParseFrom(tt.input, testNow)
			if err != nil {
				t.Fatalf("ParseFrom(%q): unexpected error: %v", tt.input, err)
			}
			if !hasTime {
				t.Errorf("ParseFrom(%q) reported no time of day", tt.input)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseFrom(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFromDateOnlyIsMidnight(t *testing.T) {
	got, hasTime, err := ParseFrom("tomorrow", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if hasTime {
		t.Error("expected hasTime=false")
	}
	if want := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestParseFromLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2026, 2, 18, 23, 0, 0, 0, loc)
	got, _, err := ParseFrom("tomorrow 09:00", now)
	if err != nil {
		t.Fatal(err)
	}
	if got.Location() != loc || got.Hour() != 9 || got.Day() != 19 {
		t.Errorf("got %s, want 2026-02-19 09:00 in %s", got, loc)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "someday", "+3y", "2026-13-01", "tomorrow 25:00", "+xd"} {
		t.Run(input, func(t *testing.T) {
			if _, _, err := ParseFrom(input, testNow); err == nil {
				t.Errorf("ParseFrom(%q): expected error", input)
			}
		})
	}
}
