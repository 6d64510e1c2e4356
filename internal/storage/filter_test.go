package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/google/go-cmp/cmp"
)

func TestValidateSettingKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"pomodoro.focus", false},
		{"calendar.pending_deletes", false},
		{"focus-state", false},
		{"0", false},
		{"", true},
		{".hidden", true},
		{"Upper", true},
		{"with space", true},
		{"a/b", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateSettingKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSettingKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name          string
		offset, limit int
		want          []int
	}{
		{"none", 0, 0, []int{1, 2, 3, 4, 5}},
		{"limit", 0, 2, []int{1, 2}},
		{"offset", 3, 0, []int{4, 5}},
		{"both", 1, 3, []int{2, 3, 4}},
		{"limit past end", 4, 10, []int{5}},
		{"offset past end", 5, 1, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.offset, tt.limit)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Paginate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchEventWindow(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	from, to := day, day.Add(24*time.Hour)
	mk := func(start, end time.Time) event.Event {
		return event.Event{Title: "x", Start: start, End: end}
	}
	tests := []struct {
		name string
		e    event.Event
		want bool
	}{
		{"inside", mk(day.Add(9*time.Hour), day.Add(10*time.Hour)), true},
		{"spans start", mk(day.Add(-time.Hour), day.Add(time.Hour)), true},
		{"ends at from", mk(day.Add(-time.Hour), day), true},
		{"starts at to", mk(to, to.Add(time.Hour)), false},
		{"before", mk(day.Add(-3*time.Hour), day.Add(-2*time.Hour)), false},
		{"zero length inside", mk(day.Add(time.Hour), day.Add(time.Hour)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEvent(tt.e, EventListOptions{From: &from, To: &to})
			if got != tt.want {
				t.Errorf("MatchEvent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateSession(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	good := pomodoro.NewSession(pomodoro.PhaseFocus, "", start, start.Add(25*time.Minute), 25*time.Minute, 25*time.Minute, true)
	if err := ValidateSession(good); err != nil {
		t.Fatalf("ValidateSession(good) = %v", err)
	}

	noKey := good
	noKey.Key = ""
	backwards := good
	backwards.EndedAt = start.Add(-time.Minute)
	for name, ps := range map[string]pomodoro.Session{"no key": noKey, "backwards": backwards} {
		t.Run(name, func(t *testing.T) {
			if err := ValidateSession(ps); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}
