package models

import "testing"

func TestParseItemState(t *testing.T) {
	valid := []string{"NotStarted", "InProgress", "Complete"}
	for _, s := range valid {
		if _, ok := ParseItemState(s); !ok {
			t.Errorf("expected %q to be a valid state", s)
		}
	}

	invalid := []string{"", "Done", "notstarted", "Complete "}
	for _, s := range invalid {
		if _, ok := ParseItemState(s); ok {
			t.Errorf("expected %q to be an invalid state", s)
		}
	}
}

func TestItemStateCanAdvanceTo(t *testing.T) {
	tests := []struct {
		from ItemState
		to   ItemState
		want bool
	}{
		// forward
		{StateNotStarted, StateInProgress, true},
		{StateNotStarted, StateComplete, true},
		{StateInProgress, StateComplete, true},
		// re-setting the same state is a no-op, not an error
		{StateNotStarted, StateNotStarted, true},
		{StateInProgress, StateInProgress, true},
		{StateComplete, StateComplete, true},
		// backward is never allowed
		{StateInProgress, StateNotStarted, false},
		{StateComplete, StateInProgress, false},
		{StateComplete, StateNotStarted, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanAdvanceTo(tt.to); got != tt.want {
			t.Errorf("%s.CanAdvanceTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
