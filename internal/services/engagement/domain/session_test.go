package domain

import "testing"

func TestNextNumberWraps(t *testing.T) {
	tests := []struct{ current, total, want int }{
		{1, 4, 2},
		{3, 4, 4},
		{4, 4, 1},
		{1, 1, 1},
	}
	for _, tc := range tests {
		if got := NextNumber(tc.current, tc.total); got != tc.want {
			t.Fatalf("NextNumber(%d, %d) = %d, want %d", tc.current, tc.total, got, tc.want)
		}
	}
}

func TestPreviousNumberWraps(t *testing.T) {
	tests := []struct{ current, total, want int }{
		{1, 4, 4},
		{2, 4, 1},
		{4, 4, 3},
	}
	for _, tc := range tests {
		if got := PreviousNumber(tc.current, tc.total); got != tc.want {
			t.Fatalf("PreviousNumber(%d, %d) = %d, want %d", tc.current, tc.total, got, tc.want)
		}
	}
}

func TestValidNumber(t *testing.T) {
	if ValidNumber(0, 4) || ValidNumber(5, 4) {
		t.Fatal("expected out-of-range numbers to be invalid")
	}
	if !ValidNumber(1, 4) || !ValidNumber(4, 4) {
		t.Fatal("expected boundary numbers to be valid")
	}
}

func TestAcceptsPostsOnlyWhenOpen(t *testing.T) {
	for _, phase := range []Phase{PhaseClosed, PhaseAwaitingCheck, PhaseReported} {
		if (Session{Number: 1, Phase: phase}).AcceptsPosts() {
			t.Fatalf("phase %s should reject posts", phase)
		}
	}
	if !(Session{Number: 1, Phase: PhaseOpen}).AcceptsPosts() {
		t.Fatal("open phase should accept posts")
	}
}
