package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestValidateInstitutionalEmail(t *testing.T) {
	cases := []struct {
		email string
		want  error
	}{
		{"user@utec.edu.pe", nil},
		{"USER@PUCP.EDU.PE", nil},
		{"user@not-edu.com", ErrInstitutionalEmail},
		{"user@gmail.com", ErrInstitutionalEmail},
		{"not-an-email", ErrInvalidEmail},
		{"", ErrInvalidEmail},
	}
	for _, tc := range cases {
		err := ValidateInstitutionalEmail(tc.email, "")
		if !errors.Is(err, tc.want) {
			t.Fatalf("%q: got %v want %v", tc.email, err, tc.want)
		}
	}
	if err := ValidateInstitutionalEmail("a@uni.edu", ".edu"); err != nil {
		t.Fatalf("custom suffix: %v", err)
	}
}

func TestMatchStatusTransitions(t *testing.T) {
	allowed := map[[2]MatchStatus]bool{
		{MatchPending, MatchAccepted}:  true,
		{MatchPending, MatchActive}:    true,
		{MatchPending, MatchRejected}:  true,
		{MatchAccepted, MatchActive}:   true,
		{MatchAccepted, MatchRejected}: true,
		{MatchActive, MatchCompleted}:  true,
	}
	all := []MatchStatus{MatchPending, MatchAccepted, MatchActive, MatchCompleted, MatchRejected}
	for _, from := range all {
		for _, to := range all {
			if got := from.CanTransition(to); got != allowed[[2]MatchStatus{from, to}] {
				t.Fatalf("%s -> %s: got %v", from, to, got)
			}
		}
	}
}

func TestMatchWithStatusCopies(t *testing.T) {
	m := &Match{ID: "m1", Status: MatchPending}
	next, err := m.WithStatus(MatchActive)
	if err != nil {
		t.Fatalf("WithStatus: %v", err)
	}
	if next == m || m.Status != MatchPending || next.Status != MatchActive {
		t.Fatalf("expected a new value, original untouched")
	}
	if _, err := next.WithStatus(MatchPending); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("backwards transition should fail, got %v", err)
	}
}

func TestResponseAction(t *testing.T) {
	if ActionAccept.ResultingStatus() != MatchActive || ActionReject.ResultingStatus() != MatchRejected {
		t.Fatalf("unexpected resulting status")
	}
	if ResponseAction("maybe").Valid() {
		t.Fatalf("unknown action accepted")
	}
}

func TestSessionTransitions(t *testing.T) {
	if !SessionScheduled.CanTransition(SessionCompleted) || !SessionScheduled.CanTransition(SessionCancelled) {
		t.Fatalf("scheduled must resolve")
	}
	if SessionCompleted.CanTransition(SessionCancelled) || SessionCancelled.CanTransition(SessionScheduled) {
		t.Fatalf("terminal states must not move")
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		points, level, next int
	}{
		{0, 1, 2},
		{499, 1, 2},
		{500, 2, 3},
		{2999, 3, 4},
		{10000, 6, 0},
		{25000, 6, 0},
	}
	for _, tc := range cases {
		cur, next := LevelFor(tc.points)
		if cur.Level != tc.level {
			t.Fatalf("points=%d level=%d want %d", tc.points, cur.Level, tc.level)
		}
		if tc.next == 0 && next != nil {
			t.Fatalf("points=%d expected top level", tc.points)
		}
		if tc.next != 0 && (next == nil || next.Level != tc.next) {
			t.Fatalf("points=%d next=%v want %d", tc.points, next, tc.next)
		}
	}
}

func TestAvailabilityNormalized(t *testing.T) {
	a := Availability{Monday: {"10:00-11:00", "08:00-09:00", "10:00-11:00", " "}}
	n := a.Normalized()
	if len(n) != len(Weekdays) {
		t.Fatalf("expected every weekday, got %d", len(n))
	}
	if strings.Join(n[Monday], ",") != "08:00-09:00,10:00-11:00" {
		t.Fatalf("monday=%v", n[Monday])
	}
	if n.TotalSlots() != 2 {
		t.Fatalf("total=%d", n.TotalSlots())
	}
	b, _ := json.Marshal(n)
	if !strings.Contains(string(b), `"sunday":[]`) {
		t.Fatalf("empty days should serialize as empty lists: %s", b)
	}
}

func TestLimits(t *testing.T) {
	if err := ValidateBio(strings.Repeat("a", MaxBioLength+1)); !errors.Is(err, ErrBioTooLong) {
		t.Fatalf("bio: %v", err)
	}
	if err := ValidateMessage("   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("empty message: %v", err)
	}
	if err := ValidateSessionDuration(29); !errors.Is(err, ErrSessionDuration) {
		t.Fatalf("duration: %v", err)
	}
	if err := ValidateSessionDuration(60); err != nil {
		t.Fatalf("duration 60: %v", err)
	}
	if err := ValidateRating(6); !errors.Is(err, ErrRating) {
		t.Fatalf("rating: %v", err)
	}
}
