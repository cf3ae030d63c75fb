package types

import "testing"

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusBacklog, StatusTodo},
		{StatusTodo, StatusInProgress},
		{StatusTodo, StatusRejected},
		{StatusInProgress, StatusPendingReview},
		{StatusPendingReview, StatusInProgress},
		{StatusPendingReview, StatusDone},
	}
	allowedSet := make(map[[2]Status]bool)
	for _, a := range allowed {
		allowedSet[[2]Status{a.from, a.to}] = true
		if !a.from.CanTransitionTo(a.to) {
			t.Errorf("CanTransitionTo(%s -> %s) = false, want true", a.from, a.to)
		}
	}

	// Totality: every other pair, same-status included, is denied.
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			if allowedSet[[2]Status{from, to}] {
				continue
			}
			if from.CanTransitionTo(to) {
				t.Errorf("CanTransitionTo(%s -> %s) = true, want false", from, to)
			}
		}
	}
}

func TestFinalStatuses(t *testing.T) {
	for _, s := range AllStatuses() {
		wantFinal := s == StatusDone || s == StatusRejected
		if s.IsFinal() != wantFinal {
			t.Errorf("IsFinal(%s) = %v, want %v", s, s.IsFinal(), wantFinal)
		}
		if wantFinal && len(s.ValidNext()) != 0 {
			t.Errorf("ValidNext(%s) = %v, want empty", s, s.ValidNext())
		}
	}
}

func TestValidNextOrder(t *testing.T) {
	got := StatusPendingReview.ValidNext()
	want := []Status{StatusInProgress, StatusDone}
	if len(got) != len(want) {
		t.Fatalf("ValidNext(pending_review) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ValidNext(pending_review)[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestStatusValidity(t *testing.T) {
	for _, s := range AllStatuses() {
		if !s.IsValid() {
			t.Errorf("IsValid(%s) = false, want true", s)
		}
	}
	for _, bad := range []Status{"", "open", "blocked", "DONE"} {
		if bad.IsValid() {
			t.Errorf("IsValid(%q) = true, want false", bad)
		}
	}
	if Status("bogus").IsFinal() {
		t.Error("unknown status must not report final")
	}
}

func TestIsComplete(t *testing.T) {
	for _, s := range AllStatuses() {
		want := s == StatusDone || s == StatusRejected
		if s.IsComplete() != want {
			t.Errorf("IsComplete(%s) = %v, want %v", s, s.IsComplete(), want)
		}
	}
}
