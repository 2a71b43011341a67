package domain

import "testing"

func TestCanTransitionLifecyclePath(t *testing.T) {
	path := []string{StatusNew, StatusAssigned, StatusInProgress, StatusQuoteReady, StatusQuoted, StatusClosedWon, StatusArchived}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransitionRejectsIllegalEdges(t *testing.T) {
	cases := []struct{ from, to string }{
		{StatusNew, StatusClosedWon},
		{StatusNew, StatusQuoted},
		{StatusArchived, StatusNew},
		{StatusMerged, StatusAssigned},
		{StatusClosedWon, StatusInProgress},
	}
	for _, tc := range cases {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatusesHaveNoTargets(t *testing.T) {
	for _, status := range []string{StatusArchived, StatusMerged} {
		if !IsTerminal(status) {
			t.Errorf("%s should be terminal", status)
		}
		if targets := AllowedTargets(status); len(targets) != 0 {
			t.Errorf("%s should have no allowed targets, got %v", status, targets)
		}
	}
}

func TestRequiresAssignee(t *testing.T) {
	if !RequiresAssignee(StatusAssigned) || !RequiresAssignee(StatusInProgress) {
		t.Fatal("assigned and in_progress must require an assignee")
	}
	if RequiresAssignee(StatusNew) || RequiresAssignee(StatusClosedLost) {
		t.Fatal("new and closed_lost must not require an assignee")
	}
}

func TestIsQuotable(t *testing.T) {
	for _, status := range []string{StatusAssigned, StatusInProgress, StatusQuoteReady} {
		if !IsQuotable(status) {
			t.Errorf("%s should be quotable", status)
		}
	}
	for _, status := range []string{StatusNew, StatusQuoted, StatusClosedWon, StatusArchived, StatusMerged} {
		if IsQuotable(status) {
			t.Errorf("%s should not be quotable", status)
		}
	}
}

func TestEscalatePriority(t *testing.T) {
	cases := []struct{ in, want string }{
		{PriorityLow, PriorityMedium},
		{PriorityMedium, PriorityHigh},
		{PriorityHigh, PriorityUrgent},
		{PriorityUrgent, PriorityUrgent},
		{"bogus", "bogus"},
	}
	for _, tc := range cases {
		if got := EscalatePriority(tc.in); got != tc.want {
			t.Errorf("EscalatePriority(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMoreUrgent(t *testing.T) {
	if !MoreUrgent(PriorityUrgent, PriorityHigh) {
		t.Fatal("urgent should outrank high")
	}
	if MoreUrgent(PriorityLow, PriorityLow) {
		t.Fatal("equal priorities are not strictly more urgent")
	}
	if MoreUrgent("bogus", PriorityLow) {
		t.Fatal("unknown priorities sort last")
	}
}

func TestIsValidStatusCoversWholeVocabulary(t *testing.T) {
	for _, status := range []string{
		StatusNew, StatusAssigned, StatusInProgress, StatusQuoteReady,
		StatusQuoted, StatusClosedWon, StatusClosedLost, StatusArchived, StatusMerged,
	} {
		if !IsValidStatus(status) {
			t.Errorf("%s should be a valid status", status)
		}
	}
	if IsValidStatus("on_hold") {
		t.Error("unknown statuses must be rejected")
	}
}
