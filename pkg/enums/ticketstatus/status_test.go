package ticketstatus

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{"draft", "pending", true},
		{"draft", "cancelled", true},
		{"pending", "preparing", true},
		{"pending", "cancelled", true},
		{"preparing", "ready", true},
		{"preparing", "cancelled", true},
		{"ready", "served", true},
		{"served", "completed", true},
		{"ready", "preparing", false},
		{"pending", "ready", false},
		{"completed", "pending", false},
		{"cancelled", "pending", false},
		{"unknown", "pending", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"To"+tt.to, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestByName(t *testing.T) {
	if s := ByName("preparing"); s == nil || s.Label() != "Preparing" {
		t.Errorf("ByName(preparing) = %v", s)
	}
	if s := ByName("nope"); s != nil {
		t.Errorf("ByName(nope) = %v, want nil", s)
	}
}

func TestBoardMembership(t *testing.T) {
	for _, s := range All {
		active := IsActive(s.Name)
		want := s == Statuses.Pending || s == Statuses.Preparing
		if active != want {
			t.Errorf("IsActive(%q) = %v", s.Name, active)
		}
	}
	if !LeavesBoard("ready") || !LeavesBoard("cancelled") || LeavesBoard("preparing") {
		t.Error("LeavesBoard() mismatch")
	}
}
