package ticketstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	Draft     Status
	Pending   Status
	Preparing Status
	Ready     Status
	Served    Status
	Completed Status
	Cancelled Status
}

var Statuses = Enum{
	Draft:     Status{Name: "draft"},
	Pending:   Status{Name: "pending"},
	Preparing: Status{Name: "preparing"},
	Ready:     Status{Name: "ready"},
	Served:    Status{Name: "served"},
	Completed: Status{Name: "completed"},
	Cancelled: Status{Name: "cancelled"},
}

var All = []Status{
	Statuses.Draft,
	Statuses.Pending,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Served,
	Statuses.Completed,
	Statuses.Cancelled,
}

// transitions lists every allowed edge. Anything absent is rejected.
var transitions = map[string][]string{
	"draft":     {"pending", "cancelled"},
	"pending":   {"preparing", "cancelled"},
	"preparing": {"ready", "cancelled"},
	"ready":     {"served"},
	"served":    {"completed"},
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// CanTransition reports whether a ticket may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next returns the statuses reachable from the given one.
func Next(from string) []Status {
	names := transitions[from]
	out := make([]Status, 0, len(names))
	for _, name := range names {
		out = append(out, Status{Name: name})
	}
	return out
}

// IsActive reports whether a ticket in this status belongs on a station board.
func IsActive(name string) bool {
	return name == Statuses.Pending.Name || name == Statuses.Preparing.Name
}

// LeavesBoard reports whether an update to this status removes the ticket from a board.
func LeavesBoard(name string) bool {
	return name == Statuses.Ready.Name || name == Statuses.Cancelled.Name
}
