package kitchen

import (
	"context"
	"time"

	"github.com/appetiteclub/pos/pkg/clock"
)

const DefaultEscalationInterval = 10 * time.Second

type Level string

const (
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

func (l Level) rank() int {
	switch l {
	case LevelCritical:
		return 2
	case LevelWarning:
		return 1
	default:
		return 0
	}
}

// Severity derives the escalation level of a ticket from its age in whole
// minutes, rounded down. A ticket stamped in the future is younger than zero
// minutes and never escalates. A nil rule never escalates.
func Severity(now, createdAt time.Time, rule *TimingRule) Level {
	if rule == nil {
		return LevelNormal
	}

	elapsed := floorMinutes(now.Sub(createdAt))

	if rule.CriticalMin != nil && elapsed >= *rule.CriticalMin {
		return LevelCritical
	}
	if rule.WarningMin != nil && elapsed >= *rule.WarningMin {
		return LevelWarning
	}
	return LevelNormal
}

func floorMinutes(d time.Duration) int {
	m := d / time.Minute
	if d < 0 && d%time.Minute != 0 {
		m--
	}
	return int(m)
}

// RuleSet indexes the timing rules of one station by category.
type RuleSet map[string]TimingRule

func NewRuleSet(rules []TimingRule) RuleSet {
	rs := make(RuleSet, len(rules))
	for _, r := range rules {
		rs[r.Category] = r
	}
	return rs
}

func (rs RuleSet) For(category string) *TimingRule {
	r, ok := rs[category]
	if !ok {
		return nil
	}
	return &r
}

// TicketSeverity is the most severe level across the categories on a ticket.
func (rs RuleSet) TicketSeverity(now time.Time, t Ticket) Level {
	level := LevelNormal
	for _, category := range t.Categories() {
		l := Severity(now, t.CreatedAt, rs.For(category))
		if l.rank() > level.rank() {
			level = l
		}
	}
	return level
}

// Escalator emits wall-clock ticks on a fixed interval so severities can be
// recomputed independently of the change feed.
type Escalator struct {
	clock    clock.Clock
	interval time.Duration
}

func NewEscalator(c clock.Clock, interval time.Duration) *Escalator {
	if c == nil {
		c = clock.Real()
	}
	if interval <= 0 {
		interval = DefaultEscalationInterval
	}
	return &Escalator{clock: c, interval: interval}
}

// Run delivers ticks on out until ctx is cancelled. A tick is dropped when the
// receiver has not consumed the previous one.
func (e *Escalator) Run(ctx context.Context, out chan<- time.Time) {
	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			select {
			case out <- now:
			default:
			}
		}
	}
}
