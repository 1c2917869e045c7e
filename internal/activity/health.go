package activity

import (
	"sort"
	"time"

	"github.com/tdq/tdq/internal/config"
)

// Health status tags.
const (
	StatusIdle              = "idle"
	StatusLongPostpones     = "long_postpones"
	StatusFrequentPostpones = "frequent_postpones"
)

// Indicator summarizes one task's activity health.
type Indicator struct {
	LastActivityDays        int      `json:"last_activity_days"`
	DueDateChanges          int      `json:"due_date_changes"`
	TotalPostponedDays      int      `json:"total_postponed_days"`
	AvgPostponeDays         float64  `json:"avg_postpone_days"`
	MaxConsecutivePostpones int      `json:"max_consecutive_postpones"`
	Statuses                []string `json:"statuses,omitempty"`
}

// Thresholds configure when a task gets flagged.
type Thresholds struct {
	// IdleDays flags a task when its last event is older than this.
	IdleDays int
	// PostponeDays flags a task when the average postpone exceeds this.
	PostponeDays float64
	// PostponeStreak flags a task when more than this many postpones land
	// within 24 hours of each other.
	PostponeStreak int
}

// ThresholdsFromConfig builds analyzer thresholds from the health section of
// the loaded configuration.
func ThresholdsFromConfig(hc config.HealthConfig) Thresholds {
	return Thresholds{
		IdleDays:       hc.IdleDays,
		PostponeDays:   hc.PostponeDays,
		PostponeStreak: hc.PostponeStreak,
	}
}

// Analyzer computes health indicators from a task's event history.
type Analyzer struct {
	thresholds Thresholds
	now        func() time.Time
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(t Thresholds) *Analyzer {
	return &Analyzer{thresholds: t, now: time.Now}
}

// Analyze computes the indicator for one task's events. Returns nil when the
// event list is empty: no events means no signal, not a healthy task.
//
// Only forward due-date moves count as postpones. Pulling a date earlier or
// clearing it leaves the counters untouched.
func (a *Analyzer) Analyze(events []Event) *Indicator {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EventDate.Before(sorted[j].EventDate)
	})

	ind := &Indicator{}
	latest := sorted[len(sorted)-1].EventDate
	ind.LastActivityDays = int(a.now().Sub(latest).Hours() / 24)

	var (
		streak       int
		lastPostpone time.Time
	)
	for i := range sorted {
		ev := &sorted[i]
		if ev.EventType != EventUpdated || ev.Extra == nil {
			continue
		}
		oldDue, newDue := ev.Extra.LastDueDate, ev.Extra.DueDate
		if oldDue == nil || newDue == nil || !newDue.After(*oldDue) {
			continue
		}
		ind.DueDateChanges++
		ind.TotalPostponedDays += int(newDue.Sub(*oldDue).Hours() / 24)

		if !lastPostpone.IsZero() && ev.EventDate.Sub(lastPostpone) <= 24*time.Hour {
			streak++
		} else {
			streak = 1
		}
		if streak > ind.MaxConsecutivePostpones {
			ind.MaxConsecutivePostpones = streak
		}
		lastPostpone = ev.EventDate
	}

	if ind.DueDateChanges > 0 {
		ind.AvgPostponeDays = float64(ind.TotalPostponedDays) / float64(ind.DueDateChanges)
	}

	if ind.LastActivityDays > a.thresholds.IdleDays {
		ind.Statuses = append(ind.Statuses, StatusIdle)
	}
	if ind.AvgPostponeDays > a.thresholds.PostponeDays {
		ind.Statuses = append(ind.Statuses, StatusLongPostpones)
	}
	if ind.MaxConsecutivePostpones > a.thresholds.PostponeStreak {
		ind.Statuses = append(ind.Statuses, StatusFrequentPostpones)
	}
	return ind
}

// AttachHealth computes and attaches an indicator to every task node in the
// tree that has at least one of its own events. Nodes scaffolded purely as
// ancestors stay unannotated.
func (a *Analyzer) AttachHealth(tree *Tree) {
	tree.walkItems(func(it *ItemNode) {
		if len(it.ItemEvents) > 0 {
			it.Health = a.Analyze(it.ItemEvents)
		}
	})
}
