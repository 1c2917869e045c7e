package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 12, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func testAnalyzer(now time.Time) *Analyzer {
	a := NewAnalyzer(Thresholds{IdleDays: 30, PostponeDays: 7, PostponeStreak: 3})
	a.now = func() time.Time { return now }
	return a
}

func TestAnalyzeEmptyEvents(t *testing.T) {
	a := testAnalyzer(day(1))
	assert.Nil(t, a.Analyze(nil))
	assert.Nil(t, a.Analyze([]Event{}))
}

func TestAnalyzeSinglePostpone(t *testing.T) {
	events := []Event{
		{ObjectType: ObjectItem, ObjectID: "1", EventType: EventAdded, EventDate: day(10)},
		{ObjectType: ObjectItem, ObjectID: "1", EventType: EventUpdated, EventDate: day(11), Extra: &Extra{
			LastDueDate: datePtr(day(12)),
			DueDate:     datePtr(day(20)),
		}},
		{ObjectType: ObjectItem, ObjectID: "1", EventType: EventCompleted, EventDate: day(21)},
	}

	a := testAnalyzer(day(22))
	ind := a.Analyze(events)
	require.NotNil(t, ind)

	assert.Equal(t, 1, ind.DueDateChanges)
	assert.Equal(t, 8, ind.TotalPostponedDays)
	assert.Equal(t, 8.0, ind.AvgPostponeDays)
	assert.Equal(t, 1, ind.MaxConsecutivePostpones)
	assert.Equal(t, 1, ind.LastActivityDays)
	assert.NotContains(t, ind.Statuses, StatusIdle)
}

func TestAnalyzeIgnoresBackwardAndClearedDueDates(t *testing.T) {
	events := []Event{
		// Moved earlier: not a postpone.
		{ObjectID: "1", EventType: EventUpdated, EventDate: day(2), Extra: &Extra{
			LastDueDate: datePtr(day(20)),
			DueDate:     datePtr(day(10)),
		}},
		// Due date set for the first time: no old value to compare.
		{ObjectID: "1", EventType: EventUpdated, EventDate: day(3), Extra: &Extra{
			DueDate: datePtr(day(15)),
		}},
		// Due date cleared.
		{ObjectID: "1", EventType: EventUpdated, EventDate: day(4), Extra: &Extra{
			LastDueDate: datePtr(day(15)),
		}},
		// Content-only update.
		{ObjectID: "1", EventType: EventUpdated, EventDate: day(5), Extra: &Extra{
			Content: "renamed",
		}},
	}

	ind := testAnalyzer(day(6)).Analyze(events)
	require.NotNil(t, ind)
	assert.Equal(t, 0, ind.DueDateChanges)
	assert.Equal(t, 0, ind.TotalPostponedDays)
	assert.Equal(t, 0.0, ind.AvgPostponeDays)
	assert.Equal(t, 0, ind.MaxConsecutivePostpones)
}

func TestAnalyzeIdleStatus(t *testing.T) {
	events := []Event{
		{ObjectID: "1", EventType: EventAdded, EventDate: day(1)},
	}

	ind := testAnalyzer(day(1).AddDate(0, 0, 45)).Analyze(events)
	require.NotNil(t, ind)
	assert.Equal(t, 45, ind.LastActivityDays)
	assert.Contains(t, ind.Statuses, StatusIdle)
}

func TestAnalyzePostponeStreak(t *testing.T) {
	// Four postpones, each within 24h of the previous one.
	base := day(10)
	var events []Event
	for i := 0; i < 4; i++ {
		events = append(events, Event{
			ObjectID:  "1",
			EventType: EventUpdated,
			EventDate: base.Add(time.Duration(i) * 6 * time.Hour),
			Extra: &Extra{
				LastDueDate: datePtr(day(20 + i)),
				DueDate:     datePtr(day(21 + i)),
			},
		})
	}

	ind := testAnalyzer(base.AddDate(0, 0, 2)).Analyze(events)
	require.NotNil(t, ind)
	assert.Equal(t, 4, ind.DueDateChanges)
	assert.Equal(t, 4, ind.MaxConsecutivePostpones)
	assert.Contains(t, ind.Statuses, StatusFrequentPostpones)
}

func TestAnalyzeStreakResetsAfterGap(t *testing.T) {
	events := []Event{
		{ObjectID: "1", EventType: EventUpdated, EventDate: day(1), Extra: &Extra{
			LastDueDate: datePtr(day(10)), DueDate: datePtr(day(11)),
		}},
		{ObjectID: "1", EventType: EventUpdated, EventDate: day(2), Extra: &Extra{
			LastDueDate: datePtr(day(11)), DueDate: datePtr(day(12)),
		}},
		// Ten days later: streak resets.
		{ObjectID: "1", EventType: EventUpdated, EventDate: day(12), Extra: &Extra{
			LastDueDate: datePtr(day(12)), DueDate: datePtr(day(13)),
		}},
	}

	ind := testAnalyzer(day(13)).Analyze(events)
	require.NotNil(t, ind)
	assert.Equal(t, 3, ind.DueDateChanges)
	assert.Equal(t, 2, ind.MaxConsecutivePostpones)
	assert.NotContains(t, ind.Statuses, StatusFrequentPostpones)
}

func TestAnalyzeLongPostpones(t *testing.T) {
	events := []Event{
		{ObjectID: "1", EventType: EventUpdated, EventDate: day(1), Extra: &Extra{
			LastDueDate: datePtr(day(5)), DueDate: datePtr(day(15)),
		}},
	}

	ind := testAnalyzer(day(2)).Analyze(events)
	require.NotNil(t, ind)
	assert.Equal(t, 10.0, ind.AvgPostponeDays)
	assert.Contains(t, ind.Statuses, StatusLongPostpones)
}

func TestAnalyzeSortsUnorderedEvents(t *testing.T) {
	// Latest event first: last-activity must still use the newest date.
	events := []Event{
		{ObjectID: "1", EventType: EventCompleted, EventDate: day(20)},
		{ObjectID: "1", EventType: EventAdded, EventDate: day(1)},
	}

	ind := testAnalyzer(day(25)).Analyze(events)
	require.NotNil(t, ind)
	assert.Equal(t, 5, ind.LastActivityDays)
}

func TestAttachHealth(t *testing.T) {
	tree := NewTree()
	project := newProjectNode("p1")
	tree.Projects["p1"] = project

	withEvents := newItemNode("t1")
	withEvents.ItemEvents = []Event{{ObjectID: "t1", EventType: EventAdded, EventDate: day(1)}}
	project.Items["t1"] = withEvents

	// Scaffolded ancestor with no events of its own.
	scaffold := newItemNode("t2")
	sub := newItemNode("t3")
	sub.ItemEvents = []Event{{ObjectID: "t3", EventType: EventAdded, EventDate: day(2)}}
	scaffold.SubItems["t3"] = sub
	project.Items["t2"] = scaffold

	testAnalyzer(day(5)).AttachHealth(tree)

	assert.NotNil(t, withEvents.Health)
	assert.Nil(t, scaffold.Health)
	assert.NotNil(t, sub.Health)
}
