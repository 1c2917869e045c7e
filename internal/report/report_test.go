package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tdq/tdq/internal/activity"
)

func date(d int) time.Time {
	return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC)
}

func datePtr(d int) *time.Time {
	t := date(d)
	return &t
}

func fixtureTree() *activity.Tree {
	tree := activity.NewTree()

	p := &activity.ProjectNode{
		ID:            "100",
		Sections:      map[string]*activity.SectionNode{},
		Items:         map[string]*activity.ItemNode{},
		ChildProjects: map[string]*activity.ProjectNode{},
	}
	p.ProjectEvents = []activity.Event{{
		ObjectType: activity.ObjectProject,
		ObjectID:   "100",
		EventType:  activity.EventAdded,
		EventDate:  date(1),
	}}

	task := &activity.ItemNode{
		ID:       "1",
		SubItems: map[string]*activity.ItemNode{},
	}
	task.ItemEvents = []activity.Event{
		{
			ObjectType: activity.ObjectItem,
			ObjectID:   "1",
			EventType:  activity.EventAdded,
			EventDate:  date(2),
			Extra:      &activity.Extra{Content: "Draft proposal"},
		},
		{
			ObjectType: activity.ObjectItem,
			ObjectID:   "1",
			EventType:  activity.EventUpdated,
			EventDate:  date(5),
			Extra: &activity.Extra{
				DueDate:     datePtr(20),
				LastDueDate: datePtr(10),
			},
		},
	}
	task.Comments = []activity.Event{{
		ObjectType:   activity.ObjectNote,
		ObjectID:     "9",
		EventType:    activity.EventAdded,
		EventDate:    date(6),
		ParentItemID: "1",
		Extra:        &activity.Extra{Content: "looks good"},
	}}
	task.Health = &activity.Indicator{
		DueDateChanges: 1,
		Statuses:       []string{activity.StatusLongPostpones},
	}

	sec := &activity.SectionNode{
		ID:    "7",
		Items: map[string]*activity.ItemNode{"1": task},
	}
	p.Sections["7"] = sec

	tree.Projects["100"] = p
	return tree
}

func TestRenderEmptyTree(t *testing.T) {
	r := New(nil, false)
	assert.Equal(t, "No activity.\n", r.Render(context.Background(), activity.NewTree()))
}

func TestRenderPlainText(t *testing.T) {
	r := New(nil, false)
	out := r.Render(context.Background(), fixtureTree())

	assert.Contains(t, out, "Project 100\n")
	assert.Contains(t, out, "Section 7")
	assert.Contains(t, out, "Task 1: Draft proposal [long_postpones]")
	assert.Contains(t, out, "2025-03-05 updated due 2025-03-10 -> 2025-03-20")
	assert.Contains(t, out, "comment added: looks good")
}

func TestRenderIndentsByDepth(t *testing.T) {
	r := New(nil, false)
	out := r.Render(context.Background(), fixtureTree())

	var taskLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Task 1") {
			taskLine = line
			break
		}
	}
	// Project at depth 0, section at 1, task at 2.
	assert.True(t, strings.HasPrefix(taskLine, "    Task 1"), "got %q", taskLine)
}

func TestRenderUnassignedEvents(t *testing.T) {
	tree := activity.NewTree()
	tree.OtherEvents = []activity.Event{{
		ObjectType: activity.ObjectItem,
		ObjectID:   "99",
		EventType:  activity.EventDeleted,
		EventDate:  date(3),
	}}

	r := New(nil, false)
	out := r.Render(context.Background(), tree)
	assert.Contains(t, out, "Unassigned events")
	assert.Contains(t, out, "2025-03-03 deleted")
}

func TestRenderTaskWithoutContentOrHealth(t *testing.T) {
	tree := activity.NewTree()
	p := &activity.ProjectNode{
		ID: "1",
		Items: map[string]*activity.ItemNode{
			"5": {
				ID: "5",
				ItemEvents: []activity.Event{{
					ObjectType: activity.ObjectItem,
					ObjectID:   "5",
					EventType:  activity.EventCompleted,
					EventDate:  date(4),
				}},
			},
		},
		Sections:      map[string]*activity.SectionNode{},
		ChildProjects: map[string]*activity.ProjectNode{},
	}
	tree.Projects["1"] = p

	r := New(nil, false)
	out := r.Render(context.Background(), tree)
	assert.Contains(t, out, "Task 5\n")
	assert.NotContains(t, out, "[")
}

func TestMarkdownReport(t *testing.T) {
	r := New(nil, true)
	out := r.Markdown(context.Background(), fixtureTree())

	assert.True(t, strings.HasPrefix(out, "# Activity report\n"))
	assert.Contains(t, out, "## Project 100\n")
	assert.Contains(t, out, "```\n")
	// Markdown body is always plain, even on a styled renderer.
	assert.NotContains(t, out, "\x1b[")
}

func TestMarkdownEmptyTree(t *testing.T) {
	r := New(nil, false)
	out := r.Markdown(context.Background(), activity.NewTree())
	assert.Contains(t, out, "No activity.")
}

func TestEventDetailVariants(t *testing.T) {
	tests := []struct {
		name  string
		extra *activity.Extra
		typ   activity.EventType
		want  string
	}{
		{"no extra", nil, activity.EventUpdated, ""},
		{"due change", &activity.Extra{DueDate: datePtr(20), LastDueDate: datePtr(10)},
			activity.EventUpdated, " due 2025-03-10 -> 2025-03-20"},
		{"rename", &activity.Extra{Content: "B", LastContent: "A"},
			activity.EventUpdated, ` renamed "A" -> "B"`},
		{"added with content", &activity.Extra{Content: "New task"},
			activity.EventAdded, ` "New task"`},
		{"priority change", &activity.Extra{Priority: 4, LastPriority: 1},
			activity.EventUpdated, " priority 1 -> 4"},
		{"content only update", &activity.Extra{Content: "Same"},
			activity.EventUpdated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := activity.Event{EventType: tt.typ, Extra: tt.extra}
			assert.Equal(t, tt.want, eventDetail(&ev))
		})
	}
}

func TestLatestContentPicksNewest(t *testing.T) {
	events := []activity.Event{
		{EventDate: date(9), Extra: &activity.Extra{Content: "Newest"}},
		{EventDate: date(1), Extra: &activity.Extra{Content: "Oldest"}},
		{EventDate: date(5)},
	}
	assert.Equal(t, "Newest", latestContent(events))
	assert.Equal(t, "", latestContent(nil))
}
