// Package activity reconstructs the service's flat audit-event stream into a
// hierarchical project/section/task tree and derives per-task health metrics.
package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tdq/tdq/internal/models"
)

// ObjectType identifies what kind of entity an event describes.
type ObjectType string

const (
	ObjectProject ObjectType = "project"
	ObjectSection ObjectType = "section"
	ObjectItem    ObjectType = "item"
	ObjectNote    ObjectType = "note"
)

// EventType identifies the transition an event records.
type EventType string

const (
	EventAdded       EventType = "added"
	EventUpdated     EventType = "updated"
	EventCompleted   EventType = "completed"
	EventUncompleted EventType = "uncompleted"
	EventDeleted     EventType = "deleted"
	EventArchived    EventType = "archived"
	EventUnarchived  EventType = "unarchived"
)

// Event is one immutable audit-log record. Events are created by the fetcher
// and read-only afterward.
type Event struct {
	ObjectType      ObjectType `json:"object_type"`
	ObjectID        string     `json:"object_id"`
	EventType       EventType  `json:"event_type"`
	EventDate       time.Time  `json:"event_date"`
	ParentProjectID string     `json:"parent_project_id,omitempty"`
	ParentItemID    string     `json:"parent_item_id,omitempty"`
	Extra           *Extra     `json:"extra_data,omitempty"`
}

// Extra is the typed form of the event's extra_data payload. The wire format
// is an open bag of fields; only the known ones are decoded, at ingestion,
// rather than accessed ad hoc downstream.
type Extra struct {
	Content       string     `json:"content,omitempty"`
	LastContent   string     `json:"last_content,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	LastDueDate   *time.Time `json:"last_due_date,omitempty"`
	Priority      int        `json:"priority,omitempty"`
	LastPriority  int        `json:"last_priority,omitempty"`
	SectionID     string     `json:"section_id,omitempty"`
	LastSectionID string     `json:"last_section_id,omitempty"`
	ParentID      string     `json:"parent_id,omitempty"`
	LastParentID  string     `json:"last_parent_id,omitempty"`
}

// Key returns the composite dedup key. The event date is keyed by the parsed
// instant so textually different encodings of the same timestamp collide.
func (e *Event) Key() string {
	return string(e.ObjectType) + "|" + e.ObjectID + "|" + string(e.EventType) + "|" +
		e.EventDate.UTC().Format(time.RFC3339Nano)
}

// wireEvent is the raw activity-endpoint representation. Identifier fields
// use models.ID so numeric and string encodings normalize to one form.
type wireEvent struct {
	ObjectType      string          `json:"object_type"`
	ObjectID        models.ID       `json:"object_id"`
	EventType       string          `json:"event_type"`
	EventDate       string          `json:"event_date"`
	ParentProjectID models.ID       `json:"parent_project_id"`
	ParentItemID    models.ID       `json:"parent_item_id"`
	ExtraData       json.RawMessage `json:"extra_data"`
}

// decodeEvent converts a wire event into the normalized Event form.
func decodeEvent(w wireEvent) (Event, error) {
	date, err := parseEventTime(w.EventDate)
	if err != nil {
		return Event{}, fmt.Errorf("event %s/%s: bad event_date %q: %w", w.ObjectType, w.ObjectID, w.EventDate, err)
	}

	extra, err := decodeExtra(w.ExtraData)
	if err != nil {
		return Event{}, fmt.Errorf("event %s/%s: %w", w.ObjectType, w.ObjectID, err)
	}

	return Event{
		ObjectType:      ObjectType(w.ObjectType),
		ObjectID:        w.ObjectID.String(),
		EventType:       EventType(w.EventType),
		EventDate:       date,
		ParentProjectID: w.ParentProjectID.String(),
		ParentItemID:    w.ParentItemID.String(),
		Extra:           extra,
	}, nil
}

// wireExtra mirrors the known extra_data fields. Ids again arrive as numbers
// or strings; due dates as full timestamps or bare dates.
type wireExtra struct {
	Content       string    `json:"content"`
	LastContent   string    `json:"last_content"`
	DueDate       string    `json:"due_date"`
	LastDueDate   string    `json:"last_due_date"`
	Priority      int       `json:"priority"`
	LastPriority  int       `json:"last_priority"`
	SectionID     models.ID `json:"section_id"`
	LastSectionID models.ID `json:"last_section_id"`
	ParentID      models.ID `json:"parent_id"`
	LastParentID  models.ID `json:"last_parent_id"`
}

func decodeExtra(raw json.RawMessage) (*Extra, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var w wireExtra
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("bad extra_data: %w", err)
	}

	extra := &Extra{
		Content:       w.Content,
		LastContent:   w.LastContent,
		Priority:      w.Priority,
		LastPriority:  w.LastPriority,
		SectionID:     w.SectionID.String(),
		LastSectionID: w.LastSectionID.String(),
		ParentID:      w.ParentID.String(),
		LastParentID:  w.LastParentID.String(),
	}

	if w.DueDate != "" {
		t, err := parseEventTime(w.DueDate)
		if err != nil {
			return nil, fmt.Errorf("bad extra_data.due_date %q: %w", w.DueDate, err)
		}
		extra.DueDate = &t
	}
	if w.LastDueDate != "" {
		t, err := parseEventTime(w.LastDueDate)
		if err != nil {
			return nil, fmt.Errorf("bad extra_data.last_due_date %q: %w", w.LastDueDate, err)
		}
		extra.LastDueDate = &t
	}

	if *extra == (Extra{}) {
		return nil, nil
	}
	return extra, nil
}

// parseEventTime accepts the timestamp forms the service emits: RFC3339
// (with or without sub-seconds) and bare dates.
func parseEventTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp")
}
