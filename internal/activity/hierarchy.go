package activity

import (
	"context"
	"net/url"

	"github.com/tdq/tdq/internal/api"
	"github.com/tdq/tdq/internal/models"
)

// hierarchyRecord is one task's current placement.
type hierarchyRecord struct {
	parentID  string
	sectionID string
	projectID string
}

// Snapshot is a point-in-time index of current task → parent/section/project
// relationships, built once per aggregation run from the task listing and
// never refreshed mid-run. Unknown ids resolve to "no hierarchy information"
// rather than erroring; the tree builder falls back to project-level
// placement.
type Snapshot struct {
	items map[string]hierarchyRecord
}

// BuildSnapshot fetches the current task listing, optionally scoped to one
// project, and indexes placement by normalized task id.
func BuildSnapshot(ctx context.Context, client *api.Client, projectID string) (*Snapshot, error) {
	q := url.Values{}
	if projectID != "" {
		q.Set("project_id", projectID)
	}
	resp, err := client.GetQuery(ctx, "/api/v1/tasks", q)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := resp.UnmarshalData(&tasks); err != nil {
		return nil, err
	}

	snap := &Snapshot{items: make(map[string]hierarchyRecord, len(tasks))}
	for _, t := range tasks {
		snap.items[t.ID.String()] = hierarchyRecord{
			parentID:  t.ParentID.String(),
			sectionID: t.SectionID.String(),
			projectID: t.ProjectID.String(),
		}
	}
	return snap, nil
}

// emptySnapshot returns a snapshot with no records, used when hierarchy
// information is unavailable.
func emptySnapshot() *Snapshot {
	return &Snapshot{items: make(map[string]hierarchyRecord)}
}

// Known reports whether the snapshot has a record for the task.
func (s *Snapshot) Known(itemID string) bool {
	_, ok := s.items[itemID]
	return ok
}

// ParentOf returns the task's current parent task id, if any.
func (s *Snapshot) ParentOf(itemID string) (string, bool) {
	rec, ok := s.items[itemID]
	if !ok || rec.parentID == "" {
		return "", false
	}
	return rec.parentID, true
}

// SectionOf returns the task's current section id, if any.
func (s *Snapshot) SectionOf(itemID string) (string, bool) {
	rec, ok := s.items[itemID]
	if !ok || rec.sectionID == "" {
		return "", false
	}
	return rec.sectionID, true
}

// ProjectOf returns the task's current project id, if any.
func (s *Snapshot) ProjectOf(itemID string) (string, bool) {
	rec, ok := s.items[itemID]
	if !ok || rec.projectID == "" {
		return "", false
	}
	return rec.projectID, true
}

// Len returns the number of indexed tasks.
func (s *Snapshot) Len() int {
	return len(s.items)
}
