// Package models provides canonical type definitions for service API entities.
package models

import "encoding/json"

// ID is an entity identifier. The service emits ids as JSON numbers in some
// endpoints and strings in others; ID decodes both to one string form.
type ID string

// UnmarshalJSON accepts both string and numeric id encodings.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Task represents a task (item).
type Task struct {
	ID        ID     `json:"id"`
	Content   string `json:"content"`
	ProjectID ID     `json:"project_id,omitempty"`
	SectionID ID     `json:"section_id,omitempty"`
	ParentID  ID     `json:"parent_id,omitempty"`
	Priority  int    `json:"priority,omitempty"`
	Due       *Due   `json:"due,omitempty"`
	Completed bool   `json:"is_completed,omitempty"`
}

// Due represents a task due date.
type Due struct {
	Date      string `json:"date"`
	Datetime  string `json:"datetime,omitempty"`
	String    string `json:"string,omitempty"`
	Recurring bool   `json:"is_recurring,omitempty"`
}

// Project represents a project.
type Project struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	ParentID ID     `json:"parent_id,omitempty"`
	Color    string `json:"color,omitempty"`
	Favorite bool   `json:"is_favorite,omitempty"`
}

// Section represents a section within a project.
type Section struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	ProjectID ID     `json:"project_id"`
	Order     int    `json:"order,omitempty"`
}

// Comment represents a comment (note) on a task or project.
type Comment struct {
	ID        ID     `json:"id"`
	Content   string `json:"content"`
	TaskID    ID     `json:"task_id,omitempty"`
	ProjectID ID     `json:"project_id,omitempty"`
	PostedAt  string `json:"posted_at,omitempty"`
}
