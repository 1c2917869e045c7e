// Package names provides name resolution for projects and sections, and
// builds human-readable project paths for reports. Resolution priority:
// 1. Numeric/opaque ID passthrough
// 2. Exact match (case-sensitive)
// 3. Case-insensitive match
// 4. Partial match (contains)
package names

import (
	"context"
	"strings"
	"sync"

	"github.com/tdq/tdq/internal/api"
	"github.com/tdq/tdq/internal/models"
	"github.com/tdq/tdq/internal/output"
)

// Resolver resolves names to IDs and builds project paths.
type Resolver struct {
	client *api.Client

	// Session-scoped cache
	mu       sync.RWMutex
	projects []models.Project
	sections map[string][]models.Section // keyed by project ID ("" = all)
}

// NewResolver creates a new name resolver.
func NewResolver(client *api.Client) *Resolver {
	return &Resolver{
		client:   client,
		sections: make(map[string][]models.Section),
	}
}

// ResolveProject resolves a project name or ID to an ID.
// Returns the ID and the project name for display.
func (r *Resolver) ResolveProject(ctx context.Context, input string) (string, string, error) {
	projects, err := r.getProjects(ctx)
	if err != nil {
		return "", "", err
	}

	// ID passthrough
	for _, p := range projects {
		if p.ID.String() == input {
			return input, p.Name, nil
		}
	}
	if isNumeric(input) {
		// Unknown numeric ID - pass through, let the API validate
		return input, "", nil
	}

	match, matches := resolve(input, projects, func(p models.Project) string { return p.Name })
	if match != nil {
		return match.ID.String(), match.Name, nil
	}

	if len(matches) > 1 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return "", "", output.ErrAmbiguous("project", names)
	}

	suggestions := suggest(input, projects, func(p models.Project) string { return p.Name })
	if len(suggestions) > 0 {
		return "", "", output.ErrNotFoundHint("Project", input, "Did you mean: "+strings.Join(suggestions, ", "))
	}
	return "", "", output.ErrNotFound("Project", input)
}

// ResolveSection resolves a section name or ID to an ID, optionally scoped
// to one project. Returns the ID and the section name for display.
func (r *Resolver) ResolveSection(ctx context.Context, input, projectID string) (string, string, error) {
	sections, err := r.getSections(ctx, projectID)
	if err != nil {
		return "", "", err
	}

	for _, s := range sections {
		if s.ID.String() == input {
			return input, s.Name, nil
		}
	}
	if isNumeric(input) {
		return input, "", nil
	}

	match, matches := resolve(input, sections, func(s models.Section) string { return s.Name })
	if match != nil {
		return match.ID.String(), match.Name, nil
	}

	if len(matches) > 1 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return "", "", output.ErrAmbiguous("section", names)
	}

	suggestions := suggest(input, sections, func(s models.Section) string { return s.Name })
	if len(suggestions) > 0 {
		return "", "", output.ErrNotFoundHint("Section", input, "Did you mean: "+strings.Join(suggestions, ", "))
	}
	return "", "", output.ErrNotFound("Section", input)
}

// ProjectName returns the display name for a project id, or "" if unknown.
func (r *Resolver) ProjectName(ctx context.Context, id string) string {
	projects, err := r.getProjects(ctx)
	if err != nil {
		return ""
	}
	for _, p := range projects {
		if p.ID.String() == id {
			return p.Name
		}
	}
	return ""
}

// ProjectPath returns the full "Parent / Child" path for a project id, built
// from the project listing's parent links. Unknown ids yield "#<id>".
func (r *Resolver) ProjectPath(ctx context.Context, id string) string {
	projects, err := r.getProjects(ctx)
	if err != nil {
		return "#" + id
	}

	byID := make(map[string]models.Project, len(projects))
	for _, p := range projects {
		byID[p.ID.String()] = p
	}

	var parts []string
	cur := id
	for depth := 0; depth < 25; depth++ { // cycle guard
		p, ok := byID[cur]
		if !ok {
			if len(parts) == 0 {
				return "#" + id
			}
			break
		}
		parts = append([]string{p.Name}, parts...)
		if p.ParentID == "" {
			break
		}
		cur = p.ParentID.String()
	}
	return strings.Join(parts, " / ")
}

// ClearCache clears the session cache.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = nil
	r.sections = make(map[string][]models.Section)
}

// Data fetching with caching

func (r *Resolver) getProjects(ctx context.Context) ([]models.Project, error) {
	r.mu.RLock()
	if r.projects != nil {
		defer r.mu.RUnlock()
		return r.projects, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if r.projects != nil {
		return r.projects, nil
	}

	resp, err := r.client.Get(ctx, "/api/v1/projects")
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	if err := resp.UnmarshalData(&projects); err != nil {
		return nil, err
	}

	r.projects = projects
	return projects, nil
}

func (r *Resolver) getSections(ctx context.Context, projectID string) ([]models.Section, error) {
	r.mu.RLock()
	if sections, ok := r.sections[projectID]; ok {
		defer r.mu.RUnlock()
		return sections, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if sections, ok := r.sections[projectID]; ok {
		return sections, nil
	}

	path := "/api/v1/sections"
	if projectID != "" {
		path += "?project_id=" + projectID
	}
	resp, err := r.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var sections []models.Section
	if err := resp.UnmarshalData(&sections); err != nil {
		return nil, err
	}

	r.sections[projectID] = sections
	return sections, nil
}

// Resolution helpers

// resolve performs name resolution in priority order:
// 1. Exact match (case-sensitive)
// 2. Case-insensitive match
// 3. Partial match (contains)
// Returns the single match if unambiguous, or all partial matches if ambiguous.
func resolve[T any](input string, items []T, name func(T) string) (*T, []T) {
	inputLower := strings.ToLower(input)

	// Phase 1: Exact match
	for i := range items {
		if name(items[i]) == input {
			return &items[i], nil
		}
	}

	// Phase 2: Case-insensitive match
	var caseMatches []T
	for i := range items {
		if strings.ToLower(name(items[i])) == inputLower {
			caseMatches = append(caseMatches, items[i])
		}
	}
	if len(caseMatches) == 1 {
		return &caseMatches[0], nil
	}
	if len(caseMatches) > 1 {
		return nil, caseMatches
	}

	// Phase 3: Partial match (contains)
	var partialMatches []T
	for i := range items {
		if strings.Contains(strings.ToLower(name(items[i])), inputLower) {
			partialMatches = append(partialMatches, items[i])
		}
	}
	if len(partialMatches) == 1 {
		return &partialMatches[0], nil
	}
	return nil, partialMatches
}

// suggest returns up to 3 suggestions for similar names.
func suggest[T any](input string, items []T, getName func(T) string) []string {
	inputLower := strings.ToLower(input)
	var suggestions []string

	for _, item := range items {
		name := getName(item)
		nameLower := strings.ToLower(name)

		// Common prefix of at least 2 chars, or a shared word
		commonLen := 0
		for i := 0; i < len(inputLower) && i < len(nameLower); i++ {
			if inputLower[i] == nameLower[i] {
				commonLen++
			} else {
				break
			}
		}

		if commonLen >= 2 || containsWord(nameLower, inputLower) {
			suggestions = append(suggestions, name)
			if len(suggestions) >= 3 {
				break
			}
		}
	}

	return suggestions
}

// containsWord checks if haystack contains any word from needle.
func containsWord(haystack, needle string) bool {
	words := strings.Fields(needle)
	for _, word := range words {
		if len(word) >= 2 && strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
