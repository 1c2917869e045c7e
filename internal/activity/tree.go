package activity

// Tree is the aggregated activity hierarchy. Nodes are created lazily by the
// builder and mutated only during the single aggregation pass; the tree is
// discarded after rendering.
type Tree struct {
	Projects map[string]*ProjectNode `json:"projects"`
	// OtherEvents holds events whose owning project could not be resolved.
	// They are never dropped silently.
	OtherEvents []Event `json:"other_events,omitempty"`
}

// ProjectNode holds one project's events and content. A project with a
// parent lives in its parent's ChildProjects, never at the tree root.
type ProjectNode struct {
	ID            string                  `json:"id"`
	ProjectEvents []Event                 `json:"project_events,omitempty"`
	Sections      map[string]*SectionNode `json:"sections,omitempty"`
	Items         map[string]*ItemNode    `json:"items,omitempty"`
	Comments      []Event                 `json:"comments,omitempty"`
	ChildProjects map[string]*ProjectNode `json:"child_projects,omitempty"`
}

// SectionNode holds one section's events and its tasks.
type SectionNode struct {
	ID            string               `json:"id"`
	SectionEvents []Event              `json:"section_events,omitempty"`
	Items         map[string]*ItemNode `json:"items,omitempty"`
}

// ItemNode holds one task's events, comments, and subtasks. Health is
// attached after building, and only when the node has at least one event.
type ItemNode struct {
	ID         string               `json:"id"`
	ItemEvents []Event              `json:"item_events,omitempty"`
	Comments   []Event              `json:"comments,omitempty"`
	SubItems   map[string]*ItemNode `json:"sub_items,omitempty"`
	Health     *Indicator           `json:"health,omitempty"`
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{Projects: make(map[string]*ProjectNode)}
}

func newProjectNode(id string) *ProjectNode {
	return &ProjectNode{
		ID:            id,
		Sections:      make(map[string]*SectionNode),
		Items:         make(map[string]*ItemNode),
		ChildProjects: make(map[string]*ProjectNode),
	}
}

func newSectionNode(id string) *SectionNode {
	return &SectionNode{ID: id, Items: make(map[string]*ItemNode)}
}

func newItemNode(id string) *ItemNode {
	return &ItemNode{ID: id, SubItems: make(map[string]*ItemNode)}
}

// Empty reports whether the tree has no projects and no overflow events.
func (t *Tree) Empty() bool {
	return len(t.Projects) == 0 && len(t.OtherEvents) == 0
}

// EventCount returns the total number of events anywhere in the tree,
// including the overflow list. Input events are placed exactly once, so for
// any built tree this equals the input event count.
func (t *Tree) EventCount() int {
	n := len(t.OtherEvents)
	for _, p := range t.Projects {
		n += p.eventCount()
	}
	return n
}

func (p *ProjectNode) eventCount() int {
	n := len(p.ProjectEvents) + len(p.Comments)
	for _, s := range p.Sections {
		n += len(s.SectionEvents)
		for _, it := range s.Items {
			n += it.eventCount()
		}
	}
	for _, it := range p.Items {
		n += it.eventCount()
	}
	for _, c := range p.ChildProjects {
		n += c.eventCount()
	}
	return n
}

func (it *ItemNode) eventCount() int {
	n := len(it.ItemEvents) + len(it.Comments)
	for _, sub := range it.SubItems {
		n += sub.eventCount()
	}
	return n
}

// findProject locates a project node by id anywhere in the tree: at the root
// or nested under child projects. Lookup is separate from mutation so
// ownership stays clear.
func (t *Tree) findProject(id string) *ProjectNode {
	if id == "" {
		return nil
	}
	if p, ok := t.Projects[id]; ok {
		return p
	}
	for _, p := range t.Projects {
		if found := p.findProject(id); found != nil {
			return found
		}
	}
	return nil
}

func (p *ProjectNode) findProject(id string) *ProjectNode {
	if c, ok := p.ChildProjects[id]; ok {
		return c
	}
	for _, c := range p.ChildProjects {
		if found := c.findProject(id); found != nil {
			return found
		}
	}
	return nil
}

// findItem locates a task node by id anywhere under the project: direct
// items, section items, and subtask chains. Returns the node and the id of
// the section it sits under ("" for project-direct or subtask placement
// outside sections).
func (p *ProjectNode) findItem(id string) (*ItemNode, string) {
	if node := findItemIn(p.Items, id); node != nil {
		return node, ""
	}
	for sid, s := range p.Sections {
		if node := findItemIn(s.Items, id); node != nil {
			return node, sid
		}
	}
	return nil, ""
}

func findItemIn(items map[string]*ItemNode, id string) *ItemNode {
	if it, ok := items[id]; ok {
		return it
	}
	for _, it := range items {
		if found := findItemIn(it.SubItems, id); found != nil {
			return found
		}
	}
	return nil
}

// walkItems visits every task node in the tree, including subtasks, section
// tasks, and tasks in nested child projects.
func (t *Tree) walkItems(visit func(*ItemNode)) {
	for _, p := range t.Projects {
		p.walkItems(visit)
	}
}

func (p *ProjectNode) walkItems(visit func(*ItemNode)) {
	for _, it := range p.Items {
		it.walk(visit)
	}
	for _, s := range p.Sections {
		for _, it := range s.Items {
			it.walk(visit)
		}
	}
	for _, c := range p.ChildProjects {
		c.walkItems(visit)
	}
}

func (it *ItemNode) walk(visit func(*ItemNode)) {
	visit(it)
	for _, sub := range it.SubItems {
		sub.walk(visit)
	}
}
