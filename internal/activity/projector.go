package activity

// Focus narrows a built tree to one object's subtree. Exactly one of the id
// fields should be set; they are checked in project, section, task order.
type Focus struct {
	ProjectID string
	SectionID string
	TaskID    string
	// IncludeChildren keeps the focused object's children (sections and
	// child projects for a project, tasks for a section, subtasks for a
	// task). When false only the object's own events and comments remain.
	IncludeChildren bool
}

// Set reports whether any focus target is specified.
func (f Focus) Set() bool {
	return f.ProjectID != "" || f.SectionID != "" || f.TaskID != ""
}

// Project extracts the focused subtree as a new tree. The source tree is
// never mutated; shared node pointers are copied before trimming. A focus
// target absent from the tree yields an empty tree, not an error: the object
// simply had no activity in the window.
func Project(tree *Tree, focus Focus) *Tree {
	switch {
	case focus.ProjectID != "":
		return projectSubtree(tree, focus.ProjectID, focus.IncludeChildren)
	case focus.SectionID != "":
		return sectionSubtree(tree, focus.SectionID, focus.IncludeChildren)
	case focus.TaskID != "":
		return taskSubtree(tree, focus.TaskID, focus.IncludeChildren)
	default:
		return tree
	}
}

func projectSubtree(tree *Tree, id string, children bool) *Tree {
	node := tree.findProject(id)
	if node == nil {
		return NewTree()
	}
	out := NewTree()
	if children {
		out.Projects[id] = node
		return out
	}
	trimmed := *node
	trimmed.Sections = make(map[string]*SectionNode)
	trimmed.ChildProjects = make(map[string]*ProjectNode)
	out.Projects[id] = &trimmed
	return out
}

func sectionSubtree(tree *Tree, id string, children bool) *Tree {
	projectID, section := findSection(tree, id)
	if section == nil {
		return NewTree()
	}
	if !children {
		trimmed := *section
		trimmed.Items = make(map[string]*ItemNode)
		section = &trimmed
	}
	out := NewTree()
	wrapper := newProjectNode(projectID)
	wrapper.Sections[id] = section
	out.Projects[projectID] = wrapper
	return out
}

func taskSubtree(tree *Tree, id string, children bool) *Tree {
	projectID, sectionID, item := findTask(tree, id)
	if item == nil {
		return NewTree()
	}
	if !children {
		trimmed := *item
		trimmed.SubItems = make(map[string]*ItemNode)
		item = &trimmed
	}
	out := NewTree()
	wrapper := newProjectNode(projectID)
	if sectionID != "" {
		section := newSectionNode(sectionID)
		section.Items[id] = item
		wrapper.Sections[sectionID] = section
	} else {
		wrapper.Items[id] = item
	}
	out.Projects[projectID] = wrapper
	return out
}

// findSection locates a section anywhere in the tree and returns the id of
// the project that holds it.
func findSection(tree *Tree, id string) (string, *SectionNode) {
	for _, p := range tree.Projects {
		if pid, s := findSectionIn(p, id); s != nil {
			return pid, s
		}
	}
	return "", nil
}

func findSectionIn(p *ProjectNode, id string) (string, *SectionNode) {
	if s, ok := p.Sections[id]; ok {
		return p.ID, s
	}
	for _, c := range p.ChildProjects {
		if pid, s := findSectionIn(c, id); s != nil {
			return pid, s
		}
	}
	return "", nil
}

// findTask locates a task anywhere in the tree and returns the holding
// project id and section id ("" when the task sits outside any section).
func findTask(tree *Tree, id string) (string, string, *ItemNode) {
	for _, p := range tree.Projects {
		if pid, sid, it := findTaskIn(p, id); it != nil {
			return pid, sid, it
		}
	}
	return "", "", nil
}

func findTaskIn(p *ProjectNode, id string) (string, string, *ItemNode) {
	if it, sid := p.findItem(id); it != nil {
		return p.ID, sid, it
	}
	for _, c := range p.ChildProjects {
		if pid, sid, it := findTaskIn(c, id); it != nil {
			return pid, sid, it
		}
	}
	return "", "", nil
}
