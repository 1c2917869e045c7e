package activity

// Builder constructs an activity tree from a deduplicated event list and a
// hierarchy snapshot. One builder serves one aggregation run.
type Builder struct {
	hier *Snapshot

	// HierarchyMisses counts task events whose id was absent from the
	// snapshot (placed by project-level fallback).
	HierarchyMisses int
	// Unroutable counts events routed to the tree's OtherEvents overflow.
	Unroutable int
}

// NewBuilder creates a builder over the given snapshot. A nil snapshot is
// treated as empty.
func NewBuilder(hier *Snapshot) *Builder {
	if hier == nil {
		hier = emptySnapshot()
	}
	return &Builder{hier: hier}
}

// Build runs the three-pass construction:
//
//  1. Project scaffolding: every event's owning project gets a root node,
//     and project events are appended to their own node.
//  2. Project hierarchy: projects whose events declare a parent project are
//     moved (with their subtree) under that parent's ChildProjects.
//  3. Content: section, task, and note events attach under their projects,
//     using the hierarchy snapshot for current task placement.
//
// Pass 2 must finish before pass 3 so content placement finds projects
// whether they sit at the root or nested.
func (b *Builder) Build(events []Event) *Tree {
	tree := NewTree()

	// Pass 1: project scaffolding.
	for i := range events {
		ev := &events[i]
		owner := b.owningProjectID(ev)
		if owner == "" {
			continue // routed to OtherEvents in pass 3
		}
		node, ok := tree.Projects[owner]
		if !ok {
			node = newProjectNode(owner)
			tree.Projects[owner] = node
		}
		if ev.ObjectType == ObjectProject {
			node.ProjectEvents = append(node.ProjectEvents, *ev)
		}
	}

	// Pass 2: nest child projects under their parents. Only root-level
	// pairs move; a child already nested by an earlier event stays put.
	for i := range events {
		ev := &events[i]
		if ev.ObjectType != ObjectProject || ev.Extra == nil || ev.Extra.ParentID == "" {
			continue
		}
		childID, parentID := ev.ObjectID, ev.Extra.ParentID
		if childID == parentID {
			continue
		}
		child, childOK := tree.Projects[childID]
		parent, parentOK := tree.Projects[parentID]
		if childOK && parentOK {
			parent.ChildProjects[childID] = child
			delete(tree.Projects, childID)
		}
	}

	// Pass 3: content.
	for i := range events {
		ev := &events[i]
		switch ev.ObjectType {
		case ObjectProject:
			// Placed in pass 1, unless the event carried no usable id.
			if tree.findProject(ev.ObjectID) == nil {
				b.overflow(tree, ev)
			}
		case ObjectSection:
			b.placeSection(tree, ev)
		case ObjectItem:
			b.placeItem(tree, ev)
		case ObjectNote:
			b.placeNote(tree, ev)
		default:
			b.overflow(tree, ev)
		}
	}

	return tree
}

// owningProjectID computes the project an event belongs to: the event's own
// id for project events, the current project from the snapshot for task
// events when known, else the event's declared parent project.
func (b *Builder) owningProjectID(ev *Event) string {
	if ev.ObjectType == ObjectProject {
		return ev.ObjectID
	}
	if ev.ObjectType == ObjectItem {
		if pid, ok := b.hier.ProjectOf(ev.ObjectID); ok {
			return pid
		}
	}
	return ev.ParentProjectID
}

func (b *Builder) overflow(tree *Tree, ev *Event) {
	b.Unroutable++
	tree.OtherEvents = append(tree.OtherEvents, *ev)
}

func (b *Builder) placeSection(tree *Tree, ev *Event) {
	project := tree.findProject(ev.ParentProjectID)
	if project == nil {
		b.overflow(tree, ev)
		return
	}
	section, ok := project.Sections[ev.ObjectID]
	if !ok {
		section = newSectionNode(ev.ObjectID)
		project.Sections[ev.ObjectID] = section
	}
	section.SectionEvents = append(section.SectionEvents, *ev)
}

func (b *Builder) placeItem(tree *Tree, ev *Event) {
	if !b.hier.Known(ev.ObjectID) {
		b.HierarchyMisses++
	}
	node := b.locateOrCreateItem(tree, ev.ObjectID, ev.ParentProjectID, nil)
	if node == nil {
		b.overflow(tree, ev)
		return
	}
	node.ItemEvents = append(node.ItemEvents, *ev)
}

func (b *Builder) placeNote(tree *Tree, ev *Event) {
	if ev.ParentItemID != "" {
		node := b.locateOrCreateItem(tree, ev.ParentItemID, ev.ParentProjectID, nil)
		if node != nil {
			node.Comments = append(node.Comments, *ev)
			return
		}
		// Task unplaceable: fall through to project-level attachment.
	}
	project := tree.findProject(ev.ParentProjectID)
	if project == nil {
		b.overflow(tree, ev)
		return
	}
	project.Comments = append(project.Comments, *ev)
}

// locateOrCreateItem finds or creates the node for a task, creating its
// ancestor chain first so a subtask is never attached before its parent.
// Placement priority: current parent task, else current section, else the
// owning project's direct items. Returns nil when no owning project can be
// resolved. visiting guards against parent cycles in corrupt listings.
func (b *Builder) locateOrCreateItem(tree *Tree, itemID, declaredProject string, visiting map[string]bool) *ItemNode {
	if visiting[itemID] {
		return nil
	}

	// Already placed anywhere? Reuse the node.
	for _, p := range tree.Projects {
		if found := searchItem(p, itemID); found != nil {
			return found
		}
	}

	if parentID, ok := b.hier.ParentOf(itemID); ok {
		if visiting == nil {
			visiting = make(map[string]bool)
		}
		visiting[itemID] = true
		parent := b.locateOrCreateItem(tree, parentID, declaredProject, visiting)
		delete(visiting, itemID)
		if parent != nil {
			node, ok := parent.SubItems[itemID]
			if !ok {
				node = newItemNode(itemID)
				parent.SubItems[itemID] = node
			}
			return node
		}
		// Parent chain unplaceable: fall back to section/project placement.
	}

	project := b.owningProjectFor(tree, itemID, declaredProject)
	if project == nil {
		return nil
	}

	if sectionID, ok := b.hier.SectionOf(itemID); ok {
		section, exists := project.Sections[sectionID]
		if !exists {
			section = newSectionNode(sectionID)
			project.Sections[sectionID] = section
		}
		node, exists := section.Items[itemID]
		if !exists {
			node = newItemNode(itemID)
			section.Items[itemID] = node
		}
		return node
	}

	node, exists := project.Items[itemID]
	if !exists {
		node = newItemNode(itemID)
		project.Items[itemID] = node
	}
	return node
}

// owningProjectFor resolves the project node for a task: current project
// from the snapshot when known, else the event's declared project. A known
// project id missing from the tree (it never emitted an event and was never
// referenced) gets a scaffold node so the task's events aren't lost.
func (b *Builder) owningProjectFor(tree *Tree, itemID, declaredProject string) *ProjectNode {
	pid := declaredProject
	if current, ok := b.hier.ProjectOf(itemID); ok {
		pid = current
	}
	if pid == "" {
		return nil
	}
	if project := tree.findProject(pid); project != nil {
		return project
	}
	project := newProjectNode(pid)
	tree.Projects[pid] = project
	return project
}

// searchItem looks for an existing task node anywhere under the project,
// including nested child projects.
func searchItem(p *ProjectNode, id string) *ItemNode {
	if node, _ := p.findItem(id); node != nil {
		return node
	}
	for _, c := range p.ChildProjects {
		if node := searchItem(c, id); node != nil {
			return node
		}
	}
	return nil
}
