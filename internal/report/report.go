// Package report renders an aggregated activity tree as indented text or
// markdown for human review.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tdq/tdq/internal/activity"
	"github.com/tdq/tdq/internal/names"
)

// Renderer formats activity trees. One renderer serves one command
// invocation; names are resolved through the shared session resolver.
type Renderer struct {
	names  *names.Resolver
	styled bool

	header lipgloss.Style
	muted  lipgloss.Style
	tag    lipgloss.Style
	date   lipgloss.Style
}

// New creates a renderer. Styling applies only to the text format; markdown
// output is always plain.
func New(n *names.Resolver, styled bool) *Renderer {
	return &Renderer{
		names:  n,
		styled: styled,
		header: lipgloss.NewStyle().Bold(true),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		tag:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		date:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
}

// Render formats the tree as an indented text report.
func (r *Renderer) Render(ctx context.Context, tree *activity.Tree) string {
	var b strings.Builder
	if tree.Empty() {
		return "No activity.\n"
	}
	for _, id := range sortedKeys(tree.Projects) {
		r.writeProject(ctx, &b, tree.Projects[id], 0)
	}
	if len(tree.OtherEvents) > 0 {
		b.WriteString(r.style(r.header, "Unassigned events") + "\n")
		for i := range tree.OtherEvents {
			r.writeEvent(&b, &tree.OtherEvents[i], 1)
		}
	}
	return b.String()
}

// Markdown formats the tree as a markdown report.
func (r *Renderer) Markdown(ctx context.Context, tree *activity.Tree) string {
	plain := &Renderer{names: r.names}
	var b strings.Builder
	b.WriteString("# Activity report\n\n")
	if tree.Empty() {
		b.WriteString("No activity.\n")
		return b.String()
	}
	for _, id := range sortedKeys(tree.Projects) {
		p := tree.Projects[id]
		fmt.Fprintf(&b, "## %s\n\n", plain.projectLabel(ctx, p.ID))
		b.WriteString("```\n")
		var body strings.Builder
		plain.writeProjectBody(ctx, &body, p, 0)
		b.WriteString(body.String())
		b.WriteString("```\n\n")
	}
	if len(tree.OtherEvents) > 0 {
		b.WriteString("## Unassigned events\n\n```\n")
		for i := range tree.OtherEvents {
			plain.writeEvent(&b, &tree.OtherEvents[i], 0)
		}
		b.WriteString("```\n")
	}
	return b.String()
}

func (r *Renderer) writeProject(ctx context.Context, b *strings.Builder, p *activity.ProjectNode, depth int) {
	indent(b, depth)
	b.WriteString(r.style(r.header, r.projectLabel(ctx, p.ID)) + "\n")
	r.writeProjectBody(ctx, b, p, depth)
}

func (r *Renderer) writeProjectBody(ctx context.Context, b *strings.Builder, p *activity.ProjectNode, depth int) {
	for i := range p.ProjectEvents {
		r.writeEvent(b, &p.ProjectEvents[i], depth+1)
	}
	for i := range p.Comments {
		r.writeComment(b, &p.Comments[i], depth+1)
	}
	for _, id := range sortedKeys(p.Items) {
		r.writeItem(b, p.Items[id], depth+1)
	}
	for _, id := range sortedKeys(p.Sections) {
		r.writeSection(b, p.Sections[id], depth+1)
	}
	for _, id := range sortedKeys(p.ChildProjects) {
		r.writeProject(ctx, b, p.ChildProjects[id], depth+1)
	}
}

func (r *Renderer) writeSection(b *strings.Builder, s *activity.SectionNode, depth int) {
	indent(b, depth)
	fmt.Fprintf(b, "%s\n", r.style(r.header, "Section "+s.ID))
	for i := range s.SectionEvents {
		r.writeEvent(b, &s.SectionEvents[i], depth+1)
	}
	for _, id := range sortedKeys(s.Items) {
		r.writeItem(b, s.Items[id], depth+1)
	}
}

func (r *Renderer) writeItem(b *strings.Builder, it *activity.ItemNode, depth int) {
	indent(b, depth)
	label := "Task " + it.ID
	if content := latestContent(it.ItemEvents); content != "" {
		label += ": " + content
	}
	b.WriteString(label)
	if it.Health != nil && len(it.Health.Statuses) > 0 {
		b.WriteString(" " + r.style(r.tag, "["+strings.Join(it.Health.Statuses, ", ")+"]"))
	}
	b.WriteString("\n")
	for i := range it.ItemEvents {
		r.writeEvent(b, &it.ItemEvents[i], depth+1)
	}
	for i := range it.Comments {
		r.writeComment(b, &it.Comments[i], depth+1)
	}
	for _, id := range sortedKeys(it.SubItems) {
		r.writeItem(b, it.SubItems[id], depth+1)
	}
}

func (r *Renderer) writeEvent(b *strings.Builder, ev *activity.Event, depth int) {
	indent(b, depth)
	fmt.Fprintf(b, "%s %s%s\n",
		r.style(r.date, ev.EventDate.Format(time.DateOnly)),
		ev.EventType,
		r.style(r.muted, eventDetail(ev)))
}

func (r *Renderer) writeComment(b *strings.Builder, ev *activity.Event, depth int) {
	indent(b, depth)
	detail := ""
	if ev.Extra != nil && ev.Extra.Content != "" {
		detail = ": " + ev.Extra.Content
	}
	fmt.Fprintf(b, "%s comment %s%s\n",
		r.style(r.date, ev.EventDate.Format(time.DateOnly)),
		ev.EventType,
		r.style(r.muted, detail))
}

// eventDetail summarizes what changed, for updated events that carried a
// before/after pair.
func eventDetail(ev *activity.Event) string {
	if ev.Extra == nil {
		return ""
	}
	x := ev.Extra
	switch {
	case x.DueDate != nil && x.LastDueDate != nil:
		return fmt.Sprintf(" due %s -> %s",
			x.LastDueDate.Format(time.DateOnly), x.DueDate.Format(time.DateOnly))
	case x.Content != "" && x.LastContent != "" && x.Content != x.LastContent:
		return fmt.Sprintf(" renamed %q -> %q", x.LastContent, x.Content)
	case x.Content != "" && ev.EventType == activity.EventAdded:
		return " " + fmt.Sprintf("%q", x.Content)
	case x.Priority != 0 && x.LastPriority != 0 && x.Priority != x.LastPriority:
		return fmt.Sprintf(" priority %d -> %d", x.LastPriority, x.Priority)
	}
	return ""
}

// latestContent returns the newest known title from the event list.
func latestContent(events []activity.Event) string {
	content := ""
	var at time.Time
	for i := range events {
		ev := &events[i]
		if ev.Extra == nil || ev.Extra.Content == "" {
			continue
		}
		if at.IsZero() || ev.EventDate.After(at) {
			content = ev.Extra.Content
			at = ev.EventDate
		}
	}
	return content
}

func (r *Renderer) projectLabel(ctx context.Context, id string) string {
	if r.names == nil {
		return "Project " + id
	}
	return r.names.ProjectPath(ctx, id)
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.styled || text == "" {
		return text
	}
	return s.Render(text)
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
