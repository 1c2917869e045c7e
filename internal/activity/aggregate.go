package activity

import (
	"context"

	"github.com/tdq/tdq/internal/api"
)

// Request describes one aggregation run: which events to fetch, which
// subtree to keep, and whether to annotate tasks with health.
type Request struct {
	Filters    Filters
	Focus      Focus
	WithHealth bool
}

// RunStats carries per-run diagnostics, surfaced in response metadata.
type RunStats struct {
	Events          int `json:"events"`
	Pages           int `json:"pages"`
	Duplicates      int `json:"duplicates"`
	HierarchyMisses int `json:"hierarchy_misses"`
	Unroutable      int `json:"unroutable"`
}

// Runner wires the fetch, snapshot, build, health, and projection stages
// into one aggregation pass. All caching lives inside the runner; a new
// runner starts clean.
type Runner struct {
	client    *api.Client
	analyzer  *Analyzer
	snapshots map[string]*Snapshot

	Stats RunStats
}

// NewRunner creates a runner for one aggregation run.
func NewRunner(client *api.Client, thresholds Thresholds) *Runner {
	return &Runner{
		client:    client,
		analyzer:  NewAnalyzer(thresholds),
		snapshots: make(map[string]*Snapshot),
	}
}

// Aggregate fetches events, builds the tree, attaches health, and projects
// the focused subtree. The snapshot is scoped to the focused project when
// one is set, keeping the task listing small.
func (r *Runner) Aggregate(ctx context.Context, req Request) (*Tree, error) {
	events, err := r.fetch(ctx, req.Filters)
	if err != nil {
		return nil, err
	}

	snap, err := r.snapshot(ctx, req.Focus.ProjectID)
	if err != nil {
		return nil, err
	}

	builder := NewBuilder(snap)
	tree := builder.Build(events)
	r.Stats.HierarchyMisses = builder.HierarchyMisses
	r.Stats.Unroutable = builder.Unroutable

	if req.WithHealth {
		r.analyzer.AttachHealth(tree)
	}
	if req.Focus.Set() {
		tree = Project(tree, req.Focus)
	}
	return tree, nil
}

// TaskHealth fetches one task's full history and analyzes it. The history
// may be partial after transient failures; the indicator then reflects only
// the events that arrived.
func (r *Runner) TaskHealth(ctx context.Context, taskID string) (*History, *Indicator, error) {
	fetcher := NewFetcher(r.client)
	h, err := fetcher.FetchHistory(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	r.Stats.Pages += fetcher.Pages
	r.Stats.Duplicates += fetcher.Duplicates
	r.Stats.Events += len(h.Events)
	return h, r.analyzer.Analyze(h.Events), nil
}

func (r *Runner) fetch(ctx context.Context, filters Filters) ([]Event, error) {
	fetcher := NewFetcher(r.client)
	events, err := fetcher.FetchEvents(ctx, filters)
	if err != nil {
		return nil, err
	}
	r.Stats.Events = len(events)
	r.Stats.Pages = fetcher.Pages
	r.Stats.Duplicates = fetcher.Duplicates
	return events, nil
}

// snapshot returns the hierarchy snapshot for the given project scope,
// fetching it at most once per runner. The empty scope means all projects.
func (r *Runner) snapshot(ctx context.Context, projectID string) (*Snapshot, error) {
	if snap, ok := r.snapshots[projectID]; ok {
		return snap, nil
	}
	snap, err := BuildSnapshot(ctx, r.client, projectID)
	if err != nil {
		return nil, err
	}
	r.snapshots[projectID] = snap
	return snap, nil
}
