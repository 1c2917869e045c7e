package activity

import (
	"context"
	"time"

	"github.com/tdq/tdq/internal/output"
)

const (
	historyRetries   = 3
	historyBaseDelay = 500 * time.Millisecond
)

// History is one task's full event history. Complete is false when the
// retry budget ran out mid-fetch; Events then holds everything gathered up
// to the failing page.
type History struct {
	TaskID   string  `json:"task_id"`
	Events   []Event `json:"events"`
	Complete bool    `json:"complete"`
}

// FetchHistory fetches the complete event history for one task. Unlike a
// listing fetch, a page failure here does not abort: each page gets a small
// retry budget, and when the budget runs out the partial history is
// returned so the caller can still analyze what arrived.
func (f *Fetcher) FetchHistory(ctx context.Context, taskID string) (*History, error) {
	h := &History{TaskID: taskID, Complete: true}
	filters := Filters{ObjectType: string(ObjectItem), ObjectID: taskID, IncludeDeleted: true}
	seen := make(map[string]struct{})
	offset := 0

	for {
		page, err := f.fetchPageRetry(ctx, filters, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			h.Complete = false
			return h, nil
		}
		f.Pages++
		offset += len(page.Events)

		for _, w := range page.Events {
			ev, err := decodeEvent(w)
			if err != nil {
				h.Complete = false
				return h, nil
			}
			key := ev.Key()
			if _, dup := seen[key]; dup {
				f.Duplicates++
				continue
			}
			seen[key] = struct{}{}
			h.Events = append(h.Events, ev)
		}

		if len(page.Events) < PageSize {
			return h, nil
		}
	}
}

// fetchPageRetry fetches one page with its own bounded retry loop, using the
// client's unretried request path so this budget is the only backoff in
// play. Only errors the client marks retryable are retried; auth and usage
// errors fail immediately.
func (f *Fetcher) fetchPageRetry(ctx context.Context, filters Filters, offset int) (*activityPage, error) {
	var lastErr error
	for attempt := 0; attempt <= historyRetries; attempt++ {
		if attempt > 0 {
			delay := historyBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		page, err := f.fetchPageOnce(ctx, filters, offset)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if apiErr := output.AsError(err); apiErr != nil && !apiErr.Retryable {
			return nil, err
		}
	}
	return nil, lastErr
}
