package activity

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tdq/tdq/internal/api"
)

// PageSize is the activity endpoint's maximum page size.
const PageSize = 50

// Filters narrow an activity fetch. All fields are optional.
type Filters struct {
	ObjectType     string
	ObjectID       string
	EventType      string
	Since          string // YYYY-MM-DD or RFC3339
	Until          string
	IncludeDeleted bool
	Limit          int // 0 = fetch everything
}

// Fetcher pulls pages from the activity endpoint, normalizing and
// deduplicating as pages arrive. One Fetcher serves one aggregation run;
// the dedup set does not persist across runs.
type Fetcher struct {
	client *api.Client

	// Duplicates counts events dropped by the dedup set, for diagnostics.
	Duplicates int
	// Pages counts pages fetched.
	Pages int
}

// NewFetcher creates a fetcher for one aggregation run.
func NewFetcher(client *api.Client) *Fetcher {
	return &Fetcher{client: client}
}

type activityPage struct {
	Events []wireEvent `json:"events"`
	Count  int         `json:"count"`
}

// FetchEvents fetches all matching events. Pagination continues while the
// last page was full-sized and the accumulated count has not reached the
// limit. Overlapping pages (revisions landing mid-fetch shift offsets) are
// deduplicated on the (objectType, objectId, eventType, eventDate) key; a
// duplicate is silently dropped. Any non-success response aborts the whole
// fetch.
func (f *Fetcher) FetchEvents(ctx context.Context, filters Filters) ([]Event, error) {
	var events []Event
	seen := make(map[string]struct{})
	offset := 0

	for {
		page, err := f.fetchPage(ctx, filters, offset)
		if err != nil {
			return nil, err
		}
		f.Pages++
		offset += len(page.Events)

		for _, w := range page.Events {
			ev, err := decodeEvent(w)
			if err != nil {
				return nil, fmt.Errorf("activity fetch: %w", err)
			}
			key := ev.Key()
			if _, dup := seen[key]; dup {
				f.Duplicates++
				continue
			}
			seen[key] = struct{}{}
			events = append(events, ev)
		}

		if filters.Limit > 0 && len(events) >= filters.Limit {
			// Limit reached mid-page: truncate to exactly the limit.
			events = events[:filters.Limit]
			break
		}
		if len(page.Events) < PageSize {
			break // short page ends pagination
		}
	}

	return events, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, filters Filters, offset int) (*activityPage, error) {
	resp, err := f.client.GetQuery(ctx, "/api/v1/activities", pageQuery(filters, offset))
	if err != nil {
		// Fatal: no partial result for listing fetches.
		return nil, err
	}
	return decodePage(resp)
}

// fetchPageOnce is fetchPage without the client's internal retry loop, for
// callers running their own retry budget.
func (f *Fetcher) fetchPageOnce(ctx context.Context, filters Filters, offset int) (*activityPage, error) {
	resp, err := f.client.GetQueryOnce(ctx, "/api/v1/activities", pageQuery(filters, offset))
	if err != nil {
		return nil, err
	}
	return decodePage(resp)
}

func pageQuery(filters Filters, offset int) url.Values {
	q := url.Values{}
	if filters.ObjectType != "" {
		q.Set("object_type", filters.ObjectType)
	}
	if filters.ObjectID != "" {
		q.Set("object_id", filters.ObjectID)
	}
	if filters.EventType != "" {
		q.Set("event_type", filters.EventType)
	}
	if filters.Since != "" {
		q.Set("since", filters.Since)
	}
	if filters.Until != "" {
		q.Set("until", filters.Until)
	}
	if !filters.IncludeDeleted {
		q.Set("exclude_deleted", "true")
	}
	q.Set("limit", strconv.Itoa(PageSize))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

func decodePage(resp *api.Response) (*activityPage, error) {
	var page activityPage
	if err := resp.UnmarshalData(&page); err != nil {
		return nil, fmt.Errorf("activity fetch: bad response: %w", err)
	}
	return &page, nil
}
