package contrib

import (
	"log/slog"
	"time"
)

// State is the freshness watermark bookkeeping for reviewed
// contributions, keyed per author and permlink. It is an explicit value
// passed into and returned from Filter; the contribution polling task is
// its sole owner, so no synchronization is needed. Entries grow
// monotonically and are never pruned in-process.
type State struct {
	// Horizon is the default watermark for content never seen before.
	// Set to process start time so historical backlog is never replayed.
	Horizon time.Time

	seen map[string]map[string]time.Time
}

// NewState returns an empty state with the given horizon.
func NewState(horizon time.Time) State {
	return State{
		Horizon: horizon,
		seen:    make(map[string]map[string]time.Time),
	}
}

// Watermark returns the last-seen review time for a content item, or the
// horizon when the item has never been seen.
func (s State) Watermark(author, permlink string) time.Time {
	if byPermlink, ok := s.seen[author]; ok {
		if ts, ok := byPermlink[permlink]; ok {
			return ts
		}
	}
	return s.Horizon
}

// Size returns the number of tracked content items.
func (s State) Size() int {
	n := 0
	for _, byPermlink := range s.seen {
		n += len(byPermlink)
	}
	return n
}

// Latest returns the maximum review time recorded across all items, or
// the horizon when nothing has been recorded yet.
func (s State) Latest() time.Time {
	latest := s.Horizon
	for _, byPermlink := range s.seen {
		for _, ts := range byPermlink {
			if ts.After(latest) {
				latest = ts
			}
		}
	}
	return latest
}

// clone returns an independent copy of s.
func (s State) clone() State {
	next := State{Horizon: s.Horizon, seen: make(map[string]map[string]time.Time, len(s.seen)+1)}
	for a, byPermlink := range s.seen {
		copied := make(map[string]time.Time, len(byPermlink))
		for p, t := range byPermlink {
			copied[p] = t
		}
		next.seen[a] = copied
	}
	return next
}

// advance moves the watermark for one item forward in place. Never moves
// a watermark backwards, so max tracking is independent of batch order.
func (s State) advance(author, permlink string, ts time.Time) {
	byPermlink, ok := s.seen[author]
	if !ok {
		byPermlink = make(map[string]time.Time, 1)
		s.seen[author] = byPermlink
	}
	if existing, ok := byPermlink[permlink]; !ok || ts.After(existing) {
		byPermlink[permlink] = ts
	}
}

// Restore returns a copy of s with a persisted watermark loaded. Used to
// warm-start the tracker from the bookkeeping store.
func (s State) Restore(author, permlink string, ts time.Time) State {
	next := s.clone()
	next.advance(author, permlink, ts)
	return next
}

// TaskCategoryFn reports whether a category tag belongs to the
// task-request set; such records are excluded because the command
// pipeline already notifies on them.
type TaskCategoryFn func(category string) bool

// Filter returns the records of batch that are strictly newer than their
// watermark and do not belong to a task-request category, together with
// the advanced state. Replaying the same batch against the returned
// state yields nothing. The input state is not modified.
func Filter(s State, batch []Contribution, isTaskCategory TaskCategoryFn) ([]Contribution, State) {
	fresh := make([]Contribution, 0, len(batch))
	next := s.clone()

	for _, c := range batch {
		if isTaskCategory != nil && isTaskCategory(c.Category) {
			continue
		}

		reviewedAt, err := c.ReviewedAt()
		if err != nil {
			slog.Warn("Skipping contribution with malformed review date", "url", c.URL, "review_date", c.ReviewDate)
			continue
		}

		author, permlink := c.AuthorPerm()
		if author == "" {
			slog.Warn("Skipping contribution with malformed url", "url", c.URL)
			continue
		}

		if !reviewedAt.After(next.Watermark(author, permlink)) {
			continue
		}

		fresh = append(fresh, c)
		next.advance(author, permlink, reviewedAt)
	}

	return fresh, next
}
