package contrib

import (
	"testing"
	"time"
)

func isTask(category string) bool {
	return category == "task-development"
}

func contribution(url, category, reviewDate string) Contribution {
	return Contribution{
		URL:        url,
		Category:   category,
		ReviewDate: reviewDate,
	}
}

func TestFilter_ReplayYieldsNothing(t *testing.T) {
	horizon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	state := NewState(horizon)

	batch := []Contribution{
		contribution("https://steemit.com/@alice/post-1", "development", "2024-01-02 10:00:00"),
		contribution("https://steemit.com/@bob/post-2", "tutorials", "2024-01-02 11:00:00"),
	}

	fresh, next := Filter(state, batch, isTask)
	if len(fresh) != 2 {
		t.Fatalf("Expected 2 fresh records, got %d", len(fresh))
	}

	replayed, _ := Filter(next, batch, isTask)
	if len(replayed) != 0 {
		t.Errorf("Expected empty result on replay, got %d records", len(replayed))
	}
}

func TestFilter_OutOfOrderBatchAdvancesToMaximum(t *testing.T) {
	horizon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	state := NewState(horizon)

	batch := []Contribution{
		contribution("https://steemit.com/@alice/post-1", "development", "2024-01-05 10:00:00"),
		contribution("https://steemit.com/@alice/post-1", "development", "2024-01-02 10:00:00"),
		contribution("https://steemit.com/@alice/post-1", "development", "2024-01-04 10:00:00"),
	}

	_, next := Filter(state, batch, isTask)

	want := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	if got := next.Watermark("alice", "post-1"); !got.Equal(want) {
		t.Errorf("Expected watermark %v, got %v", want, got)
	}
}

func TestFilter_SkipsTaskCategories(t *testing.T) {
	state := NewState(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	batch := []Contribution{
		contribution("https://steemit.com/@alice/task-post", "task-development", "2024-01-02 10:00:00"),
		contribution("https://steemit.com/@bob/post", "development", "2024-01-02 10:00:00"),
	}

	fresh, _ := Filter(state, batch, isTask)
	if len(fresh) != 1 {
		t.Fatalf("Expected 1 fresh record, got %d", len(fresh))
	}
	if fresh[0].URL != "https://steemit.com/@bob/post" {
		t.Errorf("Expected the non-task record, got %q", fresh[0].URL)
	}
}

func TestFilter_HorizonExcludesBacklog(t *testing.T) {
	horizon := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	state := NewState(horizon)

	batch := []Contribution{
		contribution("https://steemit.com/@alice/old", "development", "2024-01-09 23:59:59"),
		contribution("https://steemit.com/@alice/boundary", "development", "2024-01-10 00:00:00"),
		contribution("https://steemit.com/@alice/new", "development", "2024-01-10 00:00:01"),
	}

	fresh, _ := Filter(state, batch, isTask)
	if len(fresh) != 1 {
		t.Fatalf("Expected only the strictly newer record, got %d", len(fresh))
	}
	if fresh[0].URL != "https://steemit.com/@alice/new" {
		t.Errorf("Unexpected fresh record %q", fresh[0].URL)
	}
}

func TestFilter_SkipsMalformedRecords(t *testing.T) {
	state := NewState(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	batch := []Contribution{
		contribution("https://steemit.com/@alice/post", "development", "not a date"),
		contribution("https://steemit.com/faq", "development", "2024-01-02 10:00:00"),
		contribution("https://steemit.com/@bob/post", "development", "2024-01-02 10:00:00"),
	}

	fresh, _ := Filter(state, batch, isTask)
	if len(fresh) != 1 {
		t.Fatalf("Expected 1 valid record, got %d", len(fresh))
	}
	if fresh[0].URL != "https://steemit.com/@bob/post" {
		t.Errorf("Unexpected fresh record %q", fresh[0].URL)
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	horizon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	state := NewState(horizon)

	batch := []Contribution{
		contribution("https://steemit.com/@alice/post", "development", "2024-01-02 10:00:00"),
	}

	_, _ = Filter(state, batch, isTask)

	if got := state.Watermark("alice", "post"); !got.Equal(horizon) {
		t.Errorf("Input state was modified, watermark %v", got)
	}
	if state.Size() != 0 {
		t.Errorf("Input state grew to %d entries", state.Size())
	}
}

func TestState_Restore(t *testing.T) {
	horizon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	persisted := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	state := NewState(horizon).Restore("alice", "post", persisted)

	batch := []Contribution{
		contribution("https://steemit.com/@alice/post", "development", "2024-01-05 11:00:00"),
	}

	fresh, _ := Filter(state, batch, isTask)
	if len(fresh) != 0 {
		t.Errorf("Expected restored watermark to filter the record, got %d fresh", len(fresh))
	}

	if got := state.Latest(); !got.Equal(persisted) {
		t.Errorf("Expected latest %v, got %v", persisted, got)
	}
}
