package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/utopian-io/utbot/app/categories"
	"github.com/utopian-io/utbot/app/steem"
)

type mockChain struct {
	mu       sync.Mutex
	head     int64
	blocks   map[int64]*steem.Block
	content  map[string]*steem.Comment
	blockErr error
}

func (m *mockChain) HeadBlockNumber(ctx context.Context) (int64, error) {
	return m.head, nil
}

func (m *mockChain) GetBlock(ctx context.Context, num int64) (*steem.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blockErr != nil {
		return nil, m.blockErr
	}
	return m.blocks[num], nil
}

func (m *mockChain) GetContent(ctx context.Context, author, permlink string) (*steem.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content["@"+author+"/"+permlink], nil
}

type mockEnqueuer struct {
	mu    sync.Mutex
	pairs []string
}

func (m *mockEnqueuer) EnqueueComment(reply, root *steem.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs = append(m.pairs, reply.AuthorPerm()+" -> "+root.AuthorPerm())
	return nil
}

func (m *mockEnqueuer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pairs)
}

func blockWithComment(op steem.CommentOp) *steem.Block {
	payload, _ := json.Marshal(op)
	raw := json.RawMessage(fmt.Sprintf(`["comment", %s]`, payload))
	return &steem.Block{Transactions: []steem.Transaction{{Operations: []json.RawMessage{raw}}}}
}

func newTestChain() *mockChain {
	reply := &steem.Comment{
		Author:         "reviewer1",
		Permlink:       "re-my-task",
		ParentAuthor:   "alice",
		ParentPermlink: "my-task",
		Body:           "!utbot --status open",
	}
	root := &steem.Comment{
		Author:       "alice",
		Permlink:     "my-task",
		Title:        "Build a widget",
		JSONMetadata: `{"tags": ["utopian-io", "task-development"]}`,
	}
	return &mockChain{
		head: 100,
		blocks: map[int64]*steem.Block{
			100: blockWithComment(steem.CommentOp{
				ParentAuthor: "alice", ParentPermlink: "my-task",
				Author: "reviewer1", Permlink: "re-my-task",
			}),
		},
		content: map[string]*steem.Comment{
			"@reviewer1/re-my-task": reply,
			"@alice/my-task":        root,
		},
	}
}

func runWatcher(t *testing.T, chain ChainReader, enqueuer Enqueuer) context.CancelFunc {
	t.Helper()
	w := New(chain, categories.Default(), enqueuer, []string{"reviewer1"}, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	return cancel
}

func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func assertNoEnqueue(t *testing.T, enqueuer *mockEnqueuer, msg string) {
	t.Helper()
	time.Sleep(100 * time.Millisecond)
	if enqueuer.count() > 0 {
		t.Fatal(msg)
	}
}

func TestWatcher_EnqueuesTaskRequestReplies(t *testing.T) {
	enqueuer := &mockEnqueuer{}
	cancel := runWatcher(t, newTestChain(), enqueuer)
	defer cancel()

	if !waitFor(t, func() bool { return enqueuer.count() == 1 }) {
		t.Fatal("Expected the reply to be enqueued")
	}

	enqueuer.mu.Lock()
	pair := enqueuer.pairs[0]
	enqueuer.mu.Unlock()
	if pair != "@reviewer1/re-my-task -> @alice/my-task" {
		t.Errorf("Unexpected pair %q", pair)
	}
}

func TestWatcher_SkipsNonReviewers(t *testing.T) {
	chain := newTestChain()
	chain.blocks[100] = blockWithComment(steem.CommentOp{
		ParentAuthor: "alice", ParentPermlink: "my-task",
		Author: "stranger", Permlink: "re-my-task",
	})

	enqueuer := &mockEnqueuer{}
	cancel := runWatcher(t, chain, enqueuer)
	defer cancel()

	assertNoEnqueue(t, enqueuer, "Expected no enqueue for a non-reviewer comment")
}

func TestWatcher_SkipsRootPosts(t *testing.T) {
	chain := newTestChain()
	chain.blocks[100] = blockWithComment(steem.CommentOp{
		ParentAuthor: "", ParentPermlink: "utopian-io",
		Author: "reviewer1", Permlink: "a-new-post",
	})

	enqueuer := &mockEnqueuer{}
	cancel := runWatcher(t, chain, enqueuer)
	defer cancel()

	assertNoEnqueue(t, enqueuer, "Expected no enqueue for a root post")
}

func TestWatcher_SkipsNonTaskParents(t *testing.T) {
	chain := newTestChain()
	chain.content["@alice/my-task"].JSONMetadata = `{"tags": ["photography"]}`

	enqueuer := &mockEnqueuer{}
	cancel := runWatcher(t, chain, enqueuer)
	defer cancel()

	assertNoEnqueue(t, enqueuer, "Expected no enqueue when the parent is not a task request")
}

func TestWatcher_SkipsMissingContent(t *testing.T) {
	chain := newTestChain()
	delete(chain.content, "@reviewer1/re-my-task")

	enqueuer := &mockEnqueuer{}
	cancel := runWatcher(t, chain, enqueuer)
	defer cancel()

	assertNoEnqueue(t, enqueuer, "Expected no enqueue when the comment cannot be fetched")
}

func TestWatcher_ReturnsOnLostConnection(t *testing.T) {
	chain := newTestChain()
	chain.mu.Lock()
	chain.blockErr = errors.New("connection refused")
	chain.mu.Unlock()

	w := New(chain, categories.Default(), &mockEnqueuer{}, []string{"reviewer1"}, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Expected an error after repeated block failures")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected the loop to terminate")
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	w := New(newTestChain(), categories.Default(), &mockEnqueuer{}, []string{"reviewer1"}, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the loop to stop on cancel")
	}
}
