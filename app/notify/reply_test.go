package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/utopian-io/utbot/app/command"
	"github.com/utopian-io/utbot/app/steem"
)

type mockReader struct {
	replies []steem.Comment
	err     error
}

func (m *mockReader) GetContentReplies(ctx context.Context, author, permlink string) ([]steem.Comment, error) {
	return m.replies, m.err
}

type mockReplier struct {
	account  string
	failures int

	posts []struct {
		Parent   *steem.Comment
		Body     string
		Metadata string
	}
	edits []struct {
		Reply    *steem.Comment
		Body     string
		Metadata string
	}
}

func (m *mockReplier) Account() string { return m.account }

func (m *mockReplier) PostReply(ctx context.Context, parent *steem.Comment, body, jsonMetadata string) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("node unavailable")
	}
	m.posts = append(m.posts, struct {
		Parent   *steem.Comment
		Body     string
		Metadata string
	}{parent, body, jsonMetadata})
	return nil
}

func (m *mockReplier) EditReply(ctx context.Context, reply *steem.Comment, body, jsonMetadata string) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("node unavailable")
	}
	m.edits = append(m.edits, struct {
		Reply    *steem.Comment
		Body     string
		Metadata string
	}{reply, body, jsonMetadata})
	return nil
}

func newTestNotifier(reader *mockReader, replier *mockReplier) *ReplyNotifier {
	messages := NewMessages("!utbot", "utbot", "https://github.com/utopian-io/utbot", "https://steemit.com")
	return NewReplyNotifier(reader, replier, messages, "utbot", 3, time.Millisecond)
}

func TestRepliedTo(t *testing.T) {
	reader := &mockReader{replies: []steem.Comment{
		{Author: "someone", Permlink: "re-1"},
		{Author: "utbot", Permlink: "re-2"},
	}}
	replier := &mockReplier{account: "utbot"}
	n := newTestNotifier(reader, replier)

	reply, err := n.RepliedTo(context.Background(), &steem.Comment{Author: "alice", Permlink: "my-task"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if reply == nil || reply.Permlink != "re-2" {
		t.Errorf("Expected the bot's own reply, got %+v", reply)
	}

	reader.replies = reader.replies[:1]
	reply, err = n.RepliedTo(context.Background(), &steem.Comment{Author: "alice", Permlink: "my-task"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if reply != nil {
		t.Errorf("Expected nil when the bot has not replied, got %+v", reply)
	}
}

func TestSendReply_RetriesTransientFailures(t *testing.T) {
	replier := &mockReplier{account: "utbot", failures: 2}
	n := newTestNotifier(&mockReader{}, replier)

	parent := &steem.Comment{Author: "alice", Permlink: "my-task"}
	if err := n.SendReply(context.Background(), parent, "hello"); err != nil {
		t.Fatalf("Expected retries to recover, got %v", err)
	}
	if len(replier.posts) != 1 {
		t.Fatalf("Expected exactly 1 delivered reply, got %d", len(replier.posts))
	}
}

func TestSendReply_GivesUp(t *testing.T) {
	replier := &mockReplier{account: "utbot", failures: 3}
	n := newTestNotifier(&mockReader{}, replier)

	parent := &steem.Comment{Author: "alice", Permlink: "my-task"}
	if err := n.SendReply(context.Background(), parent, "hello"); err == nil {
		t.Fatal("Expected an error after exhausting the retry budget")
	}
	if len(replier.posts) != 0 {
		t.Errorf("Expected no delivered reply, got %d", len(replier.posts))
	}
}

func TestUpsertSummary_CreatesReply(t *testing.T) {
	replier := &mockReplier{account: "utbot"}
	n := newTestNotifier(&mockReader{}, replier)

	root := &steem.Comment{Author: "alice", Permlink: "my-task"}
	cmd := &command.Command{Status: command.StatusOpen, Bounty: []string{"10 SBD"}}

	merged, err := n.UpsertSummary(context.Background(), root, cmd)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if merged.Status != command.StatusOpen {
		t.Errorf("Expected merged status open, got %q", merged.Status)
	}
	if len(replier.posts) != 1 || len(replier.edits) != 0 {
		t.Fatalf("Expected 1 post and 0 edits, got %d and %d", len(replier.posts), len(replier.edits))
	}

	post := replier.posts[0]
	if !strings.Contains(post.Body, "OPEN") || !strings.Contains(post.Body, "10 SBD") {
		t.Errorf("Expected summary body with status and bounty, got %q", post.Body)
	}

	var metadata map[string]command.Command
	if err := json.Unmarshal([]byte(post.Metadata), &metadata); err != nil {
		t.Fatalf("Failed to decode metadata: %v", err)
	}
	if metadata["utbot"].Status != command.StatusOpen {
		t.Errorf("Expected recorded status open, got %+v", metadata["utbot"])
	}
}

func TestUpsertSummary_EditsAndMerges(t *testing.T) {
	existing := steem.Comment{
		Author:       "utbot",
		Permlink:     "re-my-task",
		JSONMetadata: `{"utbot": {"status": "open", "bounty": ["10 SBD"], "skills": ["Go"]}}`,
	}
	reader := &mockReader{replies: []steem.Comment{existing}}
	replier := &mockReplier{account: "utbot"}
	n := newTestNotifier(reader, replier)

	root := &steem.Comment{Author: "alice", Permlink: "my-task"}
	update := &command.Command{Status: command.StatusInProgress, Assignees: []string{"bob"}}

	merged, err := n.UpsertSummary(context.Background(), root, update)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if merged.Status != command.StatusInProgress {
		t.Errorf("Expected updated status, got %q", merged.Status)
	}
	if len(merged.Bounty) != 1 || merged.Bounty[0] != "10 SBD" {
		t.Errorf("Expected previously recorded bounty to survive, got %v", merged.Bounty)
	}
	if len(merged.Skills) != 1 || merged.Skills[0] != "Go" {
		t.Errorf("Expected previously recorded skills to survive, got %v", merged.Skills)
	}

	if len(replier.posts) != 0 || len(replier.edits) != 1 {
		t.Fatalf("Expected 0 posts and 1 edit, got %d and %d", len(replier.posts), len(replier.edits))
	}
	if replier.edits[0].Reply.Permlink != "re-my-task" {
		t.Errorf("Expected edit of the existing reply, got %q", replier.edits[0].Reply.Permlink)
	}
	if !strings.Contains(replier.edits[0].Body, "[bob](https://steemit.com/@bob)") {
		t.Errorf("Expected linked assignee in summary, got %q", replier.edits[0].Body)
	}
}
