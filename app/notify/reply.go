package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/utopian-io/utbot/app/command"
	"github.com/utopian-io/utbot/app/retry"
	"github.com/utopian-io/utbot/app/steem"
)

// ContentReader lists existing replies to a content item.
type ContentReader interface {
	GetContentReplies(ctx context.Context, author, permlink string) ([]steem.Comment, error)
}

// Replier posts and edits replies under an acting account.
type Replier interface {
	PostReply(ctx context.Context, parent *steem.Comment, body, jsonMetadata string) error
	EditReply(ctx context.Context, reply *steem.Comment, body, jsonMetadata string) error
	Account() string
}

// ReplyNotifier is the source-platform leg: it posts help and notice
// replies and maintains the standing task-summary reply, with a bounded
// retry budget per send.
type ReplyNotifier struct {
	reader   ContentReader
	replier  Replier
	messages *Messages
	botName  string
	policy   retry.Policy
}

func NewReplyNotifier(reader ContentReader, replier Replier, messages *Messages, botName string, retryCount int, backoff time.Duration) *ReplyNotifier {
	return &ReplyNotifier{
		reader:   reader,
		replier:  replier,
		messages: messages,
		botName:  botName,
		policy: retry.Policy{
			MaxAttempts: retryCount,
			Backoff:     retry.Fixed(backoff),
		},
	}
}

// Account returns the acting identity replies are posted under.
func (n *ReplyNotifier) Account() string {
	return n.replier.Account()
}

// RepliedTo returns the bot's existing reply under the given content
// item, or nil when the bot has not replied yet.
func (n *ReplyNotifier) RepliedTo(ctx context.Context, c *steem.Comment) (*steem.Comment, error) {
	replies, err := n.reader.GetContentReplies(ctx, c.Author, c.Permlink)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies to %s: %w", c.AuthorPerm(), err)
	}

	account := n.replier.Account()
	for i := range replies {
		if replies[i].Author == account {
			return &replies[i], nil
		}
	}

	return nil, nil
}

// SendReply posts a one-off reply, retrying transient failures within
// the budget.
func (n *ReplyNotifier) SendReply(ctx context.Context, parent *steem.Comment, body string) error {
	return n.policy.Do(ctx, func() error {
		return n.replier.PostReply(ctx, parent, body, "{}")
	})
}

// UpsertSummary creates or updates the standing task-summary reply under
// the task's root post. An existing summary is edited in place: the
// newly parsed fields are merged into the metadata recorded on it, so a
// later update overwrites rather than duplicates. Returns the merged
// record actually published.
func (n *ReplyNotifier) UpsertSummary(ctx context.Context, root *steem.Comment, cmd *command.Command) (command.Command, error) {
	existing, err := n.RepliedTo(ctx, root)
	if err != nil {
		return command.Command{}, err
	}

	var stored command.Command
	if existing != nil {
		existing.MetadataSection(n.botName, &stored)
	}
	merged := stored.Merge(cmd)

	metadata, err := json.Marshal(map[string]command.Command{n.botName: merged})
	if err != nil {
		return command.Command{}, fmt.Errorf("failed to encode summary metadata: %w", err)
	}
	body := n.messages.TaskSummary(merged)

	err = n.policy.Do(ctx, func() error {
		if existing != nil {
			return n.replier.EditReply(ctx, existing, body, string(metadata))
		}
		return n.replier.PostReply(ctx, root, body, string(metadata))
	})
	if err != nil {
		return command.Command{}, err
	}

	return merged, nil
}
