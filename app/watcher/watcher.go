package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utopian-io/utbot/app/categories"
	"github.com/utopian-io/utbot/app/steem"
)

// Blocks that fail to fetch this many times in a row indicate a lost
// node connection rather than a transient hiccup.
const maxConsecutiveFailures = 30

// ChainReader is the inbound feed of content-change operations.
type ChainReader interface {
	HeadBlockNumber(ctx context.Context) (int64, error)
	GetBlock(ctx context.Context, num int64) (*steem.Block, error)
	GetContent(ctx context.Context, author, permlink string) (*steem.Comment, error)
}

// Enqueuer hands matched (reply, root) pairs over to the dispatcher.
type Enqueuer interface {
	EnqueueComment(reply, root *steem.Comment) error
}

// Watcher is the event ingestion loop. It follows the chain head from
// process start, so historical backlog is never replayed, and enqueues
// replies by allow-listed accounts whose parent is a task request.
// Per-item failures are logged and skipped; only a lost node connection
// terminates the loop.
type Watcher struct {
	chain     ChainReader
	spec      *categories.Spec
	enqueuer  Enqueuer
	reviewers map[string]bool
	interval  time.Duration
}

func New(chain ChainReader, spec *categories.Spec, enqueuer Enqueuer, reviewers []string, interval time.Duration) *Watcher {
	allowed := make(map[string]bool, len(reviewers))
	for _, account := range reviewers {
		allowed[account] = true
	}

	return &Watcher{
		chain:     chain,
		spec:      spec,
		enqueuer:  enqueuer,
		reviewers: allowed,
		interval:  interval,
	}
}

// Run blocks until the context is cancelled or the node connection is
// lost. The caller is responsible for supervision and restart.
func (w *Watcher) Run(ctx context.Context) error {
	head, err := w.chain.HeadBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get head block: %w", err)
	}

	slog.Info("Watching chain for commands", "start_block", head, "reviewers", len(w.reviewers))

	next := head
	failures := 0

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for {
			block, err := w.chain.GetBlock(ctx, next)
			if err != nil {
				failures++
				slog.Warn("Failed to fetch block", "block", next, "failures", failures, "error", err)
				if failures >= maxConsecutiveFailures {
					return fmt.Errorf("lost node connection at block %d: %w", next, err)
				}
				break
			}
			failures = 0

			if block == nil {
				// Head reached; wait for the next tick.
				break
			}

			for _, op := range block.CommentOps() {
				w.handleOp(ctx, op)
			}
			next++
		}
	}
}

// handleOp inspects one comment operation and enqueues it when it is a
// reply by an allow-listed account to a task-request post. Any failure
// skips the item, never the loop.
func (w *Watcher) handleOp(ctx context.Context, op steem.CommentOp) {
	if op.ParentAuthor == "" || !w.reviewers[op.Author] {
		return
	}

	reply, err := w.chain.GetContent(ctx, op.Author, op.Permlink)
	if err != nil {
		slog.Warn("Failed to fetch comment, skipping", "comment", "@"+op.Author+"/"+op.Permlink, "error", err)
		return
	}
	if reply == nil {
		slog.Info("Comment does not exist, skipping", "comment", "@"+op.Author+"/"+op.Permlink)
		return
	}

	root, err := w.chain.GetContent(ctx, reply.ParentAuthor, reply.ParentPermlink)
	if err != nil {
		slog.Warn("Failed to fetch parent, skipping", "comment", reply.AuthorPerm(), "error", err)
		return
	}
	if root == nil {
		slog.Info("Parent does not exist, skipping", "comment", reply.AuthorPerm())
		return
	}

	if !w.spec.IsTaskRequest(root.Tags()) {
		return
	}

	if err := w.enqueuer.EnqueueComment(reply, root); err != nil {
		slog.Error("Failed to enqueue comment", "comment", reply.AuthorPerm(), "error", err)
		return
	}

	slog.Info("Added to comments queue", "comment", reply.AuthorPerm(), "root", root.AuthorPerm())
}
