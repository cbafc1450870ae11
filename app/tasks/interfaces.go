package tasks

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/utopian-io/utbot/app/command"
	"github.com/utopian-io/utbot/app/contrib"
	"github.com/utopian-io/utbot/app/steem"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing and by
// the ingestion loop to hand over matched (reply, root) pairs.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueComment(reply, root *steem.Comment) error
}

// ReplyNotifierInterface is the source-platform leg used by the dispatcher.
type ReplyNotifierInterface interface {
	Account() string
	RepliedTo(ctx context.Context, c *steem.Comment) (*steem.Comment, error)
	SendReply(ctx context.Context, parent *steem.Comment, body string) error
	UpsertSummary(ctx context.Context, root *steem.Comment, cmd *command.Command) (command.Command, error)
}

// ChatSinkInterface is the fire-and-forget chat leg.
type ChatSinkInterface interface {
	Send(webhookURL, content string, embeds []*discordgo.MessageEmbed) error
}

// ContributionFetcherInterface fetches reviewed contribution batches.
type ContributionFetcherInterface interface {
	FetchReviewed(ctx context.Context) ([]contrib.Contribution, error)
}
