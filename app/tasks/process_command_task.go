package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/utopian-io/utbot/app/categories"
	"github.com/utopian-io/utbot/app/command"
	"github.com/utopian-io/utbot/app/database"
	"github.com/utopian-io/utbot/app/notify"
	"github.com/utopian-io/utbot/app/steem"
)

// ProcessCommandTask runs the per-comment decision process: parse the
// reply body, then either answer with help, ask for the missing status,
// or publish the task update. Every branch is terminal; an error inside
// a branch is logged and never re-queues the item.
type ProcessCommandTask struct {
	Task
	Reply *steem.Comment
	Root  *steem.Comment

	parser           *command.Parser
	spec             *categories.Spec
	messages         *notify.Messages
	builder          *notify.EmbedBuilder
	notifier         ReplyNotifierInterface
	sink             ChatSinkInterface
	notificationRepo database.NotificationRepository
	tasksWebhookURL  string
	uiBaseURL        string
}

func NewProcessCommandTask(reply, root *steem.Comment, parser *command.Parser, spec *categories.Spec,
	messages *notify.Messages, builder *notify.EmbedBuilder, notifier ReplyNotifierInterface,
	sink ChatSinkInterface, notificationRepo database.NotificationRepository,
	tasksWebhookURL, uiBaseURL string) *ProcessCommandTask {
	return &ProcessCommandTask{
		Task:             NewTask(TaskTypeProcessCommand, reply.AuthorPerm()),
		Reply:            reply,
		Root:             root,
		parser:           parser,
		spec:             spec,
		messages:         messages,
		builder:          builder,
		notifier:         notifier,
		sink:             sink,
		notificationRepo: notificationRepo,
		tasksWebhookURL:  tasksWebhookURL,
		uiBaseURL:        uiBaseURL,
	}
}

func (t *ProcessCommandTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cmd := t.parser.Parse(t.Reply.Body)
	if cmd == nil {
		slog.Info("No command found", "comment", t.Reply.AuthorPerm())
		return nil
	}

	if cmd.Help {
		t.handleHelp(ctx)
		return nil
	}

	if cmd.Status == "" {
		t.handleMissingStatus(ctx, cmd)
		return nil
	}

	t.publish(ctx, cmd)
	return nil
}

func (t *ProcessCommandTask) handleHelp(ctx context.Context) {
	if t.Reply.Author == t.notifier.Account() {
		slog.Debug("Ignoring help command from own account", "comment", t.Reply.AuthorPerm())
		return
	}

	existing, err := t.notifier.RepliedTo(ctx, t.Reply)
	if err != nil {
		slog.Error("Failed to check existing replies, skipping help", "comment", t.Reply.AuthorPerm(), "error", err)
		return
	}
	if existing != nil {
		slog.Info("Already replied with help", "comment", t.Reply.AuthorPerm())
		return
	}

	if err := t.notifier.SendReply(ctx, t.Reply, t.messages.Help()); err != nil {
		slog.Error("Failed to send help reply", "comment", t.Reply.AuthorPerm(), "error", err)
		return
	}

	slog.Info("Help message replied", "comment", t.Reply.AuthorPerm())
	t.recordNotification("help", t.Reply)
}

func (t *ProcessCommandTask) handleMissingStatus(ctx context.Context, cmd *command.Command) {
	if cmd.IsEmpty() {
		slog.Debug("Empty command, dropping", "comment", t.Reply.AuthorPerm())
		return
	}

	existing, err := t.notifier.RepliedTo(ctx, t.Reply)
	if err != nil {
		slog.Error("Failed to check existing replies, skipping notice", "comment", t.Reply.AuthorPerm(), "error", err)
		return
	}
	if existing != nil {
		slog.Info("Already sent missing status notice", "comment", t.Reply.AuthorPerm())
		return
	}

	if err := t.notifier.SendReply(ctx, t.Reply, t.messages.StatusMissing()); err != nil {
		slog.Error("Failed to send missing status notice", "comment", t.Reply.AuthorPerm(), "error", err)
		return
	}

	slog.Info("Missing status notice sent", "comment", t.Reply.AuthorPerm())
	t.recordNotification("missing_status", t.Reply)
}

func (t *ProcessCommandTask) publish(ctx context.Context, cmd *command.Command) {
	if _, ok := t.spec.ResolveTask(t.Root.Tags()); !ok {
		slog.Info("No valid task category found", "root", t.Root.AuthorPerm())
		return
	}

	if _, err := t.notifier.UpsertSummary(ctx, t.Root, cmd); err != nil {
		// The chat leg still goes out; a lost summary is recovered on
		// the next status update.
		slog.Error("Failed to upsert task summary", "root", t.Root.AuthorPerm(), "error", err)
	} else {
		slog.Info("Task summary updated", "root", t.Root.AuthorPerm())
	}

	if t.tasksWebhookURL != "" {
		content := fmt.Sprintf("[%s] <%s>", strings.ToUpper(cmd.Status), steem.CommentURL(t.uiBaseURL, t.Root))
		embeds := []*discordgo.MessageEmbed{t.builder.BuildTask(t.Root, cmd)}
		if err := t.sink.Send(t.tasksWebhookURL, content, embeds); err != nil {
			slog.Error("Failed to send task notification", "root", t.Root.AuthorPerm(), "error", err)
			return
		}
		slog.Info("Task notification sent", "root", t.Root.AuthorPerm(), "status", cmd.Status)
	}

	t.recordNotification("task", t.Root)
}

func (t *ProcessCommandTask) recordNotification(kind string, c *steem.Comment) {
	if t.notificationRepo == nil {
		return
	}
	if err := t.notificationRepo.RecordNotification(kind, c.Author, c.Permlink); err != nil {
		slog.Warn("Failed to record notification", "kind", kind, "comment", c.AuthorPerm(), "error", err)
	}
}
