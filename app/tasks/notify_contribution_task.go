package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/utopian-io/utbot/app/contrib"
	"github.com/utopian-io/utbot/app/database"
	"github.com/utopian-io/utbot/app/notify"
)

// NotifyContributionTask announces one reviewed contribution to the
// chat sink. Delivery is fire-and-forget; a failure is logged and the
// record is not re-queued.
type NotifyContributionTask struct {
	Task
	Contribution contrib.Contribution

	builder          *notify.EmbedBuilder
	sink             ChatSinkInterface
	notificationRepo database.NotificationRepository
	webhookURL       string
}

func NewNotifyContributionTask(c contrib.Contribution, builder *notify.EmbedBuilder,
	sink ChatSinkInterface, notificationRepo database.NotificationRepository, webhookURL string) *NotifyContributionTask {
	return &NotifyContributionTask{
		Task:             NewTask(TaskTypeNotifyContribution, c.URL),
		Contribution:     c,
		builder:          builder,
		sink:             sink,
		notificationRepo: notificationRepo,
		webhookURL:       webhookURL,
	}
}

func (t *NotifyContributionTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	content := fmt.Sprintf("<%s>", t.Contribution.URL)
	embeds := []*discordgo.MessageEmbed{t.builder.BuildContribution(&t.Contribution)}

	if err := t.sink.Send(t.webhookURL, content, embeds); err != nil {
		slog.Error("Failed to send contribution notification", "url", t.Contribution.URL, "error", err)
		return nil
	}

	slog.Info("Contribution notification sent",
		"url", t.Contribution.URL,
		"category", t.Contribution.Category,
		"duration", t.GetDuration())

	if t.notificationRepo != nil {
		author, permlink := t.Contribution.AuthorPerm()
		if err := t.notificationRepo.RecordNotification("contribution", author, permlink); err != nil {
			slog.Warn("Failed to record notification", "url", t.Contribution.URL, "error", err)
		}
	}

	return nil
}
