package notify

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// WebhookSink delivers embeds to chat webhooks. Delivery is
// fire-and-forget: a failed send is reported to the caller for logging
// and never retried.
type WebhookSink struct {
	session *discordgo.Session
}

func NewWebhookSink() (*WebhookSink, error) {
	// Webhook execution needs no bot token.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &WebhookSink{session: session}, nil
}

// Send transmits one message with its embeds to the webhook address.
func (s *WebhookSink) Send(webhookURL, content string, embeds []*discordgo.MessageEmbed) error {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return err
	}

	_, err = s.session.WebhookExecute(id, token, false, &discordgo.WebhookParams{
		Content: content,
		Embeds:  embeds,
	})
	if err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}

	return nil
}

// parseWebhookURL splits ".../api/webhooks/<id>/<token>" into its parts.
func parseWebhookURL(webhookURL string) (id, token string, err error) {
	const marker = "/webhooks/"
	idx := strings.LastIndex(webhookURL, marker)
	if idx < 0 {
		return "", "", fmt.Errorf("invalid webhook url %q", webhookURL)
	}

	rest := strings.Trim(webhookURL[idx+len(marker):], "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid webhook url %q", webhookURL)
	}

	return parts[0], parts[1], nil
}
