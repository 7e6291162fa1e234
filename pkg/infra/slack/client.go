package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/codefreeze/pkg/domain/interfaces"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

type client struct {
	webhookURL string
	channel    string
}

// NewWebhookClient creates a notifier posting to a Slack incoming webhook.
// channel overrides the webhook's default channel when not empty.
func NewWebhookClient(webhookURL, channel string) (interfaces.Notifier, error) {
	if webhookURL == "" {
		return nil, goerr.Wrap(types.ErrConfiguration, "Slack webhook URL is required")
	}
	return &client{webhookURL: webhookURL, channel: channel}, nil
}

// Notify posts text as a single message
func (c *client) Notify(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{
		Text:    text,
		Channel: c.channel,
	}
	if err := slack.PostWebhookContext(ctx, c.webhookURL, msg); err != nil {
		return goerr.Wrap(fmt.Errorf("%w: %w", types.ErrRemote, err), "failed to post Slack message")
	}
	return nil
}
