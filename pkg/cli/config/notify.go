package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/codefreeze/pkg/domain/interfaces"
	slackinfra "github.com/m-mizutani/codefreeze/pkg/infra/slack"
)

// Slack holds Slack notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
	Channel    string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for the feature flag report",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("CODEFREEZE_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel overriding the webhook default",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("CODEFREEZE_SLACK_CHANNEL"),
		},
	}
}

func (c *Slack) applyFile(f *fileConfig) {
	if c.Channel == "" {
		c.Channel = f.SlackChannel
	}
}

// NewNotifier returns nil when no webhook is configured
func (c *Slack) NewNotifier() (interfaces.Notifier, error) {
	if c.WebhookURL == "" {
		return nil, nil
	}
	return slackinfra.NewWebhookClient(c.WebhookURL, c.Channel)
}
