package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackSender delivers messages through the Slack Web API.
type SlackSender struct {
	client *slack.Client
}

// NewSlackSender creates a SlackSender from a bot token.
func NewSlackSender(botToken string) *SlackSender {
	return &SlackSender{client: slack.New(botToken)}
}

// Send posts a text message to the given channel.
func (s *SlackSender) Send(ctx context.Context, channel, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notify.SlackSender.Send: %w", err)
	}
	return nil
}
