package slack

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// ErrNotConfigured is returned when the token or the channel is missing.
var ErrNotConfigured = errors.New("SLACK_AUTH_TOKEN and SLACK_CHANNEL_ID must be set")

// Notifier posts plain text messages to one Slack channel.
type Notifier struct {
	client    *slack.Client
	channelID string
}

// NewNotifier creates a notifier for channelID. Extra options are passed to
// the Slack client, e.g. slack.OptionAPIURL.
func NewNotifier(token, channelID string, opts ...slack.Option) (*Notifier, error) {
	if token == "" || channelID == "" {
		return nil, ErrNotConfigured
	}
	return &Notifier{
		client:    slack.New(token, opts...),
		channelID: channelID,
	}, nil
}

// Send posts message to the channel.
func (n *Notifier) Send(ctx context.Context, message string) error {
	_, _, err := n.client.PostMessageContext(
		ctx,
		n.channelID,
		slack.MsgOptionText(message, false),
	)
	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}
	return nil
}
