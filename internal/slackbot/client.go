package slackbot

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/hanumendraprm/slack-submit-for-review-app/internal/workflow"
)

// Client adapts *slack.Client to the workflow's Chat interface.
type Client struct {
	api *slack.Client
}

func NewClient(api *slack.Client) *Client {
	return &Client{api: api}
}

func (c *Client) PostMessage(ctx context.Context, channelID string, msg workflow.Message) (string, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(msg.Text, false)}
	if len(msg.Blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(msg.Blocks...))
	}
	if msg.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(msg.ThreadTS))
	}
	_, ts, err := c.api.PostMessageContext(ctx, channelID, opts...)
	return ts, err
}

func (c *Client) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	_, err := c.api.PostEphemeralContext(ctx, channelID, userID, slack.MsgOptionText(text, false))
	return err
}

func (c *Client) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	_, err := c.api.OpenViewContext(ctx, triggerID, view)
	return err
}

func (c *Client) UpdateView(ctx context.Context, viewID string, view slack.ModalViewRequest) error {
	_, err := c.api.UpdateViewContext(ctx, view, "", "", viewID)
	return err
}
