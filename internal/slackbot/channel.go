package slackbot

import (
	"context"
	"fmt"
	"sync"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// conversationsAPI is the slice of the Slack API the resolver needs.
type conversationsAPI interface {
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	JoinConversationContext(ctx context.Context, channelID string) (*slack.Channel, string, []string, error)
}

// ChannelResolver turns the configured target channel into a channel ID. A
// configured ID is used as-is; a name is resolved against the workspace's
// private channels, falling back to joining by name. The result is cached
// for the process lifetime; a failed resolution caches nothing, so the next
// call retries from scratch.
type ChannelResolver struct {
	api  conversationsAPI
	id   string
	name string
	log  *zap.Logger

	mu     sync.Mutex
	cached string
}

func NewChannelResolver(api conversationsAPI, channelID, channelName string, log *zap.Logger) *ChannelResolver {
	return &ChannelResolver{api: api, id: channelID, name: channelName, log: log}
}

func (r *ChannelResolver) Resolve(ctx context.Context) (string, error) {
	if r.id != "" {
		return r.id, nil
	}
	if r.name == "" {
		return "", fmt.Errorf("no target channel configured")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != "" {
		return r.cached, nil
	}

	channels, _, err := r.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
		Types: []string{"private_channel"},
		Limit: 1000,
	})
	if err != nil {
		r.log.Warn("failed to list conversations", zap.Error(err))
	} else {
		for _, ch := range channels {
			if ch.Name == r.name {
				r.cached = ch.ID
				return ch.ID, nil
			}
		}
	}

	joined, _, _, err := r.api.JoinConversationContext(ctx, r.name)
	if err == nil && joined != nil {
		r.cached = joined.ID
		return joined.ID, nil
	}
	if err != nil {
		r.log.Warn("failed to join channel", zap.String("channel", r.name), zap.Error(err))
	}

	return "", fmt.Errorf("could not find or join private channel #%s: ensure the app is installed and invited to the channel", r.name)
}
