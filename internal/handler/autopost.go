package handler

import (
	"context"
	"fmt"

	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/internal/messaging"
	"github.com/pavelc4/lukey-bot/internal/pipeline"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

// AutoPost returns a scheduled task posting pool media to channelID and
// reacting to the post with the pool's emoji.
func AutoPost(pipe Runner, sender chat.Sender, channelID string, pool messaging.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		out := pipe.Run(ctx, pipeline.Request{ChannelID: channelID, Pool: pool})
		if out.Kind == pipeline.Failed {
			return fmt.Errorf("auto-post %s: %w", pool.Name, out.Err)
		}

		if out.Kind == pipeline.Delivered && out.MessageID != "" && pool.Reaction != "" {
			if err := sender.React(ctx, channelID, out.MessageID, pool.Reaction); err != nil {
				logger.FromContext(ctx).Warn("Failed to react to auto-post", "pool", pool.Name, "error", err)
			}
		}
		return nil
	}
}
