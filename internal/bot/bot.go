package bot

import (
	"context"

	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

// Bot wires a platform connection to the router and runs ready hooks once
// the connection is up.
type Bot struct {
	platform chat.Platform
	router   *Router
	presence string
	onReady  []func(ctx context.Context)
}

func New(platform chat.Platform, router *Router, presence string) *Bot {
	return &Bot{
		platform: platform,
		router:   router,
		presence: presence,
	}
}

// OnReady adds fn to the hooks run after the platform signals ready.
func (b *Bot) OnReady(fn func(ctx context.Context)) {
	b.onReady = append(b.onReady, fn)
}

func (b *Bot) Run(ctx context.Context) error {
	b.platform.OnCommand(b.router.Dispatch)
	b.platform.OnReady(func(ctx context.Context) {
		logger.Info("Platform ready", "platform", b.platform.Name(), "commands", b.router.Commands())
		if b.presence != "" {
			if err := b.platform.SetPresence(ctx, b.presence); err != nil {
				logger.Warn("Failed to set presence", "error", err)
			}
		}
		for _, fn := range b.onReady {
			fn(ctx)
		}
	})
	return b.platform.Run(ctx)
}
