package handler

import (
	"context"

	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/internal/messaging"
	"github.com/pavelc4/lukey-bot/internal/pipeline"
)

type Runner interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Outcome
}

// PostHandler serves the media posting commands.
type PostHandler struct {
	pipe Runner
}

func NewPostHandler(pipe Runner) *PostHandler {
	return &PostHandler{pipe: pipe}
}

func (h *PostHandler) HandleLuke(ctx context.Context, cmd chat.Command) error {
	h.pipe.Run(ctx, pipeline.Request{ChannelID: cmd.ChannelID, Pool: messaging.Normal})
	return nil
}

func (h *PostHandler) HandleSpicyLuke(ctx context.Context, cmd chat.Command) error {
	h.pipe.Run(ctx, pipeline.Request{ChannelID: cmd.ChannelID, Pool: messaging.Spicy})
	return nil
}

type HelpHandler struct {
	sender chat.Sender
	prefix string
}

func NewHelpHandler(sender chat.Sender, prefix string) *HelpHandler {
	return &HelpHandler{sender: sender, prefix: prefix}
}

func (h *HelpHandler) HandleHelp(ctx context.Context, cmd chat.Command) error {
	_, err := h.sender.Send(ctx, cmd.ChannelID, chat.Message{Embed: messaging.Help(h.prefix)})
	return err
}
