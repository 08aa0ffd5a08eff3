package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

const (
	maxDetail   = 1800
	sendTimeout = 15 * time.Second
)

// Reporter sends full diagnostics to the operator: always to the log, and
// to the operator channel when one is configured.
type Reporter struct {
	sender    chat.Sender
	channelID string
}

func New(sender chat.Sender, channelID string) *Reporter {
	return &Reporter{sender: sender, channelID: channelID}
}

func (r *Reporter) Error(ctx context.Context, msg string, err error, args ...any) {
	logger.FromContext(ctx).Error(msg, append(args, "error", err)...)
	r.post(ctx, fmt.Sprintf("⚠️ %s\n```\n%v\n```", msg, err))
}

func (r *Reporter) Panic(ctx context.Context, recovered any, stack []byte, args ...any) {
	logger.FromContext(ctx).Error("Panic recovered", append(args, "error", recovered, "stack", string(stack))...)
	r.post(ctx, fmt.Sprintf("💥 panic: %v\n```\n%s\n```", recovered, stack))
}

func (r *Reporter) post(ctx context.Context, text string) {
	if r == nil || r.sender == nil || r.channelID == "" {
		return
	}
	if len(text) > maxDetail {
		text = strings.ToValidUTF8(text[:maxDetail], "") + "\n…(truncated)"
	}

	// the invocation may already be cancelled, the report should still go out
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if _, err := r.sender.Send(sendCtx, r.channelID, chat.Message{Text: text}); err != nil {
		logger.Warn("Failed to post operator report", "channel", r.channelID, "error", err)
	}
}
