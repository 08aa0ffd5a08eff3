package messaging

import (
	"fmt"
	"strings"

	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/internal/delivery"
)

// DefaultColor is the help embed color.
const DefaultColor = 0x5865F2

const (
	TextGenericError   = "Something went wrong, try again later."
	TextNoSuitable     = "Couldn't find a Luke small enough to post. Try again!"
	TextDownloadFailed = "Couldn't download that one from Drive. Try again!"
	TextOwnerOnly      = "This command is for the bot owner."
	TextSlowDown       = "Slow down, Luke needs a break. Try again in a moment."
)

// TooLarge explains a size rejection without internal error detail.
func TooLarge(reason delivery.Reason, size int64) string {
	mb := float64(size) / (1 << 20)
	switch reason {
	case delivery.ReasonToolUnavailable:
		return fmt.Sprintf("That GIF is too large to post (%.1f MB) and can't be shrunk right now.", mb)
	case delivery.ReasonCompressionInsufficient:
		return fmt.Sprintf("That GIF is too large to post (%.1f MB) even after shrinking it.", mb)
	default:
		return fmt.Sprintf("That GIF is too large to post (%.1f MB).", mb)
	}
}

// Help builds the instructions embed for a command prefix.
func Help(prefix string) *chat.Embed {
	var b strings.Builder
	fmt.Fprintf(&b, "**%sluke** — random Luke image + random quote\n", prefix)
	fmt.Fprintf(&b, "**%sspicyluke** — spicy Luke image + spicy quote 🔥\n", prefix)
	b.WriteString("**Source:** Google Drive folder (JPG, PNG, GIF)\n\n")
	b.WriteString("Add new images to the Drive folder and LukeyBot will use them automatically.\n")
	b.WriteString("Hydration recommended.")

	return &chat.Embed{
		Title:       "📸 LukeyBot — Instructions",
		Description: b.String(),
		Color:       DefaultColor,
	}
}
