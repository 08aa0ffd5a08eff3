package chat

import (
	"context"
	"strings"
)

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich card. Platforms without native embeds render it as text
// with an optional image.
type Embed struct {
	Title       string
	Description string
	ImageURL    string
	Color       int
	Footer      string
	Fields      []Field
}

// Attachment is a local file uploaded with the message.
type Attachment struct {
	Path     string
	Name     string
	Size     int64
	MimeType string
	// SourceID identifies the remote object the file came from, if any.
	SourceID string
}

type Message struct {
	Text  string
	Embed *Embed
	File  *Attachment
}

// Sender is the part of a chat platform the posting pipeline needs.
type Sender interface {
	// Send posts msg to channelID and returns the platform message id, or ""
	// when the platform does not report one.
	Send(ctx context.Context, channelID string, msg Message) (string, error)
	React(ctx context.Context, channelID, messageID, emoji string) error
	// AttachmentLimit is the largest upload the platform accepts, in bytes.
	AttachmentLimit() int64
}

// Command is a parsed bot command, platform independent.
type Command struct {
	Name      string
	Args      []string
	ChannelID string
	UserID    string
	MessageID string
	Platform  string
}

type CommandHandler func(ctx context.Context, cmd Command)

// Platform is a connected chat backend.
type Platform interface {
	Sender
	Name() string
	SetPresence(ctx context.Context, text string) error
	// OnReady registers fn to run once the connection is usable.
	OnReady(fn func(ctx context.Context))
	OnCommand(h CommandHandler)
	// Run connects and blocks until ctx is done or the connection fails.
	Run(ctx context.Context) error
}

// ParseCommand extracts a command from text starting with prefix. A trailing
// "@botname" on the command word is dropped. Names are lowercased.
func ParseCommand(text, prefix string) (name string, args []string, ok bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", nil, false
	}

	parts := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(parts) == 0 {
		return "", nil, false
	}

	name = parts[0]
	if idx := strings.Index(name, "@"); idx != -1 {
		name = name[:idx]
	}
	if name == "" {
		return "", nil, false
	}
	return strings.ToLower(name), parts[1:], true
}
