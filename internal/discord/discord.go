package discord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

const (
	Name            = "discord"
	CommandPrefix   = "!"
	AttachmentLimit = 8 << 20

	maxContent = 2000
)

// Session is the subset of the gateway session used for sending.
type Session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	UpdateGameStatus(idle int, name string) error
}

type Platform struct {
	gateway *discordgo.Session
	session Session

	mu        sync.Mutex
	runCtx    context.Context
	onReady   []func(ctx context.Context)
	onCommand chat.CommandHandler
}

var _ chat.Platform = (*Platform)(nil)

func New(token string) (*Platform, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	p := newPlatform(s)
	p.gateway = s

	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logger.Info("Discord session ready", "user", r.User.Username, "guilds", len(r.Guilds))
		p.ready()
	})
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		p.handleMessage(m)
	})
	return p, nil
}

func newPlatform(s Session) *Platform {
	return &Platform{session: s, runCtx: context.Background()}
}

func (p *Platform) Name() string { return Name }

func (p *Platform) AttachmentLimit() int64 { return AttachmentLimit }

func (p *Platform) OnReady(fn func(ctx context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReady = append(p.onReady, fn)
}

func (p *Platform) OnCommand(h chat.CommandHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCommand = h
}

func (p *Platform) SetPresence(_ context.Context, text string) error {
	return p.session.UpdateGameStatus(0, text)
}

// Run opens the gateway and blocks until ctx is done.
func (p *Platform) Run(ctx context.Context) error {
	if p.gateway == nil {
		return fmt.Errorf("discord session not initialized")
	}

	p.mu.Lock()
	p.runCtx = ctx
	p.mu.Unlock()

	if err := p.gateway.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	<-ctx.Done()

	if err := p.gateway.Close(); err != nil {
		logger.Warn("Failed to close discord gateway", "error", err)
	}
	return nil
}

func (p *Platform) ready() {
	p.mu.Lock()
	ctx := p.runCtx
	hooks := append([]func(context.Context){}, p.onReady...)
	p.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}
}

func (p *Platform) handleMessage(m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}
	name, args, ok := chat.ParseCommand(m.Content, CommandPrefix)
	if !ok {
		return
	}

	p.mu.Lock()
	h, ctx := p.onCommand, p.runCtx
	p.mu.Unlock()
	if h == nil {
		return
	}

	h(ctx, chat.Command{
		Name:      name,
		Args:      args,
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		MessageID: m.ID,
		Platform:  Name,
	})
}

func (p *Platform) Send(ctx context.Context, channelID string, msg chat.Message) (string, error) {
	data := &discordgo.MessageSend{Content: truncate(msg.Text, maxContent)}
	if msg.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{toEmbed(msg.Embed)}
	}

	if a := msg.File; a != nil {
		f, err := os.Open(a.Path)
		if err != nil {
			return "", fmt.Errorf("open attachment: %w", err)
		}
		defer f.Close()

		name := a.Name
		if name == "" {
			name = filepath.Base(a.Path)
		}
		data.Files = []*discordgo.File{{Name: name, ContentType: a.MimeType, Reader: f}}
	}

	sent, err := p.session.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	if sent == nil {
		return "", nil
	}
	return sent.ID, nil
}

func (p *Platform) React(ctx context.Context, channelID, messageID, emoji string) error {
	if err := p.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}
	return nil
}

func toEmbed(e *chat.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.ImageURL != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
