package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"

	"github.com/pavelc4/lukey-bot/config"
	"github.com/pavelc4/lukey-bot/internal/cache"
	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

const (
	Name            = "telegram"
	CommandPrefix   = "/"
	AttachmentLimit = 50 << 20

	// messages older than this are backlog replayed after a reconnect
	staleAfter = 5 * time.Minute

	documentCacheSize = 512
)

// API is the subset of the MTProto client used for sending.
type API interface {
	UploadSaveFilePart(ctx context.Context, req *tg.UploadSaveFilePartRequest) (bool, error)
	UploadSaveBigFilePart(ctx context.Context, req *tg.UploadSaveBigFilePartRequest) (bool, error)
	MessagesSendMessage(ctx context.Context, req *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error)
	MessagesSendMedia(ctx context.Context, req *tg.MessagesSendMediaRequest) (tg.UpdatesClass, error)
	MessagesSendReaction(ctx context.Context, req *tg.MessagesSendReactionRequest) (tg.UpdatesClass, error)
	ContactsResolveUsername(ctx context.Context, req *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	ChannelsGetChannels(ctx context.Context, id []tg.InputChannelClass) (tg.MessagesChatsClass, error)
}

// Platform is the Telegram backend, logged in as a bot over MTProto.
type Platform struct {
	client *telegram.Client
	api    API
	token  string
	peers     *peerCache
	documents *cache.Cache
	now       func() time.Time

	mu         sync.Mutex
	runCtx     context.Context
	onReady    []func(ctx context.Context)
	onCommand  chat.CommandHandler
	me         *tg.User
	preloadIDs []string
}

var _ chat.Platform = (*Platform)(nil)

func New(cfg config.TelegramConfig) (*Platform, error) {
	if err := os.MkdirAll(cfg.SessionDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	dispatcher := tg.NewUpdateDispatcher()
	client := telegram.NewClient(cfg.AppID, cfg.AppHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: filepath.Join(cfg.SessionDir, "session.json")},
		UpdateHandler:  dispatcher,
	})

	p := newPlatform(client.API(), cfg.BotToken)
	p.client = client

	dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		if msg, ok := u.Message.(*tg.Message); ok {
			p.handleMessage(e, msg)
		}
		return nil
	})
	dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		if msg, ok := u.Message.(*tg.Message); ok {
			p.handleMessage(e, msg)
		}
		return nil
	})
	return p, nil
}

func newPlatform(api API, token string) *Platform {
	return &Platform{
		api:       api,
		token:     token,
		peers:     newPeerCache(),
		documents: cache.New(documentCacheSize),
		now:       time.Now,
		runCtx:    context.Background(),
	}
}

func (p *Platform) Name() string { return Name }

func (p *Platform) AttachmentLimit() int64 { return AttachmentLimit }

// SetPresence is a no-op: bots have no status text on Telegram.
func (p *Platform) SetPresence(context.Context, string) error { return nil }

func (p *Platform) OnReady(fn func(ctx context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReady = append(p.onReady, fn)
}

// Preload queues channel ids to resolve right after login.
func (p *Platform) Preload(channelIDs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preloadIDs = append(p.preloadIDs, channelIDs...)
}

func (p *Platform) OnCommand(h chat.CommandHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCommand = h
}

func (p *Platform) Run(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("telegram client not initialized")
	}
	return p.client.Run(ctx, func(ctx context.Context) error {
		status, err := p.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status failed: %w", err)
		}
		if !status.Authorized {
			if _, err := p.client.Auth().Bot(ctx, p.token); err != nil {
				return fmt.Errorf("bot login failed: %w", err)
			}
		}

		me, err := p.client.Self(ctx)
		if err != nil {
			return fmt.Errorf("get self failed: %w", err)
		}

		p.mu.Lock()
		p.me = me
		p.runCtx = ctx
		hooks := append([]func(context.Context){}, p.onReady...)
		p.mu.Unlock()

		logger.Info("Telegram client connected", "username", me.Username, "id", me.ID)
		p.preload(ctx)
		for _, fn := range hooks {
			fn(ctx)
		}

		<-ctx.Done()
		return nil
	})
}

func (p *Platform) handleMessage(e tg.Entities, msg *tg.Message) {
	if msg.Out {
		return
	}
	if p.now().Sub(time.Unix(int64(msg.Date), 0)) > staleAfter {
		logger.Debug("Ignoring stale message", "id", msg.ID)
		return
	}

	name, args, ok := chat.ParseCommand(msg.Message, CommandPrefix)
	if !ok {
		return
	}

	channelID, err := p.peers.remember(e, msg.PeerID)
	if err != nil {
		logger.Warn("Failed to resolve peer", "id", msg.ID, "error", err)
		return
	}

	var userID string
	if from, ok := msg.GetFromID(); ok {
		userID = peerKey(from)
	} else {
		userID = peerKey(msg.PeerID)
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
		ChannelID: channelID,
		UserID:    userID,
		MessageID: fmt.Sprint(msg.ID),
		Platform:  Name,
	})
}
