package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gotd/td/tg"

	"github.com/pavelc4/lukey-bot/pkg/logger"
)

var ErrUnknownPeer = errors.New("peer not seen yet")

// peerKey formats a peer the way the Bot API numbers chats: users are
// positive, basic groups negative, channels carry a -100 prefix.
func peerKey(peer tg.PeerClass) string {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return strconv.FormatInt(p.UserID, 10)
	case *tg.PeerChat:
		return "-" + strconv.FormatInt(p.ChatID, 10)
	case *tg.PeerChannel:
		return "-100" + strconv.FormatInt(p.ChannelID, 10)
	default:
		return ""
	}
}

// peerCache maps channel ids to input peers with their access hashes.
type peerCache struct {
	mu    sync.RWMutex
	peers map[string]tg.InputPeerClass
}

func newPeerCache() *peerCache {
	return &peerCache{peers: make(map[string]tg.InputPeerClass)}
}

func (c *peerCache) remember(e tg.Entities, peer tg.PeerClass) (string, error) {
	input, err := resolvePeer(e, peer)
	if err != nil {
		return "", err
	}
	key := peerKey(peer)

	c.set(key, input)
	return key, nil
}

func (c *peerCache) set(key string, input tg.InputPeerClass) {
	c.mu.Lock()
	c.peers[key] = input
	c.mu.Unlock()
}

func (c *peerCache) get(key string) (tg.InputPeerClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.peers[key]
	return p, ok
}

func resolvePeer(e tg.Entities, peer tg.PeerClass) (tg.InputPeerClass, error) {
	switch p := peer.(type) {
	case *tg.PeerUser:
		user, ok := e.Users[p.UserID]
		if !ok {
			return nil, fmt.Errorf("user not found in entities")
		}
		return user.AsInputPeer(), nil
	case *tg.PeerChat:
		chat, ok := e.Chats[p.ChatID]
		if !ok {
			return nil, fmt.Errorf("chat not found in entities")
		}
		return chat.AsInputPeer(), nil
	case *tg.PeerChannel:
		channel, ok := e.Channels[p.ChannelID]
		if !ok {
			return nil, fmt.Errorf("channel not found in entities")
		}
		return channel.AsInputPeer(), nil
	default:
		return nil, fmt.Errorf("unknown peer type")
	}
}

// peer turns a channel id into an input peer. Ids seen in incoming messages
// come from the cache. "@name" and "-100…" channel ids are resolved through
// the API once and cached. Basic groups need no access hash.
func (p *Platform) peer(ctx context.Context, channelID string) (tg.InputPeerClass, error) {
	if input, ok := p.peers.get(channelID); ok {
		return input, nil
	}

	if username, ok := strings.CutPrefix(channelID, "@"); ok {
		resolved, err := p.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", channelID, err)
		}
		e := entitiesOf(resolved.Chats, resolved.Users)
		key, err := p.peers.remember(e, resolved.Peer)
		if err != nil {
			return nil, err
		}
		input, _ := p.peers.get(key)
		p.peers.set(channelID, input)
		return input, nil
	}

	if rest, ok := strings.CutPrefix(channelID, "-100"); ok {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return p.resolveChannel(ctx, channelID, id)
		}
	}

	if rest, ok := strings.CutPrefix(channelID, "-"); ok && !strings.HasPrefix(rest, "100") {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return &tg.InputPeerChat{ChatID: id}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPeer, channelID)
}

func (p *Platform) resolveChannel(ctx context.Context, channelID string, id int64) (tg.InputPeerClass, error) {
	res, err := p.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{&tg.InputChannel{ChannelID: id}})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownPeer, channelID, err)
	}

	var chats []tg.ChatClass
	switch v := res.(type) {
	case *tg.MessagesChats:
		chats = v.Chats
	case *tg.MessagesChatsSlice:
		chats = v.Chats
	}

	key, err := p.peers.remember(entitiesOf(chats, nil), &tg.PeerChannel{ChannelID: id})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownPeer, channelID, err)
	}
	input, _ := p.peers.get(key)
	return input, nil
}

// preload resolves the given channel ids so the first scheduled post does
// not depend on someone messaging the bot from that channel.
func (p *Platform) preload(ctx context.Context) {
	p.mu.Lock()
	ids := append([]string(nil), p.preloadIDs...)
	p.mu.Unlock()

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := p.peer(ctx, id); err != nil {
			logger.Warn("Failed to resolve channel", "channel", id, "error", err)
		}
	}
}

func entitiesOf(chats []tg.ChatClass, users []tg.UserClass) tg.Entities {
	e := tg.Entities{
		Users:    make(map[int64]*tg.User),
		Chats:    make(map[int64]*tg.Chat),
		Channels: make(map[int64]*tg.Channel),
	}
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			e.Users[user.ID] = user
		}
	}
	for _, c := range chats {
		switch v := c.(type) {
		case *tg.Chat:
			e.Chats[v.ID] = v
		case *tg.Channel:
			e.Channels[v.ID] = v
		}
	}
	return e
}
