package telegram

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gotd/td/tg"

	"github.com/pavelc4/lukey-bot/internal/cache"
	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

func (p *Platform) Send(ctx context.Context, channelID string, msg chat.Message) (string, error) {
	peer, err := p.peer(ctx, channelID)
	if err != nil {
		return "", err
	}

	text, entities := parseEntities(renderMessage(msg))

	var updates tg.UpdatesClass
	switch {
	case msg.File != nil:
		updates, err = p.sendFile(ctx, peer, msg.File, text, entities)
		if err != nil {
			return "", err
		}
	case msg.Embed != nil && msg.Embed.ImageURL != "":
		updates, err = p.api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
			Peer:     peer,
			Media:    &tg.InputMediaPhotoExternal{URL: msg.Embed.ImageURL},
			Message:  text,
			Entities: entities,
			RandomID: rand.Int64(),
		})
		if err != nil {
			return "", fmt.Errorf("send photo: %w", err)
		}
	default:
		updates, err = p.api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
			Peer:     peer,
			Message:  text,
			Entities: entities,
			RandomID: rand.Int64(),
		})
		if err != nil {
			return "", fmt.Errorf("send message: %w", err)
		}
	}

	if id, ok := getMsgID(updates); ok {
		return strconv.Itoa(id), nil
	}
	return "", nil
}

// sendFile reuses a previously uploaded copy of the same file when one is
// cached, and uploads otherwise.
func (p *Platform) sendFile(ctx context.Context, peer tg.InputPeerClass, a *chat.Attachment, text string, entities []tg.MessageEntityClass) (tg.UpdatesClass, error) {
	send := func(media tg.InputMediaClass) (tg.UpdatesClass, error) {
		return p.api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
			Peer:     peer,
			Media:    media,
			Message:  text,
			Entities: entities,
			RandomID: rand.Int64(),
		})
	}

	key := documentKey(a)
	if doc, ok := p.documents.Get(key); ok {
		updates, err := send(&tg.InputMediaDocument{ID: &tg.InputDocument{
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
		}})
		if err == nil {
			return updates, nil
		}
		logger.FromContext(ctx).Debug("Cached document rejected, uploading again", "key", key, "error", err)
		p.documents.Delete(key)
	}

	media, err := p.uploadedMedia(ctx, a)
	if err != nil {
		return nil, err
	}
	updates, err := send(media)
	if err != nil {
		return nil, fmt.Errorf("send media: %w", err)
	}
	if doc, ok := sentDocument(updates); ok {
		p.documents.Set(key, doc)
	}
	return updates, nil
}

func (p *Platform) uploadedMedia(ctx context.Context, a *chat.Attachment) (tg.InputMediaClass, error) {
	file, err := uploadFile(ctx, p.api, a.Path)
	if err != nil {
		return nil, err
	}

	name := a.Name
	if name == "" {
		name = filepath.Base(a.Path)
	}
	mime := a.MimeType
	if mime == "" {
		if m, err := mimetype.DetectFile(a.Path); err == nil {
			mime = m.String()
		} else {
			mime = "application/octet-stream"
		}
	}

	attrs := []tg.DocumentAttributeClass{&tg.DocumentAttributeFilename{FileName: name}}
	if mime == "image/gif" {
		attrs = append(attrs, &tg.DocumentAttributeAnimated{})
	}
	return &tg.InputMediaUploadedDocument{
		File:       file,
		MimeType:   mime,
		Attributes: attrs,
	}, nil
}

func (p *Platform) React(ctx context.Context, channelID, messageID, emoji string) error {
	peer, err := p.peer(ctx, channelID)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("message id %q: %w", messageID, err)
	}

	_, err = p.api.MessagesSendReaction(ctx, &tg.MessagesSendReactionRequest{
		Peer:     peer,
		MsgID:    id,
		Reaction: []tg.ReactionClass{&tg.ReactionEmoji{Emoticon: emoji}},
	})
	if err != nil {
		return fmt.Errorf("send reaction: %w", err)
	}
	return nil
}

func getMsgID(updates tg.UpdatesClass) (int, bool) {
	if u, ok := updates.(*tg.UpdateShortSentMessage); ok {
		return u.ID, true
	}
	if msg, ok := sentMessage(updates); ok {
		return msg.ID, true
	}
	return 0, false
}

func sentMessage(updates tg.UpdatesClass) (*tg.Message, bool) {
	var list []tg.UpdateClass
	switch u := updates.(type) {
	case *tg.Updates:
		list = u.Updates
	case *tg.UpdatesCombined:
		list = u.Updates
	}

	for _, update := range list {
		var m tg.MessageClass
		switch v := update.(type) {
		case *tg.UpdateNewMessage:
			m = v.Message
		case *tg.UpdateNewChannelMessage:
			m = v.Message
		default:
			continue
		}
		if msg, ok := m.(*tg.Message); ok {
			return msg, true
		}
	}
	return nil, false
}

func sentDocument(updates tg.UpdatesClass) (cache.Document, bool) {
	msg, ok := sentMessage(updates)
	if !ok {
		return cache.Document{}, false
	}
	media, ok := msg.Media.(*tg.MessageMediaDocument)
	if !ok {
		return cache.Document{}, false
	}
	doc, ok := media.Document.(*tg.Document)
	if !ok {
		return cache.Document{}, false
	}
	return cache.Document{ID: doc.ID, AccessHash: doc.AccessHash, FileReference: doc.FileReference}, true
}

// documentKey identifies a file by its source object and size, so a direct
// and a re-encoded copy of one source stay apart. Without a source id the
// name stands in.
func documentKey(a *chat.Attachment) string {
	size := a.Size
	if info, err := os.Stat(a.Path); err == nil {
		size = info.Size()
	}
	if a.SourceID != "" {
		return fmt.Sprintf("src:%s:%d", a.SourceID, size)
	}
	name := a.Name
	if name == "" {
		name = filepath.Base(a.Path)
	}
	return fmt.Sprintf("%s:%d", name, size)
}
