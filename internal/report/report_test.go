package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelc4/lukey-bot/internal/chat"
)

type recordingSender struct {
	mu   sync.Mutex
	sent map[string][]chat.Message
}

func (s *recordingSender) Send(_ context.Context, channelID string, msg chat.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = make(map[string][]chat.Message)
	}
	s.sent[channelID] = append(s.sent[channelID], msg)
	return "1", nil
}

func (s *recordingSender) React(context.Context, string, string, string) error { return nil }

func (s *recordingSender) AttachmentLimit() int64 { return 8 << 20 }

func TestErrorPostsToOperatorChannel(t *testing.T) {
	s := &recordingSender{}
	r := New(s, "ops")

	r.Error(context.Background(), "Post failed", errors.New("drive exploded"))

	require.Len(t, s.sent["ops"], 1)
	assert.Contains(t, s.sent["ops"][0].Text, "drive exploded")
}

func TestNoOperatorChannel(t *testing.T) {
	s := &recordingSender{}
	New(s, "").Error(context.Background(), "Post failed", errors.New("boom"))
	assert.Empty(t, s.sent)
}

func TestPanicTruncated(t *testing.T) {
	s := &recordingSender{}
	r := New(s, "ops")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Panic(ctx, "nil map", []byte(strings.Repeat("frame\n", 1000)))

	require.Len(t, s.sent["ops"], 1)
	text := s.sent["ops"][0].Text
	assert.Contains(t, text, "nil map")
	assert.LessOrEqual(t, len(text), maxDetail+len("\n…(truncated)"))
}

func TestNilReporter(t *testing.T) {
	var r *Reporter
	assert.NotPanics(t, func() { r.post(context.Background(), "x") })
}
