package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelc4/lukey-bot/internal/media"
)

const mib = 1 << 20

type fakeProber struct {
	sizes map[string]media.SizeEstimate
	calls int
}

func (f *fakeProber) Probe(_ context.Context, e media.Entry) media.SizeEstimate {
	f.calls++
	if est, ok := f.sizes[e.ID]; ok {
		return est
	}
	return media.UnknownSize()
}

func sequence(idx ...int) func(int) int {
	i := 0
	return func(n int) int {
		v := idx[i%len(idx)] % n
		i++
		return v
	}
}

func TestSelectEmpty(t *testing.T) {
	p := &fakeProber{}
	draws := 0
	s := New(p, WithRand(func(n int) int { draws++; return 0 }))

	_, ok := s.Select(context.Background(), nil, 50*mib)
	assert.False(t, ok)
	assert.Zero(t, draws)
	assert.Zero(t, p.calls)
}

func TestSelectStaticWithoutProbe(t *testing.T) {
	p := &fakeProber{}
	s := New(p, WithRand(sequence(0)))

	e, ok := s.Select(context.Background(), []media.Entry{
		{ID: "big", MimeType: media.MimePNG, Size: 500 * mib},
	}, 50*mib)
	require.True(t, ok)
	assert.Equal(t, "big", e.ID)
	assert.Zero(t, p.calls)
}

func TestSelectRejectsOversizeGIF(t *testing.T) {
	p := &fakeProber{sizes: map[string]media.SizeEstimate{
		"huge": media.ProbedSize(60 * mib),
		"ok":   media.ProbedSize(10 * mib),
	}}
	entries := []media.Entry{
		{ID: "huge", MimeType: media.MimeGIF},
		{ID: "ok", MimeType: media.MimeGIF},
	}
	s := New(p, WithRand(sequence(0, 0, 1)))

	e, ok := s.Select(context.Background(), entries, 50*mib)
	require.True(t, ok)
	assert.Equal(t, "ok", e.ID)
	assert.Equal(t, 3, p.calls)
}

func TestSelectUnknownSizeAccepted(t *testing.T) {
	p := &fakeProber{}
	s := New(p, WithRand(sequence(0)))

	e, ok := s.Select(context.Background(), []media.Entry{{ID: "gif", MimeType: media.MimeGIF}}, 8*mib)
	require.True(t, ok)
	assert.Equal(t, "gif", e.ID)
}

func TestSelectAtCeilingAccepted(t *testing.T) {
	p := &fakeProber{sizes: map[string]media.SizeEstimate{"edge": media.ProbedSize(50 * mib)}}
	s := New(p, WithRand(sequence(0)))

	_, ok := s.Select(context.Background(), []media.Entry{{ID: "edge", MimeType: media.MimeGIF}}, 50*mib)
	assert.True(t, ok)
}

func TestSelectBoundedAttempts(t *testing.T) {
	p := &fakeProber{sizes: map[string]media.SizeEstimate{
		"huge": media.ProbedSize(60 * mib),
	}}
	entries := []media.Entry{
		{ID: "huge", MimeType: media.MimeGIF},
		{ID: "fine", MimeType: media.MimeJPEG},
	}
	// never draws the qualifying entry
	s := New(p, WithRand(sequence(0)))

	_, ok := s.Select(context.Background(), entries, 50*mib)
	assert.False(t, ok)
	assert.Equal(t, MaxAttempts, p.calls)
}

func TestSelectNeverReturnsOversize(t *testing.T) {
	p := &fakeProber{sizes: map[string]media.SizeEstimate{
		"a": media.ProbedSize(70 * mib),
		"b": media.ProbedSize(51 * mib),
		"c": media.ProbedSize(49 * mib),
		"d": media.UnknownSize(),
	}}
	entries := []media.Entry{
		{ID: "a", MimeType: media.MimeGIF},
		{ID: "b", MimeType: media.MimeGIF},
		{ID: "c", MimeType: media.MimeGIF},
		{ID: "d", MimeType: media.MimeGIF},
		{ID: "e", MimeType: media.MimePNG},
	}
	s := New(p)

	for i := 0; i < 500; i++ {
		e, ok := s.Select(context.Background(), entries, 50*mib)
		if !ok {
			continue
		}
		assert.NotContains(t, []string{"a", "b"}, e.ID)
	}
}

func TestSelectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := New(&fakeProber{}).Select(ctx, []media.Entry{{ID: "x", MimeType: media.MimePNG}}, mib)
	assert.False(t, ok)
}
