package delivery

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelc4/lukey-bot/internal/tempfiles"
	"github.com/pavelc4/lukey-bot/internal/transcode"
)

const mib = 1 << 20

var budget = Budget{Hard: 8 * mib, Soft: 50 * mib}

type fakeShrinker struct {
	available bool
	calls     int
	reg       *tempfiles.Registry
	outSize   int64
	err       error
}

func (f *fakeShrinker) Available() bool { return f.available }

func (f *fakeShrinker) Shrink(_ context.Context, _ string, target int64) (transcode.Result, error) {
	f.calls++
	if f.err != nil {
		return transcode.Result{Attempts: make([]transcode.Attempt, transcode.MaxAttempts)}, f.err
	}
	file, err := f.reg.Reserve(tempfiles.PatternEncode)
	if err != nil {
		return transcode.Result{}, err
	}
	if err := os.Truncate(file.Path(), f.outSize); err != nil {
		return transcode.Result{}, err
	}
	return transcode.Result{File: file, Size: f.outSize, Attempts: make([]transcode.Attempt, 2)}, nil
}

func TestBudgetValidate(t *testing.T) {
	assert.NoError(t, budget.Validate())
	assert.NoError(t, Budget{Hard: 5, Soft: 5}.Validate())
	assert.Error(t, Budget{Hard: 10, Soft: 5}.Validate())
	assert.Error(t, Budget{Hard: 0, Soft: 5}.Validate())

	_, err := NewDeliverer(Budget{Hard: 10, Soft: 5}, &fakeShrinker{})
	assert.Error(t, err)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		size   int64
		action Action
		reason Reason
	}{
		{0, DirectSend, ReasonNone},
		{8 * mib, DirectSend, ReasonNone},
		{8*mib + 1, NeedsTranscode, ReasonNone},
		{50 * mib, NeedsTranscode, ReasonNone},
		{50*mib + 1, Rejected, ReasonOverSoftCap},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.size), func(t *testing.T) {
			v := Decide(tt.size, budget)
			assert.Equal(t, tt.action, v.Action)
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

func TestResolveDirectSendSkipsShrinker(t *testing.T) {
	for _, size := range []int64{1, 4 * mib, 8 * mib} {
		s := &fakeShrinker{available: true}
		d, err := NewDeliverer(budget, s)
		require.NoError(t, err)

		res := d.Resolve(context.Background(), "in.gif", size)
		assert.Equal(t, DirectSend, res.Action)
		assert.Equal(t, "in.gif", res.Path)
		assert.False(t, res.Transcoded)
		assert.Zero(t, s.calls)
		res.Release()
	}
}

func TestResolveOverSoftCapSkipsShrinker(t *testing.T) {
	s := &fakeShrinker{available: true}
	d, _ := NewDeliverer(budget, s)

	res := d.Resolve(context.Background(), "in.gif", 60*mib)
	assert.Equal(t, Rejected, res.Action)
	assert.Equal(t, ReasonOverSoftCap, res.Reason)
	assert.Zero(t, s.calls)
}

func TestResolveToolUnavailable(t *testing.T) {
	s := &fakeShrinker{available: false}
	d, _ := NewDeliverer(budget, s)

	res := d.Resolve(context.Background(), "in.gif", 20*mib)
	assert.Equal(t, Rejected, res.Action)
	assert.Equal(t, ReasonToolUnavailable, res.Reason)
	assert.ErrorIs(t, res.Err, transcode.ErrToolUnavailable)
	assert.Zero(t, s.calls)
}

func TestResolveTranscoded(t *testing.T) {
	reg := tempfiles.NewRegistry(t.TempDir())
	s := &fakeShrinker{available: true, reg: reg, outSize: 7 * mib}
	d, _ := NewDeliverer(budget, s)

	res := d.Resolve(context.Background(), "in.gif", 20*mib)
	require.Equal(t, DirectSend, res.Action)
	assert.True(t, res.Transcoded)
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, int64(7*mib), res.Size)
	assert.Equal(t, 2, res.Attempts)
	assert.FileExists(t, res.Path)

	res.Release()
	assert.NoFileExists(t, res.Path)
	assert.Zero(t, reg.Len())
}

func TestResolveCompressionInsufficient(t *testing.T) {
	s := &fakeShrinker{available: true, err: fmt.Errorf("%w: 6 attempts", transcode.ErrCompressionInsufficient)}
	d, _ := NewDeliverer(budget, s)

	res := d.Resolve(context.Background(), "in.gif", 20*mib)
	assert.Equal(t, Rejected, res.Action)
	assert.Equal(t, ReasonCompressionInsufficient, res.Reason)
	assert.Equal(t, transcode.MaxAttempts, res.Attempts)
	assert.Equal(t, 1, s.calls)
	res.Release()
}
