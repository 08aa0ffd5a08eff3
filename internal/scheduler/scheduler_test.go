package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRegisterValidation(t *testing.T) {
	s := New(testLogger())
	noop := func(context.Context) error { return nil }

	assert.Error(t, s.Register(Task{Name: "", Run: noop}))
	assert.Error(t, s.Register(Task{Name: "x"}))
	assert.Error(t, s.Register(Task{Name: "x", Interval: -time.Second, Run: noop}))
	require.NoError(t, s.Register(Task{Name: "x", Interval: time.Hour, Run: noop}))
	assert.Error(t, s.Register(Task{Name: "x", Interval: time.Hour, Run: noop}))
}

func TestNotScheduledBeforeStart(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.Register(Task{Name: "normal", Interval: time.Hour, Run: func(context.Context) error { return nil }}))
	require.NoError(t, s.Register(Task{Name: "spicy", Run: func(context.Context) error { return nil }}))

	assert.Empty(t, s.Active())

	s.Start(context.Background())
	defer s.Stop(context.Background())

	// zero interval stays disabled
	assert.Equal(t, []string{"normal"}, s.Active())
}

func TestTriggerRunsSynchronously(t *testing.T) {
	s := New(testLogger())
	var runs atomic.Int32
	require.NoError(t, s.Register(Task{Name: "normal", Interval: time.Hour, Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))

	require.NoError(t, s.Trigger(context.Background(), "normal"))
	require.NoError(t, s.Trigger(context.Background(), "normal"))
	assert.Equal(t, int32(2), runs.Load())

	assert.Error(t, s.Trigger(context.Background(), "missing"))
}

func TestTriggerSurfacesErrorsAndPanics(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.Register(Task{Name: "fails", Run: func(context.Context) error { return errors.New("drive down") }}))
	require.NoError(t, s.Register(Task{Name: "panics", Run: func(context.Context) error { panic("boom") }}))

	assert.EqualError(t, s.Trigger(context.Background(), "fails"), "drive down")

	var err error
	assert.NotPanics(t, func() { err = s.Trigger(context.Background(), "panics") })
	assert.ErrorContains(t, err, "boom")
}

func TestTicks(t *testing.T) {
	s := New(testLogger())
	ticked := make(chan struct{}, 4)
	require.NoError(t, s.Register(Task{Name: "fast", Interval: time.Second, Run: func(context.Context) error {
		ticked <- struct{}{}
		return nil
	}}))

	s.Start(context.Background())
	defer s.Stop(context.Background())

	select {
	case <-ticked:
	case <-time.After(3 * time.Second):
		t.Fatal("task did not tick")
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := New(testLogger())
	assert.NotPanics(t, func() { s.Stop(context.Background()) })
}
