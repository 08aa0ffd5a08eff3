package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context) {
				order = append(order, name)
				next(ctx)
			}
		}
	}

	Chain(func(context.Context) { order = append(order, "handler") }, mark("a"), mark("b"))(context.Background())
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRecover(t *testing.T) {
	var got any
	var stack []byte
	h := Chain(func(context.Context) { panic("boom") }, Recover(func(_ context.Context, r any, s []byte) {
		got = r
		stack = s
	}))

	assert.NotPanics(t, func() { h(context.Background()) })
	assert.Equal(t, "boom", got)
	assert.NotEmpty(t, stack)

	assert.NotPanics(t, func() {
		Chain(func(context.Context) { panic("again") }, Recover(nil))(context.Background())
	})
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var ok bool
	Chain(func(ctx context.Context) { deadline, ok = ctx.Deadline() }, Timeout(time.Minute), Logger("test"))(context.Background())

	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
