package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolSize(t *testing.T) {
	p := NewPool(64)
	b := p.Get()
	assert.Len(t, b, 64)

	p.Put(b[:10])
	assert.Len(t, p.Get(), 64)
}

func TestPoolDropsSmallSlices(t *testing.T) {
	p := NewPool(64)
	p.Put(make([]byte, 8))
	assert.Len(t, p.Get(), 64)
}

func TestDefault(t *testing.T) {
	b := Get()
	assert.Len(t, b, DefaultSize)
	Put(b)
}
