package buffer

import (
	"sync"
)

const DefaultSize = 512 * 1024

// Pool hands out fixed-size byte slices for streaming copies.
type Pool struct {
	pool sync.Pool
	size int
}

func NewPool(size int) *Pool {
	return &Pool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, size)
				return &b
			},
		},
	}
}

func (p *Pool) Get() []byte {
	return *p.pool.Get().(*[]byte)
}

// Put returns b to the pool. Slices smaller than the pool size are dropped.
func (p *Pool) Put(b []byte) {
	if cap(b) < p.size {
		return
	}
	b = b[:p.size]
	p.pool.Put(&b)
}

var Default = NewPool(DefaultSize)

func Get() []byte {
	return Default.Get()
}

func Put(b []byte) {
	Default.Put(b)
}
