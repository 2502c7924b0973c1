package grid

import "sync"

// Pool hands out scratch float32 buffers for sweep passes. A buffer is
// exclusively owned between Get and Put; Get always returns a zeroed buffer
// so no state leaks between calls.
type Pool struct {
	size int
	pool sync.Pool
}

// NewPool creates a pool of buffers with size elements each.
func NewPool(size int) *Pool {
	p := &Pool{size: size}
	p.pool.New = func() interface{} {
		return make([]float32, size)
	}
	return p
}

// Size returns the element count of buffers in this pool.
func (p *Pool) Size() int {
	return p.size
}

// Get checks out a zeroed buffer.
func (p *Pool) Get() []float32 {
	buf := p.pool.Get().([]float32)
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// Put returns a buffer to the pool. Buffers of the wrong size are dropped.
func (p *Pool) Put(buf []float32) {
	if len(buf) != p.size {
		return
	}
	p.pool.Put(buf)
}
