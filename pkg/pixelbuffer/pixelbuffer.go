// Package pixelbuffer provides fixed-size raw frame memory and a pool to reuse it.
package pixelbuffer

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

var (
	// ErrImageAccessFailed is returned when the source image cannot be read.
	ErrImageAccessFailed = errors.New("pixelbuffer: failed to access image")

	// ErrBufferAllocationFailed is returned when no buffer can be obtained from the pool.
	ErrBufferAllocationFailed = errors.New("pixelbuffer: failed to allocate pixel buffer")

	// ErrDrawContextFailed is returned when the image cannot be drawn into the buffer.
	ErrDrawContextFailed = errors.New("pixelbuffer: failed to create draw context")

	// ErrPoolClosed is returned by Get after Close.
	ErrPoolClosed = errors.New("pixelbuffer: pool closed")
)

// Buffer holds one raw RGBA frame of the pool's dimensions.
type Buffer struct {
	*image.RGBA

	pool     *Pool
	released bool
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int {
	return b.Rect.Dx()
}

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int {
	return b.Rect.Dy()
}

// Bytes returns the tightly packed RGBA bytes of the frame.
func (b *Buffer) Bytes() []byte {
	rowLen := b.Width() * 4
	if b.Stride == rowLen {
		return b.Pix[:rowLen*b.Height()]
	}
	out := make([]byte, 0, rowLen*b.Height())
	for y := 0; y < b.Height(); y++ {
		off := y * b.Stride
		out = append(out, b.Pix[off:off+rowLen]...)
	}
	return out
}

// Release returns the buffer to its pool. Calling Release twice is a no-op.
func (b *Buffer) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	if b.pool != nil {
		b.pool.put(b)
	}
}

// Pool hands out buffers of a fixed size, bounding how many are outstanding.
type Pool struct {
	width  int
	height int
	limit  int

	mu          sync.Mutex
	free        []*image.RGBA
	outstanding int
	closed      bool
}

// NewPool creates a pool of width x height buffers.
// A limit of zero or less means no bound on outstanding buffers.
func NewPool(width, height, limit int) (*Pool, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrBufferAllocationFailed, width, height)
	}
	return &Pool{
		width:  width,
		height: height,
		limit:  limit,
	}, nil
}

// Width returns the width of pooled buffers.
func (p *Pool) Width() int {
	return p.width
}

// Height returns the height of pooled buffers.
func (p *Pool) Height() int {
	return p.height
}

// Outstanding returns the number of buffers handed out and not yet released.
func (p *Pool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

// Get returns a zeroed buffer from the pool.
func (p *Pool) Get() (*Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if p.limit > 0 && p.outstanding >= p.limit {
		return nil, fmt.Errorf("%w: %d buffers outstanding", ErrBufferAllocationFailed, p.outstanding)
	}

	var img *image.RGBA
	if n := len(p.free); n > 0 {
		img = p.free[n-1]
		p.free = p.free[:n-1]
		clear(img.Pix)
	} else {
		img = image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	}
	p.outstanding++

	return &Buffer{RGBA: img, pool: p}, nil
}

// Close drops cached buffers and makes further Get calls fail.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.free = nil
}

func (p *Pool) put(b *Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.outstanding--
	if p.closed {
		return
	}
	p.free = append(p.free, b.RGBA)
}
