package pool

import (
	"io"
	"sync"
)

const (
	ScratchBufferDefaultSize  = 256             // typical element-state payload
	ScratchBufferMaxThreshold = 1024 * 64       // one full section payload
	ImageBufferDefaultSize    = 1024 * 4        // small EEPROM image
	ImageBufferMaxThreshold   = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer is a reusable byte slice.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Resize sets the length of the buffer to n, reallocating when the capacity
// is insufficient, and returns the resized slice. Contents are not preserved
// across a reallocation.
func (bb *ByteBuffer) Resize(n int) []byte {
	if n < 0 {
		panic("Resize: negative length")
	}
	if cap(bb.B) < n {
		bb.B = make([]byte, n)
		return bb.B
	}
	bb.B = bb.B[:n]

	return bb.B
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers.
//
// Buffers that grew past maxThreshold are dropped instead of being pooled.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	scratchPool = NewByteBufferPool(ScratchBufferDefaultSize, ScratchBufferMaxThreshold)
	imagePool   = NewByteBufferPool(ImageBufferDefaultSize, ImageBufferMaxThreshold)
)

// GetScratch retrieves a buffer for reading section payloads back from a medium.
func GetScratch() *ByteBuffer {
	return scratchPool.Get()
}

// PutScratch returns a buffer obtained from GetScratch.
func PutScratch(bb *ByteBuffer) {
	scratchPool.Put(bb)
}

// GetImage retrieves a buffer for whole medium images.
func GetImage() *ByteBuffer {
	return imagePool.Get()
}

// PutImage returns a buffer obtained from GetImage.
func PutImage(bb *ByteBuffer) {
	imagePool.Put(bb)
}
