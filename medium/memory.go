package medium

import (
	"sync"

	"github.com/arloliu/nvstate/internal/options"
)

// Memory is a RAM-backed medium.
//
// Writes are visible to reads immediately and Commit only counts calls, which
// makes Memory a faithful simulator for asserting how often the storage layer
// writes and commits. It is safe for concurrent use.
type Memory struct {
	mu           sync.Mutex
	data         []byte
	fill         byte
	writes       int
	bytesWritten int
	commits      int
	commitErr    error
}

// MemoryOption configures a Memory medium.
type MemoryOption = options.Option[*Memory]

// WithFill sets the byte value of erased memory (0x00 by default; NOR flash
// erases to 0xFF).
func WithFill(b byte) MemoryOption {
	return options.NoError(func(m *Memory) {
		m.fill = b
	})
}

// WithCommitError makes every Commit fail with err.
func WithCommitError(err error) MemoryOption {
	return options.NoError(func(m *Memory) {
		m.commitErr = err
	})
}

// NewMemory creates an erased Memory medium of size bytes.
func NewMemory(size int, opts ...MemoryOption) *Memory {
	m := &Memory{}
	_ = options.Apply(m, opts...)

	m.data = make([]byte, size)
	m.erase()

	return m
}

func (m *Memory) erase() {
	if m.fill == 0 {
		clear(m.data)
		return
	}
	for i := range m.data {
		m.data[i] = m.fill
	}
}

// ReadAt implements Medium.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkRange(off, len(p), int64(len(m.data))); err != nil {
		return 0, err
	}

	return copy(p, m.data[off:]), nil
}

// WriteAt implements Medium.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkRange(off, len(p), int64(len(m.data))); err != nil {
		return 0, err
	}

	m.writes++
	m.bytesWritten += len(p)

	return copy(m.data[off:], p), nil
}

// Commit implements Medium.
func (m *Memory) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commits++

	return m.commitErr
}

// Size implements Sizer.
func (m *Memory) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.data))
}

// Bytes returns a copy of the whole medium.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.data...)
}

// Poke overwrites bytes at off without counting a write, for injecting
// preexisting images or corruption.
func (m *Memory) Poke(off int64, p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.data[off:], p)
}

// Erase resets the medium to its erased state without counting writes.
func (m *Memory) Erase() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.erase()
}

// Writes returns the number of WriteAt calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}

// BytesWritten returns the total number of bytes passed to WriteAt.
func (m *Memory) BytesWritten() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.bytesWritten
}

// Commits returns the number of Commit calls.
func (m *Memory) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.commits
}

// ResetCounters zeroes the write and commit counters.
func (m *Memory) ResetCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writes, m.bytesWritten, m.commits = 0, 0, 0
}
