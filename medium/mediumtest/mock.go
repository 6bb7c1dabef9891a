// Package mediumtest provides a testify mock medium backed by a simulator.
//
// Reads and writes go straight to a medium.Memory so the storage layer sees
// real bytes, while Commit is a mock call whose count tests assert:
//
//	m := mediumtest.New(t, 64)
//	m.On("Commit").Return(nil).Once()
package mediumtest

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/arloliu/nvstate/medium"
)

// Medium is a mock medium.
type Medium struct {
	mock.Mock

	// Sim holds the simulated medium contents.
	Sim *medium.Memory

	// NoWriteExpected fails the test on any WriteAt while set.
	NoWriteExpected bool

	t testing.TB
}

var (
	_ medium.Medium = (*Medium)(nil)
	_ medium.Sizer  = (*Medium)(nil)
)

// New creates a mock medium of size bytes and registers AssertExpectations
// as a test cleanup.
func New(t testing.TB, size int) *Medium {
	t.Helper()

	m := &Medium{Sim: medium.NewMemory(size), t: t}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// ReadAt reads from the simulator.
func (m *Medium) ReadAt(p []byte, off int64) (int, error) {
	return m.Sim.ReadAt(p, off)
}

// WriteAt writes to the simulator.
func (m *Medium) WriteAt(p []byte, off int64) (int, error) {
	if m.NoWriteExpected {
		m.t.Errorf("unexpected write of %d bytes at offset %d", len(p), off)
	}

	return m.Sim.WriteAt(p, off)
}

// Commit records the call and returns the configured error.
func (m *Medium) Commit() error {
	args := m.Called()
	return args.Error(0)
}

// Size returns the simulator size.
func (m *Medium) Size() int64 {
	return m.Sim.Size()
}

// Data returns a copy of the simulated medium.
func (m *Medium) Data() []byte {
	return m.Sim.Bytes()
}
