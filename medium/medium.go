// Package medium defines the contract between the storage manager and a
// byte-addressable non-volatile medium, plus host-side implementations.
//
// A Medium exposes a linear address space with positional reads and writes.
// Writes become durable only after Commit; a commit may be slow (flash page
// program, fsync, database transaction), so callers batch their writes and
// commit as rarely as possible. Implementations must not assume that a
// multi-byte write survives power loss atomically.
//
// Implementations in this package:
//
//   - Memory: RAM simulator for tests and host tooling
//   - File: image file with a RAM write cache flushed on Commit
//   - SQLite: paged image in a SQLite database, flushed in one transaction per Commit
package medium

import (
	"fmt"
	"io"

	"github.com/arloliu/nvstate/errs"
)

// Medium is the raw medium adapter.
//
// ReadAt and WriteAt follow the io.ReaderAt / io.WriterAt conventions; an
// access outside the medium returns an error wrapping errs.ErrOutOfRange.
type Medium interface {
	io.ReaderAt
	io.WriterAt

	// Commit durably flushes pending writes.
	Commit() error
}

// Sizer is implemented by media that know their capacity.
type Sizer interface {
	// Size returns the medium capacity in bytes.
	Size() int64
}

// Capacity returns the capacity of m, or 0 if m does not implement Sizer.
func Capacity(m Medium) int64 {
	if s, ok := m.(Sizer); ok {
		return s.Size()
	}

	return 0
}

// ReadFull reads exactly len(p) bytes at off.
func ReadFull(m io.ReaderAt, p []byte, off int64) error {
	n, err := m.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = errs.ErrShortRead
	}

	return fmt.Errorf("read %d bytes at offset %d: %w", len(p), off, err)
}

// WriteFull writes all of p at off.
func WriteFull(m io.WriterAt, p []byte, off int64) error {
	n, err := m.WriteAt(p, off)
	if err != nil {
		return fmt.Errorf("write %d bytes at offset %d: %w", len(p), off, err)
	}
	if n != len(p) {
		return fmt.Errorf("write %d bytes at offset %d: %w", len(p), off, errs.ErrShortWrite)
	}

	return nil
}

// checkRange validates an access of n bytes at off against size.
func checkRange(off int64, n int, size int64) error {
	if off < 0 || off+int64(n) > size {
		return fmt.Errorf("%w: offset %d length %d size %d", errs.ErrOutOfRange, off, n, size)
	}

	return nil
}
