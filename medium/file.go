package medium

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/internal/options"
)

// File is a medium backed by an image file on the host filesystem.
//
// Writes land in a RAM cache and reach the file only on Commit, which writes
// the dirty byte range and fsyncs. Closing without Commit drops pending
// writes, the same outcome as a power loss before commit.
type File struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	ov     overlay
	fill   byte
	noSync bool
	closed bool
}

// FileOption configures a File medium.
type FileOption = options.Option[*File]

// WithFileFill sets the byte used to extend a new or short image file.
func WithFileFill(b byte) FileOption {
	return options.NoError(func(f *File) {
		f.fill = b
	})
}

// WithoutSync skips fsync on Commit. Useful for tests on slow filesystems.
func WithoutSync() FileOption {
	return options.NoError(func(f *File) {
		f.noSync = true
	})
}

// OpenFile opens or creates the image file at path.
//
// A missing or shorter file is extended to size with the fill byte. When size
// is 0 the existing file size is used. A longer file is left as is and only
// its first size bytes are addressed.
func OpenFile(path string, size int64, opts ...FileOption) (*File, error) {
	m := &File{path: path}
	if err := options.Apply(m, opts...); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open medium file: %w", err)
	}
	m.f = f

	if err := m.load(size); err != nil {
		_ = f.Close()
		return nil, err
	}

	return m, nil
}

func (m *File) load(size int64) error {
	st, err := m.f.Stat()
	if err != nil {
		return fmt.Errorf("stat medium file: %w", err)
	}

	cur := st.Size()
	if size == 0 {
		size = cur
	}
	if size <= 0 {
		return fmt.Errorf("%w: empty image file %s and no size given", errs.ErrInvalidMediumCfg, m.path)
	}

	m.ov.image = make([]byte, size)
	have := min(cur, size)
	if have > 0 {
		if _, err := m.f.ReadAt(m.ov.image[:have], 0); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read medium file: %w", err)
		}
	}

	if have < size {
		fillBytes(m.ov.image[have:], m.fill)
		if _, err := m.f.WriteAt(m.ov.image[have:], have); err != nil {
			return fmt.Errorf("extend medium file: %w", err)
		}
		if err := m.f.Sync(); err != nil {
			return fmt.Errorf("sync medium file: %w", err)
		}
	}

	return nil
}

// ReadAt implements Medium.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, errs.ErrMediumClosed
	}

	return m.ov.read(p, off)
}

// WriteAt implements Medium.
func (m *File) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, errs.ErrMediumClosed
	}

	return m.ov.write(p, off)
}

// Commit writes pending bytes to the image file and syncs it.
func (m *File) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errs.ErrMediumClosed
	}

	lo, hi, ok := m.ov.pending()
	if !ok {
		return nil
	}

	if _, err := m.f.WriteAt(m.ov.image[lo:hi], lo); err != nil {
		return fmt.Errorf("flush medium file: %w", err)
	}
	if !m.noSync {
		if err := m.f.Sync(); err != nil {
			return fmt.Errorf("sync medium file: %w", err)
		}
	}
	m.ov.markClean()

	return nil
}

// Size implements Sizer.
func (m *File) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ov.size()
}

// Path returns the image file path.
func (m *File) Path() string {
	return m.path
}

// Close closes the image file. Uncommitted writes are discarded.
func (m *File) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	return m.f.Close()
}
