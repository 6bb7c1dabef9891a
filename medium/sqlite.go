package medium

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/internal/options"
)

// DefaultPageSize is the SQLite medium page size in bytes.
const DefaultPageSize = 256

// SQLite is a medium stored as fixed-size pages in a SQLite database.
//
// The image is loaded into RAM on open. Commit upserts every page touched
// since the previous commit inside a single transaction, so a crash leaves
// either the old or the new set of pages.
type SQLite struct {
	mu       sync.Mutex
	db       *sql.DB
	ov       overlay
	pageSize int
	fill     byte
	closed   bool
}

// SQLiteOption configures a SQLite medium.
type SQLiteOption = options.Option[*SQLite]

// WithPageSize sets the page size used for new databases.
func WithPageSize(n int) SQLiteOption {
	return options.New(func(m *SQLite) error {
		if n <= 0 {
			return fmt.Errorf("%w: page size %d", errs.ErrInvalidMediumCfg, n)
		}
		m.pageSize = n

		return nil
	})
}

// WithSQLiteFill sets the byte value of pages never written.
func WithSQLiteFill(b byte) SQLiteOption {
	return options.NoError(func(m *SQLite) {
		m.fill = b
	})
}

// OpenSQLite opens the database at dsn (a file path or ":memory:") as a
// medium of size bytes. For an existing database size may be 0, in which case
// the stored size is used; a non-zero size must match the stored one.
func OpenSQLite(ctx context.Context, dsn string, size int64, opts ...SQLiteOption) (*SQLite, error) {
	m := &SQLite{pageSize: DefaultPageSize}
	if err := options.Apply(m, opts...); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite medium: %w", err)
	}
	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)
	m.db = db

	if err := m.initialize(ctx, size); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite medium: %w", err)
	}

	return m, nil
}

func (m *SQLite) initialize(ctx context.Context, size int64) error {
	schema := `
	CREATE TABLE IF NOT EXISTS medium_meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS medium_pages (
		page INTEGER PRIMARY KEY,
		data BLOB NOT NULL
	);
	`
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	storedSize, storedPage, err := m.readMeta(ctx)
	if err != nil {
		return err
	}

	switch {
	case storedSize == 0 && size <= 0:
		return fmt.Errorf("%w: new sqlite medium needs a size", errs.ErrInvalidMediumCfg)
	case storedSize == 0:
		if err := m.writeMeta(ctx, size); err != nil {
			return err
		}
	case size != 0 && size != storedSize:
		return fmt.Errorf("%w: sqlite medium has %d bytes, requested %d", errs.ErrInvalidMediumCfg, storedSize, size)
	default:
		size = storedSize
		m.pageSize = int(storedPage)
	}

	m.ov.image = make([]byte, size)
	fillBytes(m.ov.image, m.fill)

	return m.loadPages(ctx)
}

func (m *SQLite) readMeta(ctx context.Context) (size, pageSize int64, err error) {
	rows, err := m.db.QueryContext(ctx, "SELECT key, value FROM medium_meta")
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return 0, 0, err
		}
		switch key {
		case "size":
			size = value
		case "page_size":
			pageSize = value
		}
	}

	return size, pageSize, rows.Err()
}

func (m *SQLite) writeMeta(ctx context.Context, size int64) error {
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO medium_meta (key, value) VALUES ('size', ?), ('page_size', ?)",
		size, m.pageSize,
	)

	return err
}

func (m *SQLite) loadPages(ctx context.Context) error {
	rows, err := m.db.QueryContext(ctx, "SELECT page, data FROM medium_pages ORDER BY page")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var page int64
		var data []byte
		if err := rows.Scan(&page, &data); err != nil {
			return err
		}
		off := page * int64(m.pageSize)
		if off >= m.ov.size() {
			continue
		}
		copy(m.ov.image[off:], data)
	}

	return rows.Err()
}

// ReadAt implements Medium.
func (m *SQLite) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, errs.ErrMediumClosed
	}

	return m.ov.read(p, off)
}

// WriteAt implements Medium.
func (m *SQLite) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, errs.ErrMediumClosed
	}

	return m.ov.write(p, off)
}

// Commit implements Medium.
func (m *SQLite) Commit() error {
	return m.CommitContext(context.Background())
}

// CommitContext stores all dirty pages in one transaction.
func (m *SQLite) CommitContext(ctx context.Context) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errs.ErrMediumClosed
	}

	lo, hi, ok := m.ov.pending()
	if !ok {
		return nil
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	ps := int64(m.pageSize)
	for page := lo / ps; page*ps < hi; page++ {
		start := page * ps
		end := min(start+ps, m.ov.size())
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO medium_pages (page, data) VALUES (?, ?) ON CONFLICT(page) DO UPDATE SET data = excluded.data",
			page, m.ov.image[start:end],
		); err != nil {
			return fmt.Errorf("store page %d: %w", page, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit pages: %w", err)
	}
	m.ov.markClean()

	return nil
}

// Size implements Sizer.
func (m *SQLite) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ov.size()
}

// Close closes the database. Uncommitted writes are discarded.
func (m *SQLite) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	return m.db.Close()
}
