package medium

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arloliu/nvstate/errs"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_InMemory(t *testing.T) {
	ctx := context.Background()

	m, err := OpenSQLite(ctx, ":memory:", 1024, WithPageSize(64))
	require.NoError(t, err)
	defer m.Close()

	require.Equal(t, int64(1024), m.Size())

	require.NoError(t, WriteFull(m, []byte("SUPLA"), 62))
	require.NoError(t, m.CommitContext(ctx))
	require.NoError(t, m.Commit(), "commit without pending writes is a no-op")

	buf := make([]byte, 5)
	require.NoError(t, ReadFull(m, buf, 62))
	require.Equal(t, []byte("SUPLA"), buf)
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "medium.db")

	m, err := OpenSQLite(ctx, path, 512, WithPageSize(32), WithSQLiteFill(0xFF))
	require.NoError(t, err)

	require.NoError(t, WriteFull(m, []byte{0xAA, 0xBB}, 31)) // spans pages 0 and 1
	require.NoError(t, m.Commit())
	require.NoError(t, WriteFull(m, []byte{0xCC}, 100)) // never committed
	require.NoError(t, m.Close())

	reopened, err := OpenSQLite(ctx, path, 0, WithSQLiteFill(0xFF))
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, int64(512), reopened.Size())

	buf := make([]byte, 2)
	require.NoError(t, ReadFull(reopened, buf, 31))
	require.Equal(t, []byte{0xAA, 0xBB}, buf)

	one := make([]byte, 1)
	require.NoError(t, ReadFull(reopened, one, 100))
	require.Equal(t, []byte{0xFF}, one)
}

func TestSQLite_SizeMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "medium.db")

	m, err := OpenSQLite(ctx, path, 256)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = OpenSQLite(ctx, path, 512)
	require.ErrorIs(t, err, errs.ErrInvalidMediumCfg)
}

func TestOpenSQLite_InvalidConfig(t *testing.T) {
	ctx := context.Background()

	_, err := OpenSQLite(ctx, ":memory:", 0)
	require.ErrorIs(t, err, errs.ErrInvalidMediumCfg)

	_, err = OpenSQLite(ctx, ":memory:", 64, WithPageSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidMediumCfg)
}

func TestSQLite_Closed(t *testing.T) {
	m, err := OpenSQLite(context.Background(), ":memory:", 64)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	require.ErrorIs(t, m.Commit(), errs.ErrMediumClosed)
}
