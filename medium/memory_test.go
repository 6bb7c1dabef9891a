package medium

import (
	"errors"
	"testing"

	"github.com/arloliu/nvstate/errs"
	"github.com/stretchr/testify/require"
)

func TestMemory_ReadWrite(t *testing.T) {
	m := NewMemory(16)

	require.Equal(t, int64(16), m.Size())
	require.Equal(t, make([]byte, 16), m.Bytes())

	n, err := m.WriteAt([]byte("SUPLA"), 2)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 5)
	require.NoError(t, ReadFull(m, buf, 2))
	require.Equal(t, []byte("SUPLA"), buf)

	require.Equal(t, 1, m.Writes())
	require.Equal(t, 5, m.BytesWritten())
	require.Equal(t, 0, m.Commits())
}

func TestMemory_OutOfRange(t *testing.T) {
	m := NewMemory(8)

	_, err := m.ReadAt(make([]byte, 4), 6)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = m.WriteAt([]byte{1}, -1)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	require.ErrorIs(t, ReadFull(m, make([]byte, 9), 0), errs.ErrOutOfRange)
	require.ErrorIs(t, WriteFull(m, make([]byte, 9), 0), errs.ErrOutOfRange)
	require.Equal(t, 0, m.Writes())
}

func TestMemory_Commit(t *testing.T) {
	t.Run("counts", func(t *testing.T) {
		m := NewMemory(8)
		require.NoError(t, m.Commit())
		require.NoError(t, m.Commit())
		require.Equal(t, 2, m.Commits())

		m.ResetCounters()
		require.Equal(t, 0, m.Commits())
	})

	t.Run("configured error", func(t *testing.T) {
		boom := errors.New("flash program failed")
		m := NewMemory(8, WithCommitError(boom))

		require.ErrorIs(t, m.Commit(), boom)
		require.Equal(t, 1, m.Commits())
	})
}

func TestMemory_FillPokeErase(t *testing.T) {
	m := NewMemory(4, WithFill(0xFF))
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, m.Bytes())

	m.Poke(1, []byte{0x01, 0x02})
	require.Equal(t, []byte{0xFF, 0x01, 0x02, 0xFF}, m.Bytes())
	require.Equal(t, 0, m.Writes())

	m.Erase()
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, m.Bytes())
}

func TestCapacity(t *testing.T) {
	require.Equal(t, int64(32), Capacity(NewMemory(32)))
	require.Equal(t, int64(0), Capacity(sizeless{}))
}

type sizeless struct{}

func (sizeless) ReadAt(p []byte, _ int64) (int, error)  { return len(p), nil }
func (sizeless) WriteAt(p []byte, _ int64) (int, error) { return len(p), nil }
func (sizeless) Commit() error                          { return nil }

type shortWriter struct{ sizeless }

func (shortWriter) WriteAt(p []byte, _ int64) (int, error) { return len(p) - 1, nil }

func TestWriteFull_Short(t *testing.T) {
	require.ErrorIs(t, WriteFull(shortWriter{}, []byte{1, 2}, 0), errs.ErrShortWrite)
}
