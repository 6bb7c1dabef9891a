package medium

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arloliu/nvstate/errs"
	"github.com/stretchr/testify/require"
)

func TestOpenFile_Create(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.bin")

	m, err := OpenFile(path, 64, WithFileFill(0xFF), WithoutSync())
	require.NoError(t, err)
	defer m.Close()

	require.Equal(t, int64(64), m.Size())
	require.Equal(t, path, m.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 64)
	require.Equal(t, byte(0xFF), data[10])
}

func TestFile_CommitPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.bin")

	m, err := OpenFile(path, 32)
	require.NoError(t, err)

	require.NoError(t, WriteFull(m, []byte("SUPLA"), 0))

	buf := make([]byte, 5)
	require.NoError(t, ReadFull(m, buf, 0))
	require.Equal(t, []byte("SUPLA"), buf, "pending writes are visible before commit")

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 5), onDisk[:5], "nothing reaches the file before commit")

	require.NoError(t, m.Commit())
	require.NoError(t, m.Close())

	reopened, err := OpenFile(path, 0)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, int64(32), reopened.Size())
	require.NoError(t, ReadFull(reopened, buf, 0))
	require.Equal(t, []byte("SUPLA"), buf)
}

func TestFile_CloseDropsPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.bin")

	m, err := OpenFile(path, 16)
	require.NoError(t, err)
	require.NoError(t, WriteFull(m, []byte{1, 2, 3}, 4))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	reopened, err := OpenFile(path, 16)
	require.NoError(t, err)
	defer reopened.Close()

	buf := make([]byte, 3)
	require.NoError(t, ReadFull(reopened, buf, 4))
	require.Equal(t, []byte{0, 0, 0}, buf)
}

func TestFile_Closed(t *testing.T) {
	m, err := OpenFile(filepath.Join(t.TempDir(), "eeprom.bin"), 16)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = m.ReadAt(make([]byte, 1), 0)
	require.ErrorIs(t, err, errs.ErrMediumClosed)
	_, err = m.WriteAt([]byte{1}, 0)
	require.ErrorIs(t, err, errs.ErrMediumClosed)
	require.ErrorIs(t, m.Commit(), errs.ErrMediumClosed)
}

func TestOpenFile_EmptyWithoutSize(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "empty.bin"), 0)
	require.ErrorIs(t, err, errs.ErrInvalidMediumCfg)
}

func TestFile_OutOfRange(t *testing.T) {
	m, err := OpenFile(filepath.Join(t.TempDir(), "eeprom.bin"), 8)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.WriteAt(make([]byte, 4), 6)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}
