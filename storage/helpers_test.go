package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/nvstate/endian"
	"github.com/arloliu/nvstate/format"
	"github.com/arloliu/nvstate/medium"
	"github.com/arloliu/nvstate/section"
)

// int32Element persists one little-endian int32.
type int32Element struct {
	value int32
	loads int
	saves int
}

func newInt32Element() *int32Element {
	return &int32Element{value: -1}
}

func (e *int32Element) OnLoadState(io StateIO) {
	var b [4]byte
	if io.ReadState(b[:]) == nil {
		e.value = int32(endian.Media().Uint32(b[:])) //nolint:gosec
	}
	e.loads++
}

func (e *int32Element) OnSaveState(io StateIO) {
	var b [4]byte
	endian.Media().PutUint32(b[:], uint32(e.value)) //nolint:gosec
	_ = io.WriteState(b[:])
	e.saves++
}

// byteElement persists a fixed-size byte slice.
type byteElement struct {
	data []byte
}

func (e *byteElement) OnLoadState(io StateIO) { _ = io.ReadState(e.data) }
func (e *byteElement) OnSaveState(io StateIO) { _ = io.WriteState(e.data) }
func (e *byteElement) StateSize() int         { return len(e.data) }

// sectionBytes encodes one section preamble followed by its payload.
func sectionBytes(t *testing.T, typ format.SectionType, payload []byte) []byte {
	t.Helper()

	s, err := section.NewSectionPreamble(typ, payload)
	require.NoError(t, err)

	return append(s.Bytes(), payload...)
}

// seed writes a valid preamble and the given sections to mem.
func seed(t *testing.T, mem *medium.Memory, sections ...[]byte) {
	t.Helper()

	img := section.NewPreamble(uint16(len(sections))).Bytes() //nolint:gosec
	for _, s := range sections {
		img = append(img, s...)
	}
	mem.Poke(0, img)
}

func newManager(t *testing.T, m medium.Medium, opts ...ManagerOption) *Manager {
	t.Helper()

	mgr, err := NewManager(m, opts...)
	require.NoError(t, err)

	return mgr
}

var fixturePayload = []byte{0x40, 0xE2, 0x01, 0x00} // int32 123456
