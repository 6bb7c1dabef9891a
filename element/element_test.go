package element

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/medium"
	"github.com/arloliu/nvstate/storage"
)

type mockSaver struct {
	mock.Mock
}

func (m *mockSaver) ScheduleSave(delay time.Duration) {
	m.Called(delay)
}

// save registers els in order on a fresh manager over mem and writes them.
func save(t *testing.T, mem *medium.Memory, els map[string]storage.Element, order []string) {
	t.Helper()

	mgr, err := storage.NewManager(mem)
	require.NoError(t, err)
	for _, name := range order {
		_, err := mgr.RegisterElement(name, els[name])
		require.NoError(t, err)
	}
	require.True(t, mgr.Init())
	require.NoError(t, mgr.WriteStateStorage())
}

// load registers els in order on a fresh manager over mem and loads them.
func load(t *testing.T, mem *medium.Memory, els map[string]storage.Element, order []string) {
	t.Helper()

	mgr, err := storage.NewManager(mem)
	require.NoError(t, err)
	for _, name := range order {
		_, err := mgr.RegisterElement(name, els[name])
		require.NoError(t, err)
	}
	require.True(t, mgr.Init())
	require.True(t, mgr.IsStateStorageValid())
	require.NoError(t, mgr.LoadStateStorage())
}

func TestCounter(t *testing.T) {
	c := NewCounter()
	c.Inc()
	c.Add(41)
	require.Equal(t, uint64(42), c.Value())
	require.Equal(t, 8, c.StateSize())

	mem := medium.NewMemory(64)
	order := []string{"impulses"}
	save(t, mem, map[string]storage.Element{"impulses": c}, order)
	require.Equal(t, []byte{42, 0, 0, 0, 0, 0, 0, 0}, mem.Bytes()[15:23])

	restored := NewCounter()
	load(t, mem, map[string]storage.Element{"impulses": restored}, order)
	require.Equal(t, uint64(42), restored.Value())

	restored.Reset()
	require.Zero(t, restored.Value())
}

func TestSwitch_RestoreModes(t *testing.T) {
	mem := medium.NewMemory(64)
	order := []string{"relay"}

	on := NewSwitch(RestoreLast)
	on.Set(true)
	save(t, mem, map[string]storage.Element{"relay": on}, order)
	require.Equal(t, byte(1), mem.Bytes()[15])

	tests := []struct {
		mode RestoreMode
		want bool
	}{
		{RestoreLast, true},
		{RestoreOff, false},
		{RestoreOn, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			s := NewSwitch(tt.mode)
			load(t, mem, map[string]storage.Element{"relay": s}, order)
			require.Equal(t, tt.want, s.On())
			require.Equal(t, tt.mode, s.Mode())
		})
	}

	t.Run("Garbage byte is ignored", func(t *testing.T) {
		off := NewSwitch(RestoreLast)
		garbage := medium.NewMemory(64)
		save(t, garbage, map[string]storage.Element{"relay": off}, order)

		s := NewSwitch(RestoreLast)
		s.Set(true)
		mgr, err := storage.NewManager(garbage)
		require.NoError(t, err)
		_, err = mgr.RegisterElement("relay", storage.HookFuncs{
			Load: s.OnLoadState,
			Save: func(io storage.StateIO) { _ = io.WriteState([]byte{7}) },
		})
		require.NoError(t, err)
		require.True(t, mgr.Init())
		require.NoError(t, mgr.WriteStateStorage())
		require.NoError(t, mgr.LoadStateStorage())
		require.True(t, s.On())
	})
}

func TestSwitch_Toggle(t *testing.T) {
	s := NewSwitch(RestoreOff)
	require.False(t, s.On())
	s.Toggle()
	require.True(t, s.On())
	s.Toggle()
	require.False(t, s.On())
	require.Equal(t, "unknown", RestoreMode(9).String())
}

type celsius float32

func TestValue(t *testing.T) {
	mem := medium.NewMemory(64)
	order := []string{"setpoint", "offset", "mode"}

	setpoint := NewValue[celsius](21.5)
	offset := NewValue[int16](-300)
	mode := NewValue[uint8](3)
	require.Equal(t, 4, setpoint.StateSize())
	require.Equal(t, 2, offset.StateSize())
	require.Equal(t, 1, mode.StateSize())

	save(t, mem, map[string]storage.Element{"setpoint": setpoint, "offset": offset, "mode": mode}, order)
	require.Equal(t, []byte{0xD4, 0xFE}, mem.Bytes()[19:21])

	rs, ro, rm := NewValue[celsius](0), NewValue[int16](0), NewValue[uint8](0)
	load(t, mem, map[string]storage.Element{"setpoint": rs, "offset": ro, "mode": rm}, order)
	require.InDelta(t, 21.5, float64(rs.Get()), 0)
	require.Equal(t, int16(-300), ro.Get())
	require.Equal(t, uint8(3), rm.Get())
}

func TestSaverNotifications(t *testing.T) {
	saver := &mockSaver{}
	saver.Test(t)
	saver.On("ScheduleSave", 2*time.Second).Return().Times(4)
	t.Cleanup(func() { saver.AssertExpectations(t) })

	s := NewSwitch(RestoreLast, WithSaver(saver, 2*time.Second))
	s.Set(true)
	s.Set(true) // no change

	c := NewCounter(WithSaver(saver, 2*time.Second))
	c.Inc()
	c.Add(0) // no change

	v := NewValue(1.5, WithSaver(saver, 2*time.Second))
	v.Set(1.5) // no change
	v.Set(2.5)

	s.Toggle()
}

func TestSaverWithManager(t *testing.T) {
	mem := medium.NewMemory(64)
	mgr, err := storage.NewManager(mem, storage.WithStateSavePeriod(0))
	require.NoError(t, err)

	relay := NewSwitch(RestoreLast, WithSaver(mgr, 0))
	_, err = mgr.RegisterElement("relay", relay)
	require.NoError(t, err)
	require.True(t, mgr.Init())
	require.False(t, mgr.SaveStateAllowed())

	relay.Set(true)
	require.True(t, mgr.SaveStateAllowed())
	require.NoError(t, mgr.Iterate())
	require.Equal(t, byte(1), mem.Bytes()[15])
}

func TestRaw(t *testing.T) {
	r := NewRaw(3)
	require.ErrorIs(t, r.Set([]byte{1}), errs.ErrInvalidStateSize)
	require.NoError(t, r.Set([]byte{1, 2, 3}))

	mem := medium.NewMemory(64)
	order := []string{"cal"}
	save(t, mem, map[string]storage.Element{"cal": r}, order)

	restored := NewRaw(3)
	load(t, mem, map[string]storage.Element{"cal": restored}, order)
	require.Equal(t, []byte{1, 2, 3}, restored.Bytes())

	out := restored.Bytes()
	out[0] = 9
	require.Equal(t, byte(1), restored.Bytes()[0])
}
