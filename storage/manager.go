package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/format"
	"github.com/arloliu/nvstate/internal/logfields"
	"github.com/arloliu/nvstate/internal/options"
	"github.com/arloliu/nvstate/internal/pool"
	"github.com/arloliu/nvstate/medium"
	"github.com/arloliu/nvstate/metrics"
	"github.com/arloliu/nvstate/section"
)

type hookKind string

const (
	loadHook hookKind = "load"
	saveHook hookKind = "save"
)

// Stats counts the physical work a Manager has issued to its medium.
type Stats struct {
	Commits      int
	Writes       int
	BytesWritten int
	SavesSkipped int
	Formats      int
}

// Manager persists registered element state on a medium.
//
// A Manager is not safe for concurrent use; it is driven from the device
// main loop.
type Manager struct {
	medium   medium.Medium
	capacity int64
	logger   *slog.Logger
	recorder metrics.Recorder
	clock    clockwork.Clock

	registry *Registry

	initDone bool
	ready    bool
	preamble section.Preamble
	entries  []section.Entry

	// image is the cached element-state payload.
	image []byte

	hook    *Record
	cursor  int
	hookErr error

	period   time.Duration
	lastSave time.Time
	dueAt    time.Time

	stats Stats
}

var _ StateIO = (*Manager)(nil)

// NewManager creates a manager for med. A nil medium is accepted: Init then
// reports false and every storage operation is a no-op or returns
// errs.ErrNotInitialized.
func NewManager(med medium.Medium, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		medium:   med,
		logger:   slog.New(slog.DiscardHandler),
		recorder: metrics.NoopRecorder{},
		clock:    clockwork.NewRealClock(),
		registry: NewRegistry(),
		period:   DefaultStateSavePeriod,
	}
	if med != nil {
		m.capacity = medium.Capacity(med)
	}

	if err := options.Apply(m, opts...); err != nil {
		return nil, err
	}
	m.lastSave = m.clock.Now()

	return m, nil
}

// RegisterStateSection reserves size bytes of the element-state payload for
// el and returns the offset of its sub-range.
//
// Registration must happen before the first LoadStateStorage or
// WriteStateStorage; the order of calls defines the payload layout.
func (m *Manager) RegisterStateSection(name string, size int, el Element) (int, error) {
	rec, err := m.registry.Add(name, size, el)
	if err != nil {
		return 0, err
	}

	m.logger.Debug("element registered",
		logfields.Element(name), logfields.Offset(int64(rec.Offset)), logfields.Size(size))

	return rec.Offset, nil
}

// RegisterElement registers el with the size reported by StateSizer, or
// measured by running OnSaveState once against a counting cursor.
func (m *Manager) RegisterElement(name string, el Element) (int, error) {
	if el == nil {
		return 0, fmt.Errorf("register %q: nil element: %w", name, errs.ErrInvalidElement)
	}

	return m.RegisterStateSection(name, SizeOf(el), el)
}

// Init validates the medium preamble and formats the medium when it is not
// initialized.
//
// A medium with a valid preamble is left untouched. Anything else (erased
// memory, a foreign tag, another version, a section chain running past the
// medium) is replaced by an empty preamble followed by exactly one commit.
// Init runs once; later calls return the first result.
//
// Returns:
//   - bool: false when no medium is attached or the medium failed
func (m *Manager) Init() bool {
	if m.initDone {
		return m.ready
	}
	m.initDone = true

	if m.medium == nil {
		m.logger.Warn("no storage medium attached, state will not persist")
		return false
	}

	if err := m.mount(); err != nil {
		m.logger.Error("storage init failed", logfields.Error(err))
		return false
	}
	m.ready = true

	return true
}

func (m *Manager) mount() error {
	buf := make([]byte, section.PreambleSize)
	if err := medium.ReadFull(m.medium, buf, 0); err != nil {
		return fmt.Errorf("read preamble: %w", err)
	}

	p, err := section.ParsePreamble(buf)
	if err != nil {
		return err
	}

	if err := p.Validate(); err != nil {
		m.logger.Info("medium not initialized, formatting", logfields.Error(err))
		return m.format(metrics.ReasonUninitialized)
	}

	entries, err := section.Walk(m.medium, p, m.capacity)
	if err != nil {
		if errors.Is(err, errs.ErrSectionOutOfBounds) || errors.Is(err, errs.ErrOutOfRange) {
			m.logger.Warn("section chain corrupted, formatting", logfields.Error(err))
			return m.format(metrics.ReasonCorrupted)
		}

		return err
	}

	m.preamble = p
	m.entries = entries
	m.logger.Debug("medium mounted", slog.Int("sections", len(entries)))

	return nil
}

// Format writes an empty preamble and commits, discarding every section.
// The cached payload image is cleared. Format also marks the manager as
// initialized.
func (m *Manager) Format() error {
	if m.medium == nil {
		return errs.ErrNoMedium
	}

	if err := m.format(metrics.ReasonFactoryReset); err != nil {
		return err
	}
	m.initDone, m.ready = true, true
	clear(m.image)

	return nil
}

func (m *Manager) format(reason string) error {
	p := section.NewPreamble(0)
	if err := m.write(p.Bytes(), 0); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if err := m.commit(); err != nil {
		return fmt.Errorf("format: %w", err)
	}

	m.preamble = p
	m.entries = nil
	m.stats.Formats++
	m.recorder.IncFormat(reason)
	m.logger.Info("medium formatted", logfields.Reason(reason))

	return nil
}

// IsStateStorageValid reports whether the medium holds an element-state
// section whose two stored checksums agree with each other and with the
// checksum of the payload currently on the medium.
func (m *Manager) IsStateStorageValid() bool {
	if !m.ready {
		return false
	}

	_, e, ok := m.stateEntry()
	if !ok {
		return false
	}

	bb := pool.GetScratch()
	defer pool.PutScratch(bb)

	payload := bb.Resize(int(e.Header.Size))
	if err := medium.ReadFull(m.medium, payload, e.PayloadOffset()); err != nil {
		m.logger.Warn("read element state failed", logfields.Error(err))
		return false
	}

	return e.Header.Matches(payload)
}

// LoadStateStorage restores every registered element from the medium.
//
// Load hooks run in registration order only when the stored section is valid
// and its size equals the registered total; otherwise no hook runs and every
// element keeps its current value. The first call seals the registry.
func (m *Manager) LoadStateStorage() error {
	if !m.ready {
		return errs.ErrNotInitialized
	}
	m.seal()

	total := len(m.image)
	if total == 0 {
		return nil
	}

	_, e, ok := m.stateEntry()
	if !ok {
		m.recorder.IncSectionInvalid(metrics.ReasonMissing)
		m.logger.Debug("no element state on medium")

		return nil
	}

	if int(e.Header.Size) != total {
		m.recorder.IncSectionInvalid(metrics.ReasonLayoutChanged)
		m.logger.Warn("element state layout changed, not loading",
			logfields.Size(int(e.Header.Size)), slog.Int("registered", total))

		return nil
	}

	bb := pool.GetScratch()
	defer pool.PutScratch(bb)

	payload := bb.Resize(total)
	if err := medium.ReadFull(m.medium, payload, e.PayloadOffset()); err != nil {
		return fmt.Errorf("read element state: %w", err)
	}

	if !e.Header.Matches(payload) {
		m.recorder.IncSectionInvalid(metrics.ReasonChecksum)
		m.logger.Warn("element state checksum mismatch, not loading",
			slog.Int("crc1", int(e.Header.CRC1)), slog.Int("crc2", int(e.Header.CRC2)))

		return nil
	}

	copy(m.image, payload)

	return m.runHooks(loadHook)
}

// WriteStateStorage saves every registered element to the medium.
//
// Save hooks run in registration order into the cached image. The image is
// then compared with the medium: when nothing differs, no byte is written and
// no commit happens. Otherwise only the differing byte runs and the checksum
// pair are written, followed by exactly one commit. The first write creates
// the element-state section; a changed registered total rewrites it in place
// when it is the last section on the medium.
func (m *Manager) WriteStateStorage() error {
	if !m.ready {
		return errs.ErrNotInitialized
	}
	m.seal()

	if len(m.image) == 0 {
		return nil
	}

	if err := m.runHooks(saveHook); err != nil {
		m.logger.Error("save hook failed, nothing written", logfields.Error(err))
		return err
	}

	want, err := section.NewSectionPreamble(format.SectionElementState, m.image)
	if err != nil {
		return err
	}

	idx, e, ok := m.stateEntry()
	if ok && int(e.Header.Size) == len(m.image) {
		return m.update(idx, e, want)
	}

	return m.place(idx, ok, want)
}

// update rewrites the differing parts of an existing section of the same size.
func (m *Manager) update(idx int, e section.Entry, want section.SectionPreamble) error {
	bb := pool.GetScratch()
	defer pool.PutScratch(bb)

	stored := bb.Resize(len(m.image))
	if err := medium.ReadFull(m.medium, stored, e.PayloadOffset()); err != nil {
		return fmt.Errorf("read element state: %w", err)
	}

	n := 0
	for _, r := range diffRuns(stored, m.image) {
		if err := m.write(m.image[r.start:r.end], e.PayloadOffset()+int64(r.start)); err != nil {
			return fmt.Errorf("write element state: %w", err)
		}
		n += r.end - r.start
	}

	if e.Header.CRC1 != want.CRC1 || e.Header.CRC2 != want.CRC2 {
		if err := m.write(want.CRCBytes(), e.CRCOffset()); err != nil {
			return fmt.Errorf("write element state checksum: %w", err)
		}
		n += section.CRCPairSize
	}

	if n == 0 {
		m.stats.SavesSkipped++
		m.recorder.IncSaveSkipped()
		m.logger.Debug("element state unchanged, skipping write")

		return nil
	}

	if err := m.commit(); err != nil {
		return err
	}
	m.entries[idx].Header = want
	m.logger.Debug("element state saved", logfields.Bytes(n), logfields.CRC(want.CRC1))

	return nil
}

// place writes a new element-state section, or rewrites an existing one
// whose size changed.
func (m *Manager) place(idx int, exists bool, want section.SectionPreamble) error {
	count := m.preamble.SectionsCount

	var off int64
	if exists {
		if idx != len(m.entries)-1 {
			return fmt.Errorf("resize element state from %d to %d bytes: %w",
				m.entries[idx].Header.Size, want.Size, errs.ErrSectionNotLast)
		}
		off = m.entries[idx].Offset
	} else {
		if int(count) >= section.MaxSections {
			return fmt.Errorf("append element state: %w", errs.ErrSectionOutOfBounds)
		}
		off = section.EndOffset(m.entries)
		count++
	}

	e := section.Entry{Offset: off, Header: want}
	if m.capacity > 0 && e.End() > m.capacity {
		return fmt.Errorf("element state of %d bytes at offset %d exceeds capacity %d: %w",
			want.Size, off, m.capacity, errs.ErrSectionOutOfBounds)
	}

	if err := m.write(m.image, e.PayloadOffset()); err != nil {
		return fmt.Errorf("write element state: %w", err)
	}
	if err := m.write(want.Bytes(), e.Offset); err != nil {
		return fmt.Errorf("write element state preamble: %w", err)
	}

	p := m.preamble
	if count != p.SectionsCount {
		p.SectionsCount = count
		if err := m.write(p.Bytes(), 0); err != nil {
			return fmt.Errorf("write preamble: %w", err)
		}
	}

	if err := m.commit(); err != nil {
		return err
	}

	m.preamble = p
	if exists {
		m.entries[idx] = e
	} else {
		m.entries = append(m.entries, e)
	}
	m.logger.Info("element state section written",
		logfields.Offset(off), logfields.Size(int(want.Size)), logfields.CRC(want.CRC1))

	return nil
}

func (m *Manager) seal() {
	if m.registry.Sealed() {
		return
	}
	m.registry.Seal()
	m.image = make([]byte, m.registry.Total())

	m.logger.Debug("element registry sealed",
		slog.Int("elements", m.registry.Len()),
		logfields.Size(m.registry.Total()),
		logfields.Layout(m.registry.Fingerprint()))
}

func (m *Manager) stateEntry() (int, section.Entry, bool) {
	for i, e := range m.entries {
		if e.Header.Type == format.SectionElementState {
			return i, e, true
		}
	}

	return -1, section.Entry{}, false
}

func (m *Manager) write(p []byte, off int64) error {
	if err := medium.WriteFull(m.medium, p, off); err != nil {
		return err
	}
	m.stats.Writes++
	m.stats.BytesWritten += len(p)
	m.recorder.AddBytesWritten(len(p))

	return nil
}

func (m *Manager) commit() error {
	start := m.clock.Now()
	err := m.medium.Commit()
	m.recorder.ObserveCommitDuration(m.clock.Since(start))
	m.recorder.IncCommit(err == nil)

	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	m.stats.Commits++

	return nil
}

// Records returns the registered elements in payload order.
func (m *Manager) Records() []Record {
	return m.registry.Records()
}

// LayoutFingerprint returns the fingerprint of the registered layout.
func (m *Manager) LayoutFingerprint() uint64 {
	return m.registry.Fingerprint()
}

// Sections returns the sections found on the medium.
func (m *Manager) Sections() []section.Entry {
	return append([]section.Entry(nil), m.entries...)
}

// StateImage returns a copy of the cached element-state payload.
func (m *Manager) StateImage() []byte {
	return append([]byte(nil), m.image...)
}

// Stats returns the counters of physical work issued so far.
func (m *Manager) Stats() Stats {
	return m.stats
}

// Initialized reports whether Init or Format succeeded.
func (m *Manager) Initialized() bool {
	return m.ready
}

type byteRun struct {
	start, end int
}

// diffRuns returns the maximal runs of indexes where a and b differ.
// Both slices must have the same length.
func diffRuns(a, b []byte) []byteRun {
	var runs []byteRun
	for i := 0; i < len(b); {
		if a[i] == b[i] {
			i++
			continue
		}
		j := i + 1
		for j < len(b) && a[j] != b[j] {
			j++
		}
		runs = append(runs, byteRun{start: i, end: j})
		i = j
	}

	return runs
}
