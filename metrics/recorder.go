// Package metrics records storage wear and integrity events.
//
// Flash and EEPROM cells survive a bounded number of program cycles, so the
// interesting numbers for a device fleet are how often state is committed,
// how many bytes are programmed and how many saves were skipped because
// nothing changed.
package metrics

import "time"

// Reason labels for format and invalid-section events.
const (
	ReasonUninitialized = "uninitialized" // preamble tag or version mismatch
	ReasonCorrupted     = "corrupted"     // section chain does not fit the medium
	ReasonFactoryReset  = "factory_reset" // explicit Format call
	ReasonChecksum      = "checksum"      // crc1/crc2 disagree with the payload
	ReasonLayoutChanged = "layout_changed"
	ReasonMissing       = "missing" // no element-state section yet
)

// Recorder receives storage events. Implementations must be safe for nil
// receivers so that a zero value can be injected.
type Recorder interface {
	IncCommit(success bool)
	ObserveCommitDuration(d time.Duration)
	AddBytesWritten(n int)
	IncSaveSkipped()
	IncSectionInvalid(reason string)
	IncFormat(reason string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncCommit(bool)                      {}
func (NoopRecorder) ObserveCommitDuration(time.Duration) {}
func (NoopRecorder) AddBytesWritten(int)                 {}
func (NoopRecorder) IncSaveSkipped()                     {}
func (NoopRecorder) IncSectionInvalid(string)            {}
func (NoopRecorder) IncFormat(string)                    {}
