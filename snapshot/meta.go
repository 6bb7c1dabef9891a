package snapshot

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/arloliu/nvstate/format"
	"github.com/arloliu/nvstate/section"
)

// SectionInfo summarizes one section found in the image.
type SectionInfo struct {
	Type   format.SectionType `cbor:"1,keyasint"`
	Offset int64              `cbor:"2,keyasint"`
	Size   uint16             `cbor:"3,keyasint"`
	CRC1   uint16             `cbor:"4,keyasint"`
	CRC2   uint16             `cbor:"5,keyasint"`
	Valid  bool               `cbor:"6,keyasint"`
}

// Meta describes a snapshot.
type Meta struct {
	CreatedAt   time.Time              `cbor:"1,keyasint"`
	Compression format.CompressionType `cbor:"2,keyasint"`
	ImageSize   int64                  `cbor:"3,keyasint"`
	Digest      uint64                 `cbor:"4,keyasint"`
	PayloadSize int64                  `cbor:"5,keyasint"`
	Label       string                 `cbor:"6,keyasint,omitempty"`
	Sections    []SectionInfo          `cbor:"7,keyasint,omitempty"`
}

var (
	metaEncMode cbor.EncMode
	metaDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	metaEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		MaxArrayElements: section.MaxSections,
	}
	metaDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

func encodeMeta(m Meta) ([]byte, error) {
	return metaEncMode.Marshal(m)
}

func decodeMeta(data []byte) (Meta, error) {
	var m Meta
	if err := metaDecMode.Unmarshal(data, &m); err != nil {
		return Meta{}, err
	}

	return m, nil
}

// Describe lists the sections of a raw medium image. It returns nil when
// the image does not start with a valid preamble. A section chain running
// past the image is reported up to the last complete section.
func Describe(image []byte) []SectionInfo {
	if len(image) < section.PreambleSize {
		return nil
	}

	p, err := section.ParsePreamble(image[:section.PreambleSize])
	if err != nil || !p.IsValid() {
		return nil
	}

	entries, _ := section.Walk(bytes.NewReader(image), p, int64(len(image)))
	infos := make([]SectionInfo, 0, len(entries))
	for _, e := range entries {
		payload := image[e.PayloadOffset():e.End()]
		infos = append(infos, SectionInfo{
			Type:   e.Header.Type,
			Offset: e.Offset,
			Size:   e.Header.Size,
			CRC1:   e.Header.CRC1,
			CRC2:   e.Header.CRC2,
			Valid:  e.Header.Matches(payload),
		})
	}

	return infos
}
