package snapshot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jonboulle/clockwork"

	"github.com/arloliu/nvstate/compress"
	"github.com/arloliu/nvstate/endian"
	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/format"
	"github.com/arloliu/nvstate/internal/hash"
	"github.com/arloliu/nvstate/internal/options"
	"github.com/arloliu/nvstate/internal/pool"
	"github.com/arloliu/nvstate/medium"
)

const (
	// Magic identifies a snapshot file.
	Magic = "NVSS"
	// Version is the snapshot format version.
	Version = 1
	// HeaderSize is the fixed prefix before the CBOR metadata.
	HeaderSize = 9
	// MaxMetaSize bounds the metadata length accepted by Read.
	MaxMetaSize = 1 << 20
)

type writer struct {
	compression format.CompressionType
	label       string
	clock       clockwork.Clock
}

// Option configures Write and Export.
type Option = options.Option[*writer]

// WithCompression selects the payload codec. The default is zstd.
func WithCompression(c format.CompressionType) Option {
	return options.New(func(w *writer) error {
		if _, err := compress.GetCodec(c); err != nil {
			return err
		}
		w.compression = c

		return nil
	})
}

// WithLabel attaches a free-form label, such as a device serial number.
func WithLabel(label string) Option {
	return options.NoError(func(w *writer) {
		w.label = label
	})
}

// WithClock sets the clock stamping Meta.CreatedAt.
func WithClock(c clockwork.Clock) Option {
	return options.NoError(func(w *writer) {
		if c != nil {
			w.clock = c
		}
	})
}

// Capture reads size bytes from the start of r.
func Capture(r io.ReaderAt, size int64) ([]byte, error) {
	if size <= 0 || size > compress.MaxDecompressedSize {
		return nil, fmt.Errorf("%w: capture of %d bytes", errs.ErrSnapshotTooLarge, size)
	}

	image := make([]byte, size)
	if err := medium.ReadFull(r, image, 0); err != nil {
		return nil, fmt.Errorf("capture medium: %w", err)
	}

	return image, nil
}

// Write encodes image as a snapshot to w.
//
// Returns:
//   - Meta: The metadata written
//   - error: Option, codec or write errors
func Write(w io.Writer, image []byte, opts ...Option) (Meta, error) {
	if len(image) == 0 {
		return Meta{}, fmt.Errorf("%w: empty image", errs.ErrInvalidSnapshot)
	}

	cfg := &writer{compression: format.CompressionZstd, clock: clockwork.NewRealClock()}
	if err := options.Apply(cfg, opts...); err != nil {
		return Meta{}, err
	}

	payload, _, err := compress.Compress(cfg.compression, image)
	if err != nil {
		return Meta{}, err
	}

	meta := Meta{
		CreatedAt:   cfg.clock.Now().UTC(),
		Compression: cfg.compression,
		ImageSize:   int64(len(image)),
		Digest:      hash.Digest(image),
		PayloadSize: int64(len(payload)),
		Label:       cfg.label,
		Sections:    Describe(image),
	}

	metaBytes, err := encodeMeta(meta)
	if err != nil {
		return Meta{}, fmt.Errorf("encode snapshot meta: %w", err)
	}

	bb := pool.GetImage()
	defer pool.PutImage(bb)

	var header [HeaderSize]byte
	copy(header[:], Magic)
	header[4] = Version
	endian.Media().PutUint32(header[5:], uint32(len(metaBytes))) //nolint:gosec // bounded by MaxMetaSize

	_, _ = bb.Write(header[:])
	_, _ = bb.Write(metaBytes)
	_, _ = bb.Write(payload)

	if _, err := bb.WriteTo(w); err != nil {
		return Meta{}, fmt.Errorf("write snapshot: %w", err)
	}

	return meta, nil
}

// Export captures size bytes of m and writes them as a snapshot to w.
func Export(w io.Writer, m io.ReaderAt, size int64, opts ...Option) (Meta, error) {
	image, err := Capture(m, size)
	if err != nil {
		return Meta{}, err
	}

	return Write(w, image, opts...)
}

// Read decodes a snapshot and verifies the image size and digest.
//
// Returns:
//   - []byte: The raw medium image
//   - Meta: The snapshot metadata
//   - error: ErrInvalidSnapshot, ErrInvalidSnapshotMeta, ErrUnsupportedCodec,
//     ErrSnapshotTooLarge, ErrSnapshotDigest or read errors
func Read(r io.Reader) ([]byte, Meta, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, Meta{}, fmt.Errorf("%w: read header: %v", errs.ErrInvalidSnapshot, err)
	}
	if !bytes.Equal(header[:4], []byte(Magic)) {
		return nil, Meta{}, fmt.Errorf("%w: bad magic %q", errs.ErrInvalidSnapshot, header[:4])
	}
	if header[4] != Version {
		return nil, Meta{}, fmt.Errorf("%w: version %d", errs.ErrInvalidSnapshot, header[4])
	}

	metaLen := endian.Media().Uint32(header[5:])
	if metaLen == 0 || metaLen > MaxMetaSize {
		return nil, Meta{}, fmt.Errorf("%w: metadata length %d", errs.ErrInvalidSnapshotMeta, metaLen)
	}

	metaBytes := make([]byte, metaLen)
	if _, err := io.ReadFull(r, metaBytes); err != nil {
		return nil, Meta{}, fmt.Errorf("%w: read metadata: %v", errs.ErrInvalidSnapshotMeta, err)
	}

	meta, err := decodeMeta(metaBytes)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%w: %v", errs.ErrInvalidSnapshotMeta, err)
	}
	if meta.ImageSize <= 0 || meta.ImageSize > compress.MaxDecompressedSize ||
		meta.PayloadSize < 0 || meta.PayloadSize > compress.MaxDecompressedSize {
		return nil, Meta{}, fmt.Errorf("%w: image %d bytes, payload %d bytes",
			errs.ErrSnapshotTooLarge, meta.ImageSize, meta.PayloadSize)
	}

	codec, err := compress.GetCodec(meta.Compression)
	if err != nil {
		return nil, Meta{}, err
	}

	payload := make([]byte, meta.PayloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, Meta{}, fmt.Errorf("%w: read payload: %v", errs.ErrInvalidSnapshot, err)
	}

	image, err := codec.Decompress(payload)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%w: %s payload: %v", errs.ErrInvalidSnapshot, meta.Compression, err)
	}
	if int64(len(image)) != meta.ImageSize {
		return nil, Meta{}, fmt.Errorf("%w: image is %d bytes, metadata says %d",
			errs.ErrInvalidSnapshot, len(image), meta.ImageSize)
	}
	if d := hash.Digest(image); d != meta.Digest {
		return nil, Meta{}, fmt.Errorf("%w: got %016x, want %016x", errs.ErrSnapshotDigest, d, meta.Digest)
	}

	return image, meta, nil
}

// Restore writes image to the start of m and commits once.
func Restore(m medium.Medium, image []byte) error {
	if m == nil {
		return errs.ErrNoMedium
	}
	if c := medium.Capacity(m); c > 0 && int64(len(image)) > c {
		return fmt.Errorf("%w: image %d bytes, medium %d bytes", errs.ErrSnapshotTooLarge, len(image), c)
	}

	if err := medium.WriteFull(m, image, 0); err != nil {
		return fmt.Errorf("restore image: %w", err)
	}
	if err := m.Commit(); err != nil {
		return fmt.Errorf("restore commit: %w", err)
	}

	return nil
}
