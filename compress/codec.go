package compress

import (
	"fmt"
	"time"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/format"
)

// MaxDecompressedSize bounds the output of every Decompress call.
const MaxDecompressedSize = 64 * 1024 * 1024

// Compressor compresses a medium image.
//
// The returned slice is owned by the caller; the input is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores data produced by the matching Compressor.
//
// Implementations return an error for corrupted input or when the output
// would exceed MaxDecompressedSize.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All codecs are safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression run.
type CompressionStats struct {
	// Algorithm identifies the codec.
	Algorithm format.CompressionType
	// OriginalSize is the input length.
	OriginalSize int64
	// CompressedSize is the output length.
	CompressedSize int64
	// Duration is the time spent compressing.
	Duration time.Duration
}

// CompressionRatio returns compressed size / original size, or 0 for empty
// input.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the saved space as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// Compress compresses data with the codec for typ and reports statistics.
//
// Returns:
//   - []byte: Compressed data
//   - CompressionStats: Sizes and duration of the run
//   - error: ErrUnsupportedCodec or a codec error
func Compress(typ format.CompressionType, data []byte) ([]byte, CompressionStats, error) {
	codec, err := GetCodec(typ)
	if err != nil {
		return nil, CompressionStats{}, err
	}

	start := time.Now()
	out, err := codec.Compress(data)
	if err != nil {
		return nil, CompressionStats{}, fmt.Errorf("%s compress: %w", typ, err)
	}

	return out, CompressionStats{
		Algorithm:      typ,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(out)),
		Duration:       time.Since(start),
	}, nil
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in codec for typ.
func GetCodec(typ format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[typ]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCodec, typ)
}

func checkSize(n int) error {
	if n > MaxDecompressedSize {
		return fmt.Errorf("%w: %d bytes", errs.ErrSnapshotTooLarge, n)
	}

	return nil
}
