package compress

// ZstdCompressor is the Zstandard codec.
//
// The backend is selected at build time: klauspost/compress/zstd by default,
// valyala/gozstd with the gozstd build tag. Both emit standard zstd frames
// with the content size recorded, which Decompress checks against
// MaxDecompressedSize before allocating.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec with the default level.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
