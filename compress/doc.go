// Package compress provides the codecs used for medium image snapshots.
//
// Medium images are mostly erased space (runs of 0x00 or 0xFF) around a few
// hundred bytes of section data, so every codec shrinks them by orders of
// magnitude. The codecs differ in speed and ratio:
//
//	Type  | Backend                         | Use
//	------|---------------------------------|-------------------------------
//	none  | copy                            | debugging, diffable exports
//	zstd  | klauspost/compress/zstd         | default, best ratio
//	      | valyala/gozstd (tag gozstd)     | cgo backend, same stream format
//	s2    | klauspost/compress/s2           | fastest
//	lz4   | pierrec/lz4/v4 block format     | interop with device-side tools
//
// Build with -tags gozstd to use the cgo zstd backend; both backends read
// each other's output.
//
// Decompression never produces more than MaxDecompressedSize bytes, so a
// corrupted or hostile snapshot cannot exhaust memory.
//
// Usage:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//		return err
//	}
//	packed, err := codec.Compress(image)
package compress
