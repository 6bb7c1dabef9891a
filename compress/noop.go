package compress

// NoOpCompressor stores data as is.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns a copy of data.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

// Decompress returns a copy of data.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	if err := checkSize(len(data)); err != nil {
		return nil, err
	}

	return append([]byte(nil), data...), nil
}
