package format

type (
	SectionType     uint8
	CompressionType uint8
)

const (
	SectionDeviceConfig  SectionType = 0x1 // SectionDeviceConfig holds device-wide configuration.
	SectionElementConfig SectionType = 0x2 // SectionElementConfig holds per-element configuration.
	SectionElementState  SectionType = 0x3 // SectionElementState aggregates the persisted state of all registered elements.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (s SectionType) String() string {
	switch s {
	case SectionDeviceConfig:
		return "DeviceConfig"
	case SectionElementConfig:
		return "ElementConfig"
	case SectionElementState:
		return "ElementState"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a case-sensitive lowercase name ("none", "zstd", "s2", "lz4")
// to its CompressionType. The second result is false for unknown names.
func ParseCompression(name string) (CompressionType, bool) {
	switch name {
	case "", "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
