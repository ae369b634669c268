package format

type CompressionType uint8

const (
	CompressionNone     CompressionType = 0x1 // CompressionNone stores value payloads verbatim.
	CompressionCodebook CompressionType = 0x2 // CompressionCodebook uses a learned symbol-table prefix code.
	CompressionZstd     CompressionType = 0x3 // CompressionZstd represents Zstandard compression.
	CompressionS2       CompressionType = 0x4 // CompressionS2 represents S2 compression.
	CompressionLZ4      CompressionType = 0x5 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionCodebook:
		return "Codebook"
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
