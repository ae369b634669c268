// Package compress provides the general-purpose codecs available for the
// id->value section of a discodb image.
//
// Every unique value is compressed independently, so a reader can decode a
// single value without touching its neighbors. The default discodb codec is
// the learned codebook (see the codebook package); the codecs here are the
// alternatives for payloads the symbol table handles poorly, such as long
// values with internal redundancy:
//   - Zstd: best ratio, moderate speed
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//   - NoOp: verbatim payloads (compression disabled)
//
// All codecs are stateless values, safe for concurrent use.
package compress

import (
	"fmt"

	"github.com/discoproject/discodb/format"
)

// Compressor compresses one value payload.
type Compressor interface {
	// Compress compresses the input and returns the result.
	// The input is not modified. The returned slice is owned by the
	// caller; NoOpCompressor returns the input itself rather than a copy.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores one value payload.
type Decompressor interface {
	// Decompress decompresses the input and returns the original bytes.
	// It returns an error if the data is corrupted or was produced by a
	// different algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec creates a Codec for the given compression type.
// format.CompressionCodebook is not a Codec; the codebook package owns it.
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid value compression: %s", compressionType)
	}
}
