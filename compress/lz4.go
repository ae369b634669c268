package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/discoproject/discodb/endian"
)

// lz4CompressorPool pools lz4.Compressor instances; the compressor keeps
// internal match state that benefits from reuse across values.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses value payloads as framed LZ4 blocks.
//
// The raw block format records neither the uncompressed size nor whether
// the input was compressible at all, so each payload is prefixed with a
// little-endian u32 header: the uncompressed length shifted left once, with
// the low bit set when the bytes that follow are stored verbatim because
// LZ4 could not shrink them.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 block compression.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	engine := endian.GetLittleEndianEngine()
	dst := make([]byte, 4+lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[4:])
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		// Incompressible; store verbatim.
		out := make([]byte, 4+len(data))
		engine.PutUint32(out, uint32(len(data))<<1|1)
		copy(out[4:], data)

		return out, nil
	}

	engine.PutUint32(dst, uint32(len(data))<<1)

	return dst[:4+n], nil
}

// Decompress restores a payload produced by Compress.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("lz4 payload truncated: %d bytes", len(data))
	}

	engine := endian.GetLittleEndianEngine()
	header := engine.Uint32(data)
	origLen := header >> 1
	block := data[4:]

	if header&1 != 0 {
		if uint32(len(block)) != origLen {
			return nil, fmt.Errorf("lz4 raw payload length mismatch: header %d, got %d", origLen, len(block))
		}
		out := make([]byte, origLen)
		copy(out, block)

		return out, nil
	}

	out := make([]byte, origLen)
	n, err := lz4.UncompressBlock(block, out)
	if err != nil {
		return nil, err
	}

	return out[:n], nil
}
