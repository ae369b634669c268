// Package section defines the fixed on-image layout of a discodb database:
// the header with its flag bits and codebook region, and the constants
// shared by the writer and the reader.
//
// An image is a single contiguous little-endian byte region. The header sits
// at offset 0 and records the absolute start offsets of the three data
// sections (minimal perfect hash, key->values, id->value). Each data section
// except the hash section begins with a table of contents of N+1 absolute
// u64 offsets; entry i's payload spans [toc[i], toc[i+1]). The hash section
// carries no TOC: it is a single blob whose length is implied by the start
// of the following section.
package section

import (
	"github.com/discoproject/discodb/endian"
	"github.com/discoproject/discodb/errs"
	"github.com/discoproject/discodb/format"
)

// Header is the fixed-size header of a discodb image.
//
// All multi-byte fields are little-endian on disk. The struct mirrors the
// byte layout logically, not physically; Bytes and Parse perform the exact
// serialization.
type Header struct {
	// Flags is the bitset of FlagMultiset, FlagCompressed and FlagHash.
	Flags uint32
	// Size is the total image length in bytes.
	Size uint64
	// NumKeys is the unique key count.
	NumKeys uint32
	// NumUniqueValues is the unique value count; value ids cover
	// [1, NumUniqueValues].
	NumUniqueValues uint32
	// NumValues is the total number of (key, value) pairs added, duplicates
	// included.
	NumValues uint32
	// ValueCodec identifies the codec of the id->value section payloads.
	ValueCodec format.CompressionType
	// HashOffset is the absolute offset of the minimal perfect hash section.
	HashOffset uint64
	// KeyToValuesOffset is the absolute offset of the key->values section.
	KeyToValuesOffset uint64
	// IDToValueOffset is the absolute offset of the id->value section.
	IDToValueOffset uint64
	// Codebook is the fixed codebook region: u32 payload length followed by
	// the serialized symbol table, zero-padded. The length is 0 for every
	// codec except format.CompressionCodebook.
	Codebook [CodebookRegionSize]byte
}

// NewHeader creates a header with zero flags and the given entity counts.
func NewHeader(numKeys, numUniqueValues, numValues uint32) *Header {
	return &Header{
		NumKeys:         numKeys,
		NumUniqueValues: numUniqueValues,
		NumValues:       numValues,
		ValueCodec:      format.CompressionCodebook,
	}
}

// HasMultiset reports whether some key holds a repeated value id.
func (h Header) HasMultiset() bool {
	return h.Flags&FlagMultiset != 0
}

// SetMultiset marks the image as containing at least one duplicate value id.
func (h *Header) SetMultiset() {
	h.Flags |= FlagMultiset
}

// IsCompressed reports whether id->value payloads are codec output.
func (h Header) IsCompressed() bool {
	return h.Flags&FlagCompressed != 0
}

// SetCompressed marks the id->value section as codec-compressed.
func (h *Header) SetCompressed() {
	h.Flags |= FlagCompressed
}

// HasHash reports whether a minimal perfect hash section is present.
func (h Header) HasHash() bool {
	return h.Flags&FlagHash != 0
}

// SetHash marks the image as carrying a minimal perfect hash section.
func (h *Header) SetHash() {
	h.Flags |= FlagHash
}

// CodebookPayload returns the serialized symbol table stored in the codebook
// region. It returns nil when the region is empty or its length word is
// out of range, which readers treat as a missing codebook.
func (h Header) CodebookPayload() []byte {
	engine := endian.GetLittleEndianEngine()
	n := engine.Uint32(h.Codebook[:4])
	if n == 0 || n > CodebookMaxSize {
		return nil
	}

	return h.Codebook[4 : 4+n]
}

// SetCodebookPayload stores a serialized symbol table into the codebook
// region. It returns errs.ErrInvalidCodebook when the table exceeds the
// fixed region.
func (h *Header) SetCodebookPayload(table []byte) error {
	if len(table) > CodebookMaxSize {
		return errs.ErrInvalidCodebook
	}

	engine := endian.GetLittleEndianEngine()
	clear(h.Codebook[:])
	engine.PutUint32(h.Codebook[:4], uint32(len(table)))
	copy(h.Codebook[4:], table)

	return nil
}

// Bytes serializes the header into a fresh HeaderSize byte slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.WriteToSlice(b)

	return b
}

// WriteToSlice serializes the header into dst, which must hold at least
// HeaderSize bytes.
func (h Header) WriteToSlice(dst []byte) {
	engine := endian.GetLittleEndianEngine()

	engine.PutUint32(dst[MagicOffset:], MagicV1)
	engine.PutUint32(dst[FlagsOffset:], h.Flags)
	engine.PutUint64(dst[SizeOffset:], h.Size)
	engine.PutUint32(dst[NumKeysOffset:], h.NumKeys)
	engine.PutUint32(dst[NumUniqueValuesOffset:], h.NumUniqueValues)
	engine.PutUint32(dst[NumValuesOffset:], h.NumValues)
	dst[ValueCodecOffset] = uint8(h.ValueCodec)
	dst[ValueCodecOffset+1] = 0
	dst[ValueCodecOffset+2] = 0
	dst[ValueCodecOffset+3] = 0
	engine.PutUint64(dst[HashOffsetOffset:], h.HashOffset)
	engine.PutUint64(dst[KeyToValuesOffsetOffset:], h.KeyToValuesOffset)
	engine.PutUint64(dst[IDToValueOffsetOffset:], h.IDToValueOffset)
	copy(dst[CodebookOffset:], h.Codebook[:])
}

// Parse deserializes the header from data and validates it.
// It returns an error if data is not exactly HeaderSize bytes, the magic
// number is wrong, unknown flag bits are set, or the codec byte is invalid.
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()

	if engine.Uint32(data[MagicOffset:]) != MagicV1 {
		return errs.ErrInvalidMagicNumber
	}

	h.Flags = engine.Uint32(data[FlagsOffset:])
	h.Size = engine.Uint64(data[SizeOffset:])
	h.NumKeys = engine.Uint32(data[NumKeysOffset:])
	h.NumUniqueValues = engine.Uint32(data[NumUniqueValuesOffset:])
	h.NumValues = engine.Uint32(data[NumValuesOffset:])
	h.ValueCodec = format.CompressionType(data[ValueCodecOffset])
	h.HashOffset = engine.Uint64(data[HashOffsetOffset:])
	h.KeyToValuesOffset = engine.Uint64(data[KeyToValuesOffsetOffset:])
	h.IDToValueOffset = engine.Uint64(data[IDToValueOffsetOffset:])
	copy(h.Codebook[:], data[CodebookOffset:])

	if !h.IsValid() {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}

// IsValid checks that the flag bits and codec byte contain only values this
// version understands, and that they are mutually consistent.
func (h Header) IsValid() bool {
	if h.Flags&^uint32(FlagKnownMask) != 0 {
		return false
	}

	switch h.ValueCodec {
	case format.CompressionNone:
		if h.IsCompressed() {
			return false
		}
	case format.CompressionCodebook, format.CompressionZstd,
		format.CompressionS2, format.CompressionLZ4:
		if !h.IsCompressed() {
			return false
		}
	default:
		return false
	}

	return true
}
