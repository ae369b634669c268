package section

const (
	// MagicV1 identifies a version 1 discodb image. It reads as "DDB1" when
	// the first four bytes are viewed as ASCII.
	MagicV1 uint32 = 0x31424444

	// Flag bits of the header Flags field.
	FlagMultiset   = 0x00000001 // some key holds a repeated value id
	FlagCompressed = 0x00000002 // id->value section payloads are codec output
	FlagHash       = 0x00000004 // a minimal perfect hash section is present

	// FlagKnownMask covers every flag bit this version understands.
	// Any other bit set in an image is a format error.
	FlagKnownMask = FlagMultiset | FlagCompressed | FlagHash
)

// offsets and sizes of the fixed header layout
const (
	HeaderSize = 2120 // total fixed header size in bytes

	MagicOffset             = 0
	FlagsOffset             = 4
	SizeOffset              = 8
	NumKeysOffset           = 16
	NumUniqueValuesOffset   = 20
	NumValuesOffset         = 24
	ValueCodecOffset        = 28
	HashOffsetOffset        = 32
	KeyToValuesOffsetOffset = 40
	IDToValueOffsetOffset   = 48
	CodebookOffset          = 56

	// CodebookRegionSize is the fixed codebook region embedded in the header:
	// a 4-byte payload length followed by the serialized symbol table
	// (at most CodebookMaxSize bytes), zero-padded. The region size keeps
	// HeaderSize a multiple of 8 so the hash section start stays aligned.
	CodebookRegionSize = 2064
	CodebookMaxSize    = 2056
)

const (
	// HashMinKeys is the unique-key count above which a minimal perfect
	// hash section is emitted. Below it a linear record scan at read time
	// is cheaper than the hash overhead.
	HashMinKeys = 32

	// TocEntrySize is the width of one table-of-contents offset. Every data
	// section begins with N+1 of these.
	TocEntrySize = 8
)
