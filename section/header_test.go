package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/discoproject/discodb/errs"
	"github.com/discoproject/discodb/format"
)

func TestHeader_BytesParseRoundTrip(t *testing.T) {
	head := NewHeader(10, 7, 42)
	head.SetMultiset()
	head.SetCompressed()
	head.SetHash()
	head.Size = 9999
	head.HashOffset = HeaderSize
	head.KeyToValuesOffset = HeaderSize + 128
	head.IDToValueOffset = HeaderSize + 1024
	require.NoError(t, head.SetCodebookPayload([]byte("serialized symbol table")))

	data := head.Bytes()
	require.Len(t, data, HeaderSize)

	var parsed Header
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, *head, parsed)
	require.Equal(t, []byte("serialized symbol table"), parsed.CodebookPayload())
}

func TestHeader_ParseInvalidSize(t *testing.T) {
	var head Header
	require.ErrorIs(t, head.Parse(make([]byte, HeaderSize-1)), errs.ErrInvalidHeaderSize)
	require.ErrorIs(t, head.Parse(make([]byte, HeaderSize+1)), errs.ErrInvalidHeaderSize)
}

func TestHeader_ParseInvalidMagic(t *testing.T) {
	data := NewHeader(0, 0, 0).Bytes()
	data[0] ^= 0xff

	var head Header
	require.ErrorIs(t, head.Parse(data), errs.ErrInvalidMagicNumber)
}

func TestHeader_ParseUnknownFlags(t *testing.T) {
	src := NewHeader(0, 0, 0)
	src.SetCompressed()
	src.Flags |= 0x80 // a bit this version does not define
	data := src.Bytes()

	var head Header
	require.ErrorIs(t, head.Parse(data), errs.ErrInvalidHeaderFlags)
}

func TestHeader_CodecFlagConsistency(t *testing.T) {
	tests := []struct {
		name       string
		codec      format.CompressionType
		compressed bool
		valid      bool
	}{
		{"none uncompressed", format.CompressionNone, false, true},
		{"none compressed", format.CompressionNone, true, false},
		{"codebook compressed", format.CompressionCodebook, true, true},
		{"codebook uncompressed", format.CompressionCodebook, false, false},
		{"zstd compressed", format.CompressionZstd, true, true},
		{"s2 compressed", format.CompressionS2, true, true},
		{"lz4 compressed", format.CompressionLZ4, true, true},
		{"unknown codec", format.CompressionType(0x7f), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head := NewHeader(1, 1, 1)
			head.ValueCodec = tt.codec
			if tt.compressed {
				head.SetCompressed()
			}
			require.Equal(t, tt.valid, head.IsValid())

			var parsed Header
			err := parsed.Parse(head.Bytes())
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
			}
		})
	}
}

func TestHeader_SetCodebookPayloadTooLarge(t *testing.T) {
	head := NewHeader(0, 0, 0)
	require.ErrorIs(t, head.SetCodebookPayload(make([]byte, CodebookMaxSize+1)), errs.ErrInvalidCodebook)
}

func TestHeader_CodebookPayloadEmpty(t *testing.T) {
	head := NewHeader(0, 0, 0)
	require.Nil(t, head.CodebookPayload())
}

func TestHeaderSizeAlignment(t *testing.T) {
	// The hash section starts right after the header; keep it 8-byte aligned.
	require.Zero(t, HeaderSize%8)
	require.Equal(t, CodebookOffset+CodebookRegionSize, HeaderSize)
	require.GreaterOrEqual(t, CodebookRegionSize, CodebookMaxSize+4, "region holds a u32 length plus the largest table")
}
