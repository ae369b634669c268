package codebook

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/discoproject/discodb/errs"
	"github.com/discoproject/discodb/section"
)

func sampleCorpus() [][]byte {
	values := make([][]byte, 0, 64)
	for i := 0; i < 64; i++ {
		values = append(values, []byte(fmt.Sprintf(`{"id":%d,"status":"active","region":"eu-west-%d"}`, i, i%3)))
	}

	return values
}

func TestCodebook_CompressRoundTrip(t *testing.T) {
	corpus := sampleCorpus()
	book := Learn(corpus)

	for _, value := range corpus {
		payload := book.Compress(value)
		require.Equal(t, value, book.Decompress(payload))
	}
}

func TestCodebook_CompressesRepetitiveCorpus(t *testing.T) {
	corpus := sampleCorpus()
	book := Learn(corpus)

	var raw, packed int
	for _, value := range corpus {
		raw += len(value)
		packed += len(book.Compress(value))
	}
	require.Less(t, packed, raw)
}

func TestCodebook_SerializeParseRoundTrip(t *testing.T) {
	corpus := sampleCorpus()
	book := Learn(corpus)

	payload, err := book.Serialize()
	require.NoError(t, err)
	require.LessOrEqual(t, len(payload), section.CodebookMaxSize)

	restored, err := Parse(payload)
	require.NoError(t, err)

	// The restored table must decode payloads produced by the trainer.
	for _, value := range corpus {
		require.Equal(t, value, restored.Decompress(book.Compress(value)))
	}
}

func TestCodebook_EmptyCorpus(t *testing.T) {
	book := Learn(nil)

	payload, err := book.Serialize()
	require.NoError(t, err)

	restored, err := Parse(payload)
	require.NoError(t, err)

	// With no training data every byte goes through escape codes; the
	// round trip must still be exact.
	value := []byte("never seen during training \x00\xff")
	require.Equal(t, value, restored.Decompress(book.Compress(value)))
}

func TestCodebook_EmptyValue(t *testing.T) {
	book := Learn(sampleCorpus())

	payload := book.Compress(nil)
	require.Empty(t, book.Decompress(payload))
}

func TestCodebook_BinaryValues(t *testing.T) {
	corpus := [][]byte{
		{0x00, 0x01, 0x02, 0x00, 0x01, 0x02},
		{0xff, 0xfe, 0xfd},
		bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 32),
	}
	book := Learn(corpus)

	for _, value := range corpus {
		require.Equal(t, value, book.Decompress(book.Compress(value)))
	}
}

func TestParse_InvalidPayload(t *testing.T) {
	_, err := Parse([]byte{0x01, 0x02, 0x03})
	require.ErrorIs(t, err, errs.ErrInvalidCodebook)
}
