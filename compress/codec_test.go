package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/discoproject/discodb/format"
)

func testPayloads() map[string][]byte {
	rng := rand.New(rand.NewSource(7))
	random := make([]byte, 4096)
	rng.Read(random)

	return map[string][]byte{
		"empty":      {},
		"single":     {0x42},
		"text":       []byte("status=ok region=eu-west-1 status=ok region=eu-west-2"),
		"repetitive": bytes.Repeat([]byte("abcd1234"), 512),
		"random":     random,
	}
}

func TestCodecs_RoundTrip(t *testing.T) {
	codecs := map[string]Codec{
		"noop": NewNoOpCompressor(),
		"zstd": NewZstdCompressor(),
		"s2":   NewS2Compressor(),
		"lz4":  NewLZ4Compressor(),
	}

	for codecName, codec := range codecs {
		for payloadName, payload := range testPayloads() {
			t.Run(codecName+"/"+payloadName, func(t *testing.T) {
				compressed, err := codec.Compress(payload)
				require.NoError(t, err)

				decompressed, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.True(t, bytes.Equal(payload, decompressed))
			})
		}
	}
}

func TestCodecs_CompressRepetitiveData(t *testing.T) {
	payload := bytes.Repeat([]byte("abcd1234"), 512)

	for name, codec := range map[string]Codec{
		"zstd": NewZstdCompressor(),
		"s2":   NewS2Compressor(),
		"lz4":  NewLZ4Compressor(),
	} {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(payload))
		})
	}
}

func TestCreateCodec(t *testing.T) {
	for _, compressionType := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := CreateCodec(compressionType)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}
}

func TestCreateCodec_Invalid(t *testing.T) {
	// The codebook is not a general-purpose codec; it is owned by the
	// codebook package.
	_, err := CreateCodec(format.CompressionCodebook)
	require.Error(t, err)

	_, err = CreateCodec(format.CompressionType(0x7f))
	require.Error(t, err)
}
