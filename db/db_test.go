package db

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/discoproject/discodb/builder"
	"github.com/discoproject/discodb/errs"
	"github.com/discoproject/discodb/format"
	"github.com/discoproject/discodb/mph"
	"github.com/discoproject/discodb/section"
)

// asMultiset normalizes a value list for order-independent comparison.
func asMultiset(values [][]byte) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	slices.Sort(out)

	return out
}

func buildImage(t *testing.T, pairs map[string][]string, opts ...builder.Option) []byte {
	t.Helper()

	b := builder.New()
	for key, values := range pairs {
		for _, value := range values {
			require.NoError(t, b.Add([]byte(key), []byte(value)))
		}
	}

	image, err := b.Finalize(opts...)
	require.NoError(t, err)

	return image
}

func requireStoreMatches(t *testing.T, d *DB, pairs map[string][]string) {
	t.Helper()

	for key, values := range pairs {
		got, err := d.Get([]byte(key))
		require.NoError(t, err)

		want := make([][]byte, len(values))
		for i, v := range values {
			want[i] = []byte(v)
		}
		require.Equal(t, asMultiset(want), asMultiset(got), "key %q", key)
	}
}

func TestDB_RoundTripSmallStore(t *testing.T) {
	pairs := map[string][]string{
		"pet":      {"cat", "dog", "cat"},
		"fruit":    {"apple"},
		"empty":    {""},
		"\x00\x01": {"binary\x00value", "\xff\xfe"},
	}

	d, err := New(buildImage(t, pairs))
	require.NoError(t, err)

	require.Equal(t, len(pairs), d.NumKeys())
	require.Equal(t, 7, d.NumValues())
	requireStoreMatches(t, d, pairs)

	missing, err := d.Get([]byte("absent"))
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDB_RoundTripHashedStore(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pairs := make(map[string][]string)
	for i := 0; i < section.HashMinKeys+100; i++ {
		key := fmt.Sprintf("key-%05d", i)
		values := make([]string, 1+rng.Intn(4))
		for j := range values {
			values[j] = fmt.Sprintf("value-%03d", rng.Intn(40))
		}
		pairs[key] = values
	}

	image := buildImage(t, pairs)
	d, err := New(image)
	require.NoError(t, err)

	require.True(t, d.Header().HasHash())
	requireStoreMatches(t, d, pairs)

	missing, err := d.Get([]byte("not-a-member"))
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDB_RecordsPlacedByHashSlot(t *testing.T) {
	pairs := make(map[string][]string)
	for i := 0; i < section.HashMinKeys*4; i++ {
		pairs[fmt.Sprintf("key-%04d", i)] = []string{"v"}
	}

	image := buildImage(t, pairs)
	d, err := New(image)
	require.NoError(t, err)

	head := d.Header()
	require.True(t, head.HasHash())
	lookup, err := mph.Parse(image[head.HashOffset:head.KeyToValuesOffset])
	require.NoError(t, err)

	slot := uint32(0)
	seen := make(map[uint32]bool)
	for key := range d.Keys() {
		require.Equal(t, slot, lookup.Lookup(key), "record %d out of hash order", slot)
		require.False(t, seen[slot])
		seen[slot] = true
		slot++
	}
	require.Equal(t, uint32(len(pairs)), slot)
}

func TestDB_ValueCodecs(t *testing.T) {
	pairs := map[string][]string{
		"logs":   {"level=info msg=started", "level=info msg=stopped", "level=info msg=started"},
		"binary": {"\x00\x01\x02\x03\x00\x01\x02\x03", ""},
		"large":  {string(make([]byte, 8192))},
	}

	tests := []struct {
		name string
		opts []builder.Option
	}{
		{"codebook", nil},
		{"raw", []builder.Option{builder.WithoutCompression()}},
		{"zstd", []builder.Option{builder.WithValueCompression(format.CompressionZstd)}},
		{"s2", []builder.Option{builder.WithValueCompression(format.CompressionS2)}},
		{"lz4", []builder.Option{builder.WithValueCompression(format.CompressionLZ4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(buildImage(t, pairs, tt.opts...))
			require.NoError(t, err)
			requireStoreMatches(t, d, pairs)
		})
	}
}

func TestDB_EmptyStore(t *testing.T) {
	d, err := New(buildImage(t, nil))
	require.NoError(t, err)

	require.Zero(t, d.NumKeys())
	require.Zero(t, d.NumUniqueValues())
	require.Zero(t, d.NumValues())

	values, err := d.Get([]byte("anything"))
	require.NoError(t, err)
	require.Nil(t, values)

	for range d.Keys() {
		t.Fatal("empty store must yield no keys")
	}
}

func TestDB_DuplicatesPreserved(t *testing.T) {
	pairs := map[string][]string{"k": {"v", "v", "v"}}

	d, err := New(buildImage(t, pairs))
	require.NoError(t, err)

	require.True(t, d.Header().HasMultiset())
	values, err := d.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []string{"v", "v", "v"}, asMultiset(values))
}

func TestDB_Has(t *testing.T) {
	d, err := New(buildImage(t, map[string][]string{"k": {"v"}}))
	require.NoError(t, err)

	ok, err := d.Has([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = d.Has([]byte("other"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDB_KeysYieldsEveryKey(t *testing.T) {
	pairs := map[string][]string{"a": {"1"}, "b": {"2"}, "c": {"3"}}

	d, err := New(buildImage(t, pairs))
	require.NoError(t, err)

	var got []string
	for key := range d.Keys() {
		got = append(got, string(key))
	}
	slices.Sort(got)
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestNew_RejectsCorruptImages(t *testing.T) {
	image := buildImage(t, map[string][]string{"k": {"v"}})

	t.Run("too small", func(t *testing.T) {
		_, err := New(image[:section.HeaderSize-1])
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("bad magic", func(t *testing.T) {
		corrupt := append([]byte(nil), image...)
		corrupt[0] ^= 0xff
		_, err := New(corrupt)
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := New(image[:len(image)-1])
		require.ErrorIs(t, err, errs.ErrInvalidImageSize)
	})
}

func TestDB_RandomizedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 10; trial++ {
		pairs := make(map[string][]string)
		numKeys := 1 + rng.Intn(200)
		for i := 0; i < numKeys; i++ {
			key := fmt.Sprintf("key-%d-%d", trial, i)
			values := make([]string, 1+rng.Intn(5))
			for j := range values {
				values[j] = fmt.Sprintf("payload-%d", rng.Intn(30))
			}
			pairs[key] = values
		}

		d, err := New(buildImage(t, pairs))
		require.NoError(t, err)
		requireStoreMatches(t, d, pairs)
	}
}
