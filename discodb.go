// Package discodb builds immutable, read-optimized on-disk associative
// stores mapping byte-string keys to multisets of byte-string values.
//
// A Builder accumulates (key, value) pairs in memory and finalizes them
// into a single self-contained little-endian image. The image is designed
// for memory-mapped read-only access: a fixed header records the offsets of
// three sections (an optional minimal perfect hash over the keys, the
// key->values records, and the unique value payloads). The key->values and
// value sections are addressed through absolute-offset tables and the hash
// section is a single blob, so a reader touches only the bytes a lookup
// needs.
//
// # Core features
//
//   - Value deduplication with small-integer id assignment
//   - Delta-encoded, bit-packed value-id sequences per key
//   - Learned prefix-code (symbol table) compression of value payloads,
//     with Zstd, S2 and LZ4 as alternatives and a raw mode
//   - Minimal perfect hashing over the keys for O(1) lookups on large
//     stores, linear scan on small ones
//   - Multiset semantics: duplicate (key, value) pairs are preserved
//
// # Basic usage
//
// Building an image:
//
//	bld := discodb.NewBuilder()
//	_ = bld.Add([]byte("pet"), []byte("cat"))
//	_ = bld.Add([]byte("pet"), []byte("dog"))
//	image, err := bld.Finalize()
//
// Reading it back:
//
//	store, err := discodb.NewDB(image)
//	values, err := store.Get([]byte("pet")) // ["cat" "dog"], order unspecified
//
// Finalize accepts options from the builder package, e.g.
// builder.WithoutCompression() to store value payloads verbatim, or
// builder.WithValueCompression(format.CompressionZstd) to swap the learned
// codebook for a general-purpose codec.
//
// Builders are single-use and not safe for concurrent mutation. The caller
// owns the returned image and is responsible for writing it durably.
package discodb

import (
	"github.com/discoproject/discodb/builder"
	"github.com/discoproject/discodb/db"
)

// NewBuilder creates an empty store builder.
func NewBuilder() *builder.Builder {
	return builder.New()
}

// NewDB opens a finalized image for reading. The data slice is retained and
// must stay valid and unmodified for the lifetime of the DB.
func NewDB(data []byte) (*db.DB, error) {
	return db.New(data)
}
