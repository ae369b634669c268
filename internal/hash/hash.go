// Package hash provides the 64-bit key hash shared by the builder and
// reader sides of the minimal perfect hash section.
package hash

import "github.com/cespare/xxhash/v2"

// Sum64 computes the xxHash64 of the given bytes.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
