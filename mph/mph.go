// Package mph builds the minimal perfect hash section over the unique keys
// of an image and evaluates it straight from the packed byte form.
//
// The hash function itself is a CHD (compress, hash, displace) table built
// by github.com/opencoff/go-chd over the xxHash64 of each key. CHD yields a
// perfect hash onto a power-of-two slot table somewhat larger than the key
// count, so the packed image carries one rank word per slot that compacts
// the occupied slots down to a minimal, bijective [0, numKeys) range.
//
// The packed image is position-independent and little-endian:
//
//	u32 numKeys
//	u32 numSlots       CHD table size (power of two)
//	u32 chdSize        length of the marshaled CHD table
//	chdSize bytes      CHD table (its own header + seed array)
//	u32 rank[numSlots] slot -> minimal index
//
// Parse slices the image without copying or pointer fixups, so a reader can
// evaluate the function on a memory-mapped file. The CHD seed array is read
// in place; callers must keep the section start 8-byte aligned, which the
// fixed header size guarantees.
package mph

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/opencoff/go-chd"

	"github.com/discoproject/discodb/endian"
	"github.com/discoproject/discodb/errs"
	"github.com/discoproject/discodb/internal/hash"
)

const (
	// loadFactor controls the CHD table size relative to the key count.
	// Lower values build faster but cost more rank words per key.
	loadFactor = 0.85

	// headerSize is the packed image prefix before the CHD table.
	headerSize = 12
)

// Build computes a minimal perfect hash over keys and returns its packed
// image. The keys must be distinct. Construction is randomized through the
// CHD salt; failure to find a perfect assignment, including a 64-bit hash
// collision between distinct keys, returns errs.ErrMphBuildFailed.
func Build(keys [][]byte) ([]byte, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no keys", errs.ErrMphBuildFailed)
	}

	builder, err := chd.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMphBuildFailed, err)
	}

	hashes := make([]uint64, len(keys))
	for i, key := range keys {
		hashes[i] = hash.Sum64(key)
		if err := builder.Add(hashes[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMphBuildFailed, err)
		}
	}

	frozen, err := builder.Freeze(loadFactor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMphBuildFailed, err)
	}

	var chdBuf bytes.Buffer
	if _, err := frozen.MarshalBinary(&chdBuf); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMphBuildFailed, err)
	}

	// Rank the occupied slots in ascending order, compacting the perfect
	// hash range [0, numSlots) to the minimal [0, numKeys).
	slots := make([]uint64, len(keys))
	for i, h := range hashes {
		slots[i] = frozen.Find(h)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	numSlots := frozen.Len()
	rank := make([]uint32, numSlots)
	for i, slot := range slots {
		rank[slot] = uint32(i)
	}

	engine := endian.GetLittleEndianEngine()
	image := make([]byte, 0, headerSize+chdBuf.Len()+4*numSlots)
	image = engine.AppendUint32(image, uint32(len(keys)))
	image = engine.AppendUint32(image, uint32(numSlots))
	image = engine.AppendUint32(image, uint32(chdBuf.Len()))
	image = append(image, chdBuf.Bytes()...)
	for _, r := range rank {
		image = engine.AppendUint32(image, r)
	}

	return image, nil
}

// Hash is a parsed view of a packed image. It aliases the image bytes and
// performs no further allocation per lookup.
type Hash struct {
	numKeys uint32
	chd     *chd.Chd
	rank    []byte
	engine  endian.EndianEngine
}

// Parse validates a packed image and returns a view for lookups. The image
// slice is retained.
func Parse(image []byte) (*Hash, error) {
	engine := endian.GetLittleEndianEngine()

	if len(image) < headerSize {
		return nil, errs.ErrCorruptSection
	}
	numKeys := engine.Uint32(image[0:4])
	numSlots := engine.Uint32(image[4:8])
	chdSize := engine.Uint32(image[8:12])

	total := uint64(headerSize) + uint64(chdSize) + 4*uint64(numSlots)
	if numKeys == 0 || numKeys > numSlots || uint64(len(image)) < total {
		return nil, errs.ErrCorruptSection
	}

	frozen := new(chd.Chd)
	if err := frozen.UnmarshalBinaryMmap(image[headerSize : headerSize+chdSize]); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCorruptSection, err)
	}

	return &Hash{
		numKeys: numKeys,
		chd:     frozen,
		rank:    image[headerSize+chdSize:],
		engine:  engine,
	}, nil
}

// NumKeys returns the key count recorded in the image.
func (h *Hash) NumKeys() uint32 {
	return h.numKeys
}

// Lookup evaluates the hash on key. For keys that were part of the build it
// returns their unique slot in [0, numKeys); for any other key the result
// is an arbitrary slot in the same range, so callers must confirm
// membership against the stored key.
func (h *Hash) Lookup(key []byte) uint32 {
	slot := h.chd.Find(hash.Sum64(key))

	return h.engine.Uint32(h.rank[4*slot:])
}
