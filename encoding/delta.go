// Package encoding implements the delta codec for per-key value-id
// sequences.
//
// A key record stores its value ids as a bit-packed sequence of Elias gamma
// codes: the ids are sorted ascending, the first id is emitted as-is and
// every later id as the gap to its predecessor. Zero gaps are legal and
// preserved; they represent duplicate ids, which make the store a multiset.
// Because gamma codes cannot express zero, every emitted number is shifted
// up by one on the wire.
//
// The stream is self-delimiting: each code starts with a unary run of zero
// bits announcing its width and contains exactly one leading one bit, so a
// decoder that runs out of one bits has hit the zero padding of the final
// byte and stops. Writer and reader pack bits least-significant-first and
// must agree; both live in this package.
package encoding

import (
	"math/bits"
	"slices"

	"github.com/discoproject/discodb/internal/pool"
)

// EncodeValueIDs delta-encodes ids into buf and reports whether the sorted
// sequence contained a duplicate. The input slice is not modified; ids may
// be in any order and may repeat.
func EncodeValueIDs(buf *pool.ByteBuffer, ids []uint32) (duplicates bool) {
	if len(ids) == 0 {
		return false
	}

	sorted := make([]uint32, len(ids))
	copy(sorted, ids)
	slices.Sort(sorted)

	w := newBitWriter(buf)
	prev := uint32(0)
	for i, id := range sorted {
		gap := uint64(id - prev)
		if i > 0 && gap == 0 {
			duplicates = true
		}
		writeGamma(w, gap+1)
		prev = id
	}
	w.flush()

	return duplicates
}

// DecodeValueIDs decodes a blob produced by EncodeValueIDs and appends the
// ids to dst in ascending order. It consumes codes until only zero padding
// remains.
func DecodeValueIDs(dst []uint32, data []byte) []uint32 {
	r := newBitReader(data)
	prev := uint64(0)
	first := true
	for {
		x, ok := readGamma(r)
		if !ok {
			break
		}
		gap := x - 1
		if first {
			prev = gap
			first = false
		} else {
			prev += gap
		}
		dst = append(dst, uint32(prev))
	}

	return dst
}

// writeGamma emits the Elias gamma code of x, which must be >= 1:
// a unary run of floor(log2 x) zero bits followed by the binary digits of x.
func writeGamma(w *bitWriter, x uint64) {
	n := uint(bits.Len64(x)) // total code length is 2n-1 bits
	for i := uint(1); i < n; i++ {
		w.writeBit(0)
	}
	w.writeBits(x, n)
}

// readGamma reads one gamma code. It returns ok=false when the remaining
// bits are exhausted or all zero, which marks the end of the stream.
func readGamma(r *bitReader) (x uint64, ok bool) {
	var zeros uint
	for {
		if r.remaining() == 0 {
			return 0, false
		}
		if r.readBit() == 1 {
			break
		}
		zeros++
	}
	if r.remaining() < zeros {
		return 0, false
	}

	return 1<<zeros | r.readBits(zeros), true
}
