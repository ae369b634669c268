package builder

import (
	"github.com/discoproject/discodb/endian"
	"github.com/discoproject/discodb/section"
)

// bufferGranularity is the slack added on every growth of the output
// buffer. Large enough to avoid quadratic reallocation on big inputs; the
// buffer is shrunk to its exact final size before it is returned.
const bufferGranularity = 64 * 1024 * 1024

// packedBuffer is the growing output image during finalize.
//
// It follows a strict new-section / toc-mark / write discipline: newSection
// reserves a zeroed table of contents, tocMark stamps the current write
// offset into the next free TOC slot, and write appends record payloads.
// The header region is reserved by newPackedBuffer and patched in by the
// finalizer just before shrink.
type packedBuffer struct {
	buf     []byte
	offs    uint64 // write cursor
	tocOffs uint64 // next free slot of the active TOC
	engine  endian.EndianEngine
}

func newPackedBuffer() *packedBuffer {
	p := &packedBuffer{
		offs:   section.HeaderSize,
		engine: endian.GetLittleEndianEngine(),
	}
	p.grow(0)

	return p
}

// grow ensures n more bytes fit at the write cursor. Fresh regions are
// always zero: allocations come zeroed from the runtime and the cursor only
// moves forward.
func (p *packedBuffer) grow(n uint64) {
	need := p.offs + n
	if need <= uint64(len(p.buf)) {
		return
	}

	newBuf := make([]byte, need+bufferGranularity)
	copy(newBuf, p.buf)
	p.buf = newBuf
}

// newSection reserves a zeroed TOC of numEntries u64 offsets at the write
// cursor and makes it the active TOC.
func (p *packedBuffer) newSection(numEntries uint64) {
	size := numEntries * section.TocEntrySize
	p.grow(size)
	p.tocOffs = p.offs
	p.offs += size
}

// tocMark records the current write offset as the next entry of the active
// TOC.
func (p *packedBuffer) tocMark() {
	p.engine.PutUint64(p.buf[p.tocOffs:], p.offs)
	p.tocOffs += section.TocEntrySize
}

// write appends src at the write cursor.
func (p *packedBuffer) write(src []byte) {
	p.grow(uint64(len(src)))
	copy(p.buf[p.offs:], src)
	p.offs += uint64(len(src))
}

// writeUint32 appends a little-endian u32 at the write cursor.
func (p *packedBuffer) writeUint32(v uint32) {
	p.grow(4)
	p.engine.PutUint32(p.buf[p.offs:], v)
	p.offs += 4
}

// shrink returns the image truncated to exactly the bytes written. The
// oversized working buffer is released.
func (p *packedBuffer) shrink() []byte {
	out := make([]byte, p.offs)
	copy(out, p.buf)
	p.buf = nil

	return out
}
