// Package builder implements the construction side of a discodb image: an
// in-memory multimap of byte-string keys to byte-string value multisets,
// consumed by Finalize into the packed binary form described by the section
// package.
//
// A Builder is single-use and single-threaded: Add calls must be serialized
// by the caller, and once Finalize has run (successfully or not) the builder
// rejects further use. The order of Add calls fixes value-id assignment;
// the layout of key records is fixed by the minimal perfect hash, or by key
// insertion order when the image is small enough to skip hashing.
package builder

import (
	"fmt"

	"github.com/discoproject/discodb/codebook"
	"github.com/discoproject/discodb/compress"
	"github.com/discoproject/discodb/encoding"
	"github.com/discoproject/discodb/errs"
	"github.com/discoproject/discodb/format"
	"github.com/discoproject/discodb/internal/options"
	"github.com/discoproject/discodb/internal/pool"
	"github.com/discoproject/discodb/mph"
	"github.com/discoproject/discodb/section"
)

type builderState uint8

const (
	statePopulating builderState = iota
	stateFinalized
	stateFailed
)

// keyRecord is one unique key with its accumulated value ids, duplicates
// retained in insertion order.
type keyRecord struct {
	key []byte
	ids []uint32
}

// Builder accumulates (key, value) pairs and finalizes them into an
// immutable image.
//
// Values are interned on insertion: the first occurrence of a distinct value
// is assigned the next id, starting from 1, and later occurrences reuse it.
// Keys and values are copied, so callers may reuse their slices.
type Builder struct {
	state builderState

	valueIDs map[string]uint32 // value -> id
	values   [][]byte          // id i lives at values[i-1]

	keyIndex map[string]int // key -> index into keys
	keys     []keyRecord    // unique keys in insertion order

	numValues uint32 // total pairs added, duplicates included
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{
		valueIDs: make(map[string]uint32),
		keyIndex: make(map[string]int),
	}
}

// Add records one (key, value) pair. Both may be empty or arbitrary binary.
// It returns errs.ErrBuilderFinalized once the builder has been consumed.
func (b *Builder) Add(key, value []byte) error {
	if b.state != statePopulating {
		return errs.ErrBuilderFinalized
	}

	vid, ok := b.valueIDs[string(value)]
	if !ok {
		b.values = append(b.values, append([]byte(nil), value...))
		vid = uint32(len(b.values))
		b.valueIDs[string(value)] = vid
	}

	ki, ok := b.keyIndex[string(key)]
	if !ok {
		ki = len(b.keys)
		b.keys = append(b.keys, keyRecord{key: append([]byte(nil), key...)})
		b.keyIndex[string(key)] = ki
	}
	b.keys[ki].ids = append(b.keys[ki].ids, vid)

	b.numValues++

	return nil
}

// NumKeys returns the number of unique keys added so far.
func (b *Builder) NumKeys() int {
	return len(b.keys)
}

// NumValues returns the total number of pairs added, duplicates included.
func (b *Builder) NumValues() int {
	return int(b.numValues)
}

// finalizeConfig is the option target of Finalize.
type finalizeConfig struct {
	valueCompression format.CompressionType
}

// Option configures a Finalize call.
type Option = options.Option[*finalizeConfig]

// WithoutCompression stores value payloads verbatim. The image carries no
// codebook and its compressed flag stays clear.
func WithoutCompression() Option {
	return options.NoError(func(c *finalizeConfig) {
		c.valueCompression = format.CompressionNone
	})
}

// WithValueCompression selects the codec of the id->value section. The
// default is format.CompressionCodebook, the learned prefix code;
// format.CompressionNone is equivalent to WithoutCompression.
func WithValueCompression(t format.CompressionType) Option {
	return options.New(func(c *finalizeConfig) error {
		switch t {
		case format.CompressionNone, format.CompressionCodebook,
			format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.valueCompression = t
			return nil
		default:
			return fmt.Errorf("invalid value compression: %s", t)
		}
	})
}

// Finalize packs the accumulated pairs into an immutable image and returns
// it. The builder is consumed: its internal structures are released as soon
// as each section no longer needs them, and every later Add or Finalize
// returns errs.ErrBuilderFinalized. On error the builder is left in the
// failed state and the partial image is discarded.
func (b *Builder) Finalize(opts ...Option) ([]byte, error) {
	if b.state != statePopulating {
		return nil, errs.ErrBuilderFinalized
	}
	b.state = stateFailed // promoted to finalized on success

	cfg := &finalizeConfig{valueCompression: format.CompressionCodebook}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	head := section.NewHeader(uint32(len(b.keys)), uint32(len(b.values)), b.numValues)
	head.ValueCodec = cfg.valueCompression
	pack := newPackedBuffer()

	head.HashOffset = pack.offs
	order, err := b.packHash(pack, head)
	if err != nil {
		return nil, err
	}

	head.KeyToValuesOffset = pack.offs
	b.packKeyToValues(pack, head, order)
	b.keys = nil
	b.keyIndex = nil

	head.IDToValueOffset = pack.offs
	if err := b.packIDToValue(pack, head, cfg.valueCompression); err != nil {
		return nil, err
	}
	b.values = nil

	head.Size = pack.offs
	head.WriteToSlice(pack.buf)

	image := pack.shrink()
	b.state = stateFinalized

	return image, nil
}

// packHash emits the minimal perfect hash section when the key count is
// above the threshold, and computes the key layout order: hash order when a
// hash is present, insertion order otherwise. The hash section has no TOC;
// its length is implied by the start of the next section.
func (b *Builder) packHash(pack *packedBuffer, head *section.Header) ([]int, error) {
	order := make([]int, len(b.keys))

	if len(b.keys) <= section.HashMinKeys {
		for i := range order {
			order[i] = i
		}

		return order, nil
	}

	keys := make([][]byte, len(b.keys))
	for i := range b.keys {
		keys[i] = b.keys[i].key
	}

	image, err := mph.Build(keys)
	if err != nil {
		return nil, err
	}
	lookup, err := mph.Parse(image)
	if err != nil {
		return nil, err
	}

	pack.newSection(0)
	pack.write(image)
	head.SetHash()

	for i := range b.keys {
		order[lookup.Lookup(b.keys[i].key)] = i
	}

	return order, nil
}

// packKeyToValues emits the key->values section: a TOC of numKeys+1
// offsets, then per key a u32 key length, the key bytes, and the
// delta-encoded value-id sequence.
func (b *Builder) packKeyToValues(pack *packedBuffer, head *section.Header, order []int) {
	pack.newSection(uint64(len(b.keys)) + 1)

	buf := pool.GetEncodeBuffer()
	defer pool.PutEncodeBuffer(buf)

	for _, ki := range order {
		rec := &b.keys[ki]

		buf.Reset()
		if encoding.EncodeValueIDs(buf, rec.ids) {
			head.SetMultiset()
		}

		pack.tocMark()
		pack.writeUint32(uint32(len(rec.key)))
		pack.write(rec.key)
		pack.write(buf.Bytes())
	}
	pack.tocMark()
}

// packIDToValue emits the id->value section: a TOC of numUniqueValues+1
// offsets, then per value id the raw or codec-compressed payload, followed
// by a 4-byte zero guard so a decoder never reads past the section on the
// last value. When the codec is the learned codebook, the trained table is
// serialized into the header region here. The value interning map is
// released before payloads are written to cap peak memory.
func (b *Builder) packIDToValue(pack *packedBuffer, head *section.Header, compression format.CompressionType) error {
	var (
		book  *codebook.Codebook
		codec compress.Codec
		err   error
	)

	switch compression {
	case format.CompressionNone:
		// verbatim payloads
	case format.CompressionCodebook:
		book = codebook.Learn(b.values)
		payload, serr := book.Serialize()
		if serr != nil {
			return serr
		}
		if err := head.SetCodebookPayload(payload); err != nil {
			return err
		}
		head.SetCompressed()
	default:
		codec, err = compress.CreateCodec(compression)
		if err != nil {
			return err
		}
		head.SetCompressed()
	}

	// Every id has been resolved and the codebook is trained; the interning
	// map is no longer needed.
	b.valueIDs = nil

	pack.newSection(uint64(len(b.values)) + 1)
	for _, value := range b.values {
		payload := value
		switch {
		case book != nil:
			payload = book.Compress(value)
		case codec != nil:
			payload, err = codec.Compress(value)
			if err != nil {
				return fmt.Errorf("%w: %v", errs.ErrCompressionFailed, err)
			}
		}

		pack.tocMark()
		pack.write(payload)
	}
	pack.tocMark()

	pack.writeUint32(0)

	return nil
}
