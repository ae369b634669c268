// Package db implements read-only access to a finalized discodb image.
//
// A DB wraps the raw image bytes without copying them, so it can sit
// directly on a memory-mapped file. Lookups confirm membership by comparing
// the stored key, because the minimal perfect hash maps non-member keys to
// arbitrary slots.
//
// The DB never mutates the image and returned value slices may alias it
// (they do when compression is disabled); callers must treat them as
// read-only.
package db

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/discoproject/discodb/codebook"
	"github.com/discoproject/discodb/compress"
	"github.com/discoproject/discodb/encoding"
	"github.com/discoproject/discodb/endian"
	"github.com/discoproject/discodb/errs"
	"github.com/discoproject/discodb/format"
	"github.com/discoproject/discodb/mph"
	"github.com/discoproject/discodb/section"
)

// DB is a read-only view over one discodb image.
type DB struct {
	data   []byte
	header section.Header
	engine endian.EndianEngine

	hash  *mph.Hash          // nil when the image has no hash section
	book  *codebook.Codebook // set for the codebook codec
	codec compress.Codec     // set for the general-purpose codecs
}

// New opens an image. The data slice is retained; it must stay valid and
// unmodified for the lifetime of the DB.
func New(data []byte) (*DB, error) {
	d := &DB{
		data:   data,
		engine: endian.GetLittleEndianEngine(),
	}

	if len(data) < section.HeaderSize {
		return nil, errs.ErrInvalidHeaderSize
	}
	if err := d.header.Parse(data[:section.HeaderSize]); err != nil {
		return nil, err
	}
	if d.header.Size != uint64(len(data)) {
		return nil, fmt.Errorf("%w: header %d, buffer %d", errs.ErrInvalidImageSize, d.header.Size, len(data))
	}

	h := &d.header
	if h.HashOffset < section.HeaderSize ||
		h.HashOffset > h.KeyToValuesOffset ||
		h.KeyToValuesOffset > h.IDToValueOffset ||
		h.IDToValueOffset > h.Size {
		return nil, errs.ErrInvalidImageSize
	}

	if h.HasHash() {
		parsed, err := mph.Parse(data[h.HashOffset:h.KeyToValuesOffset])
		if err != nil {
			return nil, err
		}
		if parsed.NumKeys() != h.NumKeys {
			return nil, errs.ErrCorruptSection
		}
		d.hash = parsed
	}

	switch h.ValueCodec {
	case format.CompressionNone:
		// verbatim payloads
	case format.CompressionCodebook:
		payload := h.CodebookPayload()
		if payload == nil {
			return nil, errs.ErrInvalidCodebook
		}
		book, err := codebook.Parse(payload)
		if err != nil {
			return nil, err
		}
		d.book = book
	default:
		codec, err := compress.CreateCodec(h.ValueCodec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidHeaderFlags, err)
		}
		d.codec = codec
	}

	return d, nil
}

// NumKeys returns the unique key count.
func (d *DB) NumKeys() int {
	return int(d.header.NumKeys)
}

// NumUniqueValues returns the unique value count.
func (d *DB) NumUniqueValues() int {
	return int(d.header.NumUniqueValues)
}

// NumValues returns the total number of (key, value) pairs stored,
// duplicates included.
func (d *DB) NumValues() int {
	return int(d.header.NumValues)
}

// Header returns a copy of the parsed image header.
func (d *DB) Header() section.Header {
	return d.header
}

// Get returns the multiset of values stored under key, or nil when the key
// is absent. Duplicates are preserved; the order within the multiset is
// unspecified.
func (d *DB) Get(key []byte) ([][]byte, error) {
	if d.header.NumKeys == 0 {
		return nil, nil
	}

	if d.hash != nil {
		slot := d.hash.Lookup(key)
		if slot >= d.header.NumKeys {
			return nil, nil
		}

		storedKey, blob, err := d.keyRecord(slot)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(storedKey, key) {
			return nil, nil
		}

		return d.resolveValues(blob)
	}

	// No hash section: scan the records linearly.
	for slot := uint32(0); slot < d.header.NumKeys; slot++ {
		storedKey, blob, err := d.keyRecord(slot)
		if err != nil {
			return nil, err
		}
		if bytes.Equal(storedKey, key) {
			return d.resolveValues(blob)
		}
	}

	return nil, nil
}

// Has reports whether key is present.
func (d *DB) Has(key []byte) (bool, error) {
	values, err := d.Get(key)

	return values != nil, err
}

// Keys iterates over the stored keys in record order. The yielded slices
// alias the image.
func (d *DB) Keys() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for slot := uint32(0); slot < d.header.NumKeys; slot++ {
			key, _, err := d.keyRecord(slot)
			if err != nil || !yield(key) {
				return
			}
		}
	}
}

// tocSpan returns the byte range [toc[i], toc[i+1]) of record i in the
// section starting at sectionOffs.
func (d *DB) tocSpan(sectionOffs uint64, i uint32) (start, end uint64, err error) {
	tocEntry := sectionOffs + uint64(i)*section.TocEntrySize
	if tocEntry+2*section.TocEntrySize > d.header.Size {
		return 0, 0, errs.ErrCorruptSection
	}

	start = d.engine.Uint64(d.data[tocEntry:])
	end = d.engine.Uint64(d.data[tocEntry+section.TocEntrySize:])
	if start > end || end > d.header.Size {
		return 0, 0, errs.ErrCorruptSection
	}

	return start, end, nil
}

// keyRecord returns the stored key and the delta-encoded value-id blob of
// the record at the given hash slot.
func (d *DB) keyRecord(slot uint32) (key, blob []byte, err error) {
	start, end, err := d.tocSpan(d.header.KeyToValuesOffset, slot)
	if err != nil {
		return nil, nil, err
	}

	record := d.data[start:end]
	if len(record) < 4 {
		return nil, nil, errs.ErrCorruptSection
	}
	keyLen := d.engine.Uint32(record)
	if uint64(4+keyLen) > uint64(len(record)) {
		return nil, nil, errs.ErrCorruptSection
	}

	return record[4 : 4+keyLen], record[4+keyLen:], nil
}

// resolveValues decodes a value-id blob and fetches each value payload.
func (d *DB) resolveValues(blob []byte) ([][]byte, error) {
	ids := encoding.DecodeValueIDs(nil, blob)

	values := make([][]byte, 0, len(ids))
	for _, id := range ids {
		value, err := d.value(id)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, nil
}

// value fetches and decodes the payload of one value id.
func (d *DB) value(id uint32) ([]byte, error) {
	if id == 0 || id > d.header.NumUniqueValues {
		return nil, fmt.Errorf("%w: %d of %d", errs.ErrInvalidValueID, id, d.header.NumUniqueValues)
	}

	start, end, err := d.tocSpan(d.header.IDToValueOffset, id-1)
	if err != nil {
		return nil, err
	}
	payload := d.data[start:end]

	switch {
	case d.book != nil:
		return d.book.Decompress(payload), nil
	case d.codec != nil:
		return d.codec.Decompress(payload)
	default:
		return payload, nil
	}
}
