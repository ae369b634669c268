// Package codebook implements the learned prefix-code compression of value
// payloads.
//
// At finalize time a single symbol table is trained over the entire corpus
// of unique values, then every value is encoded independently against it.
// The serialized table lives in the fixed codebook region of the image
// header, so a reader can restore it without touching the data sections.
//
// The code is an FSST symbol table: up to 255 learned symbols of one to
// eight bytes, with escape codes for bytes outside the table. Training is a
// single sampling pass over the corpus; encoding and decoding are linear in
// the payload length. Decompress(Compress(v)) == v byte-exactly for any v,
// including empty and non-UTF-8 payloads.
package codebook

import (
	"fmt"

	"github.com/axiomhq/fsst"

	"github.com/discoproject/discodb/errs"
	"github.com/discoproject/discodb/section"
)

// Codebook is a trained symbol table shared by all values of one image.
type Codebook struct {
	table *fsst.Table
}

// Learn trains a codebook over the unique value corpus. The corpus may be
// empty; the resulting table then consists of escape codes only.
func Learn(values [][]byte) *Codebook {
	return &Codebook{table: fsst.Train(values)}
}

// Compress encodes one value against the codebook.
func (c *Codebook) Compress(value []byte) []byte {
	return c.table.Encode(value)
}

// Decompress restores one value encoded by Compress.
func (c *Codebook) Decompress(payload []byte) []byte {
	return c.table.DecodeAll(payload)
}

// Serialize returns the marshaled symbol table for the header codebook
// region. The table of any trained codebook fits the fixed region; a larger
// result indicates a contract violation and surfaces as
// errs.ErrCompressionFailed.
func (c *Codebook) Serialize() ([]byte, error) {
	payload, err := c.table.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCompressionFailed, err)
	}
	if len(payload) > section.CodebookMaxSize {
		return nil, fmt.Errorf("%w: table size %d exceeds region", errs.ErrCompressionFailed, len(payload))
	}

	return payload, nil
}

// Parse restores a codebook from the header region payload.
func Parse(payload []byte) (*Codebook, error) {
	table := new(fsst.Table)
	if err := table.UnmarshalBinary(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidCodebook, err)
	}

	return &Codebook{table: table}, nil
}
