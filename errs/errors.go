// Package errs defines the sentinel errors shared across discodb packages.
//
// All errors surfaced by the public API wrap one of these sentinels, so
// callers can classify failures with errors.Is regardless of the call site
// that produced them.
package errs

import "errors"

var (
	// ErrBuilderFinalized is returned by Add and Finalize once a builder has
	// been consumed by Finalize (successfully or not). Builders are not
	// reusable.
	ErrBuilderFinalized = errors.New("builder already finalized")

	// ErrMphBuildFailed is returned when no collision-free hash assignment
	// was found within the seed budget. Fatal for the current Finalize.
	ErrMphBuildFailed = errors.New("minimal perfect hash construction failed")

	// ErrCompressionFailed indicates the value codec produced inconsistent
	// output. It is never expected and signals a contract violation.
	ErrCompressionFailed = errors.New("value compression failed")

	// ErrInvalidMagicNumber is returned when an image does not start with
	// the discodb magic number.
	ErrInvalidMagicNumber = errors.New("invalid magic number")

	// ErrInvalidHeaderSize is returned when a header buffer is not exactly
	// section.HeaderSize bytes.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidHeaderFlags is returned when header flags or the value codec
	// byte contain values this version does not understand.
	ErrInvalidHeaderFlags = errors.New("invalid header flags")

	// ErrInvalidImageSize is returned when the header size field disagrees
	// with the byte buffer, or a section offset points outside the image.
	ErrInvalidImageSize = errors.New("invalid image size")

	// ErrInvalidCodebook is returned when the header codebook region cannot
	// be parsed back into a symbol table.
	ErrInvalidCodebook = errors.New("invalid codebook")

	// ErrCorruptSection is returned when a section TOC is not monotone or
	// a record is truncated.
	ErrCorruptSection = errors.New("corrupt section")

	// ErrInvalidValueID is returned when a key record references a value id
	// outside [1, numUniqueValues].
	ErrInvalidValueID = errors.New("invalid value id")
)
