package parser

import (
	"io"

	"github.com/pkg/errors"
)

// Failure kinds surfaced by the parser. Callers should test for them
// with errors.Is() since most are returned wrapped with the offending
// offset or entry number.
var (
	ImageNotFoundError         = errors.New("ImageNotFound")
	ImageUnreadableError       = errors.New("ImageUnreadable")
	TruncatedImageError        = errors.New("TruncatedImage")
	MalformedRunHeaderError    = errors.New("MalformedRunHeader")
	IntegrityViolationError    = errors.New("IntegrityViolation")
	UnexpectedResidentMftError = errors.New("UnexpectedResidentMft")
	EntryIndexOutOfRangeError  = errors.New("EntryIndexOutOfRange")
	UnsupportedGeometryError   = errors.New("UnsupportedGeometry")
	SessionClosedError         = errors.New("SessionClosed")

	ShortReadError = errors.New("ShortReadError")
)

// readFull reads exactly len(buf) bytes at offset. Anything less is a
// TruncatedImageError - the layouts we read are all fixed size.
func readFull(reader io.ReaderAt, buf []byte, offset int64) error {
	n, err := reader.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}

	if err != nil && err != io.EOF {
		return errors.Wrapf(ImageUnreadableError,
			"reading %d bytes at %#x: %v", len(buf), offset, err)
	}

	return errors.Wrapf(TruncatedImageError,
		"%v: wanted %d bytes at %#x, got %d", ShortReadError,
		len(buf), offset, n)
}
