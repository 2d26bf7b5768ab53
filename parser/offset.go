package parser

import "io"

// Presents the volume at Offset inside a larger image as starting at
// 0.
type OffsetReader struct {
	Offset int64
	Reader io.ReaderAt
}

func (self *OffsetReader) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, io.EOF
	}
	return self.Reader.ReadAt(buf, offset+self.Offset)
}
