package parser

import (
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// This reader is needed for reading raw devices, which may only be
// read using sector alignment in whole sector numbers. It implements
// page aligned reading and keeps pages in an LRU cache since the
// parser reads the same entries and boot sector fields repeatedly.
type PagedReader struct {
	mu sync.Mutex

	reader   io.ReaderAt
	pagesize int64
	lru      *lru.Cache[int64, []byte]

	Hits int64
	Miss int64
}

// ReadAt reads a buffer from an offset in the backing file.
//
// Unlike the backing reader, a short page at the end of the file is
// never padded: reads that cross the end of the file return the
// available bytes and io.EOF so fixed size layouts can detect
// truncation.
func (self *PagedReader) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, io.EOF
	}

	self.mu.Lock()
	defer self.mu.Unlock()

	buf_idx := 0
	for buf_idx < len(buf) {
		page := offset - offset%self.pagesize
		page_buf, err := self.getPage(page)
		if err != nil {
			return buf_idx, err
		}

		// How much is left in this page to read?
		page_offset := int(offset - page)
		if page_offset >= len(page_buf) {
			return buf_idx, io.EOF
		}

		n := copy(buf[buf_idx:], page_buf[page_offset:])
		buf_idx += n
		offset += int64(n)

		// A short page means the end of the file.
		if int64(len(page_buf)) < self.pagesize && buf_idx < len(buf) {
			return buf_idx, io.EOF
		}
	}

	return buf_idx, nil
}

// Must be called with the lock held.
func (self *PagedReader) getPage(page int64) ([]byte, error) {
	cached, pres := self.lru.Get(page)
	if pres {
		self.Hits += 1
		return cached, nil
	}

	self.Miss += 1
	DebugPrint("Cache miss for %x (%x) (%d)\n", page, self.pagesize,
		self.lru.Len())

	page_buf := make([]byte, self.pagesize)
	n, err := self.reader.ReadAt(page_buf, page)

	// A real read error
	if err != nil && err != io.EOF {
		return nil, err
	}
	page_buf = page_buf[:n]

	// Only bother to cache pages with something in them.
	if n > 0 {
		self.lru.Add(page, page_buf)
	}

	return page_buf, nil
}

func (self *PagedReader) Flush() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.lru.Purge()
}

func NewPagedReader(reader io.ReaderAt, pagesize int64, cache_size int) (*PagedReader, error) {
	DebugPrint("Creating cache of size %v\n", cache_size)

	cache, err := lru.New[int64, []byte](cache_size)
	if err != nil {
		return nil, err
	}

	return &PagedReader{
		reader:   reader,
		pagesize: pagesize,
		lru:      cache,
	}, nil
}

// Invalidate the disk cache
type Flusher interface {
	Flush()
}
