package parser

import (
	"io"
	"os"
	"sync"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
)

// A Session holds one open image together with the geometry and MFT
// index computed when it was opened. Both are read only afterwards
// and are reused by every entry lookup.
type Session struct {
	mu sync.Mutex

	// The reader over the volume (after any image offset).
	DiskReader io.ReaderAt

	Geometry *VolumeGeometry
	Index    *MFTIndex

	options Options

	// Released on Close()
	closer io.Closer

	entry_cache *MFTEntryCache
}

// OpenImage opens the image file and bootstraps a session over it. The
// file is closed again if the session can not be established.
func OpenImage(path string, options Options) (*Session, error) {
	fd, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ImageNotFoundError, "%v", err)
		}
		return nil, errors.Wrapf(ImageUnreadableError, "%v", err)
	}

	session, err := GetSession(fd, options)
	if err != nil {
		fd.Close()
		return nil, err
	}

	session.closer = fd
	return session, nil
}

// GetSession bootstraps a session over an already open image. The
// caller keeps ownership of the reader.
func GetSession(image io.ReaderAt, options Options) (*Session, error) {
	STATS.IncSessions()

	var reader io.ReaderAt = image
	if options.ImageOffset != 0 {
		reader = &OffsetReader{Offset: options.ImageOffset, Reader: reader}
	}

	if options.PageSize > 0 {
		paged_reader, err := NewPagedReader(
			reader, options.PageSize, options.PageCacheSize)
		if err != nil {
			return nil, errors.Wrapf(ImageUnreadableError, "%v", err)
		}
		reader = paged_reader
	}

	geometry, err := ReadVolumeGeometry(reader, 0, options)
	if err != nil {
		return nil, err
	}

	index, err := BootstrapMFT(geometry, reader)
	if err != nil {
		return nil, err
	}

	Printf("MFT index has %d entries\n", index.Len())

	return &Session{
		DiskReader:  reader,
		Geometry:    geometry,
		Index:       index,
		options:     options,
		entry_cache: NewMFTEntryCache(options.EntryCacheSize),
	}, nil
}

// ResolveEntry locates, fixes up and decodes the MFT entry. A failure
// only affects this entry - the session remains usable.
func (self *Session) ResolveEntry(id uint64) (*DecodedEntry, error) {
	self.mu.Lock()
	defer self.mu.Unlock()

	// Check the cache first
	cached, pres := self.entry_cache.Get(id)
	if pres {
		return cached, nil
	}

	if self.Index == nil {
		return nil, errors.WithStack(SessionClosedError)
	}

	offset, err := self.Index.Offset(id)
	if err != nil {
		return nil, err
	}

	mft_entry, err := GetFixedUpMFTEntry(self.Geometry, self.DiskReader, offset)
	if err != nil {
		return nil, errors.Wrapf(err, "MFT entry %d", id)
	}

	result, err := mft_entry.Decode(self.Geometry, id)
	if err != nil {
		return nil, err
	}

	self.entry_cache.Add(id, result)

	return result, nil
}

func (self *Session) Stats() *ordereddict.Dict {
	return ordereddict.NewDict().
		Set("EntryCache", self.entry_cache.Stats()).
		Set("Parser", STATS.Dict())
}

// Close releases the image. It is safe to call more than once.
func (self *Session) Close() error {
	self.mu.Lock()
	defer self.mu.Unlock()

	if debug {
		Printf("%v\n", STATS.DebugString())
	}

	self.entry_cache.Purge()

	// Try to flush our reader if possible
	flusher, ok := self.DiskReader.(Flusher)
	if ok {
		flusher.Flush()
	}

	self.Index = nil

	if self.closer != nil {
		err := self.closer.Close()
		self.closer = nil
		return err
	}
	return nil
}
