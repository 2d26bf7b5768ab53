package parser

type Options struct {
	// Byte offset of the NTFS volume inside the image.
	ImageOffset int64

	// Reads go through a page cache of PageCacheSize pages. A
	// PageSize of 0 reads the image directly.
	PageSize      int64
	PageCacheSize int

	// Number of decoded entries kept per session (0 disables).
	EntryCacheSize int

	// Accept a negative MFT entry size byte in the boot sector as
	// a power of two exponent (e.g. -10 means 1024 bytes).
	AllowExponentEntrySize bool
}

func GetDefaultOptions() Options {
	return Options{
		PageSize:       0x1000,
		PageCacheSize:  1000,
		EntryCacheSize: 100,
	}
}
