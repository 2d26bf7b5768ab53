package parser

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// FixUpEntry verifies the update sequence protection of a raw MFT
// entry and returns a new buffer with the original sector tails
// restored. The raw buffer is never modified.
//
// The update sequence array is an array of 2 byte values. The first
// value is the sentinel which must be found in the last 2 bytes of
// every sector, and the rest are the original values of those bytes.
func FixUpEntry(raw []byte, sector_size int) ([]byte, error) {
	STATS.IncFixUps()

	if len(raw) < MFT_ENTRY_HEADER_SIZE {
		return nil, errors.Wrapf(TruncatedImageError,
			"MFT entry of %d bytes is too short", len(raw))
	}

	if sector_size <= 0 {
		return nil, errors.Wrapf(UnsupportedGeometryError,
			"invalid sector size %d", sector_size)
	}

	if string(raw[0:4]) != MFT_ENTRY_MAGIC {
		return nil, errors.Wrapf(IntegrityViolationError,
			"bad MFT entry signature %q", raw[0:4])
	}

	fixup_offset := int(binary.LittleEndian.Uint16(raw[4:6]))
	fixup_count := int(binary.LittleEndian.Uint16(raw[6:8]))

	// One word per sector after the sentinel. Every sector must be
	// covered.
	sectors := len(raw) / sector_size
	if fixup_count != sectors+1 {
		return nil, errors.Wrapf(IntegrityViolationError,
			"fixup array has %d words but entry has %d sectors",
			fixup_count, sectors)
	}

	fixup_table_end := fixup_offset + 2*fixup_count
	if fixup_table_end > len(raw) {
		return nil, errors.Wrapf(IntegrityViolationError,
			"fixup array (%d words at %#x) exceeds entry size %d",
			fixup_count, fixup_offset, len(raw))
	}

	buffer := make([]byte, len(raw))
	copy(buffer, raw)

	fixup_table := raw[fixup_offset:fixup_table_end]
	fixup_magic := fixup_table[0:2]

	sector_idx := 0
	for idx := 2; idx < len(fixup_table); idx += 2 {
		tail := (sector_idx+1)*sector_size - 2
		if buffer[tail] != fixup_magic[0] ||
			buffer[tail+1] != fixup_magic[1] {
			STATS.IncFixUpFailures()
			return nil, errors.Wrapf(IntegrityViolationError,
				"fixup sentinel mismatch in sector %d: %#02x%02x != %#02x%02x",
				sector_idx, buffer[tail+1], buffer[tail],
				fixup_magic[1], fixup_magic[0])
		}

		// Apply the fixup
		buffer[tail] = fixup_table[idx]
		buffer[tail+1] = fixup_table[idx+1]
		sector_idx += 1
	}

	return buffer, nil
}
