package parser

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Read an MFT entry of the volume's entry size from disk and fix it
// up. The returned entry is backed by a new buffer.
func GetFixedUpMFTEntry(
	geometry *VolumeGeometry,
	reader io.ReaderAt, offset int64) (*MFT_ENTRY, error) {
	raw := make([]byte, geometry.MftEntrySize)
	err := readFull(reader, raw, offset)
	if err != nil {
		return nil, errors.Wrapf(err, "MFT entry at %#x", offset)
	}

	buffer, err := FixUpEntry(raw, int(geometry.BytesPerSector))
	if err != nil {
		return nil, errors.Wrapf(err, "MFT entry at %#x", offset)
	}

	return NewMFT_ENTRY(buffer, offset), nil
}

// EnumerateAttributes walks the attribute records in order. The walk
// ends at the end marker, at a zero length record or at a record
// which does not fit in the entry - none of these are errors.
func (self *MFT_ENTRY) EnumerateAttributes() []*NTFS_ATTRIBUTE {
	STATS.IncAttributeWalks()

	offset := int64(self.Attribute_offset())
	mft_size := int64(len(self.b))
	result := make([]*NTFS_ATTRIBUTE, 0, 16)

	for offset+8 <= mft_size {
		attr_type := binary.LittleEndian.Uint32(self.b[offset : offset+4])
		if attr_type == ATTR_TYPE_END {
			break
		}

		// Reached the end of the MFT entry.
		attribute_size := int64(binary.LittleEndian.Uint32(
			self.b[offset+4 : offset+8]))
		if attribute_size == 0 ||
			attribute_size < ATTRIBUTE_COMMON_HEADER_SIZE ||
			attribute_size+offset > mft_size {
			Printf("Attribute walk stopped at %#x (length %#x)\n",
				offset, attribute_size)
			break
		}

		result = append(result, &NTFS_ATTRIBUTE{
			b:      self.b[offset : offset+attribute_size],
			Offset: offset,
		})

		// Go to the next attribute.
		offset += attribute_size
	}

	return result
}

func (self *MFT_ENTRY) Header() EntryHeader {
	flags := self.Flags()
	return EntryHeader{
		Signature:             self.Magic(),
		LogFileSequenceNumber: self.Logfile_sequence_number(),
		Sequence:              self.Sequence_value(),
		LinkCount:             self.Link_count(),
		FirstAttributeOffset:  self.Attribute_offset(),
		Flags:                 flags.Strings(),
		FlagsValue:            uint16(flags.Value),
		UsedSize:              self.Mft_entry_size(),
		AllocatedSize:         self.Mft_entry_allocated(),
		BaseRecordReference:   self.Base_record_reference(),
		NextAttributeId:       self.Next_attribute_id(),
		RecordNumber:          self.Record_number(),
	}
}

// Decode the header and every attribute of the entry. Any attribute
// failing to decode fails the whole entry.
func (self *MFT_ENTRY) Decode(
	geometry *VolumeGeometry, entry_number uint64) (*DecodedEntry, error) {
	STATS.IncEntriesDecoded()

	result := &DecodedEntry{
		EntryNumber: entry_number,
		Offset:      self.Offset,
		Header:      self.Header(),
	}

	for _, attr := range self.EnumerateAttributes() {
		DebugPrint("%v", attr.DebugString())

		decoded, err := attr.Decode(geometry)
		if err != nil {
			return nil, errors.Wrapf(err, "MFT entry %d", entry_number)
		}
		result.Attributes = append(result.Attributes, decoded)
	}

	return result, nil
}
