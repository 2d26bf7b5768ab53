package parser

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// These are hand written parsers for the structs we decode. All of
// them work over an in memory buffer which has already been fixed up
// and bounds checked by the caller.

type Enumeration struct {
	Value uint64
	Name  string
}

func (self Enumeration) DebugString() string {
	return fmt.Sprintf("%s (%d)", self.Name, self.Value)
}

type Flags struct {
	Value uint64
	Names map[string]bool
}

func (self Flags) DebugString() string {
	names := []string{}
	for k := range self.Names {
		names = append(names, k)
	}
	sort.Strings(names)

	return fmt.Sprintf("%d (%v)", self.Value, strings.Join(names, ","))
}

func (self Flags) IsSet(flag string) bool {
	return self.Names[flag]
}

func (self Flags) Strings() []string {
	result := []string{}
	for k := range self.Names {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

const (
	MFT_ENTRY_MAGIC       = "FILE"
	MFT_ENTRY_HEADER_SIZE = 48
	MAX_MFT_ENTRY_SIZE    = 0x10000
)

// The MFT entry header over a fixed up buffer.
type MFT_ENTRY struct {
	b []byte

	// Where the entry was read from on disk.
	Offset int64
}

func NewMFT_ENTRY(buffer []byte, offset int64) *MFT_ENTRY {
	return &MFT_ENTRY{b: buffer, Offset: offset}
}

func (self *MFT_ENTRY) Size() int {
	return len(self.b)
}

func (self *MFT_ENTRY) Magic() string {
	return string(self.b[0:4])
}

func (self *MFT_ENTRY) Fixup_offset() uint16 {
	return binary.LittleEndian.Uint16(self.b[4:6])
}

func (self *MFT_ENTRY) Fixup_count() uint16 {
	return binary.LittleEndian.Uint16(self.b[6:8])
}

func (self *MFT_ENTRY) Logfile_sequence_number() uint64 {
	return binary.LittleEndian.Uint64(self.b[8:16])
}

func (self *MFT_ENTRY) Sequence_value() uint16 {
	return binary.LittleEndian.Uint16(self.b[16:18])
}

func (self *MFT_ENTRY) Link_count() uint16 {
	return binary.LittleEndian.Uint16(self.b[18:20])
}

func (self *MFT_ENTRY) Attribute_offset() uint16 {
	return binary.LittleEndian.Uint16(self.b[20:22])
}

func (self *MFT_ENTRY) Flags() Flags {
	value := binary.LittleEndian.Uint16(self.b[22:24])
	names := make(map[string]bool)

	if value&(1<<0) != 0 {
		names["ALLOCATED"] = true
	}

	if value&(1<<1) != 0 {
		names["DIRECTORY"] = true
	}

	return Flags{Value: uint64(value), Names: names}
}

func (self *MFT_ENTRY) Mft_entry_size() uint32 {
	return binary.LittleEndian.Uint32(self.b[24:28])
}

func (self *MFT_ENTRY) Mft_entry_allocated() uint32 {
	return binary.LittleEndian.Uint32(self.b[28:32])
}

func (self *MFT_ENTRY) Base_record_reference() uint64 {
	return binary.LittleEndian.Uint64(self.b[32:40])
}

func (self *MFT_ENTRY) Next_attribute_id() uint16 {
	return binary.LittleEndian.Uint16(self.b[40:42])
}

func (self *MFT_ENTRY) Record_number() uint32 {
	return binary.LittleEndian.Uint32(self.b[44:48])
}

func (self *MFT_ENTRY) DebugString() string {
	result := fmt.Sprintf("struct MFT_ENTRY @ %#x:\n", self.Offset)
	result += fmt.Sprintf("  Magic: %q\n", self.Magic())
	result += fmt.Sprintf("  Fixup_offset: %#0x\n", self.Fixup_offset())
	result += fmt.Sprintf("  Fixup_count: %#0x\n", self.Fixup_count())
	result += fmt.Sprintf("  Logfile_sequence_number: %#0x\n", self.Logfile_sequence_number())
	result += fmt.Sprintf("  Sequence_value: %#0x\n", self.Sequence_value())
	result += fmt.Sprintf("  Link_count: %#0x\n", self.Link_count())
	result += fmt.Sprintf("  Attribute_offset: %#0x\n", self.Attribute_offset())
	result += fmt.Sprintf("  Flags: %v\n", self.Flags().DebugString())
	result += fmt.Sprintf("  Mft_entry_size: %#0x\n", self.Mft_entry_size())
	result += fmt.Sprintf("  Mft_entry_allocated: %#0x\n", self.Mft_entry_allocated())
	result += fmt.Sprintf("  Base_record_reference: %#0x\n", self.Base_record_reference())
	result += fmt.Sprintf("  Next_attribute_id: %#0x\n", self.Next_attribute_id())
	result += fmt.Sprintf("  Record_number: %#0x\n", self.Record_number())
	return result
}

const (
	ATTR_TYPE_STANDARD_INFORMATION = 16
	ATTR_TYPE_ATTRIBUTE_LIST       = 32
	ATTR_TYPE_FILE_NAME            = 48
	ATTR_TYPE_DATA                 = 128
	ATTR_TYPE_INDEX_ROOT           = 144
	ATTR_TYPE_INDEX_ALLOCATION     = 160
	ATTR_TYPE_END                  = 0xFFFFFFFF

	// type, length, resident flag, name length/offset, flags and id.
	ATTRIBUTE_COMMON_HEADER_SIZE      = 16
	ATTRIBUTE_RESIDENT_HEADER_SIZE    = 24
	ATTRIBUTE_NONRESIDENT_HEADER_SIZE = 64
)

// A single attribute record. The buffer covers exactly the record's
// declared length.
type NTFS_ATTRIBUTE struct {
	b []byte

	// Offset of the record within its MFT entry.
	Offset int64
}

func (self *NTFS_ATTRIBUTE) Size() int {
	return len(self.b)
}

func AttributeTypeName(value uint64) string {
	switch value {
	case 16:
		return "$STANDARD_INFORMATION"
	case 32:
		return "$ATTRIBUTE_LIST"
	case 48:
		return "$FILE_NAME"
	case 64:
		return "$OBJECT_ID"
	case 80:
		return "$SECURITY_DESCRIPTOR"
	case 96:
		return "$VOLUME_NAME"
	case 112:
		return "$VOLUME_INFORMATION"
	case 128:
		return "$DATA"
	case 144:
		return "$INDEX_ROOT"
	case 160:
		return "$INDEX_ALLOCATION"
	case 176:
		return "$BITMAP"
	case 192:
		return "$REPARSE_POINT"
	case 208:
		return "$EA_INFORMATION"
	case 224:
		return "$EA"
	case 256:
		return "$LOGGED_UTILITY_STREAM"
	}
	return "Unknown"
}

func (self *NTFS_ATTRIBUTE) Type() Enumeration {
	value := uint64(binary.LittleEndian.Uint32(self.b[0:4]))
	return Enumeration{Value: value, Name: AttributeTypeName(value)}
}

func (self *NTFS_ATTRIBUTE) Length() uint32 {
	return binary.LittleEndian.Uint32(self.b[4:8])
}

func (self *NTFS_ATTRIBUTE) Resident() Enumeration {
	value := uint8(self.b[8])
	name := "Unknown"
	switch value {
	case 0:
		name = "RESIDENT"
	case 1:
		name = "NON-RESIDENT"
	}
	return Enumeration{Value: uint64(value), Name: name}
}

func (self *NTFS_ATTRIBUTE) IsResident() bool {
	return self.b[8] == 0
}

func (self *NTFS_ATTRIBUTE) Name_length() uint8 {
	return self.b[9]
}

func (self *NTFS_ATTRIBUTE) Name_offset() uint16 {
	return binary.LittleEndian.Uint16(self.b[10:12])
}

func (self *NTFS_ATTRIBUTE) Flags() Flags {
	value := binary.LittleEndian.Uint16(self.b[12:14])
	names := make(map[string]bool)

	if value&(1<<0) != 0 {
		names["COMPRESSED"] = true
	}

	if value&(1<<14) != 0 {
		names["ENCRYPTED"] = true
	}

	if value&(1<<15) != 0 {
		names["SPARSE"] = true
	}

	return Flags{Value: uint64(value), Names: names}
}

func (self *NTFS_ATTRIBUTE) Attribute_id() uint16 {
	return binary.LittleEndian.Uint16(self.b[14:16])
}

// Resident only.
func (self *NTFS_ATTRIBUTE) Content_size() uint32 {
	return binary.LittleEndian.Uint32(self.b[16:20])
}

func (self *NTFS_ATTRIBUTE) Content_offset() uint16 {
	return binary.LittleEndian.Uint16(self.b[20:22])
}

// Non-resident only.
func (self *NTFS_ATTRIBUTE) Runlist_vcn_start() uint64 {
	return binary.LittleEndian.Uint64(self.b[16:24])
}

func (self *NTFS_ATTRIBUTE) Runlist_vcn_end() uint64 {
	return binary.LittleEndian.Uint64(self.b[24:32])
}

func (self *NTFS_ATTRIBUTE) Runlist_offset() uint16 {
	return binary.LittleEndian.Uint16(self.b[32:34])
}

func (self *NTFS_ATTRIBUTE) Compression_unit_size() uint16 {
	return binary.LittleEndian.Uint16(self.b[34:36])
}

func (self *NTFS_ATTRIBUTE) Allocated_size() uint64 {
	return binary.LittleEndian.Uint64(self.b[40:48])
}

func (self *NTFS_ATTRIBUTE) Actual_size() uint64 {
	return binary.LittleEndian.Uint64(self.b[48:56])
}

func (self *NTFS_ATTRIBUTE) Initialized_size() uint64 {
	return binary.LittleEndian.Uint64(self.b[56:64])
}

func (self *NTFS_ATTRIBUTE) DebugString() string {
	result := fmt.Sprintf("struct NTFS_ATTRIBUTE @ %#x:\n", self.Offset)
	result += fmt.Sprintf("  Type: %v\n", self.Type().DebugString())
	result += fmt.Sprintf("  Length: %#0x\n", self.Length())
	result += fmt.Sprintf("  Resident: %v\n", self.Resident().DebugString())
	result += fmt.Sprintf("  name_length: %#0x\n", self.Name_length())
	result += fmt.Sprintf("  name_offset: %#0x\n", self.Name_offset())
	result += fmt.Sprintf("  Flags: %v\n", self.Flags().DebugString())
	result += fmt.Sprintf("  Attribute_id: %#0x\n", self.Attribute_id())
	if self.IsResident() && len(self.b) >= ATTRIBUTE_RESIDENT_HEADER_SIZE {
		result += fmt.Sprintf("  Content_size: %#0x\n", self.Content_size())
		result += fmt.Sprintf("  Content_offset: %#0x\n", self.Content_offset())
	}
	if !self.IsResident() && len(self.b) >= ATTRIBUTE_NONRESIDENT_HEADER_SIZE {
		result += fmt.Sprintf("  Runlist_vcn_start: %#0x\n", self.Runlist_vcn_start())
		result += fmt.Sprintf("  Runlist_vcn_end: %#0x\n", self.Runlist_vcn_end())
		result += fmt.Sprintf("  Runlist_offset: %#0x\n", self.Runlist_offset())
		result += fmt.Sprintf("  Compression_unit_size: %#0x\n", self.Compression_unit_size())
		result += fmt.Sprintf("  Allocated_size: %#0x\n", self.Allocated_size())
		result += fmt.Sprintf("  Actual_size: %#0x\n", self.Actual_size())
		result += fmt.Sprintf("  Initialized_size: %#0x\n", self.Initialized_size())
	}
	return result
}

const (
	STANDARD_INFORMATION_SIZE        = 72
	STANDARD_INFORMATION_LEGACY_SIZE = 48
	FILE_NAME_MIN_SIZE               = 66
)

// Resident content of a $STANDARD_INFORMATION attribute.
type STANDARD_INFORMATION struct {
	b []byte
}

func (self *STANDARD_INFORMATION) Create_time() uint64 {
	return binary.LittleEndian.Uint64(self.b[0:8])
}

func (self *STANDARD_INFORMATION) File_altered_time() uint64 {
	return binary.LittleEndian.Uint64(self.b[8:16])
}

func (self *STANDARD_INFORMATION) Mft_altered_time() uint64 {
	return binary.LittleEndian.Uint64(self.b[16:24])
}

func (self *STANDARD_INFORMATION) File_accessed_time() uint64 {
	return binary.LittleEndian.Uint64(self.b[24:32])
}

func (self *STANDARD_INFORMATION) Flags() uint32 {
	return binary.LittleEndian.Uint32(self.b[32:36])
}

func (self *STANDARD_INFORMATION) Max_versions() uint32 {
	return binary.LittleEndian.Uint32(self.b[36:40])
}

func (self *STANDARD_INFORMATION) Version() uint32 {
	return binary.LittleEndian.Uint32(self.b[40:44])
}

func (self *STANDARD_INFORMATION) Class_id() uint32 {
	return binary.LittleEndian.Uint32(self.b[44:48])
}

// The remaining fields only exist in the NTFS 3.0+ layout.
func (self *STANDARD_INFORMATION) Owner_id() uint32 {
	return binary.LittleEndian.Uint32(self.b[48:52])
}

func (self *STANDARD_INFORMATION) Sid() uint32 {
	return binary.LittleEndian.Uint32(self.b[52:56])
}

func (self *STANDARD_INFORMATION) Quota() uint64 {
	return binary.LittleEndian.Uint64(self.b[56:64])
}

func (self *STANDARD_INFORMATION) Usn() uint64 {
	return binary.LittleEndian.Uint64(self.b[64:72])
}

// Resident content of a $FILE_NAME attribute.
type FILE_NAME struct {
	b []byte
}

func (self *FILE_NAME) Parent_reference() uint64 {
	return binary.LittleEndian.Uint64(self.b[0:8])
}

func (self *FILE_NAME) MftReference() uint64 {
	return self.Parent_reference() & 0xFFFFFFFFFFFF
}

func (self *FILE_NAME) Seq_num() uint16 {
	return uint16(self.Parent_reference() >> 48)
}

func (self *FILE_NAME) Created() uint64 {
	return binary.LittleEndian.Uint64(self.b[8:16])
}

func (self *FILE_NAME) File_modified() uint64 {
	return binary.LittleEndian.Uint64(self.b[16:24])
}

func (self *FILE_NAME) Mft_modified() uint64 {
	return binary.LittleEndian.Uint64(self.b[24:32])
}

func (self *FILE_NAME) File_accessed() uint64 {
	return binary.LittleEndian.Uint64(self.b[32:40])
}

func (self *FILE_NAME) Allocated_size() uint64 {
	return binary.LittleEndian.Uint64(self.b[40:48])
}

func (self *FILE_NAME) Size() uint64 {
	return binary.LittleEndian.Uint64(self.b[48:56])
}

func (self *FILE_NAME) Flags() uint32 {
	return binary.LittleEndian.Uint32(self.b[56:60])
}

func (self *FILE_NAME) Reparse_value() uint32 {
	return binary.LittleEndian.Uint32(self.b[60:64])
}

func (self *FILE_NAME) Length_of_name() uint8 {
	return self.b[64]
}

func (self *FILE_NAME) NameType() Enumeration {
	value := self.b[65]
	name := "Unknown"
	switch value {
	case 0:
		name = "POSIX"
	case 1:
		name = "Win32"
	case 2:
		name = "DOS"
	case 3:
		name = "DOS+Win32"
	}
	return Enumeration{Value: uint64(value), Name: name}
}
