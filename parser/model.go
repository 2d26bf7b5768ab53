package parser

// This file defines the decoded model of an MFT entry. These are
// plain values - they hold no reference to the image.

type EntryHeader struct {
	Signature             string
	LogFileSequenceNumber uint64
	Sequence              uint16
	LinkCount             uint16
	FirstAttributeOffset  uint16
	Flags                 []string
	FlagsValue            uint16
	UsedSize              uint32
	AllocatedSize         uint32
	BaseRecordReference   uint64
	NextAttributeId       uint16
	RecordNumber          uint32
}

type StandardInformation struct {
	CreateTime       uint64
	FileAlteredTime  uint64
	MftAlteredTime   uint64
	FileAccessedTime uint64
	Flags            uint32
	MaxVersions      uint32
	Version          uint32
	ClassId          uint32

	// False for the short NTFS 1.x layout which has no fields below.
	Extended     bool
	OwnerId      uint32 `json:",omitempty"`
	SecurityId   uint32 `json:",omitempty"`
	QuotaCharged uint64 `json:",omitempty"`
	Usn          uint64 `json:",omitempty"`
}

type FileNameAttribute struct {
	ParentReference      uint64
	ParentEntryNumber    uint64
	ParentSequenceNumber uint16
	CreateTime           uint64
	FileModifiedTime     uint64
	MftModifiedTime      uint64
	FileAccessedTime     uint64
	AllocatedSize        uint64
	RealSize             uint64
	Flags                uint32
	ReparseValue         uint32
	NameLength           uint8
	NameType             string
	NameTypeValue        uint8
}

type ResidentContent struct {
	ContentSize   uint32
	ContentOffset uint16
	Content       []byte
}

type NonResidentContent struct {
	StartVcn            uint64
	LastVcn             uint64
	RunlistOffset       uint16
	CompressionUnitSize uint16
	AllocatedSize       uint64
	ActualSize          uint64
	InitializedSize     uint64
	Runs                []Run
	MappedRuns          []MappedRun
}

// The absolute clusters backing the stream in VCN order.
func (self *NonResidentContent) Clusters() []int64 {
	return ClusterList(self.MappedRuns)
}

type DecodedAttribute struct {
	Type        uint32
	TypeName    string
	Offset      int64
	Length      uint32
	NonResident bool
	NameLength  uint8
	NameOffset  uint16
	Flags       uint16
	AttributeId uint16

	// One of these is set for $STANDARD_INFORMATION, $FILE_NAME and
	// $DATA.
	ResidentContent    *ResidentContent    `json:",omitempty"`
	NonResidentContent *NonResidentContent `json:",omitempty"`

	StandardInformation *StandardInformation `json:",omitempty"`
	FileName            *FileNameAttribute   `json:",omitempty"`
}

type DecodedEntry struct {
	EntryNumber uint64
	Offset      int64
	Header      EntryHeader
	Attributes  []*DecodedAttribute
}

func (self *DecodedEntry) AttributesOfType(attr_type uint32) []*DecodedAttribute {
	result := []*DecodedAttribute{}
	for _, attr := range self.Attributes {
		if attr.Type == attr_type {
			result = append(result, attr)
		}
	}
	return result
}

func (self *DecodedEntry) StandardInformation() *StandardInformation {
	for _, attr := range self.Attributes {
		if attr.StandardInformation != nil {
			return attr.StandardInformation
		}
	}
	return nil
}

func (self *DecodedEntry) FileNames() []*FileNameAttribute {
	result := []*FileNameAttribute{}
	for _, attr := range self.Attributes {
		if attr.FileName != nil {
			result = append(result, attr.FileName)
		}
	}
	return result
}

// The unnamed $DATA stream, or nil.
func (self *DecodedEntry) Data() *DecodedAttribute {
	for _, attr := range self.Attributes {
		if attr.Type == ATTR_TYPE_DATA && attr.NameLength == 0 {
			return attr
		}
	}
	return nil
}
