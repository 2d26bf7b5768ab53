package parser

import (
	"github.com/pkg/errors"
)

func (self *NTFS_ATTRIBUTE) header() *DecodedAttribute {
	return &DecodedAttribute{
		Type:        uint32(self.Type().Value),
		TypeName:    self.Type().Name,
		Offset:      self.Offset,
		Length:      self.Length(),
		NonResident: !self.IsResident(),
		NameLength:  self.Name_length(),
		NameOffset:  self.Name_offset(),
		Flags:       uint16(self.Flags().Value),
		AttributeId: self.Attribute_id(),
	}
}

// The resident content is exactly Content_size bytes at
// Content_offset within the record.
func (self *NTFS_ATTRIBUTE) residentContent() (*ResidentContent, error) {
	if len(self.b) < ATTRIBUTE_RESIDENT_HEADER_SIZE {
		return nil, errors.Wrapf(TruncatedImageError,
			"resident attribute header at %#x is only %d bytes",
			self.Offset, len(self.b))
	}

	start := int64(self.Content_offset())
	end := start + int64(self.Content_size())
	if end > int64(len(self.b)) {
		return nil, errors.Wrapf(TruncatedImageError,
			"resident content %#x-%#x exceeds attribute length %#x at %#x",
			start, end, len(self.b), self.Offset)
	}

	content := make([]byte, end-start)
	copy(content, self.b[start:end])

	return &ResidentContent{
		ContentSize:   self.Content_size(),
		ContentOffset: self.Content_offset(),
		Content:       content,
	}, nil
}

// The run list is decoded relative to the attribute record itself and
// must fit both the attribute's VCN range and the volume.
func (self *NTFS_ATTRIBUTE) nonResidentContent(
	geometry *VolumeGeometry) (*NonResidentContent, error) {
	if len(self.b) < ATTRIBUTE_NONRESIDENT_HEADER_SIZE {
		return nil, errors.Wrapf(TruncatedImageError,
			"non-resident attribute header at %#x is only %d bytes",
			self.Offset, len(self.b))
	}

	runs, _, err := DecodeRunList(self.b, int(self.Runlist_offset()))
	if err != nil {
		return nil, errors.Wrapf(err, "attribute at %#x", self.Offset)
	}

	start_vcn := self.Runlist_vcn_start()
	vcn_span := self.Runlist_vcn_end() - start_vcn + 1
	total := uint64(0)
	for _, run := range runs {
		if run.Length > vcn_span-total {
			return nil, errors.Wrapf(MalformedRunHeaderError,
				"runs of attribute at %#x exceed its %d VCNs",
				self.Offset, vcn_span)
		}
		total += run.Length
	}

	mapped_runs := MakeMappedRuns(runs, start_vcn)
	err = CheckMappedRuns(mapped_runs, geometry.BlockCount())
	if err != nil {
		return nil, errors.Wrapf(err, "attribute at %#x", self.Offset)
	}

	return &NonResidentContent{
		StartVcn:            start_vcn,
		LastVcn:             self.Runlist_vcn_end(),
		RunlistOffset:       self.Runlist_offset(),
		CompressionUnitSize: self.Compression_unit_size(),
		AllocatedSize:       self.Allocated_size(),
		ActualSize:          self.Actual_size(),
		InitializedSize:     self.Initialized_size(),
		Runs:                runs,
		MappedRuns:          mapped_runs,
	}, nil
}

func (self *NTFS_ATTRIBUTE) mustBeResident() (*ResidentContent, error) {
	if !self.IsResident() {
		return nil, errors.Wrapf(IntegrityViolationError,
			"%v at %#x must be resident", self.Type().Name, self.Offset)
	}
	return self.residentContent()
}

func DecodeStandardInformation(content []byte) (*StandardInformation, error) {
	STATS.IncStandardInformation()

	if len(content) < STANDARD_INFORMATION_LEGACY_SIZE {
		return nil, errors.Wrapf(TruncatedImageError,
			"$STANDARD_INFORMATION is only %d bytes", len(content))
	}

	si := &STANDARD_INFORMATION{b: content}
	result := &StandardInformation{
		CreateTime:       si.Create_time(),
		FileAlteredTime:  si.File_altered_time(),
		MftAlteredTime:   si.Mft_altered_time(),
		FileAccessedTime: si.File_accessed_time(),
		Flags:            si.Flags(),
		MaxVersions:      si.Max_versions(),
		Version:          si.Version(),
		ClassId:          si.Class_id(),
	}

	if len(content) >= STANDARD_INFORMATION_SIZE {
		result.Extended = true
		result.OwnerId = si.Owner_id()
		result.SecurityId = si.Sid()
		result.QuotaCharged = si.Quota()
		result.Usn = si.Usn()
	}

	return result, nil
}

// The name itself is not decoded.
func DecodeFileName(content []byte) (*FileNameAttribute, error) {
	STATS.IncFileNames()

	if len(content) < FILE_NAME_MIN_SIZE {
		return nil, errors.Wrapf(TruncatedImageError,
			"$FILE_NAME is only %d bytes", len(content))
	}

	fn := &FILE_NAME{b: content}
	name_type := fn.NameType()

	return &FileNameAttribute{
		ParentReference:      fn.Parent_reference(),
		ParentEntryNumber:    fn.MftReference(),
		ParentSequenceNumber: fn.Seq_num(),
		CreateTime:           fn.Created(),
		FileModifiedTime:     fn.File_modified(),
		MftModifiedTime:      fn.Mft_modified(),
		FileAccessedTime:     fn.File_accessed(),
		AllocatedSize:        fn.Allocated_size(),
		RealSize:             fn.Size(),
		Flags:                fn.Flags(),
		ReparseValue:         fn.Reparse_value(),
		NameLength:           fn.Length_of_name(),
		NameType:             name_type.Name,
		NameTypeValue:        uint8(name_type.Value),
	}, nil
}

// Decode dispatches on the attribute type. Types we do not know
// about only have their common header filled in.
func (self *NTFS_ATTRIBUTE) Decode(geometry *VolumeGeometry) (*DecodedAttribute, error) {
	STATS.IncAttributes()

	result := self.header()

	switch self.Type().Value {
	case ATTR_TYPE_STANDARD_INFORMATION:
		content, err := self.mustBeResident()
		if err != nil {
			return nil, err
		}
		result.ResidentContent = content
		result.StandardInformation, err = DecodeStandardInformation(
			content.Content)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute at %#x", self.Offset)
		}

	case ATTR_TYPE_FILE_NAME:
		content, err := self.mustBeResident()
		if err != nil {
			return nil, err
		}
		result.ResidentContent = content
		result.FileName, err = DecodeFileName(content.Content)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute at %#x", self.Offset)
		}

	case ATTR_TYPE_DATA:
		if self.IsResident() {
			content, err := self.residentContent()
			if err != nil {
				return nil, err
			}
			result.ResidentContent = content

		} else {
			content, err := self.nonResidentContent(geometry)
			if err != nil {
				return nil, err
			}
			result.NonResidentContent = content
		}
	}

	return result, nil
}
