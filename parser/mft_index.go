package parser

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// Marks an entry inside a sparse run of the $MFT stream.
const SPARSE_ENTRY_OFFSET = -1

// MFTIndex maps MFT entry numbers to absolute byte offsets on the
// volume. It is built once from the $DATA run list of entry 0 and is
// read only afterwards.
type MFTIndex struct {
	offsets []int64

	// The decoded $MFT stream layout.
	Runs []MappedRun
}

func (self *MFTIndex) Len() int {
	return len(self.offsets)
}

func (self *MFTIndex) Offsets() []int64 {
	return append([]int64{}, self.offsets...)
}

func (self *MFTIndex) Offset(id uint64) (int64, error) {
	if id >= uint64(len(self.offsets)) {
		return 0, errors.Wrapf(EntryIndexOutOfRangeError,
			"entry %d is beyond the %d entries in the MFT",
			id, len(self.offsets))
	}

	offset := self.offsets[id]
	if offset == SPARSE_ENTRY_OFFSET {
		return 0, errors.Wrapf(EntryIndexOutOfRangeError,
			"entry %d lies in a sparse MFT run", id)
	}
	return offset, nil
}

// Find the $DATA attribute of the MFT's own entry. A plain linear
// scan of the records is enough here since nothing else is decoded.
func findMFTData(geometry *VolumeGeometry,
	root_mft *MFT_ENTRY) (*NonResidentContent, error) {
	for _, attr := range root_mft.EnumerateAttributes() {
		if attr.Type().Value != ATTR_TYPE_DATA {
			continue
		}

		if attr.IsResident() {
			return nil, errors.WithStack(UnexpectedResidentMftError)
		}

		content, err := attr.nonResidentContent(geometry)
		if err != nil {
			return nil, errors.Wrap(err, "$MFT $DATA")
		}
		return content, nil
	}

	return nil, errors.Wrap(IntegrityViolationError,
		"$DATA attribute not found for $MFT")
}

// BuildIndexFromRuns lays out entries of entry_size bytes over each
// run in order. Partial entries at the end of a run are dropped. The
// index never holds more entries than allocated_size bytes, or the
// volume itself, can hold.
func BuildIndexFromRuns(geometry *VolumeGeometry,
	runs []Run, allocated_size uint64) (*MFTIndex, error) {
	cluster_size := uint64(geometry.ClusterSize())
	entry_size := uint64(geometry.MftEntrySize)
	if cluster_size == 0 || entry_size == 0 {
		return nil, errors.Wrapf(UnsupportedGeometryError,
			"cluster size %d, MFT entry size %d", cluster_size, entry_size)
	}

	result := &MFTIndex{Runs: MakeMappedRuns(runs, 0)}
	err := CheckMappedRuns(result.Runs, geometry.BlockCount())
	if err != nil {
		return nil, err
	}

	max_entries := allocated_size / entry_size
	volume_entries := uint64(geometry.BlockCount()) * cluster_size / entry_size
	if volume_entries < max_entries {
		max_entries = volume_entries
	}

	for _, run := range result.Runs {
		run_length := run.Length * cluster_size
		if run.Length > math.MaxUint64/cluster_size {
			run_length = math.MaxUint64
		}

		for offset := uint64(0); entry_size <= run_length-offset; offset += entry_size {
			if uint64(len(result.offsets)) >= max_entries {
				return result, nil
			}

			if run.IsSparse {
				result.offsets = append(result.offsets, SPARSE_ENTRY_OFFSET)
			} else {
				result.offsets = append(result.offsets,
					run.TargetOffset*int64(cluster_size)+int64(offset))
			}
		}
	}

	return result, nil
}

// BootstrapMFT builds the MFT index. The MFT describes its own
// location so this must be done in two phases:
//  1. Read the first entry at the MFT cluster given in the boot sector.
//  2. Decode the run list of its $DATA attribute and lay out the
//     index over these runs.
func BootstrapMFT(geometry *VolumeGeometry, reader io.ReaderAt) (*MFTIndex, error) {
	root_mft, err := GetFixedUpMFTEntry(geometry, reader, geometry.MftOffset())
	if err != nil {
		return nil, errors.Wrap(err, "bootstrapping $MFT")
	}

	data, err := findMFTData(geometry, root_mft)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrapping $MFT")
	}

	DebugRawRuns(data.Runs)

	index, err := BuildIndexFromRuns(geometry, data.Runs, data.AllocatedSize)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrapping $MFT")
	}
	return index, nil
}
