package parser

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// A single entry in the mapping pairs array. DeltaOffset is relative
// to the previous run's resolved cluster (the first run is relative
// to 0).
type Run struct {
	DeltaOffset int64  `json:"DeltaOffset"`
	Length      uint64 `json:"Length"`

	// The run has no offset field - it does not occupy any disk
	// clusters.
	IsSparse bool `json:"IsSparse,omitempty"`
}

// ParseSignedRunValue decodes up to 8 little endian bytes as a two's
// complement integer. The sign is taken from the top bit of the last
// byte supplied, not from a fixed width.
func ParseSignedRunValue(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}

	var sign byte = 0x00
	if b[len(b)-1]&0x80 != 0 {
		sign = 0xFF
	}

	// Pad out to 8 bytes.
	buffer := [8]byte{}
	for i := 0; i < 8; i++ {
		if i < len(b) {
			buffer[i] = b[i]
		} else {
			buffer[i] = sign
		}
	}

	return int64(binary.LittleEndian.Uint64(buffer[:]))
}

// parseUnsignedRunValue decodes a run length field. Lengths are
// cluster counts so they are never sign extended.
func parseUnsignedRunValue(b []byte) uint64 {
	buffer := [8]byte{}
	copy(buffer[:], b)
	return binary.LittleEndian.Uint64(buffer[:])
}

// DecodeRunList decodes the run list starting at offset in
// buffer. Returns the runs and the number of bytes consumed including
// the terminating 0 header.
func DecodeRunList(buffer []byte, offset int) ([]Run, int, error) {
	STATS.IncRunLists()

	result := []Run{}
	start := offset

	for {
		if offset < 0 || offset >= len(buffer) {
			return nil, 0, errors.Wrapf(MalformedRunHeaderError,
				"run list not terminated at offset %#x", offset)
		}

		// Consume the header byte off the stream.
		header := buffer[offset]
		if header == 0 {
			return result, offset - start + 1, nil
		}

		length_size := int(header & 0xF)
		run_offset_size := int(header >> 4)
		if length_size == 0 || length_size > 8 || run_offset_size > 8 {
			return nil, 0, errors.Wrapf(MalformedRunHeaderError,
				"invalid run header %#02x at offset %#x", header, offset)
		}

		end := offset + 1 + length_size + run_offset_size
		if end > len(buffer) {
			return nil, 0, errors.Wrapf(MalformedRunHeaderError,
				"run at offset %#x needs %d bytes, only %d available",
				offset, end-offset, len(buffer)-offset)
		}

		length_field := buffer[offset+1 : offset+1+length_size]
		offset_field := buffer[offset+1+length_size : end]

		result = append(result, Run{
			DeltaOffset: ParseSignedRunValue(offset_field),
			Length:      parseUnsignedRunValue(length_field),
			IsSparse:    run_offset_size == 0,
		})

		offset = end
	}
}

// A run resolved to absolute cluster numbers.
type MappedRun struct {
	// Virtual cluster number within the stream.
	FileOffset uint64 `json:"FileOffset"`

	// Logical cluster number on the volume. Meaningless for sparse
	// runs.
	TargetOffset int64  `json:"TargetOffset"`
	Length       uint64 `json:"Length"`
	IsSparse     bool   `json:"IsSparse,omitempty"`
}

// Clusters expands the run into the absolute clusters it
// covers. Sparse runs cover no clusters on disk.
func (self MappedRun) Clusters() []int64 {
	if self.IsSparse {
		return nil
	}

	result := make([]int64, 0, CapUint64(self.Length, 4096))
	for i := uint64(0); i < self.Length; i++ {
		result = append(result, self.TargetOffset+int64(i))
	}
	return result
}

func (self MappedRun) String() string {
	if self.IsSparse {
		return fmt.Sprintf("VCN %d: sparse (Length %d)",
			self.FileOffset, self.Length)
	}
	return fmt.Sprintf("VCN %d -> LCN %d (Length %d)",
		self.FileOffset, self.TargetOffset, self.Length)
}

// Convert the NTFS relative runlist into an absolute run list. The
// running total carries across the whole list, sparse runs do not
// move it.
func MakeMappedRuns(runs []Run, start_vcn uint64) []MappedRun {
	result := make([]MappedRun, 0, len(runs))
	file_offset := start_vcn
	target_offset := int64(0)

	for _, run := range runs {
		if run.IsSparse {
			result = append(result, MappedRun{
				FileOffset: file_offset,
				Length:     run.Length,
				IsSparse:   true,
			})

		} else {
			target_offset += run.DeltaOffset
			result = append(result, MappedRun{
				FileOffset:   file_offset,
				TargetOffset: target_offset,
				Length:       run.Length,
			})
		}

		file_offset += run.Length
	}
	return result
}

// CheckMappedRuns rejects allocated runs which do not lie inside a
// volume of cluster_count clusters, or which together claim more
// clusters than the volume has. Sparse runs occupy no clusters.
func CheckMappedRuns(runs []MappedRun, cluster_count int64) error {
	total := uint64(0)
	for _, run := range runs {
		if run.IsSparse {
			continue
		}

		if run.TargetOffset < 0 || cluster_count < 0 ||
			run.Length > uint64(cluster_count) ||
			run.TargetOffset > cluster_count-int64(run.Length) {
			return errors.Wrapf(MalformedRunHeaderError,
				"run %v exceeds the volume's %d clusters", run, cluster_count)
		}

		total += run.Length
		if total > uint64(cluster_count) {
			return errors.Wrapf(MalformedRunHeaderError,
				"runs claim %d clusters but the volume has %d",
				total, cluster_count)
		}
	}
	return nil
}

// All the absolute clusters of a run list in stream order.
func ClusterList(runs []MappedRun) []int64 {
	result := []int64{}
	for _, run := range runs {
		result = append(result, run.Clusters()...)
	}
	return result
}

func DebugRawRuns(runs []Run) {
	Printf("Runs ....\n")

	for idx, r := range runs {
		Printf("%d Delta Offset %d (Length %d, Sparse %v)\n",
			idx, r.DeltaOffset, r.Length, r.IsSparse)
	}
}
