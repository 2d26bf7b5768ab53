package parser

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
)

const (
	// The boot sector fields we need all live in the first 72 bytes.
	BOOT_SECTOR_MIN_SIZE = 72
)

// Hand written accessors over the raw boot sector.
type NTFS_BOOT_SECTOR struct {
	b      [BOOT_SECTOR_MIN_SIZE]byte
	Offset int64
}

func NewNTFS_BOOT_SECTOR(reader io.ReaderAt, offset int64) (
	*NTFS_BOOT_SECTOR, error) {
	result := &NTFS_BOOT_SECTOR{Offset: offset}
	err := readFull(reader, result.b[:], offset)
	if err != nil {
		return nil, errors.Wrap(err, "boot sector")
	}
	return result, nil
}

func (self *NTFS_BOOT_SECTOR) Oemname() string {
	return string(self.b[3:11])
}

func (self *NTFS_BOOT_SECTOR) Sector_size() uint16 {
	return binary.LittleEndian.Uint16(self.b[11:13])
}

func (self *NTFS_BOOT_SECTOR) _cluster_size() uint8 {
	return self.b[13]
}

func (self *NTFS_BOOT_SECTOR) _volume_size() uint64 {
	return binary.LittleEndian.Uint64(self.b[40:48])
}

func (self *NTFS_BOOT_SECTOR) _mft_cluster() uint64 {
	return binary.LittleEndian.Uint64(self.b[48:56])
}

func (self *NTFS_BOOT_SECTOR) _mft_record_size() int8 {
	return int8(self.b[64])
}

func (self *NTFS_BOOT_SECTOR) _index_record_size() int8 {
	return int8(self.b[68])
}

func (self *NTFS_BOOT_SECTOR) DebugString() string {
	result := fmt.Sprintf("struct NTFS_BOOT_SECTOR @ %#x:\n", self.Offset)
	result += fmt.Sprintf("  Oemname: %q\n", self.Oemname())
	result += fmt.Sprintf("  Sector_size: %#0x\n", self.Sector_size())
	result += fmt.Sprintf("  _cluster_size: %#0x\n", self._cluster_size())
	result += fmt.Sprintf("  _volume_size: %#0x\n", self._volume_size())
	result += fmt.Sprintf("  _mft_cluster: %#0x\n", self._mft_cluster())
	result += fmt.Sprintf("  _mft_record_size: %d\n", self._mft_record_size())
	result += fmt.Sprintf("  _index_record_size: %d\n", self._index_record_size())
	return result
}

// The volume parameters needed to turn cluster and entry numbers into
// byte offsets. Immutable once read.
type VolumeGeometry struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	TotalSectors      uint64
	MftStartCluster   uint64
	MftEntrySize      uint32
	IndexRecordSize   uint32

	OemName string
}

func (self *VolumeGeometry) ClusterSize() int64 {
	return int64(self.SectorsPerCluster) * int64(self.BytesPerSector)
}

// Byte offset of the MFT's own first entry.
func (self *VolumeGeometry) MftOffset() int64 {
	return int64(self.MftStartCluster) * self.ClusterSize()
}

func (self *VolumeGeometry) BlockCount() int64 {
	return int64(self.TotalSectors) / int64(self.SectorsPerCluster)
}

func (self *VolumeGeometry) Dict() *ordereddict.Dict {
	return ordereddict.NewDict().
		Set("OemName", self.OemName).
		Set("BytesPerSector", self.BytesPerSector).
		Set("SectorsPerCluster", self.SectorsPerCluster).
		Set("ClusterSize", self.ClusterSize()).
		Set("TotalSectors", self.TotalSectors).
		Set("MftStartCluster", self.MftStartCluster).
		Set("MftOffset", self.MftOffset()).
		Set("MftEntrySize", self.MftEntrySize).
		Set("IndexRecordSize", self.IndexRecordSize)
}

// Positive size bytes count clusters. Negative size bytes are a power
// of two exponent in real NTFS.
func recordSize(value int8, cluster_size int64) int64 {
	if value == 0 {
		return 0
	}
	if value > 0 {
		return int64(value) * cluster_size
	}
	return 1 << uint32(-int32(value))
}

// ReadVolumeGeometry parses the boot sector at offset.
func ReadVolumeGeometry(reader io.ReaderAt, offset int64,
	options Options) (*VolumeGeometry, error) {
	boot, err := NewNTFS_BOOT_SECTOR(reader, offset)
	if err != nil {
		return nil, err
	}

	DebugPrint("%v", boot.DebugString())

	result := &VolumeGeometry{
		BytesPerSector:    boot.Sector_size(),
		SectorsPerCluster: boot._cluster_size(),
		TotalSectors:      boot._volume_size(),
		MftStartCluster:   boot._mft_cluster(),
		OemName:           boot.Oemname(),
	}

	sector_size := result.BytesPerSector
	if sector_size == 0 || sector_size%256 != 0 {
		return nil, errors.Wrapf(UnsupportedGeometryError,
			"invalid sector size %d", sector_size)
	}

	if result.SectorsPerCluster == 0 {
		return nil, errors.Wrap(UnsupportedGeometryError,
			"sectors per cluster is 0")
	}

	cluster_size := result.ClusterSize()

	entry_size_byte := boot._mft_record_size()
	switch {
	case entry_size_byte == 0:
		return nil, errors.Wrap(UnsupportedGeometryError,
			"MFT entry size is 0")

	case entry_size_byte < 0 && !options.AllowExponentEntrySize:
		return nil, errors.Wrapf(UnsupportedGeometryError,
			"negative MFT entry size byte %d", entry_size_byte)

	case entry_size_byte < -31:
		return nil, errors.Wrapf(UnsupportedGeometryError,
			"MFT entry size exponent %d out of range", entry_size_byte)
	}

	entry_size := recordSize(entry_size_byte, cluster_size)

	// Every entry must hold the header and cover whole sectors for
	// the fixups.
	if entry_size < MFT_ENTRY_HEADER_SIZE ||
		entry_size%int64(sector_size) != 0 ||
		entry_size > MAX_MFT_ENTRY_SIZE {
		return nil, errors.Wrapf(UnsupportedGeometryError,
			"invalid MFT entry size %d", entry_size)
	}
	result.MftEntrySize = uint32(entry_size)

	index_size_byte := boot._index_record_size()
	if index_size_byte >= -31 {
		result.IndexRecordSize = uint32(recordSize(index_size_byte, cluster_size))
	}

	return result, nil
}
