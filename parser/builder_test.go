package parser

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// Helpers to build small synthetic NTFS images in memory.

const (
	testSectorSize        = 512
	testSectorsPerCluster = 2
	testClusterSize       = testSectorSize * testSectorsPerCluster
	testEntrySize         = 1024
	testMFTCluster        = 4
	testMFTClusters       = 16
	testImageClusters     = testMFTCluster + testMFTClusters
	testFixupSentinel     = 0x0007
)

type testRun struct {
	delta  int64
	length uint64
	sparse bool
}

// Encode a signed value in the fewest bytes which still sign extend
// back to the same value.
func encodeSigned(value int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(value))

	for n := 1; n < 8; n++ {
		if ParseSignedRunValue(buf[:n]) == value {
			return buf[:n]
		}
	}
	return buf
}

func encodeUnsigned(value uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)

	n := 8
	for n > 1 && buf[n-1] == 0 {
		n--
	}
	return buf[:n]
}

func encodeRuns(runs []testRun) []byte {
	out := &bytes.Buffer{}
	for _, run := range runs {
		length := encodeUnsigned(run.length)
		offset := []byte{}
		if !run.sparse {
			offset = encodeSigned(run.delta)
		}
		out.WriteByte(byte(len(offset)<<4 | len(length)))
		out.Write(length)
		out.Write(offset)
	}
	out.WriteByte(0)
	return out.Bytes()
}

func align8(n int) int {
	return (n + 7) &^ 7
}

func residentAttr(attr_type uint32, id uint16, content []byte) []byte {
	length := align8(24 + len(content))
	buf := make([]byte, length)
	binary.LittleEndian.PutUint32(buf[0:], attr_type)
	binary.LittleEndian.PutUint32(buf[4:], uint32(length))
	buf[8] = 0
	binary.LittleEndian.PutUint16(buf[10:], 24)
	binary.LittleEndian.PutUint16(buf[14:], id)
	binary.LittleEndian.PutUint32(buf[16:], uint32(len(content)))
	binary.LittleEndian.PutUint16(buf[20:], 24)
	copy(buf[24:], content)
	return buf
}

func nonResidentAttr(attr_type uint32, id uint16,
	start_vcn, last_vcn, allocated, actual uint64, runlist []byte) []byte {
	length := align8(64 + len(runlist))
	buf := make([]byte, length)
	binary.LittleEndian.PutUint32(buf[0:], attr_type)
	binary.LittleEndian.PutUint32(buf[4:], uint32(length))
	buf[8] = 1
	binary.LittleEndian.PutUint16(buf[10:], 64)
	binary.LittleEndian.PutUint16(buf[14:], id)
	binary.LittleEndian.PutUint64(buf[16:], start_vcn)
	binary.LittleEndian.PutUint64(buf[24:], last_vcn)
	binary.LittleEndian.PutUint16(buf[32:], 64)
	binary.LittleEndian.PutUint64(buf[40:], allocated)
	binary.LittleEndian.PutUint64(buf[48:], actual)
	binary.LittleEndian.PutUint64(buf[56:], actual)
	copy(buf[64:], runlist)
	return buf
}

type testTimes struct {
	create, modify, mft_modify, access uint64
}

func standardInformation(times testTimes) []byte {
	buf := make([]byte, STANDARD_INFORMATION_SIZE)
	binary.LittleEndian.PutUint64(buf[0:], times.create)
	binary.LittleEndian.PutUint64(buf[8:], times.modify)
	binary.LittleEndian.PutUint64(buf[16:], times.mft_modify)
	binary.LittleEndian.PutUint64(buf[24:], times.access)
	binary.LittleEndian.PutUint32(buf[32:], 0x20)
	binary.LittleEndian.PutUint32(buf[52:], 0x100)
	binary.LittleEndian.PutUint64(buf[64:], 0x1234)
	return buf
}

func fileName(parent uint64, parent_seq uint16, name string, times testTimes) []byte {
	encoded := utf16.Encode([]rune(name))
	buf := make([]byte, FILE_NAME_MIN_SIZE+2*len(encoded))
	binary.LittleEndian.PutUint64(buf[0:], parent|uint64(parent_seq)<<48)
	binary.LittleEndian.PutUint64(buf[8:], times.create)
	binary.LittleEndian.PutUint64(buf[16:], times.modify)
	binary.LittleEndian.PutUint64(buf[24:], times.mft_modify)
	binary.LittleEndian.PutUint64(buf[32:], times.access)
	binary.LittleEndian.PutUint64(buf[40:], 4096)
	binary.LittleEndian.PutUint64(buf[48:], 5)
	binary.LittleEndian.PutUint32(buf[56:], 0x20)
	buf[64] = byte(len(encoded))
	buf[65] = 1
	for i, c := range encoded {
		binary.LittleEndian.PutUint16(buf[66+2*i:], c)
	}
	return buf
}

// Build a raw (not yet fixed up) entry holding attrs.
func rawEntry(record_number uint32, entry_size int, attrs ...[]byte) []byte {
	buf := make([]byte, entry_size)
	sectors := entry_size / testSectorSize

	copy(buf[0:], MFT_ENTRY_MAGIC)
	binary.LittleEndian.PutUint16(buf[4:], 48)
	binary.LittleEndian.PutUint16(buf[6:], uint16(sectors+1))
	binary.LittleEndian.PutUint64(buf[8:], 0x1000+uint64(record_number))
	binary.LittleEndian.PutUint16(buf[16:], 3)
	binary.LittleEndian.PutUint16(buf[18:], 1)

	attr_offset := align8(48 + 2*(sectors+1))
	binary.LittleEndian.PutUint16(buf[20:], uint16(attr_offset))
	binary.LittleEndian.PutUint16(buf[22:], 1)
	binary.LittleEndian.PutUint32(buf[28:], uint32(entry_size))
	binary.LittleEndian.PutUint16(buf[40:], uint16(len(attrs)))
	binary.LittleEndian.PutUint32(buf[44:], record_number)

	offset := attr_offset
	for _, attr := range attrs {
		copy(buf[offset:], attr)
		offset += len(attr)
	}
	binary.LittleEndian.PutUint32(buf[offset:], ATTR_TYPE_END)
	binary.LittleEndian.PutUint32(buf[24:], uint32(offset+8))

	// Apply the update sequence protection.
	binary.LittleEndian.PutUint16(buf[48:], testFixupSentinel)
	for i := 0; i < sectors; i++ {
		tail := (i+1)*testSectorSize - 2
		copy(buf[50+2*i:52+2*i], buf[tail:tail+2])
		binary.LittleEndian.PutUint16(buf[tail:], testFixupSentinel)
	}

	return buf
}

// The geometry of the image built by buildTestImage().
func testGeometry() *VolumeGeometry {
	return &VolumeGeometry{
		BytesPerSector:    testSectorSize,
		SectorsPerCluster: testSectorsPerCluster,
		TotalSectors:      testImageClusters * testSectorsPerCluster,
		MftStartCluster:   testMFTCluster,
		MftEntrySize:      testEntrySize,
		IndexRecordSize:   testClusterSize,
	}
}

func bootSector(entry_size_byte int8, total_sectors uint64) []byte {
	buf := make([]byte, testSectorSize)
	copy(buf[3:], "NTFS    ")
	binary.LittleEndian.PutUint16(buf[11:], testSectorSize)
	buf[13] = testSectorsPerCluster
	binary.LittleEndian.PutUint64(buf[40:], total_sectors)
	binary.LittleEndian.PutUint64(buf[48:], testMFTCluster)
	buf[64] = byte(entry_size_byte)
	buf[68] = 1
	buf[510] = 0x55
	buf[511] = 0xAA
	return buf
}

var (
	testSITimes = testTimes{
		create:     132000000000000000,
		modify:     132000000010000000,
		mft_modify: 132000000020000000,
		access:     132000000030000000,
	}
	testFNTimes = testTimes{
		create:     131000000000000000,
		modify:     131000000010000000,
		mft_modify: 131000000020000000,
		access:     131000000030000000,
	}
)

// A 16 entry MFT at cluster 4:
//
//	0: $MFT with a non-resident $DATA
//	5: SI, FN "TEST", resident $DATA
//	6: non-resident fragmented $DATA with a sparse run
//	7: broken fixup
//	8: first attribute has a zero length
func buildTestImage() []byte {
	clusters := testImageClusters
	image := make([]byte, clusters*testClusterSize)
	copy(image, bootSector(1, uint64(clusters*testSectorsPerCluster)))

	put := func(id int, entry []byte) {
		copy(image[testMFTCluster*testClusterSize+id*testEntrySize:], entry)
	}

	put(0, rawEntry(0, testEntrySize,
		residentAttr(ATTR_TYPE_STANDARD_INFORMATION, 0,
			standardInformation(testSITimes)),
		nonResidentAttr(ATTR_TYPE_DATA, 1, 0, testMFTClusters-1,
			testMFTClusters*testClusterSize, testMFTClusters*testClusterSize,
			encodeRuns([]testRun{{delta: testMFTCluster, length: testMFTClusters}}))))

	put(5, rawEntry(5, testEntrySize,
		residentAttr(ATTR_TYPE_STANDARD_INFORMATION, 0,
			standardInformation(testSITimes)),
		residentAttr(ATTR_TYPE_FILE_NAME, 2,
			fileName(5, 5, "TEST", testFNTimes)),
		residentAttr(ATTR_TYPE_DATA, 1, []byte("hello"))))

	put(6, rawEntry(6, testEntrySize,
		residentAttr(ATTR_TYPE_STANDARD_INFORMATION, 0,
			standardInformation(testSITimes)),
		nonResidentAttr(ATTR_TYPE_DATA, 1, 0, 5, 6*testClusterSize,
			5*testClusterSize, encodeRuns([]testRun{
				{delta: 14, length: 2},
				{sparse: true, length: 3},
				{delta: -10, length: 1},
			}))))

	broken := rawEntry(7, testEntrySize,
		residentAttr(ATTR_TYPE_STANDARD_INFORMATION, 0,
			standardInformation(testSITimes)))
	broken[testSectorSize-1] ^= 0xFF
	put(7, broken)

	zero_length := residentAttr(ATTR_TYPE_STANDARD_INFORMATION, 0,
		standardInformation(testSITimes))
	binary.LittleEndian.PutUint32(zero_length[4:], 0)
	put(8, rawEntry(8, testEntrySize, zero_length))

	return image
}
