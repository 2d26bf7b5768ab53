package parser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/suite"
)

type SessionTestSuite struct {
	suite.Suite

	image   []byte
	session *Session
}

func (self *SessionTestSuite) SetupTest() {
	self.image = buildTestImage()

	session, err := GetSession(bytes.NewReader(self.image), GetDefaultOptions())
	self.Require().NoError(err)
	self.session = session
}

func (self *SessionTestSuite) TearDownTest() {
	self.session.Close()
}

func (self *SessionTestSuite) TestResolveEntry() {
	entry, err := self.session.ResolveEntry(5)
	self.Require().NoError(err)

	self.Equal(uint64(5), entry.EntryNumber)
	self.Equal(int64(testMFTCluster*testClusterSize+5*testEntrySize), entry.Offset)
	self.Equal("FILE", entry.Header.Signature)
	self.Equal(uint16(3), entry.Header.Sequence)
	self.Equal(uint16(1), entry.Header.LinkCount)
	self.Equal(uint64(0x1005), entry.Header.LogFileSequenceNumber)
	self.Equal([]string{"ALLOCATED"}, entry.Header.Flags)
	self.Equal(uint32(testEntrySize), entry.Header.AllocatedSize)
	self.Equal(uint32(5), entry.Header.RecordNumber)

	self.Require().Equal(3, len(entry.Attributes))

	si := entry.StandardInformation()
	self.Require().NotNil(si)
	self.Equal(testSITimes.create, si.CreateTime)
	self.Equal(testSITimes.modify, si.FileAlteredTime)
	self.Equal(testSITimes.mft_modify, si.MftAlteredTime)
	self.Equal(testSITimes.access, si.FileAccessedTime)

	file_names := entry.FileNames()
	self.Require().Equal(1, len(file_names))
	self.Equal(uint8(4), file_names[0].NameLength)
	self.Equal(uint64(5), file_names[0].ParentEntryNumber)
	self.Equal(testFNTimes.create, file_names[0].CreateTime)

	data := entry.Data()
	self.Require().NotNil(data)
	self.False(data.NonResident)
	self.Equal([]byte("hello"), data.ResidentContent.Content)
	self.Equal(uint32(5), data.ResidentContent.ContentSize)
}

func (self *SessionTestSuite) TestResolveNonResident() {
	entry, err := self.session.ResolveEntry(6)
	self.Require().NoError(err)

	data := entry.Data()
	self.Require().NotNil(data)
	self.Require().NotNil(data.NonResidentContent)
	self.Equal([]int64{14, 15, 4}, data.NonResidentContent.Clusters())
}

func (self *SessionTestSuite) TestFailuresDoNotEndSession() {
	failures, _ := STATS.Dict().Get("FixUpFailures")

	_, err := self.session.ResolveEntry(7)
	self.ErrorIs(err, IntegrityViolationError)

	after, _ := STATS.Dict().Get("FixUpFailures")
	self.Equal(failures.(int)+1, after)

	_, err = self.session.ResolveEntry(16)
	self.ErrorIs(err, EntryIndexOutOfRangeError)

	_, err = self.session.ResolveEntry(1 << 62)
	self.ErrorIs(err, EntryIndexOutOfRangeError)

	// Never written - no FILE signature.
	_, err = self.session.ResolveEntry(9)
	self.ErrorIs(err, IntegrityViolationError)

	// The session is still good.
	entry, err := self.session.ResolveEntry(5)
	self.Require().NoError(err)
	self.Equal(uint64(5), entry.EntryNumber)
}

func (self *SessionTestSuite) TestZeroLengthAttribute() {
	entry, err := self.session.ResolveEntry(8)
	self.Require().NoError(err)
	self.Empty(entry.Attributes)
}

func (self *SessionTestSuite) TestEntryCache() {
	first, err := self.session.ResolveEntry(5)
	self.Require().NoError(err)

	second, err := self.session.ResolveEntry(5)
	self.Require().NoError(err)
	self.True(first == second)

	hits, _ := self.session.entry_cache.Stats().Get("Hits")
	self.Equal(1, hits)
}

func (self *SessionTestSuite) TestMFTEntrySelf() {
	entry, err := self.session.ResolveEntry(0)
	self.Require().NoError(err)

	data := entry.Data()
	self.Require().NotNil(data)
	self.True(data.NonResident)
	self.Equal(testMFTClusters, len(data.NonResidentContent.Clusters()))
}

func (self *SessionTestSuite) TestClose() {
	self.NoError(self.session.Close())
	self.NoError(self.session.Close())

	_, err := self.session.ResolveEntry(5)
	self.ErrorIs(err, SessionClosedError)
}

func TestSession(t *testing.T) {
	suite.Run(t, &SessionTestSuite{})
}

func TestOpenImage(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenImage(filepath.Join(dir, "missing.dd"), GetDefaultOptions())
	if !errors.Is(err, ImageNotFoundError) {
		t.Fatalf("Expected ImageNotFound, got %v", err)
	}

	path := filepath.Join(dir, "test.dd")
	err = os.WriteFile(path, buildTestImage(), 0600)
	if err != nil {
		t.Fatal(err)
	}

	session, err := OpenImage(path, GetDefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	entry, err := session.ResolveEntry(5)
	if err != nil {
		t.Fatal(err)
	}

	if FileTime(entry.StandardInformation().CreateTime).Year() != 2019 {
		t.Fatalf("Unexpected create time %v", spew.Sdump(entry))
	}
}

func TestImageOffset(t *testing.T) {
	image := append(make([]byte, 0x8000), buildTestImage()...)

	options := GetDefaultOptions()
	options.ImageOffset = 0x8000
	session, err := GetSession(bytes.NewReader(image), options)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	entry, err := session.ResolveEntry(5)
	if err != nil {
		t.Fatal(err)
	}

	if len(entry.FileNames()) != 1 {
		t.Fatalf("Expected one $FILE_NAME: %v", spew.Sdump(entry))
	}
}

func TestTruncatedImage(t *testing.T) {
	image := buildTestImage()

	// The image ends inside the MFT's first entry.
	_, err := GetSession(bytes.NewReader(image[:testMFTCluster*testClusterSize+100]),
		GetDefaultOptions())
	if !errors.Is(err, TruncatedImageError) {
		t.Fatalf("Expected TruncatedImage, got %v", err)
	}
}

func init() {
	spew.Config.DisablePointerAddresses = true
	spew.Config.SortKeys = true
}
