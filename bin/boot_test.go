package main

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie"
	"www.velocidex.com/golang/mftresolve/parser"
)

func TestGeometryReport(t *testing.T) {
	geometry := &parser.VolumeGeometry{
		BytesPerSector:    512,
		SectorsPerCluster: 2,
		TotalSectors:      40,
		MftStartCluster:   4,
		MftEntrySize:      1024,
		IndexRecordSize:   1024,
		OemName:           "NTFS    ",
	}

	out := &bytes.Buffer{}
	err := writeJSON(out, geometryReport(geometry, 16))
	if err != nil {
		t.Fatal(err)
	}

	goldie.Assert(t, "TestGeometryReport", out.Bytes())
}
