package parser

import (
	"time"
)

func filetimeToUnixtime(ft uint64) int64 {
	return (int64(ft) - 11644473600000*10000) * 100
}

// FileTime converts NTFS ticks (100ns since 1601) to a UTC time.
func FileTime(ticks uint64) time.Time {
	return time.Unix(0, filetimeToUnixtime(ticks)).UTC()
}

func CapUint64(v uint64, max uint64) uint64 {
	if v > max {
		return max
	}
	return v
}
