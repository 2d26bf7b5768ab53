// Manage caching of decoded MFT entries. Entries are immutable once
// decoded so a session may hand out the same DecodedEntry to
// repeated lookups.

package parser

import (
	"sync"

	"github.com/Velocidex/ordereddict"
	lru "github.com/hashicorp/golang-lru/v2"
)

type MFTEntryCache struct {
	mu sync.Mutex

	lru *lru.Cache[uint64, *DecodedEntry]

	hits   int
	misses int
}

// A size of 0 disables caching.
func NewMFTEntryCache(size int) *MFTEntryCache {
	result := &MFTEntryCache{}
	if size > 0 {
		result.lru, _ = lru.New[uint64, *DecodedEntry](size)
	}
	return result
}

func (self *MFTEntryCache) Get(id uint64) (*DecodedEntry, bool) {
	self.mu.Lock()
	defer self.mu.Unlock()

	if self.lru == nil {
		self.misses++
		return nil, false
	}

	res, pres := self.lru.Get(id)
	if pres {
		self.hits++
	} else {
		self.misses++
	}
	return res, pres
}

// Only successfully decoded entries are added.
func (self *MFTEntryCache) Add(id uint64, entry *DecodedEntry) {
	if self.lru == nil || entry == nil {
		return
	}
	self.lru.Add(id, entry)
}

func (self *MFTEntryCache) Purge() {
	if self.lru != nil {
		self.lru.Purge()
	}
}

func (self *MFTEntryCache) Stats() *ordereddict.Dict {
	self.mu.Lock()
	defer self.mu.Unlock()

	size := 0
	if self.lru != nil {
		size = self.lru.Len()
	}

	return ordereddict.NewDict().
		Set("Hits", self.hits).
		Set("Misses", self.misses).
		Set("Size", size)
}
