package parser

import (
	"encoding/json"
	"sync"

	"github.com/Velocidex/ordereddict"
)

// Process wide counters of the work done by all sessions.
var (
	STATS = Stats{}
)

type Stats struct {
	mu sync.Mutex

	Sessions            int
	FixUps              int
	FixUpFailures       int
	EntriesDecoded      int
	AttributeWalks      int
	Attributes          int
	StandardInformation int
	FileNames           int
	RunLists            int
}

func (self *Stats) inc(counter *int) {
	self.mu.Lock()
	defer self.mu.Unlock()

	*counter++
}

func (self *Stats) IncSessions()            { self.inc(&self.Sessions) }
func (self *Stats) IncFixUps()              { self.inc(&self.FixUps) }
func (self *Stats) IncFixUpFailures()       { self.inc(&self.FixUpFailures) }
func (self *Stats) IncEntriesDecoded()      { self.inc(&self.EntriesDecoded) }
func (self *Stats) IncAttributeWalks()      { self.inc(&self.AttributeWalks) }
func (self *Stats) IncAttributes()          { self.inc(&self.Attributes) }
func (self *Stats) IncStandardInformation() { self.inc(&self.StandardInformation) }
func (self *Stats) IncFileNames()           { self.inc(&self.FileNames) }
func (self *Stats) IncRunLists()            { self.inc(&self.RunLists) }

func (self *Stats) DebugString() string {
	serialized, _ := json.MarshalIndent(self.Dict(), " ", " ")
	return string(serialized)
}

func (self *Stats) Dict() *ordereddict.Dict {
	self.mu.Lock()
	defer self.mu.Unlock()

	return ordereddict.NewDict().
		Set("Sessions", self.Sessions).
		Set("FixUps", self.FixUps).
		Set("FixUpFailures", self.FixUpFailures).
		Set("EntriesDecoded", self.EntriesDecoded).
		Set("AttributeWalks", self.AttributeWalks).
		Set("Attributes", self.Attributes).
		Set("StandardInformation", self.StandardInformation).
		Set("FileNames", self.FileNames).
		Set("RunLists", self.RunLists)
}
