package parser

import (
	"fmt"
	"os"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

// Set MFTRESOLVE_DEBUG in the environment to trace every decoded
// structure.
const DEBUG_ENV_VAR = "MFTRESOLVE_DEBUG"

var (
	debug = false

	trace_once    sync.Once
	trace_enabled bool
)

func SetDebug(value bool) {
	debug = value
}

// Debug dumps any decoded value with its field names.
func Debug(arg interface{}) {
	spew.Dump(arg)
}

// Printf writes session level progress when debugging is switched on.
func Printf(fmt_str string, args ...interface{}) {
	if debug {
		fmt.Printf(fmt_str, args...)
	}
}

// DebugPrint is the per structure trace. It is far noisier than
// Printf so it has its own switch.
func DebugPrint(fmt_str string, v ...interface{}) {
	trace_once.Do(func() {
		_, trace_enabled = os.LookupEnv(DEBUG_ENV_VAR)
	})

	if trace_enabled {
		fmt.Printf(fmt_str, v...)
	}
}
