package main

import (
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftresolve/parser"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("mftresolve",
		"A tool for resolving MFT entries in raw NTFS images.")

	image_offset_flag = app.Flag(
		"image_offset", "The offset of the volume in the image.",
	).Default("0").Int64()

	exponent_entry_size_flag = app.Flag(
		"exponent_entry_size", "Accept a power of two MFT entry size in the boot sector.",
	).Bool()

	debug_flag   = app.Flag("debug", "Print debug messages.").Bool()
	verbose_flag = app.Flag("verbose", "Show more detail.").Short('v').Bool()

	command_handlers []CommandHandler
)

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *debug_flag {
		parser.SetDebug(true)
	}

	for _, command_handler := range command_handlers {
		if command_handler(command) {
			break
		}
	}
}
