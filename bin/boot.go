package main

import (
	"os"

	"github.com/Velocidex/ordereddict"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftresolve/parser"
)

var (
	boot_command = app.Command(
		"boot", "Show the volume geometry from the boot sector.")

	boot_command_file_arg = boot_command.Arg(
		"file", "The image file to inspect",
	).Required().String()
)

func geometryReport(geometry *parser.VolumeGeometry, entries int) *ordereddict.Dict {
	return geometry.Dict().
		Set("BlockCount", geometry.BlockCount()).
		Set("MftEntries", entries)
}

func doBoot() error {
	session, err := openSession(*boot_command_file_arg)
	if err != nil {
		return err
	}
	defer session.Close()

	err = writeJSON(os.Stdout, geometryReport(
		session.Geometry, session.Index.Len()))
	if err != nil {
		return err
	}
	return printStats(session)
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "boot":
			kingpin.FatalIfError(doBoot(), "boot")
		default:
			return false
		}
		return true
	})
}
