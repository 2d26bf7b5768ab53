package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftresolve/parser"
)

var (
	stat_command = app.Command(
		"stat", "Decode an MFT entry.")

	stat_command_file_arg = stat_command.Arg(
		"file", "The image file to inspect",
	).Required().String()

	stat_command_arg = stat_command.Arg(
		"mft_id", "The MFT entry number.",
	).Default("5").Uint64()

	stat_command_times = stat_command.Flag(
		"times", "Show the timestamps as a table.",
	).Bool()
)

func doSTAT() error {
	session, err := openSession(*stat_command_file_arg)
	if err != nil {
		return err
	}
	defer session.Close()

	entry, err := session.ResolveEntry(*stat_command_arg)
	if err != nil {
		return errors.Wrapf(err, "Can not resolve MFT entry %v",
			*stat_command_arg)
	}

	if *verbose_flag {
		parser.Debug(entry)
	} else {
		err = writeJSON(os.Stdout, entry)
		if err != nil {
			return err
		}
	}

	if *stat_command_times {
		printTimes(entry)
	}
	return printStats(session)
}

func formatTime(ticks uint64) string {
	return parser.FileTime(ticks).In(time.UTC).Format(time.RFC3339Nano)
}

func printTimes(entry *parser.DecodedEntry) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"Attribute",
		"Created",
		"Modified",
		"MFT Modified",
		"Accessed",
	})
	table.SetCaption(true, fmt.Sprintf(
		"Timestamps for MFT %v", entry.EntryNumber))
	defer table.Render()

	si := entry.StandardInformation()
	if si != nil {
		table.Append([]string{
			"$STANDARD_INFORMATION",
			formatTime(si.CreateTime),
			formatTime(si.FileAlteredTime),
			formatTime(si.MftAlteredTime),
			formatTime(si.FileAccessedTime),
		})
	}

	for _, fn := range entry.FileNames() {
		table.Append([]string{
			fmt.Sprintf("$FILE_NAME (%v)", fn.NameType),
			formatTime(fn.CreateTime),
			formatTime(fn.FileModifiedTime),
			formatTime(fn.MftModifiedTime),
			formatTime(fn.FileAccessedTime),
		})
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "stat":
			kingpin.FatalIfError(doSTAT(), "stat")
		default:
			return false
		}
		return true
	})
}
