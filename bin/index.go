package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftresolve/parser"
)

var (
	index_command = app.Command(
		"index", "List the disk offsets of MFT entries.")

	index_command_file_arg = index_command.Arg(
		"file", "The image file to inspect",
	).Required().String()

	index_command_limit = index_command.Flag(
		"limit", "Only show this many entries (0 for all).",
	).Default("100").Int()
)

func doIndex() error {
	session, err := openSession(*index_command_file_arg)
	if err != nil {
		return err
	}
	defer session.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"MFT Id",
		"Offset",
	})
	table.SetCaption(true, fmt.Sprintf(
		"%v MFT entries", session.Index.Len()))
	defer table.Render()

	for id, offset := range session.Index.Offsets() {
		if *index_command_limit > 0 && id >= *index_command_limit {
			break
		}

		if offset == parser.SPARSE_ENTRY_OFFSET {
			table.Append([]string{fmt.Sprintf("%v", id), "sparse"})
			continue
		}
		table.Append([]string{
			fmt.Sprintf("%v", id),
			fmt.Sprintf("%#x", offset),
		})
	}
	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "index":
			kingpin.FatalIfError(doIndex(), "index")
		default:
			return false
		}
		return true
	})
}
