package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftresolve/parser"
)

var (
	runs_command = app.Command(
		"runs", "Display the runs of the non-resident attributes.")

	runs_command_file_arg = runs_command.Arg(
		"file", "The image file to inspect",
	).Required().String()

	runs_command_arg = runs_command.Arg(
		"mft_id", "The MFT entry number.",
	).Required().Uint64()

	runs_command_raw_runs = runs_command.Flag(
		"raw_runs", "Also show raw runs.",
	).Bool()
)

func doRuns() error {
	session, err := openSession(*runs_command_file_arg)
	if err != nil {
		return err
	}
	defer session.Close()

	entry, err := session.ResolveEntry(*runs_command_arg)
	if err != nil {
		return errors.Wrapf(err, "Can not resolve MFT entry %v",
			*runs_command_arg)
	}

	cluster_size := session.Geometry.ClusterSize()

	for _, attr := range entry.Attributes {
		content := attr.NonResidentContent
		if content == nil {
			continue
		}

		if *runs_command_raw_runs {
			parser.SetDebug(true)
			parser.DebugRawRuns(content.Runs)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{
			"VCN",
			"LCN",
			"Length",
			"Disk Offset",
		})
		table.SetCaption(true, fmt.Sprintf(
			"%v (id %v) of MFT %v: %v bytes", attr.TypeName,
			attr.AttributeId, entry.EntryNumber, content.ActualSize))

		for _, run := range content.MappedRuns {
			if run.IsSparse {
				table.Append([]string{
					fmt.Sprintf("%v", run.FileOffset),
					"sparse",
					fmt.Sprintf("%v", run.Length),
					"",
				})
				continue
			}

			table.Append([]string{
				fmt.Sprintf("%v", run.FileOffset),
				fmt.Sprintf("%v", run.TargetOffset),
				fmt.Sprintf("%v", run.Length),
				fmt.Sprintf("%#x", run.TargetOffset*cluster_size),
			})
		}
		table.Render()
	}
	return printStats(session)
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "runs":
			kingpin.FatalIfError(doRuns(), "runs")
		default:
			return false
		}
		return true
	})
}
