package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/mftresolve/parser"
)

func getOptions() parser.Options {
	options := parser.GetDefaultOptions()
	options.ImageOffset = *image_offset_flag
	options.AllowExponentEntrySize = *exponent_entry_size_flag
	return options
}

func openSession(path string) (*parser.Session, error) {
	session, err := parser.OpenImage(path, getOptions())
	if err != nil {
		return nil, errors.Wrapf(err, "Can not open image %v", path)
	}
	return session, nil
}

func writeJSON(out io.Writer, item interface{}) error {
	serialized, err := json.MarshalIndent(item, " ", " ")
	if err != nil {
		return errors.Wrap(err, "Marshal")
	}

	_, err = fmt.Fprintln(out, string(serialized))
	return err
}

func printStats(session *parser.Session) error {
	if *verbose_flag {
		return writeJSON(os.Stdout, session.Stats())
	}
	return nil
}
