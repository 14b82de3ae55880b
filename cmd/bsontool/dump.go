// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"io"

	"github.com/ikmak/bsonwire/bson"
	"github.com/ikmak/bsonwire/internal/compress"
	"github.com/ikmak/bsonwire/internal/jsonview"
	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type dumpOptions struct {
	canonical bool
	compact   bool
	debug     bool
	limit     int
}

func newDumpCommand(g *globalOptions) *cobra.Command {
	var opts dumpOptions

	cmd := &cobra.Command{
		Use:   "dump [FILE]",
		Short: "Print a stream of concatenated BSON documents as Extended JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return runDump(g, opts, data, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.canonical, "canonical", false, "Write canonical instead of relaxed Extended JSON")
	flags.BoolVar(&opts.compact, "compact", false, "Write one document per line")
	flags.BoolVar(&opts.debug, "debug", false, "Print the decoded Go values instead of JSON")
	flags.IntVarP(&opts.limit, "limit", "n", 0, "Stop after this many documents, 0 for all")
	return cmd
}

func runDump(g *globalOptions, opts dumpOptions, data []byte, out io.Writer) error {
	data, err := compress.DecompressPayload(data, g.cfg.CompressionOpts())
	if err != nil {
		return errors.Wrap(err, "decompressing input")
	}

	mode := jsonview.Relaxed
	if opts.canonical {
		mode = jsonview.Canonical
	}

	do := g.cfg.DeserializeOptions()
	docs := make([]bson.Value, 1)
	index, n := 0, 0
	for index < len(data) && (opts.limit == 0 || n < opts.limit) {
		next, err := bson.DeserializeStream(data, index, 1, docs, 0, do)
		if err != nil {
			return errors.Wrapf(err, "document %d", n)
		}
		g.log.WithFields(logrus.Fields{"offset": index, "size": next - index}).Debug("decoded document")

		if opts.debug {
			if _, err := pretty.Fprintf(out, "%# v\n", docs[0]); err != nil {
				return err
			}
		} else {
			var b []byte
			if opts.compact {
				b, err = jsonview.Marshal(docs[0], mode)
				b = append(b, '\n')
			} else {
				b, err = jsonview.Indent(docs[0], mode)
			}
			if err != nil {
				return errors.Wrapf(err, "document %d", n)
			}
			if _, err := out.Write(b); err != nil {
				return err
			}
		}
		index = next
		n++
	}
	g.log.WithField("documents", n).Info("dump finished")
	return nil
}
