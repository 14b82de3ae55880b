// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/ikmak/bsonwire/bson"
	"github.com/ikmak/bsonwire/internal/compress"
	"github.com/ikmak/bsonwire/internal/jsonview"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const maxLineSize = 16 * 1024 * 1024

func newConvertCommand(g *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert [FILE]",
		Short: "Convert JSON lines into a stream of concatenated BSON documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) > 0 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "opening input")
				}
				defer f.Close()
				in = f
			}

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(err, "creating output")
				}
				defer f.Close()
				out = f
			}
			return runConvert(g, in, out)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write BSON to this file instead of standard output")
	return cmd
}

func runConvert(g *globalOptions, in io.Reader, out io.Writer) error {
	so := g.cfg.SerializeOptions()

	var buf []byte
	var count int
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		doc, err := jsonview.Parse(line)
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNumber)
		}
		b, err := bson.Serialize(doc, so)
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNumber)
		}
		buf = append(buf, b...)
		count++
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading input")
	}

	co := g.cfg.CompressionOpts()
	compressed, err := compress.CompressPayload(buf, co)
	if err != nil {
		return errors.Wrap(err, "compressing output")
	}
	if _, err := out.Write(compressed); err != nil {
		return err
	}
	g.log.WithFields(logrus.Fields{
		"documents":  count,
		"bytes":      len(buf),
		"written":    len(compressed),
		"compressor": co.Compressor,
	}).Info("convert finished")
	return nil
}
