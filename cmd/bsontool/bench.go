// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ikmak/bsonwire/benchmark"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	filters []string
	runtime time.Duration
	count   int
	json    bool
}

func newBenchCommand(g *globalOptions) *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the encoder and decoder benchmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, g, opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.filters, "filter", "f", nil, "Only run cases whose name contains one of these strings")
	flags.DurationVar(&opts.runtime, "runtime", -1, "Minimum runtime of each case, negative for the case default")
	flags.IntVar(&opts.count, "count", 0, "Operations per trial, 0 for the case default")
	flags.BoolVar(&opts.json, "json", false, "Print the results as JSON")
	return cmd
}

func runBench(cmd *cobra.Command, g *globalOptions, opts benchOptions, out io.Writer) error {
	cases := benchmark.Cases(opts.filters...)
	if len(cases) == 0 {
		return errors.Errorf("no benchmark matches %v", opts.filters)
	}

	var summaries []benchmark.Summary
	var failed []string
	for _, c := range cases {
		if opts.runtime >= 0 {
			c.Runtime = opts.runtime
		}
		if opts.count > 0 {
			if c.Size > 0 {
				c.Size = c.Size / c.Count * opts.count
			}
			c.Count = opts.count
		}

		res := c.Run(cmd.Context(), g.log)
		if res.HasErrors() {
			failed = append(failed, res.Name)
			continue
		}
		sum, err := res.Summarize()
		if err != nil {
			return errors.Wrap(err, res.Name)
		}
		summaries = append(summaries, sum)
		if !opts.json {
			fmt.Fprintf(out, "%-28s %6d trials %14.0f ops/s  min %.0f  max %.0f  %8.2f MB/s\n",
				sum.Name, sum.Trials, sum.OpsPerSecond, sum.OpsPerSecMin, sum.OpsPerSecMax, sum.MBPerSecond)
		}
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summaries); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("benchmarks failed: %v", failed)
	}
	return nil
}
