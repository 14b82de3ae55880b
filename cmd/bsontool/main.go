// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command bsontool dumps, converts and benchmarks BSON data.
package main

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/ikmak/bsonwire/internal/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type globalOptions struct {
	configFile string
	logLevel   string
	compressor string

	cfg *config.Config
	log *logrus.Logger
}

func newRootCommand(log *logrus.Logger) *cobra.Command {
	opts := &globalOptions{log: log}

	cmd := &cobra.Command{
		Use:           "bsontool",
		Short:         "Inspect, convert and benchmark BSON data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd.Flags())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "TOML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level, overrides the configuration file")
	flags.StringVar(&opts.compressor, "compressor", "", "Compression of BSON files: none, snappy, zlib or zstd")

	cmd.AddCommand(
		newDumpCommand(opts),
		newConvertCommand(opts),
		newBenchCommand(opts),
	)
	return cmd
}

// load reads the configuration file and applies the flags set on the command line over it.
func (opts *globalOptions) load(flags *pflag.FlagSet) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("compressor") {
		cfg.Compression.Compressor = opts.compressor
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ConfigureLogger(opts.log); err != nil {
		return err
	}
	opts.cfg = cfg
	opts.log.WithFields(logrus.Fields{
		"config":     opts.configFile,
		"compressor": cfg.CompressionOpts().Compressor,
	}).Debug("configuration loaded")
	return nil
}

// readInput returns the content of the file named by args, or of in when no file or "-" is given.
func readInput(in io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return ioutil.ReadAll(in)
	}
	data, err := ioutil.ReadFile(args[0])
	return data, errors.Wrap(err, "reading input")
}

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	cmd := newRootCommand(log)
	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
