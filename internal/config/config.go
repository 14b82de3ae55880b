// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package config loads the TOML configuration of the bsontool command.
package config

import (
	"io/ioutil"

	"github.com/ikmak/bsonwire/bson/bsonoptions"
	"github.com/ikmak/bsonwire/internal/compress"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config encapsulates the configuration of the bsontool command. Unset values keep the codec
// defaults.
type Config struct {
	Serialize   SerializeCfg   `toml:"serialize"`
	Deserialize DeserializeCfg `toml:"deserialize"`
	Compression CompressionCfg `toml:"compression"`
	Log         LogCfg         `toml:"log"`
}

// SerializeCfg mirrors bsonoptions.SerializeOptions.
type SerializeCfg struct {
	CheckKeys          *bool `toml:"check_keys"`
	SerializeFunctions *bool `toml:"serialize_functions"`
	IgnoreUndefined    *bool `toml:"ignore_undefined"`
	MaxDepth           *int  `toml:"max_depth"`
}

// DeserializeCfg mirrors bsonoptions.DeserializeOptions.
type DeserializeCfg struct {
	PromoteLongs                     *bool    `toml:"promote_longs"`
	PromoteValues                    *bool    `toml:"promote_values"`
	PromoteBuffers                   *bool    `toml:"promote_buffers"`
	BSONRegExp                       *bool    `toml:"bson_regexp"`
	AllowObjectSmallerThanBufferSize *bool    `toml:"allow_object_smaller_than_buffer_size"`
	ValidateUTF8                     *bool    `toml:"validate_utf8"`
	MaxDepth                         *int     `toml:"max_depth"`
	FieldsAsRaw                      []string `toml:"fields_as_raw"`
}

// CompressionCfg selects the compressor applied to files read and written by the tool.
type CompressionCfg struct {
	Compressor string `toml:"compressor"`
	ZlibLevel  *int   `toml:"zlib_level"`
	ZstdLevel  *int   `toml:"zstd_level"`
}

// LogCfg configures the logrus logger.
type LogCfg struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogCfg{Level: "info", Format: "text"},
	}
}

// Load parses the TOML file at path over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be applied.
func (c *Config) Validate() error {
	if _, err := compress.ParseCompressor(c.Compression.Compressor); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errors.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Serialize.MaxDepth != nil && *c.Serialize.MaxDepth < 0 {
		return errors.New("serialize.max_depth must not be negative")
	}
	if c.Deserialize.MaxDepth != nil && *c.Deserialize.MaxDepth < 0 {
		return errors.New("deserialize.max_depth must not be negative")
	}
	return nil
}

// SerializeOptions converts the [serialize] table.
func (c *Config) SerializeOptions() *bsonoptions.SerializeOptions {
	return &bsonoptions.SerializeOptions{
		CheckKeys:          c.Serialize.CheckKeys,
		SerializeFunctions: c.Serialize.SerializeFunctions,
		IgnoreUndefined:    c.Serialize.IgnoreUndefined,
		MaxDepth:           c.Serialize.MaxDepth,
	}
}

// DeserializeOptions converts the [deserialize] table.
func (c *Config) DeserializeOptions() *bsonoptions.DeserializeOptions {
	opts := &bsonoptions.DeserializeOptions{
		PromoteLongs:                     c.Deserialize.PromoteLongs,
		PromoteValues:                    c.Deserialize.PromoteValues,
		PromoteBuffers:                   c.Deserialize.PromoteBuffers,
		BSONRegExp:                       c.Deserialize.BSONRegExp,
		AllowObjectSmallerThanBufferSize: c.Deserialize.AllowObjectSmallerThanBufferSize,
		ValidateUTF8:                     c.Deserialize.ValidateUTF8,
		MaxDepth:                         c.Deserialize.MaxDepth,
	}
	if len(c.Deserialize.FieldsAsRaw) > 0 {
		opts.SetFieldsAsRaw(c.Deserialize.FieldsAsRaw...)
	}
	return opts
}

// CompressionOpts converts the [compression] table. The compressor must already be validated.
func (c *Config) CompressionOpts() compress.CompressionOpts {
	id, _ := compress.ParseCompressor(c.Compression.Compressor)
	opts := compress.CompressionOpts{
		Compressor: id,
		ZlibLevel:  compress.DefaultZlibLevel,
		ZstdLevel:  compress.DefaultZstdLevel,
	}
	if c.Compression.ZlibLevel != nil {
		opts.ZlibLevel = *c.Compression.ZlibLevel
	}
	if c.Compression.ZstdLevel != nil {
		opts.ZstdLevel = *c.Compression.ZstdLevel
	}
	return opts
}

// ConfigureLogger applies the [log] table to log.
func (c *Config) ConfigureLogger(log *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	switch c.Log.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return nil
}
