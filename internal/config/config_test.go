// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/ikmak/bsonwire/bson/bsonoptions"
	"github.com/ikmak/bsonwire/internal/compress"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[serialize]
check_keys = true
max_depth = 64

[deserialize]
promote_longs = false
bson_regexp = true
fields_as_raw = ["payload", "blob"]

[compression]
compressor = "zstd"
zstd_level = 3

[log]
level = "debug"
format = "json"
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	so := bsonoptions.MergeSerializeOptions(cfg.SerializeOptions())
	assert.True(t, *so.CheckKeys)
	assert.Equal(t, 64, *so.MaxDepth)
	assert.True(t, *so.IgnoreUndefined)
	assert.False(t, *so.SerializeFunctions)

	do := bsonoptions.MergeDeserializeOptions(cfg.DeserializeOptions())
	assert.False(t, *do.PromoteLongs)
	assert.True(t, *do.PromoteValues)
	assert.True(t, *do.BSONRegExp)
	assert.True(t, *do.ValidateUTF8)
	assert.Equal(t, map[string]bool{"payload": true, "blob": true}, do.FieldsAsRaw)

	co := cfg.CompressionOpts()
	assert.Equal(t, compress.CompressorZstd, co.Compressor)
	assert.Equal(t, 3, co.ZstdLevel)
	assert.Equal(t, compress.DefaultZlibLevel, co.ZlibLevel)

	log := logrus.New()
	require.NoError(t, cfg.ConfigureLogger(log))
	assert.Equal(t, logrus.DebugLevel, log.Level)
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	do := bsonoptions.MergeDeserializeOptions(cfg.DeserializeOptions())
	assert.True(t, *do.PromoteLongs)
	assert.Nil(t, do.FieldsAsRaw)
	assert.Equal(t, compress.CompressorNoOp, cfg.CompressionOpts().Compressor)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"syntax", "[serialize"},
		{"compressor", "[compression]\ncompressor = \"lz4\""},
		{"log level", "[log]\nlevel = \"loud\""},
		{"log format", "[log]\nformat = \"xml\""},
		{"negative depth", "[deserialize]\nmax_depth = -1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	dir, err := ioutil.TempDir("", "bsontool-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "bsontool.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte(sample), 0600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "zstd", cfg.Compression.Compressor)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
