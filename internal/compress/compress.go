// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package compress compresses and decompresses whole BSON payloads for the command line tool.
package compress

import (
	"bytes"
	"compress/zlib"
	"io"
	"io/ioutil"
	"strings"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// CompressorID is the ID for each type of Compressor.
type CompressorID uint8

// These constants represent the individual compressor IDs.
const (
	CompressorNoOp CompressorID = iota
	CompressorSnappy
	CompressorZLib
	CompressorZstd
)

const (
	// DefaultZlibLevel is the default level for zlib compression
	DefaultZlibLevel = 6
	// DefaultZstdLevel is the default level for zstd compression.
	DefaultZstdLevel = 6
)

// String implements the fmt.Stringer interface.
func (id CompressorID) String() string {
	switch id {
	case CompressorNoOp:
		return "noop"
	case CompressorSnappy:
		return "snappy"
	case CompressorZLib:
		return "zlib"
	case CompressorZstd:
		return "zstd"
	default:
		return "invalid"
	}
}

// ParseCompressor returns the compressor named s. The empty string and "none" select the no-op
// compressor.
func ParseCompressor(s string) (CompressorID, error) {
	switch strings.ToLower(s) {
	case "", "none", "noop":
		return CompressorNoOp, nil
	case "snappy":
		return CompressorSnappy, nil
	case "zlib":
		return CompressorZLib, nil
	case "zstd":
		return CompressorZstd, nil
	default:
		return CompressorNoOp, errors.Errorf("unknown compressor %q", s)
	}
}

// CompressionOpts holds settings for how to compress a payload
type CompressionOpts struct {
	Compressor CompressorID
	ZlibLevel  int
	ZstdLevel  int
	// UncompressedSize preallocates the output when known. Zero reads until the end of the
	// compressed stream.
	UncompressedSize int32
}

var zstdEncoders = &sync.Map{}

func getZstdEncoder(l zstd.EncoderLevel) (*zstd.Encoder, error) {
	v, ok := zstdEncoders.Load(l)
	if ok {
		return v.(*zstd.Encoder), nil
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(l))
	if err != nil {
		return nil, err
	}
	zstdEncoders.Store(l, encoder)
	return encoder, nil
}

var zstdDecoder struct {
	once sync.Once
	dec  *zstd.Decoder
	err  error
}

func getZstdDecoder() (*zstd.Decoder, error) {
	zstdDecoder.once.Do(func() {
		zstdDecoder.dec, zstdDecoder.err = zstd.NewReader(nil)
	})
	return zstdDecoder.dec, zstdDecoder.err
}

// CompressPayload takes a byte slice and compresses it according to the options passed
func CompressPayload(in []byte, opts CompressionOpts) ([]byte, error) {
	switch opts.Compressor {
	case CompressorNoOp:
		return in, nil
	case CompressorSnappy:
		return snappy.Encode(nil, in), nil
	case CompressorZLib:
		var b bytes.Buffer
		w, err := zlib.NewWriterLevel(&b, opts.ZlibLevel)
		if err != nil {
			return nil, errors.Wrap(err, "zlib")
		}
		_, err = w.Write(in)
		if err != nil {
			return nil, errors.Wrap(err, "zlib")
		}
		err = w.Close()
		if err != nil {
			return nil, errors.Wrap(err, "zlib")
		}
		return b.Bytes(), nil
	case CompressorZstd:
		encoder, err := getZstdEncoder(zstd.EncoderLevelFromZstd(opts.ZstdLevel))
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		return encoder.EncodeAll(in, nil), nil
	default:
		return nil, errors.Errorf("unknown compressor ID %v", opts.Compressor)
	}
}

// DecompressPayload takes a byte slice that has been compressed and undoes it according to the options passed
func DecompressPayload(in []byte, opts CompressionOpts) ([]byte, error) {
	switch opts.Compressor {
	case CompressorNoOp:
		return in, nil
	case CompressorSnappy:
		var uncompressed []byte
		if opts.UncompressedSize > 0 {
			uncompressed = make([]byte, opts.UncompressedSize)
		}
		out, err := snappy.Decode(uncompressed, in)
		return out, errors.Wrap(err, "snappy")
	case CompressorZLib:
		decompressor, err := zlib.NewReader(bytes.NewReader(in))
		if err != nil {
			return nil, errors.Wrap(err, "zlib")
		}
		defer decompressor.Close()
		if opts.UncompressedSize <= 0 {
			out, err := ioutil.ReadAll(decompressor)
			return out, errors.Wrap(err, "zlib")
		}
		uncompressed := make([]byte, opts.UncompressedSize)
		_, err = io.ReadFull(decompressor, uncompressed)
		if err != nil {
			return nil, errors.Wrap(err, "zlib")
		}
		return uncompressed, nil
	case CompressorZstd:
		decoder, err := getZstdDecoder()
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		var dst []byte
		if opts.UncompressedSize > 0 {
			dst = make([]byte, 0, opts.UncompressedSize)
		}
		out, err := decoder.DecodeAll(in, dst)
		return out, errors.Wrap(err, "zstd")
	default:
		return nil, errors.Errorf("unknown compressor ID %v", opts.Compressor)
	}
}
