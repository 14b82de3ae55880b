// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonoptions

var (
	defaultPromoteLongs                     = true
	defaultPromoteValues                    = true
	defaultPromoteBuffers                   = false
	defaultBSONRegExp                       = false
	defaultAllowObjectSmallerThanBufferSize = false
	defaultValidateUTF8                     = true
	defaultIndex                            = 0
)

// DeserializeOptions represents all possible options for deserializing BSON.
type DeserializeOptions struct {
	PromoteLongs                     *bool           // Specifies if int64 values within ±2^53 decode as generic numbers. Defaults to true.
	PromoteValues                    *bool           // Specifies if wrapper types may be promoted at all. Defaults to true.
	PromoteBuffers                   *bool           // Specifies if binary values decode as generic byte slices. Defaults to false.
	FieldsAsRaw                      map[string]bool // Names the document or array fields kept as raw bytes.
	BSONRegExp                       *bool           // Specifies if regexes stay in their wire form only. Defaults to false.
	AllowObjectSmallerThanBufferSize *bool           // Specifies if the buffer may extend past the top-level document. Defaults to false.
	ValidateUTF8                     *bool           // Specifies if strings and keys must be valid UTF-8. Defaults to true.
	MaxDepth                         *int            // Specifies the maximum nesting depth. Defaults to 2048.
	Index                            *int            // Specifies the offset of the document in the buffer. Defaults to 0.
}

// Deserialize creates a new *DeserializeOptions
func Deserialize() *DeserializeOptions {
	return &DeserializeOptions{}
}

// SetPromoteLongs specifies if int64 values within ±2^53 decode as generic numbers. Defaults to true.
func (d *DeserializeOptions) SetPromoteLongs(b bool) *DeserializeOptions {
	d.PromoteLongs = &b
	return d
}

// SetPromoteValues specifies if wrapper types may be promoted at all. When false every value keeps
// its exact BSON type. Defaults to true.
func (d *DeserializeOptions) SetPromoteValues(b bool) *DeserializeOptions {
	d.PromoteValues = &b
	return d
}

// SetPromoteBuffers specifies if binary values decode as generic byte slices. Defaults to false.
func (d *DeserializeOptions) SetPromoteBuffers(b bool) *DeserializeOptions {
	d.PromoteBuffers = &b
	return d
}

// SetFieldsAsRaw names the document or array fields that are kept as raw bytes.
func (d *DeserializeOptions) SetFieldsAsRaw(fields ...string) *DeserializeOptions {
	d.FieldsAsRaw = make(map[string]bool, len(fields))
	for _, f := range fields {
		d.FieldsAsRaw[f] = true
	}
	return d
}

// SetBSONRegExp specifies if regexes stay in their wire form only, without a compiled Go regexp.
// Defaults to false.
func (d *DeserializeOptions) SetBSONRegExp(b bool) *DeserializeOptions {
	d.BSONRegExp = &b
	return d
}

// SetAllowObjectSmallerThanBufferSize specifies if the buffer may extend past the top-level
// document. Defaults to false.
func (d *DeserializeOptions) SetAllowObjectSmallerThanBufferSize(b bool) *DeserializeOptions {
	d.AllowObjectSmallerThanBufferSize = &b
	return d
}

// SetValidateUTF8 specifies if strings and keys must be valid UTF-8. Defaults to true.
func (d *DeserializeOptions) SetValidateUTF8(b bool) *DeserializeOptions {
	d.ValidateUTF8 = &b
	return d
}

// SetMaxDepth specifies the maximum nesting depth. Defaults to 2048.
func (d *DeserializeOptions) SetMaxDepth(i int) *DeserializeOptions {
	d.MaxDepth = &i
	return d
}

// SetIndex specifies the offset of the document in the buffer. Defaults to 0.
func (d *DeserializeOptions) SetIndex(i int) *DeserializeOptions {
	d.Index = &i
	return d
}

// MergeDeserializeOptions combines the given *DeserializeOptions into a single *DeserializeOptions
// in a last one wins fashion. Every pointer field of the result is set.
func MergeDeserializeOptions(opts ...*DeserializeOptions) *DeserializeOptions {
	promoteLongs, promoteValues, promoteBuffers := defaultPromoteLongs, defaultPromoteValues, defaultPromoteBuffers
	bsonRegExp, allowSmaller := defaultBSONRegExp, defaultAllowObjectSmallerThanBufferSize
	validateUTF8, maxDepth, index := defaultValidateUTF8, defaultMaxDepth, defaultIndex
	d := &DeserializeOptions{
		PromoteLongs:                     &promoteLongs,
		PromoteValues:                    &promoteValues,
		PromoteBuffers:                   &promoteBuffers,
		BSONRegExp:                       &bsonRegExp,
		AllowObjectSmallerThanBufferSize: &allowSmaller,
		ValidateUTF8:                     &validateUTF8,
		MaxDepth:                         &maxDepth,
		Index:                            &index,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.PromoteLongs != nil {
			d.PromoteLongs = opt.PromoteLongs
		}
		if opt.PromoteValues != nil {
			d.PromoteValues = opt.PromoteValues
		}
		if opt.PromoteBuffers != nil {
			d.PromoteBuffers = opt.PromoteBuffers
		}
		if opt.FieldsAsRaw != nil {
			d.FieldsAsRaw = opt.FieldsAsRaw
		}
		if opt.BSONRegExp != nil {
			d.BSONRegExp = opt.BSONRegExp
		}
		if opt.AllowObjectSmallerThanBufferSize != nil {
			d.AllowObjectSmallerThanBufferSize = opt.AllowObjectSmallerThanBufferSize
		}
		if opt.ValidateUTF8 != nil {
			d.ValidateUTF8 = opt.ValidateUTF8
		}
		if opt.MaxDepth != nil {
			d.MaxDepth = opt.MaxDepth
		}
		if opt.Index != nil {
			d.Index = opt.Index
		}
	}

	return d
}
