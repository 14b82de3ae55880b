// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonoptions

// DefaultMaxDepth is the nesting depth allowed when MaxDepth is not set.
const DefaultMaxDepth = 2048

var (
	defaultCheckKeys          = false
	defaultSerializeFunctions = false
	defaultIgnoreUndefined    = true
	defaultMaxDepth           = DefaultMaxDepth
)

// SerializeOptions represents all possible options for serializing a value to BSON.
type SerializeOptions struct {
	CheckKeys          *bool // Specifies if keys starting with '$' or containing '.' are rejected. Defaults to false.
	SerializeFunctions *bool // Specifies if Go funcs are written as JavaScript code. Defaults to false.
	IgnoreUndefined    *bool // Specifies if undefined document fields are omitted. Defaults to true.
	MaxDepth           *int  // Specifies the maximum nesting depth. Defaults to 2048.
}

// Serialize creates a new *SerializeOptions
func Serialize() *SerializeOptions {
	return &SerializeOptions{}
}

// SetCheckKeys specifies if keys starting with '$' or containing '.' are rejected. The DBRef keys
// $ref, $id and $db are always allowed. Defaults to false.
func (s *SerializeOptions) SetCheckKeys(b bool) *SerializeOptions {
	s.CheckKeys = &b
	return s
}

// SetSerializeFunctions specifies if Go funcs are written as JavaScript code. Defaults to false.
func (s *SerializeOptions) SetSerializeFunctions(b bool) *SerializeOptions {
	s.SerializeFunctions = &b
	return s
}

// SetIgnoreUndefined specifies if undefined document fields are omitted. Array slots are always
// kept. Defaults to true.
func (s *SerializeOptions) SetIgnoreUndefined(b bool) *SerializeOptions {
	s.IgnoreUndefined = &b
	return s
}

// SetMaxDepth specifies the maximum nesting depth. Defaults to 2048.
func (s *SerializeOptions) SetMaxDepth(i int) *SerializeOptions {
	s.MaxDepth = &i
	return s
}

// MergeSerializeOptions combines the given *SerializeOptions into a single *SerializeOptions in a
// last one wins fashion. Every field of the result is set.
func MergeSerializeOptions(opts ...*SerializeOptions) *SerializeOptions {
	checkKeys, serializeFunctions := defaultCheckKeys, defaultSerializeFunctions
	ignoreUndefined, maxDepth := defaultIgnoreUndefined, defaultMaxDepth
	s := &SerializeOptions{
		CheckKeys:          &checkKeys,
		SerializeFunctions: &serializeFunctions,
		IgnoreUndefined:    &ignoreUndefined,
		MaxDepth:           &maxDepth,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.CheckKeys != nil {
			s.CheckKeys = opt.CheckKeys
		}
		if opt.SerializeFunctions != nil {
			s.SerializeFunctions = opt.SerializeFunctions
		}
		if opt.IgnoreUndefined != nil {
			s.IgnoreUndefined = opt.IgnoreUndefined
		}
		if opt.MaxDepth != nil {
			s.MaxDepth = opt.MaxDepth
		}
	}

	return s
}
