// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"strings"

	"github.com/ikmak/bsonwire/bson/bsonoptions"
	"github.com/ikmak/bsonwire/x/bsonx/bsoncore"
	"github.com/pkg/errors"
)

// CalculateSize returns the number of bytes Serialize would produce for v. Depth, cycles, regex
// options and the maximum document size are checked; the key policy and UTF-8 validity are only
// enforced by Serialize.
func CalculateSize(v interface{}, opts ...*bsonoptions.SerializeOptions) (int, error) {
	so := bsonoptions.MergeSerializeOptions(opts...)
	root, err := topLevel(v, so)
	if err != nil {
		return 0, err
	}
	return newEncodeState(so, false).sizeTop(root)
}

// encodeState carries the per-call state of a size or write pass.
type encodeState struct {
	checkKeys       bool
	ignoreUndefined bool
	validate        bool
	maxDepth        int

	// ancestors holds the documents and arrays on the current path, keyed by identity.
	ancestors map[interface{}]struct{}
}

func newEncodeState(so *bsonoptions.SerializeOptions, validate bool) *encodeState {
	return &encodeState{
		checkKeys:       *so.CheckKeys,
		ignoreUndefined: *so.IgnoreUndefined,
		validate:        validate,
		maxDepth:        *so.MaxDepth,
		ancestors:       make(map[interface{}]struct{}),
	}
}

// enter pushes container onto the ancestor set.
func (es *encodeState) enter(container interface{}, depth int) error {
	if depth > es.maxDepth {
		return ErrMaxDepthExceeded
	}
	if _, ok := es.ancestors[container]; ok {
		return ErrCyclicStructure
	}
	es.ancestors[container] = struct{}{}
	return nil
}

func (es *encodeState) leave(container interface{}) { delete(es.ancestors, container) }

// omit reports whether a document element is left out of the encoding.
func (es *encodeState) omit(v Value) bool {
	return es.ignoreUndefined && v.t == TypeUndefined
}

// topLevel converts v and checks that it can be the root of an encoding.
func topLevel(v interface{}, so *bsonoptions.SerializeOptions) (Value, error) {
	root, err := valueOf(v, so)
	if err != nil {
		return Value{}, err
	}
	switch root.t {
	case TypeEmbeddedDocument, TypeArray:
		return root, nil
	default:
		return Value{}, errors.Wrapf(ErrUnsupportedValue, "top-level value must be a document, got %s", root.t)
	}
}

func (es *encodeState) sizeTop(root Value) (int, error) {
	size, err := es.sizeValue(root, 0)
	if err != nil {
		return 0, err
	}
	if size > math.MaxInt32 {
		return 0, ErrDocumentTooLarge
	}
	return size, nil
}

func (es *encodeState) sizeDocument(doc *Document, depth int) (int, error) {
	if doc == nil {
		return 5, nil
	}
	if err := es.enter(doc, depth); err != nil {
		return 0, err
	}
	defer es.leave(doc)

	size := 4 + 1
	for _, elem := range doc.elems {
		if es.omit(elem.Value) {
			continue
		}
		if es.validate {
			if err := validateKey(elem.Key, es.checkKeys); err != nil {
				return 0, err
			}
		}
		n, err := es.sizeValue(elem.Value, depth+1)
		if err != nil {
			return 0, errors.Wrapf(err, "key %q", elem.Key)
		}
		size += 1 + len(elem.Key) + 1 + n
		if size > math.MaxInt32 {
			return 0, ErrDocumentTooLarge
		}
	}
	return size, nil
}

func (es *encodeState) sizeArray(arr *Array, depth int) (int, error) {
	if arr == nil {
		return 5, nil
	}
	if err := es.enter(arr, depth); err != nil {
		return 0, err
	}
	defer es.leave(arr)

	size := 4 + 1
	for idx, val := range arr.values {
		n, err := es.sizeValue(val, depth+1)
		if err != nil {
			return 0, errors.Wrapf(err, "index %d", idx)
		}
		size += 1 + bsoncore.IndexLength(idx) + 1 + n
		if size > math.MaxInt32 {
			return 0, ErrDocumentTooLarge
		}
	}
	return size, nil
}

func (es *encodeState) sizeString(s string) (int, error) {
	if es.validate {
		if err := validateString(s); err != nil {
			return 0, err
		}
	}
	return 4 + len(s) + 1, nil
}

// sizeValue returns the payload size of v, excluding its type byte and key.
func (es *encodeState) sizeValue(v Value, depth int) (int, error) {
	switch v.t {
	case TypeDouble, TypeDateTime, TypeTimestamp, TypeInt64:
		return 8, nil
	case TypeInt32:
		return 4, nil
	case TypeBoolean:
		return 1, nil
	case TypeObjectID:
		return 12, nil
	case TypeDecimal128:
		return 16, nil
	case TypeUndefined, TypeNull, TypeMinKey, TypeMaxKey:
		return 0, nil
	case TypeString, TypeJavaScript, TypeSymbol:
		return es.sizeString(v.str)
	case TypeEmbeddedDocument:
		switch p := v.primitive.(type) {
		case *Document:
			return es.sizeDocument(p, depth)
		case DBRef:
			return es.sizeDBRef(p, depth)
		case Raw:
			if err := p.Validate(); err != nil {
				return 0, err
			}
			return len(p), nil
		}
	case TypeArray:
		switch p := v.primitive.(type) {
		case *Array:
			return es.sizeArray(p, depth)
		case Raw:
			if err := p.Validate(); err != nil {
				return 0, err
			}
			return len(p), nil
		}
	case TypeBinary:
		b := v.Binary()
		if b.Subtype == TypeBinaryBinaryOld {
			return 4 + 1 + 4 + len(b.Data), nil
		}
		return 4 + 1 + len(b.Data), nil
	case TypeRegex:
		r := v.Regex()
		if strings.IndexByte(r.Pattern, 0x00) >= 0 {
			return 0, ErrNullBytesInPattern
		}
		if es.validate {
			if err := validateString(r.Pattern); err != nil {
				return 0, err
			}
		}
		options, err := normalizeRegexOptions(r.Options)
		if err != nil {
			return 0, err
		}
		return len(r.Pattern) + 1 + len(options) + 1, nil
	case TypeDBPointer:
		n, err := es.sizeString(v.DBPointer().DB)
		if err != nil {
			return 0, err
		}
		return n + 12, nil
	case TypeCodeWithScope:
		cws := v.CodeWithScope()
		code, err := es.sizeString(cws.Code)
		if err != nil {
			return 0, err
		}
		scope, err := es.sizeDocument(cws.Scope, depth)
		if err != nil {
			return 0, err
		}
		return 4 + code + scope, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedValue, "cannot encode %s", v)
}

// sizeDBRef sizes the document form of r. Its extra fields are tracked as an ancestor so a DBRef
// nested in its own fields is reported as a cycle.
func (es *encodeState) sizeDBRef(r DBRef, depth int) (int, error) {
	if r.Fields != nil {
		if err := es.enter(r.Fields, depth); err != nil {
			return 0, err
		}
		defer es.leave(r.Fields)
	}
	return es.sizeDocument(r.Document(), depth)
}
