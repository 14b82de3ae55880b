// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"github.com/ikmak/bsonwire/bson/bsonoptions"
	"github.com/ikmak/bsonwire/x/bsonx/bsoncore"
	"github.com/pkg/errors"
)

// errSizeMismatch means the write pass disagreed with the size pass. It indicates a bug in this
// package rather than bad input.
var errSizeMismatch = errors.New("bson: encoded length does not match the calculated size")

// Serialize encodes v as a BSON document. v may be a *Document, *Array, Value, D, M, A, map,
// struct or anything else ValueOf accepts that yields a document or array.
//
// The size of the result is calculated first, with every validation applied, so no bytes are
// produced for invalid input.
func Serialize(v interface{}, opts ...*bsonoptions.SerializeOptions) ([]byte, error) {
	so := bsonoptions.MergeSerializeOptions(opts...)
	root, err := topLevel(v, so)
	if err != nil {
		return nil, err
	}

	size, err := newEncodeState(so, true).sizeTop(root)
	if err != nil {
		return nil, err
	}

	dst, err := newEncodeState(so, false).appendValue(make([]byte, 0, size), root, 0)
	if err != nil {
		return nil, err
	}
	if len(dst) != size {
		return nil, errSizeMismatch
	}
	return dst, nil
}

// SerializeInto encodes v into dst starting at offset and returns the offset just past the
// written document. If dst cannot hold the document an ErrTooSmall is returned and dst is left
// untouched.
func SerializeInto(dst []byte, v interface{}, offset int, opts ...*bsonoptions.SerializeOptions) (int, error) {
	if offset < 0 || offset > len(dst) {
		return 0, NewErrTooSmall()
	}

	so := bsonoptions.MergeSerializeOptions(opts...)
	root, err := topLevel(v, so)
	if err != nil {
		return 0, err
	}

	size, err := newEncodeState(so, true).sizeTop(root)
	if err != nil {
		return 0, err
	}
	if len(dst)-offset < size {
		return 0, NewErrTooSmall()
	}

	// The three-index slice pins capacity so append never reallocates away from dst.
	out, err := newEncodeState(so, false).appendValue(dst[offset:offset:offset+size], root, 0)
	if err != nil {
		return 0, err
	}
	if len(out) != size {
		return 0, errSizeMismatch
	}
	return offset + size, nil
}

func (es *encodeState) appendDocument(dst []byte, doc *Document, depth int) ([]byte, error) {
	if doc == nil {
		idx, dst := bsoncore.ReserveLength(dst)
		return bsoncore.AppendDocumentEnd(dst, idx), nil
	}
	if err := es.enter(doc, depth); err != nil {
		return dst, err
	}
	defer es.leave(doc)

	idx, dst := bsoncore.ReserveLength(dst)
	for _, elem := range doc.elems {
		if es.omit(elem.Value) {
			continue
		}
		dst = bsoncore.AppendHeader(dst, elem.Value.t, elem.Key)
		var err error
		dst, err = es.appendValue(dst, elem.Value, depth+1)
		if err != nil {
			return dst, errors.Wrapf(err, "key %q", elem.Key)
		}
	}
	return bsoncore.AppendDocumentEnd(dst, idx), nil
}

func (es *encodeState) appendArray(dst []byte, arr *Array, depth int) ([]byte, error) {
	if arr == nil {
		idx, dst := bsoncore.ReserveLength(dst)
		return bsoncore.AppendDocumentEnd(dst, idx), nil
	}
	if err := es.enter(arr, depth); err != nil {
		return dst, err
	}
	defer es.leave(arr)

	idx, dst := bsoncore.ReserveLength(dst)
	for i, val := range arr.values {
		dst = bsoncore.AppendIndexHeader(dst, val.t, i)
		var err error
		dst, err = es.appendValue(dst, val, depth+1)
		if err != nil {
			return dst, errors.Wrapf(err, "index %d", i)
		}
	}
	return bsoncore.AppendDocumentEnd(dst, idx), nil
}

// appendValue appends the payload of v, excluding its type byte and key.
func (es *encodeState) appendValue(dst []byte, v Value, depth int) ([]byte, error) {
	switch v.t {
	case TypeDouble:
		return bsoncore.AppendDouble(dst, v.Double()), nil
	case TypeString, TypeJavaScript, TypeSymbol:
		return bsoncore.AppendString(dst, v.str), nil
	case TypeEmbeddedDocument:
		switch p := v.primitive.(type) {
		case *Document:
			return es.appendDocument(dst, p, depth)
		case DBRef:
			if p.Fields != nil {
				if err := es.enter(p.Fields, depth); err != nil {
					return dst, err
				}
				defer es.leave(p.Fields)
			}
			return es.appendDocument(dst, p.Document(), depth)
		case Raw:
			return append(dst, p...), nil
		}
	case TypeArray:
		switch p := v.primitive.(type) {
		case *Array:
			return es.appendArray(dst, p, depth)
		case Raw:
			return append(dst, p...), nil
		}
	case TypeBinary:
		b := v.Binary()
		return bsoncore.AppendBinary(dst, b.Subtype, b.Data), nil
	case TypeUndefined, TypeNull, TypeMinKey, TypeMaxKey:
		return dst, nil
	case TypeObjectID:
		return bsoncore.AppendObjectID(dst, v.ObjectID()), nil
	case TypeBoolean:
		return bsoncore.AppendBoolean(dst, v.Boolean()), nil
	case TypeDateTime:
		return bsoncore.AppendDateTime(dst, v.DateTime()), nil
	case TypeRegex:
		r := v.Regex()
		options, err := normalizeRegexOptions(r.Options)
		if err != nil {
			return dst, err
		}
		return bsoncore.AppendRegex(dst, r.Pattern, options), nil
	case TypeDBPointer:
		p := v.DBPointer()
		return bsoncore.AppendDBPointer(dst, p.DB, p.Pointer), nil
	case TypeCodeWithScope:
		cws := v.CodeWithScope()
		idx, dst := bsoncore.AppendCodeWithScopeStart(dst, cws.Code)
		dst, err := es.appendDocument(dst, cws.Scope, depth)
		if err != nil {
			return dst, err
		}
		return bsoncore.UpdateLength(dst, idx, int32(len(dst)-int(idx))), nil
	case TypeInt32:
		return bsoncore.AppendInt32(dst, v.Int32()), nil
	case TypeTimestamp:
		ts := v.Timestamp()
		return bsoncore.AppendTimestamp(dst, ts.T, ts.I), nil
	case TypeInt64:
		return bsoncore.AppendInt64(dst, v.Int64()), nil
	case TypeDecimal128:
		h, l := v.Decimal128().GetBytes()
		return bsoncore.AppendDecimal128(dst, h, l), nil
	}
	return dst, errors.Wrapf(ErrUnsupportedValue, "cannot encode %s", v)
}
