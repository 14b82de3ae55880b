// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"unicode/utf8"

	"github.com/ikmak/bsonwire/bson/bsonoptions"
	"github.com/ikmak/bsonwire/x/bsonx/bsoncore"
	"github.com/pkg/errors"
)

// minCodeWithScopeSize is the total length of a code with scope value holding an empty code
// string and an empty scope: 4 (total) + 4 (string length) + 1 (string null) + 5 (scope).
const minCodeWithScopeSize = 14

// Deserialize decodes the BSON document that starts at the configured Index of b. The buffer
// must end exactly where the document ends unless AllowObjectSmallerThanBufferSize is set.
func Deserialize(b []byte, opts ...*bsonoptions.DeserializeOptions) (Value, error) {
	do := bsonoptions.MergeDeserializeOptions(opts...)
	d := newDecoder(do)
	doc, err := d.top(b, *do.Index, *do.AllowObjectSmallerThanBufferSize)
	if err != nil {
		return Value{}, err
	}
	return d.readDocument(doc, 0)
}

// DeserializeArray decodes a top-level document as an array, reading its values positionally.
func DeserializeArray(b []byte, opts ...*bsonoptions.DeserializeOptions) (*Array, error) {
	do := bsonoptions.MergeDeserializeOptions(opts...)
	d := newDecoder(do)
	doc, err := d.top(b, *do.Index, *do.AllowObjectSmallerThanBufferSize)
	if err != nil {
		return nil, err
	}
	return d.readArray(doc, 0)
}

// DeserializeStream decodes numberOfDocuments consecutive documents from data starting at
// startIndex and stores them in documents starting at docStartIndex. It returns the offset just
// past the last document read. On error documents is left untouched.
func DeserializeStream(data []byte, startIndex, numberOfDocuments int, documents []Value, docStartIndex int,
	opts ...*bsonoptions.DeserializeOptions) (int, error) {

	if numberOfDocuments < 0 || docStartIndex < 0 || docStartIndex+numberOfDocuments > len(documents) {
		return 0, NewErrTooSmall()
	}

	d := newDecoder(bsonoptions.MergeDeserializeOptions(opts...))
	decoded := make([]Value, 0, numberOfDocuments)
	index := startIndex
	for i := 0; i < numberOfDocuments; i++ {
		doc, err := d.top(data, index, true)
		if err != nil {
			return 0, errors.Wrapf(err, "document %d at offset %d", i, index)
		}
		val, err := d.readDocument(doc, 0)
		if err != nil {
			return 0, errors.Wrapf(err, "document %d at offset %d", i, index)
		}
		decoded = append(decoded, val)
		index += len(doc)
	}
	copy(documents[docStartIndex:], decoded)
	return index, nil
}

type decoder struct {
	promoteLongs   bool
	promoteValues  bool
	promoteBuffers bool
	bsonRegExp     bool
	validateUTF8   bool
	fieldsAsRaw    map[string]bool
	maxDepth       int
}

func newDecoder(do *bsonoptions.DeserializeOptions) *decoder {
	return &decoder{
		promoteLongs:   *do.PromoteLongs,
		promoteValues:  *do.PromoteValues,
		promoteBuffers: *do.PromoteBuffers,
		bsonRegExp:     *do.BSONRegExp,
		validateUTF8:   *do.ValidateUTF8,
		fieldsAsRaw:    do.FieldsAsRaw,
		maxDepth:       *do.MaxDepth,
	}
}

// top validates the header of the document at index and returns exactly its bytes.
func (d *decoder) top(b []byte, index int, allowSmaller bool) ([]byte, error) {
	if index < 0 || index > len(b) {
		return nil, errors.Wrapf(ErrInvalidSize, "index %d outside a buffer of %d bytes", index, len(b))
	}
	b = b[index:]
	if len(b) < 5 {
		return nil, errors.Wrapf(ErrInvalidSize, "buffer of %d bytes", len(b))
	}
	length, _, _ := bsoncore.ReadLength(b)
	if length < 5 {
		return nil, errors.Wrapf(ErrInvalidSize, "declared size %d", length)
	}
	if int(length) > len(b) {
		return nil, errors.Wrapf(ErrInvalidSize, "declared size %d exceeds the %d bytes available", length, len(b))
	}
	if !allowSmaller && int(length) != len(b) {
		return nil, errors.Wrapf(ErrInvalidSize, "declared size %d does not match the buffer length %d", length, len(b))
	}
	if b[length-1] != 0x00 {
		return nil, ErrMissingTerminator
	}
	return b[:length], nil
}

// readDocument decodes doc, whose length prefix already matches len(doc), and applies DBRef
// promotion.
func (d *decoder) readDocument(doc []byte, depth int) (Value, error) {
	if depth > d.maxDepth {
		return Value{}, ErrMaxDepthExceeded
	}
	out := NewDocument()
	err := d.readElements(doc, false, depth, func(key string, val Value) { out.Append(key, val) })
	if err != nil {
		return Value{}, err
	}
	if ref, ok := promoteDBRef(out); ok {
		return VC.DBRef(ref), nil
	}
	return VC.Document(out), nil
}

// readArray decodes doc as an array. Keys are skipped without being interpreted.
func (d *decoder) readArray(doc []byte, depth int) (*Array, error) {
	if depth > d.maxDepth {
		return nil, ErrMaxDepthExceeded
	}
	out := NewArray()
	err := d.readElements(doc, true, depth, func(_ string, val Value) { out.Append(val) })
	if err != nil {
		return nil, err
	}
	return out, nil
}

func corrupt(isArray bool) error {
	if isArray {
		return ErrCorruptArray
	}
	return ErrCorruptDocument
}

func (d *decoder) readElements(doc []byte, isArray bool, depth int, add func(string, Value)) error {
	if doc[len(doc)-1] != 0x00 {
		return corrupt(isArray)
	}

	rem := doc[4:]
	for {
		t, r, ok := bsoncore.ReadType(rem)
		if !ok {
			return corrupt(isArray)
		}
		rem = r
		if t == 0 {
			break
		}

		rawKey, r, ok := bsoncore.ReadCString(rem)
		if !ok {
			return corrupt(isArray)
		}
		rem = r

		var key string
		if !isArray {
			if d.validateUTF8 && !utf8.Valid(rawKey) {
				return errors.Wrapf(ErrInvalidUTF8, "key %q", rawKey)
			}
			key = string(rawKey)
		}

		val, r, err := d.readValue(t, key, rem, depth)
		if err != nil {
			if isArray {
				return errors.Wrapf(err, "index %s", rawKey)
			}
			return errors.Wrapf(err, "key %q", key)
		}
		rem = r
		add(key, val)
	}

	// The terminator must be the final byte of the document.
	if len(rem) != 0 {
		return corrupt(isArray)
	}
	return nil
}

// readString reads a length prefixed string. The length includes the trailing null byte.
func (d *decoder) readString(src []byte) (string, []byte, error) {
	length, rem, ok := bsoncore.ReadLength(src)
	if !ok || length <= 0 || int(length) > len(rem) || rem[length-1] != 0x00 {
		return "", src, ErrInvalidStringLength
	}
	b := rem[:length-1]
	if d.validateUTF8 && !utf8.Valid(b) {
		return "", src, ErrInvalidUTF8
	}
	return string(b), rem[length:], nil
}

func (d *decoder) readCString(src []byte) (string, []byte, error) {
	b, rem, ok := bsoncore.ReadCString(src)
	if !ok {
		return "", src, ErrCorruptDocument
	}
	if d.validateUTF8 && !utf8.Valid(b) {
		return "", src, ErrInvalidUTF8
	}
	return string(b), rem, nil
}

// readEmbedded slices an embedded document or array off src.
func readEmbedded(src []byte, isArray bool) ([]byte, []byte, error) {
	length, _, ok := bsoncore.ReadLength(src)
	if !ok || length < 5 || int(length) > len(src) {
		return nil, src, corrupt(isArray)
	}
	return src[:length], src[length:], nil
}

func (d *decoder) readValue(t Type, key string, src []byte, depth int) (Value, []byte, error) {
	switch t {
	case TypeDouble:
		f, rem, ok := bsoncore.ReadDouble(src)
		if !ok {
			return Value{}, src, ErrCorruptDocument
		}
		return VC.Double(f), rem, nil
	case TypeString:
		s, rem, err := d.readString(src)
		if err != nil {
			return Value{}, src, err
		}
		return VC.String(s), rem, nil
	case TypeEmbeddedDocument:
		doc, rem, err := readEmbedded(src, false)
		if err != nil {
			return Value{}, src, err
		}
		if d.fieldsAsRaw[key] {
			return VC.RawDocument(copyBytes(doc)), rem, nil
		}
		val, err := d.readDocument(doc, depth+1)
		if err != nil {
			return Value{}, src, err
		}
		return val, rem, nil
	case TypeArray:
		doc, rem, err := readEmbedded(src, true)
		if err != nil {
			return Value{}, src, err
		}
		if d.fieldsAsRaw[key] {
			return VC.RawArray(copyBytes(doc)), rem, nil
		}
		arr, err := d.readArray(doc, depth+1)
		if err != nil {
			return Value{}, src, err
		}
		return VC.Array(arr), rem, nil
	case TypeBinary:
		return d.readBinary(src)
	case TypeUndefined:
		return VC.Undefined(), src, nil
	case TypeObjectID:
		oid, rem, ok := bsoncore.ReadObjectID(src)
		if !ok {
			return Value{}, src, ErrCorruptDocument
		}
		return VC.ObjectID(oid), rem, nil
	case TypeBoolean:
		if len(src) < 1 {
			return Value{}, src, ErrCorruptDocument
		}
		switch src[0] {
		case 0x00:
			return VC.Boolean(false), src[1:], nil
		case 0x01:
			return VC.Boolean(true), src[1:], nil
		default:
			return Value{}, src, errors.Wrapf(ErrInvalidBoolean, "byte 0x%02x", src[0])
		}
	case TypeDateTime:
		dt, rem, ok := bsoncore.ReadInt64(src)
		if !ok {
			return Value{}, src, ErrCorruptDocument
		}
		return VC.DateTime(dt), rem, nil
	case TypeNull:
		return VC.Null(), src, nil
	case TypeRegex:
		pattern, rem, err := d.readCString(src)
		if err != nil {
			return Value{}, src, err
		}
		options, rem, err := d.readCString(rem)
		if err != nil {
			return Value{}, src, err
		}
		if !d.bsonRegExp {
			if re, err := compileRegex(pattern, options); err == nil {
				return Value{t: TypeRegex, primitive: nativeRegex{Regex: Regex{Pattern: pattern, Options: options}, re: re}}, rem, nil
			}
		}
		return VC.Regex(pattern, options), rem, nil
	case TypeDBPointer:
		ns, rem, err := d.readString(src)
		if err != nil {
			return Value{}, src, err
		}
		oid, rem, ok := bsoncore.ReadObjectID(rem)
		if !ok {
			return Value{}, src, ErrCorruptDocument
		}
		return VC.DBPointer(ns, oid), rem, nil
	case TypeJavaScript:
		code, rem, err := d.readString(src)
		if err != nil {
			return Value{}, src, err
		}
		return VC.JavaScript(code), rem, nil
	case TypeSymbol:
		sym, rem, err := d.readString(src)
		if err != nil {
			return Value{}, src, err
		}
		return VC.Symbol(sym), rem, nil
	case TypeCodeWithScope:
		return d.readCodeWithScope(src, depth)
	case TypeInt32:
		i32, rem, ok := bsoncore.ReadInt32(src)
		if !ok {
			return Value{}, src, ErrCorruptDocument
		}
		return VC.Int32(i32), rem, nil
	case TypeTimestamp:
		ts, ti, rem, ok := bsoncore.ReadTimestamp(src)
		if !ok {
			return Value{}, src, ErrCorruptDocument
		}
		return VC.Timestamp(ts, ti), rem, nil
	case TypeInt64:
		i64, rem, ok := bsoncore.ReadInt64(src)
		if !ok {
			return Value{}, src, ErrCorruptDocument
		}
		if d.promoteValues && d.promoteLongs && i64 >= minSafeInteger && i64 <= maxSafeInteger {
			return numberFromInt(i64), rem, nil
		}
		return VC.Int64(i64), rem, nil
	case TypeDecimal128:
		h, l, rem, ok := bsoncore.ReadDecimal128(src)
		if !ok {
			return Value{}, src, ErrCorruptDocument
		}
		return VC.Decimal128(NewDecimal128(h, l)), rem, nil
	case TypeMinKey:
		return VC.MinKey(), src, nil
	case TypeMaxKey:
		return VC.MaxKey(), src, nil
	default:
		return Value{}, src, errors.Wrapf(ErrUnknownElementType, "type 0x%02x", byte(t))
	}
}

func (d *decoder) readBinary(src []byte) (Value, []byte, error) {
	length, rem, ok := bsoncore.ReadLength(src)
	if !ok || length < 0 || len(rem) < 1 || int(length) > len(rem)-1 {
		return Value{}, src, ErrCorruptDocument
	}
	subtype := rem[0]
	rem = rem[1:]
	data := rem[:length]
	rem = rem[length:]

	if subtype == TypeBinaryBinaryOld {
		inner, payload, ok := bsoncore.ReadLength(data)
		if !ok {
			return Value{}, src, errors.Wrapf(ErrInvalidBinarySubtypeLength, "outer %d too short for an inner length", length)
		}
		if inner < 0 {
			return Value{}, src, errors.Wrapf(ErrInvalidBinarySubtypeLength, "inner %d", inner)
		}
		if int(inner) != len(data)-4 {
			return Value{}, src, errors.Wrapf(ErrInvalidBinarySubtypeLength, "inner %d, outer %d", inner, length)
		}
		data = payload
	}

	if d.promoteValues && d.promoteBuffers {
		return VC.Binary(copyBytes(data)), rem, nil
	}
	return VC.BinaryWithSubtype(copyBytes(data), subtype), rem, nil
}

func (d *decoder) readCodeWithScope(src []byte, depth int) (Value, []byte, error) {
	total, _, ok := bsoncore.ReadLength(src)
	if !ok || total < minCodeWithScopeSize || int(total) > len(src) {
		return Value{}, src, errors.Wrapf(ErrCorruptDocument, "code with scope size %d", total)
	}
	body := src[4:total]

	code, rem, err := d.readString(body)
	if err != nil {
		return Value{}, src, err
	}
	scopeBytes, rem, err := readEmbedded(rem, false)
	if err != nil {
		return Value{}, src, err
	}
	if len(rem) != 0 {
		return Value{}, src, errors.Wrap(ErrCorruptDocument, "code with scope size does not match its contents")
	}
	if depth+1 > d.maxDepth {
		return Value{}, src, ErrMaxDepthExceeded
	}

	// The scope is a plain document; DBRef promotion does not apply to it.
	scope := NewDocument()
	err = d.readElements(scopeBytes, false, depth+1, func(key string, val Value) { scope.Append(key, val) })
	if err != nil {
		return Value{}, src, err
	}
	return VC.CodeWithScope(code, scope), src[total:], nil
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
