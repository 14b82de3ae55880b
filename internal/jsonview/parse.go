// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package jsonview

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/ikmak/bsonwire/bson"
	"github.com/pkg/errors"
)

// Parse reads one JSON object and converts it to a document, keeping the key order of the input.
// Plain numbers become generic numbers. The Extended JSON wrappers written by Marshal are turned
// back into their BSON types; other keys starting with '$' are kept as ordinary fields.
func Parse(data []byte) (*bson.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Errorf("expected a JSON object, got %v", tok)
	}
	v, err := parseObject(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after the top-level object")
	}
	doc, ok := v.DocumentOK()
	if !ok {
		return nil, errors.Errorf("top-level object is a %s, not a document", v.Type())
	}
	return doc, nil
}

func parseValue(dec *json.Decoder, tok json.Token) (bson.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		}
		return bson.Value{}, errors.Errorf("unexpected %v", t)
	case string:
		return bson.VC.String(t), nil
	case json.Number:
		return parseNumber(t)
	case bool:
		return bson.VC.Boolean(t), nil
	case nil:
		return bson.VC.Null(), nil
	default:
		return bson.Value{}, errors.Errorf("unexpected token %v", tok)
	}
}

func parseNumber(n json.Number) (bson.Value, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return bson.VC.Integer(i), nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return bson.Value{}, errors.Wrapf(err, "number %s", n)
	}
	return bson.VC.Number(f), nil
}

func parseArray(dec *json.Decoder) (bson.Value, error) {
	arr := bson.NewArray()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return bson.Value{}, err
		}
		v, err := parseValue(dec, tok)
		if err != nil {
			return bson.Value{}, errors.Wrapf(err, "index %d", arr.Len())
		}
		arr.Append(v)
	}
	if _, err := dec.Token(); err != nil {
		return bson.Value{}, err
	}
	return bson.VC.Array(arr), nil
}

func parseObject(dec *json.Decoder) (bson.Value, error) {
	doc := bson.NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return bson.Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return bson.Value{}, errors.Errorf("expected an object key, got %v", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return bson.Value{}, err
		}
		v, err := parseValue(dec, tok)
		if err != nil {
			return bson.Value{}, errors.Wrapf(err, "field %q", key)
		}
		doc.Append(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return bson.Value{}, err
	}

	if v, ok, err := unwrap(doc); ok || err != nil {
		return v, err
	}
	return bson.VC.Document(doc), nil
}

// unwrap converts a document holding an Extended JSON wrapper into the value it stands for.
func unwrap(doc *bson.Document) (bson.Value, bool, error) {
	keys := doc.Keys()
	if len(keys) == 0 || len(keys) > 2 || keys[0] == "" || keys[0][0] != '$' {
		return bson.Value{}, false, nil
	}
	first := doc.Index(0).Value

	if len(keys) == 2 {
		if keys[0] != "$code" || keys[1] != "$scope" {
			return bson.Value{}, false, nil
		}
		code, ok := first.StringValueOK()
		scope, ok2 := doc.Index(1).Value.DocumentOK()
		if !ok || !ok2 {
			return bson.Value{}, true, errors.New("$code with $scope needs a string and a document")
		}
		return bson.VC.CodeWithScope(code, scope), true, nil
	}

	var v bson.Value
	var err error
	switch keys[0] {
	case "$oid":
		var oid bson.ObjectID
		oid, err = bson.ObjectIDFromHex(stringOf(first))
		v = bson.VC.ObjectID(oid)
	case "$numberInt":
		var i int64
		i, err = strconv.ParseInt(stringOf(first), 10, 32)
		v = bson.VC.Int32(int32(i))
	case "$numberLong":
		var i int64
		i, err = strconv.ParseInt(stringOf(first), 10, 64)
		v = bson.VC.Int64(i)
	case "$numberDouble":
		var f float64
		f, err = parseDouble(stringOf(first))
		v = bson.VC.Double(f)
	case "$date":
		v, err = parseDate(first)
	case "$symbol":
		v = bson.VC.Symbol(stringOf(first))
	case "$code":
		v = bson.VC.JavaScript(stringOf(first))
	case "$minKey":
		v = bson.VC.MinKey()
	case "$maxKey":
		v = bson.VC.MaxKey()
	case "$undefined":
		v = bson.VC.Undefined()
	case "$regularExpression":
		sub, _ := first.DocumentOK()
		v = bson.VC.Regex(stringOf(sub.Lookup("pattern")), stringOf(sub.Lookup("options")))
	case "$binary":
		sub, _ := first.DocumentOK()
		v, err = parseBinary(sub)
	case "$timestamp":
		sub, _ := first.DocumentOK()
		t, ok := sub.Lookup("t").AsInt64()
		i, ok2 := sub.Lookup("i").AsInt64()
		if !ok || !ok2 || t < 0 || t > math.MaxUint32 || i < 0 || i > math.MaxUint32 {
			err = errors.New("fields must be unsigned 32-bit integers")
		}
		v = bson.VC.Timestamp(uint32(t), uint32(i))
	case "$dbPointer":
		sub, _ := first.DocumentOK()
		oid, ok := sub.Lookup("$id").ObjectIDOK()
		if !ok {
			err = errors.New("$id must be an ObjectId")
		}
		v = bson.VC.DBPointer(stringOf(sub.Lookup("$ref")), oid)
	default:
		return bson.Value{}, false, nil
	}
	if err != nil {
		return bson.Value{}, true, errors.Wrap(err, keys[0])
	}
	return v, true, nil
}

// stringOf returns the string v holds, or the empty string for any other type.
func stringOf(v bson.Value) string {
	s, _ := v.StringValueOK()
	return s
}

func parseDouble(s string) (float64, error) {
	switch s {
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseDate(v bson.Value) (bson.Value, error) {
	if s, ok := v.StringValueOK(); ok {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return bson.Value{}, err
		}
		return bson.VC.Time(t), nil
	}
	if ms, ok := v.AsInt64(); ok {
		return bson.VC.DateTime(ms), nil
	}
	return bson.Value{}, errors.Errorf("cannot use %s as a date", v.Type())
}

func parseBinary(sub *bson.Document) (bson.Value, error) {
	data, err := base64.StdEncoding.DecodeString(stringOf(sub.Lookup("base64")))
	if err != nil {
		return bson.Value{}, err
	}
	subtype, err := strconv.ParseUint(stringOf(sub.Lookup("subType")), 16, 8)
	if err != nil {
		return bson.Value{}, err
	}
	return bson.VC.BinaryWithSubtype(data, byte(subtype)), nil
}
