// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package jsonview renders decoded BSON values as MongoDB Extended JSON for display.
package jsonview

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ikmak/bsonwire/bson"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

// Mode selects between the canonical and relaxed forms of Extended JSON.
type Mode int

// These constants are the supported Extended JSON modes.
const (
	Relaxed Mode = iota
	Canonical
)

// Marshal renders v as compact Extended JSON.
func Marshal(v bson.Value, mode Mode) ([]byte, error) {
	w := &writer{mode: mode}
	if err := w.value(v); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

// Indent renders v as indented Extended JSON. Short arrays stay on one line.
func Indent(v bson.Value, mode Mode) ([]byte, error) {
	b, err := Marshal(v, mode)
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(b), nil
}

// Compact strips insignificant whitespace from JSON text.
func Compact(b []byte) []byte { return pretty.Ugly(b) }

type writer struct {
	mode Mode
	buf  bytes.Buffer
}

func (w *writer) canonical() bool { return w.mode == Canonical }

func (w *writer) value(v bson.Value) error {
	switch v.Type() {
	case bson.TypeDouble:
		w.double(v.Double())
	case bson.TypeString:
		w.str(v.StringValue())
	case bson.TypeEmbeddedDocument:
		if raw, ok := v.RawOK(); ok {
			decoded, err := bson.Deserialize(raw)
			if err != nil {
				return errors.Wrap(err, "raw document")
			}
			return w.document(decoded.Document())
		}
		return w.document(v.Document())
	case bson.TypeArray:
		if raw, ok := v.RawOK(); ok {
			arr, err := bson.DeserializeArray(raw)
			if err != nil {
				return errors.Wrap(err, "raw array")
			}
			return w.array(arr)
		}
		return w.array(v.Array())
	case bson.TypeBinary:
		b := v.Binary()
		fmt.Fprintf(&w.buf, `{"$binary":{"base64":"%s","subType":"%02x"}}`,
			base64.StdEncoding.EncodeToString(b.Data), b.Subtype)
	case bson.TypeUndefined:
		w.buf.WriteString(`{"$undefined":true}`)
	case bson.TypeObjectID:
		fmt.Fprintf(&w.buf, `{"$oid":"%s"}`, v.ObjectID().Hex())
	case bson.TypeBoolean:
		w.buf.WriteString(strconv.FormatBool(v.Boolean()))
	case bson.TypeDateTime:
		w.dateTime(v.DateTime())
	case bson.TypeNull:
		w.buf.WriteString("null")
	case bson.TypeRegex:
		re := v.Regex()
		w.buf.WriteString(`{"$regularExpression":{"pattern":`)
		w.str(re.Pattern)
		w.buf.WriteString(`,"options":`)
		w.str(re.Options)
		w.buf.WriteString("}}")
	case bson.TypeDBPointer:
		p := v.DBPointer()
		w.buf.WriteString(`{"$dbPointer":{"$ref":`)
		w.str(p.DB)
		fmt.Fprintf(&w.buf, `,"$id":{"$oid":"%s"}}}`, p.Pointer.Hex())
	case bson.TypeJavaScript:
		w.buf.WriteString(`{"$code":`)
		w.str(v.JavaScript())
		w.buf.WriteByte('}')
	case bson.TypeSymbol:
		w.buf.WriteString(`{"$symbol":`)
		w.str(v.Symbol())
		w.buf.WriteByte('}')
	case bson.TypeCodeWithScope:
		cws := v.CodeWithScope()
		w.buf.WriteString(`{"$code":`)
		w.str(cws.Code)
		w.buf.WriteString(`,"$scope":`)
		if err := w.document(cws.Scope); err != nil {
			return err
		}
		w.buf.WriteByte('}')
	case bson.TypeInt32:
		if w.canonical() {
			fmt.Fprintf(&w.buf, `{"$numberInt":"%d"}`, v.Int32())
		} else {
			w.buf.WriteString(strconv.FormatInt(int64(v.Int32()), 10))
		}
	case bson.TypeTimestamp:
		ts := v.Timestamp()
		fmt.Fprintf(&w.buf, `{"$timestamp":{"t":%d,"i":%d}}`, ts.T, ts.I)
	case bson.TypeInt64:
		if w.canonical() {
			fmt.Fprintf(&w.buf, `{"$numberLong":"%d"}`, v.Int64())
		} else {
			w.buf.WriteString(strconv.FormatInt(v.Int64(), 10))
		}
	case bson.TypeDecimal128:
		fmt.Fprintf(&w.buf, `{"$numberDecimal":"%s"}`, v.Decimal128().String())
	case bson.TypeMinKey:
		w.buf.WriteString(`{"$minKey":1}`)
	case bson.TypeMaxKey:
		w.buf.WriteString(`{"$maxKey":1}`)
	default:
		return errors.Errorf("cannot render BSON type %s", v.Type())
	}
	return nil
}

func (w *writer) document(doc *bson.Document) error {
	w.buf.WriteByte('{')
	for i, elem := range doc.Elements() {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.str(elem.Key)
		w.buf.WriteByte(':')
		if err := w.value(elem.Value); err != nil {
			return errors.Wrapf(err, "field %q", elem.Key)
		}
	}
	w.buf.WriteByte('}')
	return nil
}

func (w *writer) array(arr *bson.Array) error {
	w.buf.WriteByte('[')
	for i, v := range arr.Values() {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		if err := w.value(v); err != nil {
			return errors.Wrapf(err, "index %d", i)
		}
	}
	w.buf.WriteByte(']')
	return nil
}

func (w *writer) str(s string) {
	// Marshaling a string cannot fail.
	b, _ := json.Marshal(s)
	w.buf.Write(b)
}

func (w *writer) double(f float64) {
	s := formatDouble(f)
	if w.canonical() || math.IsInf(f, 0) || math.IsNaN(f) {
		fmt.Fprintf(&w.buf, `{"$numberDouble":"%s"}`, s)
		return
	}
	w.buf.WriteString(s)
}

// dateTime writes dates between years 1970 and 9999 as ISO-8601 strings in relaxed mode.
func (w *writer) dateTime(ms int64) {
	t := time.Unix(ms/1e3, ms%1e3*1e6).UTC()
	if w.canonical() || ms < 0 || t.Year() > 9999 {
		fmt.Fprintf(&w.buf, `{"$date":{"$numberLong":"%d"}}`, ms)
		return
	}
	fmt.Fprintf(&w.buf, `{"$date":"%s"}`, t.Format("2006-01-02T15:04:05.999Z07:00"))
}

func formatDouble(f float64) string {
	var s string
	switch {
	case math.IsInf(f, 1):
		s = "Infinity"
	case math.IsInf(f, -1):
		s = "-Infinity"
	case math.IsNaN(f):
		s = "NaN"
	default:
		// Print exactly one decimal place for integers; otherwise, print as many are necessary to
		// perfectly represent it.
		s = strconv.FormatFloat(f, 'G', -1, 64)
		if !strings.ContainsAny(s, ".E") {
			s += ".0"
		}
	}

	return s
}
