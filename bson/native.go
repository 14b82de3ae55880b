// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"reflect"
	"regexp"
	"runtime"
	"sort"
	"time"

	"github.com/ikmak/bsonwire/bson/bsonoptions"
	"github.com/pkg/errors"
)

// D is an ordered representation of a BSON document. This type should be used when the order of the
// elements matters. A D should not be constructed with duplicate key names.
//
// Example usage:
//
//	bson.D{{"foo", "bar"}, {"hello", "world"}, {"pi", 3.14159}}
type D []E

// E represents a BSON element for a D. It is usually used inside a D.
type E struct {
	Key   string
	Value interface{}
}

// M is an unordered representation of a BSON document. Keys are written in sorted order so the
// encoding is deterministic.
//
// Example usage:
//
//	bson.M{"foo": "bar", "hello": "world", "pi": 3.14159}
type M map[string]interface{}

// A is an ordered representation of a BSON array.
//
// Example usage:
//
//	bson.A{"bar", "world", 3.14159, bson.D{{"qux", 12345}}}
type A []interface{}

// Marshaler is implemented by types that supply their own BSON form. ToBSON returns a value that
// is converted in place of the receiver.
type Marshaler interface {
	ToBSON() (interface{}, error)
}

// ValueOf converts a Go value into the Value Model using the default serialization options.
//
// Integers of kind int64 and uint64 become Int64. Every other integer and float kind is a generic
// number: Int32 when integral and within the int32 range, Double when integral within ±2^53, Int64
// beyond that and Double when not integral. Funcs are omitted from documents and become null in
// arrays.
func ValueOf(v interface{}) (Value, error) {
	return valueOf(v, bsonoptions.MergeSerializeOptions())
}

func valueOf(v interface{}, so *bsonoptions.SerializeOptions) (Value, error) {
	c := converter{
		serializeFunctions: *so.SerializeFunctions,
		maxDepth:           *so.MaxDepth,
		seen:               make(map[visit]struct{}),
	}
	return c.convert(reflect.ValueOf(v), 0)
}

// visit identifies a map, slice or pointer on the current conversion path.
type visit struct {
	ptr uintptr
	typ reflect.Type
}

type converter struct {
	serializeFunctions bool
	maxDepth           int
	seen               map[visit]struct{}
}

// enter records rv as an ancestor. The returned func removes it again.
func (c *converter) enter(rv reflect.Value) (func(), error) {
	if rv.Kind() == reflect.Slice && rv.Len() == 0 {
		return func() {}, nil
	}
	key := visit{ptr: rv.Pointer(), typ: rv.Type()}
	if _, ok := c.seen[key]; ok {
		return nil, ErrCyclicStructure
	}
	c.seen[key] = struct{}{}
	return func() { delete(c.seen, key) }, nil
}

func (c *converter) convert(rv reflect.Value, depth int) (Value, error) {
	if depth > c.maxDepth {
		return Value{}, ErrMaxDepthExceeded
	}
	if !rv.IsValid() {
		return VC.Null(), nil
	}

	if rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return VC.Null(), nil
		}
	}

	if rv.CanInterface() {
		switch t := rv.Interface().(type) {
		case Value:
			return t, nil
		case *Document:
			return VC.Document(t), nil
		case *Array:
			return VC.Array(t), nil
		case D:
			return c.convertD(t, depth)
		case Element:
			return VC.DocumentFromElements(t), nil
		case Binary:
			return VC.BinaryWithSubtype(t.Data, t.Subtype), nil
		case Regex:
			return VC.Regex(t.Pattern, t.Options), nil
		case *regexp.Regexp:
			return regexpValue(t), nil
		case DBPointer:
			return VC.DBPointer(t.DB, t.Pointer), nil
		case CodeWithScope:
			return VC.CodeWithScope(t.Code, t.Scope), nil
		case Timestamp:
			return VC.Timestamp(t.T, t.I), nil
		case Decimal128:
			return VC.Decimal128(t), nil
		case ObjectID:
			return VC.ObjectID(t), nil
		case DBRef:
			return VC.DBRef(t), nil
		case DateTime:
			return VC.DateTime(int64(t)), nil
		case time.Time:
			return VC.Time(t), nil
		case Raw:
			return VC.RawDocument(t), nil
		case Undefined:
			return VC.Undefined(), nil
		case Null:
			return VC.Null(), nil
		case MinKey:
			return VC.MinKey(), nil
		case MaxKey:
			return VC.MaxKey(), nil
		case JavaScript:
			return VC.JavaScript(string(t)), nil
		case Symbol:
			return VC.Symbol(string(t)), nil
		case Marshaler:
			repl, err := t.ToBSON()
			if err != nil {
				return Value{}, err
			}
			return c.convert(reflect.ValueOf(repl), depth+1)
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return VC.Boolean(rv.Bool()), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int:
		return numberFromInt(rv.Int()), nil
	case reflect.Int64:
		return VC.Int64(rv.Int()), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, errors.Wrapf(ErrUnsupportedValue, "%d overflows int64", u)
		}
		return numberFromInt(int64(u)), nil
	case reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, errors.Wrapf(ErrUnsupportedValue, "%d overflows int64", u)
		}
		return VC.Int64(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return numberFromFloat(rv.Float()), nil
	case reflect.String:
		return VC.String(rv.String()), nil
	case reflect.Ptr, reflect.Interface:
		if rv.Kind() == reflect.Interface {
			return c.convert(rv.Elem(), depth)
		}
		leave, err := c.enter(rv)
		if err != nil {
			return Value{}, err
		}
		defer leave()
		return c.convert(rv.Elem(), depth)
	case reflect.Slice:
		if rv.IsNil() {
			return VC.Null(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return VC.Binary(rv.Bytes()), nil
		}
		leave, err := c.enter(rv)
		if err != nil {
			return Value{}, err
		}
		defer leave()
		return c.convertSlice(rv, depth)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return VC.Binary(b), nil
		}
		return c.convertSlice(rv, depth)
	case reflect.Map:
		if rv.IsNil() {
			return VC.Null(), nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, errors.Wrapf(ErrUnsupportedValue, "map key type %s", rv.Type().Key())
		}
		leave, err := c.enter(rv)
		if err != nil {
			return Value{}, err
		}
		defer leave()
		return c.convertMap(rv, depth)
	case reflect.Struct:
		return c.convertStruct(rv, depth)
	case reflect.Func:
		if rv.IsNil() {
			return VC.Null(), nil
		}
		if !c.serializeFunctions {
			return Value{}, errors.Wrap(ErrUnsupportedValue, "func without SerializeFunctions")
		}
		return VC.JavaScript(runtime.FuncForPC(rv.Pointer()).Name()), nil
	default:
		return Value{}, errors.Wrapf(ErrUnsupportedValue, "cannot convert %s", rv.Type())
	}
}

// skipField reports whether a document field holding rv is left out entirely.
func (c *converter) skipField(rv reflect.Value) bool {
	for rv.IsValid() && rv.Kind() == reflect.Interface && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.IsValid() && rv.Kind() == reflect.Func && !rv.IsNil() && !c.serializeFunctions
}

// arraySlot converts an array entry. Funcs that are not serialized become null so the following
// entries keep their positions.
func (c *converter) arraySlot(rv reflect.Value, depth int) (Value, error) {
	if c.skipField(rv) {
		return VC.Null(), nil
	}
	return c.convert(rv, depth)
}

func (c *converter) convertD(d D, depth int) (Value, error) {
	doc := NewDocument()
	for _, e := range d {
		rv := reflect.ValueOf(e.Value)
		if c.skipField(rv) {
			continue
		}
		val, err := c.convert(rv, depth+1)
		if err != nil {
			return Value{}, errors.Wrapf(err, "field %q", e.Key)
		}
		doc.Append(e.Key, val)
	}
	return VC.Document(doc), nil
}

func (c *converter) convertSlice(rv reflect.Value, depth int) (Value, error) {
	arr := NewArray()
	for i := 0; i < rv.Len(); i++ {
		val, err := c.arraySlot(rv.Index(i), depth+1)
		if err != nil {
			return Value{}, errors.Wrapf(err, "index %d", i)
		}
		arr.Append(val)
	}
	return VC.Array(arr), nil
}

func (c *converter) convertMap(rv reflect.Value, depth int) (Value, error) {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	doc := NewDocument()
	for _, k := range keys {
		ev := rv.MapIndex(k)
		if c.skipField(ev) {
			continue
		}
		val, err := c.convert(ev, depth+1)
		if err != nil {
			return Value{}, errors.Wrapf(err, "field %q", k.String())
		}
		doc.Append(k.String(), val)
	}
	return VC.Document(doc), nil
}

func (c *converter) convertStruct(rv reflect.Value, depth int) (Value, error) {
	doc := NewDocument()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		tags := parseStructTags(sf)
		if tags.Skip {
			continue
		}
		fv := rv.Field(i)
		if tags.OmitEmpty && isZero(fv) {
			continue
		}
		if c.skipField(fv) {
			continue
		}
		val, err := c.convert(fv, depth+1)
		if err != nil {
			return Value{}, errors.Wrapf(err, "field %q", tags.Name)
		}
		doc.Append(tags.Name, val)
	}
	return VC.Document(doc), nil
}
