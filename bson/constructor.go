// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"time"
)

// VC is a convenience variable provided for access to the ValueConstructor methods.
var VC ValueConstructor

// EC is a convenience variable provided for access to the ElementConstructor methods.
var EC ElementConstructor

// ValueConstructor is used as a namespace for value constructor functions.
type ValueConstructor struct{}

// ElementConstructor is used as a namespace for element constructor functions.
type ElementConstructor struct{}

// Double creates a double value.
func (ValueConstructor) Double(f float64) Value {
	return Value{t: TypeDouble, num: math.Float64bits(f)}
}

// Number creates a value from a generic number, choosing Int32, Double or Int64 by magnitude and
// integrality.
func (ValueConstructor) Number(f float64) Value { return numberFromFloat(f) }

// Integer is Number for integers. Values above 2^53 become Int64 without rounding.
func (ValueConstructor) Integer(i int64) Value { return numberFromInt(i) }

// String creates a string value.
func (ValueConstructor) String(s string) Value { return Value{t: TypeString, str: s} }

// Document creates an embedded document value. A nil document creates a null value.
func (ValueConstructor) Document(d *Document) Value {
	if d == nil {
		return Value{t: TypeNull}
	}
	return Value{t: TypeEmbeddedDocument, primitive: d}
}

// DocumentFromElements creates an embedded document value from the given elements.
func (vc ValueConstructor) DocumentFromElements(elems ...Element) Value {
	return vc.Document(NewDocument(elems...))
}

// Array creates an array value. A nil array creates a null value.
func (ValueConstructor) Array(a *Array) Value {
	if a == nil {
		return Value{t: TypeNull}
	}
	return Value{t: TypeArray, primitive: a}
}

// ArrayFromValues creates an array value from the given values.
func (vc ValueConstructor) ArrayFromValues(values ...Value) Value {
	return vc.Array(NewArray(values...))
}

// RawDocument creates an embedded document value that is written as the given bytes.
func (ValueConstructor) RawDocument(r Raw) Value {
	return Value{t: TypeEmbeddedDocument, primitive: r}
}

// RawArray creates an array value that is written as the given bytes.
func (ValueConstructor) RawArray(r Raw) Value {
	return Value{t: TypeArray, primitive: r}
}

// DBRef creates a value for a database reference. It is written as an embedded document.
func (ValueConstructor) DBRef(r DBRef) Value {
	return Value{t: TypeEmbeddedDocument, primitive: r}
}

// Binary creates a binary value with the generic subtype.
func (vc ValueConstructor) Binary(b []byte) Value {
	return vc.BinaryWithSubtype(b, TypeBinaryGeneric)
}

// BinaryWithSubtype creates a binary value with the given subtype.
func (ValueConstructor) BinaryWithSubtype(b []byte, subtype byte) Value {
	return Value{t: TypeBinary, primitive: Binary{Subtype: subtype, Data: b}}
}

// Undefined creates an undefined value.
func (ValueConstructor) Undefined() Value { return Value{t: TypeUndefined} }

// ObjectID creates an objectid value.
func (ValueConstructor) ObjectID(oid ObjectID) Value {
	return Value{t: TypeObjectID, primitive: oid}
}

// Boolean creates a boolean value.
func (ValueConstructor) Boolean(b bool) Value {
	v := Value{t: TypeBoolean}
	if b {
		v.num = 1
	}
	return v
}

// DateTime creates a datetime value from milliseconds since the Unix epoch.
func (ValueConstructor) DateTime(dt int64) Value {
	return Value{t: TypeDateTime, num: uint64(dt)}
}

// Time creates a datetime value from a time.Time, truncated to milliseconds.
func (vc ValueConstructor) Time(t time.Time) Value {
	return vc.DateTime(int64(NewDateTimeFromTime(t)))
}

// Null creates a null value.
func (ValueConstructor) Null() Value { return Value{t: TypeNull} }

// Regex creates a regex value.
func (ValueConstructor) Regex(pattern, options string) Value {
	return Value{t: TypeRegex, primitive: Regex{Pattern: pattern, Options: options}}
}

// DBPointer creates a dbpointer value.
func (ValueConstructor) DBPointer(ns string, ptr ObjectID) Value {
	return Value{t: TypeDBPointer, primitive: DBPointer{DB: ns, Pointer: ptr}}
}

// JavaScript creates a JavaScript code value.
func (ValueConstructor) JavaScript(code string) Value {
	return Value{t: TypeJavaScript, str: code}
}

// Symbol creates a symbol value.
func (ValueConstructor) Symbol(symbol string) Value {
	return Value{t: TypeSymbol, str: symbol}
}

// CodeWithScope creates a JavaScript code with scope value.
func (ValueConstructor) CodeWithScope(code string, scope *Document) Value {
	return Value{t: TypeCodeWithScope, primitive: CodeWithScope{Code: code, Scope: scope}}
}

// Int32 creates an int32 value.
func (ValueConstructor) Int32(i int32) Value {
	return Value{t: TypeInt32, num: uint64(uint32(i))}
}

// Timestamp creates a timestamp value.
func (ValueConstructor) Timestamp(t, i uint32) Value {
	return Value{t: TypeTimestamp, num: uint64(t)<<32 | uint64(i)}
}

// Int64 creates an int64 value.
func (ValueConstructor) Int64(i int64) Value {
	return Value{t: TypeInt64, num: uint64(i)}
}

// Decimal128 creates a decimal value.
func (ValueConstructor) Decimal128(d Decimal128) Value {
	return Value{t: TypeDecimal128, primitive: d}
}

// MinKey creates a minkey value.
func (ValueConstructor) MinKey() Value { return Value{t: TypeMinKey} }

// MaxKey creates a maxkey value.
func (ValueConstructor) MaxKey() Value { return Value{t: TypeMaxKey} }

// Double creates a double element with the given key and value.
func (ElementConstructor) Double(key string, f float64) Element {
	return Element{Key: key, Value: VC.Double(f)}
}

// Number creates an element holding a generic number.
func (ElementConstructor) Number(key string, f float64) Element {
	return Element{Key: key, Value: VC.Number(f)}
}

// String creates a string element with the given key and value.
func (ElementConstructor) String(key string, val string) Element {
	return Element{Key: key, Value: VC.String(val)}
}

// SubDocument creates an embedded document element with the given key and value.
func (ElementConstructor) SubDocument(key string, d *Document) Element {
	return Element{Key: key, Value: VC.Document(d)}
}

// SubDocumentFromElements creates an embedded document element from the given elements.
func (ElementConstructor) SubDocumentFromElements(key string, elems ...Element) Element {
	return Element{Key: key, Value: VC.DocumentFromElements(elems...)}
}

// Array creates an array element with the given key and value.
func (ElementConstructor) Array(key string, a *Array) Element {
	return Element{Key: key, Value: VC.Array(a)}
}

// ArrayFromValues creates an array element from the given values.
func (ElementConstructor) ArrayFromValues(key string, values ...Value) Element {
	return Element{Key: key, Value: VC.ArrayFromValues(values...)}
}

// Binary creates a binary element with the generic subtype.
func (ElementConstructor) Binary(key string, b []byte) Element {
	return Element{Key: key, Value: VC.Binary(b)}
}

// BinaryWithSubtype creates a binary element with the given subtype.
func (ElementConstructor) BinaryWithSubtype(key string, b []byte, subtype byte) Element {
	return Element{Key: key, Value: VC.BinaryWithSubtype(b, subtype)}
}

// Undefined creates an undefined element with the given key.
func (ElementConstructor) Undefined(key string) Element {
	return Element{Key: key, Value: VC.Undefined()}
}

// ObjectID creates an objectid element with the given key and value.
func (ElementConstructor) ObjectID(key string, oid ObjectID) Element {
	return Element{Key: key, Value: VC.ObjectID(oid)}
}

// Boolean creates a boolean element with the given key and value.
func (ElementConstructor) Boolean(key string, b bool) Element {
	return Element{Key: key, Value: VC.Boolean(b)}
}

// DateTime creates a datetime element with the given key and value.
func (ElementConstructor) DateTime(key string, dt int64) Element {
	return Element{Key: key, Value: VC.DateTime(dt)}
}

// Null creates a null element with the given key.
func (ElementConstructor) Null(key string) Element {
	return Element{Key: key, Value: VC.Null()}
}

// Regex creates a regex element with the given key and value.
func (ElementConstructor) Regex(key string, pattern, options string) Element {
	return Element{Key: key, Value: VC.Regex(pattern, options)}
}

// DBPointer creates a dbpointer element with the given key and value.
func (ElementConstructor) DBPointer(key string, ns string, oid ObjectID) Element {
	return Element{Key: key, Value: VC.DBPointer(ns, oid)}
}

// JavaScript creates a JavaScript code element with the given key and value.
func (ElementConstructor) JavaScript(key string, code string) Element {
	return Element{Key: key, Value: VC.JavaScript(code)}
}

// Symbol creates a symbol element with the given key and value.
func (ElementConstructor) Symbol(key string, symbol string) Element {
	return Element{Key: key, Value: VC.Symbol(symbol)}
}

// CodeWithScope creates a JavaScript code with scope element with the given key and value.
func (ElementConstructor) CodeWithScope(key string, code string, scope *Document) Element {
	return Element{Key: key, Value: VC.CodeWithScope(code, scope)}
}

// Int32 creates a int32 element with the given key and value.
func (ElementConstructor) Int32(key string, i int32) Element {
	return Element{Key: key, Value: VC.Int32(i)}
}

// Timestamp creates a timestamp element with the given key and value.
func (ElementConstructor) Timestamp(key string, t uint32, i uint32) Element {
	return Element{Key: key, Value: VC.Timestamp(t, i)}
}

// Int64 creates a int64 element with the given key and value.
func (ElementConstructor) Int64(key string, i int64) Element {
	return Element{Key: key, Value: VC.Int64(i)}
}

// Decimal128 creates a decimal element with the given key and value.
func (ElementConstructor) Decimal128(key string, d Decimal128) Element {
	return Element{Key: key, Value: VC.Decimal128(d)}
}

// MinKey creates a minkey element with the given key.
func (ElementConstructor) MinKey(key string) Element {
	return Element{Key: key, Value: VC.MinKey()}
}

// MaxKey creates a maxkey element with the given key.
func (ElementConstructor) MaxKey(key string) Element {
	return Element{Key: key, Value: VC.MaxKey()}
}
