// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
	"time"
)

// Value represents a BSON value. The zero Value is empty and cannot be serialized.
type Value struct {
	// num holds the fixed width payloads (double bits, int32, int64, datetime, boolean,
	// timestamp). str holds string, javascript and symbol payloads. Everything larger lives in
	// primitive.
	t         Type
	num       uint64
	str       string
	primitive interface{}
}

// Undefined is the Go form of the BSON undefined value.
type Undefined struct{}

// Null is the Go form of the BSON null value.
type Null struct{}

// MinKey is the Go form of the BSON min key value.
type MinKey struct{}

// MaxKey is the Go form of the BSON max key value.
type MaxKey struct{}

// JavaScript is the Go form of BSON JavaScript code.
type JavaScript string

// Symbol is the Go form of the BSON symbol value.
type Symbol string

// IsZero returns true if this value is empty.
func (v Value) IsZero() bool { return v.t == Type(0) }

// Type returns the BSON type of this value.
func (v Value) Type() Type { return v.t }

// Interface returns the Go value of this Value as an empty interface.
//
// This method will return nil if it is empty, otherwise it will return a Go primitive or one of
// this package's primitive types.
func (v Value) Interface() interface{} {
	switch v.t {
	case TypeDouble:
		return v.Double()
	case TypeString:
		return v.str
	case TypeEmbeddedDocument:
		switch p := v.primitive.(type) {
		case DBRef:
			return p
		case Raw:
			return p
		}
		return v.Document()
	case TypeArray:
		if raw, ok := v.primitive.(Raw); ok {
			return raw
		}
		return v.Array()
	case TypeBinary:
		return v.Binary()
	case TypeUndefined:
		return Undefined{}
	case TypeObjectID:
		return v.ObjectID()
	case TypeBoolean:
		return v.Boolean()
	case TypeDateTime:
		return DateTime(v.DateTime())
	case TypeNull:
		return Null{}
	case TypeRegex:
		if nr, ok := v.primitive.(nativeRegex); ok {
			return nr.re
		}
		return v.Regex()
	case TypeDBPointer:
		return v.DBPointer()
	case TypeJavaScript:
		return JavaScript(v.str)
	case TypeSymbol:
		return Symbol(v.str)
	case TypeCodeWithScope:
		return v.CodeWithScope()
	case TypeInt32:
		return v.Int32()
	case TypeTimestamp:
		return v.Timestamp()
	case TypeInt64:
		return v.Int64()
	case TypeDecimal128:
		return v.Decimal128()
	case TypeMinKey:
		return MinKey{}
	case TypeMaxKey:
		return MaxKey{}
	default:
		return nil
	}
}

// IsNumber returns true if the type of v is a numeric BSON type.
func (v Value) IsNumber() bool {
	switch v.t {
	case TypeDouble, TypeInt32, TypeInt64, TypeDecimal128:
		return true
	default:
		return false
	}
}

// AsFloat64 returns a BSON number as a float64. Int64 values beyond 2^53 lose precision.
// Decimal128 is not converted.
func (v Value) AsFloat64() (float64, bool) {
	switch v.t {
	case TypeDouble:
		return v.Double(), true
	case TypeInt32:
		return float64(v.Int32()), true
	case TypeInt64:
		return float64(v.Int64()), true
	default:
		return 0, false
	}
}

// AsInt64 returns a BSON number as an int64. Doubles must be integral and in range.
func (v Value) AsInt64() (int64, bool) {
	switch v.t {
	case TypeInt32:
		return int64(v.Int32()), true
	case TypeInt64:
		return v.Int64(), true
	case TypeDouble:
		f := v.Double()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// Double returns the BSON double value the Value represents. It panics if the value is a BSON type
// other than double.
func (v Value) Double() float64 {
	if v.t != TypeDouble {
		panic(ElementTypeError{"bson.Value.Double", v.t})
	}
	return math.Float64frombits(v.num)
}

// DoubleOK is the same as Double, but returns a boolean instead of panicking.
func (v Value) DoubleOK() (float64, bool) {
	if v.t != TypeDouble {
		return 0, false
	}
	return v.Double(), true
}

// StringValue returns the BSON string the Value represents. It panics if the value is a BSON type
// other than string.
//
// NOTE: This method is called StringValue to avoid it implementing the
// fmt.Stringer interface.
func (v Value) StringValue() string {
	if v.t != TypeString {
		panic(ElementTypeError{"bson.Value.StringValue", v.t})
	}
	return v.str
}

// StringValueOK is the same as StringValue, but returns a boolean instead of
// panicking.
func (v Value) StringValueOK() (string, bool) {
	if v.t != TypeString {
		return "", false
	}
	return v.str, true
}

// Document returns the BSON embedded document value the Value represents. A DBRef is returned in
// its document form. It panics if the value is a BSON type other than embedded document, or if
// the document was kept as raw bytes.
func (v Value) Document() *Document {
	doc, ok := v.DocumentOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Document", v.t})
	}
	return doc
}

// DocumentOK is the same as Document, except it returns a boolean
// instead of panicking.
func (v Value) DocumentOK() (*Document, bool) {
	if v.t != TypeEmbeddedDocument {
		return nil, false
	}
	switch p := v.primitive.(type) {
	case *Document:
		return p, true
	case DBRef:
		return p.Document(), true
	default:
		return nil, false
	}
}

// DBRefOK returns the DBRef the Value represents, if it is one.
func (v Value) DBRefOK() (DBRef, bool) {
	if v.t != TypeEmbeddedDocument {
		return DBRef{}, false
	}
	r, ok := v.primitive.(DBRef)
	return r, ok
}

// Array returns the BSON array value the Value represents. It panics if the value is a BSON type
// other than array, or if the array was kept as raw bytes.
func (v Value) Array() *Array {
	arr, ok := v.ArrayOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Array", v.t})
	}
	return arr
}

// ArrayOK is the same as Array, except it returns a boolean
// instead of panicking.
func (v Value) ArrayOK() (*Array, bool) {
	if v.t != TypeArray {
		return nil, false
	}
	arr, ok := v.primitive.(*Array)
	return arr, ok
}

// RawOK returns the encoded bytes of a document or array that was kept raw.
func (v Value) RawOK() (Raw, bool) {
	if v.t != TypeEmbeddedDocument && v.t != TypeArray {
		return nil, false
	}
	raw, ok := v.primitive.(Raw)
	return raw, ok
}

// Binary returns the BSON binary value the Value represents. It panics if the value is a BSON type
// other than binary.
func (v Value) Binary() Binary {
	if v.t != TypeBinary {
		panic(ElementTypeError{"bson.Value.Binary", v.t})
	}
	return v.primitive.(Binary)
}

// BinaryOK is the same as Binary, except it returns a boolean instead of
// panicking.
func (v Value) BinaryOK() (Binary, bool) {
	if v.t != TypeBinary {
		return Binary{}, false
	}
	return v.Binary(), true
}

// ObjectID returns the BSON objectid value the Value represents. It panics if the value is a BSON
// type other than objectid.
func (v Value) ObjectID() ObjectID {
	if v.t != TypeObjectID {
		panic(ElementTypeError{"bson.Value.ObjectID", v.t})
	}
	return v.primitive.(ObjectID)
}

// ObjectIDOK is the same as ObjectID, except it returns a boolean instead of
// panicking.
func (v Value) ObjectIDOK() (ObjectID, bool) {
	if v.t != TypeObjectID {
		return ObjectID{}, false
	}
	return v.ObjectID(), true
}

// Boolean returns the boolean value the Value represents. It panics if the
// value is a BSON type other than boolean.
func (v Value) Boolean() bool {
	if v.t != TypeBoolean {
		panic(ElementTypeError{"bson.Value.Boolean", v.t})
	}
	return v.num == 1
}

// BooleanOK is the same as Boolean, except it returns a boolean instead of
// panicking.
func (v Value) BooleanOK() (bool, bool) {
	if v.t != TypeBoolean {
		return false, false
	}
	return v.Boolean(), true
}

// DateTime returns the BSON datetime value the Value represents as milliseconds since the Unix
// epoch. It panics if the value is a BSON type other than datetime.
func (v Value) DateTime() int64 {
	if v.t != TypeDateTime {
		panic(ElementTypeError{"bson.Value.DateTime", v.t})
	}
	return int64(v.num)
}

// DateTimeOK is the same as DateTime, except it returns a boolean instead of
// panicking.
func (v Value) DateTimeOK() (int64, bool) {
	if v.t != TypeDateTime {
		return 0, false
	}
	return v.DateTime(), true
}

// Time returns the BSON datetime value the Value represents as a time.Time. It panics if the
// value is a BSON type other than datetime.
func (v Value) Time() time.Time {
	return DateTime(v.DateTime()).Time()
}

// Regex returns the BSON regex value the Value represents. It panics if the value is a BSON
// type other than regex.
func (v Value) Regex() Regex {
	if v.t != TypeRegex {
		panic(ElementTypeError{"bson.Value.Regex", v.t})
	}
	switch p := v.primitive.(type) {
	case nativeRegex:
		return p.Regex
	default:
		return p.(Regex)
	}
}

// RegexOK is the same as Regex, except that it returns a boolean
// instead of panicking.
func (v Value) RegexOK() (Regex, bool) {
	if v.t != TypeRegex {
		return Regex{}, false
	}
	return v.Regex(), true
}

// Regexp returns the compiled Go form of a regex value. It returns nil when the value is not a
// regex or only carries the wire form.
func (v Value) Regexp() *regexp.Regexp {
	if nr, ok := v.primitive.(nativeRegex); ok && v.t == TypeRegex {
		return nr.re
	}
	return nil
}

// DBPointer returns the BSON dbpointer value the Value represents. It panics if the value is a
// BSON type other than dbpointer.
func (v Value) DBPointer() DBPointer {
	if v.t != TypeDBPointer {
		panic(ElementTypeError{"bson.Value.DBPointer", v.t})
	}
	return v.primitive.(DBPointer)
}

// DBPointerOK is the same as DBPoitner, except that it returns a boolean
// instead of panicking.
func (v Value) DBPointerOK() (DBPointer, bool) {
	if v.t != TypeDBPointer {
		return DBPointer{}, false
	}
	return v.DBPointer(), true
}

// JavaScript returns the BSON JavaScript code value the Value represents. It panics if the value is
// a BSON type other than JavaScript code.
func (v Value) JavaScript() string {
	if v.t != TypeJavaScript {
		panic(ElementTypeError{"bson.Value.JavaScript", v.t})
	}
	return v.str
}

// JavaScriptOK is the same as Javascript, excepti that it returns a boolean
// instead of panicking.
func (v Value) JavaScriptOK() (string, bool) {
	if v.t != TypeJavaScript {
		return "", false
	}
	return v.str, true
}

// Symbol returns the BSON symbol value the Value represents. It panics if the value is a BSON
// type other than symbol.
func (v Value) Symbol() string {
	if v.t != TypeSymbol {
		panic(ElementTypeError{"bson.Value.Symbol", v.t})
	}
	return v.str
}

// SymbolOK is the same as Symbol, excepti that it returns a boolean
// instead of panicking.
func (v Value) SymbolOK() (string, bool) {
	if v.t != TypeSymbol {
		return "", false
	}
	return v.str, true
}

// CodeWithScope returns the BSON JavaScript code with scope value the Value represents. It
// panics if the value is a BSON type other than JavaScript code with scope.
func (v Value) CodeWithScope() CodeWithScope {
	if v.t != TypeCodeWithScope {
		panic(ElementTypeError{"bson.Value.CodeWithScope", v.t})
	}
	return v.primitive.(CodeWithScope)
}

// CodeWithScopeOK is the same as CodeWithScope, except that it returns a boolean
// instead of panicking.
func (v Value) CodeWithScopeOK() (CodeWithScope, bool) {
	if v.t != TypeCodeWithScope {
		return CodeWithScope{}, false
	}
	return v.CodeWithScope(), true
}

// Int32 returns the int32 the Value represents. It panics if the value is a BSON type other than
// int32.
func (v Value) Int32() int32 {
	if v.t != TypeInt32 {
		panic(ElementTypeError{"bson.Value.Int32", v.t})
	}
	return int32(v.num)
}

// Int32OK is the same as Int32, except that it returns a boolean instead of
// panicking.
func (v Value) Int32OK() (int32, bool) {
	if v.t != TypeInt32 {
		return 0, false
	}
	return v.Int32(), true
}

// Timestamp returns the BSON timestamp value the Value represents. It panics if the value is a
// BSON type other than timestamp.
func (v Value) Timestamp() Timestamp {
	if v.t != TypeTimestamp {
		panic(ElementTypeError{"bson.Value.Timestamp", v.t})
	}
	return Timestamp{T: uint32(v.num >> 32), I: uint32(v.num)}
}

// TimestampOK is the same as Timestamp, except that it returns a boolean
// instead of panicking.
func (v Value) TimestampOK() (Timestamp, bool) {
	if v.t != TypeTimestamp {
		return Timestamp{}, false
	}
	return v.Timestamp(), true
}

// Int64 returns the int64 the Value represents. It panics if the value is a BSON type other than
// int64.
func (v Value) Int64() int64 {
	if v.t != TypeInt64 {
		panic(ElementTypeError{"bson.Value.Int64", v.t})
	}
	return int64(v.num)
}

// Int64OK is the same as Int64, except that it returns a boolean instead of
// panicking.
func (v Value) Int64OK() (int64, bool) {
	if v.t != TypeInt64 {
		return 0, false
	}
	return v.Int64(), true
}

// Decimal128 returns the decimal the Value represents. It panics if the value is a BSON type other than
// decimal.
func (v Value) Decimal128() Decimal128 {
	if v.t != TypeDecimal128 {
		panic(ElementTypeError{"bson.Value.Decimal128", v.t})
	}
	return v.primitive.(Decimal128)
}

// Decimal128OK is the same as Decimal128, except that it returns a boolean
// instead of panicking.
func (v Value) Decimal128OK() (Decimal128, bool) {
	if v.t != TypeDecimal128 {
		return Decimal128{}, false
	}
	return v.Decimal128(), true
}

// Equal compares v to v2 and returns true if they are equal. Doubles are compared by their bits,
// so NaN equals NaN and 0.0 does not equal -0.0.
func (v Value) Equal(v2 Value) bool {
	if v.t != v2.t {
		return false
	}

	switch v.t {
	case TypeDouble, TypeBoolean, TypeDateTime, TypeInt32, TypeTimestamp, TypeInt64:
		return v.num == v2.num
	case TypeString, TypeJavaScript, TypeSymbol:
		return v.str == v2.str
	case TypeEmbeddedDocument:
		r1, ok1 := v.primitive.(Raw)
		r2, ok2 := v2.primitive.(Raw)
		if ok1 || ok2 {
			return ok1 && ok2 && bytes.Equal(r1, r2)
		}
		ref1, ok1 := v.primitive.(DBRef)
		ref2, ok2 := v2.primitive.(DBRef)
		if ok1 || ok2 {
			return ok1 && ok2 && ref1.Equal(ref2)
		}
		return v.Document().Equal(v2.Document())
	case TypeArray:
		r1, ok1 := v.primitive.(Raw)
		r2, ok2 := v2.primitive.(Raw)
		if ok1 || ok2 {
			return ok1 && ok2 && bytes.Equal(r1, r2)
		}
		return v.Array().Equal(v2.Array())
	case TypeBinary:
		return v.Binary().Equal(v2.Binary())
	case TypeObjectID:
		return v.ObjectID() == v2.ObjectID()
	case TypeRegex:
		_, native1 := v.primitive.(nativeRegex)
		_, native2 := v2.primitive.(nativeRegex)
		return native1 == native2 && v.Regex().Equal(v2.Regex())
	case TypeDBPointer:
		return v.DBPointer().Equal(v2.DBPointer())
	case TypeCodeWithScope:
		return v.CodeWithScope().Equal(v2.CodeWithScope())
	case TypeDecimal128:
		return v.Decimal128() == v2.Decimal128()
	default:
		// Undefined, Null, MinKey, MaxKey and the empty Value carry no payload.
		return true
	}
}

// String implements the fmt.Stringer interface.
func (v Value) String() string {
	switch v.t {
	case TypeDouble:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case TypeString:
		return strconv.Quote(v.str)
	case TypeEmbeddedDocument:
		switch p := v.primitive.(type) {
		case DBRef:
			return p.String()
		case Raw:
			return "Raw(" + strconv.Itoa(len(p)) + " bytes)"
		}
		return v.Document().String()
	case TypeArray:
		if raw, ok := v.primitive.(Raw); ok {
			return "Raw(" + strconv.Itoa(len(raw)) + " bytes)"
		}
		return v.Array().String()
	case TypeBinary:
		b := v.Binary()
		return "Binary(" + strconv.Itoa(int(b.Subtype)) + ", " + strconv.Itoa(len(b.Data)) + " bytes)"
	case TypeUndefined:
		return "undefined"
	case TypeObjectID:
		return v.ObjectID().String()
	case TypeBoolean:
		return strconv.FormatBool(v.Boolean())
	case TypeDateTime:
		return "DateTime(" + strconv.FormatInt(v.DateTime(), 10) + ")"
	case TypeNull:
		return "null"
	case TypeRegex:
		r := v.Regex()
		return "/" + r.Pattern + "/" + r.Options
	case TypeDBPointer:
		return v.DBPointer().String()
	case TypeJavaScript:
		return "JavaScript(" + strconv.Quote(v.str) + ")"
	case TypeSymbol:
		return "Symbol(" + strconv.Quote(v.str) + ")"
	case TypeCodeWithScope:
		return v.CodeWithScope().String()
	case TypeInt32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case TypeTimestamp:
		ts := v.Timestamp()
		return "Timestamp(" + strconv.FormatUint(uint64(ts.T), 10) + ", " + strconv.FormatUint(uint64(ts.I), 10) + ")"
	case TypeInt64:
		return "Int64(" + strconv.FormatInt(v.Int64(), 10) + ")"
	case TypeDecimal128:
		return "Decimal128(" + v.Decimal128().String() + ")"
	case TypeMinKey:
		return "MinKey"
	case TypeMaxKey:
		return "MaxKey"
	default:
		return "<empty>"
	}
}
