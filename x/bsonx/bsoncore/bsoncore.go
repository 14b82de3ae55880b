// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsoncore contains functions that can be used to encode and decode BSON
// elements and values to or from a slice of bytes. These functions are aimed at
// allowing low level manipulation of BSON and are the building blocks of the
// bson package's serializer and deserializer.
//
// The Read* functions within this package return the values of the element, the
// remaining bytes and a boolean indicating if the values are valid. A boolean is
// used instead of an error because any error that would be returned would be the
// same: not enough bytes. This package attempts to do no validation beyond that;
// it is the consumer's responsibility to validate what it reads.
//
// The Append* functions within this package will append the type value to the
// given dst slice. If the slice has enough capacity, it will not grow the
// slice. The Append*Element functions within this package operate in the same
// way, but additionally append the BSON type and the key before the value.
package bsoncore

import (
	"bytes"
	"math"
)

// AppendType will append t to dst and return the extended buffer.
func AppendType(dst []byte, t Type) []byte { return append(dst, byte(t)) }

// AppendKey will append key to dst and return the extended buffer.
func AppendKey(dst []byte, key string) []byte { return append(append(dst, key...), 0x00) }

// AppendHeader will append Type t and key to dst and return the extended
// buffer.
func AppendHeader(dst []byte, t Type, key string) []byte {
	dst = AppendType(dst, t)
	dst = append(dst, key...)
	return append(dst, 0x00)
}

// AppendIndexHeader appends an array element header whose key is the decimal form of idx.
// It avoids the string allocation strconv.Itoa would make for every array slot.
func AppendIndexHeader(dst []byte, t Type, idx int) []byte {
	dst = AppendType(dst, t)
	dst = AppendIndex(dst, idx)
	return append(dst, 0x00)
}

// AppendIndex appends the ASCII decimal representation of idx.
func AppendIndex(dst []byte, idx int) []byte {
	if idx < 10 {
		return append(dst, byte('0'+idx))
	}
	var buf [20]byte
	pos := len(buf)
	for idx > 0 {
		pos--
		buf[pos] = byte('0' + idx%10)
		idx /= 10
	}
	return append(dst, buf[pos:]...)
}

// IndexLength returns the number of bytes AppendIndex writes for idx.
func IndexLength(idx int) int {
	n := 1
	for idx >= 10 {
		idx /= 10
		n++
	}
	return n
}

// ReserveLength reserves the space required for length and returns the index where to write the
// length and the []byte with reserved space.
func ReserveLength(dst []byte) (int32, []byte) {
	index := len(dst)
	return int32(index), append(dst, 0x00, 0x00, 0x00, 0x00)
}

// UpdateLength updates the length at index with length and returns the []byte.
func UpdateLength(dst []byte, index, length int32) []byte {
	dst[index] = byte(length)
	dst[index+1] = byte(length >> 8)
	dst[index+2] = byte(length >> 16)
	dst[index+3] = byte(length >> 24)
	return dst
}

// AppendDocumentEnd writes the null byte for a document and updates the length of the document.
// The index should be the beginning of the document's length bytes.
func AppendDocumentEnd(dst []byte, index int32) []byte {
	dst = append(dst, 0x00)
	return UpdateLength(dst, index, int32(len(dst[index:])))
}

// AppendDouble will append f to dst and return the extended buffer.
func AppendDouble(dst []byte, f float64) []byte {
	return appendu64(dst, math.Float64bits(f))
}

// AppendString will append s to dst and return the extended buffer. The length prefix
// includes the trailing null byte.
func AppendString(dst []byte, s string) []byte {
	dst = appendLength(dst, int32(len(s)+1))
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// AppendBinary will append subtype and b to dst and return the extended buffer. Subtype 0x02
// carries a redundant inner length.
func AppendBinary(dst []byte, subtype byte, b []byte) []byte {
	if subtype == 0x02 {
		dst = appendLength(dst, int32(len(b)+4))
		dst = append(dst, subtype)
		dst = appendLength(dst, int32(len(b)))
		return append(dst, b...)
	}
	dst = append(appendLength(dst, int32(len(b))), subtype)
	return append(dst, b...)
}

// AppendObjectID will append oid to dst and return the extended buffer.
func AppendObjectID(dst []byte, oid [12]byte) []byte { return append(dst, oid[:]...) }

// AppendBoolean will append b to dst and return the extended buffer.
func AppendBoolean(dst []byte, b bool) []byte {
	if b {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// AppendDateTime will append dt to dst and return the extended buffer.
func AppendDateTime(dst []byte, dt int64) []byte { return appendi64(dst, dt) }

// AppendRegex will append pattern and options to dst and return the extended buffer.
func AppendRegex(dst []byte, pattern, options string) []byte {
	dst = append(dst, pattern...)
	dst = append(dst, 0x00)
	dst = append(dst, options...)
	return append(dst, 0x00)
}

// AppendDBPointer will append ns and oid to dst and return the extended buffer.
func AppendDBPointer(dst []byte, ns string, oid [12]byte) []byte {
	return append(AppendString(dst, ns), oid[:]...)
}

// AppendCodeWithScopeStart reserves the total length of a code with scope value and writes the
// code string. The scope document must follow, then UpdateLength closes the value.
func AppendCodeWithScopeStart(dst []byte, code string) (int32, []byte) {
	idx, dst := ReserveLength(dst)
	return idx, AppendString(dst, code)
}

// AppendInt32 will append i32 to dst and return the extended buffer.
func AppendInt32(dst []byte, i32 int32) []byte { return appendi32(dst, i32) }

// AppendTimestamp will append t and i to dst and return the extended buffer.
func AppendTimestamp(dst []byte, t, i uint32) []byte {
	return appendu32(appendu32(dst, i), t) // i is the lower 4 bytes, t is the higher 4 bytes
}

// AppendInt64 will append i64 to dst and return the extended buffer.
func AppendInt64(dst []byte, i64 int64) []byte { return appendi64(dst, i64) }

// AppendDecimal128 will append the high and low halves of a decimal128 to dst and return the
// extended buffer.
func AppendDecimal128(dst []byte, high, low uint64) []byte {
	return appendu64(appendu64(dst, low), high)
}

// ReadType will return the first byte of the provided []byte as a type. If
// there is no available byte, false is returned.
func ReadType(src []byte) (Type, []byte, bool) {
	if len(src) < 1 {
		return 0, src, false
	}
	return Type(src[0]), src[1:], true
}

// ReadCString reads bytes up to (not including) the first null byte. The null byte is consumed.
func ReadCString(src []byte) ([]byte, []byte, bool) {
	idx := bytes.IndexByte(src, 0x00)
	if idx < 0 {
		return nil, src, false
	}
	return src[:idx], src[idx+1:], true
}

// ReadLength reads an int32 length from src.
func ReadLength(src []byte) (int32, []byte, bool) { return readi32(src) }

// ReadInt32 will read an int32 from src. If there are not enough bytes it
// will return false.
func ReadInt32(src []byte) (int32, []byte, bool) { return readi32(src) }

// ReadUint32 will read a uint32 from src.
func ReadUint32(src []byte) (uint32, []byte, bool) { return readu32(src) }

// ReadInt64 will read an int64 from src. If there are not enough bytes it
// will return false.
func ReadInt64(src []byte) (int64, []byte, bool) { return readi64(src) }

// ReadDouble will read a float64 from src. If there are not enough bytes it
// will return false.
func ReadDouble(src []byte) (float64, []byte, bool) {
	bits, rem, ok := readu64(src)
	if !ok {
		return 0, src, false
	}
	return math.Float64frombits(bits), rem, true
}

// ReadObjectID will read an ObjectID from src. If there are not enough bytes it
// will return false.
func ReadObjectID(src []byte) ([12]byte, []byte, bool) {
	var oid [12]byte
	if len(src) < 12 {
		return oid, src, false
	}
	copy(oid[:], src[0:12])
	return oid, src[12:], true
}

// ReadTimestamp will read t and i from src. If there are not enough bytes it
// will return false.
func ReadTimestamp(src []byte) (t, i uint32, rem []byte, ok bool) {
	i, rem, ok = readu32(src)
	if !ok {
		return 0, 0, src, false
	}
	t, rem, ok = readu32(rem)
	if !ok {
		return 0, 0, src, false
	}
	return t, i, rem, true
}

// ReadDecimal128 will read the high and low halves of a decimal128 from src.
func ReadDecimal128(src []byte) (high, low uint64, rem []byte, ok bool) {
	low, rem, ok = readu64(src)
	if !ok {
		return 0, 0, src, false
	}
	high, rem, ok = readu64(rem)
	if !ok {
		return 0, 0, src, false
	}
	return high, low, rem, true
}

// ReadBytes reads n bytes from src.
func ReadBytes(src []byte, n int) ([]byte, []byte, bool) {
	if n < 0 || len(src) < n {
		return nil, src, false
	}
	return src[:n], src[n:], true
}

func appendLength(dst []byte, l int32) []byte { return appendi32(dst, l) }

func appendi32(dst []byte, i32 int32) []byte {
	return append(dst, byte(i32), byte(i32>>8), byte(i32>>16), byte(i32>>24))
}

func readi32(src []byte) (int32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}
	return (int32(src[0]) | int32(src[1])<<8 | int32(src[2])<<16 | int32(src[3])<<24), src[4:], true
}

func appendi64(dst []byte, i64 int64) []byte {
	return append(dst,
		byte(i64), byte(i64>>8), byte(i64>>16), byte(i64>>24),
		byte(i64>>32), byte(i64>>40), byte(i64>>48), byte(i64>>56),
	)
}

func readi64(src []byte) (int64, []byte, bool) {
	if len(src) < 8 {
		return 0, src, false
	}
	i64 := (int64(src[0]) | int64(src[1])<<8 | int64(src[2])<<16 | int64(src[3])<<24 |
		int64(src[4])<<32 | int64(src[5])<<40 | int64(src[6])<<48 | int64(src[7])<<56)
	return i64, src[8:], true
}

func appendu32(dst []byte, u32 uint32) []byte {
	return append(dst, byte(u32), byte(u32>>8), byte(u32>>16), byte(u32>>24))
}

func readu32(src []byte) (uint32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}
	return (uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24), src[4:], true
}

func appendu64(dst []byte, u64 uint64) []byte {
	return append(dst,
		byte(u64), byte(u64>>8), byte(u64>>16), byte(u64>>24),
		byte(u64>>32), byte(u64>>40), byte(u64>>48), byte(u64>>56),
	)
}

func readu64(src []byte) (uint64, []byte, bool) {
	if len(src) < 8 {
		return 0, src, false
	}
	u64 := (uint64(src[0]) | uint64(src[1])<<8 | uint64(src[2])<<16 | uint64(src[3])<<24 |
		uint64(src[4])<<32 | uint64(src[5])<<40 | uint64(src[6])<<48 | uint64(src[7])<<56)
	return u64, src[8:], true
}
