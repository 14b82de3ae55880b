// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"encoding/hex"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ikmak/bsonwire/bson/bsonoptions"
	"github.com/ikmak/bsonwire/x/bsonx/bsoncore"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hexBytes decodes a space separated hex dump.
func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.Replace(s, " ", "", -1))
	require.NoError(t, err)
	return b
}

func TestSerialize(t *testing.T) {
	oid := ObjectID{0x5e, 0xf7, 0xfd, 0xd9, 0x1c, 0x19, 0xe3, 0x22, 0x2b, 0x41, 0xb8, 0x39}

	testCases := []struct {
		name string
		v    interface{}
		want string
	}{
		{"empty document", NewDocument(), "05 00 00 00 00"},
		{"empty D", D{}, "05 00 00 00 00"},
		{"boolean", D{{"a", true}}, "09 00 00 00 08 61 00 01 00"},
		{"int32", NewDocument(EC.Int32("a", 1)), "0C 00 00 00 10 61 00 01 00 00 00 00"},
		{"string", NewDocument(EC.String("s", "hi")), "0F 00 00 00 02 73 00 03 00 00 00 68 69 00 00"},
		{"double", NewDocument(EC.Double("d", 1.5)), "10 00 00 00 01 64 00 00 00 00 00 00 00 F8 3F 00"},
		{"negative zero", D{{"z", math.Copysign(0, -1)}}, "10 00 00 00 01 7A 00 00 00 00 00 00 00 00 80 00"},
		{"int64", NewDocument(EC.Int64("i", 1)), "10 00 00 00 12 69 00 01 00 00 00 00 00 00 00 00"},
		{"null", NewDocument(EC.Null("n")), "08 00 00 00 0A 6E 00 00"},
		{"min and max key", NewDocument(EC.MinKey("a"), EC.MaxKey("b")), "0B 00 00 00 FF 61 00 7F 62 00 00"},
		{
			"objectID",
			NewDocument(EC.ObjectID("_id", oid)),
			"16 00 00 00 07 5F 69 64 00 5E F7 FD D9 1C 19 E3 22 2B 41 B8 39 00",
		},
		{"datetime", NewDocument(EC.DateTime("t", 1000)), "10 00 00 00 09 74 00 E8 03 00 00 00 00 00 00 00"},
		{"timestamp", NewDocument(EC.Timestamp("t", 1, 2)), "10 00 00 00 11 74 00 02 00 00 00 01 00 00 00 00"},
		{"binary", NewDocument(EC.BinaryWithSubtype("b", []byte{1, 2}, TypeBinaryUUID)), "0F 00 00 00 05 62 00 02 00 00 00 04 01 02 00"},
		{
			"binary subtype 2",
			NewDocument(EC.BinaryWithSubtype("b", []byte{1, 2}, TypeBinaryBinaryOld)),
			"13 00 00 00 05 62 00 06 00 00 00 02 02 00 00 00 01 02 00",
		},
		{"regex options are sorted", NewDocument(EC.Regex("r", "a", "xsmi")), "0F 00 00 00 0B 72 00 61 00 69 6D 73 78 00 00"},
		{"regex options are deduplicated", NewDocument(EC.Regex("r", "a", "ii")), "0C 00 00 00 0B 72 00 61 00 69 00 00"},
		{"javascript", NewDocument(EC.JavaScript("j", "f")), "0E 00 00 00 0D 6A 00 02 00 00 00 66 00 00"},
		{
			"code with scope",
			NewDocument(EC.CodeWithScope("c", "x", NewDocument(EC.Int32("y", 1)))),
			"1E 00 00 00 0F 63 00 16 00 00 00 02 00 00 00 78 00 0C 00 00 00 10 79 00 01 00 00 00 00 00",
		},
		{
			"nested document",
			D{{"d", D{{"a", true}}}},
			"11 00 00 00 03 64 00 09 00 00 00 08 61 00 01 00 00",
		},
		{
			"array",
			D{{"a", A{"x", true}}},
			"1A 00 00 00 04 61 00 12 00 00 00 02 30 00 02 00 00 00 78 00 08 31 00 01 00 00",
		},
		{"top-level array", NewArray(VC.Int32(5)), "0C 00 00 00 10 30 00 05 00 00 00 00"},
		{"undefined omitted from documents", D{{"u", Undefined{}}}, "05 00 00 00 00"},
		{"undefined kept in arrays", A{Undefined{}}, "08 00 00 00 06 30 00 00"},
		{
			"dbref",
			NewDocument(EC.Null("x")).Set("r", VC.DBRef(DBRef{Collection: "c", ID: VC.Int32(1)})),
			"25 00 00 00 0A 78 00 03 72 00 1A 00 00 00 02 24 72 65 66 00 02 00 00 00 63 00 10 24 69 64 00 01 00 00 00 00 00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			want := hexBytes(t, tc.want)
			got, err := Serialize(tc.v)
			require.NoError(t, err)
			if !bytes.Equal(want, got) {
				t.Errorf("bytes do not match.\ngot  % X\nwant % X", got, want)
			}

			size, err := CalculateSize(tc.v)
			require.NoError(t, err)
			assert.Equal(t, len(want), size)
		})
	}
}

func TestSerializeNumbers(t *testing.T) {
	testCases := []struct {
		name string
		v    interface{}
		t    Type
	}{
		{"max int32", 2147483647, TypeInt32},
		{"min int32", -2147483648, TypeInt32},
		{"max int32 + 1", 2147483648, TypeDouble},
		{"2^53", 1 << 53, TypeDouble},
		{"2^53 + 2", 1<<53 + 2, TypeInt64},
		{"explicit int64", int64(1), TypeInt64},
		{"explicit uint64", uint64(7), TypeInt64},
		{"uint32", uint32(4294967295), TypeDouble},
		{"int8", int8(-3), TypeInt32},
		{"float", 2.0, TypeInt32},
		{"float32 fraction", float32(0.5), TypeDouble},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Serialize(D{{"n", tc.v}})
			require.NoError(t, err)
			assert.Equal(t, tc.t, Type(b[4]))
		})
	}
}

func TestSerializeErrors(t *testing.T) {
	cyclicDoc := NewDocument()
	cyclicDoc.Append("self", VC.Document(cyclicDoc))

	cyclicArr := NewArray()
	cyclicArr.Append(VC.Array(cyclicArr))

	fields := NewDocument()
	ref := DBRef{Collection: "c", ID: VC.Int32(1), Fields: fields}
	fields.Append("back", VC.DBRef(ref))

	cyclicScope := NewDocument()
	cyclicScope.Append("code", VC.CodeWithScope("f", cyclicScope))

	// The same 1 MiB document repeated as siblings, which is not a cycle.
	mebibyte := NewDocument(EC.Binary("b", make([]byte, 1<<20)))
	oversized := NewArray()
	for i := 0; i < 2100; i++ {
		oversized.Append(VC.Document(mebibyte))
	}

	checkKeys := bsonoptions.Serialize().SetCheckKeys(true)

	testCases := []struct {
		name string
		v    interface{}
		opts *bsonoptions.SerializeOptions
		err  error
	}{
		{"cyclic document", cyclicDoc, nil, ErrCyclicStructure},
		{"cyclic array", NewDocument(EC.Array("a", cyclicArr)), nil, ErrCyclicStructure},
		{"cyclic dbref fields", NewDocument(EC.Null("x")).Set("r", VC.DBRef(ref)), nil, ErrCyclicStructure},
		{"cyclic code with scope", cyclicScope, nil, ErrCyclicStructure},
		{"dollar key", D{{"$bad", 1}}, checkKeys, ErrInvalidKey},
		{"dotted key", D{{"a.b", 1}}, checkKeys, ErrInvalidKey},
		{"nested dotted key", D{{"a", D{{"b.c", 1}}}}, checkKeys, ErrInvalidKey},
		{"null byte in key", D{{"a\x00b", 1}}, nil, ErrNullBytesInKey},
		{"invalid UTF-8 in key", D{{"\xff", 1}}, nil, ErrInvalidUTF8},
		{"invalid UTF-8 in string", D{{"s", "\xfe\xff"}}, nil, ErrInvalidUTF8},
		{"null byte in pattern", NewDocument(EC.Regex("r", "a\x00", "")), nil, ErrNullBytesInPattern},
		{"null byte in options", NewDocument(EC.Regex("r", "a", "i\x00")), nil, ErrNullBytesInPattern},
		{"invalid regex option", NewDocument(EC.Regex("r", "a", "g")), nil, ErrInvalidRegexOptions},
		{"top-level int", VC.Int32(1), nil, ErrUnsupportedValue},
		{"top-level string", "hello", nil, ErrUnsupportedValue},
		{"uint64 overflow", D{{"u", uint64(math.MaxUint64)}}, nil, ErrUnsupportedValue},
		{"channel", D{{"c", make(chan int)}}, nil, ErrUnsupportedValue},
		{"raw with bad length", NewDocument(EC.Null("x")).Set("r", VC.RawDocument(Raw{6, 0, 0, 0, 0})), nil, ErrInvalidSize},
		{"larger than int32", NewDocument(EC.Array("a", oversized)), nil, ErrDocumentTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var opts []*bsonoptions.SerializeOptions
			if tc.opts != nil {
				opts = append(opts, tc.opts)
			}
			b, err := Serialize(tc.v, opts...)
			assert.Nil(t, b)
			assert.Equal(t, tc.err, errors.Cause(err), "unexpected error: %v", err)
		})
	}
}

func TestCalculateSizeTooLarge(t *testing.T) {
	mebibyte := NewDocument(EC.Binary("b", make([]byte, 1<<20)))
	arr := NewArray()
	for i := 0; i < 2100; i++ {
		arr.Append(VC.Document(mebibyte))
	}

	size, err := CalculateSize(NewDocument(EC.Array("a", arr)))
	assert.Equal(t, 0, size)
	assert.Equal(t, ErrDocumentTooLarge, errors.Cause(err), "unexpected error: %v", err)

	n, err := SerializeInto(make([]byte, 16), NewDocument(EC.Array("a", arr)), 0)
	assert.Equal(t, 0, n)
	assert.Equal(t, ErrDocumentTooLarge, errors.Cause(err), "unexpected error: %v", err)
}

func TestSerializeKeyPolicy(t *testing.T) {
	checkKeys := bsonoptions.Serialize().SetCheckKeys(true)

	t.Run("dbref keys are allowed", func(t *testing.T) {
		_, err := Serialize(D{{"$ref", "c"}, {"$id", 1}, {"$db", "d"}}, checkKeys)
		assert.NoError(t, err)
	})
	t.Run("keys are not checked by default", func(t *testing.T) {
		_, err := Serialize(D{{"$set", D{{"a.b", 1}}}})
		assert.NoError(t, err)
	})
	t.Run("size ignores the key policy", func(t *testing.T) {
		size, err := CalculateSize(D{{"$bad", true}}, checkKeys)
		require.NoError(t, err)
		assert.Equal(t, 12, size)
	})
}

func TestSerializeMaxDepth(t *testing.T) {
	doc := NewDocument(EC.SubDocumentFromElements("a",
		EC.SubDocumentFromElements("b",
			EC.SubDocumentFromElements("c", EC.Int32("d", 1)))))

	_, err := Serialize(doc, bsonoptions.Serialize().SetMaxDepth(2))
	assert.Equal(t, ErrMaxDepthExceeded, errors.Cause(err))

	_, err = Serialize(doc, bsonoptions.Serialize().SetMaxDepth(3))
	assert.NoError(t, err)
}

func TestSerializeSharedSubdocument(t *testing.T) {
	shared := NewDocument(EC.Int32("x", 1))
	doc := NewDocument(EC.SubDocument("a", shared), EC.SubDocument("b", shared))
	b, err := Serialize(doc)
	require.NoError(t, err)

	got, err := Deserialize(b)
	require.NoError(t, err)
	assert.True(t, got.Document().Equal(doc), "got %s", got)
}

func TestSerializeIgnoreUndefined(t *testing.T) {
	v := D{{"u", Undefined{}}, {"a", A{Undefined{}}}}

	b, err := Serialize(v, bsonoptions.Serialize().SetIgnoreUndefined(false))
	require.NoError(t, err)
	want := hexBytes(t, "13 00 00 00 06 75 00 04 61 00 08 00 00 00 06 30 00 00 00")
	assert.Equal(t, want, b)

	b, err = Serialize(v)
	require.NoError(t, err)
	want = hexBytes(t, "10 00 00 00 04 61 00 08 00 00 00 06 30 00 00 00")
	assert.Equal(t, want, b)
}

func TestSerializeInto(t *testing.T) {
	doc := D{{"a", true}}
	encoded := hexBytes(t, "09 00 00 00 08 61 00 01 00")

	t.Run("writes at offset", func(t *testing.T) {
		buf := bytes.Repeat([]byte{0xFF}, 16)
		end, err := SerializeInto(buf, doc, 3)
		require.NoError(t, err)
		assert.Equal(t, 12, end)
		assert.Equal(t, encoded, buf[3:12])
		assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, buf[:3])
		assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, buf[12:])
	})
	t.Run("exact fit", func(t *testing.T) {
		buf := make([]byte, 9)
		end, err := SerializeInto(buf, doc, 0)
		require.NoError(t, err)
		assert.Equal(t, 9, end)
		assert.Equal(t, encoded, buf)
	})
	t.Run("too small leaves the buffer untouched", func(t *testing.T) {
		buf := bytes.Repeat([]byte{0xAA}, 10)
		_, err := SerializeInto(buf, doc, 2)
		_, ok := err.(ErrTooSmall)
		assert.True(t, ok, "expected ErrTooSmall, got %v", err)
		assert.Equal(t, bytes.Repeat([]byte{0xAA}, 10), buf)
	})
	t.Run("offset out of range", func(t *testing.T) {
		_, err := SerializeInto(make([]byte, 4), doc, 5)
		assert.True(t, NewErrTooSmall().Equals(err))
	})
	t.Run("invalid input writes nothing", func(t *testing.T) {
		buf := make([]byte, 32)
		_, err := SerializeInto(buf, D{{"s", "\xff"}}, 0)
		assert.Equal(t, ErrInvalidUTF8, errors.Cause(err))
		assert.Equal(t, make([]byte, 32), buf)
	})
}

func TestCalculateSizeMatchesSerialize(t *testing.T) {
	oid := ObjectID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	doc := NewDocument(
		EC.Double("double", 3.25),
		EC.String("string", "héllo"),
		EC.SubDocumentFromElements("doc", EC.Int64("i64", math.MaxInt64), EC.Undefined("skipped")),
		EC.ArrayFromValues("arr", VC.Null(), VC.Undefined(), VC.Number(1e10), VC.String("")),
		EC.Binary("bin", []byte("payload")),
		EC.BinaryWithSubtype("old", []byte("payload"), TypeBinaryBinaryOld),
		EC.ObjectID("oid", oid),
		EC.Boolean("bool", false),
		EC.DateTime("dt", -1),
		EC.Regex("re", "^a.*$", "mi"),
		EC.DBPointer("ptr", "db.coll", oid),
		EC.JavaScript("js", "function() {}"),
		EC.Symbol("sym", "symbol"),
		EC.CodeWithScope("cws", "x + y", NewDocument(EC.Int32("x", 1), EC.Int32("y", 2))),
		EC.Timestamp("ts", 100, 200),
		EC.Decimal128("dec", NewDecimal128(0x3040000000000000, 12345)),
		EC.MinKey("min"),
		EC.MaxKey("max"),
	)
	doc.Append("ref", VC.DBRef(DBRef{Collection: "c", ID: VC.ObjectID(oid), DB: "d", Fields: NewDocument(EC.Int32("extra", 1))}))
	doc.Append("raw", VC.RawDocument(Raw{5, 0, 0, 0, 0}))

	size, err := CalculateSize(doc)
	require.NoError(t, err)
	b, err := Serialize(doc)
	require.NoError(t, err)
	assert.Equal(t, size, len(b))

	length, _, ok := bsoncore.ReadLength(b)
	require.True(t, ok)
	assert.Equal(t, len(b), int(length))

	got, err := Deserialize(b, bsonoptions.Deserialize().SetBSONRegExp(true))
	require.NoError(t, err)
	gotDoc := got.Document()
	assert.Equal(t, doc.Len(), gotDoc.Len())
	if diff := cmp.Diff(doc.Keys(), gotDoc.Keys()); diff != "" {
		t.Errorf("keys differ (-want +got):\n%s", diff)
	}
}
