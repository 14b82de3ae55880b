// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/ikmak/bsonwire/bson/bsonoptions"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializeErrors(t *testing.T) {
	testCases := []struct {
		name string
		hex  string
		err  error
	}{
		{"buffer too short", "05 00 00", ErrInvalidSize},
		{"declared size below minimum", "04 00 00 00 00", ErrInvalidSize},
		{"declared size exceeds buffer", "06 00 00 00 00", ErrInvalidSize},
		{"buffer larger than document", "05 00 00 00 00 00", ErrInvalidSize},
		{"missing terminator", "05 00 00 00 01", ErrMissingTerminator},
		{"zero string length", "0C 00 00 00 02 73 00 00 00 00 00 00", ErrInvalidStringLength},
		{"string without null", "0F 00 00 00 02 73 00 03 00 00 00 68 69 69 00", ErrInvalidStringLength},
		{"string overruns document", "0F 00 00 00 02 73 00 09 00 00 00 68 69 00 00", ErrInvalidStringLength},
		{"invalid UTF-8 string", "0F 00 00 00 02 73 00 03 00 00 00 FF FE 00 00", ErrInvalidUTF8},
		{
			"binary subtype 2 length mismatch",
			"13 00 00 00 05 62 00 06 00 00 00 02 03 00 00 00 01 02 00",
			ErrInvalidBinarySubtypeLength,
		},
		{"binary subtype 2 shorter than its inner length", "0F 00 00 00 05 62 00 02 00 00 00 02 01 02 00", ErrInvalidBinarySubtypeLength},
		{"binary subtype 2 negative inner length", "11 00 00 00 05 62 00 04 00 00 00 02 FF FF FF FF 00", ErrInvalidBinarySubtypeLength},
		{"binary overruns document", "0E 00 00 00 05 62 00 09 00 00 00 00 01 00", ErrCorruptDocument},
		{"invalid boolean", "09 00 00 00 08 61 00 02 00", ErrInvalidBoolean},
		{"unknown element type", "08 00 00 00 20 61 00 00", ErrUnknownElementType},
		{"bytes after terminator", "0A 00 00 00 08 61 00 01 00 00", ErrCorruptDocument},
		{"array bytes after terminator", "0E 00 00 00 04 61 00 06 00 00 00 00 00 00", ErrCorruptArray},
		{"embedded document too short", "0C 00 00 00 03 61 00 04 00 00 00 00", ErrCorruptDocument},
		{"truncated value", "06 00 00 00 08 00", ErrCorruptDocument},
		{
			"code with scope below minimum size",
			"16 00 00 00 0F 63 00 0D 00 00 00 01 00 00 00 00 05 00 00 00 00 00",
			ErrCorruptDocument,
		},
		{
			"code with scope size mismatch",
			"17 00 00 00 0F 63 00 0F 00 00 00 01 00 00 00 00 05 00 00 00 00 00 00",
			ErrCorruptDocument,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Deserialize(hexBytes(t, tc.hex))
			assert.Equal(t, tc.err, errors.Cause(err), "unexpected error: %v", err)
		})
	}
}

func TestDeserializeMinimalCodeWithScope(t *testing.T) {
	v, err := Deserialize(hexBytes(t, "16 00 00 00 0F 63 00 0E 00 00 00 01 00 00 00 00 05 00 00 00 00 00"))
	require.NoError(t, err)
	cws := v.Document().Lookup("c").CodeWithScope()
	assert.Equal(t, "", cws.Code)
	assert.Equal(t, 0, cws.Scope.Len())
}

func TestDeserializeLongs(t *testing.T) {
	encode := func(t *testing.T, i int64) []byte {
		b, err := Serialize(NewDocument(EC.Int64("i", i)))
		require.NoError(t, err)
		return b
	}

	testCases := []struct {
		name string
		i    int64
		opts *bsonoptions.DeserializeOptions
		want Value
	}{
		{"small long is promoted", 5, nil, VC.Int32(5)},
		{"long beyond int32 becomes double", 1 << 40, nil, VC.Double(1 << 40)},
		{"2^53 is promoted", 1 << 53, nil, VC.Double(1 << 53)},
		{"-2^53 is promoted", -(1 << 53), nil, VC.Double(-(1 << 53))},
		{"2^53 + 1 stays long", 1<<53 + 1, nil, VC.Int64(1<<53 + 1)},
		{"max int64 stays long", math.MaxInt64, nil, VC.Int64(math.MaxInt64)},
		{"promoteLongs off", 5, bsonoptions.Deserialize().SetPromoteLongs(false), VC.Int64(5)},
		{"promoteValues off", 5, bsonoptions.Deserialize().SetPromoteValues(false), VC.Int64(5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var opts []*bsonoptions.DeserializeOptions
			if tc.opts != nil {
				opts = append(opts, tc.opts)
			}
			v, err := Deserialize(encode(t, tc.i), opts...)
			require.NoError(t, err)
			got := v.Document().Lookup("i")
			assert.True(t, got.Equal(tc.want), "got %s; want %s", got, tc.want)
		})
	}
}

func TestDeserializeBinary(t *testing.T) {
	b, err := Serialize(NewDocument(
		EC.BinaryWithSubtype("uuid", []byte{1, 2, 3}, TypeBinaryUUID),
		EC.BinaryWithSubtype("old", []byte{4, 5}, TypeBinaryBinaryOld),
	))
	require.NoError(t, err)

	t.Run("subtypes are kept by default", func(t *testing.T) {
		v, err := Deserialize(b)
		require.NoError(t, err)
		doc := v.Document()
		assert.Equal(t, Binary{Subtype: TypeBinaryUUID, Data: []byte{1, 2, 3}}, doc.Lookup("uuid").Binary())
		assert.Equal(t, Binary{Subtype: TypeBinaryBinaryOld, Data: []byte{4, 5}}, doc.Lookup("old").Binary())
	})
	t.Run("promoteBuffers", func(t *testing.T) {
		v, err := Deserialize(b, bsonoptions.Deserialize().SetPromoteBuffers(true))
		require.NoError(t, err)
		assert.Equal(t, Binary{Subtype: TypeBinaryGeneric, Data: []byte{1, 2, 3}}, v.Document().Lookup("uuid").Binary())
	})
	t.Run("decoded data does not alias the input", func(t *testing.T) {
		buf := append([]byte(nil), b...)
		v, err := Deserialize(buf)
		require.NoError(t, err)
		for i := range buf {
			buf[i] = 0
		}
		assert.Equal(t, []byte{1, 2, 3}, v.Document().Lookup("uuid").Binary().Data)
	})
}

func TestDeserializeRegex(t *testing.T) {
	b, err := Serialize(NewDocument(EC.Regex("r", "abc", "i"), EC.Regex("lookbehind", "(?<=a)b", "")))
	require.NoError(t, err)

	t.Run("native", func(t *testing.T) {
		v, err := Deserialize(b)
		require.NoError(t, err)
		r := v.Document().Lookup("r")
		require.NotNil(t, r.Regexp())
		assert.True(t, r.Regexp().MatchString("xABCx"))
		assert.Equal(t, Regex{Pattern: "abc", Options: "i"}, r.Regex())

		// RE2 cannot compile lookbehind, so the wire form is kept.
		lb := v.Document().Lookup("lookbehind")
		assert.Nil(t, lb.Regexp())
		assert.Equal(t, Regex{Pattern: "(?<=a)b", Options: ""}, lb.Regex())
	})
	t.Run("bsonRegExp", func(t *testing.T) {
		v, err := Deserialize(b, bsonoptions.Deserialize().SetBSONRegExp(true))
		require.NoError(t, err)
		r := v.Document().Lookup("r")
		assert.Nil(t, r.Regexp())
		assert.True(t, r.Equal(VC.Regex("abc", "i")))
	})
}

func TestDeserializeDBRef(t *testing.T) {
	decode := func(t *testing.T, d D) Value {
		b, err := Serialize(D{{"ref", d}})
		require.NoError(t, err)
		v, err := Deserialize(b)
		require.NoError(t, err)
		return v.Document().Lookup("ref")
	}

	t.Run("promoted", func(t *testing.T) {
		v := decode(t, D{{"$ref", "coll"}, {"$id", 5}, {"$db", "db"}, {"extra", true}})
		ref, ok := v.DBRefOK()
		require.True(t, ok, "not promoted: %s", v)
		assert.Equal(t, "coll", ref.Collection)
		assert.True(t, ref.ID.Equal(VC.Int32(5)))
		assert.Equal(t, "db", ref.DB)
		require.NotNil(t, ref.Fields)
		assert.Equal(t, []string{"extra"}, ref.Fields.Keys())

		doc, ok := v.DocumentOK()
		require.True(t, ok)
		assert.Equal(t, []string{"$ref", "$id", "$db", "extra"}, doc.Keys())
	})

	testCases := []struct {
		name string
		d    D
	}{
		{"null id", D{{"$ref", "coll"}, {"$id", nil}}},
		{"missing id", D{{"$ref", "coll"}}},
		{"missing ref", D{{"$id", 1}}},
		{"ref not a string", D{{"$ref", 1}, {"$id", 1}}},
		{"db not a string", D{{"$ref", "coll"}, {"$id", 1}, {"$db", 1}}},
		{"other dollar key", D{{"$ref", "coll"}, {"$id", 1}, {"$foo", 1}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := decode(t, tc.d)
			_, ok := v.DBRefOK()
			assert.False(t, ok)
			_, ok = v.DocumentOK()
			assert.True(t, ok)
		})
	}

	t.Run("reference fields are written first", func(t *testing.T) {
		v := decode(t, D{{"x", 1}, {"$id", 2}, {"$ref", "c"}})
		b, err := Serialize(NewDocument(EC.Null("n")).Set("ref", v))
		require.NoError(t, err)
		out, err := Deserialize(b)
		require.NoError(t, err)
		doc := out.Document().Lookup("ref").Document()
		assert.Equal(t, []string{"$ref", "$id", "x"}, doc.Keys())
	})
	t.Run("top-level document", func(t *testing.T) {
		b, err := Serialize(D{{"$ref", "c"}, {"$id", 1}, {"x", 2}})
		require.NoError(t, err)
		v, err := Deserialize(b)
		require.NoError(t, err)
		ref, ok := v.DBRefOK()
		require.True(t, ok, "not promoted: %s", v)
		assert.Equal(t, "c", ref.Collection)
		assert.True(t, ref.ID.Equal(VC.Int32(1)))
		require.NotNil(t, ref.Fields)
		assert.Equal(t, []string{"x"}, ref.Fields.Keys())
		assert.True(t, ref.Fields.Lookup("x").Equal(VC.Int32(2)))
	})
	t.Run("scope is not promoted", func(t *testing.T) {
		scope := NewDocument(EC.String("$ref", "c"), EC.Int32("$id", 1))
		b, err := Serialize(NewDocument(EC.CodeWithScope("code", "f()", scope)))
		require.NoError(t, err)
		v, err := Deserialize(b)
		require.NoError(t, err)
		cws := v.Document().Lookup("code").CodeWithScope()
		assert.True(t, cws.Scope.Equal(scope))
	})
}

func TestDeserializeFieldsAsRaw(t *testing.T) {
	inner := D{{"a", 1}}
	b, err := Serialize(D{{"raw", inner}, {"doc", inner}, {"list", A{1, 2}}, {"nested", D{{"raw", A{3}}}}})
	require.NoError(t, err)
	innerBytes, err := Serialize(inner)
	require.NoError(t, err)

	v, err := Deserialize(b, bsonoptions.Deserialize().SetFieldsAsRaw("raw", "list"))
	require.NoError(t, err)
	doc := v.Document()

	raw, ok := doc.Lookup("raw").RawOK()
	require.True(t, ok)
	assert.Equal(t, Raw(innerBytes), raw)

	_, ok = doc.Lookup("doc").DocumentOK()
	assert.True(t, ok)

	list := doc.Lookup("list")
	assert.Equal(t, TypeArray, list.Type())
	_, ok = list.RawOK()
	assert.True(t, ok)

	_, ok = doc.Lookup("nested").Document().Lookup("raw").RawOK()
	assert.True(t, ok)

	// Raw values are written back verbatim.
	out, err := Serialize(v)
	require.NoError(t, err)
	assert.Equal(t, b, out)
}

func TestDeserializeBufferOptions(t *testing.T) {
	t.Run("allow smaller", func(t *testing.T) {
		buf := hexBytes(t, "05 00 00 00 00 FF FF")
		_, err := Deserialize(buf)
		assert.Equal(t, ErrInvalidSize, errors.Cause(err))

		v, err := Deserialize(buf, bsonoptions.Deserialize().SetAllowObjectSmallerThanBufferSize(true))
		require.NoError(t, err)
		assert.Equal(t, 0, v.Document().Len())
	})
	t.Run("index", func(t *testing.T) {
		buf := hexBytes(t, "FF FF 09 00 00 00 08 61 00 01 00")
		v, err := Deserialize(buf, bsonoptions.Deserialize().SetIndex(2))
		require.NoError(t, err)
		assert.True(t, v.Document().Lookup("a").Boolean())

		_, err = Deserialize(buf, bsonoptions.Deserialize().SetIndex(20))
		assert.Equal(t, ErrInvalidSize, errors.Cause(err))
	})
	t.Run("validateUTF8 off", func(t *testing.T) {
		buf := hexBytes(t, "0F 00 00 00 02 73 00 03 00 00 00 FF FE 00 00")
		v, err := Deserialize(buf, bsonoptions.Deserialize().SetValidateUTF8(false))
		require.NoError(t, err)
		assert.Equal(t, "\xff\xfe", v.Document().Lookup("s").StringValue())
	})
	t.Run("max depth", func(t *testing.T) {
		b, err := Serialize(D{{"a", D{{"b", D{{"c", D{}}}}}}})
		require.NoError(t, err)
		_, err = Deserialize(b, bsonoptions.Deserialize().SetMaxDepth(2))
		assert.Equal(t, ErrMaxDepthExceeded, errors.Cause(err))
		_, err = Deserialize(b, bsonoptions.Deserialize().SetMaxDepth(3))
		assert.NoError(t, err)
	})
}

func TestDeserializeArray(t *testing.T) {
	b, err := Serialize(D{{"x", 1}, {"y", "two"}})
	require.NoError(t, err)

	arr, err := DeserializeArray(b)
	require.NoError(t, err)
	require.Equal(t, 2, arr.Len())
	assert.True(t, arr.Index(0).Equal(VC.Int32(1)))
	assert.True(t, arr.Index(1).Equal(VC.String("two")))

	_, err = DeserializeArray(hexBytes(t, "05 00 00 00 01"))
	assert.Equal(t, ErrMissingTerminator, errors.Cause(err))
}

func TestDeserializeStream(t *testing.T) {
	var data []byte
	data = append(data, 0xEE, 0xEE)
	for i := 0; i < 3; i++ {
		b, err := Serialize(D{{"n", i}})
		require.NoError(t, err)
		data = append(data, b...)
	}
	end := len(data)
	data = append(data, 0xEE)

	t.Run("reads documents into the sink", func(t *testing.T) {
		docs := make([]Value, 5)
		next, err := DeserializeStream(data, 2, 3, docs, 1)
		require.NoError(t, err)
		assert.Equal(t, end, next)
		assert.True(t, docs[0].IsZero())
		assert.True(t, docs[4].IsZero())
		for i := 0; i < 3; i++ {
			got := docs[i+1].Document().Lookup("n")
			assert.True(t, got.Equal(VC.Int32(int32(i))), "document %d: %s", i, spew.Sdump(docs[i+1]))
		}
	})
	t.Run("partial read", func(t *testing.T) {
		docs := make([]Value, 1)
		next, err := DeserializeStream(data, 2, 1, docs, 0)
		require.NoError(t, err)
		assert.Equal(t, 2+12, next)
	})
	t.Run("sink too small", func(t *testing.T) {
		docs := make([]Value, 3)
		_, err := DeserializeStream(data, 2, 3, docs, 1)
		_, ok := err.(ErrTooSmall)
		assert.True(t, ok, "expected ErrTooSmall, got %v", err)
	})
	t.Run("errors leave the sink untouched", func(t *testing.T) {
		corrupt := append([]byte(nil), data...)
		corrupt[2+12+12-1] = 0x01
		docs := make([]Value, 3)
		_, err := DeserializeStream(corrupt, 2, 3, docs, 0)
		assert.Equal(t, ErrMissingTerminator, errors.Cause(err))
		for _, d := range docs {
			assert.True(t, d.IsZero())
		}
	})
	t.Run("reading past the data", func(t *testing.T) {
		docs := make([]Value, 4)
		_, err := DeserializeStream(data, 2, 4, docs, 0)
		assert.Equal(t, ErrInvalidSize, errors.Cause(err))
	})
}

func TestDeserializeDoesNotAliasInput(t *testing.T) {
	b, err := Serialize(D{{"s", "hello"}, {"d", D{{"k", "v"}}}})
	require.NoError(t, err)
	buf := append([]byte(nil), b...)
	v, err := Deserialize(buf, bsonoptions.Deserialize().SetFieldsAsRaw("d"))
	require.NoError(t, err)

	for i := range buf {
		buf[i] = 0
	}
	assert.Equal(t, "hello", v.Document().Lookup("s").StringValue())
	raw, _ := v.Document().Lookup("d").RawOK()
	assert.True(t, bytes.HasPrefix(raw, []byte{0x0E, 0, 0, 0}), "raw document was overwritten: % X", raw)
}
