// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package jsonview

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/ikmak/bsonwire/bson"
	"github.com/ikmak/bsonwire/bson/bsonoptions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalValues(t *testing.T) {
	oid, err := bson.ObjectIDFromHex("5a934e000102030405000000")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		v         bson.Value
		relaxed   string
		canonical string
	}{
		{"double", bson.VC.Double(1), `1.0`, `{"$numberDouble":"1.0"}`},
		{"fraction", bson.VC.Double(-0.5), `-0.5`, `{"$numberDouble":"-0.5"}`},
		{"large double", bson.VC.Double(1e300), `1E+300`, `{"$numberDouble":"1E+300"}`},
		{"infinity", bson.VC.Double(math.Inf(-1)), `{"$numberDouble":"-Infinity"}`, `{"$numberDouble":"-Infinity"}`},
		{"string", bson.VC.String("a\"b\n"), `"a\"b\n"`, `"a\"b\n"`},
		{"int32", bson.VC.Int32(-7), `-7`, `{"$numberInt":"-7"}`},
		{"int64", bson.VC.Int64(1 << 40), `1099511627776`, `{"$numberLong":"1099511627776"}`},
		{"binary", bson.VC.BinaryWithSubtype([]byte{0xFF}, bson.TypeBinaryUUID), `{"$binary":{"base64":"/w==","subType":"04"}}`, `{"$binary":{"base64":"/w==","subType":"04"}}`},
		{"objectID", bson.VC.ObjectID(oid), `{"$oid":"5a934e000102030405000000"}`, `{"$oid":"5a934e000102030405000000"}`},
		{"date", bson.VC.DateTime(1514764800123), `{"$date":"2018-01-01T00:00:00.123Z"}`, `{"$date":{"$numberLong":"1514764800123"}}`},
		{"pre-epoch date", bson.VC.DateTime(-1), `{"$date":{"$numberLong":"-1"}}`, `{"$date":{"$numberLong":"-1"}}`},
		{"regex", bson.VC.Regex("^a", "im"), `{"$regularExpression":{"pattern":"^a","options":"im"}}`, `{"$regularExpression":{"pattern":"^a","options":"im"}}`},
		{"dbpointer", bson.VC.DBPointer("db.c", oid), `{"$dbPointer":{"$ref":"db.c","$id":{"$oid":"5a934e000102030405000000"}}}`, `{"$dbPointer":{"$ref":"db.c","$id":{"$oid":"5a934e000102030405000000"}}}`},
		{"code with scope", bson.VC.CodeWithScope("x", bson.NewDocument(bson.EC.Int32("x", 1))), `{"$code":"x","$scope":{"x":1}}`, `{"$code":"x","$scope":{"x":{"$numberInt":"1"}}}`},
		{"timestamp", bson.VC.Timestamp(5, 6), `{"$timestamp":{"t":5,"i":6}}`, `{"$timestamp":{"t":5,"i":6}}`},
		{"decimal", bson.VC.Decimal128(bson.NewDecimal128(0x3040000000000000, 12345)), `{"$numberDecimal":"12345"}`, `{"$numberDecimal":"12345"}`},
		{"undefined", bson.VC.Undefined(), `{"$undefined":true}`, `{"$undefined":true}`},
		{"min and max", bson.VC.ArrayFromValues(bson.VC.MinKey(), bson.VC.MaxKey(), bson.VC.Null()), `[{"$minKey":1},{"$maxKey":1},null]`, `[{"$minKey":1},{"$maxKey":1},null]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Marshal(tc.v, Relaxed)
			require.NoError(t, err)
			assert.Equal(t, tc.relaxed, string(got))

			got, err = Marshal(tc.v, Canonical)
			require.NoError(t, err)
			assert.Equal(t, tc.canonical, string(got))
			assert.True(t, json.Valid(got), string(got))
		})
	}
}

func TestMarshalKeepsFieldOrder(t *testing.T) {
	doc := bson.NewDocument(bson.EC.Int32("z", 1), bson.EC.Boolean("a", true), bson.EC.String("m", "<&>"))
	got, err := Marshal(bson.VC.Document(doc), Relaxed)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":true,"m":"\u003c\u0026\u003e"}`, string(got))
}

func TestMarshalRawFields(t *testing.T) {
	b, err := bson.Serialize(bson.D{{Key: "payload", Value: bson.D{{Key: "n", Value: int32(3)}}}, {Key: "list", Value: bson.A{"x"}}})
	require.NoError(t, err)
	v, err := bson.Deserialize(b, bsonoptions.Deserialize().SetFieldsAsRaw("payload", "list"))
	require.NoError(t, err)

	got, err := Marshal(v, Relaxed)
	require.NoError(t, err)
	assert.Equal(t, `{"payload":{"n":3},"list":["x"]}`, string(got))
}

func TestIndent(t *testing.T) {
	doc := bson.NewDocument(bson.EC.SubDocumentFromElements("a", bson.EC.Int32("b", 1)))
	got, err := Indent(bson.VC.Document(doc), Relaxed)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": {\n    \"b\": 1\n  }\n}\n", string(got))
	assert.Equal(t, `{"a":{"b":1}}`, string(bytes.TrimSpace(Compact(got))))
}
