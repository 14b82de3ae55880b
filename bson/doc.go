// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson is a library for encoding and decoding BSON. It has two families of types for
// representing BSON.
//
// The Document family of types (Document, Array, Value) is a closed model of every BSON type.
// Documents are ordered and support nested lookups.
//
// Example:
// 		doc := bson.NewDocument(bson.EC.String("hello", "world"), bson.EC.Int32("n", 5))
// 		b, err := bson.Serialize(doc)
// 		if err != nil { return err }
// 		val, err := bson.Deserialize(b)
// 		if err != nil { return err }
// 		n, ok := val.Document().Lookup("n").Int32OK()
//
// The D family of types is used to build concise representations of BSON using native Go types.
// They are converted into the Document family by ValueOf, which Serialize calls.
//
// Example:
// 		bson.D{{"foo", "bar"}, {"hello", "world"}, {"pi", 3.14159}}
//
// Generic Go numbers are encoded by magnitude: integral values that fit an int32 become Int32,
// integral values up to 2^53 stay Double and larger ones become Int64. int64 and uint64 values
// are always Int64.
//
// Encoding calculates the exact size first, with every check applied, and then writes into a
// buffer of that size. No package level state is kept between calls.
package bson
