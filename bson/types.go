// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"github.com/ikmak/bsonwire/x/bsonx/bsoncore"
)

// Type represents a BSON type.
type Type = bsoncore.Type

// BSON element types as described in https://bsonspec.org/spec.html.
const (
	TypeDouble           = bsoncore.TypeDouble
	TypeString           = bsoncore.TypeString
	TypeEmbeddedDocument = bsoncore.TypeEmbeddedDocument
	TypeArray            = bsoncore.TypeArray
	TypeBinary           = bsoncore.TypeBinary
	TypeUndefined        = bsoncore.TypeUndefined
	TypeObjectID         = bsoncore.TypeObjectID
	TypeBoolean          = bsoncore.TypeBoolean
	TypeDateTime         = bsoncore.TypeDateTime
	TypeNull             = bsoncore.TypeNull
	TypeRegex            = bsoncore.TypeRegex
	TypeDBPointer        = bsoncore.TypeDBPointer
	TypeJavaScript       = bsoncore.TypeJavaScript
	TypeSymbol           = bsoncore.TypeSymbol
	TypeCodeWithScope    = bsoncore.TypeCodeWithScope
	TypeInt32            = bsoncore.TypeInt32
	TypeTimestamp        = bsoncore.TypeTimestamp
	TypeInt64            = bsoncore.TypeInt64
	TypeDecimal128       = bsoncore.TypeDecimal128
	TypeMaxKey           = bsoncore.TypeMaxKey
	TypeMinKey           = bsoncore.TypeMinKey
)

// BSON binary element subtypes as described in https://bsonspec.org/spec.html.
const (
	TypeBinaryGeneric     byte = 0x00
	TypeBinaryFunction    byte = 0x01
	TypeBinaryBinaryOld   byte = 0x02
	TypeBinaryUUIDOld     byte = 0x03
	TypeBinaryUUID        byte = 0x04
	TypeBinaryMD5         byte = 0x05
	TypeBinaryEncrypted   byte = 0x06
	TypeBinaryColumn      byte = 0x07
	TypeBinarySensitive   byte = 0x08
	TypeBinaryVector      byte = 0x09
	TypeBinaryUserDefined byte = 0x80
)

const (
	// maxSafeInteger is the largest integer a float64 holds without losing precision (2^53).
	maxSafeInteger = 1 << 53
	minSafeInteger = -maxSafeInteger
)
