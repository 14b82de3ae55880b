// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"fmt"

	"github.com/go-stack/stack"
	"github.com/pkg/errors"
)

// Decoding errors.
var (
	// ErrInvalidSize indicates a document header that is too short or disagrees with the buffer.
	ErrInvalidSize = errors.New("bson size must be >= 5 and consistent with the buffer")

	// ErrMissingTerminator indicates a document whose final byte is not 0x00.
	ErrMissingTerminator = errors.New("bson document must end with a null byte")

	ErrCorruptDocument            = errors.New("corrupt bson document")
	ErrCorruptArray               = errors.New("corrupt bson array")
	ErrInvalidUTF8                = errors.New("invalid UTF-8 string in bson")
	ErrInvalidStringLength        = errors.New("bad string length in bson")
	ErrInvalidBinarySubtypeLength = errors.New("binary subtype 0x02 inner length must be the outer length minus 4")
	ErrInvalidBoolean             = errors.New("illegal boolean value")
	ErrUnknownElementType         = errors.New("unknown bson element type")
)

// Encoding errors.
var (
	ErrCyclicStructure     = errors.New("cyclic dependency detected")
	ErrInvalidKey          = errors.New("invalid key")
	ErrNullBytesInKey      = errors.New("key must not contain null bytes")
	ErrNullBytesInPattern  = errors.New("regular expression must not contain null bytes")
	ErrInvalidRegexOptions = errors.New("invalid regular expression options")
	ErrUnsupportedValue    = errors.New("value cannot be represented in bson")
	ErrDocumentTooLarge    = errors.New("document exceeds the maximum bson size")
)

// ErrMaxDepthExceeded is returned when a value tree nests deeper than the configured maximum.
var ErrMaxDepthExceeded = errors.New("maximum nesting depth exceeded")

// ErrInvalidHex indicates that a hex string cannot be converted to an ObjectID.
var ErrInvalidHex = errors.New("the provided hex string is not a valid ObjectID")

// ErrTooSmall indicates that a slice provided to write into is not large enough to fit the data.
type ErrTooSmall struct {
	Stack stack.CallStack
}

// NewErrTooSmall creates a new ErrTooSmall with the current stack.
func NewErrTooSmall() ErrTooSmall {
	return ErrTooSmall{Stack: stack.Trace().TrimRuntime()}
}

// Error implements the error interface.
func (e ErrTooSmall) Error() string {
	return "too small"
}

// ErrorStack returns a string representing the stack at the point where the error occurred.
func (e ErrTooSmall) ErrorStack() string {
	s := bytes.NewBufferString("too small: [")

	for i, call := range e.Stack {
		if i != 0 {
			s.WriteString(", ")
		}

		// go vet doesn't like %k even though it's part of stack's API, so we move the format
		// string so it doesn't complain. (We also can't make it a constant, or go vet still
		// complains.)
		callFormat := "%k.%n %v"

		s.WriteString(fmt.Sprintf(callFormat, call, call, call))
	}

	s.WriteRune(']')

	return s.String()
}

// Equals checks that err2 also is an ErrTooSmall.
func (e ErrTooSmall) Equals(err2 error) bool {
	switch err2.(type) {
	case ErrTooSmall:
		return true
	default:
		return false
	}
}

// ElementTypeError specifies that a method to obtain a BSON value an incorrect type was called on a bson.Value.
type ElementTypeError struct {
	Method string
	Type   Type
}

// Error implements the error interface.
func (ete ElementTypeError) Error() string {
	return "Call of " + ete.Method + " on " + ete.Type.String() + " type"
}

// KeyNotFound is an error type returned from the Lookup methods on Document. This type contains
// information about which key was not found and if it was actually not found or if a component of
// the key except the last was not a document nor array.
type KeyNotFound struct {
	Key   []string // The keys that were searched for.
	Depth uint     // Which key either was not found or was an incorrect type.
	Type  Type     // The type of the key that was found but was an incorrect type.
}

func (knf KeyNotFound) Error() string {
	if len(knf.Key) == 0 {
		return "no keys were provided for lookup"
	}

	depth := knf.Depth
	if depth >= uint(len(knf.Key)) {
		depth = uint(len(knf.Key)) - 1
	}

	if knf.Type != Type(0) {
		return fmt.Sprintf(`key "%s" was found but was not valid to traverse BSON type %s`, knf.Key[depth], knf.Type)
	}

	return fmt.Sprintf(`key "%s" was not found`, knf.Key[depth])
}
