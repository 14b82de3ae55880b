// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/ikmak/bsonwire/x/bsonx/bsoncore"
)

// Binary represents a BSON binary value.
type Binary struct {
	Subtype byte
	Data    []byte
}

// Equal compares bp to bp2 and returns true if they are equal.
func (bp Binary) Equal(bp2 Binary) bool {
	if bp.Subtype != bp2.Subtype {
		return false
	}
	return bytes.Equal(bp.Data, bp2.Data)
}

// IsZero returns if bp is the empty Binary.
func (bp Binary) IsZero() bool {
	return bp.Subtype == 0 && len(bp.Data) == 0
}

// Regex represents a BSON regex value.
type Regex struct {
	Pattern string
	Options string
}

func (rp Regex) String() string {
	return fmt.Sprintf(`{"pattern": "%s", "options": "%s"}`, rp.Pattern, rp.Options)
}

// Equal compares rp to rp2 and returns true if they are equal.
func (rp Regex) Equal(rp2 Regex) bool {
	return rp.Pattern == rp2.Pattern && rp.Options == rp2.Options
}

// IsZero returns if rp is the empty Regex.
func (rp Regex) IsZero() bool {
	return rp.Pattern == "" && rp.Options == ""
}

// nativeRegex is a regex that also carries its compiled Go form. It encodes exactly like the
// Regex it embeds.
type nativeRegex struct {
	Regex
	re *regexp.Regexp
}

// DBPointer represents a BSON dbpointer value.
type DBPointer struct {
	DB      string
	Pointer ObjectID
}

func (d DBPointer) String() string {
	return fmt.Sprintf("DBPointer(%s, %s)", d.DB, d.Pointer.String())
}

// Equal compares d to d2 and returns true if they are equal.
func (d DBPointer) Equal(d2 DBPointer) bool {
	return d.DB == d2.DB && d.Pointer == d2.Pointer
}

// IsZero returns if d is the empty DBPointer.
func (d DBPointer) IsZero() bool {
	return d.DB == "" && d.Pointer.IsZero()
}

// CodeWithScope represents a BSON JavaScript code with scope value. The code is never evaluated.
type CodeWithScope struct {
	Code  string
	Scope *Document
}

func (cws CodeWithScope) String() string {
	return fmt.Sprintf(`CodeWithScope{"%s", %v}`, cws.Code, cws.Scope)
}

// Equal compares cws to cws2 and returns true if they are equal.
func (cws CodeWithScope) Equal(cws2 CodeWithScope) bool {
	return cws.Code == cws2.Code && cws.Scope.Equal(cws2.Scope)
}

// Timestamp represents a BSON timestamp value.
type Timestamp struct {
	T uint32
	I uint32
}

// Equal compares tp to tp2 and returns true if they are equal.
func (tp Timestamp) Equal(tp2 Timestamp) bool {
	return tp.T == tp2.T && tp.I == tp2.I
}

// IsZero returns if tp is the zero Timestamp.
func (tp Timestamp) IsZero() bool {
	return tp.T == 0 && tp.I == 0
}

// DateTime represents the BSON datetime value: milliseconds since the Unix epoch.
type DateTime int64

// NewDateTimeFromTime creates a new DateTime from a Time.
func NewDateTimeFromTime(t time.Time) DateTime {
	return DateTime(t.Unix()*1e3 + int64(t.Nanosecond())/1e6)
}

// Time returns the date as a time type.
func (d DateTime) Time() time.Time {
	return time.Unix(int64(d)/1000, int64(d)%1000*1000000)
}

// DBRef is a document of the shape {$ref, $id[, $db], ...}. The deserializer promotes such
// documents to a DBRef; the serializer writes it back as an embedded document with the
// reference fields first.
type DBRef struct {
	Collection string
	ID         Value
	DB         string
	Fields     *Document
}

// Document returns the embedded document form of r.
func (r DBRef) Document() *Document {
	doc := NewDocument()
	doc.Append("$ref", VC.String(r.Collection))
	doc.Append("$id", r.ID)
	if r.DB != "" {
		doc.Append("$db", VC.String(r.DB))
	}
	for _, elem := range r.Fields.Elements() {
		doc.Append(elem.Key, elem.Value)
	}
	return doc
}

// Equal compares r to r2 and returns true if they are equal.
func (r DBRef) Equal(r2 DBRef) bool {
	return r.Collection == r2.Collection && r.DB == r2.DB && r.ID.Equal(r2.ID) &&
		r.Fields.Len() == r2.Fields.Len() && (r.Fields.Len() == 0 || r.Fields.Equal(r2.Fields))
}

func (r DBRef) String() string {
	return fmt.Sprintf("DBRef(%s, %s)", r.Collection, r.ID)
}

// Raw is an encoded BSON document or array kept as bytes. The serializer writes it verbatim.
type Raw []byte

// Validate checks the length prefix and terminator of r.
func (r Raw) Validate() error {
	length, _, ok := bsoncore.ReadLength(r)
	if !ok || length < 5 || int(length) != len(r) {
		return ErrInvalidSize
	}
	if r[len(r)-1] != 0x00 {
		return ErrMissingTerminator
	}
	return nil
}
