// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Element is a key-value pair of a BSON document.
type Element struct {
	Key   string
	Value Value
}

// Equal compares e and e2 and returns true if they are equal.
func (e Element) Equal(e2 Element) bool {
	return e.Key == e2.Key && e.Value.Equal(e2.Value)
}

func (e Element) String() string {
	return fmt.Sprintf(`%q: %s`, e.Key, e.Value)
}

// Document is a mutable ordered map that represents a BSON document. Elements are written in
// insertion order; a sorted index makes lookups logarithmic.
type Document struct {
	elems []Element
	index []uint32
}

// NewDocument creates a document from the given elements, in order.
func NewDocument(elems ...Element) *Document {
	doc := &Document{
		elems: make([]Element, 0, len(elems)),
		index: make([]uint32, 0, len(elems)),
	}
	doc.AppendElements(elems...)
	return doc
}

// Copy makes a shallow copy of this document.
func (d *Document) Copy() *Document {
	if d == nil {
		return nil
	}

	doc := &Document{
		elems: make([]Element, len(d.elems), cap(d.elems)),
		index: make([]uint32, len(d.index), cap(d.index)),
	}

	copy(doc.elems, d.elems)
	copy(doc.index, d.index)

	return doc
}

// Len returns the number of elements in the document.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}

	return len(d.elems)
}

// Append adds an element to the end of the document, creating it from the key and value provided.
func (d *Document) Append(key string, val Value) *Document {
	return d.AppendElements(Element{Key: key, Value: val})
}

// AppendElements adds each element to the end of the document, in order.
func (d *Document) AppendElements(elems ...Element) *Document {
	if d == nil {
		d = &Document{elems: make([]Element, 0, len(elems)), index: make([]uint32, 0, len(elems))}
	}

	for _, elem := range elems {
		d.elems = append(d.elems, elem)
		i := d.search(elem.Key)
		d.index = append(d.index, 0)
		copy(d.index[i+1:], d.index[i:])
		d.index[i] = uint32(len(d.elems) - 1)
	}
	return d
}

// Set replaces an element of a document. If an element with a matching key is
// found, the element will be replaced with the one provided. If the document
// does not have an element with that key, the element is appended to the
// document instead.
func (d *Document) Set(key string, val Value) *Document {
	if d == nil {
		d = NewDocument()
	}

	elem := Element{Key: key, Value: val}
	i := d.search(key)
	if i < len(d.index) && d.elems[d.index[i]].Key == key {
		d.elems[d.index[i]] = elem
		return d
	}
	return d.AppendElements(elem)
}

// search returns the position in the index of the first element whose key is >= key.
func (d *Document) search(key string) int {
	return sort.Search(len(d.index), func(i int) bool { return d.elems[d.index[i]].Key >= key })
}

// Lookup searches the document and potentially subdocuments or arrays for the
// provided key. Each key provided to this method represents a layer of depth.
//
// This method will return an empty Value if they key does not exist. To know if they key actually
// exists, use LookupErr.
func (d *Document) Lookup(key ...string) Value {
	val, _ := d.LookupErr(key...)
	return val
}

// LookupErr searches the document and potentially subdocuments or arrays for the
// provided key. Each key provided to this method represents a layer of depth.
func (d *Document) LookupErr(key ...string) (Value, error) {
	if d == nil || len(key) == 0 {
		return Value{}, KeyNotFound{Key: key}
	}

	i := d.search(key[0])
	if i >= len(d.index) || d.elems[d.index[i]].Key != key[0] {
		return Value{}, KeyNotFound{Key: key}
	}

	val := d.elems[d.index[i]].Value
	if len(key) == 1 {
		return val, nil
	}

	var err error
	switch val.Type() {
	case TypeEmbeddedDocument:
		doc, ok := val.DocumentOK()
		if !ok {
			err = KeyNotFound{Type: val.Type()}
			break
		}
		val, err = doc.LookupErr(key[1:]...)
	case TypeArray:
		arr, ok := val.ArrayOK()
		if !ok {
			err = KeyNotFound{Type: val.Type()}
			break
		}
		val, err = arr.lookupTraverse(key[1:]...)
	default:
		err = KeyNotFound{Type: val.Type()}
	}

	switch tt := err.(type) {
	case KeyNotFound:
		tt.Depth++
		tt.Key = key
		return Value{}, tt
	case nil:
		return val, nil
	default:
		return Value{}, err
	}
}

// Delete removes the first element with the given key and returns it. If the key does not exist
// an empty Element is returned and the delete is a no-op.
func (d *Document) Delete(key string) Element {
	if d == nil {
		return Element{}
	}

	i := d.search(key)
	if i >= len(d.index) || d.elems[d.index[i]].Key != key {
		return Element{}
	}

	keyIndex := d.index[i]
	elem := d.elems[keyIndex]
	d.index = append(d.index[:i], d.index[i+1:]...)
	d.elems = append(d.elems[:keyIndex], d.elems[keyIndex+1:]...)
	for j := range d.index {
		if d.index[j] > keyIndex {
			d.index[j]--
		}
	}
	return elem
}

// Index retrieves the element at the given index in a Document. It panics if the index is
// out-of-bounds or if d is nil.
func (d *Document) Index(index uint) Element {
	return d.elems[index]
}

// IndexOK is the same as Index, but returns a boolean instead of panicking.
func (d *Document) IndexOK(index uint) (Element, bool) {
	if d == nil || index >= uint(len(d.elems)) {
		return Element{}, false
	}

	return d.elems[index], true
}

// Elements returns a copy of the elements of the document, in order.
func (d *Document) Elements() []Element {
	if d == nil {
		return nil
	}
	elems := make([]Element, len(d.elems))
	copy(elems, d.elems)
	return elems
}

// Keys returns the keys of the document, in order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.elems))
	for _, elem := range d.elems {
		keys = append(keys, elem.Key)
	}
	return keys
}

// Reset clears a document so it can be reused.
func (d *Document) Reset() {
	if d == nil {
		return
	}

	for idx := range d.elems {
		d.elems[idx] = Element{}
	}
	d.elems = d.elems[:0]
	d.index = d.index[:0]
}

// Equal compares this document to another, returning true if they are equal. Element order is
// significant.
func (d *Document) Equal(d2 *Document) bool {
	if d == nil && d2 == nil {
		return true
	}

	if d == nil || d2 == nil {
		return false
	}

	if len(d.elems) != len(d2.elems) {
		return false
	}
	for index := range d.elems {
		if !d.elems[index].Equal(d2.elems[index]) {
			return false
		}
	}
	return true
}

// String implements the fmt.Stringer interface.
func (d *Document) String() string {
	if d == nil {
		return "<nil>"
	}

	var buf bytes.Buffer
	buf.Write([]byte("bson.Document{"))
	for idx, elem := range d.elems {
		if idx > 0 {
			buf.Write([]byte(", "))
		}
		fmt.Fprintf(&buf, "%s", elem)
	}
	buf.WriteByte('}')

	return buf.String()
}

// Array represents an array in BSON. It is written as a document keyed "0", "1", ... by position.
type Array struct {
	values []Value
}

// NewArray creates a new array with the specified values.
func NewArray(values ...Value) *Array {
	arr := &Array{values: make([]Value, len(values))}
	copy(arr.values, values)
	return arr
}

// Len returns the number of elements in the array.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.values)
}

// Reset clears all elements from the array.
func (a *Array) Reset() {
	if a == nil {
		return
	}

	for idx := range a.values {
		a.values[idx] = Value{}
	}
	a.values = a.values[:0]
}

// Index functions in a similar way to a Go native array or slice, that is, if the given index is
// out of bounds, this method will panic. Len can be used to retrieve the length of this Array.
func (a *Array) Index(index uint) Value { return a.values[index] }

// IndexOK is the same as Index, but returns a boolean instead of panicking.
func (a *Array) IndexOK(index uint) (Value, bool) {
	if a == nil || index >= uint(len(a.values)) {
		return Value{}, false
	}
	return a.values[index], true
}

// Values returns a copy of the values of the array.
func (a *Array) Values() []Value {
	if a == nil {
		return nil
	}
	values := make([]Value, len(a.values))
	copy(values, a.values)
	return values
}

// Lookup traverses the array and any nested documents or arrays. The first key is the position in
// this array.
func (a *Array) Lookup(key ...string) Value {
	val, _ := a.LookupErr(key...)
	return val
}

// LookupErr is the same as Lookup, but returns an error when a key cannot be traversed.
func (a *Array) LookupErr(key ...string) (Value, error) {
	val, err := a.lookupTraverse(key...)
	if knf, ok := err.(KeyNotFound); ok {
		knf.Key = key
		return Value{}, knf
	}
	return val, err
}

func (a *Array) lookupTraverse(keys ...string) (Value, error) {
	if a == nil || len(keys) == 0 {
		return Value{}, KeyNotFound{}
	}
	index, err := strconv.ParseUint(keys[0], 10, 0)
	if err != nil || index >= uint64(len(a.values)) {
		return Value{}, KeyNotFound{}
	}
	val := a.values[index]

	if len(keys) == 1 {
		return val, nil
	}

	switch val.Type() {
	case TypeEmbeddedDocument:
		if doc, ok := val.DocumentOK(); ok {
			val, err = doc.LookupErr(keys[1:]...)
		} else {
			err = KeyNotFound{Type: val.Type()}
		}
	case TypeArray:
		if arr, ok := val.ArrayOK(); ok {
			val, err = arr.lookupTraverse(keys[1:]...)
		} else {
			err = KeyNotFound{Type: val.Type()}
		}
	default:
		err = KeyNotFound{Type: val.Type()}
	}

	switch tt := err.(type) {
	case KeyNotFound:
		tt.Depth++
		return Value{}, tt
	case nil:
		return val, nil
	default:
		return Value{}, err
	}
}

// Append adds the given values to the end of the array.
//
// Append is safe to call on a nil Array.
func (a *Array) Append(values ...Value) *Array {
	if a == nil {
		a = &Array{values: make([]Value, 0, len(values))}
	}
	a.values = append(a.values, values...)
	return a
}

// Set replaces the value at the given index with the parameter value. It panics if the index is
// out of bounds.
func (a *Array) Set(index uint, value Value) *Array {
	a.values[index] = value
	return a
}

// Delete removes the value at the given index from the array.
func (a *Array) Delete(index uint) Value {
	if a == nil || index >= uint(len(a.values)) {
		return Value{}
	}

	value := a.values[index]
	a.values = append(a.values[:index], a.values[index+1:]...)

	return value
}

// Equal compares this array to another, returning true if they are equal.
func (a *Array) Equal(a2 *Array) bool {
	if a == nil && a2 == nil {
		return true
	}

	if a == nil || a2 == nil {
		return false
	}

	if len(a.values) != len(a2.values) {
		return false
	}

	for idx := range a.values {
		if !a.values[idx].Equal(a2.values[idx]) {
			return false
		}
	}

	return true
}

// String implements the fmt.Stringer interface.
func (a *Array) String() string {
	if a == nil {
		return "<nil>"
	}

	var buf bytes.Buffer
	buf.Write([]byte("bson.Array["))
	for idx, val := range a.values {
		if idx > 0 {
			buf.Write([]byte(", "))
		}
		fmt.Fprintf(&buf, "%s", val)
	}
	buf.WriteByte(']')

	return buf.String()
}
