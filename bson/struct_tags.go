// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"reflect"
	"strings"
)

// structTags represents the struct tag fields used when a Go struct is converted to a document.
//
// The lowercased field name is used as the key for each exported field but this behavior may be
// changed using a struct tag:
//
//	omitempty  Only include the field if it's not set to the zero value for the type or to
//	           empty slices or maps.
//
//	skip       This struct field should be skipped. This is denoted by a "-" name.
type structTags struct {
	Name      string
	OmitEmpty bool
	Skip      bool
}

// parseStructTags handles the bson struct tag. The tag formats accepted are:
//
//	"[<key>][,<flag1>[,<flag2>]]"
//
//	`(...) bson:"[<key>][,<flag1>[,<flag2>]]" (...)`
//
// An example:
//
//	type T struct {
//	    A bool
//	    B int    "myb"
//	    C string "myc,omitempty"
//	    D string `bson:",omitempty" json:"jsonkey"`
//	    E string `bson:"-"`
//	}
func parseStructTags(sf reflect.StructField) structTags {
	key := strings.ToLower(sf.Name)
	tag, ok := sf.Tag.Lookup("bson")
	if !ok && !strings.Contains(string(sf.Tag), ":") && len(sf.Tag) > 0 {
		tag = string(sf.Tag)
	}
	return parseTags(key, tag)
}

func parseTags(key string, tag string) structTags {
	var st structTags
	if tag == "-" {
		st.Skip = true
		return st
	}

	for idx, str := range strings.Split(tag, ",") {
		if idx == 0 && str != "" {
			key = str
		}
		if str == "omitempty" {
			st.OmitEmpty = true
		}
	}

	st.Name = key

	return st
}

// isZero reports whether v is empty in the omitempty sense.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	case reflect.Struct:
		if z, ok := v.Interface().(interface{ IsZero() bool }); ok {
			return z.IsZero()
		}
		return v.IsZero()
	default:
		return v.IsZero()
	}
}
