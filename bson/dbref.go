// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strings"
)

// promoteDBRef reports whether doc has the DBRef shape and returns the DBRef if so. A document
// qualifies when every '$' prefixed key is one of $ref, $id and $db, $ref is a string, $id is
// present and not null, and $db, when present, is a string.
func promoteDBRef(doc *Document) (DBRef, bool) {
	var ref DBRef
	var hasRef, hasID bool
	for _, elem := range doc.elems {
		if !strings.HasPrefix(elem.Key, "$") {
			continue
		}
		switch elem.Key {
		case "$ref":
			s, ok := elem.Value.StringValueOK()
			if !ok {
				return DBRef{}, false
			}
			ref.Collection, hasRef = s, true
		case "$id":
			if elem.Value.t == TypeNull || elem.Value.t == TypeUndefined {
				return DBRef{}, false
			}
			ref.ID, hasID = elem.Value, true
		case "$db":
			s, ok := elem.Value.StringValueOK()
			if !ok {
				return DBRef{}, false
			}
			ref.DB = s
		default:
			return DBRef{}, false
		}
	}
	if !hasRef || !hasID {
		return DBRef{}, false
	}

	for _, elem := range doc.elems {
		if _, ok := dbRefKeys[elem.Key]; ok {
			continue
		}
		if ref.Fields == nil {
			ref.Fields = NewDocument()
		}
		ref.Fields.Append(elem.Key, elem.Value)
	}
	return ref, true
}
