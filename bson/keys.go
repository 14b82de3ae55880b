// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// dbRefKeys are the '$' prefixed keys a DBRef shaped document may carry.
var dbRefKeys = map[string]struct{}{
	"$ref": {},
	"$id":  {},
	"$db":  {},
}

// validateKey enforces the key policy. Null bytes and invalid UTF-8 are always rejected; with
// checkKeys a key must not start with '$' or contain '.', except for the DBRef keys.
func validateKey(key string, checkKeys bool) error {
	if strings.IndexByte(key, 0x00) >= 0 {
		return errors.Wrapf(ErrNullBytesInKey, "key %q", key)
	}
	if !utf8.ValidString(key) {
		return errors.Wrapf(ErrInvalidUTF8, "key %q", key)
	}
	if !checkKeys {
		return nil
	}
	if strings.HasPrefix(key, "$") {
		if _, ok := dbRefKeys[key]; !ok {
			return errors.Wrapf(ErrInvalidKey, "key %q must not start with '$'", key)
		}
		return nil
	}
	if strings.IndexByte(key, '.') >= 0 {
		return errors.Wrapf(ErrInvalidKey, "key %q must not contain '.'", key)
	}
	return nil
}

func validateString(s string) error {
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	return nil
}
