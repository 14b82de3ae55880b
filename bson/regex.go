// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// regexOptionOrder lists the BSON regex options in the order they are written.
const regexOptionOrder = "ilmsux"

// normalizeRegexOptions returns options sorted alphabetically with duplicates removed. Options
// outside of "imxlsu" are rejected.
func normalizeRegexOptions(options string) (string, error) {
	if strings.IndexByte(options, 0x00) >= 0 {
		return "", ErrNullBytesInPattern
	}
	var present [len(regexOptionOrder)]bool
	for i := 0; i < len(options); i++ {
		idx := strings.IndexByte(regexOptionOrder, options[i])
		if idx < 0 {
			return "", errors.Wrapf(ErrInvalidRegexOptions, "option %q", options[i])
		}
		present[idx] = true
	}

	var buf [len(regexOptionOrder)]byte
	n := 0
	for i, ok := range present {
		if ok {
			buf[n] = regexOptionOrder[i]
			n++
		}
	}
	if n == len(options) && string(buf[:n]) == options {
		return options, nil
	}
	return string(buf[:n]), nil
}

// regexpValue converts a compiled Go regexp. A leading flag group such as "(?is)" is lifted into
// BSON options: i stays i, m stays m and s (dot matches newline) stays s. Other Go flags are kept
// in the pattern.
func regexpValue(re *regexp.Regexp) Value {
	pattern, options := splitGoFlags(re.String())
	return Value{t: TypeRegex, primitive: nativeRegex{Regex: Regex{Pattern: pattern, Options: options}, re: re}}
}

func splitGoFlags(expr string) (pattern, options string) {
	if !strings.HasPrefix(expr, "(?") {
		return expr, ""
	}
	end := strings.IndexByte(expr, ')')
	if end < 0 {
		return expr, ""
	}
	flags := expr[2:end]
	var opts []byte
	for i := 0; i < len(flags); i++ {
		switch flags[i] {
		case 'i', 'm', 's':
			opts = append(opts, flags[i])
		default:
			// U, negations and group syntax such as (?P<name>...) are not BSON options.
			return expr, ""
		}
	}
	normalized, _ := normalizeRegexOptions(string(opts))
	return expr[end+1:], normalized
}

// compileRegex builds the Go form of a BSON regex. Only the i, m and s options have a Go
// equivalent; x, l and u are dropped from the compiled form.
func compileRegex(pattern, options string) (*regexp.Regexp, error) {
	var flags []byte
	for i := 0; i < len(options); i++ {
		switch options[i] {
		case 'i', 'm', 's':
			flags = append(flags, options[i])
		}
	}
	if len(flags) > 0 {
		pattern = "(?" + string(flags) + ")" + pattern
	}
	return regexp.Compile(pattern)
}
