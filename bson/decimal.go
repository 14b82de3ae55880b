// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0
//
// Based on gopkg.in/mgo.v2/bson by Gustavo Niemeyer
// See THIRD-PARTY-NOTICES for original license terms.

package bson

import (
	"strconv"
)

const minDecimal128Exp = -6176

// Decimal128 holds decimal128 BSON values. The codec moves the 16 bytes opaquely; no arithmetic
// is provided.
type Decimal128 struct {
	h, l uint64
}

// NewDecimal128 creates a Decimal128 from its high and low 64 bits.
func NewDecimal128(h, l uint64) Decimal128 {
	return Decimal128{h: h, l: l}
}

// GetBytes returns the high and low 64 bits of d.
func (d Decimal128) GetBytes() (uint64, uint64) {
	return d.h, d.l
}

// combination returns the five bits after the sign, which mark NaN (0x1F) and infinity (0x1E).
func (d Decimal128) combination() uint64 { return d.h >> 58 & 0x1F }

func (d Decimal128) negative() bool { return d.h>>63 == 1 }

// IsNaN returns whether d is NaN.
func (d Decimal128) IsNaN() bool { return d.combination() == 0x1F }

// IsInf returns +1 for Infinity, -1 for -Infinity and 0 otherwise.
func (d Decimal128) IsInf() int {
	switch {
	case d.combination() != 0x1E:
		return 0
	case d.negative():
		return -1
	default:
		return 1
	}
}

// finite splits a finite d into its exponent and 113-bit significand. Encodings with the 0b11
// prefix are non-canonical and read as a zero significand.
func (d Decimal128) finite() (exp int, h, l uint64) {
	if d.h>>61&3 == 3 {
		return int(d.h>>47&(1<<14-1)) + minDecimal128Exp, 0, 0
	}
	return int(d.h>>49&(1<<14-1)) + minDecimal128Exp, d.h & (1<<49 - 1), d.l
}

// String returns the decimal value in the Extended JSON $numberDecimal form.
func (d Decimal128) String() string {
	if d.IsNaN() {
		return "NaN"
	}
	sign := ""
	if d.negative() {
		sign = "-"
	}
	if d.IsInf() != 0 {
		return sign + "Infinity"
	}

	e, h, l := d.finite()
	if h == 0 && l == 0 && e == 0 {
		return sign + "0"
	}

	var repr [48]byte
	last := len(repr)
	i := len(repr)
	dot := len(repr) + e
	var rem uint32
digits:
	for group := 0; group < 5; group++ {
		h, l, rem = divmod(h, l, 1e9)
		for n := 0; n < 9; n++ {
			if i < len(repr) && (dot == i || l == 0 && h == 0 && rem > 0 && rem < 10 && (dot < i-6 || e > 0)) {
				e += len(repr) - i
				i--
				repr[i] = '.'
				last = i - 1
				dot = len(repr)
			}
			c := '0' + byte(rem%10)
			rem /= 10
			i--
			repr[i] = c
			if l == 0 && h == 0 && rem == 0 && i == len(repr)-1 && (dot < i-5 || e > 0) {
				last = i
				break digits
			}
			if c != '0' {
				last = i
			}
			if dot > i && l == 0 && h == 0 && rem == 0 {
				break digits
			}
		}
	}

	s := sign + string(repr[last:])
	switch {
	case e > 0:
		return s + "E+" + strconv.Itoa(e)
	case e < 0:
		return s + "E" + strconv.Itoa(e)
	default:
		return s
	}
}

// divmod divides the 128-bit value h:l by div in 32-bit steps.
func divmod(h, l uint64, div uint32) (qh, ql uint64, rem uint32) {
	d := uint64(div)
	var q [4]uint64
	var r uint64
	for i, word := range [4]uint64{h >> 32, h & (1<<32 - 1), l >> 32, l & (1<<32 - 1)} {
		cur := r<<32 + word
		q[i] = cur / d
		r = cur % d
	}
	return q[0]<<32 | q[1], q[2]<<32 | q[3], uint32(r)
}
