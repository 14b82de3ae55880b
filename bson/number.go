// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
)

// numberFromFloat selects the BSON representation of a generic number. Integral values that fit an
// int32 become Int32, integral values within ±2^53 stay Double, larger integral values inside the
// int64 range become Int64 and everything else is a Double. Negative zero is kept as a Double so
// the sign survives a round trip.
func numberFromFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return VC.Double(f)
	}
	if f == 0 && math.Signbit(f) {
		return VC.Double(f)
	}
	if f >= math.MinInt32 && f <= math.MaxInt32 {
		return VC.Int32(int32(f))
	}
	if f >= minSafeInteger && f <= maxSafeInteger {
		return VC.Double(f)
	}
	// -2^63 is exactly representable; 2^63 is not an int64.
	if f >= math.MinInt64 && f < math.MaxInt64 {
		return VC.Int64(int64(f))
	}
	return VC.Double(f)
}

// numberFromInt applies the generic number rules to an integer without a float64 detour, so
// integers above 2^53 keep every bit.
func numberFromInt(i int64) Value {
	switch {
	case i >= math.MinInt32 && i <= math.MaxInt32:
		return VC.Int32(int32(i))
	case i >= minSafeInteger && i <= maxSafeInteger:
		return VC.Double(float64(i))
	default:
		return VC.Int64(i)
	}
}
