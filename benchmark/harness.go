// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package benchmark measures the encoder and decoder on fixed document shapes. Cases run either
// under `go test -bench` through WrapCase or standalone through CaseDefinition.Run.
package benchmark

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	ExecutionTimeout = 5 * time.Minute
	StandardRuntime  = time.Minute
	MinimumRuntime   = 10 * time.Second
	MinIterations    = 100

	ten         = 10
	hundred     = ten * ten
	thousand    = ten * hundred
	tenThousand = ten * thousand
)

// TimerManager is the subset of *testing.B a case uses to exclude its setup from the timing.
type TimerManager interface {
	ResetTimer()
	StartTimer()
	StopTimer()
}

type BenchCase func(context.Context, TimerManager, int) error
type BenchFunction func(*testing.B)

func WrapCase(bench BenchCase) BenchFunction {
	name := getName(bench)
	return func(b *testing.B) {
		ctx := context.Background()
		b.ResetTimer()
		err := bench(ctx, b, b.N)
		require.NoError(b, err, "case='%s'", name)
	}
}

// Cases returns the case definitions whose names contain one of the filters, or every case when
// no filter is given.
func Cases(filters ...string) []*CaseDefinition {
	all := getAllCases()
	if len(filters) == 0 {
		return all
	}

	var out []*CaseDefinition
	for _, c := range all {
		for _, f := range filters {
			if strings.Contains(strings.ToLower(c.Name()), strings.ToLower(f)) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func getAllCases() []*CaseDefinition {
	return []*CaseDefinition{
		{
			Bench:   CanaryIncCase,
			Count:   hundred,
			Size:    -1,
			Runtime: MinimumRuntime,
		},
		{
			Bench:   GlobalCanaryIncCase,
			Count:   hundred,
			Size:    -1,
			Runtime: MinimumRuntime,
		},
		{
			Bench:   BSONFlatDocumentEncoding,
			Count:   tenThousand,
			Size:    flatDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFlatDocumentDecoding,
			Count:   tenThousand,
			Size:    flatDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepDocumentEncoding,
			Count:   tenThousand,
			Size:    deepDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepDocumentDecoding,
			Count:   tenThousand,
			Size:    deepDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFullDocumentEncoding,
			Count:   tenThousand,
			Size:    fullDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFullDocumentDecoding,
			Count:   tenThousand,
			Size:    fullDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFlatMapEncoding,
			Count:   tenThousand,
			Size:    flatDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFlatSerializeInto,
			Count:   tenThousand,
			Size:    flatDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONStreamDecoding,
			Count:   thousand,
			Size:    flatDocumentSize * streamLength * thousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONParallelEncoding,
			Count:   tenThousand,
			Size:    flatDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
	}
}
