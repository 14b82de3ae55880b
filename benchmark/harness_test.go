// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"io/ioutil"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCasesFilter(t *testing.T) {
	assert.Len(t, Cases(), len(getAllCases()))

	canaries := Cases("canary")
	require.Len(t, canaries, 2)
	assert.Equal(t, "CanaryIncCase", canaries[0].Name())
	assert.Equal(t, "GlobalCanaryIncCase", canaries[1].Name())

	assert.Len(t, Cases("STREAM"), 1)
	assert.Empty(t, Cases("no such case"))
}

func TestCaseDefinitionRun(t *testing.T) {
	log := logrus.New()
	log.Out = ioutil.Discard

	c := &CaseDefinition{Bench: BSONFlatDocumentEncoding, Count: ten, Size: flatDocumentSize * ten}
	res := c.Run(context.Background(), log)
	assert.Equal(t, "BSONFlatDocumentEncoding", res.Name)
	assert.Equal(t, MinIterations, res.Trials)
	assert.Len(t, res.Raw, MinIterations)
	assert.False(t, res.HasErrors())

	sum, err := res.Summarize()
	require.NoError(t, err)
	assert.True(t, sum.OpsPerSecMin <= sum.OpsPerSecond)
	assert.True(t, sum.OpsPerSecond <= sum.OpsPerSecMax)
	assert.True(t, sum.MBPerSecond > 0)
}

func TestBenchResultErrors(t *testing.T) {
	res := &BenchResult{
		Name:       "failing",
		Operations: 1,
		Raw: []Result{
			{Duration: time.Millisecond, Iterations: 1},
			{Duration: 2 * time.Millisecond, Iterations: 1, Error: errors.New("boom")},
		},
	}
	assert.True(t, res.HasErrors())
	assert.Equal(t, []string{"boom"}, res.errReport())
	assert.Equal(t, 3*time.Millisecond, res.totalDuration())

	sum, err := res.Summarize()
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, sum.OpsPerSecMax, 1e-6)
	assert.InDelta(t, 500.0, sum.OpsPerSecMin, 1e-6)
	assert.Zero(t, sum.MBPerSecond)

	_, err = (&BenchResult{}).Summarize()
	assert.Error(t, err)
}
