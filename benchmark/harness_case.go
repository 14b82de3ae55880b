// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type CaseDefinition struct {
	Bench   BenchCase
	Count   int
	Size    int
	Runtime time.Duration

	startAt time.Time
}

// stopwatch satisfies TimerManager outside of the testing package. Trials are timed as a whole
// by Run, so the calls are no-ops.
type stopwatch struct{}

func (stopwatch) ResetTimer() {}
func (stopwatch) StartTimer() {}
func (stopwatch) StopTimer()  {}

// Run executes the case repeatedly until both its runtime and MinIterations trials are reached,
// or ctx is done.
func (c *CaseDefinition) Run(ctx context.Context, log logrus.FieldLogger) *BenchResult {
	out := &BenchResult{
		DataSize:   c.Size,
		Name:       c.Name(),
		Operations: c.Count,
	}
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, ExecutionTimeout)
	defer cancel()

	log = log.WithField("case", out.Name)
	log.WithField("count", c.Count).Info("=== RUN")
	c.startAt = time.Now()
	for {
		if time.Since(c.startAt) > c.Runtime {
			if out.Trials >= MinIterations {
				break
			} else if ctx.Err() != nil {
				break
			}
		}

		res := Result{
			Iterations: c.Count,
		}
		runStartAt := time.Now()
		res.Error = c.Bench(ctx, stopwatch{}, c.Count)
		res.Duration = time.Since(runStartAt)

		if res.Error == context.Canceled {
			break
		}

		out.Trials++
		out.Raw = append(out.Raw, res)
	}
	out.Duration = time.Since(c.startAt)

	entry := log.WithFields(logrus.Fields{
		"trials":   out.Trials,
		"duration": out.Duration.Round(time.Millisecond),
	})
	if out.HasErrors() {
		entry.WithField("errors", out.errReport()).Error("--- FAIL")
	} else {
		entry.Info("--- PASS")
	}

	return out
}

func (c *CaseDefinition) String() string {
	return fmt.Sprintf("name=%s, count=%d, runtime=%s timeout=%s",
		c.Name(), c.Count, c.Runtime, ExecutionTimeout)
}

func (c *CaseDefinition) Name() string { return getName(c.Bench) }

func getName(i interface{}) string {
	n := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	parts := strings.Split(n, ".")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}

	return n

}
