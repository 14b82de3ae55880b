// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

type BenchResult struct {
	Name       string
	Trials     int
	Duration   time.Duration
	Raw        []Result
	DataSize   int
	Operations int
	hasErrors  *bool
}

// Summary holds the throughput of a case computed over its trials.
type Summary struct {
	Name          string  `json:"name"`
	Trials        int     `json:"trials"`
	Seconds       float64 `json:"seconds"`
	OpsPerSecond  float64 `json:"ops_per_second"`
	OpsPerSecMin  float64 `json:"ops_per_second_min"`
	OpsPerSecMax  float64 `json:"ops_per_second_max"`
	MBPerSecond   float64 `json:"mb_per_second,omitempty"`
	StdDevSeconds float64 `json:"stddev_seconds"`
}

// Summarize computes the median, fastest and slowest throughput of the trials. The fastest trial
// has the smallest duration, so the minimum duration yields the maximum throughput.
func (r *BenchResult) Summarize() (Summary, error) {
	timings := r.timings()

	median, err := stats.Median(timings)
	if err != nil {
		return Summary{}, err
	}

	min, err := stats.Min(timings)
	if err != nil {
		return Summary{}, err
	}

	max, err := stats.Max(timings)
	if err != nil {
		return Summary{}, err
	}

	stddev, err := stats.StandardDeviation(timings)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		Name:          r.Name,
		Trials:        r.Trials,
		Seconds:       r.roundedRuntime().Seconds(),
		OpsPerSecond:  r.getThroughput(median),
		OpsPerSecMin:  r.getThroughput(max),
		OpsPerSecMax:  r.getThroughput(min),
		StdDevSeconds: stddev,
	}
	if r.DataSize > 0 {
		out.MBPerSecond = r.adjustResults(median) / 1e6
	}
	return out, nil
}

func (r *BenchResult) timings() []float64 {
	out := []float64{}
	for _, r := range r.Raw {
		out = append(out, r.Duration.Seconds())
	}
	return out
}

func (r *BenchResult) totalDuration() time.Duration {
	var out time.Duration
	for _, trial := range r.Raw {
		out += trial.Duration
	}
	return out
}

func (r *BenchResult) adjustResults(data float64) float64 { return float64(r.DataSize) / data }
func (r *BenchResult) getThroughput(data float64) float64 { return float64(r.Operations) / data }
func (r *BenchResult) roundedRuntime() time.Duration      { return roundDurationMS(r.Duration) }

func (r *BenchResult) String() string {
	return fmt.Sprintf("name=%s, trials=%d, secs=%s, busy=%s", r.Name, r.Trials, r.Duration, r.totalDuration())
}

func (r *BenchResult) HasErrors() bool {
	if r.hasErrors == nil {
		var val bool
		for _, res := range r.Raw {
			if res.Error != nil {
				val = true
				break
			}
		}
		r.hasErrors = &val
	}

	return *r.hasErrors
}

func (r *BenchResult) errReport() []string {
	errs := []string{}
	for _, res := range r.Raw {
		if res.Error != nil {
			errs = append(errs, res.Error.Error())
		}
	}
	return errs
}

type Result struct {
	Duration   time.Duration
	Iterations int
	Error      error
}

func roundDurationMS(d time.Duration) time.Duration {
	rounded := d.Round(time.Millisecond)
	if rounded == 1<<63-1 {
		return 0
	}
	return rounded
}
