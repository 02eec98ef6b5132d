// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import "time"

// Counters records how many times each problem function was evaluated
// during a solve and the cumulative wall-clock time spent inside the
// four functions on the hot path. Counts of the fused composite
// evaluations are only non-zero when the problem overrides them;
// otherwise the composed basic evaluations are counted instead.
//
// A Counters value belongs to a single solve; it is part of the
// solver result, never shared global state.
type Counters struct {
	Func           int
	Grad           int
	Constr         int
	ConstrGradProd int
	PsiHatY        int
	GradPsi        int
	PsiGradPsi     int

	FuncDuration           time.Duration
	GradDuration           time.Duration
	ConstrDuration         time.Duration
	ConstrGradProdDuration time.Duration
}

// measure increments count and returns a function that adds the
// elapsed time to dur, for use with defer.
func (c *Counters) measure(count *int, dur *time.Duration) func() {
	*count++
	start := time.Now()
	return func() { *dur += time.Since(start) }
}

// withCounters decorates p with a fresh evaluation-counter record.
// The returned shallow copy shares all evaluation functions with p;
// only the copy counts its evaluations.
func withCounters(p *Problem) (*Problem, *Counters) {
	q := *p
	q.counters = new(Counters)
	return &q, q.counters
}
