// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

// Status represents the outcome of a solve. Statuses greater than zero
// indicate a sufficiently good iterate was found. Statuses less than
// zero signify the solve was terminated before reaching the requested
// tolerance; the iterate carried by the result is the last one reached
// and may be acceptable to the caller.
type Status int

// NotTerminated is the status of a solve that is still in progress.
const NotTerminated Status = 0

const (
	// Converged indicates, for the inner solver, that the stationarity
	// residual is below the requested tolerance, and for the outer
	// solver, that the constraint violation is below the outer
	// tolerance. The outer solver does not require the last inner solve
	// to have converged, so its residual may be larger.
	Converged Status = iota + 1
)

const (
	// Failure is a generic failure status. It is never returned by the
	// solvers in this package.
	Failure Status = -(iota + 1)
	// IterationLimit indicates the iteration cap was reached.
	IterationLimit
	// RuntimeLimit indicates the wall-clock budget was exhausted.
	RuntimeLimit
	// NotFinite indicates an evaluation produced NaN or ±Inf. The
	// result carries the last finite iterate.
	NotFinite
	// Interrupted indicates the caller raised the interrupt flag.
	Interrupted
	// StepFailed indicates the quadratic upper bound of the Lipschitz
	// test still failed after MaxLipschitzDoublings doublings of the
	// Lipschitz estimate, or when one more doubling would exceed LMax,
	// so not even the pure proximal gradient step could make progress.
	StepFailed
	// InvalidArgument indicates parameter validation failed before any
	// iteration took place.
	InvalidArgument
)

func (s Status) String() string {
	return statusNames[s]
}

var statusNames = map[Status]string{
	NotTerminated:   "NotTerminated",
	Converged:       "Converged",
	Failure:         "Failure",
	IterationLimit:  "IterationLimit",
	RuntimeLimit:    "RuntimeLimit",
	NotFinite:       "NotFinite",
	Interrupted:     "Interrupted",
	StepFailed:      "StepFailed",
	InvalidArgument: "InvalidArgument",
}
