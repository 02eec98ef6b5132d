// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import "time"

// Stats contains the work statistics of an outer solve.
type Stats struct {
	// OuterIterations and InnerIterations count the ALM iterations
	// and the PANOC iterations summed over all sub-problem solves.
	OuterIterations int
	InnerIterations int

	// Evaluations counts the problem-function evaluations.
	Evaluations Counters

	// Elapsed is the total wall-clock time of the solve.
	Elapsed time.Duration
}

// Result is the answer of an ALM solve.
type Result struct {
	// Status describes how the solve terminated. The iterate fields
	// are valid for every status except InvalidArgument.
	Status Status

	// X is the final iterate, Y the final Lagrange multipliers and
	// Sigma the final penalty weights. The slices are owned by the
	// caller of Solve; they never alias the inputs.
	X, Y, Sigma []float64

	// F and Psi are the objective and the augmented Lagrangian at X.
	F, Psi float64

	// GradPsiNorm is ‖∇ψ(X)‖∞ and ResidualNorm is the fixed-point
	// residual ‖R_γ‖∞ reported by the last inner solve, taken at the
	// iterate its last iteration started from (see PANOCStats).
	GradPsiNorm  float64
	ResidualNorm float64

	// Gamma is the proximal step size γ of the last inner solve on
	// exit.
	Gamma float64

	// ConstraintNorm is the constraint violation ‖e‖∞ of the last
	// outer iteration, zero when the problem has no general
	// constraints.
	ConstraintNorm float64

	Stats
}
