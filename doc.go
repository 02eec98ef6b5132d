// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alpaqa solves nonlinear programs of the form
//
//	minimize   f(x)
//	subject to x ∈ C,  g(x) ∈ D
//
// where C is an axis-aligned box on the decision variables and D is an
// axis-aligned box on the m general constraint values.
//
// The solver is two-level. The outer level is an augmented Lagrangian
// method (ALM) that maintains Lagrange multipliers y and a diagonal
// penalty vector Σ; see ALMSolver. The inner level is PANOC, a proximal
// gradient algorithm accelerated by limited-memory BFGS directions and
// safeguarded by a line search on the forward–backward envelope; see
// PANOCSolver. At each outer iteration PANOC minimises the smooth
// augmented Lagrangian
//
//	ψ(x) = f(x) + ½ distΣ²(g(x) + Σ⁻¹y, D)
//
// over the box C to a tolerance that the outer driver tightens as the
// multipliers converge.
//
// Problems are described by a Problem value, a record of evaluation
// functions for f, ∇f, g and the Jacobian-transpose product ∇g(x)ᵀy.
// Derivatives are supplied by the caller; the package performs no
// automatic differentiation. Solves are single-threaded and
// deterministic, and allocate their workspace once at entry.
package alpaqa
