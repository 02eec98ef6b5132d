// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import (
	"math"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ALMSolver solves general nonlinear programs by an augmented
// Lagrangian method: it maintains Lagrange multipliers y and a
// diagonal penalty vector Σ for the constraints g(x) ∈ D, and calls a
// PANOC inner solver on the smooth sub-problem for each (y, Σ) with a
// tolerance that tightens across outer iterations.
type ALMSolver struct {
	Params ALMParams

	// PANOC parameterises the inner solver.
	PANOC PANOCParams

	// Interrupt, when non-nil, is forwarded to the inner solver and
	// sampled once per inner iteration.
	Interrupt *atomic.Bool
}

// Solve minimises prob starting from the primal point x0 and the
// multipliers y0. y0 may be nil for a cold start. x0 and y0 are not
// modified; the returned Result owns its iterate slices.
//
// A non-nil error reports a defective problem description or
// parameter set, found before any iteration. Every other outcome is
// a normal termination described by Result.Status.
func (s *ALMSolver) Solve(prob *Problem, x0, y0 []float64) (Result, error) {
	params := s.Params.withDefaults()
	if err := params.validate(); err != nil {
		return Result{Status: InvalidArgument}, err
	}
	if err := prob.check(); err != nil {
		return Result{Status: InvalidArgument}, err
	}
	if len(x0) != prob.N {
		return Result{Status: InvalidArgument}, InvalidParameterError{"x0", "must have length Problem.N"}
	}
	if y0 != nil && len(y0) != prob.M {
		return Result{Status: InvalidArgument}, InvalidParameterError{"y0", "must be nil or have length Problem.M"}
	}

	start := time.Now()
	prob, counters := withCounters(prob)
	n, m := prob.N, prob.M

	x := make([]float64, n)
	copy(x, x0)
	y := make([]float64, m)
	if y0 != nil {
		copy(y, y0)
	}
	sigma := make([]float64, m)
	hatY := make([]float64, m)
	e := make([]float64, m)
	eOld := make([]float64, m)

	s.initPenalty(prob, params, x, sigma, e)

	inner := &PANOCSolver{Params: s.PANOC, Interrupt: s.Interrupt}
	eps := params.InitialInnerTolerance
	if m == 0 {
		// No multipliers to converge, so there is nothing to gain
		// from loose early sub-problems.
		eps = params.InnerTolerance
	}

	res := Result{Status: IterationLimit, X: x, Y: y, Sigma: sigma}
	var eNormOld float64
	for k := 0; k < params.MaxIter; k++ {
		stats, err := inner.Solve(prob, sigma, y, eps, x, hatY)
		if err != nil {
			return Result{Status: InvalidArgument}, err
		}
		res.OuterIterations = k + 1
		res.InnerIterations += stats.Iterations
		res.Psi = stats.Psi
		res.GradPsiNorm = stats.GradPsiNorm
		res.ResidualNorm = stats.ResidualNorm
		res.Gamma = stats.FinalGamma

		for i := range e {
			e[i] = (hatY[i] - y[i]) / sigma[i]
		}
		eNorm := floats.Norm(e, math.Inf(1))
		res.ConstraintNorm = eNorm

		// Outer convergence is decided by the constraint violation
		// alone: an inner solve that ran out of budget still counts
		// once the multiplier estimates have stopped moving.
		if eNorm <= params.Tolerance {
			projectMultipliers(y, hatY, prob.D, params.MaxMultiplier)
			res.Status = Converged
			break
		}
		if stats.Status == Interrupted || stats.Status == NotFinite || stats.Status == StepFailed {
			res.Status = stats.Status
			break
		}

		projectMultipliers(y, hatY, prob.D, params.MaxMultiplier)
		updatePenalty(sigma, e, eOld, eNorm, eNormOld, k == 0, params)
		copy(eOld, e)
		eNormOld = eNorm
		eps = math.Max(params.InnerTolerance, params.ToleranceUpdateFactor*eps)
	}

	res.F = prob.evalFunc(x)
	res.Evaluations = *counters
	res.Elapsed = time.Since(start)
	return res, nil
}

// initPenalty fills sigma with the initial penalty weights: the
// configured InitialPenalty when set, and otherwise
//
//	σ₀ · max(1, |f(x₀)|) / max(1, ½‖g(x₀)‖²)
//
// clamped to [MinPenalty, MaxPenalty]. The evaluations of f and g are
// charged to the evaluation counters but not to any iteration limit.
func (s *ALMSolver) initPenalty(prob *Problem, params ALMParams, x, sigma, work []float64) {
	if len(sigma) == 0 {
		return
	}
	p := params.InitialPenalty
	if p == 0 {
		f0 := prob.evalFunc(x)
		prob.evalConstr(work, x)
		p = params.InitialPenaltyFactor * math.Max(1, math.Abs(f0)) / math.Max(1, 0.5*floats.Dot(work, work))
	}
	p = clamp(p, params.MinPenalty, params.MaxPenalty)
	for i := range sigma {
		sigma[i] = p
	}
}

// projectMultipliers sets y to the projection of the candidates hatY
// onto the safeguard box Y(M): a component is bounded below by zero
// instead of −M when its constraint has no lower bound, and above by
// zero instead of M when its constraint has no upper bound. Non-finite
// candidates are replaced by zero before projecting.
func projectMultipliers(y, hatY []float64, d Box, m float64) {
	for i, v := range hatY {
		if !isFinite(v) {
			v = 0
		}
		lb := -m
		if math.IsInf(d.Lower[i], -1) {
			lb = 0
		}
		ub := m
		if math.IsInf(d.Upper[i], 1) {
			ub = 0
		}
		y[i] = clamp(v, lb, ub)
	}
}

// updatePenalty grows the penalty weights for the constraints whose
// violation did not shrink enough since the previous outer iteration.
// Weights never shrink, and never exceed MaxPenalty.
func updatePenalty(sigma, e, eOld []float64, eNorm, eNormOld float64, first bool, params ALMParams) {
	if eNorm <= params.Tolerance {
		return
	}
	if params.SinglePenaltyFactor {
		if first || eNorm > params.PenaltyUpdateThreshold*eNormOld {
			for i := range sigma {
				sigma[i] = math.Min(params.MaxPenalty, params.PenaltyUpdateFactor*sigma[i])
			}
		}
		return
	}
	for i := range sigma {
		if first || math.Abs(e[i]) > params.PenaltyUpdateThreshold*math.Abs(eOld[i]) {
			factor := math.Max(params.PenaltyUpdateFactor*math.Abs(e[i])/eNorm, 1)
			sigma[i] = math.Min(params.MaxPenalty, factor*sigma[i])
		}
	}
}
