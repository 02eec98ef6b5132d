// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import "time"

// LipschitzParams controls how the Lipschitz constant of ∇ψ is
// estimated and turned into a proximal step size γ = LGammaFactor/L.
type LipschitzParams struct {
	// LInit is the initial Lipschitz estimate. If zero, the estimate
	// is obtained from a finite difference of ∇ψ along a small
	// perturbation of the starting point.
	LInit float64

	// Epsilon and Delta size the finite-difference perturbation
	// h = max(Epsilon·|x₀|, Delta) componentwise. Zero values default
	// to 1e-6 and 1e-12.
	Epsilon float64
	Delta   float64

	// LGammaFactor is the factor α in γ = α/L, in (0, 1). Zero
	// defaults to 0.95.
	LGammaFactor float64
}

func (p LipschitzParams) withDefaults() LipschitzParams {
	if p.Epsilon == 0 {
		p.Epsilon = 1e-6
	}
	if p.Delta == 0 {
		p.Delta = 1e-12
	}
	if p.LGammaFactor == 0 {
		p.LGammaFactor = 0.95
	}
	return p
}

func (p LipschitzParams) validate() error {
	switch {
	case p.LInit < 0:
		return InvalidParameterError{"Lipschitz.LInit", "must be non-negative"}
	case p.Epsilon <= 0:
		return InvalidParameterError{"Lipschitz.Epsilon", "must be positive"}
	case p.Delta <= 0:
		return InvalidParameterError{"Lipschitz.Delta", "must be positive"}
	case p.LGammaFactor <= 0 || p.LGammaFactor >= 1:
		return InvalidParameterError{"Lipschitz.LGammaFactor", "must be in (0, 1)"}
	}
	return nil
}

// PANOCParams holds the tuning parameters of the PANOC inner solver.
// The zero value of a field selects its documented default; explicit
// values are validated on entry to Solve and rejected with an
// InvalidParameterError naming the field when outside their domain.
type PANOCParams struct {
	Lipschitz LipschitzParams

	// MaxIter is the hard iteration cap, at least 1. Zero defaults
	// to 500.
	MaxIter int

	// MaxTime is the wall-clock budget. Zero means no limit.
	MaxTime time.Duration

	// TauMin is the smallest line-search parameter tried before
	// falling back to the proximal gradient step, in (0, 1). Zero
	// defaults to 1/256.
	TauMin float64

	// LMin and LMax clamp the Lipschitz estimate,
	// 0 < LMin ≤ LMax. Zero values default to 1e-10 and 1e20.
	LMin, LMax float64

	// SufficientDecrease is the factor σ in the line-search decrease
	// condition φγ(x₊) ≤ φγ(x) − σ·γ‖Rγ(x)‖², in (0, 1). Zero
	// defaults to 0.1.
	SufficientDecrease float64

	// QuadraticUpperboundTolFactor is the relative slack added to the
	// quadratic upper bound in the Lipschitz test, non-negative. Zero
	// defaults to 1e-14.
	QuadraticUpperboundTolFactor float64

	// MaxLipschitzDoublings bounds how often L may be doubled within
	// one iteration before the step is declared failed, at least 1.
	// Zero defaults to 10.
	MaxLipschitzDoublings int

	// LBFGSMemory is the L-BFGS history length, at least 1. Zero
	// defaults to 10.
	LBFGSMemory int

	// LBFGSResetAfter is the number of consecutive pure proximal
	// gradient steps (τ = 0) tolerated: the L-BFGS history is discarded
	// once more than LBFGSResetAfter such steps occur in a row, at
	// least 1. Zero defaults to 1.
	LBFGSResetAfter int

	// DualToleranceFactor is the factor τ_c weighting the multiplier
	// residual ‖ŷ − y‖∞ in the stopping criterion, non-negative. At
	// zero the criterion is the fixed-point residual alone.
	DualToleranceFactor float64
}

func (p PANOCParams) withDefaults() PANOCParams {
	p.Lipschitz = p.Lipschitz.withDefaults()
	if p.MaxIter == 0 {
		p.MaxIter = 500
	}
	if p.TauMin == 0 {
		p.TauMin = 1.0 / 256
	}
	if p.LMin == 0 {
		p.LMin = 1e-10
	}
	if p.LMax == 0 {
		p.LMax = 1e20
	}
	if p.SufficientDecrease == 0 {
		p.SufficientDecrease = 0.1
	}
	if p.QuadraticUpperboundTolFactor == 0 {
		p.QuadraticUpperboundTolFactor = 1e-14
	}
	if p.MaxLipschitzDoublings == 0 {
		p.MaxLipschitzDoublings = 10
	}
	if p.LBFGSMemory == 0 {
		p.LBFGSMemory = 10
	}
	if p.LBFGSResetAfter == 0 {
		p.LBFGSResetAfter = 1
	}
	return p
}

func (p PANOCParams) validate() error {
	if err := p.Lipschitz.validate(); err != nil {
		return err
	}
	switch {
	case p.MaxIter < 1:
		return InvalidParameterError{"MaxIter", "must be at least 1"}
	case p.MaxTime < 0:
		return InvalidParameterError{"MaxTime", "must be positive or zero for no limit"}
	case p.TauMin <= 0 || p.TauMin >= 1:
		return InvalidParameterError{"TauMin", "must be in (0, 1)"}
	case p.LMin <= 0 || p.LMin > p.LMax:
		return InvalidParameterError{"LMin", "must satisfy 0 < LMin ≤ LMax"}
	case p.SufficientDecrease <= 0 || p.SufficientDecrease >= 1:
		return InvalidParameterError{"SufficientDecrease", "must be in (0, 1)"}
	case p.QuadraticUpperboundTolFactor < 0:
		return InvalidParameterError{"QuadraticUpperboundTolFactor", "must be non-negative"}
	case p.MaxLipschitzDoublings < 1:
		return InvalidParameterError{"MaxLipschitzDoublings", "must be at least 1"}
	case p.LBFGSMemory < 1:
		return InvalidParameterError{"LBFGSMemory", "must be at least 1"}
	case p.LBFGSResetAfter < 1:
		return InvalidParameterError{"LBFGSResetAfter", "must be at least 1"}
	case p.DualToleranceFactor < 0:
		return InvalidParameterError{"DualToleranceFactor", "must be non-negative"}
	}
	return nil
}

// ALMParams holds the tuning parameters of the augmented Lagrangian
// outer driver. Zero-valued fields select their documented defaults;
// explicit values are validated on entry to Solve.
type ALMParams struct {
	// Tolerance is the outer tolerance δ on the constraint violation
	// ‖e‖∞. Zero defaults to 1e-8.
	Tolerance float64

	// InnerTolerance is the final inner tolerance ε the sub-problem
	// must eventually be solved to. Zero defaults to 1e-8.
	InnerTolerance float64

	// InitialInnerTolerance is the inner tolerance ε₀ of the first
	// sub-problem. Zero defaults to 1.
	InitialInnerTolerance float64

	// ToleranceUpdateFactor is the factor ρ by which the inner
	// tolerance shrinks each outer iteration, in (0, 1). Zero
	// defaults to 0.1.
	ToleranceUpdateFactor float64

	// PenaltyUpdateFactor is the penalty growth factor Δ, greater
	// than 1. Zero defaults to 10.
	PenaltyUpdateFactor float64

	// PenaltyUpdateThreshold is the factor θ: a penalty grows unless
	// the constraint violation shrank below θ times its previous
	// value, in (0, 1). Zero defaults to 0.25.
	PenaltyUpdateThreshold float64

	// InitialPenalty fixes Σ₀ for all components. If zero, Σ₀ is
	// derived from f and g at the starting point, scaled by
	// InitialPenaltyFactor.
	InitialPenalty float64

	// InitialPenaltyFactor is the factor σ₀ in the derived initial
	// penalty. Zero defaults to 2.
	InitialPenaltyFactor float64

	// MinPenalty and MaxPenalty clamp the penalty weights,
	// 0 < MinPenalty ≤ MaxPenalty. Zero values default to 1e-10 and
	// 1e9.
	MinPenalty, MaxPenalty float64

	// MaxMultiplier is the bound M of the safeguard box the updated
	// Lagrange multipliers are projected onto. Zero defaults to 1e9.
	MaxMultiplier float64

	// MaxIter is the outer iteration cap, at least 1. Zero defaults
	// to 20.
	MaxIter int

	// SinglePenaltyFactor selects the uniform penalty update, growing
	// all of Σ by the same factor. The default is the per-constraint
	// update.
	SinglePenaltyFactor bool
}

func (p ALMParams) withDefaults() ALMParams {
	if p.Tolerance == 0 {
		p.Tolerance = 1e-8
	}
	if p.InnerTolerance == 0 {
		p.InnerTolerance = 1e-8
	}
	if p.InitialInnerTolerance == 0 {
		p.InitialInnerTolerance = 1
	}
	if p.ToleranceUpdateFactor == 0 {
		p.ToleranceUpdateFactor = 0.1
	}
	if p.PenaltyUpdateFactor == 0 {
		p.PenaltyUpdateFactor = 10
	}
	if p.PenaltyUpdateThreshold == 0 {
		p.PenaltyUpdateThreshold = 0.25
	}
	if p.InitialPenaltyFactor == 0 {
		p.InitialPenaltyFactor = 2
	}
	if p.MinPenalty == 0 {
		p.MinPenalty = 1e-10
	}
	if p.MaxPenalty == 0 {
		p.MaxPenalty = 1e9
	}
	if p.MaxMultiplier == 0 {
		p.MaxMultiplier = 1e9
	}
	if p.MaxIter == 0 {
		p.MaxIter = 20
	}
	return p
}

func (p ALMParams) validate() error {
	switch {
	case p.Tolerance <= 0:
		return InvalidParameterError{"Tolerance", "must be positive"}
	case p.InnerTolerance <= 0:
		return InvalidParameterError{"InnerTolerance", "must be positive"}
	case p.InitialInnerTolerance <= 0:
		return InvalidParameterError{"InitialInnerTolerance", "must be positive"}
	case p.ToleranceUpdateFactor <= 0 || p.ToleranceUpdateFactor >= 1:
		return InvalidParameterError{"ToleranceUpdateFactor", "must be in (0, 1)"}
	case p.PenaltyUpdateFactor <= 1:
		return InvalidParameterError{"PenaltyUpdateFactor", "must be greater than 1"}
	case p.PenaltyUpdateThreshold <= 0 || p.PenaltyUpdateThreshold >= 1:
		return InvalidParameterError{"PenaltyUpdateThreshold", "must be in (0, 1)"}
	case p.InitialPenalty < 0:
		return InvalidParameterError{"InitialPenalty", "must be non-negative"}
	case p.InitialPenaltyFactor <= 0:
		return InvalidParameterError{"InitialPenaltyFactor", "must be positive"}
	case p.MinPenalty <= 0 || p.MinPenalty > p.MaxPenalty:
		return InvalidParameterError{"MinPenalty", "must satisfy 0 < MinPenalty ≤ MaxPenalty"}
	case p.MaxMultiplier <= 0:
		return InvalidParameterError{"MaxMultiplier", "must be positive"}
	case p.MaxIter < 1:
		return InvalidParameterError{"MaxIter", "must be at least 1"}
	}
	return nil
}
