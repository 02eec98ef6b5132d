// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Problem describes the nonlinear program
//
//	minimize   f(x)
//	subject to x ∈ C,  g(x) ∈ D
//
// as a record of evaluation functions. A nil function means the
// capability is absent; the solvers check at entry that the
// capabilities they require are present and fail with one of the
// ErrMissing errors otherwise. The Hessian operators are carried for
// second-order consumers and are not used by PANOC.
//
// None of the evaluation functions may retain or modify its input
// slices, and output slices never alias inputs: the solvers always
// pass distinct buffers.
//
// A Problem is immutable during a solve. It may be shared between
// concurrent solves only if all its evaluation functions are
// reentrant.
type Problem struct {
	// N and M are the number of decision variables and the number of
	// general constraints. M may be zero for box-constrained or
	// unconstrained problems.
	N, M int

	// C is the box constraining the decision variables and D is the
	// box constraining the constraint values g(x).
	C, D Box

	// Func evaluates the objective f(x).
	Func func(x []float64) float64

	// Grad evaluates ∇f(x) into grad, which has length N.
	Grad func(grad, x []float64)

	// Constr evaluates g(x) into gx, which has length M. Required
	// when M > 0.
	Constr func(gx, x []float64)

	// ConstrGradProd evaluates the product ∇g(x)ᵀ y into out, which
	// has length N. Required when M > 0.
	ConstrGradProd func(out, x, y []float64)

	// ConstrGradi evaluates ∇gᵢ(x) into out for 0 ≤ i < M. Optional.
	ConstrGradi func(out, x []float64, i int)

	// HessLProd evaluates ∇²ₓL(x, y)·v into out. Optional.
	HessLProd func(out, x, y, v []float64)

	// HessL evaluates the dense Hessian of the Lagrangian at (x, y).
	// Optional.
	HessL func(hess mat.MutableSymmetric, x, y []float64)

	// PsiHatY, GradPsi and PsiGradPsi override the composite
	// evaluations of the augmented Lagrangian
	//
	//	ψ(x) = f(x) + ½ distΣ²(g(x) + Σ⁻¹y, D)
	//
	// and its gradient ∇ψ(x) = ∇f(x) + ∇g(x)ᵀ ŷ. When nil, the
	// solvers compose them from the basic functions above.
	// Specialised problems may supply fused versions that reuse
	// intermediate results; the values must agree with the composed
	// ones. PsiHatY additionally writes into hatY the candidate
	// multipliers ŷ = Σ(ζ − Π_D(ζ)) with ζ = g(x) + Σ⁻¹y.
	PsiHatY    func(x, y, sigma, hatY []float64) float64
	GradPsi    func(grad, x, y, sigma, workN, workM []float64)
	PsiGradPsi func(grad, x, y, sigma, workN, workM []float64) float64

	counters *Counters
}

// check validates the dimensions and verifies that the capabilities
// required by the first-order solvers are present.
func (p *Problem) check() error {
	switch {
	case p.N <= 0:
		return InvalidParameterError{"Problem.N", "must be positive"}
	case p.M < 0:
		return InvalidParameterError{"Problem.M", "must be non-negative"}
	case p.C.Dim() != p.N || !p.C.IsValid():
		return InvalidParameterError{"Problem.C", "bounds must have length N with Lower ≤ Upper"}
	case p.D.Dim() != p.M || !p.D.IsValid():
		return InvalidParameterError{"Problem.D", "bounds must have length M with Lower ≤ Upper"}
	}
	if p.Func == nil {
		return ErrMissingFunc
	}
	if p.Grad == nil {
		return ErrMissingGrad
	}
	if p.M > 0 {
		if p.Constr == nil {
			return ErrMissingConstr
		}
		if p.ConstrGradProd == nil {
			return ErrMissingConstrGradProd
		}
	}
	return nil
}

func (p *Problem) evalFunc(x []float64) float64 {
	if c := p.counters; c != nil {
		defer c.measure(&c.Func, &c.FuncDuration)()
	}
	return p.Func(x)
}

func (p *Problem) evalGrad(grad, x []float64) {
	if c := p.counters; c != nil {
		defer c.measure(&c.Grad, &c.GradDuration)()
	}
	p.Grad(grad, x)
}

func (p *Problem) evalConstr(gx, x []float64) {
	if c := p.counters; c != nil {
		defer c.measure(&c.Constr, &c.ConstrDuration)()
	}
	p.Constr(gx, x)
}

func (p *Problem) evalConstrGradProd(out, x, y []float64) {
	if c := p.counters; c != nil {
		defer c.measure(&c.ConstrGradProd, &c.ConstrGradProdDuration)()
	}
	p.ConstrGradProd(out, x, y)
}

// psiHatY evaluates ψ(x) and writes the multiplier candidates ŷ into
// hatY (length M):
//
//	ζ  = g(x) + Σ⁻¹y
//	d  = ζ − Π_D(ζ)
//	ŷ  = Σ d
//	ψ  = f(x) + ½ dᵀŷ
//
// For M = 0 it collapses to f(x).
func (p *Problem) psiHatY(x, y, sigma, hatY []float64) float64 {
	if p.PsiHatY != nil {
		if c := p.counters; c != nil {
			c.PsiHatY++
		}
		return p.PsiHatY(x, y, sigma, hatY)
	}
	if p.M == 0 {
		return p.evalFunc(x)
	}
	p.evalConstr(hatY, x)
	for i := range hatY {
		hatY[i] += y[i] / sigma[i]
	}
	dist2 := p.D.WeightedDistSq(hatY, hatY, sigma)
	return p.evalFunc(x) + 0.5*dist2
}

// gradPsiFromHatY evaluates ∇ψ = ∇f(x) + ∇g(x)ᵀŷ into grad, given the
// multiplier candidates already computed by psiHatY. workN is an
// N-vector scratch buffer.
func (p *Problem) gradPsiFromHatY(grad, x, hatY, workN []float64) {
	p.evalGrad(grad, x)
	if p.M == 0 {
		return
	}
	p.evalConstrGradProd(workN, x, hatY)
	floats.Add(grad, workN)
}

// gradPsi evaluates ∇ψ(x) into grad. workN and workM are scratch
// buffers of length N and M.
func (p *Problem) gradPsi(grad, x, y, sigma, workN, workM []float64) {
	if p.GradPsi != nil {
		if c := p.counters; c != nil {
			c.GradPsi++
		}
		p.GradPsi(grad, x, y, sigma, workN, workM)
		return
	}
	if p.M == 0 {
		p.evalGrad(grad, x)
		return
	}
	p.evalConstr(workM, x)
	for i := range workM {
		workM[i] += y[i] / sigma[i]
	}
	p.D.WeightedDistSq(workM, workM, sigma)
	p.gradPsiFromHatY(grad, x, workM, workN)
}

// psiGradPsi fuses psiHatY and gradPsiFromHatY, evaluating g only
// once. The multiplier candidates end up in workM; the returned value
// and grad are identical to the separate evaluations.
func (p *Problem) psiGradPsi(grad, x, y, sigma, workN, workM []float64) float64 {
	if p.PsiGradPsi != nil {
		if c := p.counters; c != nil {
			c.PsiGradPsi++
		}
		return p.PsiGradPsi(grad, x, y, sigma, workN, workM)
	}
	psi := p.psiHatY(x, y, sigma, workM)
	p.gradPsiFromHatY(grad, x, workM, workN)
	return psi
}
