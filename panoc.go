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

// PANOCSolver minimises ψ(x) over the box C of a problem using PANOC:
// proximal gradient steps accelerated by L-BFGS directions, with a
// line search on the forward–backward envelope as safeguard.
//
// A PANOCSolver is used as the inner solver of ALMSolver, but can be
// invoked directly on problems without general constraints (M = 0),
// in which case ψ reduces to the objective f.
type PANOCSolver struct {
	Params PANOCParams

	// Interrupt, when non-nil, is sampled once at the top of every
	// iteration. When it reads true the solve stops with status
	// Interrupted and the iterate at the point of sampling.
	Interrupt *atomic.Bool
}

// PANOCStats describes the outcome of one inner solve.
type PANOCStats struct {
	Status     Status
	Iterations int
	Elapsed    time.Duration

	// Psi and GradPsiNorm are ψ and ‖∇ψ‖∞ at the returned iterate.
	// ResidualNorm is the fixed-point residual ‖R_γ‖∞ at the iterate
	// the last iteration started from, and +Inf when no iteration ran.
	// On Converged the returned iterate is the forward–backward point
	// of that iterate.
	Psi          float64
	GradPsiNorm  float64
	ResidualNorm float64

	// FinalGamma is the proximal step size γ on exit.
	FinalGamma float64

	// LineSearchFailures counts iterations that fell back to the
	// pure proximal gradient step, and LBFGSRejected counts update
	// pairs dropped by the curvature test.
	LineSearchFailures int
	LBFGSRejected      int
}

// panocWorkspace holds every buffer the solver touches on the hot
// path, allocated once at entry to Solve.
type panocWorkspace struct {
	x        []float64 // current iterate
	grad     []float64 // ∇ψ at x
	xhat     []float64 // Π_C(x − γ∇ψ)
	p        []float64 // xhat − x
	dir      []float64 // quasi-Newton direction
	xNext    []float64
	gradNext []float64
	xhatNext []float64
	pNext    []float64
	workN    []float64
	workN2   []float64
	workM    []float64
}

func newPANOCWorkspace(n, m int) *panocWorkspace {
	return &panocWorkspace{
		x:        make([]float64, n),
		grad:     make([]float64, n),
		xhat:     make([]float64, n),
		p:        make([]float64, n),
		dir:      make([]float64, n),
		xNext:    make([]float64, n),
		gradNext: make([]float64, n),
		xhatNext: make([]float64, n),
		pNext:    make([]float64, n),
		workN:    make([]float64, n),
		workN2:   make([]float64, n),
		workM:    make([]float64, m),
	}
}

// Solve runs PANOC on the sub-problem defined by prob and the fixed
// multipliers y and penalties sigma (both length M), to the tolerance
// eps on the stopping residual. x holds the starting point on entry
// and the final iterate on return; hatY (length M) receives the
// multiplier candidates ŷ at the final forward–backward point.
//
// Parameter or problem defects are reported as a non-nil error with
// status InvalidArgument and no iteration takes place. All other
// statuses are normal terminations carrying the last iterate reached.
func (s *PANOCSolver) Solve(prob *Problem, sigma, y []float64, eps float64, x, hatY []float64) (stats PANOCStats, err error) {
	params := s.Params.withDefaults()
	if err := params.validate(); err != nil {
		return PANOCStats{Status: InvalidArgument}, err
	}
	if err := prob.check(); err != nil {
		return PANOCStats{Status: InvalidArgument}, err
	}
	if eps <= 0 {
		return PANOCStats{Status: InvalidArgument}, InvalidParameterError{"eps", "must be positive"}
	}
	if len(x) != prob.N || len(y) != prob.M || len(sigma) != prob.M || len(hatY) != prob.M {
		panic(badLength)
	}

	start := time.Now()
	w := newPANOCWorkspace(prob.N, prob.M)
	copy(w.x, x)
	// A starting point outside C would make the first proximal
	// gradient step meaningless.
	prob.C.ProjectInPlace(w.x)

	var lbfgs LBFGS
	lbfgs.Store = params.LBFGSMemory
	lbfgs.init(prob.N)

	defer func() {
		stats.Elapsed = time.Since(start)
	}()
	stats.ResidualNorm = math.Inf(1)

	// Initial evaluation. ŷ at the starting point is computed here so
	// that hatY is meaningful even if the solve stops before the
	// first forward–backward point.
	psi := prob.psiHatY(w.x, y, sigma, hatY)
	prob.gradPsiFromHatY(w.grad, w.x, hatY, w.workN)
	if !isFinite(psi) || !allFinite(w.grad) {
		stats.Status = NotFinite
		stats.Psi = psi
		return stats, nil
	}

	L := params.Lipschitz.LInit
	if L == 0 {
		L = s.estimateLipschitz(prob, sigma, y, params.Lipschitz, w)
	}
	if math.IsNaN(L) {
		stats.Status = NotFinite
		copy(x, w.x)
		return stats, nil
	}
	L = clamp(L, params.LMin, params.LMax)
	alpha := params.Lipschitz.LGammaFactor
	gamma := alpha / L

	noProgress := 0 // consecutive τ = 0 steps

loop:
	for iter := 0; ; iter++ {
		if s.Interrupt != nil && s.Interrupt.Load() {
			stats.Status = Interrupted
			break
		}
		if params.MaxTime > 0 && time.Since(start) >= params.MaxTime {
			stats.Status = RuntimeLimit
			break
		}
		if iter >= params.MaxIter {
			stats.Status = IterationLimit
			break
		}
		stats.Iterations++

		// Forward–backward step, doubling L until the quadratic upper
		// bound ψ(x̂) ≤ ψ + ∇ψᵀp + L/2‖p‖² holds.
		var psiHat, normPSq float64
		margin := params.QuadraticUpperboundTolFactor * math.Abs(psi)
		for doublings := 0; ; doublings++ {
			forwardBackward(prob.C, w.xhat, w.p, w.x, w.grad, gamma)
			psiHat = prob.psiHatY(w.xhat, y, sigma, hatY)
			if !isFinite(psiHat) {
				stats.Status = NotFinite
				break loop
			}
			normPSq = floats.Dot(w.p, w.p)
			if psiHat <= psi+floats.Dot(w.grad, w.p)+0.5*L*normPSq+margin {
				break
			}
			if doublings >= params.MaxLipschitzDoublings || 2*L > params.LMax {
				stats.Status = StepFailed
				break loop
			}
			L *= 2
			gamma = alpha / L
		}

		// Stopping criterion on the fixed-point residual, mixed with
		// the multiplier residual when requested.
		rNorm := floats.Norm(w.p, math.Inf(1)) / gamma
		stats.ResidualNorm = rNorm
		r := rNorm
		if prob.M > 0 && params.DualToleranceFactor > 0 {
			var dual float64
			for i, v := range hatY {
				dual = math.Max(dual, math.Abs(v-y[i]))
			}
			r = math.Max(r, params.DualToleranceFactor*dual)
		}
		if r <= eps {
			copy(w.x, w.xhat)
			prob.gradPsiFromHatY(w.grad, w.x, hatY, w.workN)
			psi = psiHat
			stats.Status = Converged
			break
		}

		// Quasi-Newton direction from the proximal gradient step.
		if lbfgs.Len() == 0 {
			copy(w.dir, w.p)
		} else {
			lbfgs.Apply(w.dir, w.p)
		}

		// Line search on the forward–backward envelope
		// φγ(x) = ψ(x) + ∇ψ(x)ᵀp(x) + ‖p(x)‖²/2γ.
		phi := psi + floats.Dot(w.grad, w.p) + 0.5*normPSq/gamma
		target := phi - params.SufficientDecrease*normPSq/gamma
		var psiNext float64
		accepted := false
		for tau := 1.0; tau >= params.TauMin; tau /= 2 {
			for i := range w.xNext {
				w.xNext[i] = w.x[i] + (1-tau)*w.p[i] + tau*w.dir[i]
			}
			psiNext = prob.psiGradPsi(w.gradNext, w.xNext, y, sigma, w.workN, w.workM)
			forwardBackward(prob.C, w.xhatNext, w.pNext, w.xNext, w.gradNext, gamma)
			phiNext := psiNext + floats.Dot(w.gradNext, w.pNext) + 0.5*floats.Dot(w.pNext, w.pNext)/gamma
			if phiNext <= target {
				accepted = true
				break
			}
		}
		if accepted {
			noProgress = 0
		} else {
			// Fall back to the pure proximal gradient step. ψ and ŷ
			// at x̂ are already known; only the gradient is missing.
			stats.LineSearchFailures++
			copy(w.xNext, w.xhat)
			psiNext = psiHat
			prob.gradPsiFromHatY(w.gradNext, w.xNext, hatY, w.workN)
			forwardBackward(prob.C, w.xhatNext, w.pNext, w.xNext, w.gradNext, gamma)
			noProgress++
			if noProgress > params.LBFGSResetAfter {
				lbfgs.Reset()
				noProgress = 0
			}
		}
		if !isFinite(psiNext) || !allFinite(w.gradNext) {
			stats.Status = NotFinite
			break
		}

		// Offer (s, y) = (x₊ − x, Rγ(x₊) − Rγ(x)) to the L-BFGS
		// history.
		floats.SubTo(w.workN2, w.xNext, w.x)
		for i := range w.workN {
			w.workN[i] = (w.p[i] - w.pNext[i]) / gamma
		}
		if !lbfgs.Update(w.workN2, w.workN) {
			stats.LBFGSRejected++
		}

		w.x, w.xNext = w.xNext, w.x
		w.grad, w.gradNext = w.gradNext, w.grad
		psi = psiNext
	}

	copy(x, w.x)
	stats.Psi = psi
	stats.GradPsiNorm = floats.Norm(w.grad, math.Inf(1))
	stats.FinalGamma = gamma
	return stats, nil
}

// forwardBackward computes the forward–backward point
// x̂ = Π_C(x − γ∇ψ) and the proximal gradient step p = x̂ − x.
func forwardBackward(c Box, xhat, p, x, grad []float64, gamma float64) {
	for i := range xhat {
		xhat[i] = clamp(x[i]-gamma*grad[i], c.Lower[i], c.Upper[i])
		p[i] = xhat[i] - x[i]
	}
}

// estimateLipschitz estimates the Lipschitz constant of ∇ψ from a
// finite difference along the perturbation hᵢ = max(ε|xᵢ|, δ). The
// gradient at the unperturbed point must already be in w.grad.
func (s *PANOCSolver) estimateLipschitz(prob *Problem, sigma, y []float64, lp LipschitzParams, w *panocWorkspace) float64 {
	var hNormSq float64
	for i, xi := range w.x {
		h := math.Max(lp.Epsilon*math.Abs(xi), lp.Delta)
		w.xNext[i] = xi + h
		hNormSq += h * h
	}
	prob.gradPsi(w.gradNext, w.xNext, y, sigma, w.workN, w.workM)
	return floats.Distance(w.gradNext, w.grad, 2) / math.Sqrt(hNormSq)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(v []float64) bool {
	for _, vi := range v {
		if !isFinite(vi) {
			return false
		}
	}
	return true
}
