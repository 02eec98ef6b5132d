// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import "gonum.org/v1/gonum/floats"

const defaultCurvatureTol = 1e-10

// LBFGS is a limited-memory approximation of an inverse Hessian,
// maintained as a bounded FIFO history of step and gradient-difference
// pairs (s, y). Apply evaluates the action of the approximation using
// the two-loop recursion of Nocedal, J., Wright, S.: Numerical
// Optimization (2nd ed). Springer (2006), chapter 7, page 178.
//
// Store is the history length and must be at least 1. CurvatureTol is
// the relative curvature threshold below which an update pair is
// rejected; if zero it defaults to 1e-10.
type LBFGS struct {
	Store        int
	CurvatureTol float64

	dim    int // Dimension of the vectors in the history.
	count  int // Number of stored pairs, at most Store.
	next   int // Ring index the next pair is stored at.
	gamma  float64
	y      [][]float64
	s      [][]float64
	rho    []float64
	a      []float64
}

// init sizes the history for vectors of length dim and empties it.
func (l *LBFGS) init(dim int) {
	if l.Store < 1 {
		panic("alpaqa: lbfgs: non-positive history length")
	}
	if l.CurvatureTol == 0 {
		l.CurvatureTol = defaultCurvatureTol
	}
	l.dim = dim
	l.a = resize(l.a, l.Store)
	l.rho = resize(l.rho, l.Store)
	l.y = l.initHistory(l.y)
	l.s = l.initHistory(l.s)
	l.Reset()
}

func (l *LBFGS) initHistory(hist [][]float64) [][]float64 {
	c := cap(hist)
	if c < l.Store {
		n := make([][]float64, l.Store-c)
		hist = append(hist[:c], n...)
	}
	hist = hist[:l.Store]
	for i := range hist {
		hist[i] = resize(hist[i], l.dim)
	}
	return hist
}

// Reset empties the history. The next Apply is the identity.
func (l *LBFGS) Reset() {
	l.count = 0
	l.next = 0
	l.gamma = 1
}

// Len returns the number of stored pairs.
func (l *LBFGS) Len() int { return l.count }

// Update offers the pair (s, y) to the history. The pair is accepted
// when it passes the curvature test yᵀs > tol·‖s‖·‖y‖, evicting the
// oldest pair once Store pairs are held, and rejected otherwise.
// Update reports whether the pair was accepted.
func (l *LBFGS) Update(s, y []float64) bool {
	if len(s) != l.dim || len(y) != l.dim {
		panic(badLength)
	}
	sDotY := floats.Dot(s, y)
	if sDotY <= l.CurvatureTol*floats.Norm(s, 2)*floats.Norm(y, 2) {
		return false
	}
	copy(l.s[l.next], s)
	copy(l.y[l.next], y)
	l.rho[l.next] = 1 / sDotY
	l.gamma = sDotY / floats.Dot(y, y)
	l.next = (l.next + 1) % l.Store
	if l.count < l.Store {
		l.count++
	}
	return true
}

// Apply stores into dst the product of the inverse-Hessian
// approximation with q. With an empty history the approximation is
// the identity and dst is a copy of q. dst must not alias q.
func (l *LBFGS) Apply(dst, q []float64) {
	if len(dst) != l.dim || len(q) != l.dim {
		panic(badLength)
	}
	copy(dst, q)

	// Newest to oldest.
	for i := 0; i < l.count; i++ {
		idx := l.next - i - 1
		if idx < 0 {
			idx += l.Store
		}
		l.a[idx] = l.rho[idx] * floats.Dot(l.s[idx], dst)
		floats.AddScaled(dst, -l.a[idx], l.y[idx])
	}

	// Scale by the initial inverse-Hessian estimate γ̂ = sᵀy/yᵀy of
	// the most recent pair.
	floats.Scale(l.gamma, dst)

	// Oldest to newest.
	for i := 0; i < l.count; i++ {
		idx := l.next - l.count + i
		if idx < 0 {
			idx += l.Store
		}
		beta := l.rho[idx] * floats.Dot(l.y[idx], dst)
		floats.AddScaled(dst, l.a[idx]-beta, l.s[idx])
	}
}

// resize takes x and returns a slice of length dim. It returns a
// resliced x if cap(x) >= dim, and a new slice otherwise.
func resize(x []float64, dim int) []float64 {
	if dim > cap(x) {
		return make([]float64, dim)
	}
	return x[:dim]
}
