// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import (
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

func TestLBFGSEmptyIsIdentity(t *testing.T) {
	t.Parallel()
	var l LBFGS
	l.Store = 5
	l.init(3)
	q := []float64{1, -2, 3}
	dst := make([]float64, 3)
	l.Apply(dst, q)
	if !floats.Equal(dst, q) {
		t.Errorf("empty history Apply is not the identity: got %v, want %v", dst, q)
	}
}

func TestLBFGSResetIsIdentity(t *testing.T) {
	t.Parallel()
	var l LBFGS
	l.Store = 5
	l.init(3)
	if !l.Update([]float64{1, 0, 0}, []float64{2, 0, 0}) {
		t.Fatal("positive-curvature pair rejected")
	}
	l.Reset()
	if l.Len() != 0 {
		t.Fatalf("history not empty after Reset: %d pairs", l.Len())
	}
	q := []float64{1, -2, 3}
	dst := make([]float64, 3)
	l.Apply(dst, q)
	if !floats.Equal(dst, q) {
		t.Errorf("Apply after Reset is not the identity: got %v, want %v", dst, q)
	}
}

func TestLBFGSCurvatureRejection(t *testing.T) {
	t.Parallel()
	var l LBFGS
	l.Store = 5
	l.init(2)
	// Negative curvature.
	if l.Update([]float64{1, 0}, []float64{-1, 0}) {
		t.Error("negative-curvature pair accepted")
	}
	// Orthogonal pair, yᵀs = 0.
	if l.Update([]float64{1, 0}, []float64{0, 1}) {
		t.Error("zero-curvature pair accepted")
	}
	if l.Len() != 0 {
		t.Errorf("rejected pairs were stored: %d pairs", l.Len())
	}
}

// TestLBFGSSecant checks that the approximation maps the most recent
// gradient difference to the most recent step.
func TestLBFGSSecant(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(3))
	const dim = 6
	var l LBFGS
	l.Store = 4
	l.init(dim)
	s := make([]float64, dim)
	y := make([]float64, dim)
	for trial := 0; trial < 20; trial++ {
		for i := 0; i < dim; i++ {
			s[i] = rnd.NormFloat64()
			y[i] = s[i] + 0.1*rnd.NormFloat64()
		}
		if !l.Update(s, y) {
			continue
		}
		dst := make([]float64, dim)
		l.Apply(dst, y)
		if got, want := floats.Dot(y, dst), floats.Dot(y, s); !scalar.EqualWithinAbsOrRel(got, want, 1e-10, 1e-10) {
			t.Errorf("trial %d: yᵀHy = %v, want yᵀs = %v", trial, got, want)
		}
	}
}

// denseInverseHessian accumulates the BFGS inverse-Hessian update
//
//	H₊ = (I − ρ s yᵀ) H (I − ρ y sᵀ) + ρ s sᵀ
//
// explicitly, for use as a reference for the two-loop recursion.
func denseInverseHessian(dim int, gamma float64, ss, ys [][]float64) *mat.Dense {
	h := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		h.Set(i, i, gamma)
	}
	eye := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		eye.Set(i, i, 1)
	}
	for k := range ss {
		s := mat.NewVecDense(dim, ss[k])
		y := mat.NewVecDense(dim, ys[k])
		rho := 1 / mat.Dot(s, y)

		left := mat.NewDense(dim, dim, nil)
		left.Outer(-rho, s, y)
		left.Add(left, eye)
		right := mat.NewDense(dim, dim, nil)
		right.Outer(-rho, y, s)
		right.Add(right, eye)

		tmp := mat.NewDense(dim, dim, nil)
		tmp.Product(left, h, right)
		corr := mat.NewDense(dim, dim, nil)
		corr.Outer(rho, s, s)
		tmp.Add(tmp, corr)
		h.Copy(tmp)
	}
	return h
}

func TestLBFGSAgainstDenseReference(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(4))
	const (
		dim   = 4
		pairs = 3
	)
	var l LBFGS
	l.Store = 5 // More than pairs, so none are evicted.
	l.init(dim)

	var ss, ys [][]float64
	for k := 0; k < pairs; k++ {
		s := make([]float64, dim)
		y := make([]float64, dim)
		for i := 0; i < dim; i++ {
			s[i] = rnd.NormFloat64()
			y[i] = s[i] + 0.3*rnd.NormFloat64()
		}
		if floats.Dot(s, y) <= 0 {
			// Regenerate on the rare bad draw.
			k--
			continue
		}
		if !l.Update(s, y) {
			t.Fatalf("pair %d rejected", k)
		}
		ss = append(ss, s)
		ys = append(ys, y)
	}

	sLast, yLast := ss[pairs-1], ys[pairs-1]
	gamma := floats.Dot(sLast, yLast) / floats.Dot(yLast, yLast)
	h := denseInverseHessian(dim, gamma, ss, ys)

	q := make([]float64, dim)
	got := make([]float64, dim)
	want := mat.NewVecDense(dim, nil)
	for trial := 0; trial < 10; trial++ {
		for i := range q {
			q[i] = rnd.NormFloat64()
		}
		l.Apply(got, q)
		want.MulVec(h, mat.NewVecDense(dim, q))
		for i := range got {
			if !scalar.EqualWithinAbsOrRel(got[i], want.AtVec(i), 1e-10, 1e-10) {
				t.Errorf("trial %d: component %d: two-loop %v, dense %v", trial, i, got[i], want.AtVec(i))
			}
		}
	}
}

func TestLBFGSEviction(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(5))
	const dim = 3
	var l LBFGS
	l.Store = 2
	l.init(dim)
	for k := 0; k < 5; k++ {
		s := make([]float64, dim)
		for i := range s {
			s[i] = 1 + rnd.Float64()
		}
		if !l.Update(s, s) {
			t.Fatalf("pair %d rejected", k)
		}
	}
	if l.Len() != 2 {
		t.Errorf("history holds %d pairs, want 2", l.Len())
	}
}
