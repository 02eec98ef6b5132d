// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats/scalar"
)

func randomBox(rnd *rand.Rand, n int) Box {
	b := Box{
		Lower: make([]float64, n),
		Upper: make([]float64, n),
	}
	for i := range b.Lower {
		switch rnd.Intn(4) {
		case 0: // Two-sided.
			b.Lower[i] = 10 * (rnd.Float64() - 0.5)
			b.Upper[i] = b.Lower[i] + 5*rnd.Float64()
		case 1: // Lower bound only.
			b.Lower[i] = 10 * (rnd.Float64() - 0.5)
			b.Upper[i] = math.Inf(1)
		case 2: // Upper bound only.
			b.Lower[i] = math.Inf(-1)
			b.Upper[i] = 10 * (rnd.Float64() - 0.5)
		default: // Unbounded.
			b.Lower[i] = math.Inf(-1)
			b.Upper[i] = math.Inf(1)
		}
	}
	return b
}

func TestBoxProject(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(1))
	const n = 20
	for trial := 0; trial < 100; trial++ {
		b := randomBox(rnd, n)
		if !b.IsValid() {
			t.Fatalf("random box is invalid: %v", b)
		}
		v := make([]float64, n)
		for i := range v {
			v[i] = 20 * (rnd.Float64() - 0.5)
		}
		w := make([]float64, n)
		b.Project(w, v)
		for i := range w {
			if w[i] < b.Lower[i] || w[i] > b.Upper[i] {
				t.Errorf("projection left the box: component %d: %v not in [%v, %v]",
					i, w[i], b.Lower[i], b.Upper[i])
			}
		}
		// Idempotence.
		w2 := make([]float64, n)
		b.Project(w2, w)
		for i := range w2 {
			if w2[i] != w[i] {
				t.Errorf("projection not idempotent: component %d: %v != %v", i, w2[i], w[i])
			}
		}
	}
}

func TestBoxProjectUnbounded(t *testing.T) {
	t.Parallel()
	b := NewBox(4)
	v := []float64{1, -2, 1e300, -1e300}
	w := make([]float64, 4)
	b.Project(w, v)
	for i := range w {
		if w[i] != v[i] {
			t.Errorf("projection onto the unbounded box is not the identity: %v != %v", w, v)
		}
	}
}

func TestBoxProjectNaN(t *testing.T) {
	t.Parallel()
	b := Box{Lower: []float64{0}, Upper: []float64{1}}
	w := make([]float64, 1)
	b.Project(w, []float64{math.NaN()})
	if !math.IsNaN(w[0]) {
		t.Errorf("NaN input did not yield NaN output: got %v", w[0])
	}
}

func TestBoxProjectingDifference(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(2))
	const n = 10
	for trial := 0; trial < 100; trial++ {
		b := randomBox(rnd, n)
		v := make([]float64, n)
		for i := range v {
			v[i] = 20 * (rnd.Float64() - 0.5)
		}
		w := make([]float64, n)
		d := make([]float64, n)
		b.Project(w, v)
		b.ProjectingDifference(d, v)
		for i := range d {
			if !scalar.EqualWithinAbs(d[i], v[i]-w[i], 1e-15) {
				t.Errorf("projecting difference mismatch: component %d: %v != %v", i, d[i], v[i]-w[i])
			}
			if w[i] == v[i] && d[i] != 0 {
				t.Errorf("interior point has non-zero difference: component %d: %v", i, d[i])
			}
		}
	}
}

func TestBoxProjectInPlace(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(10))
	const n = 10
	for trial := 0; trial < 100; trial++ {
		b := randomBox(rnd, n)
		v := make([]float64, n)
		for i := range v {
			v[i] = 20 * (rnd.Float64() - 0.5)
		}
		want := make([]float64, n)
		b.Project(want, v)
		b.ProjectInPlace(v)
		for i := range v {
			if v[i] != want[i] {
				t.Errorf("trial %d: component %d: in-place %v, out-of-place %v", trial, i, v[i], want[i])
			}
		}
	}
}

func TestBoxWeightedDistSq(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(11))
	const n = 10
	for trial := 0; trial < 100; trial++ {
		b := randomBox(rnd, n)
		v := make([]float64, n)
		w := make([]float64, n)
		for i := range v {
			v[i] = 20 * (rnd.Float64() - 0.5)
			w[i] = 0.1 + 5*rnd.Float64()
		}
		dst := make([]float64, n)
		got := b.WeightedDistSq(dst, v, w)

		d := make([]float64, n)
		b.ProjectingDifference(d, v)
		var want float64
		for i := range d {
			want += w[i] * d[i] * d[i]
			if !scalar.EqualWithinAbsOrRel(dst[i], w[i]*d[i], 1e-14, 1e-14) {
				t.Errorf("trial %d: component %d: %v, want %v", trial, i, dst[i], w[i]*d[i])
			}
		}
		if !scalar.EqualWithinAbsOrRel(got, want, 1e-13, 1e-13) {
			t.Errorf("trial %d: distance %v, want %v", trial, got, want)
		}

		// Aliasing dst with v is allowed.
		aliased := b.WeightedDistSq(v, v, w)
		if aliased != got {
			t.Errorf("trial %d: aliased distance %v, want %v", trial, aliased, got)
		}
	}
}

func TestBoxIsValid(t *testing.T) {
	t.Parallel()
	cases := []struct {
		box  Box
		want bool
	}{
		{Box{Lower: []float64{0}, Upper: []float64{1}}, true},
		{Box{Lower: []float64{0}, Upper: []float64{0}}, true},
		{Box{Lower: []float64{1}, Upper: []float64{0}}, false},
		{Box{Lower: []float64{math.Inf(-1)}, Upper: []float64{math.Inf(1)}}, true},
		{Box{Lower: []float64{math.NaN()}, Upper: []float64{1}}, false},
		{Box{Lower: []float64{0, 0}, Upper: []float64{1}}, false},
	}
	for i, c := range cases {
		if got := c.box.IsValid(); got != c.want {
			t.Errorf("case %d: IsValid = %t, want %t", i, got, c.want)
		}
	}
}
