// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import "math"

const badLength = "alpaqa: dimension mismatch"

// A Box is the set {v : Lower ≤ v ≤ Upper} with the inequalities taken
// componentwise. Components of Lower may be -Inf and components of
// Upper may be +Inf to express one-sided bounds or no bound at all.
type Box struct {
	Lower []float64
	Upper []float64
}

// NewBox returns the unbounded box in n dimensions, with all lower
// bounds -Inf and all upper bounds +Inf.
func NewBox(n int) Box {
	b := Box{
		Lower: make([]float64, n),
		Upper: make([]float64, n),
	}
	for i := range b.Lower {
		b.Lower[i] = math.Inf(-1)
		b.Upper[i] = math.Inf(1)
	}
	return b
}

// Dim returns the dimension of the box.
func (b Box) Dim() int { return len(b.Lower) }

// IsValid returns whether the bounds have equal length and satisfy
// Lower ≤ Upper componentwise. NaN bounds are invalid.
func (b Box) IsValid() bool {
	if len(b.Lower) != len(b.Upper) {
		return false
	}
	for i, l := range b.Lower {
		if !(l <= b.Upper[i]) {
			return false
		}
	}
	return true
}

// Project stores into dst the Euclidean projection of v onto b, that
// is, each component of v clamped to its bounds. dst and v must have
// the dimension of the box. NaN components of v propagate to dst.
func (b Box) Project(dst, v []float64) {
	if len(dst) != len(v) || len(v) != len(b.Lower) {
		panic(badLength)
	}
	for i, vi := range v {
		dst[i] = clamp(vi, b.Lower[i], b.Upper[i])
	}
}

// ProjectInPlace clamps each component of v to its bounds, replacing
// v with its Euclidean projection onto b.
func (b Box) ProjectInPlace(v []float64) {
	if len(v) != len(b.Lower) {
		panic(badLength)
	}
	for i, vi := range v {
		v[i] = clamp(vi, b.Lower[i], b.Upper[i])
	}
}

// ProjectingDifference stores v − Project(v) into dst. The result is
// zero exactly for the components of v inside the box.
func (b Box) ProjectingDifference(dst, v []float64) {
	if len(dst) != len(v) || len(v) != len(b.Lower) {
		panic(badLength)
	}
	for i, vi := range v {
		dst[i] = vi - clamp(vi, b.Lower[i], b.Upper[i])
	}
}

// WeightedDistSq returns the weighted squared distance
//
//	Σᵢ wᵢ·(vᵢ − Π(v)ᵢ)²
//
// of v to the box and stores the weighted projecting differences
// wᵢ·(vᵢ − Π(v)ᵢ) into dst. dst may alias v.
func (b Box) WeightedDistSq(dst, v, w []float64) float64 {
	if len(dst) != len(v) || len(v) != len(b.Lower) || len(w) != len(v) {
		panic(badLength)
	}
	var sum float64
	for i, vi := range v {
		d := vi - clamp(vi, b.Lower[i], b.Upper[i])
		sum += w[i] * d * d
		dst[i] = w[i] * d
	}
	return sum
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
