// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa_test

import (
	"fmt"
	"log"

	alpaqa "github.com/kul-optec/alpaqa-go"
)

// Minimise ½‖x‖² subject to the equality constraint x₁ + x₂ = 1,
// expressed as g(x) ∈ [0, 0].
func ExampleALMSolver() {
	p := &alpaqa.Problem{
		N: 2,
		M: 1,
		C: alpaqa.NewBox(2),
		D: alpaqa.Box{Lower: []float64{0}, Upper: []float64{0}},
		Func: func(x []float64) float64 {
			return 0.5 * (x[0]*x[0] + x[1]*x[1])
		},
		Grad: func(grad, x []float64) {
			grad[0], grad[1] = x[0], x[1]
		},
		Constr: func(gx, x []float64) {
			gx[0] = x[0] + x[1] - 1
		},
		ConstrGradProd: func(out, x, y []float64) {
			out[0], out[1] = y[0], y[0]
		},
	}

	s := &alpaqa.ALMSolver{}
	res, err := s.Solve(p, []float64{0, 0}, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("status:", res.Status)
	fmt.Printf("x = (%.4f, %.4f)\n", res.X[0], res.X[1])
	fmt.Printf("y = %.4f\n", res.Y[0])
	fmt.Printf("f = %.4f\n", res.F)
	// Output:
	// status: Converged
	// x = (0.5000, 0.5000)
	// y = -0.5000
	// f = 0.2500
}
