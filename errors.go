// Copyright ©2025 The Alpaqa Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alpaqa

import (
	"errors"
	"fmt"
)

// ErrMissingFunc signifies the problem does not provide the objective.
var ErrMissingFunc = errors.New("alpaqa: problem does not provide Func")

// ErrMissingGrad signifies the problem does not provide the objective
// gradient, which every solver in this package requires.
var ErrMissingGrad = errors.New("alpaqa: problem does not provide Grad")

// ErrMissingConstr signifies the problem has M > 0 but does not
// provide the constraint function.
var ErrMissingConstr = errors.New("alpaqa: problem does not provide Constr")

// ErrMissingConstrGradProd signifies the problem has M > 0 but does
// not provide the constraint Jacobian-transpose product.
var ErrMissingConstrGradProd = errors.New("alpaqa: problem does not provide ConstrGradProd")

// InvalidParameterError is returned when a solver parameter or a
// problem dimension lies outside its documented domain. Field names
// the offending parameter.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e InvalidParameterError) Error() string {
	return fmt.Sprintf("alpaqa: invalid parameter %s: %s", e.Field, e.Reason)
}
