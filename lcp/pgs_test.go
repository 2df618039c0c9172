// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lcp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_pgs01(tst *testing.T) {

	chk.PrintTitle("pgs01: unconstrained diagonal system solves exactly")

	// A = diag(2, 4), b = [4, 8] => x = [2, 2], both within [0, 10]
	A := [][]float64{{2, 0}, {0, 4}}
	b := []float64{4, 8}
	lo := []float64{0, 0}
	hi := []float64{10, 10}
	findex := []int{-1, -1}
	x := make([]float64, 2)

	p := ProjectedGaussSeidel{}
	ok := p.Solve(2, A, x, b, lo, hi, findex, false)
	if !ok {
		tst.Errorf("solver did not converge")
	}
	chk.Vector(tst, "x", 1e-6, x, []float64{2, 2})
}

func Test_pgs02(tst *testing.T) {

	chk.PrintTitle("pgs02: lower bound clamps a separating contact to zero force")

	// single contact row driven toward a negative (separating) impulse;
	// lo=0 must clamp it there.
	A := [][]float64{{1}}
	b := []float64{-5}
	lo := []float64{0}
	hi := []float64{1e20}
	findex := []int{-1}
	x := make([]float64, 1)

	p := ProjectedGaussSeidel{}
	p.Solve(1, A, x, b, lo, hi, findex, false)
	chk.Scalar(tst, "x[0]", 1e-9, x[0], 0)
}

func Test_pgs03(tst *testing.T) {

	chk.PrintTitle("pgs03: friction row bound scales with its coupled normal impulse")

	// row 0 is the normal (solves to x0=3), row 1 is a friction row coupled
	// to it via findex with a unit friction coefficient, driven hard
	// against its upper bound.
	A := [][]float64{{1, 0}, {0, 1}}
	b := []float64{3, 100}
	lo := []float64{0, -1}
	hi := []float64{1e20, 1}
	findex := []int{-1, 0}
	x := make([]float64, 2)

	p := ProjectedGaussSeidel{}
	p.Solve(2, A, x, b, lo, hi, findex, false)
	chk.Scalar(tst, "x[0] (normal)", 1e-6, x[0], 3)
	chk.Scalar(tst, "x[1] (friction, bound=mu*x0)", 1e-6, x[1], 3)
}
