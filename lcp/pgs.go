// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lcp

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// ProjectedGaussSeidel is the one concrete Oracle this module ships: a
// bounded-iteration projected Gauss-Seidel solver used only as the
// documented fallback when the caller's own boxed-LCP oracle fails
// (§4.E, §7 "attempt one fallback solver"). Grounded on
// akmonengine/feather's sequential per-contact-point impulse accumulation
// loop (constraint.ContactConstraint.SolveVelocity), generalized from
// pairwise rigid bodies to an arbitrary boxed LCP row set.
type ProjectedGaussSeidel struct {
	MaxIters int     // default 100 if zero
	Tol      float64 // residual tolerance; default 1e-9 if zero
}

// Solve implements Oracle.
func (p ProjectedGaussSeidel) Solve(n int, A [][]float64, x, b, lo, hi []float64, findex []int, earlyTerm bool) bool {
	maxIters := p.MaxIters
	if maxIters == 0 {
		maxIters = 100
	}
	tol := p.Tol
	if tol == 0 {
		tol = 1e-9
	}
	for i := range x {
		x[i] = 0
	}
	residual := la.VecClone(b)
	for iter := 0; iter < maxIters; iter++ {
		for i := 0; i < n; i++ {
			if A[i][i] == 0 {
				continue
			}
			sum := 0.0
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				sum += A[i][j] * x[j]
			}
			xi := (b[i] - sum) / A[i][i]
			loI, hiI := lo[i], hi[i]
			if findex[i] >= 0 {
				bound := math.Abs(x[findex[i]])
				loI *= bound
				hiI *= bound
			}
			if xi < loI {
				xi = loI
			} else if xi > hiI {
				xi = hiI
			}
			x[i] = xi
		}
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				sum += A[i][j] * x[j]
			}
			residual[i] = b[i] - sum
		}
		if la.VecNorm(residual) < tol {
			return true
		}
		if earlyTerm && iter > 10 && la.VecNorm(residual) < tol*10 {
			return true
		}
	}
	return la.VecNorm(residual) < tol*100
}
