// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lcp defines the boxed-LCP oracle contract consumed by world and
// snapshot (§4.D, §6), and ships one concrete fallback solver used only
// when the caller-supplied oracle fails (§4.E, §7).
package lcp

// Oracle solves the boxed linear complementarity problem
//
//	A x = b + w,  lo <= x <= hi,  w_i > 0 => x_i = lo_i,  w_i < 0 => x_i = hi_i
//
// findex[i] = j means the bound on row i is proportional to |x[j]|
// (friction coupling: a tangent row's bound depends on its normal row's
// solved impulse). This is treated as a black box (§1 Non-goals: "the
// boxed-LCP numerical routine itself"); on exception or non-convergence
// it returns false and the caller MUST be able to recover (§6).
type Oracle interface {
	Solve(n int, A [][]float64, x, b, lo, hi []float64, findex []int, earlyTerm bool) bool
}
