// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

func Test_basis01(tst *testing.T) {

	chk.PrintTitle("basis01: ODE tangent basis is orthonormal and right-handed with the normal")

	normal := mgl64.Vec3{0, 0, 1}.Normalize()
	t0, t1 := ODETangentBasis(normal)

	chk.Scalar(tst, "|t0|", 1e-12, t0.Len(), 1)
	chk.Scalar(tst, "|t1|", 1e-12, t1.Len(), 1)
	chk.Scalar(tst, "t0.t1", 1e-12, t0.Dot(t1), 0)
	chk.Scalar(tst, "t0.normal", 1e-12, t0.Dot(normal), 0)
	chk.Scalar(tst, "t1.normal", 1e-12, t1.Dot(normal), 0)
	chk.Scalar(tst, "(t0 x t1).normal", 1e-12, t0.Cross(t1).Dot(normal), 1)
}

func Test_basis02(tst *testing.T) {

	chk.PrintTitle("basis02: analytical tangent-basis gradient matches a finite difference")

	normal := mgl64.Vec3{0.2, 0.3, 0.9}.Normalize()
	normalGrad := mgl64.Vec3{0.05, -0.02, 0.01}

	const eps = 1e-6
	plus := normal.Add(normalGrad.Mul(eps)).Normalize()
	minus := normal.Sub(normalGrad.Mul(eps)).Normalize()
	t0Plus, t1Plus := ODETangentBasis(plus)
	t0Minus, t1Minus := ODETangentBasis(minus)

	numT0 := t0Plus.Sub(t0Minus).Mul(1 / (2 * eps))
	numT1 := t1Plus.Sub(t1Minus).Mul(1 / (2 * eps))

	anaT0 := odeTangentBasisGradient(normal, normalGrad, 0)
	anaT1 := odeTangentBasisGradient(normal, normalGrad, 1)

	chk.Vector(tst, "d(t0)", 1e-4, []float64{anaT0[0], anaT0[1], anaT0[2]}, []float64{numT0[0], numT0[1], numT0[2]})
	chk.Vector(tst, "d(t1)", 1e-4, []float64{anaT1[0], anaT1[1], anaT1[2]}, []float64{numT1[0], numT1[1], numT1[2]})
}
