// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import (
	"math"

	"github.com/cpmech/gosl/fun"
	"github.com/go-gl/mathgl/mgl64"
)

// worldUp is the reference direction used to build an ODE-style tangent
// frame from a single normal; when the normal is nearly parallel to it, a
// different reference avoids a degenerate cross product. Grounded on
// fem/e_u_contact.go's Fnvec/Jf handling of a single face-normal vector.
var worldUp = mgl64.Vec3{0, 0, 1}

// ODETangentBasis returns the fixed two-vector ODE-style tangent frame
// (GLOSSARY) derived from the current normal: t0 is an arbitrary direction
// orthogonal to normal, t1 completes the right-handed frame.
func ODETangentBasis(normal mgl64.Vec3) (t0, t1 mgl64.Vec3) {
	ref := worldUp
	if math.Abs(normal.Dot(worldUp)) > 0.99 {
		ref = mgl64.Vec3{1, 0, 0}
	}
	t0 = normal.Cross(ref).Normalize()
	t1 = normal.Cross(t0).Normalize()
	return
}

// odeTangentBasisGradient differentiates ODETangentBasis analytically with
// respect to a perturbation direction of the normal (normalGrad = d(normal)/dq
// for one DOF), returning the gradient of the requested column (0 or 1) of
// the basis. Short-circuits to the zero vector when the normal gradient
// itself is (numerically) zero, matching §4.C's "short-circuit to zero
// when |normalGrad|^2 < 1e-12 to avoid spurious tangent rotations" — gated
// by fun.Heav the same way e_u_contact.go's contact_rampD1 gates a
// near-singular quantity rather than a hand-rolled branch.
func odeTangentBasisGradient(normal, normalGrad mgl64.Vec3, column int) mgl64.Vec3 {
	if fun.Heav(normalGrad.Dot(normalGrad)-1e-12) == 0 {
		return mgl64.Vec3{}
	}
	ref := worldUp
	if math.Abs(normal.Dot(worldUp)) > 0.99 {
		ref = mgl64.Vec3{1, 0, 0}
	}

	// t0 = normalize(normal x ref)
	u := normal.Cross(ref)
	du := normalGrad.Cross(ref)
	t0Grad := normalizeGradient(u, du)
	if column == 0 {
		return t0Grad
	}

	// t1 = normalize(normal x t0)
	t0 := u.Normalize()
	v := normal.Cross(t0)
	dv := normalGrad.Cross(t0).Add(normal.Cross(t0Grad))
	return normalizeGradient(v, dv)
}

// normalizeGradient returns d(normalize(u))/dq given u and du = d(u)/dq,
// from the quotient rule on u/|u|.
func normalizeGradient(u, du mgl64.Vec3) mgl64.Vec3 {
	norm := u.Len()
	if norm < 1e-14 {
		return mgl64.Vec3{}
	}
	return du.Mul(1 / norm).Sub(u.Mul(u.Dot(du) / (norm * norm * norm)))
}
