// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package body

import "github.com/go-gl/mathgl/mgl64"

// Body is one rigid link of a skeleton's joint tree.
type Body struct {
	Name        string
	Skeleton    *Skeleton
	TreeIndex   int // index of this body (and its parent joint) within the skeleton
	ParentJoint *Joint
	Children    []*Joint

	Mass         float64
	InertiaLocal mgl64.Mat3 // inertia tensor about the body's center of mass, local frame

	// WorldTransform is recomputed by Skeleton.UpdateKinematics and cached
	// here for the duration of one step; it must not be mutated by
	// DifferentiableContactConstraint readers concurrently with a step
	// (§5 Concurrency model).
	WorldTransform Transform
}

// InertiaWorld conjugates the local inertia tensor into world frame:
// I_world = R * I_local * R^T.
func (b *Body) InertiaWorld() mgl64.Mat3 {
	R := b.WorldTransform.RotationMat3()
	return R.Mul3(b.InertiaLocal).Mul3(R.Transpose())
}

// InverseMassScalar returns 1/mass, or 0 for an infinite-mass (static) body.
func (b *Body) InverseMassScalar() float64 {
	if b.Mass <= 0 {
		return 0
	}
	return 1.0 / b.Mass
}

// InertiaWorldGradient is d(InertiaWorld)/d(q_wrt). Zero unless wrt is an
// ancestor of this body (or wrt's own joint carries it), in which case the
// body rotates with world angular velocity equal to wrt's screw axis's
// angular part under unit rate of wrt, giving the standard commutator
// d(R I R^T)/dt = [w]_x (R I R^T) - (R I R^T) [w]_x.
func (b *Body) InertiaWorldGradient(wrt *DOF) mgl64.Mat3 {
	if b.Skeleton != wrt.Skeleton || !wrt.IsAncestorOf(b) {
		return mgl64.Mat3{}
	}
	w := crossMat(wrt.WorldAxis().Angular)
	Iw := b.InertiaWorld()
	return w.Mul3(Iw).Sub(Iw.Mul3(w))
}
