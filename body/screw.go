// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package body

import "github.com/go-gl/mathgl/mgl64"

// Screw is a spatial 6-vector [angular; linear] expressed in world frame.
// A DOF's screw axis maps a unit rate of that DOF to the instantaneous
// spatial velocity of its child body.
type Screw struct {
	Angular mgl64.Vec3
	Linear  mgl64.Vec3
}

// Wrench is a spatial force 6-vector [torque; force], the dual of Screw.
type Wrench struct {
	Torque mgl64.Vec3
	Force  mgl64.Vec3
}

// Dot computes the reciprocal product of a screw (motion) and a wrench
// (force): the generalized force a wrench exerts along a screw axis.
func (s Screw) Dot(w Wrench) float64 {
	return s.Angular.Dot(w.Torque) + s.Linear.Dot(w.Force)
}

// Add returns the sum of two screws.
func (s Screw) Add(o Screw) Screw {
	return Screw{Angular: s.Angular.Add(o.Angular), Linear: s.Linear.Add(o.Linear)}
}

// Scale returns the screw scaled by k.
func (s Screw) Scale(k float64) Screw {
	return Screw{Angular: s.Angular.Mul(k), Linear: s.Linear.Mul(k)}
}

// Ad is the spatial cross product (little-ad, the Lie bracket on se(3)):
// ad_s(o) transports a descendant screw axis o under rotation by s.
// Used by the contact differentiator's screw-axis gradient: rotating an
// ancestor joint transports the descendant screw axis.
func (s Screw) Ad(o Screw) Screw {
	return Screw{
		Angular: s.Angular.Cross(o.Angular),
		Linear:  s.Angular.Cross(o.Linear).Add(s.Linear.Cross(o.Angular)),
	}
}

// GradientWrtTheta returns the instantaneous linear velocity of the world
// point under unit rate of the DOF carrying screw axis s.
func GradientWrtTheta(s Screw, point mgl64.Vec3) mgl64.Vec3 {
	return s.Angular.Cross(point).Add(s.Linear)
}

// GradientWrtThetaPureRotation returns the instantaneous rotation rate of a
// pure direction (not anchored to a point, e.g. a contact normal) under
// unit rate of the DOF carrying angular velocity w.
func GradientWrtThetaPureRotation(w, dir mgl64.Vec3) mgl64.Vec3 {
	return w.Cross(dir)
}

// ToWrench packs a point and direction into the pure-force wrench
// [point x dir; dir], the canonical "world 6-force" of a contact row.
func ToWrench(point, dir mgl64.Vec3) Wrench {
	return Wrench{Torque: point.Cross(dir), Force: dir}
}

// ScrewGradient is d(screw(row))/d(q_wrt): zero unless wrt is an ancestor
// of row's child body (or wrt owns that body itself), in which case
// rotating wrt transports row's screw axis via the Lie bracket. Shared by
// the mass-matrix gradient (this package) and the contact constraint-force
// gradient (package contact) so both analytical differentiators agree on
// what "transporting a descendant screw axis" means.
func ScrewGradient(row, wrt *DOF) Screw {
	if row.Skeleton != wrt.Skeleton {
		return Screw{}
	}
	if !wrt.IsAncestorOf(row.Joint.Child) {
		return Screw{}
	}
	return wrt.WorldAxis().Ad(row.WorldAxis())
}

// crossMat returns the skew-symmetric cross-product matrix [w]_x such that
// [w]_x * v == w.Cross(v), used to differentiate a rotated inertia tensor.
func crossMat(w mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		0, w[2], -w[1],
		-w[2], 0, w[0],
		w[1], -w[0], 0,
	}
}
