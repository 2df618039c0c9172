// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package body

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
	"github.com/go-gl/mathgl/mgl64"
)

// Skeleton is a tree of bodies connected by joints (§3 Data Model). It is
// the concrete kinematics-oracle implementation this module ships behind
// the external-collaborator contract of §6: pose -> transforms, spatial
// Jacobians, mass matrix M(q), bias C(q,q_dot). Exact numeric equality
// with any particular rigid-body library's own M is not required (§6);
// this implementation omits the rotation-translation inertia coupling
// term for simplicity, which is within that relaxation.
type Skeleton struct {
	Name   string
	Bodies []*Body
	DOFs   []*DOF

	// DofOffset is this skeleton's position within the world's flattened
	// q vector; set once by World when skeletons are registered.
	DofOffset int

	dofIndex map[*DOF]int

	// ancestry caches, per body, a 0/1 flag per DOF marking which DOFs are
	// that body's ancestors (§4.B's central test). Lazily built and
	// rebuilt whenever the DOF count changes, in the style of
	// e_u_contact.go's utl.IntVals(o.Nu, -1) sentinel-filled lookup table.
	ancestry map[*Body][]int
}

// NewSkeleton returns an empty skeleton ready to receive bodies via AddBody.
func NewSkeleton(name string) *Skeleton {
	return &Skeleton{Name: name, dofIndex: make(map[*DOF]int)}
}

// AddBody registers joint.Child as a new body of this skeleton, attached
// via joint. Bodies must be added in parent-before-child (registration)
// order; joint.Parent must already belong to this skeleton or be nil
// (attaching the skeleton's root to the world).
func (s *Skeleton) AddBody(joint *Joint) *Body {
	child := joint.Child
	if child == nil {
		chk.Panic("joint must have a non-nil child body")
	}
	child.Skeleton = s
	child.ParentJoint = joint
	child.TreeIndex = len(s.Bodies)
	s.Bodies = append(s.Bodies, child)
	if joint.Parent != nil {
		joint.Parent.Children = append(joint.Parent.Children, joint)
	}
	for i, d := range joint.DOFs {
		d.Skeleton = s
		d.Joint = joint
		d.TreeIndex = child.TreeIndex
		d.IndexInJoint = i
		s.dofIndex[d] = len(s.DOFs)
		s.DOFs = append(s.DOFs, d)
	}
	return child
}

// Q returns the skeleton's flattened generalized coordinate vector.
func (s *Skeleton) Q() []float64 {
	q := make([]float64, len(s.DOFs))
	for i, d := range s.DOFs {
		q[i] = d.Q
	}
	return q
}

// Qdot returns the skeleton's flattened generalized velocity vector.
func (s *Skeleton) Qdot() []float64 {
	qd := make([]float64, len(s.DOFs))
	for i, d := range s.DOFs {
		qd[i] = d.Qdot
	}
	return qd
}

// SetQ overwrites q from a flat vector of the same length as s.DOFs.
func (s *Skeleton) SetQ(q []float64) {
	chk.IntAssert(len(q), len(s.DOFs))
	for i, d := range s.DOFs {
		d.Q = q[i]
	}
}

// SetQdot overwrites q_dot from a flat vector of the same length as s.DOFs.
func (s *Skeleton) SetQdot(qd []float64) {
	chk.IntAssert(len(qd), len(s.DOFs))
	for i, d := range s.DOFs {
		d.Qdot = qd[i]
	}
}

// UpdateKinematics recomputes every body's WorldTransform from the current
// q. Bodies must be visited parent-before-child; AddBody guarantees this by
// construction (a joint's parent is always registered before its child).
func (s *Skeleton) UpdateKinematics() {
	for _, b := range s.Bodies {
		parent := Identity()
		if b.ParentJoint.Parent != nil {
			parent = b.ParentJoint.Parent.WorldTransform
		}
		b.WorldTransform = composeJointMotion(parent, b.ParentJoint)
	}
}

// composeJointMotion applies a joint's fixed offset and its DOFs' current
// values on top of the parent body's world transform.
func composeJointMotion(parent Transform, j *Joint) Transform {
	pose := Transform{
		Position: parent.Apply(j.LocalTransform.Position),
		Rotation: parent.Rotation.Mul(j.LocalTransform.Rotation),
	}
	axes := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for _, d := range j.DOFs {
		switch j.Type {
		case JointRevolute:
			axis := unitOrAxis(d.LocalAxis.Angular, axes[2])
			pose.Rotation = pose.Rotation.Mul(mgl64.QuatRotate(d.Q, axis))
		case JointPrismatic:
			axis := unitOrAxis(d.LocalAxis.Linear, axes[0])
			pose.Position = pose.Position.Add(pose.Rotation.Rotate(axis.Mul(d.Q)))
		case JointFree:
			if d.IndexInJoint < 3 {
				pose.Rotation = pose.Rotation.Mul(mgl64.QuatRotate(d.Q, axes[d.IndexInJoint]))
			} else {
				pose.Position = pose.Position.Add(pose.Rotation.Rotate(axes[d.IndexInJoint-3].Mul(d.Q)))
			}
		}
	}
	pose.Rotation = pose.Rotation.Normalize()
	pose.InverseRotation = pose.Rotation.Inverse()
	return pose
}

func unitOrAxis(v, fallback mgl64.Vec3) mgl64.Vec3 {
	if v.Len() < 1e-14 {
		return fallback
	}
	return v.Normalize()
}

// MassMatrix assembles the generalized mass matrix M(q) via gosl/la dense
// allocation, composite-rigid-body style: for every body b, every pair of
// DOFs that are ancestors of (or own) b contribute their spatial-inertia
// coupling through b.
func (s *Skeleton) MassMatrix() [][]float64 {
	n := len(s.DOFs)
	M := la.MatAlloc(n, n)
	for _, b := range s.Bodies {
		Iw := b.InertiaWorld()
		mass := b.Mass
		for i, di := range s.DOFs {
			if !ownsOrAncestorOf(di, b) {
				continue
			}
			si := di.WorldAxis()
			for j, dj := range s.DOFs {
				if j < i {
					continue
				}
				if !ownsOrAncestorOf(dj, b) {
					continue
				}
				sj := dj.WorldAxis()
				c := si.Angular.Dot(Iw.Mul3x1(sj.Angular)) + mass*si.Linear.Dot(sj.Linear)
				M[i][j] += c
				if j != i {
					M[j][i] += c
				}
			}
		}
	}
	return M
}

// InverseMassMatrix returns M^-1 via gosl/la.
func (s *Skeleton) InverseMassMatrix() [][]float64 {
	M := s.MassMatrix()
	n := len(M)
	Minv := la.MatAlloc(n, n)
	_, err := la.MatInv(Minv, M, 1e-13)
	if err != nil {
		chk.Panic("cannot invert mass matrix: %v", err)
	}
	return Minv
}

// MassMatrixGradient is d(M)/d(q_wrt), the analytical derivative the
// pos->vel Jacobian needs (§4.E): for every body b owned by or descending
// from wrt, both the transported screw axes and the rotated inertia
// tensor contribute via the product rule. A purely numerical
// differentiator here would reintroduce the noise the whole module exists
// to avoid (§1 Purpose), so this mirrors MassMatrix's assembly loop term
// by term rather than finite-differencing it.
func (s *Skeleton) MassMatrixGradient(wrt *DOF) [][]float64 {
	n := len(s.DOFs)
	dM := la.MatAlloc(n, n)
	for _, b := range s.Bodies {
		Iw := b.InertiaWorld()
		dIw := b.InertiaWorldGradient(wrt)
		mass := b.Mass
		for i, di := range s.DOFs {
			if !ownsOrAncestorOf(di, b) {
				continue
			}
			si := di.WorldAxis()
			dsi := ScrewGradient(di, wrt)
			for j, dj := range s.DOFs {
				if j < i {
					continue
				}
				if !ownsOrAncestorOf(dj, b) {
					continue
				}
				sj := dj.WorldAxis()
				dsj := ScrewGradient(dj, wrt)
				term := dsi.Angular.Dot(Iw.Mul3x1(sj.Angular)) +
					si.Angular.Dot(dIw.Mul3x1(sj.Angular)) +
					si.Angular.Dot(Iw.Mul3x1(dsj.Angular)) +
					mass*(dsi.Linear.Dot(sj.Linear)+si.Linear.Dot(dsj.Linear))
				dM[i][j] += term
				if j != i {
					dM[j][i] += term
				}
			}
		}
	}
	return dM
}

// Bias returns the generalized bias force: gravity plus each DOF's own
// spring/damper bias, evaluated in the generalized coordinates (not
// Cartesian). It has no Coriolis/centrifugal (velocity-product) term;
// q_dot enters only through the damping term. gravity is the world
// gravity vector; the caller (world.World) supplies it since it is not a
// per-skeleton property.
func (s *Skeleton) Bias(gravity mgl64.Vec3) []float64 {
	n := len(s.DOFs)
	c := make([]float64, n)
	for i, d := range s.DOFs {
		c[i] = d.Stiffness*d.Q + d.Damping*d.Qdot
	}
	for _, b := range s.Bodies {
		weight := gravity.Mul(b.Mass)
		for i, d := range s.DOFs {
			if !ownsOrAncestorOf(d, b) {
				continue
			}
			si := d.WorldAxis()
			c[i] -= si.Linear.Dot(weight)
		}
	}
	return c
}

// BiasGradient is d(Bias)/d(q_wrt): the gravity term's own configuration
// dependence (its screw axis rotates with every ancestor DOF, exactly as
// MassMatrixGradient's dsi term) plus wrt's own stiffness contribution at
// its own index. The damping term drops out, since q_dot is held fixed
// under a q-perturbation.
func (s *Skeleton) BiasGradient(gravity mgl64.Vec3, wrt *DOF) []float64 {
	n := len(s.DOFs)
	dc := make([]float64, n)
	if i, ok := s.dofIndex[wrt]; ok {
		dc[i] += wrt.Stiffness
	}
	for _, b := range s.Bodies {
		weight := gravity.Mul(b.Mass)
		for i, d := range s.DOFs {
			if !ownsOrAncestorOf(d, b) {
				continue
			}
			dsi := ScrewGradient(d, wrt)
			dc[i] -= dsi.Linear.Dot(weight)
		}
	}
	return dc
}

func ownsOrAncestorOf(d *DOF, b *Body) bool {
	return d.Joint.Child == b || d.IsAncestorOf(b)
}

// ancestryFlags returns, for body b, a per-DOF 0/1 flag slice over s.DOFs
// marking which DOFs are ancestors of b; rebuilt whenever the DOF count no
// longer matches (the tree only ever grows via AddBody, so a size mismatch
// is the cheap staleness check).
func (s *Skeleton) ancestryFlags(b *Body) []int {
	if s.ancestry == nil {
		s.ancestry = make(map[*Body][]int, len(s.Bodies))
	}
	if flags, ok := s.ancestry[b]; ok && len(flags) == len(s.DOFs) {
		return flags
	}
	flags := utl.IntVals(len(s.DOFs), 0)
	for i, d := range s.DOFs {
		if d.isAncestorOfWalk(b) {
			flags[i] = 1
		}
	}
	s.ancestry[b] = flags
	return flags
}
