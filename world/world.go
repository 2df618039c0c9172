// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package world assembles skeletons, gravity, and a time step into the
// ordered flat-coordinate system the differentiator operates on, and
// drives the per-step data flow: forward integrate, detect collisions,
// build the LCP, solve it, apply impulses, integrate (§2, §3).
package world

import (
	"github.com/cpmech/diffphys/body"
	"github.com/cpmech/diffphys/contact"
	"github.com/cpmech/diffphys/lcp"
	"github.com/cpmech/diffphys/snapshot"
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionOracle is the consumed external collaborator of §6: after a
// pose set, it returns a sequence of contact records. Ordering across
// steps is not guaranteed stable; World re-indexes constraints every step.
type CollisionOracle interface {
	Detect(w *World) []contact.Record
}

// World is an ordered collection of skeletons plus a gravity vector, a
// time step, and a collision oracle (§3 Data Model).
type World struct {
	Skeletons []*body.Skeleton
	Gravity   mgl64.Vec3
	Dt        float64

	Collision CollisionOracle
	LCP       lcp.Oracle

	// TangentBasisSize is the number of ODE tangent directions per
	// contact (the "1+k rows" of §3 Constraint).
	TangentBasisSize int

	// FrictionCoeff is the single global Coulomb friction coefficient
	// bounding every tangent row; there is no per-contact-material table.
	// Defaults to 0.5 if zero.
	FrictionCoeff float64

	// FallbackLCP is attempted once if LCP.Solve returns false (§4.E,
	// §7 "LCP failure"). A ProjectedGaussSeidel instance by default.
	FallbackLCP lcp.Oracle

	// LastStep is the Backprop produced by the most recent Step call; the
	// differentiator surface of §6 (ConstraintForces, ContactPositionJacobian,
	// etc.) reads from it since that is where solved constraints and
	// impulses actually live. Nil until the first Step.
	LastStep *snapshot.Backprop
}

// New returns an empty world with the given step size and gravity.
func New(dt float64, gravity mgl64.Vec3) *World {
	return &World{Dt: dt, Gravity: gravity, TangentBasisSize: 2}
}

// AddSkeleton registers a skeleton and assigns its DofOffset within the
// world's flattened q vector.
func (w *World) AddSkeleton(s *body.Skeleton) {
	offset := 0
	for _, existing := range w.Skeletons {
		offset += len(existing.DOFs)
	}
	s.DofOffset = offset
	w.Skeletons = append(w.Skeletons, s)
}

// N returns n = |q|, the total DOF count across all skeletons.
func (w *World) N() int {
	n := 0
	for _, s := range w.Skeletons {
		n += len(s.DOFs)
	}
	return n
}

// FlattenQ concatenates each skeleton's DOFs in registration order (§3).
func (w *World) FlattenQ() []float64 {
	q := make([]float64, 0, w.N())
	for _, s := range w.Skeletons {
		q = append(q, s.Q()...)
	}
	return q
}

// FlattenQdot concatenates each skeleton's q_dot in registration order.
func (w *World) FlattenQdot() []float64 {
	qd := make([]float64, 0, w.N())
	for _, s := range w.Skeletons {
		qd = append(qd, s.Qdot()...)
	}
	return qd
}

// SetFlattenQ writes a flat world q vector back into each skeleton.
func (w *World) SetFlattenQ(q []float64) {
	off := 0
	for _, s := range w.Skeletons {
		n := len(s.DOFs)
		s.SetQ(q[off : off+n])
		off += n
	}
}

// SetFlattenQdot writes a flat world q_dot vector back into each skeleton.
func (w *World) SetFlattenQdot(qd []float64) {
	off := 0
	for _, s := range w.Skeletons {
		n := len(s.DOFs)
		s.SetQdot(qd[off : off+n])
		off += n
	}
}

// UpdateKinematics recomputes every skeleton's body transforms from the
// current q.
func (w *World) UpdateKinematics() {
	for _, s := range w.Skeletons {
		s.UpdateKinematics()
	}
}

// FindDOF locates a DOF by (skeleton name, tree index, index-in-joint); a
// structural error (no such skeleton) panics per §7.
func (w *World) FindDOF(skeletonName string, treeIndex, indexInJoint int) *body.DOF {
	for _, s := range w.Skeletons {
		if s.Name != skeletonName {
			continue
		}
		for _, d := range s.DOFs {
			if d.TreeIndex == treeIndex && d.IndexInJoint == indexInJoint {
				return d
			}
		}
	}
	chk.Panic("world: no such DOF (skeleton=%q treeIndex=%d indexInJoint=%d)", skeletonName, treeIndex, indexInJoint)
	return nil
}
