// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package contact implements the differentiable contact constraint: the
// immutable per-step contact record, the DOF-contact-type classifier, and
// DifferentiableContactConstraint's analytical gradients (§4.B, §4.C).
package contact

import "github.com/go-gl/mathgl/mgl64"

// GeomType classifies a contact's geometric configuration (§3 Data Model).
type GeomType int

const (
	VertexFace GeomType = iota
	FaceVertex
	EdgeEdge
	Unsupported
)

// BodyRef identifies a body by (skeleton name, body index) rather than a
// raw handle, so a Record can outlive the world mutation that produced it
// (§9 "Cyclic/shared references").
type BodyRef struct {
	Skeleton  string
	TreeIndex int
}

// Record is an immutable snapshot captured at the instant of collision
// detection. It is value-copied into a Constraint at construction time so
// subsequent world mutation cannot alias it (§3 Invariants).
type Record struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3 // unit, pointing from B into A
	Type   GeomType

	// Populated only when Type == EdgeEdge.
	EdgeAFixedPoint, EdgeADir mgl64.Vec3
	EdgeBFixedPoint, EdgeBDir mgl64.Vec3

	BodyA, BodyB BodyRef
}

// Swapped returns a copy of the record with A and B exchanged; used by
// property test 8 ("swapping A<->B negates multiple for every DOF").
func (r Record) Swapped() Record {
	s := r
	s.BodyA, s.BodyB = r.BodyB, r.BodyA
	switch r.Type {
	case EdgeEdge:
		s.EdgeAFixedPoint, s.EdgeBFixedPoint = r.EdgeBFixedPoint, r.EdgeAFixedPoint
		s.EdgeADir, s.EdgeBDir = r.EdgeBDir, r.EdgeADir
	case VertexFace:
		s.Type = FaceVertex
	case FaceVertex:
		s.Type = VertexFace
	}
	s.Normal = r.Normal.Mul(-1)
	return s
}
