// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import "github.com/cpmech/diffphys/body"

// DofContactType classifies how a DOF relates to a contact (§3 Data Model,
// §4.B). This is the central design artifact deciding which terms in the
// position/normal/force derivatives are zero and which are screw-axis
// expressions.
type DofContactType int

const (
	None DofContactType = iota
	Face
	Vertex
	EdgeA
	EdgeB
	VertexFaceSelfCollision
	EdgeEdgeSelfCollision
	TypeUnsupported
)

// Classify returns d's DofContactType for the given contact record,
// implementing the truth table of §4.B as a flat switch (§9 "Dynamic
// dispatch": a sum-type dispatch on (dof-contact-type x basis-index)
// belongs inlined, not behind virtual methods).
func Classify(d *body.DOF, r Record) DofContactType {
	ancestorA := isAncestorOfRef(d, r.BodyA)
	ancestorB := isAncestorOfRef(d, r.BodyB)

	if r.Type == Unsupported {
		return TypeUnsupported
	}
	if !ancestorA && !ancestorB {
		return None
	}
	if ancestorA && ancestorB {
		if r.Type == EdgeEdge {
			return EdgeEdgeSelfCollision
		}
		return VertexFaceSelfCollision
	}
	if ancestorA {
		switch r.Type {
		case VertexFace:
			return Vertex // A owns the vertex
		case FaceVertex:
			return Face // A owns the face
		case EdgeEdge:
			// A rigidly carries edge A; the "far" edge from A's
			// perspective is B's, hence the swap (§4.B rationale).
			return EdgeB
		}
		return TypeUnsupported
	}
	// ancestorB only; symmetric to the ancestorA branch.
	switch r.Type {
	case VertexFace:
		return Face
	case FaceVertex:
		return Vertex
	case EdgeEdge:
		return EdgeA
	}
	return TypeUnsupported
}

func isAncestorOfRef(d *body.DOF, ref BodyRef) bool {
	if d.Skeleton.Name != ref.Skeleton {
		return false
	}
	for _, b := range d.Skeleton.Bodies {
		if b.TreeIndex == ref.TreeIndex {
			return d.IsAncestorOf(b) || d.Joint.Child == b
		}
	}
	return false
}

// Multiple returns +1 if d is an ancestor of A only, -1 if of B only, and
// 0 for self-collision (internal forces cancel through the tree) or
// unrelated DOFs (§4.C "generalized constraint force").
func Multiple(d *body.DOF, r Record) float64 {
	switch Classify(d, r) {
	case None, TypeUnsupported, VertexFaceSelfCollision, EdgeEdgeSelfCollision:
		return 0
	}
	if isAncestorOfRef(d, r.BodyA) {
		return 1
	}
	return -1
}
