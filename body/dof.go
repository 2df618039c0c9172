// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package body

// DOF is a single scalar generalized coordinate of a joint. A DOF is
// identified globally by (skeleton, tree-index-in-skeleton, index-in-joint).
type DOF struct {
	Skeleton     *Skeleton
	Joint        *Joint
	TreeIndex    int // index of the owning joint's child body in Skeleton.Bodies
	IndexInJoint int // position of this DOF within its joint
	Name         string

	Q    float64 // generalized coordinate
	Qdot float64 // generalized velocity

	LocalAxis Screw // constant local screw axis, expressed in the joint's parent frame

	// Supplemented ambient bias (SPEC_FULL §9): spring/damper acting on
	// this DOF alone, following msolid's fun.Prm-keyed constitutive
	// parameter convention rather than a bespoke struct per joint type.
	Stiffness float64
	Damping   float64
}

// WorldAxis returns this DOF's screw axis rotated into world frame by the
// accumulated rotation of all ancestor joints up to (but not including)
// this DOF's own motion.
func (d *DOF) WorldAxis() Screw {
	parentRot := Identity()
	if d.Joint.Parent != nil {
		parentRot = d.Joint.Parent.WorldTransform
	}
	return Screw{
		Angular: parentRot.Rotate(d.LocalAxis.Angular),
		Linear:  parentRot.Rotate(d.LocalAxis.Linear),
	}
}

// GlobalIndex returns this DOF's position in the flattened world q-vector.
func (d *DOF) GlobalIndex() int {
	return d.Skeleton.DofOffset + d.Skeleton.dofIndex[d]
}

// IsAncestorOf reports whether d is an ancestor of the given body. This is
// the central test the contact classifier (§4.B) is built on, served from
// Skeleton's per-body ancestry bitset cache rather than re-walking the
// joint chain on every call.
func (d *DOF) IsAncestorOf(b *Body) bool {
	if b == nil || b.Skeleton != d.Skeleton {
		return false
	}
	flags := d.Skeleton.ancestryFlags(b)
	return flags[d.Skeleton.dofIndex[d]] == 1
}

// isAncestorOfWalk is the underlying walk that fills the ancestry cache:
// it walks parent joints from the body to the root, returning true iff the
// walk passes through d's parent joint at or before d's position in the tree.
func (d *DOF) isAncestorOfWalk(b *Body) bool {
	for cur := b; cur != nil; cur = parentBody(cur) {
		if cur.ParentJoint == d.Joint {
			return true
		}
	}
	return false
}

func parentBody(b *Body) *Body {
	if b.ParentJoint == nil {
		return nil
	}
	return b.ParentJoint.Parent
}
