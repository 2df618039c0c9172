// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package body

// JointType enumerates the supported joint kinds.
type JointType int

const (
	JointRevolute JointType = iota
	JointPrismatic
	JointFree
)

// Joint connects a parent body (nil for the skeleton's root) to a child
// body and owns zero or more DOFs.
type Joint struct {
	Type   JointType
	Parent *Body
	Child  *Body
	DOFs   []*DOF

	// LocalTransform is the fixed pose of this joint's frame in the
	// parent body's frame (the zero-configuration offset).
	LocalTransform Transform
}

// dofCountForType returns the canonical number of DOFs for a joint type;
// Free joints carry 6 (3 rotational + 3 translational), Revolute/Prismatic 1.
func dofCountForType(t JointType) int {
	switch t {
	case JointFree:
		return 6
	default:
		return 1
	}
}
