// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package body

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid pose in world space: a position and an orientation,
// carried alongside its inverse so callers never have to re-derive it on
// the hot path (e.g. mapping a contact normal into a body's local frame).
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent(), InverseRotation: mgl64.QuatIdent()}
}

// Apply maps a point from body-local space into world space.
func (t Transform) Apply(localPoint mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(localPoint))
}

// Rotate maps a direction from body-local space into world space.
func (t Transform) Rotate(localDir mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(localDir)
}

// RotationMat3 returns the rotation as a 3x3 matrix, used to conjugate
// local inertia tensors into world frame.
func (t Transform) RotationMat3() mgl64.Mat3 {
	return t.Rotation.Mat4().Mat3()
}
