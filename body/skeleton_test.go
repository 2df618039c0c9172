// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package body

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

func twoLinkPendulum() *Skeleton {
	s := NewSkeleton("arm")
	root := &Body{Name: "link0", Mass: 2, InertiaLocal: mgl64.Ident3()}
	j0 := &Joint{
		Type:           JointRevolute,
		Child:          root,
		LocalTransform: Identity(),
		DOFs:           []*DOF{{Name: "q0", LocalAxis: Screw{Angular: mgl64.Vec3{0, 1, 0}}}},
	}
	s.AddBody(j0)

	link1 := &Body{Name: "link1", Mass: 1, InertiaLocal: mgl64.Ident3()}
	j1 := &Joint{
		Type:   JointRevolute,
		Parent: root,
		Child:  link1,
		LocalTransform: Transform{
			Position: mgl64.Vec3{0, 0, -1}, Rotation: mgl64.QuatIdent(), InverseRotation: mgl64.QuatIdent(),
		},
		DOFs: []*DOF{{Name: "q1", LocalAxis: Screw{Angular: mgl64.Vec3{0, 1, 0}}}},
	}
	s.AddBody(j1)
	return s
}

func Test_skeleton01(tst *testing.T) {

	chk.PrintTitle("skeleton01: Q/Qdot round-trip and kinematics")

	s := twoLinkPendulum()
	chk.IntAssert(len(s.DOFs), 2)

	q := []float64{0.3, -0.2}
	s.SetQ(q)
	chk.Vector(tst, "q", 1e-17, s.Q(), q)

	qd := []float64{1, 2}
	s.SetQdot(qd)
	chk.Vector(tst, "qdot", 1e-17, s.Qdot(), qd)

	s.UpdateKinematics()
	if s.Bodies[0].WorldTransform.Position.Sub(mgl64.Vec3{0, 0, 0}).Len() > 1e-12 {
		tst.Errorf("root body must stay at the joint origin")
	}
}

func Test_skeleton02(tst *testing.T) {

	chk.PrintTitle("skeleton02: mass matrix is symmetric positive definite")

	s := twoLinkPendulum()
	s.SetQ([]float64{0.1, 0.4})
	s.UpdateKinematics()

	M := s.MassMatrix()
	n := len(M)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if diff := M[i][j] - M[j][i]; diff > 1e-12 || diff < -1e-12 {
				tst.Errorf("M not symmetric at (%d,%d): %g vs %g", i, j, M[i][j], M[j][i])
			}
		}
	}
	for i := 0; i < n; i++ {
		if M[i][i] <= 0 {
			tst.Errorf("M diagonal must be positive, got M[%d][%d]=%g", i, i, M[i][i])
		}
	}

	Minv := s.InverseMassMatrix()
	for i := 0; i < n; i++ {
		sum := 0.0
		for k := 0; k < n; k++ {
			sum += M[i][k] * Minv[k][i]
		}
		chk.Scalar(tst, "M*Minv diagonal", 1e-8, sum, 1)
	}
}

func Test_skeleton03(tst *testing.T) {

	chk.PrintTitle("skeleton03: ancestor DOF affects descendant body, not the reverse")

	s := twoLinkPendulum()
	d0, d1 := s.DOFs[0], s.DOFs[1]
	link1 := s.Bodies[1]
	root := s.Bodies[0]

	if !d0.IsAncestorOf(link1) {
		tst.Errorf("root DOF must be an ancestor of the tip body")
	}
	if d1.IsAncestorOf(root) {
		tst.Errorf("tip DOF must not be an ancestor of the root body")
	}
}
