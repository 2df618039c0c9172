// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"testing"

	"github.com/cpmech/diffphys/body"
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

func singleRevoluteWorld() *World {
	s := body.NewSkeleton("arm")
	b := &body.Body{Name: "link0", Mass: 1, InertiaLocal: mgl64.Ident3()}
	j := &body.Joint{
		Type:           body.JointRevolute,
		Child:          b,
		LocalTransform: body.Identity(),
		DOFs:           []*body.DOF{{Name: "q0", LocalAxis: body.Screw{Angular: mgl64.Vec3{0, 1, 0}}}},
	}
	s.AddBody(j)

	w := New(0.01, mgl64.Vec3{0, 0, -9.81})
	w.AddSkeleton(s)
	w.UpdateKinematics()
	return w
}

func Test_step01(tst *testing.T) {

	chk.PrintTitle("step01: no-contact step integrates q_dot from gravity bias alone")

	w := singleRevoluteWorld()
	tau := make([]float64, w.N())
	bp := w.Step(tau)

	chk.IntAssert(len(bp.Constraints), 0)
	if bp.Degraded {
		tst.Errorf("an unconstrained step must never be degraded")
	}
	// with no constraints, q_dot_{k+1} must equal q_dot* exactly.
	chk.Vector(tst, "qdot_{k+1} == qdot*", 1e-12, bp.PostQdot, bp.QdotStar)
}

func Test_step02(tst *testing.T) {

	chk.PrintTitle("step02: VelVel is the identity when there are no clamping constraints")

	w := singleRevoluteWorld()
	tau := make([]float64, w.N())
	bp := w.Step(tau)

	VV := bp.VelVel()
	for i := range VV {
		for j := range VV[i] {
			want := 0.0
			if i == j {
				want = 1.0
			}
			chk.Scalar(tst, "VelVel entry", 1e-12, VV[i][j], want)
		}
	}
}
