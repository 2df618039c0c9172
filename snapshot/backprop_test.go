// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// External test package: these tests build real world.World scenes to
// exercise Backprop's five canonical Jacobians against fdcheck's
// finite-difference columns, which requires importing package world — and
// world itself imports snapshot, so this file cannot live in package
// snapshot without an import cycle (see restorable_test.go's fakeFlattener
// for why the in-package tests avoid that dependency instead).
package snapshot_test

import (
	"testing"

	"github.com/cpmech/diffphys/body"
	"github.com/cpmech/diffphys/contact"
	"github.com/cpmech/diffphys/fdcheck"
	"github.com/cpmech/diffphys/lcp"
	"github.com/cpmech/diffphys/snapshot"
	"github.com/cpmech/diffphys/world"
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

// twoLinkPendulumWorld builds a two-link revolute chain hanging under
// gravity with joint spring/damper bias, matching cmd/diffphys-bench's
// buildPendulum scene but kept local so this test does not depend on
// package main.
func twoLinkPendulumWorld() *world.World {
	s := body.NewSkeleton("pendulum")
	root := &body.Body{Name: "link0", Mass: 1, InertiaLocal: mgl64.Ident3()}
	j0 := &body.Joint{
		Type:           body.JointRevolute,
		Child:          root,
		LocalTransform: body.Identity(),
		DOFs: []*body.DOF{
			{Name: "theta0", LocalAxis: body.Screw{Angular: mgl64.Vec3{0, 1, 0}}, Stiffness: 2, Damping: 0.05, Q: 0.3},
		},
	}
	s.AddBody(j0)

	link1 := &body.Body{Name: "link1", Mass: 1, InertiaLocal: mgl64.Ident3()}
	j1 := &body.Joint{
		Type:           body.JointRevolute,
		Parent:         root,
		Child:          link1,
		LocalTransform: body.Transform{Position: mgl64.Vec3{0, 0, -1}, Rotation: mgl64.QuatIdent(), InverseRotation: mgl64.QuatIdent()},
		DOFs: []*body.DOF{
			{Name: "theta1", LocalAxis: body.Screw{Angular: mgl64.Vec3{0, 1, 0}}, Stiffness: 0, Damping: 0.05, Q: -0.2},
		},
	}
	s.AddBody(j1)

	w := world.New(0.01, mgl64.Vec3{0, 0, -9.81})
	w.AddSkeleton(s)
	w.UpdateKinematics()
	return w
}

func Test_backprop01_pendulumPosVelAgainstGravityBias(tst *testing.T) {

	chk.PrintTitle("backprop01: PosVel matches finite differences for a gravity-driven rotating-joint pendulum")

	w := twoLinkPendulumWorld()
	tau := make([]float64, w.N())
	bp := w.Step(tau)

	for i := 0; i < w.N(); i++ {
		fdcheck.PosVelColumn(tst, w, tau, i, bp, 1e-4, false)
	}
}

func Test_backprop02_pendulumPosPosAndForceVel(tst *testing.T) {

	chk.PrintTitle("backprop02: PosPos and ForceVel match finite differences for the same pendulum")

	w := twoLinkPendulumWorld()
	tau := make([]float64, w.N())
	bp := w.Step(tau)

	for i := 0; i < w.N(); i++ {
		fdcheck.PosPosColumn(tst, w, tau, i, bp, 1e-4, false)
		fdcheck.ForceVelColumn(tst, w, tau, i, bp, 1e-4, false)
	}
}

// groundOracle is a fixed single-contact CollisionOracle: body "box" DOF 1
// (z) rests on an implicit, unregistered "ground" skeleton, so Classify's
// ancestorB branch is always false and the contact behaves as one-sided
// (§3 "a Record's BodyB need not resolve to a registered skeleton").
type groundOracle struct{ normal mgl64.Vec3 }

func (g groundOracle) Detect(w *world.World) []contact.Record {
	return []contact.Record{{
		Type:   contact.VertexFace,
		Point:  mgl64.Vec3{0, 0, 0},
		Normal: g.normal,
		BodyA:  contact.BodyRef{Skeleton: "box", TreeIndex: 0},
		BodyB:  contact.BodyRef{Skeleton: "ground", TreeIndex: 0},
	}}
}

// boxOnGroundWorld builds a single two-DOF (y, z) prismatic body resting
// exactly at a ground contact, so the normal row solves to a clamping
// impulse at rest (§4.E "only CLAMPING rows enter the Jacobian formulas").
func boxOnGroundWorld() *world.World {
	s := body.NewSkeleton("box")
	b := &body.Body{Name: "box0", Mass: 1, InertiaLocal: mgl64.Ident3()}
	j := &body.Joint{
		Type:           body.JointPrismatic,
		Child:          b,
		LocalTransform: body.Identity(),
		DOFs: []*body.DOF{
			{Name: "y", LocalAxis: body.Screw{Linear: mgl64.Vec3{0, 1, 0}}},
			{Name: "z", LocalAxis: body.Screw{Linear: mgl64.Vec3{0, 0, 1}}},
		},
	}
	s.AddBody(j)

	w := world.New(0.01, mgl64.Vec3{0, 0, -9.81})
	w.TangentBasisSize = 1
	w.FrictionCoeff = 0.5
	w.Collision = groundOracle{normal: mgl64.Vec3{0, 0, 1}}
	w.LCP = lcp.ProjectedGaussSeidel{}
	w.AddSkeleton(s)
	w.UpdateKinematics()
	return w
}

func Test_backprop03_restingContactClampsNormalRow(tst *testing.T) {

	chk.PrintTitle("backprop03: a box resting exactly on the ground clamps the normal row")

	w := boxOnGroundWorld()
	tau := make([]float64, w.N())
	bp := w.Step(tau)

	chk.IntAssert(len(bp.Constraints), 2) // 1 normal row + 1 tangent row (TangentBasisSize=1)
	if bp.Classification[0] != snapshot.Clamping {
		tst.Errorf("expected the normal row to classify CLAMPING at rest, got %v", bp.Classification[0])
	}
	for i := 0; i < w.N(); i++ {
		fdcheck.VelVelColumn(tst, w, tau, i, bp, 1e-4, false)
		fdcheck.PosPosColumn(tst, w, tau, i, bp, 1e-4, false)
	}
}

func Test_backprop04_saturatedFrictionHitsUpperBound(tst *testing.T) {

	chk.PrintTitle("backprop04: a strong tangential push saturates the friction row to UPPER_BOUND")

	w := boxOnGroundWorld()
	tau := make([]float64, w.N())
	tau[0] = 50 // push hard along the y DOF, aligned with the TangentBasisSize=1 basis column
	bp := w.Step(tau)

	if len(bp.Constraints) != 2 {
		tst.Fatalf("expected 2 constraint rows, got %d", len(bp.Constraints))
	}
	if bp.Classification[1] != snapshot.UpperBound {
		tst.Errorf("expected the friction row to classify UPPER_BOUND under a saturating push, got %v", bp.Classification[1])
	}
	for i := 0; i < w.N(); i++ {
		fdcheck.ForceVelColumn(tst, w, tau, i, bp, 1e-4, false)
	}
}
