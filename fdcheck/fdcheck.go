// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fdcheck is test-only tooling (Component F): it perturbs a world
// DOF-by-DOF, re-runs the step, and compares the resulting finite
// difference against the analytical Jacobians snapshot.Backprop exposes.
// Grounded on msolid's Driver.CheckD toggle (msolid/t_vm_test.go,
// t_ccm_test.go, t_smp_test.go), which recomputes a path under
// perturbation and diffs it against the model's own tangent, and on
// gosl/chk.AnaNum's analytic-vs-numeric comparison signature.
package fdcheck

import (
	"testing"

	"github.com/cpmech/diffphys/contact"
	"github.com/cpmech/diffphys/snapshot"
	"github.com/cpmech/diffphys/world"
	"github.com/cpmech/gosl/chk"
)

// Eps is the default central-difference step for q and q_dot perturbations.
const Eps = 1e-6

// Peer identifies a constraint row across two Backprop snapshots (before
// and after a perturbation) by geometry-independent identity rather than
// slice position: re-stepping after a perturbation can reorder or drop
// constraints as contact geometry shifts slightly.
type Peer struct {
	BodyA, BodyB contact.BodyRef
	Index        int
}

func peerOf(c *contact.Constraint) Peer {
	return Peer{BodyA: c.Record.BodyA, BodyB: c.Record.BodyB, Index: c.Index}
}

// Matching finds bp's constraint that corresponds to ref by identity, or
// nil if none survived (the contact separated under perturbation).
func Matching(bp *snapshot.Backprop, ref *contact.Constraint) *contact.Constraint {
	target := peerOf(ref)
	for _, c := range bp.Constraints {
		if peerOf(c) == target {
			return c
		}
	}
	return nil
}

// StableClassification reports whether every constraint in before has a
// peer in after with the same ConstraintClass (a constraint with no peer
// makes it report false): a finite-difference
// estimate straddling a clamping/not-clamping transition is not comparable
// to the analytical Jacobian at either endpoint (§4.F, §8 edge cases).
func StableClassification(before, after *snapshot.Backprop) bool {
	for i, c := range before.Constraints {
		peer := Matching(after, c)
		if peer == nil {
			return false
		}
		j := indexOf(after.Constraints, peer)
		if before.Classification[i] != after.Classification[j] {
			return false
		}
	}
	return true
}

func indexOf(cs []*contact.Constraint, target *contact.Constraint) int {
	for i, c := range cs {
		if c == target {
			return i
		}
	}
	return -1
}

// VelVelColumn numerically estimates one column of d(q_dot_{k+1})/d(q_dot_k)
// by central-differencing q_dot_k's component at globalIndex, re-stepping a
// scratch world, and comparing every entry against bp's analytical VelVel
// column (§4.F).
func VelVelColumn(tst *testing.T, w *world.World, tau []float64, globalIndex int, bp *snapshot.Backprop, tol float64, verbose bool) {
	n := w.N()
	q0 := w.FlattenQ()
	qdot0 := w.FlattenQdot()

	plus := perturbAndStep(w, q0, qdot0, globalIndex, Eps, tau)
	minus := perturbAndStep(w, q0, qdot0, globalIndex, -Eps, tau)

	w.SetFlattenQ(q0)
	w.SetFlattenQdot(qdot0)
	w.UpdateKinematics()

	if !StableClassification(plus, minus) {
		tst.Logf("fdcheck: classification changed across perturbation at index %d, skipping VelVel check", globalIndex)
		return
	}

	ana := bp.VelVel()
	for i := 0; i < n; i++ {
		num := (plus.PostQdot[i] - minus.PostQdot[i]) / (2 * Eps)
		chk.AnaNum(tst, "d(qdot')/d(qdot)", tol, ana[i][globalIndex], num, verbose)
	}
}

// PosPosColumn is PosPos's numerical analogue: perturbs q_k instead of
// q_dot_k (§4.F).
func PosPosColumn(tst *testing.T, w *world.World, tau []float64, globalIndex int, bp *snapshot.Backprop, tol float64, verbose bool) {
	n := w.N()
	q0 := w.FlattenQ()
	qdot0 := w.FlattenQdot()

	plus := perturbQAndStep(w, q0, qdot0, globalIndex, Eps, tau)
	minus := perturbQAndStep(w, q0, qdot0, globalIndex, -Eps, tau)

	w.SetFlattenQ(q0)
	w.SetFlattenQdot(qdot0)
	w.UpdateKinematics()

	if !StableClassification(plus, minus) {
		tst.Logf("fdcheck: classification changed across perturbation at index %d, skipping PosPos check", globalIndex)
		return
	}

	ana := bp.PosPos()
	for i := 0; i < n; i++ {
		num := (plus.PostQ[i] - minus.PostQ[i]) / (2 * Eps)
		chk.AnaNum(tst, "d(q')/d(q)", tol, ana[i][globalIndex], num, verbose)
	}
}

// ForceVelColumn is ForceVel's numerical analogue: perturbs tau_k's
// component at globalIndex instead of q_dot_k (§4.F).
func ForceVelColumn(tst *testing.T, w *world.World, tau []float64, globalIndex int, bp *snapshot.Backprop, tol float64, verbose bool) {
	n := w.N()
	q0 := w.FlattenQ()
	qdot0 := w.FlattenQdot()

	plus := perturbTauAndStep(w, q0, qdot0, globalIndex, Eps, tau)
	minus := perturbTauAndStep(w, q0, qdot0, globalIndex, -Eps, tau)

	w.SetFlattenQ(q0)
	w.SetFlattenQdot(qdot0)
	w.UpdateKinematics()

	if !StableClassification(plus, minus) {
		tst.Logf("fdcheck: classification changed across perturbation at index %d, skipping ForceVel check", globalIndex)
		return
	}

	ana := bp.ForceVel()
	for i := 0; i < n; i++ {
		num := (plus.PostQdot[i] - minus.PostQdot[i]) / (2 * Eps)
		chk.AnaNum(tst, "d(qdot')/d(tau)", tol, ana[i][globalIndex], num, verbose)
	}
}

// PosVelColumn is PosVel's numerical analogue: perturbs q_k and compares
// against PostQdot instead of PostQ (§4.F).
func PosVelColumn(tst *testing.T, w *world.World, tau []float64, globalIndex int, bp *snapshot.Backprop, tol float64, verbose bool) {
	n := w.N()
	q0 := w.FlattenQ()
	qdot0 := w.FlattenQdot()

	plus := perturbQAndStep(w, q0, qdot0, globalIndex, Eps, tau)
	minus := perturbQAndStep(w, q0, qdot0, globalIndex, -Eps, tau)

	w.SetFlattenQ(q0)
	w.SetFlattenQdot(qdot0)
	w.UpdateKinematics()

	if !StableClassification(plus, minus) {
		tst.Logf("fdcheck: classification changed across perturbation at index %d, skipping PosVel check", globalIndex)
		return
	}

	ana := bp.PosVel()
	for i := 0; i < n; i++ {
		num := (plus.PostQdot[i] - minus.PostQdot[i]) / (2 * Eps)
		chk.AnaNum(tst, "d(qdot')/d(q)", tol, ana[i][globalIndex], num, verbose)
	}
}

func perturbTauAndStep(w *world.World, q0, qdot0 []float64, globalIndex int, delta float64, tau []float64) *snapshot.Backprop {
	w.SetFlattenQ(q0)
	w.SetFlattenQdot(qdot0)
	w.UpdateKinematics()
	perturbedTau := append([]float64(nil), tau...)
	perturbedTau[globalIndex] += delta
	return w.Step(perturbedTau)
}

func perturbAndStep(w *world.World, q0, qdot0 []float64, globalIndex int, delta float64, tau []float64) *snapshot.Backprop {
	w.SetFlattenQ(q0)
	qd := append([]float64(nil), qdot0...)
	qd[globalIndex] += delta
	w.SetFlattenQdot(qd)
	w.UpdateKinematics()
	return w.Step(tau)
}

func perturbQAndStep(w *world.World, q0, qdot0 []float64, globalIndex int, delta float64, tau []float64) *snapshot.Backprop {
	q := append([]float64(nil), q0...)
	q[globalIndex] += delta
	w.SetFlattenQ(q)
	w.SetFlattenQdot(qdot0)
	w.UpdateKinematics()
	return w.Step(tau)
}
