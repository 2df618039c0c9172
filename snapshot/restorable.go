// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package snapshot implements the capture/restore and backward-pass
// components of a step (§4.E, §4.G): Restorable is a cheap (q, q_dot, tau)
// capture, with Perturb to nudge and later undo a single DOF without
// re-running the whole pipeline; Backprop is the record a step
// produces, exposing the five canonical Jacobians.
package snapshot

// Flattener is the subset of world.World's API Restorable needs. Defined
// here (rather than importing package world) so snapshot has no dependency
// on world, which itself depends on snapshot to build a Backprop (§6).
type Flattener interface {
	FlattenQ() []float64
	FlattenQdot() []float64
	SetFlattenQ([]float64)
	SetFlattenQdot([]float64)
	UpdateKinematics()
}

// Restorable is a capture of one world's (q, q_dot, tau) triple, grounded on
// msolid.State's GetCopy/Set idiom: allocate once, Set repeatedly. Captures
// are independent snapshots, not a stack, so nested perturb/restore pairs
// must be explicitly ordered by the caller (§4.G "composable, not a stack").
type Restorable struct {
	w    Flattener
	q    []float64
	qdot []float64
	tau  []float64
}

// Capture returns a new Restorable holding the world's current (q, q_dot,
// tau). tau may be nil if the caller has no external generalized force to
// track across the scope.
func Capture(w Flattener, tau []float64) *Restorable {
	r := &Restorable{
		w:    w,
		q:    append([]float64(nil), w.FlattenQ()...),
		qdot: append([]float64(nil), w.FlattenQdot()...),
	}
	if tau != nil {
		r.tau = append([]float64(nil), tau...)
	}
	return r
}

// Restore writes the captured (q, q_dot) back into the world and recomputes
// kinematics; it returns the captured tau (nil if Capture was given none) so
// the caller can restore its own copy in the same call.
func (r *Restorable) Restore() []float64 {
	r.w.SetFlattenQ(r.q)
	r.w.SetFlattenQdot(r.qdot)
	r.w.UpdateKinematics()
	if r.tau == nil {
		return nil
	}
	return append([]float64(nil), r.tau...)
}

// Perturb sets a single DOF's q to q+delta (by global flat index), recomputes
// kinematics, and returns a Restorable bound to the pre-perturbation state so
// the caller can undo it afterward.
func Perturb(w Flattener, globalIndex int, delta float64) *Restorable {
	r := Capture(w, nil)
	q := w.FlattenQ()
	q[globalIndex] += delta
	w.SetFlattenQ(q)
	w.UpdateKinematics()
	return r
}
