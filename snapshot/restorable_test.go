// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snapshot

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/google/go-cmp/cmp"
)

// fakeFlattener is a minimal Flattener for testing Restorable without
// pulling in package world (which itself depends on snapshot).
type fakeFlattener struct {
	q, qdot []float64
	updates int
}

func (f *fakeFlattener) FlattenQ() []float64       { return append([]float64(nil), f.q...) }
func (f *fakeFlattener) FlattenQdot() []float64     { return append([]float64(nil), f.qdot...) }
func (f *fakeFlattener) SetFlattenQ(q []float64)    { f.q = append([]float64(nil), q...) }
func (f *fakeFlattener) SetFlattenQdot(qd []float64) { f.qdot = append([]float64(nil), qd...) }
func (f *fakeFlattener) UpdateKinematics()           { f.updates++ }

func Test_restorable01(tst *testing.T) {

	chk.PrintTitle("restorable01: capture then restore undoes a perturbation")

	w := &fakeFlattener{q: []float64{1, 2, 3}, qdot: []float64{0, 0, 0}}
	r := Capture(w, []float64{9})

	w.SetFlattenQ([]float64{100, 200, 300})
	w.SetFlattenQdot([]float64{5, 5, 5})

	tau := r.Restore()
	chk.Vector(tst, "q restored", 1e-17, w.FlattenQ(), []float64{1, 2, 3})
	chk.Vector(tst, "qdot restored", 1e-17, w.FlattenQdot(), []float64{0, 0, 0})
	chk.Vector(tst, "tau restored", 1e-17, tau, []float64{9})
	if w.updates == 0 {
		tst.Errorf("Restore must recompute kinematics")
	}
}

func Test_restorable02(tst *testing.T) {

	chk.PrintTitle("restorable02: Perturb nudges exactly one global index")

	w := &fakeFlattener{q: []float64{1, 2, 3}, qdot: []float64{0, 0, 0}}
	r := Perturb(w, 1, 0.5)
	chk.Vector(tst, "q after perturb", 1e-17, w.FlattenQ(), []float64{1, 2.5, 3})

	r.Restore()
	chk.Vector(tst, "q after restore", 1e-17, w.FlattenQ(), []float64{1, 2, 3})
}

func Test_restorable03(tst *testing.T) {

	chk.PrintTitle("restorable03: restored (q, qdot, tau) triple deep-equals the capture")

	w := &fakeFlattener{q: []float64{1, 2, 3}, qdot: []float64{4, 5, 6}}
	r := Capture(w, []float64{7, 8})

	w.SetFlattenQ([]float64{-1, -1, -1})
	w.SetFlattenQdot([]float64{-1, -1, -1})

	tau := r.Restore()
	if diff := cmp.Diff([]float64{1, 2, 3}, w.FlattenQ()); diff != "" {
		tst.Errorf("restored q mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{4, 5, 6}, w.FlattenQdot()); diff != "" {
		tst.Errorf("restored qdot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{7, 8}, tau); diff != "" {
		tst.Errorf("restored tau mismatch (-want +got):\n%s", diff)
	}
}
