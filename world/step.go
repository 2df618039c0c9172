// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"github.com/cpmech/diffphys/contact"
	"github.com/cpmech/diffphys/glog"
	"github.com/cpmech/diffphys/lcp"
	"github.com/cpmech/diffphys/snapshot"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// restitution is the bounce coefficient used for the normal row's lower
// bound target; 0 keeps contacts purely inelastic, matching the boxed-LCP
// contract's default (§6).
const restitution = 0.0

// Step runs one simulation step: forward-integrate the unconstrained
// velocity, detect contacts, build and solve the boxed LCP, apply the
// solved impulses, integrate positions, and package everything needed for
// the backward pass into a snapshot.Backprop (§2 data flow, §6).
//
// tau is the external generalized force for this step, flattened in the
// same skeleton-registration order as FlattenQ; pass a zero slice of
// length w.N() if there is none.
func (w *World) Step(tau []float64) *snapshot.Backprop {
	n := w.N()
	chk.IntAssert(len(tau), n)

	w.UpdateKinematics()

	M := w.blockMassMatrix()
	Minv := w.blockInverseMassMatrix()
	bias := w.flattenBias()

	qdot := w.FlattenQdot()
	qdotStar := make([]float64, n)
	freeForce := make([]float64, n)
	for i := range freeForce {
		freeForce[i] = tau[i] - bias[i]
	}
	MinvF := matVecMul(Minv, freeForce)
	for i := 0; i < n; i++ {
		qdotStar[i] = qdot[i] + w.Dt*MinvF[i]
	}

	var records []contact.Record
	if w.Collision != nil {
		records = w.Collision.Detect(w)
	}

	basisSize := w.TangentBasisSize
	if basisSize == 0 {
		basisSize = 2
	}
	constraints := make([]*contact.Constraint, 0, len(records)*(basisSize+1))
	unsupported := []int{}
	for _, r := range records {
		for idx := 0; idx <= basisSize; idx++ {
			c := contact.NewConstraint(r, idx)
			if c.Unsupported {
				if idx == 0 {
					glog.Warnf("world: unsupported contact geometry between %s#%d and %s#%d, zero gradients returned\n",
						r.BodyA.Skeleton, r.BodyA.TreeIndex, r.BodyB.Skeleton, r.BodyB.TreeIndex)
				}
				unsupported = append(unsupported, len(constraints))
			}
			constraints = append(constraints, c)
		}
	}

	nc := len(constraints)
	A := la.MatAlloc(nc, nc)
	bRow := make([]float64, nc)
	lo := make([]float64, nc)
	hi := make([]float64, nc)
	findex := make([]int, nc)
	rows := make([][]float64, nc)
	for i, c := range constraints {
		rows[i] = w.generalizedForceFull(c, n)
	}
	for i := range constraints {
		ri := rows[i]
		MinvRi := matVecMul(Minv, ri)
		for j := range constraints {
			A[i][j] = dot(rows[j], MinvRi)
		}
		bRow[i] = -dot(ri, qdotStar)
		if constraints[i].Index == 0 {
			bRow[i] *= 1 + restitution
		}
	}
	for i, c := range constraints {
		if c.Unsupported {
			lo[i], hi[i] = 0, 0
			findex[i] = -1
			continue
		}
		if c.Index == 0 {
			lo[i] = 0
			hi[i] = 1e20
			findex[i] = -1
		} else {
			mu := w.FrictionCoeff
			if mu == 0 {
				mu = 0.5
			}
			lo[i] = -mu
			hi[i] = mu
			findex[i] = normalRowIndex(constraints, i)
		}
	}

	x := make([]float64, nc)
	degraded := false
	ok := false
	if w.LCP != nil && nc > 0 {
		ok = w.LCP.Solve(nc, A, x, bRow, lo, hi, findex, false)
	}
	if !ok && nc > 0 {
		fallback := w.FallbackLCP
		if fallback == nil {
			fallback = lcp.ProjectedGaussSeidel{}
		}
		ok = fallback.Solve(nc, A, x, bRow, lo, hi, findex, true)
		if !ok {
			degraded = true
			glog.Degradedf("world: LCP oracle and fallback both failed to converge this step\n")
		}
	}

	classification := make([]snapshot.ConstraintClass, nc)
	for i, c := range constraints {
		// Friction rows are bounded by mu*|normal impulse| (findex coupling),
		// so compare against those coupled bounds, not the raw +-mu.
		loI, hiI := lo[i], hi[i]
		if findex[i] >= 0 {
			bound := x[findex[i]]
			if bound < 0 {
				bound = -bound
			}
			loI, hiI = loI*bound, hiI*bound
		}
		switch {
		case c.Unsupported:
			classification[i] = snapshot.NotClamping
		case findex[i] >= 0 && hiI > 1e-9 && (x[i] <= loI+1e-9 || x[i] >= hiI-1e-9):
			classification[i] = snapshot.UpperBound
		case x[i] <= loI+1e-9:
			classification[i] = snapshot.NotClamping
		case x[i] >= hiI-1e-9 && hiI < 1e19:
			classification[i] = snapshot.UpperBound
		default:
			classification[i] = snapshot.Clamping
		}
	}

	qdotNew := make([]float64, n)
	copy(qdotNew, qdotStar)
	for i := range constraints {
		MinvRi := matVecMul(Minv, rows[i])
		for k := 0; k < n; k++ {
			qdotNew[k] += MinvRi[k] * x[i]
		}
	}

	preQ := w.FlattenQ()
	w.SetFlattenQdot(qdotNew)
	qNew := make([]float64, n)
	for i := 0; i < n; i++ {
		qNew[i] = preQ[i] + w.Dt*qdotNew[i]
	}
	w.SetFlattenQ(qNew)
	w.UpdateKinematics()

	bp := &snapshot.Backprop{
		Skeletons:       w.Skeletons,
		N:               n,
		Dt:              w.Dt,
		PreQ:            preQ,
		PreQdot:         qdot,
		Tau:             tau,
		QdotStar:        qdotStar,
		PostQdot:        qdotNew,
		PostQ:           qNew,
		M:               M,
		Minv:            Minv,
		Bias:            bias,
		Gravity:         w.Gravity,
		Constraints:     constraints,
		Classification:  classification,
		Impulse:         x,
		Degraded:        degraded,
		UnsupportedRows: unsupported,
	}
	w.LastStep = bp
	return bp
}

// normalRowIndex finds the normal row (index 0) belonging to the same
// contact record as the tangent row at position i, for findex coupling.
func normalRowIndex(constraints []*contact.Constraint, i int) int {
	for j := i; j >= 0; j-- {
		if constraints[j].Index == 0 {
			return j
		}
	}
	return -1
}

// generalizedForceFull assembles one constraint's generalized-force row
// over the full world DOF vector, by skeleton offset.
func (w *World) generalizedForceFull(c *contact.Constraint, n int) []float64 {
	row := make([]float64, n)
	for _, s := range w.Skeletons {
		tau := c.GeneralizedForce(s)
		copy(row[s.DofOffset:s.DofOffset+len(s.DOFs)], tau)
	}
	return row
}

func (w *World) blockMassMatrix() [][]float64 {
	n := w.N()
	M := la.MatAlloc(n, n)
	for _, s := range w.Skeletons {
		Ms := s.MassMatrix()
		for i := range Ms {
			for j := range Ms[i] {
				M[s.DofOffset+i][s.DofOffset+j] = Ms[i][j]
			}
		}
	}
	return M
}

func (w *World) blockInverseMassMatrix() [][]float64 {
	n := w.N()
	Minv := la.MatAlloc(n, n)
	for _, s := range w.Skeletons {
		Mis := s.InverseMassMatrix()
		for i := range Mis {
			for j := range Mis[i] {
				Minv[s.DofOffset+i][s.DofOffset+j] = Mis[i][j]
			}
		}
	}
	return Minv
}

func (w *World) flattenBias() []float64 {
	n := w.N()
	bias := make([]float64, n)
	for _, s := range w.Skeletons {
		bs := s.Bias(w.Gravity)
		copy(bias[s.DofOffset:s.DofOffset+len(bs)], bs)
	}
	return bias
}

func matVecMul(a [][]float64, v []float64) []float64 {
	n := len(a)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j, vj := range v {
			sum += a[i][j] * vj
		}
		out[i] = sum
	}
	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
