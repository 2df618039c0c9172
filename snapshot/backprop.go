// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snapshot

import (
	"github.com/cpmech/diffphys/body"
	"github.com/cpmech/diffphys/contact"
	"github.com/cpmech/gosl/la"
	"github.com/go-gl/mathgl/mgl64"
)

// ConstraintClass is a solved constraint row's complementarity status,
// decided by the LCP solution (§4.E): CLAMPING rows have an impulse strictly
// inside their bounds, UPPER_BOUND rows are friction rows saturated at
// either friction-coupled bound (+-mu*|normal impulse|), NOT_CLAMPING rows
// sit at their lower bound (a separating normal row carries no impulse).
// Only CLAMPING rows enter the Jacobian formulas below; this mirrors a
// standard contact-LCP backward pass (active constraints are locally
// linear, inactive ones contribute no gradient).
type ConstraintClass int

const (
	Clamping ConstraintClass = iota
	UpperBound
	NotClamping
)

// Backprop is what one world.Step produces: the full record of a step's
// forward pass plus everything the five canonical Jacobians need to be
// assembled on demand (§4.E). It is read-only once returned, except that a
// Jacobian call sets Degraded when J*Minv*J^T cannot be inverted; a step's
// constraints do not outlive it (§3 Lifecycle).
type Backprop struct {
	Skeletons []*body.Skeleton
	N         int // total DOF count across Skeletons
	Dt        float64

	PreQ, PreQdot []float64 // q_k, q_dot_k
	Tau           []float64 // tau_k, the external generalized force applied this step

	QdotStar []float64 // q_dot* = q_dot_k + dt*Minv*(tau - bias), pre-constraint free velocity

	PostQdot []float64 // q_dot_{k+1}
	PostQ    []float64 // q_{k+1} = q_k + dt*q_dot_{k+1}

	M, Minv [][]float64 // block-diagonal mass matrix and its inverse, full world size
	Bias    []float64   // world-flat Bias(gravity), set by world.Step, used by PosVel's dM term
	Gravity mgl64.Vec3  // world gravity vector, set by world.Step, used by PosVel's bias-gradient term

	Constraints    []*contact.Constraint
	Classification []ConstraintClass
	Impulse        []float64 // solved LCP x, one entry per constraint row

	// Degraded is set when the LCP oracle (and its fallback) both failed to
	// converge (§7): the step still produced a result, but callers that
	// need differentiability should treat the Jacobians below as unreliable.
	Degraded        bool
	UnsupportedRows []int // indices into Constraints whose Record.Type is Unsupported
}

// clampingRows returns the indices of Constraints classified CLAMPING: the
// only rows the Jacobians below treat as locally active equality
// constraints (§4.E).
func (bp *Backprop) clampingRows() []int {
	rows := make([]int, 0, len(bp.Constraints))
	for i, cl := range bp.Classification {
		if cl == Clamping {
			rows = append(rows, i)
		}
	}
	return rows
}

// rowJacobian assembles one constraint's generalized-force row tau(q) over
// the full world DOF vector, by skeleton offset.
func (bp *Backprop) rowJacobian(c *contact.Constraint) []float64 {
	row := make([]float64, bp.N)
	off := 0
	for _, s := range bp.Skeletons {
		tau := c.GeneralizedForce(s)
		copy(row[off:off+len(s.DOFs)], tau)
		off += len(s.DOFs)
	}
	return row
}

// J assembles the clamping-row constraint Jacobian (nc x n).
func (bp *Backprop) J() [][]float64 {
	rows := bp.clampingRows()
	Jm := make([][]float64, len(rows))
	for i, ri := range rows {
		Jm[i] = bp.rowJacobian(bp.Constraints[ri])
	}
	return Jm
}

// projector returns P = Minv * J^T * (J * Minv * J^T)^-1 * J, the
// M-weighted projection onto the clamping constraint directions (the core
// quantity vel->vel and force->vel are built from). Returns the zero matrix
// if there are no clamping rows.
func (bp *Backprop) projector() [][]float64 {
	n := bp.N
	P := la.MatAlloc(n, n)
	Jm := bp.J()
	nc := len(Jm)
	if nc == 0 {
		return P
	}
	MinvJt := matMulTr(bp.Minv, Jm) // n x nc
	JMinvJt := la.MatAlloc(nc, nc)
	for i := 0; i < nc; i++ {
		for j := 0; j < nc; j++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				sum += Jm[i][k] * MinvJt[k][j]
			}
			JMinvJt[i][j] = sum
		}
	}
	inv := la.MatAlloc(nc, nc)
	_, err := la.MatInv(inv, JMinvJt, 1e-13)
	if err != nil {
		bp.Degraded = true
		return P
	}
	// P = MinvJt * inv * J
	tmp := matMul(MinvJt, inv) // n x nc
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for k := 0; k < nc; k++ {
				sum += tmp[i][k] * Jm[k][j]
			}
			P[i][j] = sum
		}
	}
	return P
}

// VelVel is d(q_dot_{k+1})/d(q_dot_k) = I - P (§4.E).
func (bp *Backprop) VelVel() [][]float64 {
	P := bp.projector()
	n := bp.N
	out := la.MatAlloc(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i][j] = -P[i][j]
		}
		out[i][i] += 1
	}
	return out
}

// ForceVel is d(q_dot_{k+1})/d(tau_k) = dt * (I - P) * Minv (§4.E).
func (bp *Backprop) ForceVel() [][]float64 {
	VV := bp.VelVel()
	out := matMul(VV, bp.Minv)
	scaleInPlace(out, bp.Dt)
	return out
}

// PosVel is d(q_dot_{k+1})/d(q_k) (§4.E). Built column by column: for every
// DOF wrt, GeneralizedForceGradient supplies dJ/dq (Component C) and
// Skeleton.MassMatrixGradient supplies dM/dq (Component A), combined via
// the product rule on q_dot_{k+1} = (I-P) q_dot*. The bias term's own
// configuration-dependence — both wrt's own stiffness contribution and the
// gravity term's rotation through every ancestor DOF — is carried through
// Skeleton.BiasGradient, the same screw-transport machinery
// MassMatrixGradient already uses for dM/dq (§6 only relaxes exact numeric
// equality of M itself, not this gradient).
func (bp *Backprop) PosVel() [][]float64 {
	n := bp.N
	out := la.MatAlloc(n, n)
	dofs := bp.flatDOFs()
	VV := bp.VelVel()
	P := bp.projector()
	Jm := bp.J()
	nc := len(Jm)
	freeForce := make([]float64, n)
	for i := range freeForce {
		freeForce[i] = bp.Tau[i] - bp.Bias[i]
	}
	for col, wrt := range dofs {
		dM := bp.massMatrixGradientFull(wrt)
		dMinv := negSandwich(bp.Minv, dM) // -Minv*dM*Minv
		dQdotStarCol := matVec(dMinv, freeForce)
		dBias := bp.biasGradientFull(wrt)
		correction := matVec(bp.Minv, dBias)
		for i := range dQdotStarCol {
			dQdotStarCol[i] = bp.Dt * (dQdotStarCol[i] - correction[i])
		}
		// d((I-P) qdot*)/dq_wrt = (I-P) dQdotStar/dq_wrt - dP/dq_wrt * qdot*
		term1 := matVec(VV, dQdotStarCol)
		var term2 []float64
		if nc > 0 {
			dJ := make([][]float64, nc)
			rows := bp.clampingRows()
			for i, ri := range rows {
				dJ[i] = bp.Constraints[ri].GeneralizedForceGradient(bp.owningSkeleton(wrt), wrt)
				dJ[i] = bp.scatterSkeletonRow(bp.owningSkeleton(wrt), dJ[i])
			}
			term2 = bp.projectorGradientApplied(Jm, dJ, bp.QdotStar)
		} else {
			term2 = make([]float64, n)
		}
		for i := 0; i < n; i++ {
			out[i][col] = term1[i] - term2[i]
		}
	}
	return out
}

// PosPos is d(q_{k+1})/d(q_k) = I + dt * PosVel, from q_{k+1} = q_k + dt*q_dot_{k+1} (§4.E).
func (bp *Backprop) PosPos() [][]float64 {
	PV := bp.PosVel()
	n := bp.N
	out := la.MatAlloc(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i][j] = bp.Dt * PV[i][j]
		}
		out[i][i] += 1
	}
	return out
}

// VelPos is d(q_{k+1})/d(q_dot_k) = dt * VelVel (§4.E).
func (bp *Backprop) VelPos() [][]float64 {
	VV := bp.VelVel()
	out := la.MatAlloc(bp.N, bp.N)
	for i := range out {
		for j := range out[i] {
			out[i][j] = bp.Dt * VV[i][j]
		}
	}
	return out
}

// flatDOFs returns every DOF across all skeletons in world flat order.
func (bp *Backprop) flatDOFs() []*body.DOF {
	dofs := make([]*body.DOF, 0, bp.N)
	for _, s := range bp.Skeletons {
		dofs = append(dofs, s.DOFs...)
	}
	return dofs
}

func (bp *Backprop) owningSkeleton(d *body.DOF) *body.Skeleton {
	return d.Skeleton
}

func (bp *Backprop) scatterSkeletonRow(s *body.Skeleton, row []float64) []float64 {
	full := make([]float64, bp.N)
	copy(full[s.DofOffset:s.DofOffset+len(row)], row)
	return full
}

// biasGradientFull is d(Bias)/d(q_wrt) scattered to world-flat size: the
// bias only depends on q through wrt's own skeleton (gravity's screw
// transport and a DOF's own stiffness never cross a skeleton boundary).
func (bp *Backprop) biasGradientFull(wrt *body.DOF) []float64 {
	n := bp.N
	dBias := make([]float64, n)
	s := wrt.Skeleton
	dBiasS := s.BiasGradient(bp.Gravity, wrt)
	copy(dBias[s.DofOffset:s.DofOffset+len(dBiasS)], dBiasS)
	return dBias
}

func (bp *Backprop) massMatrixGradientFull(wrt *body.DOF) [][]float64 {
	n := bp.N
	dM := la.MatAlloc(n, n)
	s := wrt.Skeleton
	dMs := s.MassMatrixGradient(wrt)
	for i := range dMs {
		for j := range dMs[i] {
			dM[s.DofOffset+i][s.DofOffset+j] = dMs[i][j]
		}
	}
	return dM
}

// projectorGradientApplied computes (dP/dq_wrt) applied to v, holding Minv
// fixed (Minv's own q-dependence is carried separately through PosVel's
// dQdotStar term): P v = Minv J^T inv(J Minv J^T) (J v), differentiated by
// the product rule through J and through inv(.)'s standard derivative
// d(inv(G)) = -inv(G) dG inv(G).
func (bp *Backprop) projectorGradientApplied(Jm, dJ [][]float64, v []float64) []float64 {
	n := bp.N
	nc := len(Jm)
	if nc == 0 {
		return make([]float64, n)
	}
	MinvJt := matMulTr(bp.Minv, Jm)  // n x nc: Minv * J^T
	MinvDJt := matMulTr(bp.Minv, dJ) // n x nc: Minv * dJ^T
	G := matMul(Jm, MinvJt)          // nc x nc: J * Minv * J^T
	inv := la.MatAlloc(nc, nc)
	_, err := la.MatInv(inv, G, 1e-13)
	if err != nil {
		return make([]float64, n)
	}
	dG := addMat(matMul(dJ, MinvJt), matMul(Jm, MinvDJt)) // dJ*Minv*J^T + J*Minv*dJ^T

	Jv := matVec(Jm, v)
	dJv := matVec(dJ, v)
	invJv := matVec(inv, Jv)
	invDJv := matVec(inv, dJv)
	dGInvJv := matVec(dG, invJv)
	dInvJv := negVec(matVec(inv, dGInvJv)) // d(inv)/dq applied to Jv

	out := make([]float64, n)
	t1 := matVec(MinvDJt, invJv)
	t2 := matVec(MinvJt, dInvJv)
	t3 := matVec(MinvJt, invDJv)
	for i := 0; i < n; i++ {
		out[i] = t1[i] + t2[i] + t3[i]
	}
	return out
}

func addMat(a, b [][]float64) [][]float64 {
	n := len(a)
	out := la.MatAlloc(n, len(a[0]))
	for i := range a {
		for j := range a[i] {
			out[i][j] = a[i][j] + b[i][j]
		}
	}
	return out
}

func negVec(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

func matMul(a, b [][]float64) [][]float64 {
	n := len(a)
	if n == 0 {
		return nil
	}
	m := len(b[0])
	k := len(b)
	out := la.MatAlloc(n, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			sum := 0.0
			for p := 0; p < k; p++ {
				sum += a[i][p] * b[p][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// matMulTr returns a * b^T for a (n x k) and b (m x k), yielding (n x m).
func matMulTr(a, b [][]float64) [][]float64 {
	n := len(a)
	if n == 0 {
		return nil
	}
	k := len(a[0])
	m := len(b)
	out := la.MatAlloc(n, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			sum := 0.0
			for p := 0; p < k; p++ {
				sum += a[i][p] * b[j][p]
			}
			out[i][j] = sum
		}
	}
	return out
}

func matVec(a [][]float64, v []float64) []float64 {
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

func negSandwich(Minv, dM [][]float64) [][]float64 {
	tmp := matMul(Minv, dM)
	out := matMul(tmp, Minv)
	for i := range out {
		for j := range out[i] {
			out[i][j] = -out[i][j]
		}
	}
	return out
}

func scaleInPlace(m [][]float64, k float64) {
	for i := range m {
		for j := range m[i] {
			m[i][j] *= k
		}
	}
}
