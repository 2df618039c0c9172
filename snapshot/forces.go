// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snapshot

import (
	"github.com/cpmech/diffphys/body"
	"github.com/cpmech/diffphys/contact"
	"github.com/cpmech/gosl/la"
)

// ConstraintForces is the aggregated generalized constraint-force vector
// tau = sum_c impulse_c * GeneralizedForce_c, world-flat (§6 differentiator
// surface "constraintForces(world)").
func (bp *Backprop) ConstraintForces() []float64 {
	out := make([]float64, bp.N)
	for i, c := range bp.Constraints {
		x := bp.Impulse[i]
		if x == 0 {
			continue
		}
		row := bp.rowJacobian(c)
		for k := range out {
			out[k] += x * row[k]
		}
	}
	return out
}

// ConstraintForcesForSkeleton restricts ConstraintForces to one skeleton's
// own DOFs (§6 differentiator surface "constraintForces(skeleton)").
func (bp *Backprop) ConstraintForcesForSkeleton(s *body.Skeleton) []float64 {
	full := bp.ConstraintForces()
	out := make([]float64, len(s.DOFs))
	copy(out, full[s.DofOffset:s.DofOffset+len(s.DOFs)])
	return out
}

// ContactPositionJacobian is contactPositionJacobian(...) of §6: the 3xn
// matrix of d(contact point)/d(q) for every world DOF, built column by
// column from Constraint.PositionGradient.
func (bp *Backprop) ContactPositionJacobian(c *contact.Constraint) [][]float64 {
	J := la.MatAlloc(3, bp.N)
	for col, wrt := range bp.flatDOFs() {
		g := c.PositionGradient(wrt)
		J[0][col], J[1][col], J[2][col] = g[0], g[1], g[2]
	}
	return J
}

// ContactForceDirectionJacobian is contactForceDirectionJacobian(...) of
// §6: the 3xn matrix of d(force direction)/d(q), from
// Constraint.ForceDirectionGradient.
func (bp *Backprop) ContactForceDirectionJacobian(c *contact.Constraint) [][]float64 {
	J := la.MatAlloc(3, bp.N)
	for col, wrt := range bp.flatDOFs() {
		g := c.ForceDirectionGradient(wrt)
		J[0][col], J[1][col], J[2][col] = g[0], g[1], g[2]
	}
	return J
}

// ContactForceJacobian is contactForceJacobian(...) of §6: the 6xn matrix
// of d([point x dir; dir])/d(q), from Constraint.WorldForceGradient, rows
// ordered [torque.xyz; force.xyz] matching body.Wrench.
func (bp *Backprop) ContactForceJacobian(c *contact.Constraint) [][]float64 {
	J := la.MatAlloc(6, bp.N)
	for col, wrt := range bp.flatDOFs() {
		g := c.WorldForceGradient(wrt)
		J[0][col], J[1][col], J[2][col] = g.Torque[0], g.Torque[1], g.Torque[2]
		J[3][col], J[4][col], J[5][col] = g.Force[0], g.Force[1], g.Force[2]
	}
	return J
}

// ConstraintForcesJacobian is constraintForcesJacobian(skels_or_world [,
// wrt]) of §6: d(ConstraintForces)/d(q), holding the solved impulses fixed
// (the explicit Jacobian assembled directly from each constraint's own
// GeneralizedForceGradient, as opposed to PosVel, which additionally
// differentiates through the impulse solution itself). n_rows x n_wrt,
// full world size; pass specific wrt DOFs to restrict the columns, or none
// for every world DOF.
func (bp *Backprop) ConstraintForcesJacobian(wrt ...*body.DOF) [][]float64 {
	cols := wrt
	if len(cols) == 0 {
		cols = bp.flatDOFs()
	}
	J := la.MatAlloc(bp.N, len(cols))
	for col, w := range cols {
		for i, c := range bp.Constraints {
			x := bp.Impulse[i]
			if x == 0 {
				continue
			}
			off := 0
			for _, s := range bp.Skeletons {
				grad := c.GeneralizedForceGradient(s, w)
				for k, v := range grad {
					J[off+k][col] += x * v
				}
				off += len(s.DOFs)
			}
		}
	}
	return J
}
