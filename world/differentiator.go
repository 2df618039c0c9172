// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"github.com/cpmech/diffphys/body"
	"github.com/cpmech/diffphys/contact"
	"github.com/cpmech/gosl/la"
)

// ConstraintForces is constraintForces(world) of §6: the full world-flat
// generalized constraint-force vector, read off LastStep.
func (w *World) ConstraintForces() []float64 {
	if w.LastStep == nil {
		return make([]float64, w.N())
	}
	return w.LastStep.ConstraintForces()
}

// ConstraintForcesForSkeleton is constraintForces(skeleton) of §6: the
// generalized constraint-force vector restricted to one skeleton's own
// DOFs, read off LastStep. Zero-valued until the first Step.
func (w *World) ConstraintForcesForSkeleton(s *body.Skeleton) []float64 {
	if w.LastStep == nil {
		return make([]float64, len(s.DOFs))
	}
	return w.LastStep.ConstraintForcesForSkeleton(s)
}

// ContactPositionJacobian is contactPositionJacobian(...) of §6, read off
// LastStep; a 3xn zero matrix before the first Step.
func (w *World) ContactPositionJacobian(c *contact.Constraint) [][]float64 {
	if w.LastStep == nil {
		return la.MatAlloc(3, w.N())
	}
	return w.LastStep.ContactPositionJacobian(c)
}

// ContactForceDirectionJacobian is contactForceDirectionJacobian(...) of
// §6, read off LastStep; a 3xn zero matrix before the first Step.
func (w *World) ContactForceDirectionJacobian(c *contact.Constraint) [][]float64 {
	if w.LastStep == nil {
		return la.MatAlloc(3, w.N())
	}
	return w.LastStep.ContactForceDirectionJacobian(c)
}

// ContactForceJacobian is contactForceJacobian(...) of §6, read off
// LastStep; a 6xn zero matrix before the first Step.
func (w *World) ContactForceJacobian(c *contact.Constraint) [][]float64 {
	if w.LastStep == nil {
		return la.MatAlloc(6, w.N())
	}
	return w.LastStep.ContactForceJacobian(c)
}

// ConstraintForcesJacobian is constraintForcesJacobian(world [, wrt]) of
// §6, read off LastStep; an n_rows x n_wrt zero matrix before the first
// Step.
func (w *World) ConstraintForcesJacobian(wrt ...*body.DOF) [][]float64 {
	n := w.N()
	if w.LastStep == nil {
		cols := len(wrt)
		if cols == 0 {
			cols = n
		}
		return la.MatAlloc(n, cols)
	}
	return w.LastStep.ConstraintForcesJacobian(wrt...)
}
