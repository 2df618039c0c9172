// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import (
	"github.com/cpmech/diffphys/body"
	"github.com/go-gl/mathgl/mgl64"
)

// Constraint represents one (contact, basis-index) pair. It is constructed
// with a value copy of the contact record (§3 Invariants, §9) and is
// read-only after construction (§5 "within a backprop call, constraints
// are read-only"). Lifetime: exactly one step, bound to a BackpropSnapshot
// (§3 Lifecycle).
type Constraint struct {
	Record Record
	Index  int // 0 = normal row, >0 = tangent-basis row (index-1 is the basis column)

	// Unsupported mirrors Record.Type == Unsupported; every gradient
	// query below returns zero when this is set (§4.C Failure semantics).
	Unsupported bool
}

// NewConstraint copies r by value and binds it to basis row index.
func NewConstraint(r Record, index int) *Constraint {
	return &Constraint{Record: r, Index: index, Unsupported: r.Type == Unsupported}
}

// WorldPosition is the contact point, unaffected by basis index.
func (c *Constraint) WorldPosition() mgl64.Vec3 {
	return c.Record.Point
}

// WorldNormal is the contact record's normal, unaffected by basis index.
func (c *Constraint) WorldNormal() mgl64.Vec3 {
	return c.Record.Normal
}

// ForceDirection is the normal for index=0, else the (index-1)'th tangent
// column of the ODE basis built from the current normal (§4.C).
func (c *Constraint) ForceDirection() mgl64.Vec3 {
	if c.Index == 0 {
		return c.Record.Normal
	}
	t0, t1 := ODETangentBasis(c.Record.Normal)
	if c.Index == 1 {
		return t0
	}
	return t1
}

// WorldForce is the pure-force wrench [point x dir; dir] applied at the
// contact point (§4.C "world 6-force").
func (c *Constraint) WorldForce() body.Wrench {
	return body.ToWrench(c.WorldPosition(), c.ForceDirection())
}

// GeneralizedForce returns tau, the generalized constraint force this row
// exerts on skeleton s: tau_i = multiple(d) * (worldScrewAxis(d) . worldForce)
// (§4.C). DOFs outside the subtree of both A and B contribute zero
// (§8 property 1); self-collision DOFs contribute zero by construction of
// Multiple (§8 property 2).
func (c *Constraint) GeneralizedForce(s *body.Skeleton) []float64 {
	tau := make([]float64, len(s.DOFs))
	if c.Unsupported {
		return tau
	}
	w := c.WorldForce()
	for i, d := range s.DOFs {
		m := Multiple(d, c.Record)
		if m == 0 {
			continue
		}
		tau[i] = m * d.WorldAxis().Dot(w)
	}
	return tau
}
