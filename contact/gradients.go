// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import (
	"github.com/cpmech/diffphys/body"
	"github.com/cpmech/gosl/fun"
	"github.com/go-gl/mathgl/mgl64"
)

// PositionGradient is d(point)/d(q_d) for DOF d (§4.C).
func (c *Constraint) PositionGradient(d *body.DOF) mgl64.Vec3 {
	if c.Unsupported {
		return mgl64.Vec3{}
	}
	switch Classify(d, c.Record) {
	case Face:
		// The vertex moves; the face plane moves tangentially, so the
		// contact point (which sits on the vertex) is unaffected.
		return mgl64.Vec3{}
	case Vertex, VertexFaceSelfCollision, EdgeEdgeSelfCollision:
		return body.GradientWrtTheta(d.WorldAxis(), c.Record.Point)
	case EdgeA:
		return c.edgePositionGradient(d, true)
	case EdgeB:
		return c.edgePositionGradient(d, false)
	default:
		return mgl64.Vec3{}
	}
}

// edgePositionGradient composes the position- and direction-gradients of
// the edge attached to the moving side through getContactPointGradient,
// which differentiates the closed-form skew-line intersection (§4.C).
func (c *Constraint) edgePositionGradient(d *body.DOF, edgeAMoves bool) mgl64.Vec3 {
	r := c.Record
	s := d.WorldAxis()
	if edgeAMoves {
		dP := body.GradientWrtTheta(s, r.EdgeAFixedPoint)
		dD := body.GradientWrtThetaPureRotation(s.Angular, r.EdgeADir)
		return getContactPointGradient(r.EdgeAFixedPoint, r.EdgeADir, r.EdgeBFixedPoint, r.EdgeBDir, dP, dD)
	}
	dP := body.GradientWrtTheta(s, r.EdgeBFixedPoint)
	dD := body.GradientWrtThetaPureRotation(s.Angular, r.EdgeBDir)
	return getContactPointGradient(r.EdgeBFixedPoint, r.EdgeBDir, r.EdgeAFixedPoint, r.EdgeADir, dP, dD)
}

// getContactPointGradient differentiates the closed-form midpoint of the
// closest points between two skew lines, holding the "other" line fixed
// and perturbing the "moving" line's fixed point (A0, dA0) and direction
// (dA, dDA). This is the only place a DOF's motion enters an edge-edge
// contact's position (§4.C EDGE_A/EDGE_B).
func getContactPointGradient(A0, dA, B0, dB, dA0, dDA mgl64.Vec3) mgl64.Vec3 {
	r := A0.Sub(B0)
	dr := dA0 // B0 fixed

	a := dA.Dot(dA)
	b := dA.Dot(dB)
	c := dB.Dot(dB)
	dd := dA.Dot(r)
	e := dB.Dot(r)

	da := 2 * dA.Dot(dDA)
	db := dDA.Dot(dB)
	de := dB.Dot(dr)
	ddd := dDA.Dot(r) + dA.Dot(dr)

	denom := a*c - b*b
	if fun.Heav(denom-1e-12) == 0 {
		return mgl64.Vec3{} // near-parallel edges: contact geometry is degenerate
	}
	ddenom := da*c - 2*b*db

	s := (b*e - c*dd) / denom
	ds := ((db*e+b*de-c*ddd)*denom - (b*e-c*dd)*ddenom) / (denom * denom)

	t := (a*e - b*dd) / denom
	dt := ((da*e+a*de-db*dd-b*ddd)*denom - (a*e-b*dd)*ddenom) / (denom * denom)

	dClosestA := dA0.Add(dA.Mul(ds)).Add(dDA.Mul(s))
	dClosestB := dB.Mul(dt) // B0, dB fixed

	_ = t
	return dClosestA.Add(dClosestB).Mul(0.5)
}

// NormalGradient is d(normal)/d(q_d) for DOF d (§4.C).
func (c *Constraint) NormalGradient(d *body.DOF) mgl64.Vec3 {
	if c.Unsupported {
		return mgl64.Vec3{}
	}
	r := c.Record
	switch Classify(d, r) {
	case Vertex:
		return mgl64.Vec3{} // the normal lives on the face side
	case Face, VertexFaceSelfCollision, EdgeEdgeSelfCollision:
		return body.GradientWrtThetaPureRotation(d.WorldAxis().Angular, r.Normal)
	case EdgeA:
		rot := d.WorldAxis().Angular
		return rot.Cross(r.EdgeADir).Cross(r.EdgeBDir)
	case EdgeB:
		rot := d.WorldAxis().Angular
		return r.EdgeADir.Cross(rot.Cross(r.EdgeBDir))
	default:
		return mgl64.Vec3{}
	}
}

// ForceDirectionGradient is d(force-direction)/d(q_d): equals the normal
// gradient for the normal row (index 0), else propagates through the ODE
// tangent basis (§4.C).
func (c *Constraint) ForceDirectionGradient(d *body.DOF) mgl64.Vec3 {
	normalGrad := c.NormalGradient(d)
	if c.Index == 0 {
		return normalGrad
	}
	return odeTangentBasisGradient(c.Record.Normal, normalGrad, c.Index-1)
}

// WorldForceGradient is the product-rule derivative of [point x dir; dir]
// (§4.C "world 6-force gradient").
func (c *Constraint) WorldForceGradient(d *body.DOF) body.Wrench {
	dPoint := c.PositionGradient(d)
	dDir := c.ForceDirectionGradient(d)
	point := c.WorldPosition()
	dir := c.ForceDirection()
	return body.Wrench{
		Torque: dPoint.Cross(dir).Add(point.Cross(dDir)),
		Force:  dDir,
	}
}

// GeneralizedForceGradient is d(GeneralizedForce(s)[i])/d(q_wrt) for every
// DOF i of skeleton s, used by snapshot to build pos->vel.
func (c *Constraint) GeneralizedForceGradient(s *body.Skeleton, wrt *body.DOF) []float64 {
	grad := make([]float64, len(s.DOFs))
	if c.Unsupported {
		return grad
	}
	F := c.WorldForce()
	Fgrad := c.WorldForceGradient(wrt)
	for i, row := range s.DOFs {
		grad[i] = c.constraintForceSecondTerm(row, wrt, F, Fgrad)
	}
	return grad
}

// ConstraintForceHessian is d^2(GeneralizedForce)/d(q_wrt) d(q_row): the
// constraint-force second derivative of §4.C, "the full product rule on
// screw . F" — multiple(row) * (screwGrad(row,wrt).F + screw(row).Fgrad(wrt)).
// This is the single-row term GeneralizedForceGradient evaluates for every
// row of a skeleton; exposed here per-row for callers that need one
// entry of the Hessian without assembling a whole skeleton's gradient.
func (c *Constraint) ConstraintForceHessian(row, wrt *body.DOF) float64 {
	if c.Unsupported {
		return 0
	}
	F := c.WorldForce()
	Fgrad := c.WorldForceGradient(wrt)
	return c.constraintForceSecondTerm(row, wrt, F, Fgrad)
}

func (c *Constraint) constraintForceSecondTerm(row, wrt *body.DOF, F, Fgrad body.Wrench) float64 {
	m := Multiple(row, c.Record)
	if m == 0 {
		return 0
	}
	sg := body.ScrewGradient(row, wrt)
	return m * (sg.Dot(F) + row.WorldAxis().Dot(Fgrad))
}
