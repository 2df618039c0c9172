// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command diffphys-bench runs a small articulated skeleton under gravity
// for a fixed number of steps and reports the step-by-step pose, following
// the teacher's own main.go convention of a flag-parsed, verbose run of one
// simulation.
package main

import (
	"flag"
	"testing"

	"github.com/cpmech/diffphys/body"
	"github.com/cpmech/diffphys/fdcheck"
	"github.com/cpmech/diffphys/gconf"
	"github.com/cpmech/diffphys/glog"
	"github.com/cpmech/diffphys/lcp"
	"github.com/cpmech/diffphys/snapshot"
	"github.com/cpmech/diffphys/world"
	"github.com/cpmech/gosl/fun"
	"github.com/go-gl/mathgl/mgl64"
)

func main() {
	confPath := flag.String("conf", "", "path to a JSON run configuration (optional; defaults used otherwise)")
	verify := flag.Bool("verify", false, "cross-check the analytical VelVel Jacobian against finite differences")
	flag.Parse()

	cfg := gconf.Default()
	if *confPath != "" {
		loaded, err := gconf.ReadFile(*confPath)
		if err != nil {
			glog.Degradedf("diffphys-bench: %v\n", err)
			return
		}
		cfg = loaded
	}

	w := buildPendulum(cfg)

	tau := make([]float64, w.N())
	for step := 0; step < cfg.MaxSteps; step++ {
		bp := w.Step(tau)
		glog.Stepf("step %3d: q=%v q_dot=%v degraded=%v\n", step, w.FlattenQ(), w.FlattenQdot(), bp.Degraded)
		if *verify && step == cfg.MaxSteps-1 {
			runVerify(w, tau, bp)
		}
	}
}

// buildPendulum assembles a single-skeleton two-link revolute chain under
// gravity, with no contacts, as the module's smallest runnable scene.
func buildPendulum(cfg gconf.RunConfig) *world.World {
	gravity := mgl64.Vec3{cfg.Gravity[0], cfg.Gravity[1], cfg.Gravity[2]}
	w := world.New(cfg.Dt, gravity)
	w.TangentBasisSize = cfg.TangentBasisSize
	w.FrictionCoeff = cfg.FrictionCoeff
	w.FallbackLCP = lcp.ProjectedGaussSeidel{}

	jointParams := gconf.JointParams{&fun.Prm{N: "stiffness", V: 0}, &fun.Prm{N: "damping", V: 0.05}}

	s := body.NewSkeleton("pendulum")
	root := &body.Body{Name: "link0", Mass: 1, InertiaLocal: mgl64.Ident3()}
	j0 := &body.Joint{
		Type:           body.JointRevolute,
		Child:          root,
		LocalTransform: body.Identity(),
		DOFs: []*body.DOF{
			{Name: "theta0", LocalAxis: body.Screw{Angular: mgl64.Vec3{0, 1, 0}}, Stiffness: jointParams.Stiffness(), Damping: jointParams.Damping()},
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
			{Name: "theta1", LocalAxis: body.Screw{Angular: mgl64.Vec3{0, 1, 0}}, Stiffness: jointParams.Stiffness(), Damping: jointParams.Damping()},
		},
	}
	s.AddBody(j1)

	w.AddSkeleton(s)
	w.UpdateKinematics()
	return w
}

// runVerify cross-checks every column of the final step's analytical
// VelVel Jacobian against a central-difference estimate. testing.T is
// reused outside of `go test` purely as fdcheck's reporting sink (it
// exposes Errorf/Logf without requiring a real test binary); no test ever
// runs from this path.
func runVerify(w *world.World, tau []float64, bp *snapshot.Backprop) {
	tst := &testing.T{}
	for i := 0; i < w.N(); i++ {
		fdcheck.VelVelColumn(tst, w, tau, i, bp, 1e-4, false)
	}
	if tst.Failed() {
		glog.Warnf("diffphys-bench: finite-difference verification found mismatches\n")
	}
}
