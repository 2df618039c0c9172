// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gconf loads a run's ambient configuration: step size, gravity,
// friction-basis size, and per-joint spring/damper parameters, the way
// inp.ReadSim loads a gofem .sim file, narrowed to this module's flat
// (no mesh, no region) settings.
package gconf

import (
	"encoding/json"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// RunConfig is the top-level configuration for one bench/simulation run.
type RunConfig struct {
	Dt               float64    `json:"dt"`
	Gravity          [3]float64 `json:"gravity"`
	TangentBasisSize int        `json:"tangentBasisSize"`
	FrictionCoeff    float64    `json:"frictionCoeff"`
	FallbackSolver   string     `json:"fallbackSolver"` // "pgs" is the only built-in option
	MaxSteps         int        `json:"maxSteps"`
}

// Default returns the module's baseline run configuration.
func Default() RunConfig {
	return RunConfig{
		Dt:               1.0 / 60.0,
		Gravity:          [3]float64{0, 0, -9.81},
		TangentBasisSize: 2,
		FrictionCoeff:    0.5,
		FallbackSolver:   "pgs",
		MaxSteps:         1,
	}
}

// ReadFile loads a RunConfig from a JSON file, starting from Default so an
// omitted field keeps its baseline value (mirrors inp.ReadSim's
// merge-over-defaults behavior).
func ReadFile(path string) (RunConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, chk.Err("gconf: cannot read %q: %v", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, chk.Err("gconf: cannot parse %q: %v", path, err)
	}
	return cfg, nil
}

// JointParams is a fun.Prm-keyed parameter list for one joint's DOFs,
// following the same "N"/"V" scan every msolid constitutive model uses
// (elasticity.go's E/nu scan, ccm.go's phi/Mfix/c scan) rather than a
// bespoke struct per joint type.
type JointParams fun.Prms

// Stiffness scans the parameter list for "stiffness", returning 0 if absent.
func (p JointParams) Stiffness() float64 { return p.find("stiffness") }

// Damping scans the parameter list for "damping", returning 0 if absent.
func (p JointParams) Damping() float64 { return p.find("damping") }

func (p JointParams) find(name string) float64 {
	for _, prm := range p {
		if prm.N == name {
			return prm.V
		}
	}
	return 0
}
