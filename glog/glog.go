// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package glog gives the simulation loop named, colored log calls instead
// of bare fmt, the way fem.go calls gosl/io directly rather than going
// through a generic logging package.
package glog

import "github.com/cpmech/gosl/io"

// Stepf announces a completed step at the teacher's plain verbosity level.
func Stepf(format string, args ...interface{}) {
	io.Pf(format, args...)
}

// Warnf flags a recoverable anomaly (an unsupported contact, a fallback
// solver invocation) in yellow, mirroring fem.go's io.Pfyel calls.
func Warnf(format string, args ...interface{}) {
	io.Pfyel(format, args...)
}

// Degradedf flags a step whose Jacobians should not be trusted (§7 "both
// solvers failed") in red.
func Degradedf(format string, args ...interface{}) {
	io.Pfred(format, args...)
}
