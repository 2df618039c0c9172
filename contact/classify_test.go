// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import (
	"testing"

	"github.com/cpmech/diffphys/body"
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
)

func oneDofSkeleton(name string) (*body.Skeleton, *body.DOF) {
	s := body.NewSkeleton(name)
	b := &body.Body{Name: "b0", Mass: 1, InertiaLocal: mgl64.Ident3()}
	j := &body.Joint{
		Type:           body.JointRevolute,
		Child:          b,
		LocalTransform: body.Identity(),
		DOFs:           []*body.DOF{{Name: "q0", LocalAxis: body.Screw{Angular: mgl64.Vec3{0, 0, 1}}}},
	}
	s.AddBody(j)
	return s, s.DOFs[0]
}

func Test_classify01(tst *testing.T) {

	chk.PrintTitle("classify01: unrelated DOF sees None and zero multiple")

	_, dA := oneDofSkeleton("A")
	sB, _ := oneDofSkeleton("B")

	r := Record{Type: VertexFace, BodyA: contactRef("B", 0), BodyB: contactRef("C", 0)}
	if Classify(dA, r) != None {
		tst.Errorf("expected None for unrelated DOF, got %v", Classify(dA, r))
	}
	if m := Multiple(dA, r); m != 0 {
		tst.Errorf("expected multiple=0, got %g", m)
	}

	_ = sB
}

func Test_classify02(tst *testing.T) {

	chk.PrintTitle("classify02: swapping A<->B negates multiple (property 8)")

	sA, dA := oneDofSkeleton("A")
	_, _ = sA, dA

	r := Record{Type: VertexFace, BodyA: contactRef("A", 0), BodyB: contactRef("B", 0)}
	m1 := Multiple(dA, r)
	m2 := Multiple(dA, r.Swapped())
	chk.Scalar(tst, "multiple(r) + multiple(swapped(r))", 1e-17, m1+m2, 0)
	if m1 == 0 {
		tst.Errorf("expected a nonzero multiple for an ancestor DOF")
	}
}

func Test_classify03(tst *testing.T) {

	chk.PrintTitle("classify03: self-collision contributes zero multiple")

	sA, dA := oneDofSkeleton("A")
	_ = sA

	r := Record{Type: VertexFace, BodyA: contactRef("A", 0), BodyB: contactRef("A", 0)}
	if m := Multiple(dA, r); m != 0 {
		tst.Errorf("self-collision must contribute zero, got %g", m)
	}
}

func Test_classify04(tst *testing.T) {

	chk.PrintTitle("classify04: Swapped flips VertexFace<->FaceVertex and round-trips to the original Record")

	r := Record{
		Type:   VertexFace,
		BodyA:  contactRef("A", 0),
		BodyB:  contactRef("B", 0),
		Normal: mgl64.Vec3{0, 0, 1},
	}
	s := r.Swapped()
	if s.Type != FaceVertex {
		tst.Errorf("expected Swapped(VertexFace) to be FaceVertex, got %v", s.Type)
	}
	back := s.Swapped()
	if diff := cmp.Diff(r, back); diff != "" {
		tst.Errorf("Swapped(Swapped(r)) != r (-want +got):\n%s", diff)
	}
}

func contactRef(skeleton string, tree int) BodyRef {
	return BodyRef{Skeleton: skeleton, TreeIndex: tree}
}
