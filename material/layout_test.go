// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package material_test

import (
	"testing"
	"unsafe"

	"github.com/lithosgfx/lithos/linear"
	"github.com/lithosgfx/lithos/material"
)

func TestPassLayoutSetView(t *testing.T) {
	var l material.PassLayout
	m := linear.M4{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	l.SetView(&m)
	b := l.Bytes()
	if len(b) != 32*4 {
		t.Fatalf("Bytes len: got %d, want %d", len(b), 32*4)
	}
	if l[0] != 1 || l[15] != 16 {
		t.Fatalf("SetView did not copy the matrix into [0:16]: got l[0]=%v l[15]=%v", l[0], l[15])
	}
	if l[16] != 0 {
		t.Fatalf("SetView wrote past its slot: l[16]=%v", l[16])
	}
}

func TestPassLayoutSetProjection(t *testing.T) {
	var l material.PassLayout
	m := linear.M4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	l.SetProjection(&m)
	if l[16] != 1 || l[21] != 1 || l[26] != 1 || l[31] != 1 {
		t.Fatalf("SetProjection did not write the identity matrix into [16:32]: %v", l[16:32])
	}
}

func TestInstanceLayoutSetWorldNormalAndID(t *testing.T) {
	var l material.InstanceLayout
	world := linear.M4{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	normal := linear.M3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	l.SetWorld(&world)
	l.SetNormal(&normal)
	l.SetID(42)

	if l[0] != 1 || l[15] != 16 {
		t.Fatalf("SetWorld did not copy into [0:16]: got l[0]=%v l[15]=%v", l[0], l[15])
	}
	if l[16] != 1 || l[20] != 1 || l[24] != 1 {
		t.Fatalf("SetNormal did not write the identity matrix into [16:25]: %v", l[16:25])
	}
	if id := *(*uint32)(unsafe.Pointer(&l[25])); id != 42 {
		t.Fatalf("SetID: got %d, want 42", id)
	}
}
