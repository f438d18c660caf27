// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"testing"

	"github.com/chewxy/math32"
)

type stubDriver struct{ name string }

func (d *stubDriver) Open() (Device, error) { return nil, ErrNoDevice }
func (d *stubDriver) Name() string          { return d.name }
func (d *stubDriver) Close()                {}

func TestRegister(t *testing.T) {
	n := len(Drivers())
	Register(&stubDriver{"stub"})
	if len(Drivers()) != n+1 {
		t.Fatalf("Drivers length\nhave %d\nwant %d", len(Drivers()), n+1)
	}
	// Same name replaces rather than appends.
	Register(&stubDriver{"stub"})
	if len(Drivers()) != n+1 {
		t.Fatalf("Drivers length after replace\nhave %d\nwant %d", len(Drivers()), n+1)
	}
	var found bool
	for _, d := range Drivers() {
		if d.Name() == "stub" {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("Drivers: registered driver not found")
	}
}

func TestTransformSwapped(t *testing.T) {
	cases := []struct {
		xform Transform
		want  bool
	}{
		{Identity, false},
		{Rotate90, true},
		{Rotate180, false},
		{Rotate270, true},
	}
	for _, c := range cases {
		if got := c.xform.Swapped(); got != c.want {
			t.Fatalf("%v.Swapped\nhave %v\nwant %v", c.xform, got, c.want)
		}
	}
}

func TestTransformHalfTurn(t *testing.T) {
	half := [][2]Transform{
		{Identity, Rotate180},
		{Rotate180, Identity},
		{Rotate90, Rotate270},
		{Rotate270, Rotate90},
	}
	for _, p := range half {
		if !p[0].HalfTurnFrom(p[1]) {
			t.Fatalf("%v.HalfTurnFrom(%v)\nhave false\nwant true", p[0], p[1])
		}
	}
	quarter := [][2]Transform{
		{Identity, Identity},
		{Identity, Rotate90},
		{Rotate90, Rotate180},
		{Rotate270, Identity},
		{Rotate180, Rotate270},
	}
	for _, p := range quarter {
		if p[0].HalfTurnFrom(p[1]) {
			t.Fatalf("%v.HalfTurnFrom(%v)\nhave true\nwant false", p[0], p[1])
		}
	}
}

func TestTransformRadians(t *testing.T) {
	cases := []struct {
		xform Transform
		want  float32
	}{
		{Identity, 0},
		{Rotate90, math32.Pi / 2},
		{Rotate180, math32.Pi},
		{Rotate270, 3 * math32.Pi / 2},
	}
	for _, c := range cases {
		if got := c.xform.Radians(); got != c.want {
			t.Fatalf("%v.Radians\nhave %v\nwant %v", c.xform, got, c.want)
		}
	}
}
