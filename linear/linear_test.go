// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestM2(t *testing.T) {
	var m M2
	if m.I(); m != (M2{{1}, {0, 1}}) {
		t.Fatalf("M2.I\nhave %v\nwant [[1 0] [0 1]]", m)
	}

	var r, s M2
	r.Rotate(math32.Pi / 2)
	s.Rotate(-math32.Pi / 2)
	m.Mul(&r, &s)
	if !nearM2(&m, &M2{{1}, {0, 1}}) {
		t.Fatalf("M2.Mul of inverse rotations\nhave %v\nwant identity", m)
	}

	var n M2
	n.Transpose(&r)
	m.Mul(&r, &n)
	if !nearM2(&m, &M2{{1}, {0, 1}}) {
		t.Fatalf("M2.Mul of rotation and transpose\nhave %v\nwant identity", m)
	}
}

func TestM2Rotate(t *testing.T) {
	cases := []struct {
		radians float32
		want    M2
	}{
		{0, M2{{1, 0}, {0, 1}}},
		{math32.Pi / 2, M2{{0, 1}, {-1, 0}}},
		{math32.Pi, M2{{-1, 0}, {0, -1}}},
		{3 * math32.Pi / 2, M2{{0, -1}, {1, 0}}},
	}
	for _, c := range cases {
		var m M2
		m.Rotate(c.radians)
		if !nearM2(&m, &c.want) {
			t.Fatalf("M2.Rotate(%v)\nhave %v\nwant %v", c.radians, m, c.want)
		}
	}
}

func TestM4(t *testing.T) {
	var m M4
	if m.I(); m != (M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}}) {
		t.Fatalf("M4.I\nhave %v\nwant identity", m)
	}

	var s M4
	s.Scale(2, 3, 1)
	if s != (M4{{2}, {1: 3}, {2: 1}, {3: 1}}) {
		t.Fatalf("M4.Scale\nhave %v\nwant [[2 0 0 0] [0 3 0 0] [0 0 1 0] [0 0 0 1]]", s)
	}

	var l M4
	l.Scale(0.5, 1.0/3, 1)
	m.Mul(&s, &l)
	if m != (M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}}) {
		t.Fatalf("M4.Mul of inverse scales\nhave %v\nwant identity", m)
	}
}

func nearM2(m, n *M2) bool {
	const eps = 1e-6
	for i := range m {
		for j := range m[i] {
			if math32.Abs(m[i][j]-n[i][j]) > eps {
				return false
			}
		}
	}
	return true
}
