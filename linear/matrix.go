// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"github.com/chewxy/math32"
)

// M2 is a column-major 2x2 matrix of float32.
type M2 [2]V2

// I makes m an identity matrix.
func (m *M2) I() { *m = M2{{1}, {0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M2) Mul(l, r *M2) {
	*m = M2{}
	for i := range m {
		for j := range m {
			for k := range m {
				m[i][j] += l[k][j] * r[i][k]
			}
		}
	}
}

// Rotate sets m to a counter-clockwise rotation by the
// given angle, in radians.
func (m *M2) Rotate(radians float32) {
	sin, cos := math32.Sincos(radians)
	*m = M2{
		{cos, sin},
		{-sin, cos},
	}
}

// Transpose sets m to contain the transpose of n.
func (m *M2) Transpose(n *M2) {
	for i := range m {
		m[i][i] = n[i][i]
		for j := i + 1; j < len(m); j++ {
			m[i][j], m[j][i] = n[j][i], n[i][j]
		}
	}
}

// M4 is a column-major 4x4 matrix of float32.
type M4 [4]V4

// I makes m an identity matrix.
func (m *M4) I() { *m = M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M4) Mul(l, r *M4) {
	*m = M4{}
	for i := range m {
		for j := range m {
			for k := range m {
				m[i][j] += l[k][j] * r[i][k]
			}
		}
	}
}

// Scale sets m to a scale matrix with factors x, y and z.
func (m *M4) Scale(x, y, z float32) {
	*m = M4{{x}, {1: y}, {2: z}, {3: 1}}
}

// Transpose sets m to contain the transpose of n.
func (m *M4) Transpose(n *M4) {
	for i := range m {
		m[i][i] = n[i][i]
		for j := i + 1; j < len(m); j++ {
			m[i][j], m[j][i] = n[j][i], n[i][j]
		}
	}
}
