// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package linear implements the small amount of linear algebra
// that clip-space rotation compensation needs.
package linear

// V2 is a 2-component vector of float32.
type V2 [2]float32

// V4 is a 4-component vector of float32.
type V4 [4]float32
