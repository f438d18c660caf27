// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build !((linux || windows || darwin) && cgo)

package wsi

func init() {
	initDummy()
}
