// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"errors"
	"unsafe"
)

var errMissing = errors.New("no wsi implementation")

func initDummy() {
	newWindow = newWindowDummy
	dispatch = dispatchDummy
	vulkanProcAddr = vulkanProcAddrDummy
	platform = None
}

func newWindowDummy(int, int, string) (Window, error) {
	return nil, errMissing
}

func dispatchDummy() {}

func vulkanProcAddrDummy() unsafe.Pointer { return nil }
