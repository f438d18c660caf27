// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"testing"
)

type E struct{}

func (E) WindowClose(Window)            {}
func (E) WindowResize(Window, int, int) {}

func TestWSI(t *testing.T) {
	SetWindowHandler(E{})
	switch PlatformInUse() {
	case None:
		win, err := NewWindow(480, 360, "Will fail")
		if win != nil || err != errMissing {
			t.Fatalf("NewWindow: win, err\nhave %v, %v\nwant nil, %v", win, err, errMissing)
		}
		if n := len(Windows()); n != 0 {
			t.Fatalf("len(Windows())\nhave %v\nwant 0", n)
		}
		// Dummy Dispatch does nothing.
		Dispatch()
		if p := VulkanProcAddr(); p != nil {
			t.Fatalf("VulkanProcAddr\nhave %v\nwant nil", p)
		}
	default:
		win, err := NewWindow(480, 360, "My window")
		if err != nil {
			t.Logf("NewWindow (error): %v", err)
			return
		}
		if win == nil {
			t.Fatal("NewWindow: win, err\nhave nil, nil\nwant non-nil, nil")
		}
		if n := len(Windows()); n != 1 {
			t.Fatalf("len(Windows())\nhave %v\nwant 1", n)
		}
		if _, ok := win.(SurfaceSource); !ok {
			t.Fatal("Window does not implement SurfaceSource")
		}
		win.Map()
		Dispatch()
		win.Resize(600, 300)
		win.SetTitle("Renamed")
		if s := win.Title(); s != "Renamed" {
			t.Fatalf("Window.Title\nhave %s\nwant Renamed", s)
		}
		win.Close()
		if n := len(Windows()); n != 0 {
			t.Fatalf("len(Windows()) after Close\nhave %v\nwant 0", n)
		}
	}
	if s := AppName(); s != "" {
		t.Fatalf("AppName\nhave %s\nwant \"\"", s)
	}
	SetAppName("My app")
	if s := AppName(); s != "My app" {
		t.Fatalf("AppName\nhave %s\nwant My app", s)
	}
}
