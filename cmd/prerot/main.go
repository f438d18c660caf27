// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build cgo

// Prerot renders a textured quad to a window, compensating
// for the surface pre-transform so the image stays upright
// when the display rotates.
package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"time"

	"prerot/driver"
	_ "prerot/driver/vk"
	"prerot/engine"
	"prerot/wsi"
)

func init() {
	// Window and driver calls must come from the main thread.
	runtime.LockOSThread()
}

var (
	configPath = flag.String("config", "prerot.toml", "configuration file")
	assetsDir  = flag.String("assets", ".", "directory holding shaders and texture")
	driverName = flag.String("driver", "vulkan", "driver to present with")
)

// handler routes window events into the engine.
type handler struct {
	eng  *engine.Engine
	quit bool
}

func (h *handler) WindowClose(wsi.Window) { h.quit = true }

func (h *handler) WindowResize(_ wsi.Window, width, height int) {
	h.eng.WindowResized(width, height)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("prerot: ")
	flag.Parse()

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if wsi.PlatformInUse() == wsi.None {
		log.Fatal("no window system available")
	}
	wsi.SetAppName("prerot")
	win, err := wsi.NewWindow(960, 540, "prerot")
	if err != nil {
		log.Fatal(err)
	}
	defer win.Close()

	var drv driver.Driver
	for _, d := range driver.Drivers() {
		if d.Name() == *driverName {
			drv = d
			break
		}
	}
	if drv == nil {
		log.Fatalf("driver %q not registered", *driverName)
	}
	dev, err := drv.Open()
	if err != nil {
		log.Fatal(err)
	}
	defer drv.Close()

	eng := engine.New(dev, &cfg)
	h := &handler{eng: eng}
	wsi.SetWindowHandler(h)
	if err := eng.InitWindow(win, os.DirFS(*assetsDir)); err != nil {
		log.Fatal(err)
	}
	defer eng.TermWindow()
	if err := win.Map(); err != nil {
		log.Fatal(err)
	}

	for !h.quit {
		wsi.Dispatch()
		if h.quit {
			break
		}
		start := time.Now()
		if err := eng.DrawFrame(); err != nil {
			log.Print(err)
			break
		}
		delay := eng.DelayMillis(time.Since(start).Nanoseconds())
		time.Sleep(time.Duration(delay) * time.Millisecond)
	}
}
