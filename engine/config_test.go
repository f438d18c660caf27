// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FramesInFlight != 2 {
		t.Fatalf("FramesInFlight\nhave %d\nwant 2", cfg.FramesInFlight)
	}
	if cfg.MinImages != 3 {
		t.Fatalf("MinImages\nhave %d\nwant 3", cfg.MinImages)
	}
	if cfg.RotationLatency != 30 {
		t.Fatalf("RotationLatency\nhave %d\nwant 30", cfg.RotationLatency)
	}
	if cfg.FenceTimeout != 30*time.Second {
		t.Fatalf("FenceTimeout\nhave %v\nwant 30s", cfg.FenceTimeout)
	}
	if cfg.DelayMillis != 13 {
		t.Fatalf("DelayMillis\nhave %d\nwant 13", cfg.DelayMillis)
	}
	if cfg.ClearColor != [4]float32{0.5, 0.5, 0.5, 1} {
		t.Fatalf("ClearColor\nhave %v\nwant 50%% grey", cfg.ClearColor)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	// A missing file yields the defaults.
	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig(missing)\nhave %v\nwant nil", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("LoadConfig(missing)\nhave %+v\nwant defaults", cfg)
	}

	path := filepath.Join(dir, "prerot.toml")
	data := `
frames-in-flight = 9
min-images = 1
rotation-latency = 0
fence-timeout = "5s"
log-interval = 10
delay-millis = 20
clear-color = [0.0, 0.0, 0.0, 1.0]
texture = "other.png"
`
	if err := os.WriteFile(path, []byte(data), 0o666); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig\nhave %v\nwant nil", err)
	}
	// Out-of-range values clamp rather than fail.
	if cfg.FramesInFlight != MaxFrame {
		t.Fatalf("FramesInFlight\nhave %d\nwant %d", cfg.FramesInFlight, MaxFrame)
	}
	if cfg.MinImages != 2 {
		t.Fatalf("MinImages\nhave %d\nwant 2", cfg.MinImages)
	}
	if cfg.RotationLatency != 1 {
		t.Fatalf("RotationLatency\nhave %d\nwant 1", cfg.RotationLatency)
	}
	if cfg.FenceTimeout != 5*time.Second {
		t.Fatalf("FenceTimeout\nhave %v\nwant 5s", cfg.FenceTimeout)
	}
	if cfg.LogInterval != 10 {
		t.Fatalf("LogInterval\nhave %d\nwant 10", cfg.LogInterval)
	}
	if cfg.DelayMillis != 20 {
		t.Fatalf("DelayMillis\nhave %d\nwant 20", cfg.DelayMillis)
	}
	if cfg.ClearColor != [4]float32{0, 0, 0, 1} {
		t.Fatalf("ClearColor\nhave %v\nwant black", cfg.ClearColor)
	}
	if cfg.TexturePath != "other.png" {
		t.Fatalf("TexturePath\nhave %s\nwant other.png", cfg.TexturePath)
	}
	// Untouched fields keep their defaults.
	if cfg.VertShaderPath != DefaultConfig().VertShaderPath {
		t.Fatalf("VertShaderPath\nhave %s\nwant default", cfg.VertShaderPath)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("frames-in-flight = ["), 0o666); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Fatal("LoadConfig(bad)\nhave nil\nwant non-nil error")
	}

	badDur := filepath.Join(dir, "baddur.toml")
	if err := os.WriteFile(badDur, []byte(`fence-timeout = "soon"`), 0o666); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(badDur); err == nil {
		t.Fatal("LoadConfig(baddur)\nhave nil\nwant non-nil error")
	}
}
