// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// The minimum number of frames in flight.
	MinFrame = 1

	// The maximum number of frames in flight.
	MaxFrame = 3

	dflFramesInFlight  = 2
	dflMinImages       = 3
	dflRotationLatency = 30
	dflFenceTimeout    = 30 * time.Second
	dflLogInterval     = 100
	dflDelayMillis     = 13
)

// Config is used to configure the engine.
type Config struct {
	// The number of frames in flight.
	// It bounds how far CPU recording may run ahead of
	// GPU execution.
	//
	// Default is 2.
	FramesInFlight int

	// The minimum number of swapchain images to request.
	// The driver may create more.
	//
	// Default is 3.
	MinImages int

	// The number of suboptimal-present frames to absorb
	// before rebuilding the swapchain for a quarter-turn
	// rotation. The platform's transform-changed signal
	// lags the rotation event, so rebuilding on the first
	// signal risks rebuilding twice.
	//
	// Default is 30.
	RotationLatency int

	// The bound on fence waits. Exceeding it means a
	// device hang and terminates the frame loop.
	//
	// Default is 30s.
	FenceTimeout time.Duration

	// The number of frames between heartbeat log lines.
	// Observational only.
	//
	// Default is 100.
	LogInterval int

	// The delay, in milliseconds, that DelayMillis reports
	// to the external frame clock.
	//
	// Default is 13.
	DelayMillis uint32

	// The render pass clear color.
	//
	// Default is opaque 50% grey.
	ClearColor [4]float32

	// Asset paths, relative to the asset source root.
	TexturePath    string
	VertShaderPath string
	FragShaderPath string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FramesInFlight:  dflFramesInFlight,
		MinImages:       dflMinImages,
		RotationLatency: dflRotationLatency,
		FenceTimeout:    dflFenceTimeout,
		LogInterval:     dflLogInterval,
		DelayMillis:     dflDelayMillis,
		ClearColor:      [4]float32{0.5, 0.5, 0.5, 1},
		TexturePath:     "sample_tex.png",
		VertShaderPath:  "texture.vert.spv",
		FragShaderPath:  "texture.frag.spv",
	}
}

// sanitize clamps out-of-range fields to usable values.
func (c *Config) sanitize() {
	if c.FramesInFlight < MinFrame {
		c.FramesInFlight = MinFrame
	}
	if c.FramesInFlight > MaxFrame {
		c.FramesInFlight = MaxFrame
	}
	if c.MinImages < 2 {
		c.MinImages = 2
	}
	if c.RotationLatency < 1 {
		c.RotationLatency = 1
	}
	if c.FenceTimeout <= 0 {
		c.FenceTimeout = dflFenceTimeout
	}
	if c.LogInterval < 1 {
		c.LogInterval = dflLogInterval
	}
}

// fileConfig mirrors the TOML override file.
// Absent fields leave the defaults untouched.
type fileConfig struct {
	FramesInFlight  *int        `toml:"frames-in-flight"`
	MinImages       *int        `toml:"min-images"`
	RotationLatency *int        `toml:"rotation-latency"`
	FenceTimeout    *string     `toml:"fence-timeout"`
	LogInterval     *int        `toml:"log-interval"`
	DelayMillis     *uint32     `toml:"delay-millis"`
	ClearColor      *[4]float32 `toml:"clear-color"`
	Texture         *string     `toml:"texture"`
	VertShader      *string     `toml:"vert-shader"`
	FragShader      *string     `toml:"frag-shader"`
}

// LoadConfig returns the default configuration overridden
// by the TOML file at path. A missing file is not an error;
// it yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	var fc fileConfig
	if err := toml.Unmarshal(b, &fc); err != nil {
		return cfg, err
	}
	if fc.FramesInFlight != nil {
		cfg.FramesInFlight = *fc.FramesInFlight
	}
	if fc.MinImages != nil {
		cfg.MinImages = *fc.MinImages
	}
	if fc.RotationLatency != nil {
		cfg.RotationLatency = *fc.RotationLatency
	}
	if fc.FenceTimeout != nil {
		d, err := time.ParseDuration(*fc.FenceTimeout)
		if err != nil {
			return cfg, err
		}
		cfg.FenceTimeout = d
	}
	if fc.LogInterval != nil {
		cfg.LogInterval = *fc.LogInterval
	}
	if fc.DelayMillis != nil {
		cfg.DelayMillis = *fc.DelayMillis
	}
	if fc.ClearColor != nil {
		cfg.ClearColor = *fc.ClearColor
	}
	if fc.Texture != nil {
		cfg.TexturePath = *fc.Texture
	}
	if fc.VertShader != nil {
		cfg.VertShaderPath = *fc.VertShader
	}
	if fc.FragShader != nil {
		cfg.FragShaderPath = *fc.FragShader
	}
	cfg.sanitize()
	return cfg, nil
}
