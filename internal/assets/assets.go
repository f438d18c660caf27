// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package assets loads the fixed render resources: compiled
// shader binaries and the source texture.
// Assets are read once during initialization; nothing here
// caches or watches.
package assets

import (
	"encoding/binary"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"

	"golang.org/x/image/draw"
)

// SPIR-V word 0.
const spirvMagic = 0x07230203

// Shader reads a compiled SPIR-V blob from fsys.
// It rejects blobs that are not 4-byte aligned or do not
// start with the SPIR-V magic number, since the driver
// would only fail later and less legibly.
func Shader(fsys fs.FS, path string) ([]byte, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	if len(b) < 4 || len(b)%4 != 0 {
		return nil, fmt.Errorf("assets: %s: SPIR-V size %d not a multiple of 4", path, len(b))
	}
	if binary.LittleEndian.Uint32(b) != spirvMagic {
		return nil, fmt.Errorf("assets: %s: bad SPIR-V magic", path)
	}
	return b, nil
}

// Image is a decoded texture: tightly-packed RGBA pixels,
// 4*Width*Height bytes.
type Image struct {
	Pix    []byte
	Width  int
	Height int
}

// Texture reads and decodes a PNG image from fsys,
// converting to tightly-packed RGBA regardless of the
// source color model.
func Texture(fsys fs.FS, path string) (Image, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return Image{}, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return Image{}, fmt.Errorf("assets: %s: %w", path, err)
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return Image{
		Pix:    dst.Pix,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}
