// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"prerot/driver"
)

// The full-screen quad is a 4-vertex triangle strip.
const quadVerts = 4

// drawConstants computes the push-constant block for the
// given generation: a uniform content-fit scale that
// preserves the texture's aspect ratio against the logical
// surface, and the clip-space rotation compensating for the
// surface pre-transform.
// The fit uses the unrotated surface extent; the rotation
// maps the result into display space.
func drawConstants(g *generation, texW, texH int) driver.DrawConstants {
	scaleW := float32(g.surfW) / float32(texW)
	scaleH := float32(g.surfH) / float32(texH)
	minScale := scaleW
	if scaleH < minScale {
		minScale = scaleH
	}
	var c driver.DrawConstants
	c.Fit.Scale(minScale/scaleW, minScale/scaleH, 1)
	c.Rotate.Rotate(g.transform.Radians())
	return c
}

// record re-records cb for one frame targeting t.
// It holds no state across frames; everything it needs
// comes from the current generation and the fixed texture
// dimensions.
func (r *renderer) record(cb driver.CmdBuffer, t driver.Target) error {
	g := r.current
	if err := cb.Begin(); err != nil {
		return err
	}
	cb.BeginPass(t, g.imgW, g.imgH, r.cfg.ClearColor)
	cb.SetViewport(g.imgW, g.imgH)
	cb.SetScissor(g.imgW, g.imgH)
	c := drawConstants(g, r.texW, r.texH)
	cb.SetConstants(&c)
	cb.SetPipeline()
	cb.Draw(quadVerts)
	cb.EndPass()
	return cb.End()
}
