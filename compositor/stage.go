// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package compositor

import (
	"github.com/lithosgfx/lithos/cmdstream"
	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/linear"
	"github.com/lithosgfx/lithos/material"
	"github.com/lithosgfx/lithos/texture"
)

// StageResolve records a VarResolveMultisampleFramebuffer
// packet resolving src (a multisample render target) into dst
// (spec §4.9), for use between a scene's color pass and a
// later pass that samples the result. Both arguments of the
// underlying packet carry the same *driver.ImageCopy descriptor
// since the dispatch handler only needs one full copy
// description, but checks that Src and Dst agree in kind.
func StageResolve(cs *cmdstream.CommandBuffer, src, dst *texture.Texture2D) {
	ic := &driver.ImageCopy{From: src.GetInternalResourceHandle(), To: dst.GetInternalResourceHandle()}
	cs.ResolveMultisampleFramebuffer(ic, ic)
}

// StageCopyTexture records a VarCopyResource packet copying the
// full extent of src into dst (spec §4.9).
func StageCopyTexture(cs *cmdstream.CommandBuffer, src, dst *texture.Texture2D) {
	cs.CopyResource(&driver.ImageCopy{From: src.GetInternalResourceHandle(), To: dst.GetInternalResourceHandle()}, nil)
}

// StagePassUniform writes view and proj into a
// material.PassLayout and records the VarCopyUniformBufferData
// packet that uploads it into buf, the UBPass uniform buffer a
// scene's blueprints share for the duration of one pass
// (spec §3/§4.7).
func StagePassUniform(cs *cmdstream.CommandBuffer, buf driver.Buffer, view, proj *linear.M4) {
	var l material.PassLayout
	l.SetView(view)
	l.SetProjection(proj)
	cs.CopyUniformBufferData(buf, 0, l.Bytes())
}

// StageInstanceUniform writes world, normal and id into a
// material.InstanceLayout and records the
// VarCopyUniformBufferData packet that uploads it into buf, the
// UBInstance uniform buffer a single drawable's root signature
// binds at draw time (spec §3/§4.7).
func StageInstanceUniform(cs *cmdstream.CommandBuffer, buf driver.Buffer, world *linear.M4, normal *linear.M3, id uint32) {
	var l material.InstanceLayout
	l.SetWorld(world)
	l.SetNormal(normal)
	l.SetID(id)
	cs.CopyUniformBufferData(buf, 0, l.Bytes())
}
