// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package asset

import (
	"math"

	"github.com/lithosgfx/lithos/driver"
)

func float32bits(f float32) uint32    { return math.Float32bits(f) }
func float32frombits(b uint32) float32 { return math.Float32frombits(b) }

func materialDriverFillMode(v uint32) driver.FillMode       { return driver.FillMode(v) }
func materialDriverCullMode(v uint32) driver.CullMode       { return driver.CullMode(v) }
func materialDriverStencilOp(v uint32) driver.StencilOp     { return driver.StencilOp(v) }
func materialDriverCmpFunc(v uint32) driver.CmpFunc         { return driver.CmpFunc(v) }
func materialDriverBlendFac(v uint32) driver.BlendFac       { return driver.BlendFac(v) }
func materialDriverBlendOp(v uint32) driver.BlendOp         { return driver.BlendOp(v) }
func materialDriverFilter(v uint32) driver.Filter           { return driver.Filter(v) }
func materialDriverAddrMode(v uint32) driver.AddrMode       { return driver.AddrMode(v) }
