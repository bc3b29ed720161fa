// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"github.com/lithosgfx/lithos/driver"
)

// NewSwapchain implements driver.Presenter.
func (g *GPU) NewSwapchain(win driver.WindowHandle, size driver.WindowSize, imageCount int) (driver.Swapchain, error) {
	if win == 0 {
		return nil, newErr("NewSwapchain: zero WindowHandle")
	}
	if imageCount < 2 {
		return nil, newErr("NewSwapchain: imageCount must be at least 2")
	}
	return g.newSwapchain(win, size, imageCount)
}

func (g *GPU) newSwapchain(win driver.WindowHandle, size driver.WindowSize, imageCount int) (*Swapchain, error) {
	sc := &Swapchain{gpu: g, win: win, size: size, format: driver.BGRA8un}
	if err := sc.alloc(imageCount); err != nil {
		return nil, err
	}
	return sc, nil
}

// Swapchain implements driver.Swapchain.
// Images are ordinary software Images; presenting one is a
// no-op beyond marking it free for reacquisition.
type Swapchain struct {
	gpu    *GPU
	win    driver.WindowHandle
	size   driver.WindowSize
	format driver.PixelFmt
	imgs   []*Image
	views  []driver.ImageView
	free   []bool
	freed  bool
}

func (sc *Swapchain) alloc(n int) error {
	sc.imgs = make([]*Image, n)
	sc.views = make([]driver.ImageView, n)
	sc.free = make([]bool, n)
	for i := range sc.imgs {
		img, err := sc.gpu.NewImage(
			sc.format,
			driver.Dim3D{Width: sc.size.Width, Height: sc.size.Height},
			1, 1, 1,
			driver.URenderTarget,
		)
		if err != nil {
			return err
		}
		v, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
		if err != nil {
			return err
		}
		sc.imgs[i] = img.(*Image)
		sc.views[i] = v
		sc.free[i] = true
	}
	return nil
}

func (sc *Swapchain) Destroy() {
	for _, img := range sc.imgs {
		img.Destroy()
	}
	sc.freed = true
}

func (sc *Swapchain) Views() []driver.ImageView { return sc.views }

func (sc *Swapchain) Next(cb driver.CmdBuffer) (int, error) {
	for i, f := range sc.free {
		if f {
			sc.free[i] = false
			return i, nil
		}
	}
	return 0, driver.ErrNoBackbuffer
}

func (sc *Swapchain) Present(index int, cb driver.CmdBuffer) error {
	if index < 0 || index >= len(sc.free) {
		return newErr("Present: index out of range")
	}
	sc.free[index] = true
	return nil
}

func (sc *Swapchain) Recreate() error {
	for i := range sc.free {
		sc.free[i] = true
	}
	return nil
}

func (sc *Swapchain) Format() driver.PixelFmt { return sc.format }
