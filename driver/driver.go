// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package driver defines the abstract Renderer Backend contract
// of spec §4.7/§6: the interface set every backend (D3D, GL,
// Vulkan, or the in-process software backend in driver/soft)
// satisfies, plus the registry client code uses to discover
// which backends are linked into the current binary.
//
// The backend drivers themselves are out of scope (spec §1,
// "deliberately out of scope as external collaborators"); only
// the interfaces here, and the registration mechanism, are.
package driver

import (
	"errors"
	"log"
	"sync"
)

// Driver is the interface that provides methods for
// loading and unloading an underlying implementation.
type Driver interface {
	// Open initializes the driver.
	// If it succeeds, further calls with the same receiver
	// have no effect and must return the same GPU instance.
	// Callers should assume that Open is not safe for
	// parallel execution.
	Open() (GPU, error)

	// Name returns the name of the driver.
	// It must not cause the driver to be opened.
	Name() string

	// Close deinitializes the driver.
	// Closing a driver that is not open has no effect.
	// Callers should assume that Close is not safe for
	// parallel execution.
	Close()
}

// ErrNotInstalled means that a platform-specific library
// required for the driver to work is not present in the
// system.
var ErrNotInstalled = errors.New("driver: missing required library")

// ErrNoDevice means that no suitable device could be
// found.
var ErrNoDevice = errors.New("driver: no suitable device found")

// ErrNoHostMemory means that host memory could not be
// allocated.
var ErrNoHostMemory = errors.New("driver: out of host memory")

// ErrNoDeviceMemory means that device memory could not
// be allocated.
var ErrNoDeviceMemory = errors.New("driver: out of device memory")

// ErrFatal means that the driver is in an unrecoverable
// state (spec §7: DeviceLost). Upon encountering such an
// error, the application must destroy everything that it
// created using the driver's GPU and then call the Close
// method. It may call Open again to reinitialize the driver
// for further use.
var ErrFatal = errors.New("driver: fatal error")

// registry holds every Driver registered via Register, in
// registration order, guarded by a mutex so that init funcs
// running from concurrently-imported packages cannot race
// (package registration itself is the one place in this module
// where cross-goroutine access is plausible, since Go runs
// package inits without a defined ordering guarantee across
// independent import paths).
type registry struct {
	mu   sync.Mutex
	drvs []Driver
}

var reg = &registry{drvs: make([]Driver, 0, 1)}

// Drivers returns the registered Drivers.
// Client code imports specific driver packages, and then
// call this function from init. As such, drivers that do
// not register themselves on init will not be considered
// for selection.
func Drivers() []Driver {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]Driver, len(reg.drvs))
	copy(out, reg.drvs)
	return out
}

// Register registers a Driver.
// Driver implementations are expected to call Register
// exactly once, from an init function.
// If a driver with the same name has already been
// registered, it will be replaced by drv.
func Register(drv Driver) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for i := range reg.drvs {
		if reg.drvs[i].Name() == drv.Name() {
			reg.drvs[i] = drv
			log.Printf("[!] driver '%s' replaced", drv.Name())
			return
		}
	}
	reg.drvs = append(reg.drvs, drv)
	log.Printf("driver '%s' registered", drv.Name())
}
