// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package backend

import "unsafe"

// ownerAddr returns r's own address as a uintptr, for use as a
// resource.OwnerID. This mirrors the teacher's comfort with
// unsafe for cheap, low-level identity tricks (e.g. the
// unsafe.Slice-based uniform layout helpers in
// engine/internal/shader/layout.go), applied here to avoid
// introducing a second identity scheme alongside Go's own
// pointer equality.
func ownerAddr(r *Renderer) uintptr {
	return uintptr(unsafe.Pointer(r))
}
