// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package stats tracks live GPU resource counts and reports
// leaks at shutdown.
//
// A Registry is optional: every resource.Handle accepts a nil
// *Registry and skips accounting, mirroring the teacher's
// convention of nil-checked, optionally-present fields (e.g.
// Renderer.hdr/Renderer.ds in the teacher's render-target
// setup) rather than requiring a no-op implementation.
package stats

import (
	"fmt"
	"sync"

	"github.com/lithosgfx/lithos/internal/bitm"
)

// Kind mirrors resource.Kind without importing it, so that
// stats has no dependency on the resource package; resource
// imports stats instead.
type Kind int

// slab holds the per-instance tracking state for one Kind: a
// bitm free-list assigning each tracked instance a stable slot
// index, and the dense value/name arrays addressed by that
// index. This generalizes the teacher's dataMap idiom
// (engine/id.go: a bitm.Bitm-backed free list paired with a
// dense data array) from a single fixed element type to the
// "any" handle value a Registry tracks.
type slab struct {
	free   bitm.Bitm[uint32]
	values []any
	names  []string
}

func (s *slab) put(v any, name string) int {
	idx, ok := s.free.Search()
	if !ok {
		idx = s.free.Grow(1)
	}
	s.free.Set(idx)
	for idx >= len(s.values) {
		s.values = append(s.values, nil)
		s.names = append(s.names, "")
	}
	s.values[idx] = v
	s.names[idx] = name
	return idx
}

func (s *slab) remove(idx int) {
	s.free.Unset(idx)
	s.values[idx] = nil
	s.names[idx] = ""
}

// Registry counts live resources per Kind, and optionally keeps
// the live instances themselves (via Track/Untrack) for
// per-instance leak reporting.
type Registry struct {
	mu     sync.Mutex
	counts map[Kind]int
	names  map[Kind]string
	slabs  map[Kind]*slab
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		counts: make(map[Kind]int),
		names:  make(map[Kind]string),
		slabs:  make(map[Kind]*slab),
	}
}

// Inc increments the live count for kind.
// name is used only for diagnostics (e.g. leak reports); it
// is recorded once, from the first call for a given kind.
func (r *Registry) Inc(kind Kind, name string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[kind]++
	if _, ok := r.names[kind]; !ok {
		r.names[kind] = name
	}
}

// Dec decrements the live count for kind.
// It panics if the count would go negative, since that
// indicates a double-release bug in the caller, not a
// condition a renderer should run through silently.
func (r *Registry) Dec(kind Kind) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[kind]--
	if r.counts[kind] < 0 {
		panic(fmt.Sprintf("stats: Dec: negative live count for kind %d", kind))
	}
}

// Count returns the live count for kind.
func (r *Registry) Count(kind Kind) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[kind]
}

// Total returns the sum of live counts across all kinds.
func (r *Registry) Total() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, c := range r.counts {
		n += c
	}
	return n
}

// Leak describes a non-zero live count observed at shutdown.
type Leak struct {
	Kind  Kind
	Name  string
	Count int
}

// String implements fmt.Stringer.
func (l Leak) String() string {
	return fmt.Sprintf("%s: %d live at shutdown", l.Name, l.Count)
}

// CheckLeaks returns a Leak entry for every kind whose live
// count is non-zero. It never aborts the process; callers
// are expected to log the result (see ErrorKind ResourceLeak
// in spec §7).
func (r *Registry) CheckLeaks() []Leak {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var leaks []Leak
	for k, c := range r.counts {
		if c != 0 {
			leaks = append(leaks, Leak{Kind: k, Name: r.names[k], Count: c})
		}
	}
	return leaks
}

// Track increments the live count for kind, as Inc does, and
// additionally records v itself (under the given diagnostic
// name) in a per-kind slot table so it can be recovered later
// via LiveInstances. It returns the slot index, which the
// caller must pass back to Untrack exactly once.
//
// Track exists for callers that need per-instance leak detail
// (e.g. "which three Texture2D objects are still alive"),
// beyond the aggregate count Inc/Dec maintain; resource.Handle
// uses it instead of Inc when it holds a non-nil Registry.
func (r *Registry) Track(kind Kind, name string, v any) int {
	if r == nil {
		return -1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[kind]++
	if _, ok := r.names[kind]; !ok {
		r.names[kind] = name
	}
	s, ok := r.slabs[kind]
	if !ok {
		s = &slab{}
		r.slabs[kind] = s
	}
	return s.put(v, name)
}

// Untrack decrements the live count for kind and releases the
// slot idx previously returned by Track. It panics under the
// same negative-count condition Dec does.
func (r *Registry) Untrack(kind Kind, idx int) {
	if r == nil || idx < 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[kind]--
	if r.counts[kind] < 0 {
		panic(fmt.Sprintf("stats: Untrack: negative live count for kind %d", kind))
	}
	if s, ok := r.slabs[kind]; ok {
		s.remove(idx)
	}
}

// LiveInstance pairs one still-tracked value with the
// diagnostic name it was registered under.
type LiveInstance struct {
	Value any
	Name  string
}

// LiveInstances returns every value currently tracked for kind
// via Track (i.e. not yet released by a matching Untrack), for
// shutdown-time leak reports that need to name the individual
// offending resources rather than just a count.
func (r *Registry) LiveInstances(kind Kind) []LiveInstance {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slabs[kind]
	if !ok {
		return nil
	}
	var out []LiveInstance
	for i, v := range s.values {
		if v != nil {
			out = append(out, LiveInstance{Value: v, Name: s.names[i]})
		}
	}
	return out
}
