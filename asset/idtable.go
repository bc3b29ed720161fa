// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package asset

// IDTable translates source-side 32-bit asset IDs (as stored in
// an on-disk cross-reference) into the compiled/runtime ID a
// loader hands to application code, per spec §4.10's
// "Asset-ID convention".
type IDTable struct {
	toRuntime map[uint32]uint32
	next      uint32
}

// NewIDTable creates an empty IDTable. Runtime IDs are assigned
// starting at 1, so 0 can be reserved by callers to mean "no
// asset".
func NewIDTable() *IDTable {
	return &IDTable{toRuntime: make(map[uint32]uint32), next: 1}
}

// Intern returns the runtime ID for sourceID, assigning a fresh
// one the first time sourceID is seen.
func (t *IDTable) Intern(sourceID uint32) uint32 {
	if id, ok := t.toRuntime[sourceID]; ok {
		return id
	}
	id := t.next
	t.next++
	t.toRuntime[sourceID] = id
	return id
}

// Lookup returns the runtime ID previously assigned to
// sourceID, if any.
func (t *IDTable) Lookup(sourceID uint32) (uint32, bool) {
	id, ok := t.toRuntime[sourceID]
	return id, ok
}

// Len returns the number of distinct source IDs interned.
func (t *IDTable) Len() int { return len(t.toRuntime) }
