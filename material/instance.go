// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package material

// Technique is one named rendering path of a MaterialInstance,
// binding it to a specific blueprint asset with its own
// property overrides (spec §3).
type Technique struct {
	TechniqueID        uint32
	BlueprintAssetID    uint32
	Overrides           PropertySet
}

// Instance holds the property overrides an application applies
// on top of one or more blueprints (spec §3). A scene item
// references an Instance and, at draw time, a Technique is
// selected from it by TechniqueID.
type Instance struct {
	Techniques []Technique
}

// Technique looks up a Technique by id.
func (m *Instance) Technique(id uint32) (Technique, bool) {
	for _, t := range m.Techniques {
		if t.TechniqueID == id {
			return t, true
		}
	}
	return Technique{}, false
}
