package projectcontext

import "gopkg.in/yaml.v3"

// ToMap renders the context as a structured dictionary. Derived fields
// (DominantPriority, TimePressureLevel, IsCritical, ...) are intentionally
// excluded — they are computed, not stored, and recomputing them from a
// reloaded map is how the round-trip is verified.
func (c *ProjectContext) ToMap() (map[string]any, error) {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// FromMap reconstructs a ProjectContext from a structured dictionary
// produced by ToMap (or an equivalent document, e.g. a config-file
// fixture). It round-trips through YAML rather than exposing the
// Marshal/Unmarshal machinery directly, so callers work with plain maps.
func FromMap(m map[string]any) (*ProjectContext, error) {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return nil, err
	}
	var c ProjectContext
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
