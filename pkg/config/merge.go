package config

import "dario.cat/mergo"

// mergeDocuments layers override onto the built-in defaults: any
// non-zero field, slice, or map entry in override wins, and everything
// override leaves unset falls back to the default. Used the same way the
// teacher's loader.go merges built-in and user-defined queue config.
func mergeDocuments(defaults, override Document) (Document, error) {
	// mergo replaces a struct-valued map entry wholesale, so each RACI entry
	// the override names is first merged field by field onto its default.
	raciEntries := make(map[string]AuthorityYAML, len(override.RACI))
	for kind, entry := range override.RACI {
		base := defaults.RACI[kind]
		if err := mergo.Merge(&base, entry, mergo.WithOverride); err != nil {
			return Document{}, err
		}
		raciEntries[kind] = base
	}

	merged := defaults
	if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
		return Document{}, err
	}
	for kind, entry := range raciEntries {
		merged.RACI[kind] = entry
	}
	return merged, nil
}
