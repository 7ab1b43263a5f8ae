package models

// SubMode is the tracking path selected by the mode policy.
type SubMode string

const (
	SubModePerColor     SubMode = "per_color"
	SubModeSpeedSingle  SubMode = "speed_single"
	SubModeSpeedSpecies SubMode = "speed_species"
)

// ModePolicy decides which ledger keys collection and packing may touch.
type ModePolicy struct {
	SpeedModeEnabled  bool                `json:"speedModeEnabled"`
	EnabledCategories map[CategoryID]bool `json:"enabledCategories"`
}

// DefaultModePolicy has speed mode on and every catalog category enabled.
func DefaultModePolicy(catalog *Catalog) ModePolicy {
	enabled := make(map[CategoryID]bool)
	for _, id := range catalog.IDs() {
		enabled[id] = true
	}
	return ModePolicy{SpeedModeEnabled: true, EnabledCategories: enabled}
}

// IsEnabled reports whether the category is enabled.
func (p ModePolicy) IsEnabled(id CategoryID) bool {
	return p.EnabledCategories[id]
}

// EnabledSpecies lists the non-chicken species whose category is enabled, in
// catalog species order.
func (p ModePolicy) EnabledSpecies(catalog *Catalog) []Species {
	var out []Species
	for _, s := range AllSpecies {
		id, ok := catalog.SpeciesCategory(s)
		if ok && p.IsEnabled(id) {
			out = append(out, s)
		}
	}
	return out
}

// SubMode resolves the active tracking path.
func (p ModePolicy) SubMode(catalog *Catalog) SubMode {
	switch {
	case !p.SpeedModeEnabled:
		return SubModePerColor
	case len(p.EnabledSpecies(catalog)) > 0:
		return SubModeSpeedSpecies
	default:
		return SubModeSpeedSingle
	}
}

// CollectionKeys returns the categories a collection may credit under the policy.
func (p ModePolicy) CollectionKeys(catalog *Catalog) []CategoryID {
	switch p.SubMode(catalog) {
	case SubModeSpeedSingle:
		return []CategoryID{Generic}
	case SubModeSpeedSpecies:
		keys := []CategoryID{GenericChicken}
		for _, s := range p.EnabledSpecies(catalog) {
			if id, err := catalog.GenericFor(s); err == nil {
				keys = append(keys, id)
			}
		}
		return keys
	default:
		var keys []CategoryID
		for _, cat := range catalog.All() {
			if !cat.IsGeneric && p.IsEnabled(cat.ID) {
				keys = append(keys, cat.ID)
			}
		}
		return keys
	}
}

// PackKeys returns the aggregate keys bulk packing operates on: the keys the
// active sub-mode collects into, then any other generic key, so eggs left
// under an earlier sub-mode still get packed. It is empty in per-color mode.
func (p ModePolicy) PackKeys(catalog *Catalog) []CategoryID {
	if !p.SpeedModeEnabled {
		return nil
	}
	keys := p.CollectionKeys(catalog)
	seen := make(map[CategoryID]bool, len(keys))
	for _, id := range keys {
		seen[id] = true
	}
	for _, cat := range catalog.All() {
		if cat.IsGeneric && !seen[cat.ID] {
			keys = append(keys, cat.ID)
		}
	}
	return keys
}

// ValidateCollection checks that every positive entry is allowed by the policy.
func (p ModePolicy) ValidateCollection(catalog *Catalog, mix Mix) error {
	if err := catalog.Validate(mix); err != nil {
		return err
	}
	allowed := make(map[CategoryID]bool)
	for _, id := range p.CollectionKeys(catalog) {
		allowed[id] = true
	}
	for _, id := range mix.Keys() {
		if mix[id] > 0 && !allowed[id] {
			return &InvalidInputError{Field: "category", Value: string(id)}
		}
	}
	return nil
}
