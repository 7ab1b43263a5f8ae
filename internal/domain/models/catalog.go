package models

import (
	"strconv"
	"strings"
)

// CategoryID identifies an egg category. Only ids defined in the catalog are valid.
type CategoryID string

const (
	White       CategoryID = "white"
	Cream       CategoryID = "cream"
	LightBrown  CategoryID = "light_brown"
	MediumBrown CategoryID = "medium_brown"
	DarkBrown   CategoryID = "dark_brown"
	Chocolate   CategoryID = "chocolate"
	LightBlue   CategoryID = "light_blue"
	Blue        CategoryID = "blue"
	Green       CategoryID = "green"
	Olive       CategoryID = "olive"
	Pink        CategoryID = "pink"
	Speckled    CategoryID = "speckled"
	Duck        CategoryID = "duck"
	Quail       CategoryID = "quail"
	Turkey      CategoryID = "turkey"
	Guinea      CategoryID = "guinea"

	Generic        CategoryID = "generic"
	GenericChicken CategoryID = "generic_chicken"
	GenericDuck    CategoryID = "generic_duck"
	GenericQuail   CategoryID = "generic_quail"
	GenericTurkey  CategoryID = "generic_turkey"
	GenericGuinea  CategoryID = "generic_guinea"
)

// Species tags the bird a category of eggs comes from.
type Species string

const (
	SpeciesChicken Species = "chicken"
	SpeciesDuck    Species = "duck"
	SpeciesQuail   Species = "quail"
	SpeciesTurkey  Species = "turkey"
	SpeciesGuinea  Species = "guinea"
)

// AllSpecies lists species in display order. Chicken is always first.
var AllSpecies = []Species{SpeciesChicken, SpeciesDuck, SpeciesQuail, SpeciesTurkey, SpeciesGuinea}

// ParseSpecies accepts a species name in any case, singular or plural.
func ParseSpecies(value string) (Species, error) {
	v := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), "s")
	for _, s := range AllSpecies {
		if v == string(s) {
			return s, nil
		}
	}
	return "", &InvalidInputError{Field: "species", Value: value}
}

// Category is an immutable catalog entry.
type Category struct {
	ID          CategoryID `json:"id"`
	DisplayName string     `json:"displayName"`
	ColorSwatch string     `json:"colorSwatch"`
	Description string     `json:"description"`
	Breeds      []string   `json:"breeds"`
	Pattern     string     `json:"pattern,omitempty"`
	IsGeneric   bool       `json:"isGeneric"`
	Species     Species    `json:"species,omitempty"`
}

// Catalog is the fixed registry of egg categories, kept in definition order.
type Catalog struct {
	categories []Category
	index      map[CategoryID]int
}

// NewCatalog builds a catalog from the provided entries. Duplicate ids keep the first entry.
func NewCatalog(categories []Category) *Catalog {
	c := &Catalog{index: make(map[CategoryID]int, len(categories))}
	for _, cat := range categories {
		if _, dup := c.index[cat.ID]; dup {
			continue
		}
		c.index[cat.ID] = len(c.categories)
		c.categories = append(c.categories, cat)
	}
	return c
}

// DefaultCatalog returns the standard egg catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultCategories)
}

// All returns a copy of every category in definition order.
func (c *Catalog) All() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// IDs returns every category id in definition order.
func (c *Catalog) IDs() []CategoryID {
	ids := make([]CategoryID, 0, len(c.categories))
	for _, cat := range c.categories {
		ids = append(ids, cat.ID)
	}
	return ids
}

// Lookup returns the category for id or an UnknownCategoryError.
func (c *Catalog) Lookup(id CategoryID) (Category, error) {
	idx, ok := c.index[id]
	if !ok {
		return Category{}, &UnknownCategoryError{ID: id}
	}
	return c.categories[idx], nil
}

// Has reports whether id is defined.
func (c *Catalog) Has(id CategoryID) bool {
	_, ok := c.index[id]
	return ok
}

// Name returns the display name for id, or the raw id when unknown.
func (c *Catalog) Name(id CategoryID) string {
	if cat, err := c.Lookup(id); err == nil {
		return cat.DisplayName
	}
	return string(id)
}

// Validate rejects mixes that reference unknown categories or negative quantities.
func (c *Catalog) Validate(mix Mix) error {
	for _, id := range mix.Keys() {
		if !c.Has(id) {
			return &UnknownCategoryError{ID: id}
		}
		if mix[id] < 0 {
			return &InvalidInputError{Field: string(id), Value: strconv.Itoa(mix[id])}
		}
	}
	return nil
}

// Order returns the catalog position of id, or len(catalog) when unknown.
func (c *Catalog) Order(id CategoryID) int {
	if idx, ok := c.index[id]; ok {
		return idx
	}
	return len(c.categories)
}

// GenericFor returns the aggregate category used for a species in speed mode.
func (c *Catalog) GenericFor(species Species) (CategoryID, error) {
	for _, cat := range c.categories {
		if cat.IsGeneric && cat.Species == species {
			return cat.ID, nil
		}
	}
	return "", &UnknownCategoryError{ID: CategoryID("generic_" + string(species))}
}

// SpeciesCategory returns the non-generic category that represents a whole
// non-chicken species (duck, quail, turkey, guinea).
func (c *Catalog) SpeciesCategory(species Species) (CategoryID, bool) {
	if species == SpeciesChicken {
		return "", false
	}
	id := CategoryID(species)
	if !c.Has(id) {
		return "", false
	}
	return id, true
}

// ParseCategory resolves a free-text token by id or display name, ignoring case.
func (c *Catalog) ParseCategory(token string) (CategoryID, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	for _, cat := range c.categories {
		if t == string(cat.ID) || t == strings.ToLower(cat.DisplayName) {
			return cat.ID, nil
		}
	}
	return "", &UnknownCategoryError{ID: CategoryID(token)}
}

var defaultCategories = []Category{
	{ID: White, DisplayName: "White", ColorSwatch: "#FFFFFF", Description: "Pure white eggs", Breeds: []string{"Leghorn", "Ancona", "Hamburg"}, Species: SpeciesChicken},
	{ID: Cream, DisplayName: "Cream", ColorSwatch: "#FFF8DC", Description: "Light cream colored eggs", Breeds: []string{"Buff Orpington", "Cochin"}, Species: SpeciesChicken},
	{ID: LightBrown, DisplayName: "L.Brown", ColorSwatch: "#DEB887", Description: "Light brown eggs", Breeds: []string{"Rhode Island Red", "Plymouth Rock"}, Species: SpeciesChicken},
	{ID: MediumBrown, DisplayName: "M.Brown", ColorSwatch: "#CD853F", Description: "Medium brown eggs", Breeds: []string{"New Hampshire", "Australorp"}, Species: SpeciesChicken},
	{ID: DarkBrown, DisplayName: "D.Brown", ColorSwatch: "#8B4513", Description: "Dark brown eggs", Breeds: []string{"Marans", "Welsummer"}, Species: SpeciesChicken},
	{ID: Chocolate, DisplayName: "Choc", ColorSwatch: "#654321", Description: "Deep chocolate brown eggs", Breeds: []string{"French Black Copper Marans"}, Species: SpeciesChicken},
	{ID: LightBlue, DisplayName: "L.Blue", ColorSwatch: "#ADD8E6", Description: "Light blue eggs", Breeds: []string{"Ameraucana", "Arkansas Blue"}, Species: SpeciesChicken},
	{ID: Blue, DisplayName: "Blue", ColorSwatch: "#4169E1", Description: "Medium blue eggs", Breeds: []string{"Araucana", "Cream Legbar"}, Species: SpeciesChicken},
	{ID: Green, DisplayName: "Green", ColorSwatch: "#90EE90", Description: "Light green eggs", Breeds: []string{"Easter Egger", "Olive Egger"}, Species: SpeciesChicken},
	{ID: Olive, DisplayName: "Olive", ColorSwatch: "#556B2F", Description: "Olive green eggs", Breeds: []string{"Olive Egger", "Black Copper Marans cross"}, Species: SpeciesChicken},
	{ID: Pink, DisplayName: "Pink", ColorSwatch: "#FFB6C1", Description: "Pink tinted eggs", Breeds: []string{"Light Sussex", "Asil"}, Species: SpeciesChicken},
	{ID: Speckled, DisplayName: "Speckled", ColorSwatch: "#DEB887", Description: "Brown eggs with dark speckles", Breeds: []string{"Welsummer", "Marans"}, Pattern: "speckled", Species: SpeciesChicken},
	{ID: Duck, DisplayName: "Duck", ColorSwatch: "#E6E6FA", Description: "Duck eggs", Breeds: []string{"Pekin", "Mallard", "Khaki Campbell", "Welsh Harlequin"}, Species: SpeciesDuck},
	{ID: Quail, DisplayName: "Quail", ColorSwatch: "#D2B48C", Description: "Quail eggs", Breeds: []string{"Coturnix", "Bobwhite", "Jumbo Brown"}, Species: SpeciesQuail},
	{ID: Turkey, DisplayName: "Turkey", ColorSwatch: "#F4A460", Description: "Turkey eggs", Breeds: []string{"Broad Breasted Bronze", "Heritage Bronze", "Bourbon Red"}, Species: SpeciesTurkey},
	{ID: Guinea, DisplayName: "Guinea", ColorSwatch: "#CD853F", Description: "Guinea fowl eggs", Breeds: []string{"Pearl", "White", "Lavender"}, Species: SpeciesGuinea},
	{ID: Generic, DisplayName: "Mixed", ColorSwatch: "#D3D3D3", Description: "Mixed/uncategorized eggs (from speed mode)", Breeds: []string{"Various"}, IsGeneric: true},
	{ID: GenericChicken, DisplayName: "Chicken (Mixed)", ColorSwatch: "#E8E8E8", Description: "Mixed chicken eggs (from speed mode)", Breeds: []string{"Various chicken breeds"}, IsGeneric: true, Species: SpeciesChicken},
	{ID: GenericDuck, DisplayName: "Duck (Mixed)", ColorSwatch: "#DDE6FA", Description: "Mixed duck eggs (from speed mode)", Breeds: []string{"Various duck breeds"}, IsGeneric: true, Species: SpeciesDuck},
	{ID: GenericQuail, DisplayName: "Quail (Mixed)", ColorSwatch: "#E6D7B8", Description: "Mixed quail eggs (from speed mode)", Breeds: []string{"Various quail breeds"}, IsGeneric: true, Species: SpeciesQuail},
	{ID: GenericTurkey, DisplayName: "Turkey (Mixed)", ColorSwatch: "#F7C78A", Description: "Mixed turkey eggs (from speed mode)", Breeds: []string{"Various turkey breeds"}, IsGeneric: true, Species: SpeciesTurkey},
	{ID: GenericGuinea, DisplayName: "Guinea (Mixed)", ColorSwatch: "#DEB887", Description: "Mixed guinea eggs (from speed mode)", Breeds: []string{"Various guinea breeds"}, IsGeneric: true, Species: SpeciesGuinea},
}
