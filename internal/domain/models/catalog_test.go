package models

import (
	"errors"
	"testing"
)

func TestDefaultCatalogOrder(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	ids := c.IDs()
	if len(ids) != 22 {
		t.Fatalf("catalog size = %d, want 22", len(ids))
	}
	if ids[0] != White || ids[len(ids)-1] != GenericGuinea {
		t.Errorf("order = %v", ids)
	}
	if c.Order(Generic) != 16 {
		t.Errorf("Order(generic) = %d, want 16", c.Order(Generic))
	}
}

func TestCatalogLookupAndValidate(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	cat, err := c.Lookup(Speckled)
	if err != nil || cat.Pattern != "speckled" || cat.Species != SpeciesChicken {
		t.Errorf("Lookup(speckled) = %+v, %v", cat, err)
	}

	var unknown *UnknownCategoryError
	if _, err := c.Lookup("plum"); !errors.As(err, &unknown) || unknown.ID != "plum" {
		t.Errorf("Lookup(plum) err = %v", err)
	}

	tests := []struct {
		name    string
		mix     Mix
		wantErr bool
	}{
		{name: "valid", mix: Mix{White: 3, GenericDuck: 0}},
		{name: "empty", mix: Mix{}},
		{name: "unknown", mix: Mix{"plum": 1}, wantErr: true},
		{name: "negative", mix: Mix{White: -1}, wantErr: true},
	}
	for _, tt := range tests {
		if err := c.Validate(tt.mix); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestCatalogSpeciesHelpers(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	for _, tt := range []struct {
		species Species
		want    CategoryID
	}{
		{SpeciesChicken, GenericChicken},
		{SpeciesDuck, GenericDuck},
		{SpeciesGuinea, GenericGuinea},
	} {
		if got, err := c.GenericFor(tt.species); err != nil || got != tt.want {
			t.Errorf("GenericFor(%s) = %s, %v", tt.species, got, err)
		}
	}

	if _, ok := c.SpeciesCategory(SpeciesChicken); ok {
		t.Error("chicken has no single species category")
	}
	if id, ok := c.SpeciesCategory(SpeciesQuail); !ok || id != Quail {
		t.Errorf("SpeciesCategory(quail) = %s, %v", id, ok)
	}
}

func TestParseCategoryAndSpecies(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	for token, want := range map[string]CategoryID{
		"white":        White,
		"L.Blue":       LightBlue,
		" light_blue ": LightBlue,
		"mixed":        Generic,
	} {
		if got, err := c.ParseCategory(token); err != nil || got != want {
			t.Errorf("ParseCategory(%q) = %s, %v", token, got, err)
		}
	}
	if _, err := c.ParseCategory("violet"); err == nil {
		t.Error("ParseCategory(violet) succeeded")
	}

	if s, err := ParseSpecies("Ducks"); err != nil || s != SpeciesDuck {
		t.Errorf("ParseSpecies(Ducks) = %s, %v", s, err)
	}
	if _, err := ParseSpecies("ostrich"); err == nil {
		t.Error("ParseSpecies(ostrich) succeeded")
	}
}

func TestMixHelpers(t *testing.T) {
	t.Parallel()
	m := Mix{Blue: 2, White: 0, Green: 5}

	if m.Total() != 7 {
		t.Errorf("Total = %d", m.Total())
	}
	if keys := m.Keys(); len(keys) != 3 || keys[0] != Blue || keys[2] != White {
		t.Errorf("Keys = %v", keys)
	}
	if p := m.Positive(); len(p) != 2 {
		t.Errorf("Positive = %v", p)
	}
	clone := m.Clone()
	clone[Blue] = 9
	if m[Blue] != 2 {
		t.Error("Clone shares storage")
	}
}
