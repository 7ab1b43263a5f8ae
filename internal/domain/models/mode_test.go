package models

import (
	"errors"
	"testing"
)

func policyWith(speed bool, enabled ...CategoryID) ModePolicy {
	p := ModePolicy{SpeedModeEnabled: speed, EnabledCategories: map[CategoryID]bool{}}
	for _, id := range enabled {
		p.EnabledCategories[id] = true
	}
	return p
}

func TestSubModeAndKeys(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	tests := []struct {
		name     string
		policy   ModePolicy
		wantMode SubMode
		wantKeys []CategoryID
	}{
		{
			name:     "per color",
			policy:   policyWith(false, White, Blue, Generic),
			wantMode: SubModePerColor,
			wantKeys: []CategoryID{White, Blue},
		},
		{
			name:     "speed single",
			policy:   policyWith(true, White, Blue),
			wantMode: SubModeSpeedSingle,
			wantKeys: []CategoryID{Generic},
		},
		{
			name:     "speed multi species",
			policy:   policyWith(true, White, Duck, Guinea),
			wantMode: SubModeSpeedSpecies,
			wantKeys: []CategoryID{GenericChicken, GenericDuck, GenericGuinea},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.policy.SubMode(c); got != tt.wantMode {
				t.Errorf("SubMode = %s, want %s", got, tt.wantMode)
			}
			keys := tt.policy.CollectionKeys(c)
			if len(keys) != len(tt.wantKeys) {
				t.Fatalf("CollectionKeys = %v, want %v", keys, tt.wantKeys)
			}
			for i := range keys {
				if keys[i] != tt.wantKeys[i] {
					t.Errorf("CollectionKeys = %v, want %v", keys, tt.wantKeys)
					break
				}
			}
		})
	}
}

func TestPackKeysEmptyInPerColor(t *testing.T) {
	t.Parallel()
	if keys := policyWith(false, White).PackKeys(DefaultCatalog()); keys != nil {
		t.Errorf("PackKeys = %v, want nil", keys)
	}
}

func TestPackKeysAppendLeftoverAggregates(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	keys := policyWith(true, White, Duck).PackKeys(c)
	want := []CategoryID{GenericChicken, GenericDuck, Generic, GenericQuail, GenericTurkey, GenericGuinea}
	if len(keys) != len(want) {
		t.Fatalf("PackKeys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("PackKeys = %v, want %v", keys, want)
		}
	}
}

func TestValidateCollection(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()
	p := policyWith(true, White)

	if err := p.ValidateCollection(c, Mix{Generic: 12}); err != nil {
		t.Errorf("generic in speed single: %v", err)
	}
	var invalid *InvalidInputError
	if err := p.ValidateCollection(c, Mix{White: 2}); !errors.As(err, &invalid) {
		t.Errorf("color in speed mode err = %v, want InvalidInputError", err)
	}
	if err := p.ValidateCollection(c, Mix{White: 0, Generic: 1}); err != nil {
		t.Errorf("zero entries should be ignored: %v", err)
	}
}

func TestDefaultModePolicy(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()
	p := DefaultModePolicy(c)
	if !p.SpeedModeEnabled {
		t.Error("default speed mode should be on")
	}
	if len(p.EnabledSpecies(c)) != 4 {
		t.Errorf("EnabledSpecies = %v", p.EnabledSpecies(c))
	}
}
