package mode

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
	"github.com/mamadbah2/eggtracker/internal/repository/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	state := repository.NewState(store, models.DefaultCatalog(), models.DefaultPreferences(models.DefaultPriceTable()))
	return NewService(state, nil), store
}

func TestGetDefaults(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	policy := svc.Get(context.Background())
	if !policy.SpeedModeEnabled {
		t.Error("speed mode should default to on")
	}
	if got := policy.SubMode(models.DefaultCatalog()); got != models.SubModeSpeedSpecies {
		t.Errorf("SubMode = %s, want %s", got, models.SubModeSpeedSpecies)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	catalog := models.DefaultCatalog()

	for _, id := range []models.CategoryID{models.Duck, models.Quail, models.Turkey, models.Guinea} {
		if _, err := svc.SetCategoryEnabled(ctx, id, false); err != nil {
			t.Fatalf("SetCategoryEnabled(%s): %v", id, err)
		}
	}
	if got := svc.Get(ctx).SubMode(catalog); got != models.SubModeSpeedSingle {
		t.Errorf("SubMode = %s, want %s", got, models.SubModeSpeedSingle)
	}

	policy, err := svc.SetSpeedMode(ctx, false)
	if err != nil {
		t.Fatalf("SetSpeedMode: %v", err)
	}
	if policy.SubMode(catalog) != models.SubModePerColor {
		t.Errorf("SubMode = %s, want per color", policy.SubMode(catalog))
	}
	if policy.PackKeys(catalog) != nil {
		t.Error("PackKeys should be empty in per-color mode")
	}

	var unknown *models.UnknownCategoryError
	if _, err := svc.SetCategoryEnabled(ctx, "teal", true); !errors.As(err, &unknown) {
		t.Errorf("err = %v, want UnknownCategoryError", err)
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)

	want := models.ModePolicy{EnabledCategories: map[models.CategoryID]bool{models.White: true}}
	if _, err := svc.Replace(ctx, want); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got := svc.Get(ctx)
	if got.SpeedModeEnabled || !got.IsEnabled(models.White) || got.IsEnabled(models.Blue) {
		t.Errorf("policy = %+v", got)
	}
}

func TestGetFallsBackOnReadError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)

	if _, err := svc.SetSpeedMode(ctx, false); err != nil {
		t.Fatalf("SetSpeedMode: %v", err)
	}
	store.FailGet(errors.New("unavailable"))
	if !svc.Get(ctx).SpeedModeEnabled {
		t.Error("expected default policy on read failure")
	}
	if _, err := svc.SetSpeedMode(ctx, true); err == nil {
		t.Error("write after read failure should propagate")
	}
}
