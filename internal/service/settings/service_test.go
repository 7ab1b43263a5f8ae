package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
	"github.com/mamadbah2/eggtracker/internal/repository/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	prices := models.PriceTable{HalfDozen: decimal.NewFromInt(4), Dozen: decimal.NewFromInt(7)}
	state := repository.NewState(memory.NewStore(), models.DefaultCatalog(), models.DefaultPreferences(prices))
	return NewService(state, nil)
}

func TestDefaultsComeFromState(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	prices := svc.Prices(context.Background())
	if !prices.Dozen.Equal(decimal.NewFromInt(7)) || !prices.HalfDozen.Equal(decimal.NewFromInt(4)) {
		t.Errorf("prices = %+v", prices)
	}
}

func TestSetters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.SetPrices(ctx, models.PriceTable{HalfDozen: decimal.RequireFromString("3.25"), Dozen: decimal.RequireFromString("6.50")}); err != nil {
		t.Fatalf("SetPrices: %v", err)
	}
	if _, err := svc.SetFlockCount(ctx, models.SpeciesDuck, 6); err != nil {
		t.Fatalf("SetFlockCount: %v", err)
	}
	prefs, err := svc.SetFeed(ctx, models.FeedSettings{Enabled: true, CostPerBag: decimal.NewFromInt(30), DaysPerBag: 15})
	if err != nil {
		t.Fatalf("SetFeed: %v", err)
	}

	if prefs.FlockCounts[models.SpeciesDuck] != 6 {
		t.Errorf("duck flock = %d", prefs.FlockCounts[models.SpeciesDuck])
	}
	if !prefs.Prices.Dozen.Equal(decimal.RequireFromString("6.5")) {
		t.Errorf("dozen = %s", prefs.Prices.Dozen)
	}
	if !prefs.Feed.DailyCost().Equal(decimal.NewFromInt(2)) {
		t.Errorf("daily feed cost = %s, want 2", prefs.Feed.DailyCost())
	}
}

func TestValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name string
		call func() error
	}{
		{name: "zero dozen price", call: func() error {
			_, err := svc.SetPrices(ctx, models.PriceTable{HalfDozen: decimal.NewFromInt(1), Dozen: decimal.Zero})
			return err
		}},
		{name: "negative flock", call: func() error {
			_, err := svc.SetFlockCount(ctx, models.SpeciesChicken, -1)
			return err
		}},
		{name: "feed without days", call: func() error {
			_, err := svc.SetFeed(ctx, models.FeedSettings{Enabled: true, CostPerBag: decimal.NewFromInt(10)})
			return err
		}},
	}

	for _, tt := range tests {
		var invalid *models.InvalidInputError
		if err := tt.call(); !errors.As(err, &invalid) {
			t.Errorf("%s: err = %v, want InvalidInputError", tt.name, err)
		}
	}

	if got := svc.Prices(ctx); !got.Dozen.Equal(decimal.NewFromInt(7)) {
		t.Errorf("rejected update changed prices: %+v", got)
	}
}
