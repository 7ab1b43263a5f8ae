package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
)

func TestEstimateEggs(t *testing.T) {
	t.Parallel()
	table := models.PriceTable{
		HalfDozen: decimal.RequireFromString("3.50"),
		Dozen:     decimal.RequireFromString("6.00"),
	}

	tests := []struct {
		eggs int
		want string
	}{
		{eggs: 6, want: "3.50"},
		{eggs: 12, want: "6.00"},
		{eggs: 18, want: "9.00"},
		{eggs: 7, want: "3.50"},
		{eggs: 5, want: "2.50"},
		{eggs: 0, want: "0"},
	}

	for _, tt := range tests {
		if got := EstimateEggs(tt.eggs, table); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("EstimateEggs(%d) = %s, want %s", tt.eggs, got, tt.want)
		}
	}
}

func TestEstimateSumsCartons(t *testing.T) {
	t.Parallel()
	table := models.DefaultPriceTable()
	cartons := []models.Carton{
		{ColorMix: models.Mix{models.White: 6}},
		{ColorMix: models.Mix{models.White: 6, models.Blue: 6}},
		{ColorMix: models.Mix{models.Generic: 30}},
	}

	got := Estimate(table, cartons...)
	if want := decimal.RequireFromString("24.00"); !got.Equal(want) {
		t.Errorf("Estimate = %s, want %s", got, want)
	}
	if !Estimate(table).IsZero() {
		t.Error("Estimate of no cartons should be zero")
	}
}
