// Package pricing suggests carton prices from the configured price table.
// Suggestions are advisory; the recorded price is whatever the seller confirms.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
)

var twelve = decimal.NewFromInt(12)

// EstimateEggs prices a carton holding eggs eggs.
func EstimateEggs(eggs int, table models.PriceTable) decimal.Decimal {
	switch eggs {
	case 6:
		return table.HalfDozen.Round(2)
	case 12:
		return table.Dozen.Round(2)
	default:
		if eggs <= 0 {
			return decimal.Zero
		}
		return table.Dozen.Div(twelve).Mul(decimal.NewFromInt(int64(eggs))).Round(2)
	}
}

// Estimate sums the per-carton estimate across cartons.
func Estimate(table models.PriceTable, cartons ...models.Carton) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cartons {
		total = total.Add(EstimateEggs(c.TotalEggs(), table))
	}
	return total
}
