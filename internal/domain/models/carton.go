package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MinCartonSize and MaxCartonSize bound a manually packed carton, inclusive.
	MinCartonSize = 1
	MaxCartonSize = 30
)

// Carton is a packed bundle of eggs. It becomes immutable once sold.
type Carton struct {
	ID          string          `json:"id"`
	ColorMix    Mix             `json:"colorMix"`
	Quantity    int             `json:"quantity"`
	DateCreated time.Time       `json:"dateCreated"`
	Sold        bool            `json:"sold"`
	SoldDate    time.Time       `json:"soldDate,omitzero"`
	Customer    string          `json:"customer,omitempty"`
	Price       decimal.Decimal `json:"price,omitzero"`
}

// TotalEggs is the number of eggs in the carton.
func (c Carton) TotalEggs() int {
	return c.ColorMix.Total()
}

// PackResult reports the outcome of a bulk pack.
type PackResult struct {
	BoxesCreated int              `json:"boxesCreated"`
	Remainder    int              `json:"remainder"`
	PerCategory  []CategoryPacked `json:"perCategory,omitempty"`
	Cartons      []Carton         `json:"cartons,omitempty"`
}

// CategoryPacked is the bulk pack outcome for one aggregate key.
type CategoryPacked struct {
	Category     CategoryID `json:"category"`
	BoxSize      int        `json:"boxSize"`
	BoxesCreated int        `json:"boxesCreated"`
	Remainder    int        `json:"remainder"`
}

// SalesSummary aggregates sold and unsold cartons.
type SalesSummary struct {
	SoldCartons   int             `json:"soldCartons"`
	UnsoldCartons int             `json:"unsoldCartons"`
	EggsSold      int             `json:"eggsSold"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
}
