package models

import "github.com/shopspring/decimal"

// PriceTable holds the advisory carton prices.
type PriceTable struct {
	HalfDozen decimal.Decimal `json:"halfDozen"`
	Dozen     decimal.Decimal `json:"dozen"`
}

// DefaultPriceTable matches the prices a fresh installation starts with.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		HalfDozen: decimal.NewFromInt(3),
		Dozen:     decimal.NewFromInt(6),
	}
}

// FeedSettings drives the feed cost estimate.
type FeedSettings struct {
	Enabled    bool            `json:"enabled"`
	CostPerBag decimal.Decimal `json:"costPerBag"`
	DaysPerBag int             `json:"daysPerBag"`
}

// DailyCost is costPerBag / daysPerBag, or zero when disabled.
func (f FeedSettings) DailyCost() decimal.Decimal {
	if !f.Enabled || f.DaysPerBag <= 0 {
		return decimal.Zero
	}
	return f.CostPerBag.Div(decimal.NewFromInt(int64(f.DaysPerBag)))
}

// Preferences is user state carried in backups. Theme is opaque to the core.
type Preferences struct {
	Prices      PriceTable      `json:"prices"`
	Email       string          `json:"email,omitempty"`
	Theme       string          `json:"theme,omitempty"`
	FlockCounts map[Species]int `json:"flockCounts,omitempty"`
	Feed        FeedSettings    `json:"feed"`
}

// DefaultPreferences returns preferences with the given price table.
func DefaultPreferences(prices PriceTable) Preferences {
	return Preferences{Prices: prices, FlockCounts: map[Species]int{}}
}

// Backup is the union of every persisted blob.
type Backup struct {
	Inventory   Inventory          `json:"inventory"`
	Cartons     []Carton           `json:"cartons"`
	Collections []CollectionRecord `json:"collections"`
	ModePolicy  ModePolicy         `json:"modePolicy"`
	Preferences Preferences        `json:"preferences"`
}
