package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profitability compares revenue against feed cost for a period.
type Profitability struct {
	FeedCost    decimal.Decimal `json:"feedCost"`
	Profit      decimal.Decimal `json:"profit"`
	MarginPct   decimal.Decimal `json:"marginPct"`
	CostPerEgg  decimal.Decimal `json:"costPerEgg"`
	DailyCost   decimal.Decimal `json:"dailyCost"`
	DaysTracked int             `json:"daysTracked"`
}

// WeeklyReport aggregates one reporting period.
type WeeklyReport struct {
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"`
	EggsCollected int             `json:"eggsCollected"`
	Collections   int             `json:"collections"`
	CartonsPacked int             `json:"cartonsPacked"`
	CartonsSold   int             `json:"cartonsSold"`
	EggsSold      int             `json:"eggsSold"`
	Revenue       decimal.Decimal `json:"revenue"`
	LooseEggs     int             `json:"looseEggs"`
	Profitability *Profitability  `json:"profitability,omitempty"`
}
