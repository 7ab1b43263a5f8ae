package models

import "github.com/shopspring/decimal"

// OutboundMessageRequest represents requests to send a chat message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// RecordCollectionRequest is the body of POST /api/collections.
type RecordCollectionRequest struct {
	Counts Mix    `json:"counts" binding:"required"`
	Notes  string `json:"notes"`
}

// AdjustInventoryRequest is the body of POST /api/inventory/adjust.
type AdjustInventoryRequest struct {
	Category CategoryID `json:"category" binding:"required"`
	Delta    int        `json:"delta"`
}

// PackCartonRequest is the body of POST /api/cartons.
type PackCartonRequest struct {
	ColorMix Mix `json:"colorMix" binding:"required"`
}

// AutoFillRequest is the body of POST /api/cartons/autofill.
type AutoFillRequest struct {
	Target int `json:"target"`
	Staged Mix `json:"staged"`
}

// PackAllRequest is the body of POST /api/cartons/pack-all.
type PackAllRequest struct {
	BoxSize int `json:"boxSize"`
}

// PackSpeciesRequest is the body of POST /api/cartons/pack-species.
type PackSpeciesRequest struct {
	Species  Species `json:"species" binding:"required"`
	PackSize int     `json:"packSize"`
}

// SellCartonRequest is the body of POST /api/cartons/:id/sell.
type SellCartonRequest struct {
	Customer string          `json:"customer"`
	Price    decimal.Decimal `json:"price"`
}

// BundleSaleRequest is the body of POST /api/sales/bundle.
type BundleSaleRequest struct {
	CartonIDs  []string        `json:"cartonIds" binding:"required"`
	Customer   string          `json:"customer"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// EstimateRequest is the body of POST /api/cartons/estimate.
type EstimateRequest struct {
	CartonIDs []string `json:"cartonIds" binding:"required"`
}

// ModeUpdateRequest is the body of PUT /api/mode. Nil fields are left unchanged.
type ModeUpdateRequest struct {
	SpeedModeEnabled  *bool               `json:"speedModeEnabled"`
	EnabledCategories map[CategoryID]bool `json:"enabledCategories"`
}

// ClearAllRequest guards the full wipe behind a typed keyword.
type ClearAllRequest struct {
	Confirm string `json:"confirm" binding:"required"`
}
