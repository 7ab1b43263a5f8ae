package models

import "time"

// CollectionRecord is one immutable collection event.
type CollectionRecord struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	CategoryCounts Mix       `json:"categoryCounts"`
	TotalEggs      int       `json:"totalEggs"`
	Notes          string    `json:"notes"`
}
