package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
	"github.com/mamadbah2/eggtracker/internal/service/settings"
)

// FormatVersion is written into every backup document.
const FormatVersion = 1

// Document is the on-disk backup envelope.
type Document struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exportedAt"`
	Data       models.Backup `json:"data"`
}

// Service snapshots, restores and wipes the whole persisted state.
type Service struct {
	state    *repository.State
	defaults models.Preferences
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs the backup service. defaults fill preference fields
// missing from older backups.
func NewService(state *repository.State, defaults models.Preferences, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		state:    state,
		defaults: defaults,
		logger:   logger.Named("svc.backup"),
		now:      time.Now,
	}
}

// Snapshot reads every blob.
func (s *Service) Snapshot(ctx context.Context) (models.Backup, error) {
	b, err := s.state.Snapshot(ctx)
	if err != nil {
		return models.Backup{}, models.Persistence("backup.snapshot", err)
	}
	return b, nil
}

// ReplaceAll validates b and then overwrites every blob in one atomic write.
func (s *Service) ReplaceAll(ctx context.Context, b models.Backup) error {
	b = s.normalize(b)
	if err := s.Validate(b); err != nil {
		return err
	}
	if err := s.state.ReplaceAll(ctx, b); err != nil {
		return models.Persistence("backup.replaceAll", err)
	}
	s.logger.Info("state restored",
		zap.Int("cartons", len(b.Cartons)),
		zap.Int("collections", len(b.Collections)),
		zap.Int("looseEggs", b.Inventory.Total()),
	)
	return nil
}

// ClearAll resets every blob to its default in one atomic write.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.state.ClearAll(ctx); err != nil {
		return models.Persistence("backup.clearAll", err)
	}
	s.logger.Warn("all data cleared")
	return nil
}

// Export writes a backup document to w.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	b, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	doc := Document{Version: FormatVersion, ExportedAt: s.now().UTC(), Data: b}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Import reads a backup document from r and restores it.
func (s *Service) Import(ctx context.Context, r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, &models.InvalidInputError{Field: "backup", Value: err.Error()}
	}
	if doc.Version != FormatVersion {
		return Document{}, &models.InvalidInputError{Field: "version", Value: strconv.Itoa(doc.Version)}
	}
	if err := s.ReplaceAll(ctx, doc.Data); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Validate checks referential and value invariants of every blob.
func (s *Service) Validate(b models.Backup) error {
	catalog := s.state.Catalog()

	if err := catalog.Validate(models.Mix(b.Inventory)); err != nil {
		return fmt.Errorf("inventory: %w", err)
	}

	seen := make(map[string]bool, len(b.Cartons))
	for _, c := range b.Cartons {
		if c.ID == "" || seen[c.ID] {
			return &models.InvalidInputError{Field: "carton.id", Value: c.ID}
		}
		seen[c.ID] = true
		if err := catalog.Validate(c.ColorMix); err != nil {
			return fmt.Errorf("carton %s: %w", c.ID, err)
		}
		if c.Quantity != c.ColorMix.Total() || c.Quantity < models.MinCartonSize {
			return fmt.Errorf("carton %s: %w", c.ID, &models.InvalidCartonSizeError{Value: c.Quantity})
		}
		if c.Sold && (c.Customer == "" || !c.Price.IsPositive()) {
			return fmt.Errorf("carton %s: %w", c.ID, models.ErrInvalidState)
		}
	}

	for _, r := range b.Collections {
		if err := catalog.Validate(r.CategoryCounts); err != nil {
			return fmt.Errorf("collection %s: %w", r.ID, err)
		}
		if r.TotalEggs != r.CategoryCounts.Total() {
			return &models.InvalidInputError{Field: "collection.totalEggs", Value: strconv.Itoa(r.TotalEggs)}
		}
	}

	for id := range b.ModePolicy.EnabledCategories {
		if !catalog.Has(id) {
			return &models.UnknownCategoryError{ID: id}
		}
	}

	return settings.Validate(b.Preferences)
}

func (s *Service) normalize(b models.Backup) models.Backup {
	if b.Inventory == nil {
		b.Inventory = models.Inventory{}
	}
	if b.ModePolicy.EnabledCategories == nil {
		b.ModePolicy = models.DefaultModePolicy(s.state.Catalog())
	}
	if b.Preferences.Prices.HalfDozen.IsZero() && b.Preferences.Prices.Dozen.IsZero() {
		b.Preferences.Prices = s.defaults.Prices
	}
	if b.Preferences.FlockCounts == nil {
		b.Preferences.FlockCounts = map[models.Species]int{}
	}
	return b
}
