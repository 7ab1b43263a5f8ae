package collection

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
	"github.com/mamadbah2/eggtracker/internal/service/ledger"
)

// Service records collection events and credits the ledger.
type Service struct {
	mu     sync.Mutex
	state  *repository.State
	ledger *ledger.Service
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs the collection recorder.
func NewService(state *repository.State, ledgerSvc *ledger.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		state:  state,
		ledger: ledgerSvc,
		logger: logger.Named("svc.collection"),
		now:    time.Now,
	}
}

// Record credits every positive count and appends an immutable record.
// The caller decides which categories apply under the current mode.
func (s *Service) Record(ctx context.Context, counts models.Mix, notes string) (models.CollectionRecord, error) {
	if err := s.state.Catalog().Validate(counts); err != nil {
		return models.CollectionRecord{}, err
	}
	positive := counts.Positive()
	if positive.Total() == 0 {
		return models.CollectionRecord{}, models.ErrEmptyCollection
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.CollectionRecord{}, fmt.Errorf("generate collection id: %w", err)
	}
	record := models.CollectionRecord{
		ID:             id.String(),
		Timestamp:      s.now().UTC(),
		CategoryCounts: positive,
		TotalEggs:      positive.Total(),
		Notes:          strings.TrimSpace(notes),
	}

	if _, err := s.ledger.CreditAll(ctx, positive); err != nil {
		return models.CollectionRecord{}, err
	}

	if err := s.append(ctx, record); err != nil {
		// Undo the credit so inventory never counts eggs with no record.
		if _, undoErr := s.ledger.DebitAll(ctx, positive); undoErr != nil {
			s.logger.Error("failed to revert inventory after collection write failure",
				zap.String("collectionID", record.ID), zap.Error(undoErr))
		}
		return models.CollectionRecord{}, err
	}

	s.logger.Info("collection recorded",
		zap.String("collectionID", record.ID),
		zap.Int("totalEggs", record.TotalEggs),
	)
	return record, nil
}

func (s *Service) append(ctx context.Context, record models.CollectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.state.Collections(ctx)
	if err != nil {
		return models.Persistence("collections.read", err)
	}
	records = append(records, record)
	if err := s.state.SaveCollections(ctx, records); err != nil {
		return models.Persistence("collections.append", err)
	}
	return nil
}

// List returns every record in insertion order.
func (s *Service) List(ctx context.Context) []models.CollectionRecord {
	records, err := s.state.Collections(ctx)
	if err != nil {
		s.logger.Warn("failed to read collections, showing none", zap.Error(err))
		return nil
	}
	return records
}

// ListRecent returns the most recent limit records, oldest first.
// A non-positive limit returns every record.
func (s *Service) ListRecent(ctx context.Context, limit int) []models.CollectionRecord {
	records := s.List(ctx)
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records
}

// Between returns records with start <= timestamp < end.
func (s *Service) Between(ctx context.Context, start, end time.Time) []models.CollectionRecord {
	var out []models.CollectionRecord
	for _, r := range s.List(ctx) {
		if !r.Timestamp.Before(start) && r.Timestamp.Before(end) {
			out = append(out, r)
		}
	}
	return out
}
