package ledger

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
)

// Plan computes the debits to apply against a snapshot of loose inventory.
type Plan func(inv models.Inventory) (models.Mix, error)

// Service is the authoritative store of loose eggs. Every mutation runs
// under one mutex so read-modify-write cycles never interleave.
type Service struct {
	mu      sync.Mutex
	state   *repository.State
	catalog *models.Catalog
	logger  *zap.Logger
}

// NewService constructs the inventory ledger.
func NewService(state *repository.State, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		state:   state,
		catalog: state.Catalog(),
		logger:  logger.Named("svc.ledger"),
	}
}

// Get returns the current snapshot. A read failure degrades to an empty
// inventory so display paths stay usable.
func (s *Service) Get(ctx context.Context) models.Inventory {
	inv, err := s.state.Inventory(ctx)
	if err != nil {
		s.logger.Warn("failed to read inventory, showing empty", zap.Error(err))
		return models.Inventory{}
	}
	return inv
}

// Credit adds amount eggs to one category.
func (s *Service) Credit(ctx context.Context, id models.CategoryID, amount int) (models.Inventory, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	return s.CreditAll(ctx, models.Mix{id: amount})
}

// CreditAll adds every positive entry of mix in a single write.
func (s *Service) CreditAll(ctx context.Context, mix models.Mix) (models.Inventory, error) {
	if err := s.catalog.Validate(mix); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.state.Inventory(ctx)
	if err != nil {
		return nil, models.Persistence("inventory.read", err)
	}
	for id, qty := range mix {
		if qty > 0 {
			inv[id] += qty
		}
	}
	if err := s.state.SaveInventory(ctx, inv); err != nil {
		return nil, models.Persistence("inventory.credit", err)
	}
	s.logger.Debug("credited inventory", zap.Int("eggs", mix.Positive().Total()))
	return inv.Clone(), nil
}

// Debit removes amount eggs from one category or fails without mutation.
func (s *Service) Debit(ctx context.Context, id models.CategoryID, amount int) (models.Inventory, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	return s.DebitAll(ctx, models.Mix{id: amount})
}

// DebitAll removes every positive entry of mix. Sufficiency is checked for
// all keys before any count changes.
func (s *Service) DebitAll(ctx context.Context, mix models.Mix) (models.Inventory, error) {
	if err := s.catalog.Validate(mix); err != nil {
		return nil, err
	}
	return s.Withdraw(ctx, func(models.Inventory) (models.Mix, error) {
		return mix, nil
	})
}

// Withdraw evaluates plan against the current snapshot and commits the
// resulting debits atomically. The plan runs under the ledger lock.
func (s *Service) Withdraw(ctx context.Context, plan Plan) (models.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.state.Inventory(ctx)
	if err != nil {
		return nil, models.Persistence("inventory.read", err)
	}

	debits, err := plan(inv.Clone())
	if err != nil {
		return nil, err
	}
	if err := s.catalog.Validate(debits); err != nil {
		return nil, err
	}

	for _, id := range debits.Keys() {
		if qty := debits[id]; qty > 0 && inv[id] < qty {
			return nil, &models.InsufficientStockError{Category: id, Requested: qty, Available: inv[id]}
		}
	}
	if debits.Positive().Total() == 0 {
		return inv.Clone(), nil
	}

	for id, qty := range debits {
		if qty > 0 {
			inv[id] -= qty
		}
	}
	if err := s.state.SaveInventory(ctx, inv); err != nil {
		return nil, models.Persistence("inventory.debit", err)
	}
	s.logger.Debug("debited inventory", zap.Int("eggs", debits.Positive().Total()))
	return inv.Clone(), nil
}

// Adjust applies a signed correction: positive credits, negative debits.
func (s *Service) Adjust(ctx context.Context, id models.CategoryID, delta int) (models.Inventory, error) {
	switch {
	case delta > 0:
		return s.Credit(ctx, id, delta)
	case delta < 0:
		return s.Debit(ctx, id, -delta)
	default:
		return nil, &models.InvalidInputError{Field: "delta", Value: "0"}
	}
}

func checkAmount(amount int) error {
	if amount <= 0 {
		return &models.InvalidInputError{Field: "amount", Value: strconv.Itoa(amount)}
	}
	return nil
}
