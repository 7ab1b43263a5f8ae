package packing

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/service/cartons"
	"github.com/mamadbah2/eggtracker/internal/service/ledger"
	"github.com/mamadbah2/eggtracker/internal/service/mode"
)

// Service turns loose inventory into cartons.
type Service struct {
	ledger  *ledger.Service
	cartons *cartons.Service
	mode    *mode.Service
	catalog *models.Catalog
	logger  *zap.Logger
}

// NewService constructs the packing engine.
func NewService(
	catalog *models.Catalog,
	ledgerSvc *ledger.Service,
	cartonSvc *cartons.Service,
	modeSvc *mode.Service,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:  ledgerSvc,
		cartons: cartonSvc,
		mode:    modeSvc,
		catalog: catalog,
		logger:  logger.Named("svc.packing"),
	}
}

// PackCarton debits colorMix from the ledger and stores it as one unsold carton.
// The debit is all-or-nothing across categories.
func (s *Service) PackCarton(ctx context.Context, colorMix models.Mix) (models.Carton, error) {
	if err := s.catalog.Validate(colorMix); err != nil {
		return models.Carton{}, err
	}
	mix := colorMix.Positive()
	total := mix.Total()
	if total < models.MinCartonSize || total > models.MaxCartonSize {
		return models.Carton{}, &models.InvalidCartonSizeError{Value: total}
	}

	if _, err := s.ledger.DebitAll(ctx, mix); err != nil {
		return models.Carton{}, err
	}

	created, err := s.cartons.Create(ctx, []models.Mix{mix})
	if err != nil {
		s.restock(ctx, mix)
		return models.Carton{}, err
	}

	s.logger.Info("carton packed", zap.String("cartonID", created[0].ID), zap.Int("eggs", total))
	return created[0], nil
}

// AutoFill proposes a mix that tops staged up to target using loose stock.
// It adds one egg at a time, cycling through categories in catalog order,
// and never mutates the ledger.
func (s *Service) AutoFill(ctx context.Context, target int, staged models.Mix) (models.Mix, error) {
	if target < models.MinCartonSize || target > models.MaxCartonSize {
		return nil, &models.InvalidCartonSizeError{Value: target}
	}
	if err := s.catalog.Validate(staged); err != nil {
		return nil, err
	}
	return autoFill(s.catalog, s.ledger.Get(ctx), target, staged), nil
}

func autoFill(catalog *models.Catalog, inv models.Inventory, target int, staged models.Mix) models.Mix {
	proposal := staged.Positive()
	current := proposal.Total()

	var available []models.CategoryID
	for _, id := range catalog.IDs() {
		if inv.Count(id) > 0 {
			available = append(available, id)
		}
	}

	for current < target {
		added := false
		for _, id := range available {
			if current >= target {
				break
			}
			if inv.Count(id) > proposal[id] {
				proposal[id]++
				current++
				added = true
			}
		}
		if !added {
			break
		}
	}
	return proposal
}

// PackAll packs every aggregate key of the active speed mode into cartons of
// boxSize eggs. Keys are packed independently; a key with fewer than boxSize
// eggs simply keeps them as remainder. Keys with no stock are left out of the
// per-category breakdown.
func (s *Service) PackAll(ctx context.Context, boxSize int) (models.PackResult, error) {
	if boxSize <= 0 {
		return models.PackResult{}, &models.InvalidCartonSizeError{Value: boxSize}
	}
	keys := s.mode.Get(ctx).PackKeys(s.catalog)
	if len(keys) == 0 {
		return models.PackResult{}, models.ErrSpeedModeRequired
	}
	return s.pack(ctx, keys, boxSize, false)
}

// PackBySpecies packs one species' aggregate key into cartons of packSize.
// It fails when not even one carton can be made.
func (s *Service) PackBySpecies(ctx context.Context, species models.Species, packSize int) (models.PackResult, error) {
	if packSize <= 0 {
		return models.PackResult{}, &models.InvalidCartonSizeError{Value: packSize}
	}
	key, err := s.catalog.GenericFor(species)
	if err != nil {
		return models.PackResult{}, &models.InvalidInputError{Field: "species", Value: string(species)}
	}
	return s.pack(ctx, []models.CategoryID{key}, packSize, true)
}

func (s *Service) pack(ctx context.Context, keys []models.CategoryID, boxSize int, requireOne bool) (models.PackResult, error) {
	var result models.PackResult

	_, err := s.ledger.Withdraw(ctx, func(inv models.Inventory) (models.Mix, error) {
		result = models.PackResult{}
		debits := models.Mix{}
		for _, key := range keys {
			available := inv.Count(key)
			if requireOne && available < boxSize {
				return nil, &models.InsufficientStockError{Category: key, Requested: boxSize, Available: available}
			}
			if available == 0 {
				continue
			}
			boxes := available / boxSize
			remainder := available % boxSize
			if boxes > 0 {
				debits[key] = boxes * boxSize
			}
			result.BoxesCreated += boxes
			result.Remainder += remainder
			result.PerCategory = append(result.PerCategory, models.CategoryPacked{
				Category:     key,
				BoxSize:      boxSize,
				BoxesCreated: boxes,
				Remainder:    remainder,
			})
		}
		return debits, nil
	})
	if err != nil {
		return models.PackResult{}, err
	}
	if result.BoxesCreated == 0 {
		return result, nil
	}

	mixes := make([]models.Mix, 0, result.BoxesCreated)
	debited := models.Mix{}
	for _, pc := range result.PerCategory {
		for i := 0; i < pc.BoxesCreated; i++ {
			mixes = append(mixes, models.Mix{pc.Category: pc.BoxSize})
		}
		if pc.BoxesCreated > 0 {
			debited[pc.Category] = pc.BoxesCreated * pc.BoxSize
		}
	}

	created, err := s.cartons.Create(ctx, mixes)
	if err != nil {
		s.restock(ctx, debited)
		return models.PackResult{}, err
	}
	result.Cartons = created

	s.logger.Info("bulk pack completed",
		zap.Int("boxes", result.BoxesCreated),
		zap.Int("remainder", result.Remainder),
		zap.Int("boxSize", boxSize),
	)
	return result, nil
}

// restock credits back eggs whose carton could not be stored.
func (s *Service) restock(ctx context.Context, mix models.Mix) {
	if _, err := s.ledger.CreditAll(ctx, mix); err != nil {
		s.logger.Error("failed to restock eggs after carton write failure",
			zap.Int("eggs", mix.Total()), zap.Error(err))
	}
}
