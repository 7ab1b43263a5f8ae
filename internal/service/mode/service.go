package mode

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
)

// Service reads and updates the persisted mode policy.
type Service struct {
	mu     sync.Mutex
	state  *repository.State
	logger *zap.Logger
}

// NewService constructs the mode policy service.
func NewService(state *repository.State, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{state: state, logger: logger.Named("svc.mode")}
}

// Get returns the current policy, or the default when it cannot be read.
func (s *Service) Get(ctx context.Context) models.ModePolicy {
	policy, err := s.state.ModePolicy(ctx)
	if err != nil {
		s.logger.Warn("failed to read mode policy, using default", zap.Error(err))
		return models.DefaultModePolicy(s.state.Catalog())
	}
	return policy
}

// SetSpeedMode toggles aggregate tracking.
func (s *Service) SetSpeedMode(ctx context.Context, enabled bool) (models.ModePolicy, error) {
	return s.Update(ctx, models.ModeUpdateRequest{SpeedModeEnabled: &enabled})
}

// SetCategoryEnabled enables or disables one category.
func (s *Service) SetCategoryEnabled(ctx context.Context, id models.CategoryID, enabled bool) (models.ModePolicy, error) {
	return s.Update(ctx, models.ModeUpdateRequest{EnabledCategories: map[models.CategoryID]bool{id: enabled}})
}

// Update applies the non-nil fields of req on top of the stored policy.
func (s *Service) Update(ctx context.Context, req models.ModeUpdateRequest) (models.ModePolicy, error) {
	catalog := s.state.Catalog()
	for id := range req.EnabledCategories {
		if !catalog.Has(id) {
			return models.ModePolicy{}, &models.UnknownCategoryError{ID: id}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	policy, err := s.state.ModePolicy(ctx)
	if err != nil {
		return models.ModePolicy{}, models.Persistence("modePolicy.read", err)
	}
	if req.SpeedModeEnabled != nil {
		policy.SpeedModeEnabled = *req.SpeedModeEnabled
	}
	for id, enabled := range req.EnabledCategories {
		policy.EnabledCategories[id] = enabled
	}
	if err := s.state.SaveModePolicy(ctx, policy); err != nil {
		return models.ModePolicy{}, models.Persistence("modePolicy.save", err)
	}

	s.logger.Info("mode policy updated",
		zap.Bool("speedMode", policy.SpeedModeEnabled),
		zap.String("subMode", string(policy.SubMode(catalog))),
	)
	return policy, nil
}

// Replace overwrites the whole policy.
func (s *Service) Replace(ctx context.Context, policy models.ModePolicy) (models.ModePolicy, error) {
	catalog := s.state.Catalog()
	enabled := make(map[models.CategoryID]bool, len(policy.EnabledCategories))
	for id, on := range policy.EnabledCategories {
		if !catalog.Has(id) {
			return models.ModePolicy{}, &models.UnknownCategoryError{ID: id}
		}
		enabled[id] = on
	}
	policy.EnabledCategories = enabled

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.SaveModePolicy(ctx, policy); err != nil {
		return models.ModePolicy{}, models.Persistence("modePolicy.save", err)
	}
	return policy, nil
}
