package settings

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
)

// Service manages user preferences: price table, contact email, theme,
// flock sizes and feed tracking.
type Service struct {
	mu     sync.Mutex
	state  *repository.State
	logger *zap.Logger
}

// NewService constructs the preferences service.
func NewService(state *repository.State, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{state: state, logger: logger.Named("svc.settings")}
}

// Get returns stored preferences, or the defaults when they cannot be read.
func (s *Service) Get(ctx context.Context) models.Preferences {
	prefs, err := s.state.Preferences(ctx)
	if err != nil {
		s.logger.Warn("failed to read preferences, using defaults", zap.Error(err))
		return models.DefaultPreferences(models.DefaultPriceTable())
	}
	return prefs
}

// Prices returns the active price table.
func (s *Service) Prices(ctx context.Context) models.PriceTable {
	return s.Get(ctx).Prices
}

// Save validates and stores prefs as a whole.
func (s *Service) Save(ctx context.Context, prefs models.Preferences) (models.Preferences, error) {
	if err := Validate(prefs); err != nil {
		return models.Preferences{}, err
	}
	prefs.Email = strings.TrimSpace(prefs.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.SavePreferences(ctx, prefs); err != nil {
		return models.Preferences{}, models.Persistence("preferences.save", err)
	}
	s.logger.Info("preferences saved")
	return prefs, nil
}

// SetPrices replaces the price table.
func (s *Service) SetPrices(ctx context.Context, table models.PriceTable) (models.Preferences, error) {
	return s.update(ctx, func(p *models.Preferences) { p.Prices = table })
}

// SetFlockCount records how many birds of a species the farm keeps.
func (s *Service) SetFlockCount(ctx context.Context, species models.Species, count int) (models.Preferences, error) {
	if count < 0 {
		return models.Preferences{}, &models.InvalidInputError{Field: "flockCount", Value: strconv.Itoa(count)}
	}
	return s.update(ctx, func(p *models.Preferences) {
		if p.FlockCounts == nil {
			p.FlockCounts = map[models.Species]int{}
		}
		p.FlockCounts[species] = count
	})
}

// SetFeed replaces feed tracking settings.
func (s *Service) SetFeed(ctx context.Context, feed models.FeedSettings) (models.Preferences, error) {
	return s.update(ctx, func(p *models.Preferences) { p.Feed = feed })
}

func (s *Service) update(ctx context.Context, fn func(*models.Preferences)) (models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.state.Preferences(ctx)
	if err != nil {
		return models.Preferences{}, models.Persistence("preferences.read", err)
	}
	fn(&prefs)
	if err := Validate(prefs); err != nil {
		return models.Preferences{}, err
	}
	if err := s.state.SavePreferences(ctx, prefs); err != nil {
		return models.Preferences{}, models.Persistence("preferences.save", err)
	}
	return prefs, nil
}

// Validate checks prices are positive and feed settings are usable.
func Validate(p models.Preferences) error {
	if !p.Prices.HalfDozen.IsPositive() {
		return &models.InvalidInputError{Field: "prices.halfDozen", Value: p.Prices.HalfDozen.String()}
	}
	if !p.Prices.Dozen.IsPositive() {
		return &models.InvalidInputError{Field: "prices.dozen", Value: p.Prices.Dozen.String()}
	}
	for species, n := range p.FlockCounts {
		if _, err := models.ParseSpecies(string(species)); err != nil {
			return err
		}
		if n < 0 {
			return &models.InvalidInputError{Field: "flockCount", Value: strconv.Itoa(n)}
		}
	}
	if p.Feed.Enabled {
		if p.Feed.DaysPerBag <= 0 {
			return &models.InvalidInputError{Field: "feed.daysPerBag", Value: strconv.Itoa(p.Feed.DaysPerBag)}
		}
		if p.Feed.CostPerBag.LessThan(decimal.Zero) {
			return &models.InvalidInputError{Field: "feed.costPerBag", Value: p.Feed.CostPerBag.String()}
		}
	}
	return nil
}
