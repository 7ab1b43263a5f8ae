package cartons

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/repository"
)

// Service owns carton records and their sale lifecycle.
type Service struct {
	mu     sync.Mutex
	state  *repository.State
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs the carton store.
func NewService(state *repository.State, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		state:  state,
		logger: logger.Named("svc.cartons"),
		now:    time.Now,
	}
}

// Create persists one unsold carton per mix in a single write.
func (s *Service) Create(ctx context.Context, mixes []models.Mix) ([]models.Carton, error) {
	if len(mixes) == 0 {
		return nil, nil
	}
	created := make([]models.Carton, 0, len(mixes))
	now := s.now().UTC()
	for _, mix := range mixes {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate carton id: %w", err)
		}
		m := mix.Positive()
		created = append(created, models.Carton{
			ID:          id.String(),
			ColorMix:    m,
			Quantity:    m.Total(),
			DateCreated: now,
		})
	}

	err := s.update(ctx, "cartons.create", func(all []models.Carton) ([]models.Carton, error) {
		return append(all, created...), nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cartons created", zap.Int("count", len(created)))
	return created, nil
}

// Get returns the carton with the given id.
func (s *Service) Get(ctx context.Context, id string) (models.Carton, error) {
	all, err := s.state.Cartons(ctx)
	if err != nil {
		return models.Carton{}, models.Persistence("cartons.read", err)
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Carton{}, fmt.Errorf("carton %s: %w", id, models.ErrNotFound)
}

// FindBySuffix resolves a carton by full id or by a suffix matching exactly one carton.
func (s *Service) FindBySuffix(ctx context.Context, token string) (models.Carton, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Carton{}, &models.InvalidInputError{Field: "carton", Value: token}
	}
	all, err := s.state.Cartons(ctx)
	if err != nil {
		return models.Carton{}, models.Persistence("cartons.read", err)
	}

	var matches []models.Carton
	for _, c := range all {
		if c.ID == token {
			return c, nil
		}
		if strings.HasSuffix(c.ID, token) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return models.Carton{}, fmt.Errorf("carton %s: %w", token, models.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Carton{}, &models.InvalidInputError{Field: "carton", Value: token}
	}
}

// List returns every carton in creation order.
func (s *Service) List(ctx context.Context) []models.Carton {
	all, err := s.state.Cartons(ctx)
	if err != nil {
		s.logger.Warn("failed to read cartons, showing none", zap.Error(err))
		return nil
	}
	return all
}

// ListUnsold returns cartons still on hand in creation order.
func (s *Service) ListUnsold(ctx context.Context) []models.Carton {
	var out []models.Carton
	for _, c := range s.List(ctx) {
		if !c.Sold {
			out = append(out, c)
		}
	}
	return out
}

// ListSold returns sold cartons, most recent sale first.
func (s *Service) ListSold(ctx context.Context) []models.Carton {
	var out []models.Carton
	for _, c := range s.List(ctx) {
		if c.Sold {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SoldDate.After(out[j].SoldDate) })
	return out
}

// MarkSold records a sale. A sold carton never changes again.
func (s *Service) MarkSold(ctx context.Context, id, customer string, price decimal.Decimal) (models.Carton, error) {
	customer, err := validateSale(customer, price)
	if err != nil {
		return models.Carton{}, err
	}

	var sold models.Carton
	err = s.update(ctx, "cartons.sell", func(all []models.Carton) ([]models.Carton, error) {
		idx, err := indexOf(all, id)
		if err != nil {
			return nil, err
		}
		all[idx] = markSold(all[idx], customer, price.Round(2), s.now().UTC())
		sold = all[idx]
		return all, nil
	})
	if err != nil {
		return models.Carton{}, err
	}

	s.logger.Info("carton sold",
		zap.String("cartonID", sold.ID),
		zap.String("customer", sold.Customer),
		zap.String("price", sold.Price.StringFixed(2)),
	)
	return sold, nil
}

// SellBundle sells several cartons to one customer, splitting totalPrice
// evenly. Leftover cents go to the first cartons so the recorded prices
// add up to the total exactly.
func (s *Service) SellBundle(ctx context.Context, ids []string, customer string, totalPrice decimal.Decimal) ([]models.Carton, error) {
	customer, err := validateSale(customer, totalPrice)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &models.InvalidSaleInputError{Field: "cartonIds"}
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, &models.InvalidSaleInputError{Field: "cartonIds"}
		}
		seen[id] = true
	}

	shares, err := SplitEvenly(totalPrice, len(ids))
	if err != nil {
		return nil, err
	}

	var sold []models.Carton
	err = s.update(ctx, "cartons.sellBundle", func(all []models.Carton) ([]models.Carton, error) {
		positions := make([]int, len(ids))
		for i, id := range ids {
			idx, err := indexOf(all, id)
			if err != nil {
				return nil, err
			}
			positions[i] = idx
		}
		now := s.now().UTC()
		for i, idx := range positions {
			all[idx] = markSold(all[idx], customer, shares[i], now)
			sold = append(sold, all[idx])
		}
		return all, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bundle sold",
		zap.Int("cartons", len(sold)),
		zap.String("customer", customer),
		zap.String("total", totalPrice.StringFixed(2)),
	)
	return sold, nil
}

// SplitEvenly divides total into n two-decimal shares that sum to total.
func SplitEvenly(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, &models.InvalidSaleInputError{Field: "cartonIds"}
	}
	cents := total.Round(2).Shift(2).IntPart()
	base, extra := cents/int64(n), cents%int64(n)
	if base <= 0 {
		return nil, &models.InvalidSaleInputError{Field: "price"}
	}
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		c := base
		if int64(i) < extra {
			c++
		}
		shares[i] = decimal.New(c, -2)
	}
	return shares, nil
}

// Summary aggregates revenue over every sold carton.
func (s *Service) Summary(ctx context.Context) models.SalesSummary {
	var sum models.SalesSummary
	sum.TotalRevenue = decimal.Zero
	sum.AveragePrice = decimal.Zero
	for _, c := range s.List(ctx) {
		if !c.Sold {
			sum.UnsoldCartons++
			continue
		}
		sum.SoldCartons++
		sum.EggsSold += c.TotalEggs()
		sum.TotalRevenue = sum.TotalRevenue.Add(c.Price)
	}
	if sum.SoldCartons > 0 {
		sum.AveragePrice = sum.TotalRevenue.Div(decimal.NewFromInt(int64(sum.SoldCartons))).Round(2)
	}
	return sum
}

// update runs fn on the carton list under the store lock and persists the result.
func (s *Service) update(ctx context.Context, op string, fn func([]models.Carton) ([]models.Carton, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.state.Cartons(ctx)
	if err != nil {
		return models.Persistence("cartons.read", err)
	}
	next, err := fn(all)
	if err != nil {
		return err
	}
	if err := s.state.SaveCartons(ctx, next); err != nil {
		return models.Persistence(op, err)
	}
	return nil
}

func validateSale(customer string, price decimal.Decimal) (string, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return "", &models.InvalidSaleInputError{Field: "customer"}
	}
	if !price.Round(2).IsPositive() {
		return "", &models.InvalidSaleInputError{Field: "price"}
	}
	return customer, nil
}

func indexOf(all []models.Carton, id string) (int, error) {
	for i, c := range all {
		if c.ID != id {
			continue
		}
		if c.Sold {
			return -1, fmt.Errorf("carton %s already sold: %w", id, models.ErrInvalidState)
		}
		return i, nil
	}
	return -1, fmt.Errorf("carton %s: %w", id, models.ErrNotFound)
}

func markSold(c models.Carton, customer string, price decimal.Decimal, at time.Time) models.Carton {
	c.Sold = true
	c.SoldDate = at
	c.Customer = customer
	c.Price = price
	return c
}
