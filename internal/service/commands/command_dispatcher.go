package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/service/cartons"
	"github.com/mamadbah2/eggtracker/internal/service/collection"
	"github.com/mamadbah2/eggtracker/internal/service/mode"
	"github.com/mamadbah2/eggtracker/internal/service/packing"
	"github.com/mamadbah2/eggtracker/internal/service/pricing"
	"github.com/mamadbah2/eggtracker/internal/service/settings"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	defaultBoxSize = 12
	walkInCustomer = "Walk-in"
)

// HelpMessage lists the supported commands.
const HelpMessage = "Commands:\n" +
	"/collect <qty> [species|color] ... [notes]\n" +
	"/pack [size] or /pack <species> [size] or /pack <qty> <color> ...\n" +
	"/sell <carton> [customer] [price]\n" +
	"/stock\n" +
	"/report"

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	GenerateWeeklyReport(ctx context.Context, ref time.Time) (string, error)
	StockSummary(ctx context.Context) string
}

// SalePublisher mirrors sold cartons to an external sheet.
type SalePublisher interface {
	SinkEnabled() bool
	PublishSale(ctx context.Context, c models.Carton) error
}

// Dispatcher executes parsed commands against the egg services.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Services groups the collaborators a dispatcher drives.
type Services struct {
	Catalog     *models.Catalog
	Collections *collection.Service
	Packing     *packing.Service
	Cartons     *cartons.Service
	Mode        *mode.Service
	Settings    *settings.Service
	Reporting   ReportingAdapter
	Publisher   SalePublisher
}

// Service implements the Dispatcher interface.
type Service struct {
	svc    Services
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(svc Services, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		svc:    svc,
		logger: logger.Named("svc.commands"),
		now:    time.Now,
	}
}

// HandleCommand runs cmd and returns the reply for the sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandCollect:
		return s.collect(ctx, cmd.Args)
	case models.CommandPack:
		return s.pack(ctx, cmd.Args)
	case models.CommandSell:
		return s.sell(ctx, cmd.Args)
	case models.CommandStock:
		if s.svc.Reporting == nil {
			return "", ErrUnsupportedCommand
		}
		return s.svc.Reporting.StockSummary(ctx), nil
	case models.CommandReport:
		if s.svc.Reporting == nil {
			return "", ErrUnsupportedCommand
		}
		return s.svc.Reporting.GenerateWeeklyReport(ctx, s.now())
	case models.CommandHelp:
		return HelpMessage, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) collect(ctx context.Context, args []string) (string, error) {
	policy := s.svc.Mode.Get(ctx)
	sub := policy.SubMode(s.svc.Catalog)

	counts, rest, err := s.parseCounts(args, func(next string) (models.CategoryID, bool, error) {
		switch sub {
		case models.SubModeSpeedSingle:
			return models.Generic, false, nil
		case models.SubModeSpeedSpecies:
			species, err := models.ParseSpecies(next)
			if err != nil || species == models.SpeciesChicken {
				return models.GenericChicken, species == models.SpeciesChicken, nil
			}
			id, err := s.svc.Catalog.GenericFor(species)
			return id, true, err
		default:
			id, err := s.svc.Catalog.ParseCategory(next)
			if err != nil {
				return "", false, ErrInvalidArguments
			}
			return id, true, nil
		}
	})
	if err != nil {
		return "", err
	}
	if err := policy.ValidateCollection(s.svc.Catalog, counts); err != nil {
		return "", err
	}

	record, err := s.svc.Collections.Record(ctx, counts, strings.Join(rest, " "))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Collection saved: %d eggs (%s).", record.TotalEggs, s.describe(record.CategoryCounts)), nil
}

func (s *Service) pack(ctx context.Context, args []string) (string, error) {
	if len(args) > 0 {
		if species, err := models.ParseSpecies(args[0]); err == nil {
			size, err := boxSize(args[1:])
			if err != nil {
				return "", err
			}
			result, err := s.svc.Packing.PackBySpecies(ctx, species, size)
			if err != nil {
				return "", err
			}
			return formatPackResult(result), nil
		}
	}

	if s.svc.Mode.Get(ctx).SpeedModeEnabled {
		size, err := boxSize(args)
		if err != nil {
			return "", err
		}
		result, err := s.svc.Packing.PackAll(ctx, size)
		if err != nil {
			return "", err
		}
		return formatPackResult(result), nil
	}

	mix, _, err := s.parseCounts(args, func(next string) (models.CategoryID, bool, error) {
		id, err := s.svc.Catalog.ParseCategory(next)
		if err != nil {
			return "", false, ErrInvalidArguments
		}
		return id, true, nil
	})
	if err != nil {
		return "", err
	}
	carton, err := s.svc.Packing.PackCarton(ctx, mix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Carton %s packed: %d eggs (%s).", shortID(carton.ID), carton.Quantity, s.describe(carton.ColorMix)), nil
}

func (s *Service) sell(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrInvalidArguments
	}

	carton, err := s.svc.Cartons.FindBySuffix(ctx, args[0])
	if err != nil {
		return "", err
	}

	rest := args[1:]
	price := pricing.Estimate(s.svc.Settings.Prices(ctx), carton)
	if n := len(rest); n > 0 {
		if v, err := decimal.NewFromString(strings.TrimPrefix(rest[n-1], "$")); err == nil {
			if !v.IsPositive() {
				return "", &models.InvalidSaleInputError{Field: "price"}
			}
			price = v
			rest = rest[:n-1]
		}
	}

	customer := strings.Join(rest, " ")
	if customer == "" {
		customer = walkInCustomer
	}

	sold, err := s.svc.Cartons.MarkSold(ctx, carton.ID, customer, price)
	if err != nil {
		return "", err
	}

	if s.svc.Publisher != nil && s.svc.Publisher.SinkEnabled() {
		if err := s.svc.Publisher.PublishSale(ctx, sold); err != nil {
			s.logger.Warn("sale not mirrored to sheet", zap.String("carton", sold.ID), zap.Error(err))
		}
	}

	return fmt.Sprintf("Carton %s sold to %s for $%s.", shortID(sold.ID), sold.Customer, sold.Price.StringFixed(2)), nil
}

// parseCounts reads "<qty> [key]" groups until the first token that is not a
// quantity. resolve maps the token after a quantity to a category and reports
// whether that token was consumed. Tokens left over are returned as notes.
func (s *Service) parseCounts(args []string, resolve func(next string) (models.CategoryID, bool, error)) (models.Mix, []string, error) {
	mix := make(models.Mix)
	i := 0
	for i < len(args) {
		qty, err := models.ParseQuantity(args[i])
		if err != nil {
			break
		}
		next := ""
		if i+1 < len(args) {
			next = args[i+1]
		}
		id, consumed, err := resolve(next)
		if err != nil {
			return nil, nil, err
		}
		mix[id] += qty
		i++
		if consumed {
			i++
		}
	}
	if len(mix) == 0 {
		return nil, nil, ErrInvalidArguments
	}
	return mix, args[i:], nil
}

func (s *Service) describe(mix models.Mix) string {
	var parts []string
	for _, cat := range s.svc.Catalog.All() {
		if n := mix[cat.ID]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", cat.DisplayName, n))
		}
	}
	return strings.Join(parts, ", ")
}

func boxSize(args []string) (int, error) {
	if len(args) == 0 {
		return defaultBoxSize, nil
	}
	n, err := models.ParseQuantity(args[0])
	if err != nil {
		return 0, ErrInvalidArguments
	}
	return n, nil
}

func formatPackResult(r models.PackResult) string {
	if r.BoxesCreated == 0 {
		return fmt.Sprintf("Not enough eggs for a full box. %d eggs stay loose.", r.Remainder)
	}
	return fmt.Sprintf("Packed %d boxes. %d eggs stay loose.", r.BoxesCreated, r.Remainder)
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
