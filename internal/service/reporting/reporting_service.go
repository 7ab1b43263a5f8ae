package reporting

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/service/cartons"
	"github.com/mamadbah2/eggtracker/internal/service/collection"
	"github.com/mamadbah2/eggtracker/internal/service/ledger"
	"github.com/mamadbah2/eggtracker/internal/service/settings"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// Service exposes lightweight analytics for chat summaries and scheduled reports.
type Service struct {
	catalog     *models.Catalog
	collections *collection.Service
	cartons     *cartons.Service
	ledger      *ledger.Service
	settings    *settings.Service
	location    *time.Location
	logger      *zap.Logger
}

// NewService wires a new reporting service instance. Weeks are computed in loc.
func NewService(
	catalog *models.Catalog,
	collections *collection.Service,
	cartonSvc *cartons.Service,
	ledgerSvc *ledger.Service,
	settingsSvc *settings.Service,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		catalog:     catalog,
		collections: collections,
		cartons:     cartonSvc,
		ledger:      ledgerSvc,
		settings:    settingsSvc,
		location:    loc,
		logger:      logger.Named("svc.reporting"),
	}
}

// WeekBounds returns the Monday 00:00 that starts the week containing ref and
// the following Monday.
func WeekBounds(ref time.Time, loc *time.Location) (time.Time, time.Time) {
	local := ref.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 7)
}

// WeeklyReport aggregates the week containing ref.
func (s *Service) WeeklyReport(ctx context.Context, ref time.Time) models.WeeklyReport {
	start, end := WeekBounds(ref, s.location)
	return s.Report(ctx, start, end)
}

// Report aggregates collections, packing and sales with start <= t < end.
func (s *Service) Report(ctx context.Context, start, end time.Time) models.WeeklyReport {
	report := models.WeeklyReport{Start: start, End: end, Revenue: decimal.Zero}

	for _, r := range s.collections.Between(ctx, start, end) {
		report.Collections++
		report.EggsCollected += r.TotalEggs
	}

	for _, c := range s.cartons.List(ctx) {
		if within(c.DateCreated, start, end) {
			report.CartonsPacked++
		}
		if c.Sold && within(c.SoldDate, start, end) {
			report.CartonsSold++
			report.EggsSold += c.TotalEggs()
			report.Revenue = report.Revenue.Add(c.Price)
		}
	}

	report.LooseEggs = s.ledger.Get(ctx).Total()

	days := int(math.Round(end.Sub(start).Hours() / 24))
	report.Profitability = Profitability(s.settings.Get(ctx).Feed, report.EggsSold, report.Revenue, days)
	return report
}

// Profitability compares revenue with feed spend. It returns nil when feed
// tracking is disabled.
func Profitability(feed models.FeedSettings, eggsSold int, revenue decimal.Decimal, days int) *models.Profitability {
	if !feed.Enabled {
		return nil
	}
	daily := feed.DailyCost()
	feedCost := daily.Mul(decimal.NewFromInt(int64(days)))
	profit := revenue.Sub(feedCost)

	p := &models.Profitability{
		FeedCost:    feedCost.Round(2),
		Profit:      profit.Round(2),
		MarginPct:   decimal.Zero,
		CostPerEgg:  decimal.Zero,
		DailyCost:   daily.Round(2),
		DaysTracked: days,
	}
	if revenue.IsPositive() {
		p.MarginPct = profit.Div(revenue).Mul(hundred).Round(1)
	}
	if eggsSold > 0 && days > 0 {
		p.CostPerEgg = feedCost.Div(decimal.NewFromInt(int64(eggsSold))).Round(2)
	}
	return p
}

// GenerateWeeklyReport renders the report for the week containing ref.
func (s *Service) GenerateWeeklyReport(ctx context.Context, ref time.Time) (string, error) {
	report := s.WeeklyReport(ctx, ref)
	s.logger.Debug("weekly report computed",
		zap.Int("eggsCollected", report.EggsCollected),
		zap.Int("cartonsSold", report.CartonsSold),
	)
	return FormatWeeklyReport(report), nil
}

// FormatWeeklyReport renders a report as a chat message.
func FormatWeeklyReport(r models.WeeklyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly report (%s to %s)\n", r.Start.Format(dateLayout), r.End.AddDate(0, 0, -1).Format(dateLayout))
	fmt.Fprintf(&b, "Collected: %d eggs in %d collections\n", r.EggsCollected, r.Collections)
	fmt.Fprintf(&b, "Packed: %d cartons\n", r.CartonsPacked)
	fmt.Fprintf(&b, "Sold: %d cartons (%d eggs) for $%s\n", r.CartonsSold, r.EggsSold, r.Revenue.StringFixed(2))
	fmt.Fprintf(&b, "Loose eggs on hand: %d", r.LooseEggs)
	if p := r.Profitability; p != nil {
		fmt.Fprintf(&b, "\nFeed cost: $%s, profit: $%s (%s%% margin)", p.FeedCost.StringFixed(2), p.Profit.StringFixed(2), p.MarginPct.StringFixed(1))
	}
	return b.String()
}

// StockSummary lists loose eggs by category and unsold cartons.
func (s *Service) StockSummary(ctx context.Context) string {
	inv := s.ledger.Get(ctx)
	unsold := s.cartons.ListUnsold(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "Loose eggs: %d", inv.Total())
	for _, cat := range s.catalog.All() {
		if n := inv.Count(cat.ID); n > 0 {
			fmt.Fprintf(&b, "\n- %s: %d", cat.DisplayName, n)
		}
	}
	fmt.Fprintf(&b, "\nUnsold cartons: %d", len(unsold))
	return b.String()
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
