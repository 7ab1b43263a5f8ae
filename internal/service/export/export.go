package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/service/cartons"
	"github.com/mamadbah2/eggtracker/internal/service/ledger"
)

const (
	salesRange     = "Sales!A:E"
	inventoryRange = "Inventory!A:B"
	dateLayout     = "2006-01-02"
)

var (
	salesHeader     = []string{"Date", "Customer", "Egg Colors", "Total Eggs", "Price"}
	inventoryHeader = []string{"Egg Color", "Current Stock"}
)

// ErrSinkDisabled is returned when publishing without a spreadsheet configured.
var ErrSinkDisabled = errors.New("spreadsheet export is not configured")

// SaleRow is the export projection of one sold carton.
type SaleRow struct {
	Date           time.Time
	Customer       string
	ColorBreakdown string
	TotalEggs      int
	Price          decimal.Decimal
}

// InventoryRow is the export projection of one ledger entry.
type InventoryRow struct {
	Category models.CategoryID
	Name     string
	Count    int
}

// Sink receives rows pushed to an external spreadsheet.
type Sink interface {
	AppendRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReplaceRange(ctx context.Context, sheetRange string, rows [][]interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// SalesRows projects sold cartons into export rows, keeping input order.
func SalesRows(catalog *models.Catalog, sold []models.Carton) []SaleRow {
	rows := make([]SaleRow, 0, len(sold))
	for _, c := range sold {
		if !c.Sold {
			continue
		}
		customer := c.Customer
		if customer == "" {
			customer = "Unknown"
		}
		rows = append(rows, SaleRow{
			Date:           c.SoldDate,
			Customer:       customer,
			ColorBreakdown: Breakdown(catalog, c.ColorMix),
			TotalEggs:      c.TotalEggs(),
			Price:          c.Price,
		})
	}
	return rows
}

// Breakdown renders a mix as "Name: qty; Name: qty" in catalog order.
func Breakdown(catalog *models.Catalog, mix models.Mix) string {
	var parts []string
	for _, id := range catalog.IDs() {
		if qty := mix[id]; qty > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", catalog.Name(id), qty))
		}
	}
	return strings.Join(parts, "; ")
}

// InventoryRows lists categories with stock on hand in catalog order.
func InventoryRows(catalog *models.Catalog, inv models.Inventory) []InventoryRow {
	var rows []InventoryRow
	for _, cat := range catalog.All() {
		if n := inv.Count(cat.ID); n > 0 {
			rows = append(rows, InventoryRow{Category: cat.ID, Name: cat.DisplayName, Count: n})
		}
	}
	return rows
}

func (r SaleRow) record() []string {
	return []string{
		r.Date.Format(dateLayout),
		r.Customer,
		r.ColorBreakdown,
		strconv.Itoa(r.TotalEggs),
		"$" + r.Price.StringFixed(2),
	}
}

func (r InventoryRow) record() []string {
	return []string{r.Name, strconv.Itoa(r.Count)}
}

// WriteSalesCSV renders sale rows with a header line.
func WriteSalesCSV(w io.Writer, rows []SaleRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, salesHeader)
	for _, r := range rows {
		records = append(records, r.record())
	}
	return writeAll(w, records)
}

// WriteInventoryCSV renders inventory rows with a header line.
func WriteInventoryCSV(w io.Writer, rows []InventoryRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, inventoryHeader)
	for _, r := range rows {
		records = append(records, r.record())
	}
	return writeAll(w, records)
}

func writeAll(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Service renders exports from live state and pushes them to the optional sink.
type Service struct {
	catalog *models.Catalog
	cartons *cartons.Service
	ledger  *ledger.Service
	sink    Sink
	logger  *zap.Logger
}

// NewService constructs the export service. sink may be nil.
func NewService(catalog *models.Catalog, cartonSvc *cartons.Service, ledgerSvc *ledger.Service, sink Sink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog: catalog,
		cartons: cartonSvc,
		ledger:  ledgerSvc,
		sink:    sink,
		logger:  logger.Named("svc.export"),
	}
}

// SinkEnabled reports whether a spreadsheet is configured.
func (s *Service) SinkEnabled() bool {
	return s.sink != nil
}

// SalesCSV writes every sale, most recent first.
func (s *Service) SalesCSV(ctx context.Context, w io.Writer) error {
	return WriteSalesCSV(w, SalesRows(s.catalog, s.cartons.ListSold(ctx)))
}

// InventoryCSV writes current loose stock.
func (s *Service) InventoryCSV(ctx context.Context, w io.Writer) error {
	return WriteInventoryCSV(w, InventoryRows(s.catalog, s.ledger.Get(ctx)))
}

// PublishSale appends one sold carton to the sales sheet.
func (s *Service) PublishSale(ctx context.Context, c models.Carton) error {
	if s.sink == nil {
		return ErrSinkDisabled
	}
	rows := SalesRows(s.catalog, []models.Carton{c})
	if len(rows) == 0 {
		return fmt.Errorf("carton %s: %w", c.ID, models.ErrInvalidState)
	}
	if err := s.sink.AppendRow(ctx, salesRange, toCells(rows[0].record())); err != nil {
		return fmt.Errorf("publish sale: %w", err)
	}
	return nil
}

// PublishInventory replaces the inventory sheet with current stock.
func (s *Service) PublishInventory(ctx context.Context) error {
	if s.sink == nil {
		return ErrSinkDisabled
	}
	rows := InventoryRows(s.catalog, s.ledger.Get(ctx))
	cells := make([][]interface{}, 0, len(rows)+1)
	cells = append(cells, toCells(inventoryHeader))
	for _, r := range rows {
		cells = append(cells, toCells(r.record()))
	}
	if err := s.sink.ReplaceRange(ctx, inventoryRange, cells); err != nil {
		return fmt.Errorf("publish inventory: %w", err)
	}
	s.logger.Info("inventory published", zap.Int("rows", len(rows)))
	return nil
}

// PublishedSales counts the sale rows already on the sales sheet, excluding
// a header row.
func (s *Service) PublishedSales(ctx context.Context) (int, error) {
	if s.sink == nil {
		return 0, ErrSinkDisabled
	}
	rows, err := s.sink.ReadRange(ctx, salesRange)
	if err != nil {
		return 0, fmt.Errorf("read sales sheet: %w", err)
	}
	n := len(rows)
	if n > 0 && len(rows[0]) > 0 && fmt.Sprint(rows[0][0]) == salesHeader[0] {
		n--
	}
	return n, nil
}

func toCells(record []string) []interface{} {
	cells := make([]interface{}, len(record))
	for i, v := range record {
		cells[i] = v
	}
	return cells
}
