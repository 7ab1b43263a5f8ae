package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
	"github.com/mamadbah2/eggtracker/internal/service/backup"
	"github.com/mamadbah2/eggtracker/internal/service/cartons"
	"github.com/mamadbah2/eggtracker/internal/service/collection"
	"github.com/mamadbah2/eggtracker/internal/service/export"
	"github.com/mamadbah2/eggtracker/internal/service/ledger"
	"github.com/mamadbah2/eggtracker/internal/service/mode"
	"github.com/mamadbah2/eggtracker/internal/service/packing"
	"github.com/mamadbah2/eggtracker/internal/service/pricing"
	"github.com/mamadbah2/eggtracker/internal/service/reporting"
	"github.com/mamadbah2/eggtracker/internal/service/settings"
)

const (
	defaultBoxSize = 12
	clearConfirm   = "DELETE"
	dateLayout     = "2006-01-02"
)

// Services groups what the REST API exposes.
type Services struct {
	Catalog     *models.Catalog
	Ledger      *ledger.Service
	Collections *collection.Service
	Packing     *packing.Service
	Cartons     *cartons.Service
	Mode        *mode.Service
	Settings    *settings.Service
	Backup      *backup.Service
	Export      *export.Service
	Reporting   *reporting.Service
}

// APIHandler serves the JSON API used by the farm dashboard.
type APIHandler struct {
	svc    Services
	logger *zap.Logger
}

// NewAPIHandler constructs the REST handler set.
func NewAPIHandler(svc Services, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{svc: svc, logger: logger.Named("handlers.api")}
}

// Register mounts every API route under r.
func (h *APIHandler) Register(r gin.IRouter) {
	api := r.Group("/api")

	api.GET("/catalog", h.Catalog)

	api.GET("/inventory", h.Inventory)
	api.POST("/inventory/adjust", h.AdjustInventory)

	api.GET("/collections", h.ListCollections)
	api.POST("/collections", h.RecordCollection)

	api.GET("/cartons", h.ListCartons)
	api.POST("/cartons", h.PackCarton)
	api.POST("/cartons/autofill", h.AutoFill)
	api.POST("/cartons/pack-all", h.PackAll)
	api.POST("/cartons/pack-species", h.PackSpecies)
	api.POST("/cartons/estimate", h.Estimate)
	api.POST("/cartons/:id/sell", h.SellCarton)

	api.POST("/sales/bundle", h.SellBundle)
	api.GET("/sales/summary", h.SalesSummary)

	api.GET("/mode", h.GetMode)
	api.PUT("/mode", h.UpdateMode)

	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.SaveSettings)

	api.GET("/reports/weekly", h.WeeklyReport)

	api.GET("/export/sales.csv", h.ExportSales)
	api.GET("/export/inventory.csv", h.ExportInventory)

	api.GET("/backup", h.GetBackup)
	api.PUT("/backup", h.RestoreBackup)
	api.POST("/backup/clear", h.ClearAll)
}

// Catalog lists every egg category in display order.
func (h *APIHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Catalog.All())
}

// Inventory returns loose stock.
func (h *APIHandler) Inventory(c *gin.Context) {
	inv := h.svc.Ledger.Get(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"inventory": inv, "total": inv.Total()})
}

// AdjustInventory applies a manual correction to one category.
func (h *APIHandler) AdjustInventory(c *gin.Context) {
	var req models.AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if !h.svc.Catalog.Has(req.Category) {
		h.fail(c, &models.UnknownCategoryError{ID: req.Category})
		return
	}
	inv, err := h.svc.Ledger.Adjust(c.Request.Context(), req.Category, req.Delta)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": inv, "total": inv.Total()})
}

// ListCollections returns the most recent collections, oldest first.
func (h *APIHandler) ListCollections(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.badRequest(c, err)
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.svc.Collections.ListRecent(c.Request.Context(), limit))
}

// RecordCollection credits a day's gathering.
func (h *APIHandler) RecordCollection(c *gin.Context) {
	var req models.RecordCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.svc.Mode.Get(ctx).ValidateCollection(h.svc.Catalog, req.Counts); err != nil {
		h.fail(c, err)
		return
	}
	record, err := h.svc.Collections.Record(ctx, req.Counts, req.Notes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListCartons filters cartons by ?status=sold|unsold|all.
func (h *APIHandler) ListCartons(c *gin.Context) {
	ctx := c.Request.Context()
	switch c.DefaultQuery("status", "all") {
	case "all":
		c.JSON(http.StatusOK, h.svc.Cartons.List(ctx))
	case "sold":
		c.JSON(http.StatusOK, h.svc.Cartons.ListSold(ctx))
	case "unsold":
		c.JSON(http.StatusOK, h.svc.Cartons.ListUnsold(ctx))
	default:
		h.badRequest(c, errors.New("unknown status filter"))
	}
}

// PackCarton packs one carton from an explicit mix.
func (h *APIHandler) PackCarton(c *gin.Context) {
	var req models.PackCartonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	carton, err := h.svc.Packing.PackCarton(c.Request.Context(), req.ColorMix)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, carton)
}

// AutoFill proposes a mix without touching stock.
func (h *APIHandler) AutoFill(c *gin.Context) {
	var req models.AutoFillRequest
	if err := bindOptional(c, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.Target == 0 {
		req.Target = defaultBoxSize
	}
	mix, err := h.svc.Packing.AutoFill(c.Request.Context(), req.Target, req.Staged)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"colorMix": mix, "total": mix.Total()})
}

// PackAll bulk packs every aggregate key.
func (h *APIHandler) PackAll(c *gin.Context) {
	var req models.PackAllRequest
	if err := bindOptional(c, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.BoxSize == 0 {
		req.BoxSize = defaultBoxSize
	}
	result, err := h.svc.Packing.PackAll(c.Request.Context(), req.BoxSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PackSpecies bulk packs one species.
func (h *APIHandler) PackSpecies(c *gin.Context) {
	var req models.PackSpeciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	species, err := models.ParseSpecies(string(req.Species))
	if err != nil {
		h.fail(c, err)
		return
	}
	if req.PackSize == 0 {
		req.PackSize = defaultBoxSize
	}
	result, err := h.svc.Packing.PackBySpecies(c.Request.Context(), species, req.PackSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Estimate suggests a price for the listed cartons.
func (h *APIHandler) Estimate(c *gin.Context) {
	var req models.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	selected := make([]models.Carton, 0, len(req.CartonIDs))
	for _, id := range req.CartonIDs {
		carton, err := h.svc.Cartons.Get(ctx, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		selected = append(selected, carton)
	}
	c.JSON(http.StatusOK, gin.H{"estimate": pricing.Estimate(h.svc.Settings.Prices(ctx), selected...)})
}

// SellCarton records the sale of one carton.
func (h *APIHandler) SellCarton(c *gin.Context) {
	var req models.SellCartonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	sold, err := h.svc.Cartons.MarkSold(ctx, c.Param("id"), req.Customer, req.Price)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, sold)
	c.JSON(http.StatusOK, sold)
}

// SellBundle sells several cartons for one total price.
func (h *APIHandler) SellBundle(c *gin.Context) {
	var req models.BundleSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	sold, err := h.svc.Cartons.SellBundle(c.Request.Context(), req.CartonIDs, req.Customer, req.TotalPrice)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, sold...)
	c.JSON(http.StatusOK, sold)
}

// SalesSummary returns revenue and carton counts.
func (h *APIHandler) SalesSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Cartons.Summary(c.Request.Context()))
}

// GetMode returns the mode policy with its resolved sub-mode.
func (h *APIHandler) GetMode(c *gin.Context) {
	h.writeMode(c, h.svc.Mode.Get(c.Request.Context()))
}

// UpdateMode changes speed mode and category toggles.
func (h *APIHandler) UpdateMode(c *gin.Context) {
	var req models.ModeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	policy, err := h.svc.Mode.Update(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeMode(c, policy)
}

func (h *APIHandler) writeMode(c *gin.Context, policy models.ModePolicy) {
	c.JSON(http.StatusOK, gin.H{
		"policy":         policy,
		"subMode":        policy.SubMode(h.svc.Catalog),
		"collectionKeys": policy.CollectionKeys(h.svc.Catalog),
	})
}

// GetSettings returns stored preferences.
func (h *APIHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings.Get(c.Request.Context()))
}

// SaveSettings replaces preferences.
func (h *APIHandler) SaveSettings(c *gin.Context) {
	var prefs models.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		h.badRequest(c, err)
		return
	}
	saved, err := h.svc.Settings.Save(c.Request.Context(), prefs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// WeeklyReport returns the week containing ?date=YYYY-MM-DD, or this week.
func (h *APIHandler) WeeklyReport(c *gin.Context) {
	ref := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.badRequest(c, err)
			return
		}
		ref = parsed
	}
	c.JSON(http.StatusOK, h.svc.Reporting.WeeklyReport(c.Request.Context(), ref))
}

// ExportSales streams sold cartons as CSV.
func (h *APIHandler) ExportSales(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="sales.csv"`)
	c.Header("Content-Type", "text/csv")
	if err := h.svc.Export.SalesCSV(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("sales export failed", zap.Error(err))
	}
}

// ExportInventory streams loose stock as CSV.
func (h *APIHandler) ExportInventory(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="inventory.csv"`)
	c.Header("Content-Type", "text/csv")
	if err := h.svc.Export.InventoryCSV(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("inventory export failed", zap.Error(err))
	}
}

// GetBackup downloads the full state as a backup document.
func (h *APIHandler) GetBackup(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Backup.Export(c.Request.Context(), &buf); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="eggtracker-backup.json"`)
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

// RestoreBackup replaces the full state with the uploaded document.
func (h *APIHandler) RestoreBackup(c *gin.Context) {
	doc, err := h.svc.Backup.Import(c.Request.Context(), c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"restored":    true,
		"exportedAt":  doc.ExportedAt,
		"cartons":     len(doc.Data.Cartons),
		"collections": len(doc.Data.Collections),
	})
}

// ClearAll wipes every blob once the caller types the confirmation keyword.
func (h *APIHandler) ClearAll(c *gin.Context) {
	var req models.ClearAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.Confirm != clearConfirm {
		h.fail(c, &models.InvalidInputError{Field: "confirm", Value: req.Confirm})
		return
	}
	if err := h.svc.Backup.ClearAll(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindOptional binds a JSON body but accepts an empty one.
func bindOptional(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *APIHandler) publish(c *gin.Context, sold ...models.Carton) {
	if h.svc.Export == nil || !h.svc.Export.SinkEnabled() {
		return
	}
	for _, carton := range sold {
		if err := h.svc.Export.PublishSale(c.Request.Context(), carton); err != nil {
			h.logger.Warn("sale not mirrored to sheet", zap.String("carton", carton.ID), zap.Error(err))
		}
	}
}
