package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) (int, string) {
	var (
		stock    *models.InsufficientStockError
		size     *models.InvalidCartonSizeError
		sale     *models.InvalidSaleInputError
		category *models.UnknownCategoryError
		input    *models.InvalidInputError
		persist  *models.PersistenceError
	)

	switch {
	case errors.As(err, &persist):
		return http.StatusInternalServerError, "persistence"
	case errors.As(err, &stock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, models.ErrSpeedModeRequired):
		return http.StatusConflict, "speed_mode_required"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &size):
		return http.StatusUnprocessableEntity, "invalid_carton_size"
	case errors.As(err, &sale):
		return http.StatusUnprocessableEntity, "invalid_sale_input"
	case errors.As(err, &category):
		return http.StatusUnprocessableEntity, "unknown_category"
	case errors.Is(err, models.ErrEmptyCollection):
		return http.StatusUnprocessableEntity, "empty_collection"
	case errors.As(err, &input):
		return http.StatusUnprocessableEntity, "invalid_input"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *APIHandler) fail(c *gin.Context, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.String("kind", kind), zap.Error(err))
	}
	c.JSON(status, errorBody{Error: err.Error(), Kind: kind})
}

func (h *APIHandler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Kind: "bad_request"})
}
