package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/inventory"
	"storefront/internal/orders"
)

/* =========================
   RESPONSE ENVELOPE
========================= */

// Every response follows {success, data | message, error?}.

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

func respondError(c *gin.Context, status int, message, code string) {
	body := gin.H{"success": false, "message": message}
	if code != "" {
		body["error"] = code
	}
	c.AbortWithStatusJSON(status, body)
}

// pagination is the standard paginated-list footer.
type pagination struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

func paginate(page, limit, total int64) pagination {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

/* =========================
   SERVICE ERROR MAPPING
========================= */

// respondServiceError translates order-core errors to client responses.
func respondServiceError(c *gin.Context, log *zap.Logger, route string, err error) {
	var (
		validation orders.ValidationError
		notFound   orders.ProductNotFoundError
		outOfStock inventory.OutOfStockError
		transition orders.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, validation.Error(), "ValidationError")
	case errors.As(err, &notFound):
		respondError(c, http.StatusNotFound, notFound.Error(), "ProductNotFound")
	case errors.As(err, &outOfStock):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": outOfStock.Error(),
			"error":   "InsufficientStock",
			"data": gin.H{
				"sku":       outOfStock.SKU,
				"available": outOfStock.Available,
				"requested": outOfStock.Requested,
			},
		})
	case errors.As(err, &transition):
		respondError(c, http.StatusConflict, transition.Error(), "InvalidTransition")
	case errors.Is(err, orders.ErrAlreadyCancelled):
		respondError(c, http.StatusConflict, "order already cancelled", "AlreadyCancelled")
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "Order not found", "OrderNotFound")
	case errors.Is(err, orders.ErrConflict):
		respondError(c, http.StatusConflict, "order was modified concurrently, retry", "Conflict")
	default:
		log.Error("request failed", zap.String("route", route), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error", "")
	}
}
