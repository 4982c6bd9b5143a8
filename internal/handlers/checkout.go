package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/orders"
)

/* =========================
   REQUEST DTOs
========================= */

type checkoutItemRequest struct {
	ProductSlug string `json:"productSlug" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gte=1"`
}

type shippingInfoRequest struct {
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	SecondaryPhone string `json:"secondaryPhone"`
	Address        string `json:"address" binding:"required"`
}

type checkoutRequest struct {
	Items          []checkoutItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingInfo   shippingInfoRequest   `json:"shippingInfo" binding:"required"`
	ShippingMethod string                `json:"shippingMethod" binding:"required"`
	Notes          string                `json:"notes"`
}

/* =========================
   CHECKOUT
========================= */

// Checkout places an order for the resolved owner (user token or session
// header).
func Checkout(svc OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body", "ValidationError")
			return
		}

		owner := middleware.Owner(c)
		if owner.Empty() {
			respondError(c, http.StatusBadRequest, "no user or session found", "ValidationError")
			return
		}

		items := make([]orders.CreateItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, orders.CreateItem{
				ProductSlug: item.ProductSlug,
				Quantity:    item.Quantity,
			})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := svc.Create(ctx, orders.CreateInput{
			Owner: owner,
			Items: items,
			ShippingInfo: models.ShippingInfo{
				Name:           req.ShippingInfo.Name,
				Phone:          req.ShippingInfo.Phone,
				SecondaryPhone: req.ShippingInfo.SecondaryPhone,
				Address:        req.ShippingInfo.Address,
			},
			ShippingMethod: req.ShippingMethod,
			Notes:          req.Notes,
		})
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}

		respondCreated(c, "Order placed successfully", order)
	}
}

/* =========================
   USER ORDERS
========================= */

// UserOrders lists the resolved owner's orders, newest first.
func UserOrders(svc OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/orders"

		owner := middleware.Owner(c)
		if owner.Empty() {
			respondError(c, http.StatusBadRequest, "no user or session found", "ValidationError")
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error(), "ValidationError")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		list, total, err := svc.ListForOwner(ctx, owner, page, limit)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"orders":     list,
			"pagination": paginate(page, limit, total),
		})
	}
}
