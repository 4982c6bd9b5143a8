package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/orders"
)

/* =========================
   REQUEST DTOs
========================= */

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type editOrderRequest struct {
	Items          *[]checkoutItemRequest `json:"items"`
	ShippingInfo   *shippingInfoRequest   `json:"shippingInfo"`
	ShippingMethod *string                `json:"shippingMethod"`
	ShippingCost   *float64               `json:"shippingCost"`
	Discount       *float64               `json:"discount"`
	Notes          *string                `json:"notes"`
	CourierName    *string                `json:"courierName"`
	TrackingNumber *string                `json:"trackingNumber"`
	CourierNotes   *string                `json:"courierNotes"`
}

type addLogRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes" binding:"required"`
}

/* =========================
   ADMIN ORDER ROUTES
========================= */

// AdminListOrders pages through all orders with an optional status filter.
func AdminListOrders(svc OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/orders"

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error(), "ValidationError")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		list, total, err := svc.ListAdmin(ctx, models.OrderStatus(c.Query("status")), page, limit)
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

// AdminGetOrder returns one order with its full history.
func AdminGetOrder(svc OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/orders/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid id", "ValidationError")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := svc.Get(ctx, id)
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		respondData(c, http.StatusOK, order)
	}
}

// AdminUpdateOrderStatus moves an order through the state machine. A
// transition to cancelled also restores the order's reserved stock.
func AdminUpdateOrderStatus(svc OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/orders/:id/status"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid id", "ValidationError")
			return
		}

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body", "ValidationError")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := svc.Transition(ctx, id, models.OrderStatus(req.Status), middleware.ActorID(c))
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		respondData(c, http.StatusOK, order)
	}
}

// AdminEditOrder applies a partial edit and recalculates totals where needed.
func AdminEditOrder(svc OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/orders/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid id", "ValidationError")
			return
		}

		var req editOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body", "ValidationError")
			return
		}

		in := orders.EditInput{
			ShippingMethod: req.ShippingMethod,
			ShippingCost:   req.ShippingCost,
			Discount:       req.Discount,
			Notes:          req.Notes,
			CourierName:    req.CourierName,
			TrackingNumber: req.TrackingNumber,
			CourierNotes:   req.CourierNotes,
		}
		if req.Items != nil {
			items := make([]orders.CreateItem, 0, len(*req.Items))
			for _, item := range *req.Items {
				items = append(items, orders.CreateItem{
					ProductSlug: item.ProductSlug,
					Quantity:    item.Quantity,
				})
			}
			in.Items = &items
		}
		if req.ShippingInfo != nil {
			in.ShippingInfo = &models.ShippingInfo{
				Name:           req.ShippingInfo.Name,
				Phone:          req.ShippingInfo.Phone,
				SecondaryPhone: req.ShippingInfo.SecondaryPhone,
				Address:        req.ShippingInfo.Address,
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := svc.Edit(ctx, id, in, middleware.ActorID(c))
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		respondData(c, http.StatusOK, order)
	}
}

// AdminAddOrderLog appends a manual history entry.
func AdminAddOrderLog(svc OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/orders/:id/log"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid id", "ValidationError")
			return
		}

		var req addLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body", "ValidationError")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := svc.AppendLog(ctx, id, req.Action, req.Notes, middleware.ActorID(c))
		if err != nil {
			respondServiceError(c, log, route, err)
			return
		}
		respondData(c, http.StatusOK, order)
	}
}
