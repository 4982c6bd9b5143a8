package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/orders"
)

func adminRouter(svc OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/orders", AdminListOrders(svc, zap.NewNop()))
	r.PUT("/admin/orders/:id/status", AdminUpdateOrderStatus(svc, zap.NewNop()))
	return r
}

func TestAdminUpdateStatusReturnsUpdatedOrder(t *testing.T) {
	id := primitive.NewObjectID()
	svc := &stubService{
		transitionFn: func(_ context.Context, gotID primitive.ObjectID, to models.OrderStatus, _ *primitive.ObjectID) (*models.Order, error) {
			assert.Equal(t, id, gotID)
			assert.Equal(t, models.StatusConfirmed, to)
			return &models.Order{ID: gotID, Status: models.StatusConfirmed}, nil
		},
	}

	w := doRequest(adminRouter(svc), http.MethodPut, "/admin/orders/"+id.Hex()+"/status",
		`{"status": "confirmed"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool         `json:"success"`
		Data    models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, models.StatusConfirmed, body.Data.Status)
}

func TestAdminUpdateStatusInvalidTransitionReturns409(t *testing.T) {
	id := primitive.NewObjectID()
	svc := &stubService{
		transitionFn: func(_ context.Context, _ primitive.ObjectID, _ models.OrderStatus, _ *primitive.ObjectID) (*models.Order, error) {
			return nil, orders.InvalidTransitionError{From: models.StatusDelivered, To: models.StatusPending}
		},
	}

	w := doRequest(adminRouter(svc), http.MethodPut, "/admin/orders/"+id.Hex()+"/status",
		`{"status": "pending"}`, nil)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidTransition")
}

func TestAdminUpdateStatusUnknownOrderReturns404(t *testing.T) {
	id := primitive.NewObjectID()
	svc := &stubService{
		transitionFn: func(_ context.Context, _ primitive.ObjectID, _ models.OrderStatus, _ *primitive.ObjectID) (*models.Order, error) {
			return nil, orders.ErrOrderNotFound
		},
	}

	w := doRequest(adminRouter(svc), http.MethodPut, "/admin/orders/"+id.Hex()+"/status",
		`{"status": "confirmed"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUpdateStatusBadIDReturns400(t *testing.T) {
	svc := &stubService{}
	w := doRequest(adminRouter(svc), http.MethodPut, "/admin/orders/not-an-id/status",
		`{"status": "confirmed"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminListOrdersStatusFilter(t *testing.T) {
	svc := &stubService{
		listAdminFn: func(_ context.Context, status models.OrderStatus, page, limit int64) ([]models.Order, int64, error) {
			assert.Equal(t, models.StatusShipped, status)
			assert.EqualValues(t, 1, page)
			return []models.Order{{Status: models.StatusShipped}}, 1, nil
		},
	}

	w := doRequest(adminRouter(svc), http.MethodGet, "/admin/orders?status=shipped", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Orders     []models.Order `json:"orders"`
			Pagination pagination     `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Orders, 1)
	assert.EqualValues(t, 1, body.Data.Pagination.TotalItems)
	assert.False(t, body.Data.Pagination.HasNext)
}

func TestPaginateMath(t *testing.T) {
	p := paginate(1, 10, 0)
	assert.EqualValues(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = paginate(3, 10, 21)
	assert.EqualValues(t, 3, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}
