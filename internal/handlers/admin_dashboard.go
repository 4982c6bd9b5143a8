package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storefront/internal/models"
)

// AdminDashboard aggregates order counts by status, revenue, and the most
// recent orders.
func AdminDashboard(db *mongo.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/dashboard"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		ordersCol := db.Collection("orders")

		statusCursor, err := ordersCol.Aggregate(ctx, mongo.Pipeline{
			{{Key: "$group", Value: bson.M{
				"_id":   "$status",
				"count": bson.M{"$sum": 1},
			}}},
		})
		if err != nil {
			log.Error("dashboard status aggregation", zap.String("route", route), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "internal error", "")
			return
		}
		var statusCounts []struct {
			Status models.OrderStatus `bson:"_id" json:"status"`
			Count  int64              `bson:"count" json:"count"`
		}
		if err := statusCursor.All(ctx, &statusCounts); err != nil {
			log.Error("dashboard status decode", zap.String("route", route), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "internal error", "")
			return
		}

		// cancelled orders do not count towards revenue
		revenueCursor, err := ordersCol.Aggregate(ctx, mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.StatusCancelled}}}},
			{{Key: "$group", Value: bson.M{
				"_id":               nil,
				"totalRevenue":      bson.M{"$sum": "$total"},
				"averageOrderValue": bson.M{"$avg": "$total"},
			}}},
		})
		if err != nil {
			log.Error("dashboard revenue aggregation", zap.String("route", route), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "internal error", "")
			return
		}
		var revenue []struct {
			TotalRevenue      float64 `bson:"totalRevenue" json:"totalRevenue"`
			AverageOrderValue float64 `bson:"averageOrderValue" json:"averageOrderValue"`
		}
		if err := revenueCursor.All(ctx, &revenue); err != nil {
			log.Error("dashboard revenue decode", zap.String("route", route), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "internal error", "")
			return
		}
		totalRevenue, averageOrderValue := 0.0, 0.0
		if len(revenue) > 0 {
			totalRevenue = revenue[0].TotalRevenue
			averageOrderValue = revenue[0].AverageOrderValue
		}

		recentCursor, err := ordersCol.Find(ctx, bson.M{}, options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(5))
		if err != nil {
			log.Error("dashboard recent orders", zap.String("route", route), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "internal error", "")
			return
		}
		var recent []models.Order
		if err := recentCursor.All(ctx, &recent); err != nil {
			log.Error("dashboard recent decode", zap.String("route", route), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "internal error", "")
			return
		}

		totalOrders, err := ordersCol.CountDocuments(ctx, bson.M{})
		if err != nil {
			log.Error("dashboard order count", zap.String("route", route), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "internal error", "")
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"stats": gin.H{
				"totalOrders":       totalOrders,
				"totalRevenue":      totalRevenue,
				"averageOrderValue": averageOrderValue,
			},
			"orderStatusCounts": statusCounts,
			"recentOrders":      recent,
		})
	}
}
