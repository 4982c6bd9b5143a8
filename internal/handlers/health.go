package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Health reports liveness plus a short mongo ping so load balancers can
// tell a hung database apart from a healthy process.
func Health(db *mongo.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
			log.Warn("health check ping failed", zap.Error(err))
			respondError(c, http.StatusServiceUnavailable, "database unreachable", "Unavailable")
			return
		}
		respondData(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
