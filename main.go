package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/inventory"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/ordernum"
	"storefront/internal/orders"
)

func main() {
	config.Load()

	zlog, err := logger.New(config.AppEnv.Environment)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		zlog.Fatal("mongodb connection failed", zap.Error(err))
	}

	db := client.Database(config.AppEnv.DBName)
	zlog.Info("mongodb connected", zap.String("database", db.Name()))

	if err := database.EnsureProductIndexes(db, zlog); err != nil {
		zlog.Warn("product index bootstrap", zap.Error(err))
	}
	if err := database.EnsureOrderIndexes(db, zlog); err != nil {
		zlog.Warn("order index bootstrap", zap.Error(err))
	}
	if err := database.EnsureCartIndexes(db, zlog); err != nil {
		zlog.Warn("cart index bootstrap", zap.Error(err))
	}

	svc := orders.NewService(
		orders.NewMongoStore(db),
		orders.NewMongoCatalog(db),
		inventory.NewMongoLedger(db, zlog),
		ordernum.NewMongoAllocator(db),
		orders.NewMongoCarts(db),
		config.AppEnv.ShippingRates,
		zlog,
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))

	r.GET("/health", handlers.Health(db, zlog))

	owner := middleware.ResolveOwner(config.AppEnv.JWTSecret)
	r.POST("/checkout", owner, handlers.Checkout(svc, zlog))
	r.GET("/user/orders", owner, handlers.UserOrders(svc, zlog))

	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/dashboard", handlers.AdminDashboard(db, zlog))
		admin.GET("/orders", handlers.AdminListOrders(svc, zlog))
		admin.GET("/orders/:id", handlers.AdminGetOrder(svc, zlog))
		admin.PUT("/orders/:id/status", handlers.AdminUpdateOrderStatus(svc, zlog))
		admin.PUT("/orders/:id", handlers.AdminEditOrder(svc, zlog))
		admin.POST("/orders/:id/log", handlers.AdminAddOrderLog(svc, zlog))
	}

	zlog.Info("listening", zap.String("port", config.AppEnv.Port))
	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
