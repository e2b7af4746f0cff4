// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/returns"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/cache"
	"github.com/your-org/storefront-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	logger      *logrus.Logger
	publisher   *events.Publisher

	userService *user.Service
	handlers    *routes.Handlers
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger, publisher *events.Publisher) *Server {
	return &Server{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		publisher:   publisher,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s.gin = gin.New()

	s.buildServices()
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	log.Printf("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	log.Printf("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	log.Printf("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Println("✅ HTTP server stopped gracefully")
	return nil
}

// buildServices wires the domain services and handlers
func (s *Server) buildServices() {
	invalidator := cache.NewInvalidator(s.redisClient)
	ledgerService := ledger.NewService(s.db, s.logger)
	productService := product.NewService(s.db, s.config)
	userService := user.NewService(s.db, s.config, ledgerService)
	addressService := user.NewAddressService(s.db)
	adminService := user.NewAdminService(s.db, userService, ledgerService, s.publisher, s.logger)
	cartService := cart.NewService(s.db, s.redisClient, productService)
	couponService := coupon.NewService(s.db)
	wishlistService := wishlist.NewService(s.db, productService)
	paymentClient := payment.NewClient(s.config)
	checkoutService := checkout.NewService(s.config, cartService, couponService, addressService, paymentClient, s.logger)
	orderService := order.NewService(s.db, s.config, ledgerService, s.publisher, invalidator, s.logger)
	fulfillmentService := order.NewFulfillmentService(s.db, cartService, couponService, ledgerService, s.publisher, invalidator, s.logger)
	returnsService := returns.NewService(s.db, orderService, s.logger)

	s.userService = userService
	s.handlers = &routes.Handlers{
		Product:     handlers.NewProductHandler(productService),
		Cart:        handlers.NewCartHandler(cartService),
		Checkout:    handlers.NewCheckoutHandler(checkoutService),
		Webhook:     handlers.NewWebhookHandler(paymentClient, fulfillmentService, s.logger),
		Order:       handlers.NewOrderHandler(orderService, userService),
		UserProfile: handlers.NewUserProfileHandler(userService),
		UserAddress: handlers.NewUserAddressHandler(addressService),
		UserAdmin:   handlers.NewUserAdminHandler(adminService),
		Coupon:      handlers.NewCouponHandler(couponService, userService),
		Returns:     handlers.NewReturnsHandler(returnsService, userService),
		Wishlist:    handlers.NewWishlistHandler(wishlistService),
		Stats:       handlers.NewStatsHandler(ledgerService, userService),
		Updates:     handlers.NewUpdatesHandler(invalidator, s.logger),
	}
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient))
	s.gin.Use(middleware.RequestSizeLimit(1 << 20)) // 1MB, no uploads on this API
	s.gin.Use(middleware.Timeout(30 * time.Second))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	s.gin.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.gin.Group("/api/v1")
	routes.Setup(api, s.config, s.userService, s.handlers)
}

// healthCheck reports process liveness
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.config.App.Name,
		"version": s.config.App.Version,
	})
}

// readinessCheck reports dependency health
func (s *Server) readinessCheck(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		checks["database"] = "unhealthy"
		healthy = false
	} else {
		checks["database"] = "healthy"
	}

	if err := s.redisClient.Ping(c.Request.Context()).Err(); err != nil {
		checks["redis"] = "unhealthy"
		healthy = false
	} else {
		checks["redis"] = "healthy"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status": checks,
	})
}
