package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tourvia/booking-service/clients"
	"github.com/tourvia/booking-service/config"
	"github.com/tourvia/booking-service/config/db"
	redisclient "github.com/tourvia/booking-service/config/redis"
	"github.com/tourvia/booking-service/controllers/booking_controller"
	"github.com/tourvia/booking-service/logger"
	"github.com/tourvia/booking-service/middlewares"
	"github.com/tourvia/booking-service/middlewares/auth"
)

// RegisterBookingRoutes wires the booking orchestrator. When the
// gateway credential for the active mode is missing the checkout flow
// is registered fail-closed: the route answers 503 and nothing ever
// reaches the record store or the gateway.
func RegisterBookingRoutes(router *gin.Engine) {
	store := &booking_controller.PgReservationStore{DB: db.DB}
	catalog := &booking_controller.PgProductCatalog{DB: db.DB}

	// Admin lookup works regardless of gateway configuration.
	service := booking_controller.NewBookingService(store, catalog, nil, nil, config.SiteBaseURL())

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/reservations/:id", service.GetReservation)
	}

	gatewayCfg, err := config.LoadGatewayConfig()
	if err != nil {
		logger.ErrorLogger.Errorf("Checkout disabled: %v", err)
		router.POST("/bookings", func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"code": "CONFIGURATION_ERROR", "error": "online booking is temporarily unavailable"})
		})
		return
	}

	service.Gateway = clients.GetCheckoutGateway(gatewayCfg)
	if rdb, err := redisclient.GetRedisClient(context.Background()); err == nil {
		service.RedisClient = rdb
	} else {
		logger.WarnLogger.Warnf("Checkout holds disabled: %v", err)
	}

	router.POST("/bookings", middlewares.NewRateLimiter("10-1m", "bookings"), service.Book)
}
