package routes

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tourvia/booking-service/config"
	"github.com/tourvia/booking-service/config/db"
	redisclient "github.com/tourvia/booking-service/config/redis"
	"github.com/tourvia/booking-service/controllers/booking_controller"
	"github.com/tourvia/booking-service/controllers/checkout_return_controller"
	"github.com/tourvia/booking-service/logger"
	"github.com/tourvia/booking-service/models/reservation_models"
	"github.com/tourvia/booking-service/utils/mail"
)

// RegisterCheckoutRoutes wires the return-URL reconciler.
func RegisterCheckoutRoutes(router *gin.Engine) {
	store := &booking_controller.PgReservationStore{DB: db.DB}
	catalog := &booking_controller.PgProductCatalog{DB: db.DB}

	service := checkout_return_controller.NewReconcileService(store, catalog, nil, config.SiteBaseURL())

	if rdb, err := redisclient.GetRedisClient(context.Background()); err == nil {
		service.RedisClient = rdb
	}

	if mailer, err := mail.NewMailerFromEnv(); err == nil {
		service.Mailer = mailer
	} else {
		logger.WarnLogger.Warnf("Confirmation emails disabled: %v", err)
	}

	service.OnPaymentSucceeded = func(r *reservation_models.Reservation) {
		logger.InfoLogger.Infof("Reservation %s paid: deposit %.2f of %.2f received", r.ID, r.DepositAmount, r.TotalPrice)
	}

	router.GET("/checkout/return", service.HandleReturn)
}
