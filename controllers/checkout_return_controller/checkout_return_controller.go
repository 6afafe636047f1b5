package checkout_return_controller

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tourvia/booking-service/logger"
	"github.com/tourvia/booking-service/models/product_models"
	"github.com/tourvia/booking-service/models/reservation_models"
	"github.com/tourvia/booking-service/models/shared_models"
	"github.com/tourvia/booking-service/utils/shared_utils"
)

// Query parameters the gateway round trip carries back. The gateway
// substitutes the session placeholder into session_id before
// redirecting.
const (
	ParamSessionID     = "session_id"
	ParamStatus        = "status"
	ParamReservationID = "reservation_id"
)

// Display flag appended to the post-reconciliation redirect. Unlike the
// checkout parameters above it never re-triggers reconciliation on
// refresh.
const NoticeParam = "checkout"

// ReservationStore is the slice of the record store the reconciler
// needs.
type ReservationStore interface {
	UpdateReservationStatus(ctx context.Context, id uuid.UUID, sessionID *string, status shared_models.PaymentStatus) (*reservation_models.Reservation, error)
}

// ProductCatalog resolves the product page the browser is sent back to.
type ProductCatalog interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*product_models.Product, error)
}

// ConfirmationSender delivers the booking confirmation after a
// successful payment. Delivery is best effort.
type ConfirmationSender interface {
	SendBookingConfirmation(r *reservation_models.Reservation) error
}

// ReconcileService settles a reservation's status when the browser
// returns from the hosted checkout page. The reservation identifier
// plus the query parameters are the sole resumption token: no in-memory
// state survives the redirect round trip.
type ReconcileService struct {
	Store       ReservationStore
	Catalog     ProductCatalog
	RedisClient *redis.Client
	Mailer      ConfirmationSender
	BaseURL     string

	// OnPaymentSucceeded is invoked with the updated record after a
	// successful reconciliation. The UI layer consumes it to render the
	// confirmation view.
	OnPaymentSucceeded func(r *reservation_models.Reservation)
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(store ReservationStore, catalog ProductCatalog, rdb *redis.Client, baseURL string) *ReconcileService {
	return &ReconcileService{
		Store:       store,
		Catalog:     catalog,
		RedisClient: rdb,
		BaseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// HandleReturn is the GET /checkout/return handler. It runs exactly
// once per browser return; a refresh of the same URL is absorbed by the
// idempotent status update. After reconciliation the browser is
// redirected to the clean product page so the checkout parameters
// disappear from the visible URL.
func (s *ReconcileService) HandleReturn(c *gin.Context) {
	sessionID := c.Query(ParamSessionID)
	flag := c.Query(ParamStatus)
	idParam := c.Query(ParamReservationID)

	// Not a checkout return at all.
	if sessionID == "" && flag == "" && idParam == "" {
		c.Redirect(http.StatusSeeOther, s.BaseURL+"/")
		return
	}

	reservationID, err := uuid.Parse(idParam)
	if err != nil {
		logger.ErrorLogger.Errorf("Checkout return with invalid reservation id %q", idParam)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	target := shared_models.ParseReturnStatus(flag)
	if target == shared_models.StatusUnknown {
		logger.WarnLogger.Warnf("Unrecognized checkout return status %q for reservation %s, recording as unknown", flag, reservationID)
	}

	var token *string
	if sessionID != "" {
		token = &sessionID
	}

	ctx := c.Request.Context()
	updated, err := s.Store.UpdateReservationStatus(ctx, reservationID, token, target)
	if err != nil {
		if errors.Is(err, reservation_models.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		// Terminal for this page load. The payment outcome upstream is
		// ambiguous and must be resolved by an administrator against the
		// gateway's own records; no automatic retry.
		logger.ErrorLogger.Errorf("Reconciliation failed for reservation %s: %v", reservationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "RECONCILIATION_FAILED",
			"error": "we could not confirm your payment status, please contact support",
		})
		return
	}

	if s.RedisClient != nil {
		if err := shared_utils.ReleaseCheckoutHold(ctx, s.RedisClient, reservationID); err != nil {
			logger.WarnLogger.Warnf("Checkout hold for reservation %s not released: %v", reservationID, err)
		}
	}

	switch target {
	case shared_models.StatusSucceeded:
		logger.InfoLogger.Infof("Payment succeeded for reservation %s (session %s)", reservationID, sessionID)
		if s.OnPaymentSucceeded != nil {
			s.OnPaymentSucceeded(updated)
		}
		if s.Mailer != nil {
			if err := s.Mailer.SendBookingConfirmation(updated); err != nil {
				logger.ErrorLogger.Errorf("Confirmation email for reservation %s not sent: %v", reservationID, err)
			}
		}
	case shared_models.StatusCancelled:
		logger.WarnLogger.Warnf("Checkout cancelled for reservation %s", reservationID)
	}

	c.Redirect(http.StatusSeeOther, s.redirectTarget(ctx, updated, target))
}

// redirectTarget picks the product page the browser lands on, with a
// display-only notice flag. Falls back to the site base when the
// product cannot be resolved.
func (s *ReconcileService) redirectTarget(ctx context.Context, r *reservation_models.Reservation, target shared_models.PaymentStatus) string {
	page := s.BaseURL + "/"
	if s.Catalog != nil {
		if product, err := s.Catalog.GetProductByID(ctx, r.ProductID); err == nil {
			page = s.BaseURL + "/" + strings.TrimLeft(product.PagePath, "/")
		} else {
			logger.WarnLogger.Warnf("Product %s not resolved for redirect, using site base: %v", r.ProductID, err)
		}
	}

	notice := "unknown"
	switch target {
	case shared_models.StatusSucceeded:
		notice = shared_models.ReturnFlagSuccess
	case shared_models.StatusCancelled:
		notice = shared_models.ReturnFlagCancelled
	}
	return page + "?" + NoticeParam + "=" + notice
}
