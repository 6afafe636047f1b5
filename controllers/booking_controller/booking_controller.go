package booking_controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v78"

	"github.com/tourvia/booking-service/clients"
	"github.com/tourvia/booking-service/logger"
	"github.com/tourvia/booking-service/models/pricing_models"
	"github.com/tourvia/booking-service/models/product_models"
	"github.com/tourvia/booking-service/models/reservation_models"
	"github.com/tourvia/booking-service/models/shared_models"
	"github.com/tourvia/booking-service/utils/shared_utils"
)

// DateLayout is the wire format for the requested tour date.
const DateLayout = "2006-01-02"

// ReservationStore is the record-store contract the orchestrator
// consumes. Production binds it to PostgreSQL; tests use a fake.
type ReservationStore interface {
	CreateReservation(ctx context.Context, r *reservation_models.Reservation) (*reservation_models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id uuid.UUID, sessionID *string, status shared_models.PaymentStatus) (*reservation_models.Reservation, error)
	GetReservationByID(ctx context.Context, id uuid.UUID) (*reservation_models.Reservation, error)
}

// ProductCatalog resolves a product's pricing configuration.
type ProductCatalog interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*product_models.Product, error)
}

// BookingService sequences record creation, gateway session creation
// and the failure-status writes of the booking flow.
type BookingService struct {
	Store       ReservationStore
	Catalog     ProductCatalog
	Gateway     clients.CheckoutGatewayWrapper
	RedisClient *redis.Client // optional; checkout holds are best effort
	BaseURL     string
}

// NewBookingService creates a new BookingService.
func NewBookingService(store ReservationStore, catalog ProductCatalog, gateway clients.CheckoutGatewayWrapper, rdb *redis.Client, baseURL string) *BookingService {
	return &BookingService{
		Store:       store,
		Catalog:     catalog,
		Gateway:     gateway,
		RedisClient: rdb,
		BaseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// BookingRequest is the booking form as submitted by the UI layer.
type BookingRequest struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	Date         string    `json:"date" binding:"required"`
	FullCount    int       `json:"full_count"`
	ReducedCount int       `json:"reduced_count"`
	FirstName    string    `json:"first_name" binding:"required"`
	LastName     string    `json:"last_name" binding:"required"`
	Email        string    `json:"email" binding:"required,email"`
	Phone        string    `json:"phone" binding:"required"`
}

// validate applies the submission preconditions. The Gin binding tags
// cover the HTTP path; this keeps the service safe when called
// directly.
func (req *BookingRequest) validate() (*time.Time, *ValidationError) {
	fields := make(map[string]string)

	if req.ProductID == uuid.Nil {
		fields["product_id"] = "required"
	}
	if strings.TrimSpace(req.FirstName) == "" {
		fields["first_name"] = "required"
	}
	if strings.TrimSpace(req.LastName) == "" {
		fields["last_name"] = "required"
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "required"
	}
	if strings.TrimSpace(req.Phone) == "" {
		fields["phone"] = "required"
	}

	var date time.Time
	if strings.TrimSpace(req.Date) == "" {
		fields["date"] = "required"
	} else {
		parsed, err := time.Parse(DateLayout, req.Date)
		if err != nil {
			fields["date"] = "must be formatted as " + DateLayout
		} else {
			date = parsed
		}
	}

	if req.FullCount < 0 {
		fields["full_count"] = "must not be negative"
	}
	if req.ReducedCount < 0 {
		fields["reduced_count"] = "must not be negative"
	}
	if req.FullCount == 0 && req.ReducedCount == 0 {
		fields["participants"] = "at least one participant is required"
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return &date, nil
}

// buildLineItems applies the cart construction rule: a full-price item
// iff full_count > 0, a reduced item iff reduced_count > 0 and the
// product actually prices the reduced category. Runs before any
// reservation identifier exists so misconfiguration never leaves a
// partial record.
func buildLineItems(product *product_models.Product, fullCount, reducedCount int) ([]*stripe.CheckoutSessionLineItemParams, error) {
	var items []*stripe.CheckoutSessionLineItemParams

	if fullCount > 0 {
		if product.PricePlanFull == nil || *product.PricePlanFull == "" {
			return nil, fmt.Errorf("%w: full-price category of product %s", ErrPricePlanMissing, product.ID)
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(*product.PricePlanFull),
			Quantity: stripe.Int64(int64(fullCount)),
		})
	}

	if reducedCount > 0 && product.UnitPriceReduced > 0 {
		if product.PricePlanReduced == nil || *product.PricePlanReduced == "" {
			return nil, fmt.Errorf("%w: reduced-price category of product %s", ErrPricePlanMissing, product.ID)
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(*product.PricePlanReduced),
			Quantity: stripe.Int64(int64(reducedCount)),
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: product %s", ErrEmptyCart, product.ID)
	}
	return items, nil
}

// returnURLs builds the success and cancel URLs handed to the gateway.
// They differ only in the status value; the gateway substitutes the
// real session token for the placeholder before redirecting back.
func (s *BookingService) returnURLs(reservationID uuid.UUID) (string, string) {
	base := s.BaseURL + "/checkout/return?reservation_id=" + url.QueryEscape(reservationID.String())
	success := base + "&status=" + shared_models.ReturnFlagSuccess + "&session_id={CHECKOUT_SESSION_ID}"
	cancel := base + "&status=" + shared_models.ReturnFlagCancelled + "&session_id={CHECKOUT_SESSION_ID}"
	return success, cancel
}

// StartCheckout runs the booking flow up to the gateway redirect:
// validate, price, create the pending record, create the checkout
// session. It returns the created reservation and the URL the browser
// must be sent to.
func (s *BookingService) StartCheckout(ctx context.Context, req *BookingRequest) (*reservation_models.Reservation, string, error) {
	date, verr := req.validate()
	if verr != nil {
		return nil, "", verr
	}

	product, err := s.Catalog.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, "", fmt.Errorf("product lookup failed: %w", err)
	}
	if !product.IsActive {
		return nil, "", fmt.Errorf("%w: %s", ErrProductInactive, product.ID)
	}

	lineItems, err := buildLineItems(product, req.FullCount, req.ReducedCount)
	if err != nil {
		logger.ErrorLogger.Errorf("Configuration error for product %s: %v", product.ID, err)
		return nil, "", err
	}

	breakdown := pricing_models.CalculateBreakdown(
		product.UnitPriceFull, product.UnitPriceReduced,
		req.FullCount, req.ReducedCount, product.DepositPercentage,
	)

	reservation, err := reservation_models.NewReservation(
		product.ID, *date, req.FullCount, req.ReducedCount,
		req.FirstName, req.LastName, req.Email, req.Phone,
		breakdown.TotalPrice, breakdown.DepositAmount,
	)
	if err != nil {
		return nil, "", fmt.Errorf("internal error creating reservation: %w", err)
	}

	created, err := s.Store.CreateReservation(ctx, reservation)
	if err != nil {
		// Nothing was persisted; the gateway must not be invoked.
		return nil, "", fmt.Errorf("failed to create reservation: %w", err)
	}

	if s.RedisClient != nil {
		if holdErr := shared_utils.StoreCheckoutHold(ctx, s.RedisClient, created.ID); holdErr != nil {
			logger.WarnLogger.Warnf("Checkout hold for reservation %s not stored: %v", created.ID, holdErr)
		}
	}

	checkoutURL, err := s.createCheckoutSession(ctx, created, req.Email, lineItems)
	if err != nil {
		failStatus := shared_models.StatusFailedUnexpected
		if errors.Is(err, ErrGatewayRedirect) {
			failStatus = shared_models.StatusFailedStripeRedirect
		}
		s.markFailed(ctx, created.ID, failStatus)
		return nil, "", err
	}

	logger.InfoLogger.Infof("Reservation %s awaiting checkout, deposit %.2f of %.2f",
		created.ID, pricing_models.RoundCurrency(created.DepositAmount), pricing_models.RoundCurrency(created.TotalPrice))
	return created, checkoutURL, nil
}

// createCheckoutSession invokes the gateway. Gateway-reported failures
// come back wrapped in ErrGatewayRedirect; anything else is treated as
// unexpected by the caller.
func (s *BookingService) createCheckoutSession(ctx context.Context, r *reservation_models.Reservation,
	email string, lineItems []*stripe.CheckoutSessionLineItemParams) (string, error) {

	successURL, cancelURL := s.returnURLs(r.ID)

	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:                lineItems,
		CustomerEmail:            stripe.String(email),
		ClientReferenceID:        stripe.String(r.ID.String()),
		SuccessURL:               stripe.String(successURL),
		CancelURL:                stripe.String(cancelURL),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
	}
	params.Context = ctx

	session, err := s.Gateway.CreateCheckoutSession(params)
	if err != nil {
		logger.ErrorLogger.Errorf("Checkout session creation failed for reservation %s: %v", r.ID, err)
		return "", fmt.Errorf("%w: %v", ErrGatewayRedirect, err)
	}
	if session == nil || session.URL == "" {
		logger.ErrorLogger.Errorf("Checkout session for reservation %s has no redirect URL", r.ID)
		return "", fmt.Errorf("%w: empty session", ErrGatewayRedirect)
	}
	return session.URL, nil
}

// markFailed is a best-effort status write so a failed attempt does not
// sit in pending_checkout forever.
func (s *BookingService) markFailed(ctx context.Context, id uuid.UUID, status shared_models.PaymentStatus) {
	if _, err := s.Store.UpdateReservationStatus(ctx, id, nil, status); err != nil {
		logger.ErrorLogger.Errorf("Critical: failed to mark reservation %s as %s: %v", id, status, err)
	}
}

// Book is the POST /bookings handler.
func (s *BookingService) Book(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	created, checkoutURL, err := s.StartCheckout(c.Request.Context(), &req)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "validation failed", "fields": verr.Fields})
		case errors.Is(err, ErrPricePlanMissing), errors.Is(err, ErrEmptyCart):
			// Admin-facing: the product is deployed without a sellable
			// price plan.
			c.JSON(http.StatusInternalServerError, gin.H{"code": "CONFIGURATION_ERROR", "error": "this product is not available for online booking"})
		case errors.Is(err, product_models.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, ErrProductInactive):
			c.JSON(http.StatusConflict, gin.H{"error": "product is not open for booking"})
		case errors.Is(err, ErrGatewayRedirect):
			c.JSON(http.StatusBadGateway, gin.H{"code": "GATEWAY_ERROR", "error": "payment gateway error, please try again"})
		default:
			logger.ErrorLogger.Errorf("Booking failed unexpectedly: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reservation"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reservation":  created,
		"checkout_url": checkoutURL,
	})
}

// GetReservation is the admin lookup handler for GET /reservations/:id.
func (s *BookingService) GetReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	reservation, err := s.Store.GetReservationByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, reservation_models.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservation": reservation})
}

// PgReservationStore binds ReservationStore to the pgx pool.
type PgReservationStore struct {
	DB *pgxpool.Pool
}

func (s *PgReservationStore) CreateReservation(ctx context.Context, r *reservation_models.Reservation) (*reservation_models.Reservation, error) {
	return reservation_models.CreateReservation(ctx, s.DB, r)
}

func (s *PgReservationStore) UpdateReservationStatus(ctx context.Context, id uuid.UUID, sessionID *string, status shared_models.PaymentStatus) (*reservation_models.Reservation, error) {
	return reservation_models.UpdateReservationStatus(ctx, s.DB, id, sessionID, status)
}

func (s *PgReservationStore) GetReservationByID(ctx context.Context, id uuid.UUID) (*reservation_models.Reservation, error) {
	return reservation_models.GetReservationByID(ctx, s.DB, id)
}

// PgProductCatalog binds ProductCatalog to the pgx pool.
type PgProductCatalog struct {
	DB *pgxpool.Pool
}

func (c *PgProductCatalog) GetProductByID(ctx context.Context, id uuid.UUID) (*product_models.Product, error) {
	return product_models.GetProductByID(ctx, c.DB, id)
}
