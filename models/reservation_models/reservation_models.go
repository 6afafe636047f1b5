package reservation_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tourvia/booking-service/logger"
	"github.com/tourvia/booking-service/models/shared_models"
)

// Reservation is a single attempt by a user to book a product. The
// identifier is generated before any network call and is the
// correlation key for the whole checkout round trip.
type Reservation struct {
	ID               uuid.UUID                   `json:"id"`
	ProductID        uuid.UUID                   `json:"product_id"`
	Date             time.Time                   `json:"date"`
	FullCount        int                         `json:"full_count"`
	ReducedCount     int                         `json:"reduced_count"`
	FirstName        string                      `json:"first_name"`
	LastName         string                      `json:"last_name"`
	Email            string                      `json:"email"`
	Phone            string                      `json:"phone"`
	TotalPrice       float64                     `json:"total_price"`
	DepositAmount    float64                     `json:"down_payment_amount"`
	PaymentStatus    shared_models.PaymentStatus `json:"payment_status"`
	PaymentSessionID *string                     `json:"payment_session_id"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

var (
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrStatusConflict means the reservation is already closed with a
	// different terminal status; the write was refused to keep the
	// status monotonic.
	ErrStatusConflict = errors.New("reservation already closed with a different status")
)

// NewReservation creates a Reservation struct in pending_checkout with
// no session token. The identifier is assigned here, exactly once.
func NewReservation(productID uuid.UUID, date time.Time, fullCount, reducedCount int,
	firstName, lastName, email, phone string, totalPrice, depositAmount float64) (*Reservation, error) {

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for reservation: %w", err)
	}
	now := time.Now()
	return &Reservation{
		ID:            id,
		ProductID:     productID,
		Date:          date,
		FullCount:     fullCount,
		ReducedCount:  reducedCount,
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		Phone:         phone,
		TotalPrice:    totalPrice,
		DepositAmount: depositAmount,
		PaymentStatus: shared_models.StatusPendingCheckout,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CreateReservation inserts a new reservation record. On failure nothing
// is persisted and the caller must not proceed to the gateway.
func CreateReservation(ctx context.Context, db *pgxpool.Pool, r *Reservation) (*Reservation, error) {
	logger.InfoLogger.Infof("Attempting to create reservation %s for product %s", r.ID, r.ProductID)

	query := `
		INSERT INTO reservations (
			id, product_id, reserved_date, full_count, reduced_count,
			first_name, last_name, email, phone,
			total_price, deposit_amount, payment_status, payment_session_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		r.ID, r.ProductID, r.Date, r.FullCount, r.ReducedCount,
		r.FirstName, r.LastName, r.Email, r.Phone,
		r.TotalPrice, r.DepositAmount, r.PaymentStatus, r.PaymentSessionID,
		r.CreatedAt, r.UpdatedAt,
	).Scan(&insertedID)

	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert reservation %s: %v", r.ID, err)
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	logger.InfoLogger.Infof("Reservation %s created with status %s", r.ID, r.PaymentStatus)
	return r, nil
}

// UpdateReservationStatus moves a reservation to a terminal status and
// returns the updated row. The write is idempotent: repeating it with
// the same target status succeeds and leaves the record unchanged. A
// terminal record never moves to a different terminal status and never
// returns to pending_checkout. A nil sessionID keeps whatever session
// token is already stored.
func UpdateReservationStatus(ctx context.Context, db *pgxpool.Pool, id uuid.UUID,
	sessionID *string, newStatus shared_models.PaymentStatus) (*Reservation, error) {

	if !newStatus.Valid() || newStatus == shared_models.StatusPendingCheckout {
		return nil, fmt.Errorf("invalid target status %q for reservation %s", newStatus, id)
	}

	logger.InfoLogger.Infof("Updating reservation %s to status %s", id, newStatus)

	query := `
		UPDATE reservations
		SET payment_status = $2,
		    payment_session_id = COALESCE($3, payment_session_id),
		    updated_at = NOW()
		WHERE id = $1 AND payment_status IN ($4, $2)
		RETURNING id, product_id, reserved_date, full_count, reduced_count,
		          first_name, last_name, email, phone,
		          total_price, deposit_amount, payment_status, payment_session_id,
		          created_at, updated_at`

	r := &Reservation{}
	err := db.QueryRow(ctx, query, id, newStatus, sessionID, shared_models.StatusPendingCheckout).Scan(
		&r.ID, &r.ProductID, &r.Date, &r.FullCount, &r.ReducedCount,
		&r.FirstName, &r.LastName, &r.Email, &r.Phone,
		&r.TotalPrice, &r.DepositAmount, &r.PaymentStatus, &r.PaymentSessionID,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err == nil {
		logger.InfoLogger.Infof("Reservation %s updated to status %s", id, r.PaymentStatus)
		return r, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.ErrorLogger.Errorf("Failed to update reservation %s status: %v", id, err)
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	// No row matched: either the reservation does not exist or it is
	// already closed with a different status.
	var current shared_models.PaymentStatus
	probeErr := db.QueryRow(ctx, `SELECT payment_status FROM reservations WHERE id = $1`, id).Scan(&current)
	if probeErr != nil {
		if errors.Is(probeErr, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Reservation %s not found for status update", id)
			return nil, ErrReservationNotFound
		}
		logger.ErrorLogger.Errorf("Failed to probe reservation %s after refused update: %v", id, probeErr)
		return nil, fmt.Errorf("failed to update reservation status: %w", probeErr)
	}

	logger.ErrorLogger.Errorf("Refused status update for reservation %s: %s -> %s", id, current, newStatus)
	return nil, fmt.Errorf("%w: %s -> %s", ErrStatusConflict, current, newStatus)
}

// GetReservationByID fetches a reservation record.
func GetReservationByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*Reservation, error) {
	r := &Reservation{}
	query := `
		SELECT id, product_id, reserved_date, full_count, reduced_count,
		       first_name, last_name, email, phone,
		       total_price, deposit_amount, payment_status, payment_session_id,
		       created_at, updated_at
		FROM reservations
		WHERE id = $1`

	err := db.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.ProductID, &r.Date, &r.FullCount, &r.ReducedCount,
		&r.FirstName, &r.LastName, &r.Email, &r.Phone,
		&r.TotalPrice, &r.DepositAmount, &r.PaymentStatus, &r.PaymentSessionID,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch reservation %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching reservation: %w", err)
	}
	return r, nil
}
