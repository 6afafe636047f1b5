package shared_utils

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tourvia/booking-service/logger"
)

// A checkout hold marks a reservation as mid-checkout so operational
// tooling can tell an abandoned pending_checkout row from one whose
// user is still on the gateway page. Holds expire on their own; the
// reconciler releases them early.
const (
	CHECKOUT_HOLD_PREFIX = "checkout_hold:"
	CHECKOUT_HOLD_EXPIRY = 30 * time.Minute
)

func holdKey(reservationID uuid.UUID) string {
	return fmt.Sprintf("%s%s", CHECKOUT_HOLD_PREFIX, reservationID.String())
}

// StoreCheckoutHold records a TTL'd hold for a reservation entering
// checkout.
func StoreCheckoutHold(ctx context.Context, rdb *redis.Client, reservationID uuid.UUID) error {
	if err := rdb.Set(ctx, holdKey(reservationID), time.Now().UTC().Format(time.RFC3339), CHECKOUT_HOLD_EXPIRY).Err(); err != nil {
		logger.ErrorLogger.Errorf("Failed to store checkout hold for reservation %s: %v", reservationID, err)
		return fmt.Errorf("failed to store checkout hold: %w", err)
	}
	return nil
}

// ReleaseCheckoutHold removes the hold once the checkout round trip is
// reconciled.
func ReleaseCheckoutHold(ctx context.Context, rdb *redis.Client, reservationID uuid.UUID) error {
	if err := rdb.Del(ctx, holdKey(reservationID)).Err(); err != nil {
		logger.ErrorLogger.Errorf("Failed to release checkout hold for reservation %s: %v", reservationID, err)
		return fmt.Errorf("failed to release checkout hold: %w", err)
	}
	return nil
}

// HasCheckoutHold reports whether a hold is still live.
func HasCheckoutHold(ctx context.Context, rdb *redis.Client, reservationID uuid.UUID) (bool, error) {
	n, err := rdb.Exists(ctx, holdKey(reservationID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check checkout hold: %w", err)
	}
	return n > 0, nil
}
