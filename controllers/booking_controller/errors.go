package booking_controller

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Configuration errors. These fail closed before a reservation
	// identifier is generated: a misconfigured product must not leave
	// partial records behind.
	ErrPricePlanMissing = errors.New("no price plan configured for a priced category")
	ErrEmptyCart        = errors.New("no chargeable line items for this booking")

	// ErrProductInactive rejects bookings against a product that is
	// configured but switched off.
	ErrProductInactive = errors.New("product is not open for booking")

	// ErrGatewayRedirect means the checkout gateway reported an error
	// instead of producing a redirect URL.
	ErrGatewayRedirect = errors.New("checkout gateway failed to provide a redirect")
)

// ValidationError carries per-field messages for a rejected booking
// form. No network call is made when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
