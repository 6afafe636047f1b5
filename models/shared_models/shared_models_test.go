package shared_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReturnStatus(t *testing.T) {
	assert.Equal(t, StatusSucceeded, ParseReturnStatus("success"))
	assert.Equal(t, StatusCancelled, ParseReturnStatus("cancelled"))
	assert.Equal(t, StatusUnknown, ParseReturnStatus("canceled"))
	assert.Equal(t, StatusUnknown, ParseReturnStatus(""))
	assert.Equal(t, StatusUnknown, ParseReturnStatus("SUCCESS"))
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPendingCheckout.Terminal())
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusFailedStripeRedirect.Terminal())
	assert.True(t, StatusFailedUnexpected.Terminal())
	assert.True(t, StatusUnknown.Terminal())
	assert.False(t, PaymentStatus("confirmed").Terminal())
}

func TestCanTransitionTo(t *testing.T) {
	terminals := []PaymentStatus{
		StatusSucceeded, StatusCancelled,
		StatusFailedStripeRedirect, StatusFailedUnexpected, StatusUnknown,
	}

	// pending_checkout may reach every terminal status.
	for _, next := range terminals {
		assert.True(t, StatusPendingCheckout.CanTransitionTo(next), "pending -> %s", next)
	}

	// A repeated write of the same status is allowed (idempotency).
	for _, s := range terminals {
		assert.True(t, s.CanTransitionTo(s), "%s -> %s", s, s)
	}

	// No terminal status ever moves to a different one, and nothing
	// returns to pending_checkout.
	for _, from := range terminals {
		assert.False(t, from.CanTransitionTo(StatusPendingCheckout), "%s -> pending", from)
		for _, to := range terminals {
			if from == to {
				continue
			}
			assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	// Unknown values transition nowhere.
	assert.False(t, PaymentStatus("paid").CanTransitionTo(StatusSucceeded))
	assert.False(t, StatusPendingCheckout.CanTransitionTo(PaymentStatus("paid")))
}
