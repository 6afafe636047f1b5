package pricing_models

import (
	"math"

	"github.com/tourvia/booking-service/logger"
)

// Breakdown is the derived money split for a booking. It is never
// persisted as-is; the orchestrator copies total and deposit onto the
// reservation record at creation time.
type Breakdown struct {
	TotalPrice       float64 `json:"total_price"`
	DepositAmount    float64 `json:"down_payment_amount"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// CalculateBreakdown computes total price, deposit and remaining
// balance. Negative prices and counts clamp to zero; a deposit
// percentage outside [0,100] clamps to the nearest bound with a logged
// warning. No rounding happens here so repeated recalculation never
// compounds rounding error; use RoundCurrency at display or
// transmission time.
func CalculateBreakdown(unitPriceFull, unitPriceReduced float64, countFull, countReduced int, depositPercentage float64) Breakdown {
	unitPriceFull = math.Max(unitPriceFull, 0)
	unitPriceReduced = math.Max(unitPriceReduced, 0)
	if countFull < 0 {
		countFull = 0
	}
	if countReduced < 0 {
		countReduced = 0
	}

	if depositPercentage < 0 || depositPercentage > 100 {
		logger.WarnLogger.Warnf("Deposit percentage %.2f outside [0,100], clamping", depositPercentage)
		depositPercentage = math.Min(math.Max(depositPercentage, 0), 100)
	}

	total := unitPriceFull*float64(countFull) + unitPriceReduced*float64(countReduced)
	deposit := total * depositPercentage / 100

	return Breakdown{
		TotalPrice:       total,
		DepositAmount:    deposit,
		RemainingBalance: total - deposit,
	}
}

// RoundCurrency rounds to 2 decimals for display and transmission.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
