package pricing_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBreakdown(t *testing.T) {
	tests := []struct {
		name          string
		unitFull      float64
		unitReduced   float64
		countFull     int
		countReduced  int
		depositPct    float64
		wantTotal     float64
		wantDeposit   float64
		wantRemaining float64
	}{
		{
			name:     "standard tour booking",
			unitFull: 100, unitReduced: 50, countFull: 2, countReduced: 1, depositPct: 20,
			wantTotal: 250, wantDeposit: 50, wantRemaining: 200,
		},
		{
			name:     "zero deposit percentage",
			unitFull: 80, unitReduced: 40, countFull: 1, countReduced: 2, depositPct: 0,
			wantTotal: 160, wantDeposit: 0, wantRemaining: 160,
		},
		{
			name:     "full deposit",
			unitFull: 120, unitReduced: 0, countFull: 3, countReduced: 0, depositPct: 100,
			wantTotal: 360, wantDeposit: 360, wantRemaining: 0,
		},
		{
			name:     "negative count clamps to zero",
			unitFull: 100, unitReduced: 50, countFull: -2, countReduced: 1, depositPct: 20,
			wantTotal: 50, wantDeposit: 10, wantRemaining: 40,
		},
		{
			name:     "negative price clamps to zero",
			unitFull: -100, unitReduced: 50, countFull: 2, countReduced: 1, depositPct: 20,
			wantTotal: 50, wantDeposit: 10, wantRemaining: 40,
		},
		{
			name:     "deposit percentage above 100 clamps",
			unitFull: 100, unitReduced: 0, countFull: 1, countReduced: 0, depositPct: 150,
			wantTotal: 100, wantDeposit: 100, wantRemaining: 0,
		},
		{
			name:     "negative deposit percentage clamps",
			unitFull: 100, unitReduced: 0, countFull: 1, countReduced: 0, depositPct: -5,
			wantTotal: 100, wantDeposit: 0, wantRemaining: 100,
		},
		{
			name:     "everything zero",
			unitFull: 0, unitReduced: 0, countFull: 0, countReduced: 0, depositPct: 20,
			wantTotal: 0, wantDeposit: 0, wantRemaining: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateBreakdown(tt.unitFull, tt.unitReduced, tt.countFull, tt.countReduced, tt.depositPct)
			assert.InDelta(t, tt.wantTotal, got.TotalPrice, 1e-9)
			assert.InDelta(t, tt.wantDeposit, got.DepositAmount, 1e-9)
			assert.InDelta(t, tt.wantRemaining, got.RemainingBalance, 1e-9)
		})
	}
}

// The money invariant: the deposit and the remaining balance always sum
// back to the total, and the deposit never exceeds the total.
func TestBreakdownInvariant(t *testing.T) {
	prices := []float64{0, 0.01, 19.99, 50, 100, 349.5}
	counts := []int{0, 1, 2, 7}
	percentages := []float64{0, 12.5, 20, 50, 100}

	for _, full := range prices {
		for _, reduced := range prices {
			for _, cf := range counts {
				for _, cr := range counts {
					for _, pct := range percentages {
						b := CalculateBreakdown(full, reduced, cf, cr, pct)
						assert.InDelta(t, b.TotalPrice, b.DepositAmount+b.RemainingBalance, 1e-9)
						assert.GreaterOrEqual(t, b.DepositAmount, 0.0)
						assert.LessOrEqual(t, b.DepositAmount, b.TotalPrice+1e-9)
					}
				}
			}
		}
	}
}

func TestRoundCurrency(t *testing.T) {
	assert.Equal(t, 10.56, RoundCurrency(10.555))
	assert.Equal(t, 10.55, RoundCurrency(10.554))
	assert.Equal(t, 0.0, RoundCurrency(0))
	assert.Equal(t, 250.0, RoundCurrency(250.0000001))
}
