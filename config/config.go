package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/tourvia/booking-service/logger"
)

// LoadEnv loads variables from a .env file if one is present. Missing
// files are fine in production where the environment is set externally.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.InfoLogger.Info("No .env file found, using environment variables")
	}
}

// Gateway modes. Each mode carries its own secret key so a test
// deployment can never accidentally charge a live card.
const (
	GatewayModeTest = "test"
	GatewayModeLive = "live"
)

// ErrGatewayNotConfigured marks a missing or inconsistent checkout
// gateway credential. Callers must fail closed: the checkout flow is
// disabled, not degraded.
var ErrGatewayNotConfigured = errors.New("checkout gateway is not configured")

// GatewayConfig holds the credential selected for the active mode.
type GatewayConfig struct {
	Mode      string
	SecretKey string
}

// LoadGatewayConfig selects the Stripe secret key matching STRIPE_MODE.
// STRIPE_MODE defaults to "test". The key for the active mode must be
// present; the key for the other mode is ignored entirely.
func LoadGatewayConfig() (*GatewayConfig, error) {
	mode := os.Getenv("STRIPE_MODE")
	if mode == "" {
		mode = GatewayModeTest
	}

	var key string
	switch mode {
	case GatewayModeTest:
		key = os.Getenv("STRIPE_TEST_SECRET_KEY")
	case GatewayModeLive:
		key = os.Getenv("STRIPE_LIVE_SECRET_KEY")
	default:
		return nil, fmt.Errorf("%w: unknown STRIPE_MODE %q", ErrGatewayNotConfigured, mode)
	}

	if key == "" {
		return nil, fmt.Errorf("%w: no secret key set for mode %q", ErrGatewayNotConfigured, mode)
	}

	return &GatewayConfig{Mode: mode, SecretKey: key}, nil
}

// SiteBaseURL is the public origin the checkout return URLs are built
// against.
func SiteBaseURL() string {
	base := os.Getenv("SITE_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return base
}
