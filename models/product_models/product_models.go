package product_models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tourvia/booking-service/logger"
)

// Product is a bookable tour with its pricing configuration. The price
// plan identifiers reference the checkout gateway's price objects and
// are nullable: a category without a plan cannot be sold.
type Product struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	PagePath          string    `json:"page_path"`
	UnitPriceFull     float64   `json:"unit_price_full"`
	UnitPriceReduced  float64   `json:"unit_price_reduced"`
	DepositPercentage float64   `json:"deposit_percentage"`
	PricePlanFull     *string   `json:"price_plan_full"`
	PricePlanReduced  *string   `json:"price_plan_reduced"`
	IsActive          bool      `json:"is_active"`
}

var ErrProductNotFound = errors.New("product not found")

// GetProductByID fetches a product row.
func GetProductByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*Product, error) {
	p := &Product{}
	query := `
		SELECT id, name, page_path, unit_price_full, unit_price_reduced,
		       deposit_percentage, price_plan_full, price_plan_reduced, is_active
		FROM products
		WHERE id = $1`

	err := db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.PagePath, &p.UnitPriceFull, &p.UnitPriceReduced,
		&p.DepositPercentage, &p.PricePlanFull, &p.PricePlanReduced, &p.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Product %s not found", id)
			return nil, ErrProductNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch product %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching product: %w", err)
	}
	return p, nil
}
