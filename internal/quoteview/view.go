// Package quoteview shapes a priced quote for display. The engine never rounds;
// rounding happens here, once, on the way out.
package quoteview

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/ecopouch/internal/pricing"
)

// Display precision.
const (
	UnitPlaces   = 4
	TotalPlaces  = 2
	WeightPlaces = 2
)

const Currency = "USD"

// Breakdown is PriceBreakdown rounded for display.
type Breakdown struct {
	QuantityTier     string          `json:"quantity_tier"`
	PrintMethod      string          `json:"print_method"`
	QuantityUnits    int             `json:"quantity_units"`
	Designs          int             `json:"designs"`
	ShippingMethod   string          `json:"shipping_method"`
	Currency         string          `json:"currency"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	UnitWeightGrams  decimal.Decimal `json:"unit_weight_grams"`
	FixedCostPerUnit decimal.Decimal `json:"fixed_cost_per_unit"`
	SetupCostPerUnit decimal.Decimal `json:"setup_cost_per_unit"`
	SetupCostTotal   decimal.Decimal `json:"setup_cost_total"`
	ShippingPerUnit  decimal.Decimal `json:"shipping_per_unit"`
	ShippingTotal    decimal.Decimal `json:"shipping_total"`
	CurrentUnitPrice decimal.Decimal `json:"current_unit_price"`
	TotalInvestment  decimal.Decimal `json:"total_investment"`
}

// Quote is the display form of a pricing.Quote.
type Quote struct {
	Reference      string                     `json:"reference,omitempty"`
	CatalogVersion string                     `json:"catalog_version"`
	Configuration  pricing.Configuration      `json:"configuration"`
	Breakdown      Breakdown                  `json:"breakdown"`
	Package        pricing.PackageDescription `json:"package"`
}

func New(q pricing.Quote) Quote {
	return Quote{
		CatalogVersion: q.CatalogVersion,
		Configuration:  q.Configuration,
		Breakdown:      NewBreakdown(q.Breakdown),
		Package:        q.Package,
	}
}

func NewBreakdown(b pricing.PriceBreakdown) Breakdown {
	return Breakdown{
		QuantityTier:     b.QuantityTier,
		PrintMethod:      b.PrintMethod.String(),
		QuantityUnits:    b.QuantityUnits,
		Designs:          b.Designs,
		ShippingMethod:   b.ShippingMethod.String(),
		Currency:         Currency,
		UnitCost:         Unit(b.UnitCost),
		UnitWeightGrams:  round(b.UnitWeight, WeightPlaces),
		FixedCostPerUnit: Unit(b.FixedCostPerUnit),
		SetupCostPerUnit: Unit(b.SetupCostPerUnit),
		SetupCostTotal:   Total(b.SetupCostTotal),
		ShippingPerUnit:  Unit(b.ShippingPerUnit),
		ShippingTotal:    Total(b.ShippingTotal),
		CurrentUnitPrice: Unit(b.CurrentUnitPrice),
		TotalInvestment:  Total(b.TotalInvestment),
	}
}

// Unit rounds a per-unit amount.
func Unit(v float64) decimal.Decimal { return round(v, UnitPlaces) }

// Total rounds an order-level amount.
func Total(v float64) decimal.Decimal { return round(v, TotalPlaces) }

func round(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}
