package pricing

// PriceBreakdown is the priced result of one configuration. Values are unrounded;
// CurrentUnitPrice × QuantityUnits equals TotalInvestment exactly.
type PriceBreakdown struct {
	QuantityTier     string         `json:"quantity_tier"`
	PrintMethod      PrintMethod    `json:"print_method"`
	QuantityUnits    int            `json:"quantity_units"`
	Designs          int            `json:"designs"`
	ShippingMethod   ShippingMethod `json:"shipping_method"`
	UnitCost         float64        `json:"unit_cost"`
	UnitWeight       float64        `json:"unit_weight_grams"`
	FixedCostPerUnit float64        `json:"fixed_cost_per_unit"`
	SetupCostTotal   float64        `json:"setup_cost_total"`
	SetupCostPerUnit float64        `json:"setup_cost_per_unit"`
	ShippingPerUnit  float64        `json:"shipping_per_unit"`
	ShippingTotal    float64        `json:"shipping_total"`
	CurrentUnitPrice float64        `json:"current_unit_price"`
	TotalInvestment  float64        `json:"total_investment"`
}

// Assemble sums the per-unit components and multiplies by quantity. unitCost is the
// structural cost after the quantity break.
func Assemble(unitCost, fixedCostPerUnit, setupCostTotal, shippingPerUnit float64, quantity int) PriceBreakdown {
	if quantity <= 0 {
		invariant("assemble quantity %d must be positive", quantity)
	}
	setupPerUnit := setupCostTotal / float64(quantity)
	price := unitCost + fixedCostPerUnit + shippingPerUnit + setupPerUnit
	return PriceBreakdown{
		QuantityUnits:    quantity,
		UnitCost:         unitCost,
		FixedCostPerUnit: fixedCostPerUnit,
		SetupCostTotal:   setupCostTotal,
		SetupCostPerUnit: setupPerUnit,
		ShippingPerUnit:  shippingPerUnit,
		ShippingTotal:    shippingPerUnit * float64(quantity),
		CurrentUnitPrice: price,
		TotalInvestment:  price * float64(quantity),
	}
}

// PriceWith runs the full price path against one catalog snapshot. It either returns a
// complete breakdown or an error and nothing else.
func PriceWith(c *Catalog, cfg Configuration) (PriceBreakdown, error) {
	f, err := Resolve(c, cfg)
	if err != nil {
		return PriceBreakdown{}, err
	}
	comp := Compose(cfg, f)
	unitCost := ApplyQuantity(comp.UnitCost, f.Tier)
	shipping := ShippingCostPerUnit(comp.UnitWeight, f.Tier.Units, cfg.Shipping, cfg.seaPortion(f.Shipping), f.Shipping)

	b := Assemble(unitCost, comp.FixedCostPerUnit, comp.SetupCostTotal, shipping, f.Tier.Units)
	b.QuantityTier = f.Tier.Label
	b.PrintMethod = f.Tier.Method
	b.Designs = cfg.Designs
	b.ShippingMethod = cfg.Shipping
	b.UnitWeight = comp.UnitWeight
	return b, nil
}
