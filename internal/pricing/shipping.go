package pricing

// RatePerGram resolves the freight rate for a method. Dual shipments blend the air
// and sea rates by seaPortion.
func RatePerGram(method ShippingMethod, seaPortion float64, rates ShippingRates) float64 {
	switch method {
	case ShippingAir:
		return rates.AirPerGram
	case ShippingSea:
		return rates.SeaPerGram
	case ShippingDual:
		return rates.AirPerGram*(1-seaPortion) + rates.SeaPerGram*seaPortion
	}
	invariant("shipping method %v has no rate", method)
	return 0
}

// ShippingCostPerUnit computes order freight from unit weight, raises it to the
// minimum charge when it falls below, and spreads it back over the quantity.
func ShippingCostPerUnit(unitWeight float64, quantity int, method ShippingMethod, seaPortion float64, rates ShippingRates) float64 {
	if quantity <= 0 {
		invariant("shipping quantity %d must be positive", quantity)
	}
	total := unitWeight * float64(quantity) * RatePerGram(method, seaPortion, rates)
	if total < rates.MinimumCharge {
		total = rates.MinimumCharge
	}
	return total / float64(quantity)
}
