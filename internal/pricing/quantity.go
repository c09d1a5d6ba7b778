package pricing

// ApplyQuantity applies the tier's price-break multiplier to the structural unit cost.
// Flat per-unit extras are added later and are not discounted.
func ApplyQuantity(unitCost float64, tier QuantityTier) float64 {
	return unitCost * tier.Multiplier
}

// TierLabels returns the published tier labels in ascending order of units.
func (c *Catalog) TierLabels() []string {
	out := make([]string, len(c.Tiers))
	for i, t := range c.Tiers {
		out[i] = t.Label
	}
	return out
}
