package pricing

import "fmt"

// FactorSet holds the catalog entries matching one configuration. It is a pure lookup
// result; nothing in it has been combined yet.
type FactorSet struct {
	Size      SizeSpec
	Design    Adjustment
	Shape     Adjustment
	Material  Adjustment
	Stiffness Adjustment
	Closure   Adjustment
	Surfaces  []Adjustment
	Barrier   BarrierFactor
	Tier      QuantityTier
	Shipping  ShippingRates
	Fixed     FixedCosts
}

// Resolve pulls the entry for every dimension of cfg out of c. An unrecognized
// quantity label returns ErrUnknownQuantityTier; a miss on any other dimension panics.
func Resolve(c *Catalog, cfg Configuration) (FactorSet, error) {
	tier, ok := c.Tier(cfg.Quantity)
	if !ok {
		return FactorSet{}, fmt.Errorf("%w: %q", ErrUnknownQuantityTier, cfg.Quantity)
	}

	surfaces := cfg.SurfaceSet()
	f := FactorSet{
		Size:      mustLookup(c.Sizes, cfg.Size, "size"),
		Design:    mustLookup(c.Designs, cfg.Designs, "design count"),
		Shape:     mustLookup(c.Shapes, cfg.Shape, "shape"),
		Material:  mustLookup(c.Materials, cfg.Material, "material"),
		Stiffness: mustLookup(c.Stiffness, cfg.Stiffness, "stiffness"),
		Closure:   mustLookup(c.Closures, cfg.Closure, "closure"),
		Surfaces:  make([]Adjustment, 0, len(surfaces)),
		Barrier:   mustLookup(c.Barriers, cfg.Barrier, "barrier"),
		Tier:      tier,
		Shipping:  c.Shipping,
		Fixed:     c.Fixed,
	}
	for _, s := range surfaces {
		f.Surfaces = append(f.Surfaces, mustLookup(c.Surfaces, s, "surface"))
	}
	return f, nil
}

// percentages returns the percentage-typed factors in composition order.
func (f FactorSet) percentages() []Adjustment {
	out := make([]Adjustment, 0, 5+len(f.Surfaces))
	out = append(out, f.Design, f.Shape, f.Material, f.Stiffness, f.Closure)
	return append(out, f.Surfaces...)
}

func mustLookup[K comparable, V any](table map[K]V, key K, dimension string) V {
	v, ok := table[key]
	if !ok {
		invariant("no %s entry for %v", dimension, key)
	}
	return v
}
