package pricing

import (
	"errors"
	"fmt"
	"slices"
)

// Configuration is one pricing request. Every field except Quantity is drawn from a
// closed enumeration; Quantity must equal a published tier label exactly.
type Configuration struct {
	Shape           Shape          `json:"shape"`
	Material        Material       `json:"material"`
	Size            SizeClass      `json:"size"`
	Barrier         Barrier        `json:"barrier"`
	Stiffness       Stiffness      `json:"stiffness"`
	Closure         Closure        `json:"closure"`
	Surfaces        []Surface      `json:"surfaces"`
	LaserScoring    bool           `json:"laser_scoring"`
	DegassingValve  bool           `json:"degassing_valve"`
	IrregularDieCut bool           `json:"irregular_die_cut"`
	Quantity        string         `json:"quantity"`
	Designs         int            `json:"designs"`
	Shipping        ShippingMethod `json:"shipping"`
	// SeaPortion is the share of a dual shipment sent by sea. Nil means the catalog default.
	SeaPortion *float64 `json:"sea_portion,omitempty"`
}

// Validate reports enumeration members outside their dimension. Callers that build a
// Configuration from untrusted input should call it before pricing; the engine itself
// treats such values as invariant violations.
func (c Configuration) Validate() error {
	var errs []error
	check := func(ok bool, dimension string, v any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s %v", ErrUnknownOption, dimension, v))
		}
	}
	check(slices.Contains(Shapes, c.Shape), "shape", c.Shape)
	check(slices.Contains(Materials, c.Material), "material", c.Material)
	check(slices.Contains(Sizes, c.Size), "size", c.Size)
	check(slices.Contains(Barriers, c.Barrier), "barrier", c.Barrier)
	check(slices.Contains(Stiffnesses, c.Stiffness), "stiffness", c.Stiffness)
	check(slices.Contains(Closures, c.Closure), "closure", c.Closure)
	check(slices.Contains(ShippingMethods, c.Shipping), "shipping method", c.Shipping)
	for _, s := range c.Surfaces {
		check(slices.Contains(Surfaces, s), "surface", s)
	}
	if c.Designs < MinDesigns || c.Designs > MaxDesigns {
		errs = append(errs, fmt.Errorf("%w: design count %d outside %d-%d", ErrUnknownOption, c.Designs, MinDesigns, MaxDesigns))
	}
	if p := c.SeaPortion; p != nil && !(*p >= 0 && *p <= 1) {
		errs = append(errs, fmt.Errorf("sea portion %v outside [0,1]", *p))
	}
	return errors.Join(errs...)
}

// SurfaceSet returns the selected surfaces without duplicates, in catalog evaluation
// order, so accumulation order never depends on how the caller listed them.
func (c Configuration) SurfaceSet() []Surface {
	out := make([]Surface, 0, len(c.Surfaces))
	for _, s := range Surfaces {
		if slices.Contains(c.Surfaces, s) {
			out = append(out, s)
		}
	}
	return out
}

func (c Configuration) normalized() Configuration {
	c.Surfaces = c.SurfaceSet()
	if c.SeaPortion != nil {
		p := *c.SeaPortion
		c.SeaPortion = &p
	}
	return c
}

func (c Configuration) seaPortion(rates ShippingRates) float64 {
	if c.SeaPortion != nil {
		return *c.SeaPortion
	}
	return rates.DefaultSeaPortion
}
