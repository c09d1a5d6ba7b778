// Package catalogfile loads price overrides for the compiled-in catalog from YAML and
// keeps a CatalogStore in step with the file.
package catalogfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/ecopouch/internal/pricing"
)

// Overrides is the YAML document. Every field is optional; labels are the same
// customer-facing labels the API accepts.
type Overrides struct {
	Version    string                        `yaml:"version"`
	Sizes      map[string]SizeOverride       `yaml:"sizes,omitempty"`
	Shapes     map[string]AdjustmentOverride `yaml:"shapes,omitempty"`
	Materials  map[string]AdjustmentOverride `yaml:"materials,omitempty"`
	Stiffness  map[string]AdjustmentOverride `yaml:"stiffness,omitempty"`
	Closures   map[string]AdjustmentOverride `yaml:"closures,omitempty"`
	Surfaces   map[string]AdjustmentOverride `yaml:"surfaces,omitempty"`
	Designs    map[int]AdjustmentOverride    `yaml:"designs,omitempty"`
	Barriers   map[string]BarrierOverride    `yaml:"barriers,omitempty"`
	Quantities map[string]float64            `yaml:"quantities,omitempty"` // tier label -> multiplier
	Shipping   *ShippingOverride             `yaml:"shipping,omitempty"`
	Fixed      map[string]float64            `yaml:"fixed,omitempty"`
}

type SizeOverride struct {
	BaseCost   *float64 `yaml:"base_cost"`
	BaseWeight *float64 `yaml:"base_weight"`
}

type AdjustmentOverride struct {
	Cost   *float64 `yaml:"cost"`
	Weight *float64 `yaml:"weight"`
}

type BarrierOverride struct {
	Multiplier *float64 `yaml:"multiplier"`
	Weight     *float64 `yaml:"weight"`
}

type ShippingOverride struct {
	AirPerGram        *float64 `yaml:"air_per_gram"`
	SeaPerGram        *float64 `yaml:"sea_per_gram"`
	MinimumCharge     *float64 `yaml:"minimum_charge"`
	DefaultSeaPortion *float64 `yaml:"default_sea_portion"`
}

// Parse decodes an override document. Unknown keys are rejected so a typo cannot
// silently leave a price unchanged.
func Parse(data []byte) (Overrides, error) {
	var o Overrides
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return Overrides{}, fmt.Errorf("decode catalog overrides: %w", err)
	}
	return o, nil
}

// Load reads path and applies it on top of base.
func Load(path string, base *pricing.Catalog) (*pricing.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog overrides: %w", err)
	}
	o, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return o.Apply(base)
}

// Apply returns a validated clone of base with the overrides applied. base is not
// modified.
func (o Overrides) Apply(base *pricing.Catalog) (*pricing.Catalog, error) {
	c := base.Clone()
	var errs []error
	if o.Version != "" {
		c.Version = o.Version
	}

	for label, ov := range o.Sizes {
		s, err := pricing.ParseSize(label)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		spec := c.Sizes[s]
		set(&spec.Pricing.BaseCost, ov.BaseCost)
		set(&spec.Pricing.BaseWeight, ov.BaseWeight)
		c.Sizes[s] = spec
	}

	errs = applyAdjustments(errs, c.Shapes, o.Shapes, pricing.ParseShape)
	errs = applyAdjustments(errs, c.Materials, o.Materials, pricing.ParseMaterial)
	errs = applyAdjustments(errs, c.Stiffness, o.Stiffness, pricing.ParseStiffness)
	errs = applyAdjustments(errs, c.Closures, o.Closures, pricing.ParseClosure)
	errs = applyAdjustments(errs, c.Surfaces, o.Surfaces, pricing.ParseSurface)

	for n, ov := range o.Designs {
		adj, ok := c.Designs[n]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: design count %d", pricing.ErrUnknownOption, n))
			continue
		}
		set(&adj.Cost, ov.Cost)
		set(&adj.Weight, ov.Weight)
		c.Designs[n] = adj
	}

	for label, ov := range o.Barriers {
		b, err := pricing.ParseBarrier(label)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f := c.Barriers[b]
		set(&f.Multiplier, ov.Multiplier)
		set(&f.Weight, ov.Weight)
		c.Barriers[b] = f
	}

	for label, mult := range o.Quantities {
		i := tierIndex(c.Tiers, label)
		if i < 0 {
			errs = append(errs, fmt.Errorf("%w: %q", pricing.ErrUnknownQuantityTier, label))
			continue
		}
		c.Tiers[i].Multiplier = mult
	}

	if s := o.Shipping; s != nil {
		set(&c.Shipping.AirPerGram, s.AirPerGram)
		set(&c.Shipping.SeaPerGram, s.SeaPerGram)
		set(&c.Shipping.MinimumCharge, s.MinimumCharge)
		set(&c.Shipping.DefaultSeaPortion, s.DefaultSeaPortion)
	}

	for key, v := range o.Fixed {
		field := fixedField(&c.Fixed, key)
		if field == nil {
			errs = append(errs, fmt.Errorf("unknown fixed cost %q", key))
			continue
		}
		*field = v
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("apply catalog overrides: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog %q: %w", c.Version, err)
	}
	return c, nil
}

func applyAdjustments[K comparable](errs []error, table map[K]pricing.Adjustment, overrides map[string]AdjustmentOverride, parse func(string) (K, error)) []error {
	for label, ov := range overrides {
		k, err := parse(label)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		adj := table[k]
		set(&adj.Cost, ov.Cost)
		set(&adj.Weight, ov.Weight)
		table[k] = adj
	}
	return errs
}

func set(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func tierIndex(tiers []pricing.QuantityTier, label string) int {
	for i, t := range tiers {
		if t.Label == label {
			return i
		}
	}
	return -1
}

func fixedField(f *pricing.FixedCosts, key string) *float64 {
	switch key {
	case "spout_per_unit":
		return &f.SpoutPerUnit
	case "spout_per_unit_compostable":
		return &f.SpoutPerUnitCompostable
	case "spout_setup":
		return &f.SpoutSetup
	case "tin_tie_per_unit":
		return &f.TinTiePerUnit
	case "valve_per_unit":
		return &f.ValvePerUnit
	case "valve_per_unit_compostable":
		return &f.ValvePerUnitCompostable
	case "laser_scoring_per_unit":
		return &f.LaserScoringPerUnit
	case "spot_uv_per_unit":
		return &f.SpotUVPerUnit
	case "foil_per_unit":
		return &f.FoilPerUnit
	case "foil_setup":
		return &f.FoilSetup
	case "emboss_per_unit":
		return &f.EmbossPerUnit
	case "emboss_setup":
		return &f.EmbossSetup
	case "soft_touch_setup":
		return &f.SoftTouchSetup
	case "die_cut_setup":
		return &f.DieCutSetup
	}
	return nil
}
