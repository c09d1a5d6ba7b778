package pricing

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
)

// Adjustment is a percentage-typed catalog entry: Cost and Weight are percent deltas
// accumulated into the cost and weight multipliers.
type Adjustment struct {
	Cost   float64
	Weight float64
}

// BarrierFactor multiplies the accumulated cost multiplier and adds Weight percent to
// the weight multiplier.
type BarrierFactor struct {
	Multiplier float64
	Weight     float64
}

// SizePricing is the base unit cost (USD) and base unit weight (grams) of a size class.
type SizePricing struct {
	BaseCost   float64
	BaseWeight float64
}

// SizeDisplay carries the customer-facing dimensions of a size class.
type SizeDisplay struct {
	WidthMM  int
	HeightMM int
	GussetMM int
	Capacity string
}

// SizeSpec is the single record per size class.
type SizeSpec struct {
	Pricing SizePricing
	Display SizeDisplay
}

// QuantityTier is a price break. Label is the exact published key, e.g. "1,000 (Digital print)".
type QuantityTier struct {
	Label      string
	Units      int
	Method     PrintMethod
	Multiplier float64
}

// ShippingRates are per-gram freight rates in USD and the order-level minimum charge.
type ShippingRates struct {
	AirPerGram        float64
	SeaPerGram        float64
	MinimumCharge     float64
	DefaultSeaPortion float64
}

// FixedCosts are flat per-unit extras and one-time setup charges in USD.
type FixedCosts struct {
	SpoutPerUnit            float64
	SpoutPerUnitCompostable float64
	SpoutSetup              float64
	TinTiePerUnit           float64
	ValvePerUnit            float64
	ValvePerUnitCompostable float64
	LaserScoringPerUnit     float64
	SpotUVPerUnit           float64
	FoilPerUnit             float64
	FoilSetup               float64
	EmbossPerUnit           float64
	EmbossSetup             float64
	SoftTouchSetup          float64
	DieCutSetup             float64
}

// Catalog is every lookup table the engine prices against. A published catalog is
// never mutated; build a new one with Clone and publish it through a CatalogStore.
type Catalog struct {
	Version    string
	Sizes      map[SizeClass]SizeSpec
	Shapes     map[Shape]Adjustment
	Materials  map[Material]Adjustment
	Barriers   map[Barrier]BarrierFactor
	Stiffness  map[Stiffness]Adjustment
	Closures   map[Closure]Adjustment
	Surfaces   map[Surface]Adjustment
	Designs    map[int]Adjustment
	Tiers      []QuantityTier
	Shipping   ShippingRates
	Fixed      FixedCosts
	Structures StructureCatalog
}

// Tier looks a quantity tier up by its exact label. There is no interpolation.
func (c *Catalog) Tier(label string) (QuantityTier, bool) {
	for _, t := range c.Tiers {
		if t.Label == label {
			return t, true
		}
	}
	return QuantityTier{}, false
}

// Clone returns a deep copy that can be edited before being published.
func (c *Catalog) Clone() *Catalog {
	out := *c
	out.Sizes = maps.Clone(c.Sizes)
	out.Shapes = maps.Clone(c.Shapes)
	out.Materials = maps.Clone(c.Materials)
	out.Barriers = maps.Clone(c.Barriers)
	out.Stiffness = maps.Clone(c.Stiffness)
	out.Closures = maps.Clone(c.Closures)
	out.Surfaces = maps.Clone(c.Surfaces)
	out.Designs = maps.Clone(c.Designs)
	out.Tiers = slices.Clone(c.Tiers)
	out.Structures = c.Structures.clone()
	return &out
}

// Validate checks that every enumerated value resolves, that every figure is finite,
// and that the price-break table falls strictly as quantity rises.
func (c *Catalog) Validate() error {
	var errs []error
	for _, s := range Sizes {
		spec, ok := c.Sizes[s]
		if !ok {
			errs = append(errs, fmt.Errorf("size %s missing", s))
			continue
		}
		if !positive(spec.Pricing.BaseCost) || !positive(spec.Pricing.BaseWeight) {
			errs = append(errs, fmt.Errorf("size %s: base cost and weight must be positive", s))
		}
	}
	errs = checkAdjustments(errs, "shape", Shapes, c.Shapes)
	errs = checkAdjustments(errs, "material", Materials, c.Materials)
	errs = checkAdjustments(errs, "stiffness", Stiffnesses, c.Stiffness)
	errs = checkAdjustments(errs, "closure", Closures, c.Closures)
	errs = checkAdjustments(errs, "surface", Surfaces, c.Surfaces)
	for _, b := range Barriers {
		f, ok := c.Barriers[b]
		if !ok {
			errs = append(errs, fmt.Errorf("barrier %q missing", b))
			continue
		}
		if !positive(f.Multiplier) || !finite(f.Weight) {
			errs = append(errs, fmt.Errorf("barrier %q: multiplier must be positive and weight finite", b))
		}
	}
	designs := make([]int, 0, MaxDesigns-MinDesigns+1)
	for n := MinDesigns; n <= MaxDesigns; n++ {
		designs = append(designs, n)
	}
	errs = checkAdjustments(errs, "design count", designs, c.Designs)

	if len(c.Tiers) == 0 {
		errs = append(errs, errors.New("quantity tiers missing"))
	}
	seen := make(map[string]bool, len(c.Tiers))
	for i, t := range c.Tiers {
		if seen[t.Label] {
			errs = append(errs, fmt.Errorf("quantity tier %q duplicated", t.Label))
		}
		seen[t.Label] = true
		if t.Units <= 0 || !positive(t.Multiplier) {
			errs = append(errs, fmt.Errorf("quantity tier %q: units and multiplier must be positive", t.Label))
		}
		if i == 0 {
			continue
		}
		prev := c.Tiers[i-1]
		if t.Units <= prev.Units {
			errs = append(errs, fmt.Errorf("quantity tier %q: units must increase", t.Label))
		}
		if !(t.Multiplier < prev.Multiplier) {
			errs = append(errs, fmt.Errorf("quantity tier %q: multiplier must fall below %v", t.Label, prev.Multiplier))
		}
	}

	if !positive(c.Shipping.AirPerGram) || !positive(c.Shipping.SeaPerGram) {
		errs = append(errs, errors.New("shipping rates must be positive"))
	}
	if !nonNegative(c.Shipping.MinimumCharge) {
		errs = append(errs, errors.New("shipping minimum charge must not be negative"))
	}
	if p := c.Shipping.DefaultSeaPortion; !(p >= 0 && p <= 1) {
		errs = append(errs, errors.New("default sea portion must be within [0,1]"))
	}
	for _, f := range c.Fixed.fields() {
		if !nonNegative(f.value) {
			errs = append(errs, fmt.Errorf("fixed cost %s must be a non-negative amount", f.name))
		}
	}
	return errors.Join(errs...)
}

func checkAdjustments[K comparable](errs []error, dimension string, members []K, table map[K]Adjustment) []error {
	for _, m := range members {
		a, ok := table[m]
		if !ok {
			errs = append(errs, fmt.Errorf("%s %v missing", dimension, m))
			continue
		}
		if !finite(a.Cost) || !finite(a.Weight) {
			errs = append(errs, fmt.Errorf("%s %v: cost and weight must be finite", dimension, m))
		}
	}
	return errs
}

// Comparisons are written so that NaN fails them.
func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }
func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }
func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

type fixedField struct {
	name  string
	value float64
}

func (f FixedCosts) fields() []fixedField {
	return []fixedField{
		{"spout_per_unit", f.SpoutPerUnit},
		{"spout_per_unit_compostable", f.SpoutPerUnitCompostable},
		{"spout_setup", f.SpoutSetup},
		{"tin_tie_per_unit", f.TinTiePerUnit},
		{"valve_per_unit", f.ValvePerUnit},
		{"valve_per_unit_compostable", f.ValvePerUnitCompostable},
		{"laser_scoring_per_unit", f.LaserScoringPerUnit},
		{"spot_uv_per_unit", f.SpotUVPerUnit},
		{"foil_per_unit", f.FoilPerUnit},
		{"foil_setup", f.FoilSetup},
		{"emboss_per_unit", f.EmbossPerUnit},
		{"emboss_setup", f.EmbossSetup},
		{"soft_touch_setup", f.SoftTouchSetup},
		{"die_cut_setup", f.DieCutSetup},
	}
}

// Default returns the compiled-in eco digital catalog.
func Default() *Catalog {
	return &Catalog{
		Version: "eco-digital-2024.1",
		Sizes: map[SizeClass]SizeSpec{
			SizeXXXS: {SizePricing{BaseCost: 0.08, BaseWeight: 3.0}, SizeDisplay{WidthMM: 85, HeightMM: 130, GussetMM: 50, Capacity: "1 oz / 30 g"}},
			SizeXXS:  {SizePricing{BaseCost: 0.10, BaseWeight: 4.5}, SizeDisplay{WidthMM: 100, HeightMM: 150, GussetMM: 60, Capacity: "2 oz / 60 g"}},
			SizeXS:   {SizePricing{BaseCost: 0.13, BaseWeight: 6.0}, SizeDisplay{WidthMM: 120, HeightMM: 180, GussetMM: 70, Capacity: "4 oz / 110 g"}},
			SizeS:    {SizePricing{BaseCost: 0.16, BaseWeight: 8.0}, SizeDisplay{WidthMM: 140, HeightMM: 200, GussetMM: 80, Capacity: "8 oz / 225 g"}},
			SizeM:    {SizePricing{BaseCost: 0.20, BaseWeight: 11.0}, SizeDisplay{WidthMM: 160, HeightMM: 230, GussetMM: 90, Capacity: "12 oz / 340 g"}},
			SizeL:    {SizePricing{BaseCost: 0.26, BaseWeight: 15.0}, SizeDisplay{WidthMM: 190, HeightMM: 270, GussetMM: 100, Capacity: "16 oz / 450 g"}},
			SizeXL:   {SizePricing{BaseCost: 0.34, BaseWeight: 20.0}, SizeDisplay{WidthMM: 230, HeightMM: 320, GussetMM: 110, Capacity: "32 oz / 900 g"}},
			SizeXXL:  {SizePricing{BaseCost: 0.45, BaseWeight: 27.0}, SizeDisplay{WidthMM: 280, HeightMM: 380, GussetMM: 130, Capacity: "5 lb / 2.2 kg"}},
		},
		Shapes: map[Shape]Adjustment{
			ShapeStandUp:       {Cost: 0, Weight: 0},
			ShapeThreeSideSeal: {Cost: -10, Weight: -12},
			ShapeFlatBottom:    {Cost: 30, Weight: 22},
			ShapeSideGusset:    {Cost: 15, Weight: 10},
			ShapeQuadSeal:      {Cost: 22, Weight: 15},
			ShapeCenterSeal:    {Cost: -5, Weight: -6},
			ShapeShaped:        {Cost: 18, Weight: 4},
		},
		Materials: map[Material]Adjustment{
			MaterialPCRBio:         {Cost: 0, Weight: 0},
			MaterialMonoRecyclable: {Cost: 8, Weight: -4},
			MaterialCompostable:    {Cost: 35, Weight: 6},
		},
		Barriers: map[Barrier]BarrierFactor{
			BarrierLow:      {Multiplier: 1.00, Weight: 0},
			BarrierMid:      {Multiplier: 1.08, Weight: 4},
			BarrierHigh:     {Multiplier: 1.18, Weight: 8},
			BarrierAluminum: {Multiplier: 1.30, Weight: 14},
		},
		Stiffness: map[Stiffness]Adjustment{
			StiffnessUnlined:    {Cost: 0, Weight: 0},
			StiffnessPaperLined: {Cost: 12, Weight: 28},
		},
		Closures: map[Closure]Adjustment{
			ClosureNone:                 {Cost: 0, Weight: 0},
			ClosureRegularZipper:        {Cost: 8, Weight: 7},
			ClosurePocketZipper:         {Cost: 10, Weight: 8},
			ClosureSliderZipper:         {Cost: 20, Weight: 14},
			ClosureChildResistantZipper: {Cost: 25, Weight: 12},
			ClosureVelcroZipper:         {Cost: 14, Weight: 9},
			ClosureSpout:                {Cost: 0, Weight: 18},
			ClosureTinTie:               {Cost: 0, Weight: 6},
		},
		Surfaces: map[Surface]Adjustment{
			SurfaceGloss:          {Cost: 0, Weight: 0},
			SurfaceMatte:          {Cost: 3, Weight: 0},
			SurfaceSoftTouchMatte: {Cost: 7, Weight: 1},
			SurfaceSpotUV:         {Cost: 0, Weight: 0},
			SurfaceFoilStamping:   {Cost: 0, Weight: 0},
			SurfaceEmbossing:      {Cost: 0, Weight: 0},
		},
		Designs: map[int]Adjustment{
			1: {Cost: 0, Weight: 0},
			2: {Cost: 10, Weight: 0},
			3: {Cost: 18, Weight: 0},
			4: {Cost: 25, Weight: 0},
			5: {Cost: 30, Weight: 0},
		},
		Tiers: []QuantityTier{
			{Label: "100 (Digital print)", Units: 100, Method: PrintDigital, Multiplier: 9.00},
			{Label: "250 (Digital print)", Units: 250, Method: PrintDigital, Multiplier: 4.20},
			{Label: "500 (Digital print)", Units: 500, Method: PrintDigital, Multiplier: 2.10},
			{Label: "1,000 (Digital print)", Units: 1000, Method: PrintDigital, Multiplier: 1.00},
			{Label: "2,000 (Digital print)", Units: 2000, Method: PrintDigital, Multiplier: 0.72},
			{Label: "3,000 (Digital print)", Units: 3000, Method: PrintDigital, Multiplier: 0.60},
			{Label: "5,000 (Digital print)", Units: 5000, Method: PrintDigital, Multiplier: 0.48},
			{Label: "10,000 (Flexo print)", Units: 10000, Method: PrintFlexo, Multiplier: 0.36},
			{Label: "20,000 (Flexo print)", Units: 20000, Method: PrintFlexo, Multiplier: 0.26},
			{Label: "50,000 (Flexo print)", Units: 50000, Method: PrintFlexo, Multiplier: 0.19},
			{Label: "100,000 (Flexo print)", Units: 100000, Method: PrintFlexo, Multiplier: 0.14},
			{Label: "500,000 (Flexo print)", Units: 500000, Method: PrintFlexo, Multiplier: 0.10},
		},
		Shipping: ShippingRates{
			AirPerGram:        0.0125,
			SeaPerGram:        0.0035,
			MinimumCharge:     40,
			DefaultSeaPortion: 0.9,
		},
		Fixed: FixedCosts{
			SpoutPerUnit:            0.10,
			SpoutPerUnitCompostable: 0.15,
			SpoutSetup:              150,
			TinTiePerUnit:           0.06,
			ValvePerUnit:            0.07,
			ValvePerUnitCompostable: 0.10,
			LaserScoringPerUnit:     0.02,
			SpotUVPerUnit:           0.03,
			FoilPerUnit:             0.05,
			FoilSetup:               90,
			EmbossPerUnit:           0.04,
			EmbossSetup:             120,
			SoftTouchSetup:          60,
			DieCutSetup:             200,
		},
		Structures: defaultStructures(),
	}
}
