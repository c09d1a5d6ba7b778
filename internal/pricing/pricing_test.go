package pricing

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func boundaryConfig() Configuration {
	return Configuration{
		Shape:     ShapeThreeSideSeal,
		Material:  MaterialMonoRecyclable,
		Size:      SizeXXXS,
		Barrier:   BarrierLow,
		Stiffness: StiffnessUnlined,
		Closure:   ClosureNone,
		Quantity:  "100 (Digital print)",
		Designs:   1,
		Shipping:  ShippingAir,
	}
}

func standardConfig() Configuration {
	return Configuration{
		Shape:     ShapeStandUp,
		Material:  MaterialPCRBio,
		Size:      SizeM,
		Barrier:   BarrierHigh,
		Stiffness: StiffnessUnlined,
		Closure:   ClosureRegularZipper,
		Surfaces:  []Surface{SurfaceMatte},
		Quantity:  "1,000 (Digital print)",
		Designs:   2,
		Shipping:  ShippingDual,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := NewCatalogStore(Default())
	if err != nil {
		t.Fatalf("NewCatalogStore: %v", err)
	}
	return NewEngine(store)
}

func TestPrice_BoundaryScenario(t *testing.T) {
	q, err := newTestEngine(t).Price(boundaryConfig())
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	b := q.Breakdown

	nearlyEqual(t, "unitCost", b.UnitCost, 0.08*0.98*9)
	nearlyEqual(t, "unitWeight", b.UnitWeight, 3.0*0.84)
	nearlyEqual(t, "shippingPerUnit", b.ShippingPerUnit, 0.40)
	nearlyEqual(t, "fixedCostPerUnit", b.FixedCostPerUnit, 0)
	nearlyEqual(t, "setupCostPerUnit", b.SetupCostPerUnit, 0)
	nearlyEqual(t, "currentUnitPrice", b.CurrentUnitPrice, 1.1056)
	nearlyEqual(t, "totalInvestment", b.TotalInvestment, 110.56)

	for name, v := range map[string]float64{
		"unitCost": b.UnitCost, "unitWeight": b.UnitWeight, "shipping": b.ShippingPerUnit,
		"price": b.CurrentUnitPrice, "total": b.TotalInvestment,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}
	if b.CurrentUnitPrice <= 0 {
		t.Fatalf("currentUnitPrice = %v, want positive", b.CurrentUnitPrice)
	}
	if b.QuantityUnits != 100 || b.Designs != 1 || b.PrintMethod != PrintDigital {
		t.Fatalf("unexpected display fields: %+v", b)
	}
	if q.Package.Shape != "3 Side Seal Pouch" || q.Package.Closure != "No closure" {
		t.Fatalf("unexpected package labels: %+v", q.Package)
	}
	if !q.Package.StructureFound {
		t.Fatalf("expected a catalogued structure for mono/low/unlined")
	}
}

func TestPrice_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	cfg := standardConfig()
	cfg.Surfaces = []Surface{SurfaceFoilStamping, SurfaceMatte, SurfaceSpotUV}
	cfg.DegassingValve = true

	first, err := e.Price(cfg)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	second, err := e.Price(cfg)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated price differs:\n%+v\n%+v", first, second)
	}

	reordered := cfg
	reordered.Surfaces = []Surface{SurfaceSpotUV, SurfaceMatte, SurfaceFoilStamping, SurfaceMatte}
	third, err := e.Price(reordered)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if first.Breakdown != third.Breakdown {
		t.Fatalf("surface order changed the breakdown:\n%+v\n%+v", first.Breakdown, third.Breakdown)
	}
}

func TestPrice_TotalIdentity(t *testing.T) {
	c := Default()
	for _, tier := range c.Tiers {
		for _, method := range ShippingMethods {
			cfg := standardConfig()
			cfg.Quantity = tier.Label
			cfg.Shipping = method
			cfg.Closure = ClosureSpout
			cfg.IrregularDieCut = true

			b, err := PriceWith(c, cfg)
			if err != nil {
				t.Fatalf("PriceWith(%s): %v", tier.Label, err)
			}
			if b.TotalInvestment != b.CurrentUnitPrice*float64(b.QuantityUnits) {
				t.Fatalf("%s/%s: total %v != %v × %d", tier.Label, method, b.TotalInvestment, b.CurrentUnitPrice, b.QuantityUnits)
			}
		}
	}
}

func TestPrice_UnknownTier(t *testing.T) {
	cfg := standardConfig()
	cfg.Quantity = "1,234 units"

	q, err := newTestEngine(t).Price(cfg)
	if !errors.Is(err, ErrUnknownQuantityTier) {
		t.Fatalf("err = %v, want ErrUnknownQuantityTier", err)
	}
	if !reflect.DeepEqual(q, Quote{}) {
		t.Fatalf("expected no partial output, got %+v", q)
	}
}

func TestPrice_TierLabelIsExact(t *testing.T) {
	cfg := standardConfig()
	cfg.Quantity = "1000 (Digital print)"
	if _, err := PriceWith(Default(), cfg); !errors.Is(err, ErrUnknownQuantityTier) {
		t.Fatalf("err = %v, want ErrUnknownQuantityTier", err)
	}
}

func TestResolve_PanicsOnUnknownDimension(t *testing.T) {
	cfg := standardConfig()
	cfg.Shape = Shape(42)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for an unknown shape")
		}
	}()
	_, _ = Resolve(Default(), cfg)
}

func TestCompose_Order(t *testing.T) {
	c := Default()
	cfg := standardConfig()
	f, err := Resolve(c, cfg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	comp := Compose(cfg, f)

	// designs 10, stand up 0, PCR 0, unlined 0, zipper 8, matte 3; then high barrier ×1.18.
	nearlyEqual(t, "costMultiplier", comp.CostMultiplier, 1.21*1.18)
	// weights: zipper 7 + high barrier 8.
	nearlyEqual(t, "weightMultiplier", comp.WeightMultiplier, 1.15)
	nearlyEqual(t, "unitCost", comp.UnitCost, 0.20*1.21*1.18)
	nearlyEqual(t, "unitWeight", comp.UnitWeight, 11*1.15)
}

func TestCompose_BarrierDoesNotPerturbPercentages(t *testing.T) {
	c := Default()
	low := standardConfig()
	low.Barrier = BarrierLow
	alu := standardConfig()
	alu.Barrier = BarrierAluminum

	fl, _ := Resolve(c, low)
	fa, _ := Resolve(c, alu)
	nearlyEqual(t, "cost ratio", Compose(alu, fa).CostMultiplier/Compose(low, fl).CostMultiplier, 1.30)
}

func TestCompose_SpoutCostDependsOnMaterial(t *testing.T) {
	c := Default()
	fixed := func(m Material) float64 {
		cfg := standardConfig()
		cfg.Closure = ClosureSpout
		cfg.Material = m
		cfg.Surfaces = nil
		f, err := Resolve(c, cfg)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		return Compose(cfg, f).FixedCostPerUnit
	}

	nearlyEqual(t, "compostable spout", fixed(MaterialCompostable), 0.15)
	nearlyEqual(t, "mono spout", fixed(MaterialMonoRecyclable), 0.10)
	nearlyEqual(t, "pcr spout", fixed(MaterialPCRBio), 0.10)
}

func TestCompose_ExtrasAndSetup(t *testing.T) {
	c := Default()
	cfg := standardConfig()
	cfg.Closure = ClosureTinTie
	cfg.Material = MaterialCompostable
	cfg.DegassingValve = true
	cfg.LaserScoring = true
	cfg.IrregularDieCut = true
	cfg.Surfaces = []Surface{SurfaceSpotUV, SurfaceFoilStamping, SurfaceEmbossing, SurfaceSoftTouchMatte}

	f, err := Resolve(c, cfg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	comp := Compose(cfg, f)

	// tin tie 0.06, compostable valve 0.10, laser 0.02, spot UV 0.03, foil 0.05, emboss 0.04
	nearlyEqual(t, "fixedCostPerUnit", comp.FixedCostPerUnit, 0.30)
	// foil 90, emboss 120, soft touch 60, die cut 200
	nearlyEqual(t, "setupCostTotal", comp.SetupCostTotal, 470)

	b, err := PriceWith(c, cfg)
	if err != nil {
		t.Fatalf("PriceWith: %v", err)
	}
	nearlyEqual(t, "setupCostPerUnit", b.SetupCostPerUnit, 0.47)
}

func TestQuantity_Monotonic(t *testing.T) {
	c := Default()
	prev := math.Inf(1)
	for _, tier := range c.Tiers {
		cfg := standardConfig()
		cfg.Quantity = tier.Label
		b, err := PriceWith(c, cfg)
		if err != nil {
			t.Fatalf("PriceWith(%s): %v", tier.Label, err)
		}
		if b.UnitCost >= prev {
			t.Fatalf("%s: unit cost %v did not fall below %v", tier.Label, b.UnitCost, prev)
		}
		prev = b.UnitCost
	}

	for label, want := range map[string]float64{
		"100 (Digital print)":   9.00,
		"1,000 (Digital print)": 1.00,
		"500,000 (Flexo print)": 0.10,
		"10,000 (Flexo print)":  0.36,
		"5,000 (Digital print)": 0.48,
		"100,000 (Flexo print)": 0.14,
		"250 (Digital print)":   4.20,
		"2,000 (Digital print)": 0.72,
		"50,000 (Flexo print)":  0.19,
		"20,000 (Flexo print)":  0.26,
		"3,000 (Digital print)": 0.60,
		"500 (Digital print)":   2.10,
	} {
		tier, ok := c.Tier(label)
		if !ok {
			t.Fatalf("tier %q missing", label)
		}
		nearlyEqual(t, label, tier.Multiplier, want)
	}
}

func TestQuantity_ExtrasNotDiscounted(t *testing.T) {
	c := Default()
	small := standardConfig()
	small.Closure = ClosureTinTie
	small.Quantity = "100 (Digital print)"
	large := small
	large.Quantity = "500,000 (Flexo print)"

	bs, _ := PriceWith(c, small)
	bl, _ := PriceWith(c, large)
	nearlyEqual(t, "fixed small", bs.FixedCostPerUnit, 0.06)
	nearlyEqual(t, "fixed large", bl.FixedCostPerUnit, 0.06)
	nearlyEqual(t, "unit cost ratio", bs.UnitCost/bl.UnitCost, 90)
}

func TestShipping_Floor(t *testing.T) {
	rates := Default().Shipping
	for _, q := range []int{100, 250, 500} {
		got := ShippingCostPerUnit(2.52, q, ShippingAir, 0.9, rates)
		if got != 40/float64(q) {
			t.Fatalf("q=%d: shipping per unit = %v, want exactly %v", q, got, 40/float64(q))
		}
	}
}

func TestShipping_AboveFloor(t *testing.T) {
	rates := Default().Shipping
	nearlyEqual(t, "air", ShippingCostPerUnit(11, 100000, ShippingAir, 0.9, rates), 11*0.0125)
	nearlyEqual(t, "sea", ShippingCostPerUnit(11, 100000, ShippingSea, 0.9, rates), 11*0.0035)
	nearlyEqual(t, "dual", ShippingCostPerUnit(11, 100000, ShippingDual, 0.9, rates), 11*0.0044)
	nearlyEqual(t, "dual half", ShippingCostPerUnit(11, 100000, ShippingDual, 0.5, rates), 11*0.008)
}

func TestShipping_SeaPortionOverride(t *testing.T) {
	c := Default()
	cfg := standardConfig()
	cfg.Quantity = "100,000 (Flexo print)"
	half := 0.5
	cfg.SeaPortion = &half

	b, err := PriceWith(c, cfg)
	if err != nil {
		t.Fatalf("PriceWith: %v", err)
	}
	nearlyEqual(t, "shippingPerUnit", b.ShippingPerUnit, b.UnitWeight*0.008)
}

func TestAssemble(t *testing.T) {
	b := Assemble(0.5, 0.1, 200, 0.04, 1000)

	nearlyEqual(t, "setupPerUnit", b.SetupCostPerUnit, 0.2)
	nearlyEqual(t, "currentUnitPrice", b.CurrentUnitPrice, 0.84)
	nearlyEqual(t, "totalInvestment", b.TotalInvestment, 840)
	nearlyEqual(t, "shippingTotal", b.ShippingTotal, 40)
}
