package pricing

// Composition is the output of the cost composer. UnitCost is the structural cost
// before quantity breaks; fixed and setup costs are kept apart because they are
// amortized differently.
type Composition struct {
	CostMultiplier   float64
	WeightMultiplier float64
	UnitCost         float64
	UnitWeight       float64
	FixedCostPerUnit float64
	SetupCostTotal   float64
}

// Compose combines resolved factors in a fixed order: percentage adjustments, then the
// barrier multiplier, then the size base, then flat per-unit extras and setup charges.
func Compose(cfg Configuration, f FactorSet) Composition {
	costMul, weightMul := 1.0, 1.0
	for _, a := range f.percentages() {
		costMul += a.Cost / 100
		weightMul += a.Weight / 100
	}

	costMul *= f.Barrier.Multiplier
	weightMul += f.Barrier.Weight / 100

	fixed, setup := extras(cfg, f.Fixed)
	return Composition{
		CostMultiplier:   costMul,
		WeightMultiplier: weightMul,
		UnitCost:         f.Size.Pricing.BaseCost * costMul,
		UnitWeight:       f.Size.Pricing.BaseWeight * weightMul,
		FixedCostPerUnit: fixed,
		SetupCostTotal:   setup,
	}
}

func extras(cfg Configuration, fc FixedCosts) (perUnit, setup float64) {
	switch cfg.Closure {
	case ClosureSpout:
		perUnit += byMaterial(cfg.Material, fc.SpoutPerUnit, fc.SpoutPerUnitCompostable)
		setup += fc.SpoutSetup
	case ClosureTinTie:
		perUnit += fc.TinTiePerUnit
	case ClosureNone, ClosureRegularZipper, ClosurePocketZipper, ClosureSliderZipper,
		ClosureChildResistantZipper, ClosureVelcroZipper:
	default:
		invariant("closure %v has no fixed-cost rule", cfg.Closure)
	}

	if cfg.DegassingValve {
		perUnit += byMaterial(cfg.Material, fc.ValvePerUnit, fc.ValvePerUnitCompostable)
	}
	if cfg.LaserScoring {
		perUnit += fc.LaserScoringPerUnit
	}

	for _, s := range cfg.SurfaceSet() {
		switch s {
		case SurfaceSpotUV:
			perUnit += fc.SpotUVPerUnit
		case SurfaceFoilStamping:
			perUnit += fc.FoilPerUnit
			setup += fc.FoilSetup
		case SurfaceEmbossing:
			perUnit += fc.EmbossPerUnit
			setup += fc.EmbossSetup
		case SurfaceSoftTouchMatte:
			setup += fc.SoftTouchSetup
		case SurfaceGloss, SurfaceMatte:
		default:
			invariant("surface %v has no fixed-cost rule", s)
		}
	}

	if cfg.IrregularDieCut {
		setup += fc.DieCutSetup
	}
	return perUnit, setup
}

// byMaterial picks the compostable rate for the compostable family and the regular
// rate for the other two.
func byMaterial(m Material, regular, compostable float64) float64 {
	switch m {
	case MaterialCompostable:
		return compostable
	case MaterialPCRBio, MaterialMonoRecyclable:
		return regular
	}
	invariant("material %v has no fixed-cost rate", m)
	return 0
}
