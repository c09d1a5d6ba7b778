package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// Placeholder copy used when a laminate is not catalogued.
const (
	PlaceholderStructure = "Custom laminate, confirmed at proof stage"
	PlaceholderFigure    = "Available on request"
)

// PackageDescription is the customer-facing summary shown next to a price.
type PackageDescription struct {
	Shape              string          `json:"shape"`
	Closure            string          `json:"closure"`
	Size               string          `json:"size"`
	Material           string          `json:"material"`
	Barrier            string          `json:"barrier"`
	Stiffness          string          `json:"stiffness"`
	Structure          string          `json:"structure"`
	Thickness          string          `json:"thickness"`
	OTR                string          `json:"otr"`
	WVTR               string          `json:"wvtr"`
	StructureFound     bool            `json:"structure_found"`
	StructureSource    StructureSource `json:"structure_source,omitempty"`
	Surface            string          `json:"surface"`
	AdditionalFeatures string          `json:"additional_features"`
}

// Describe builds the package description for cfg. A missing structure degrades to
// placeholder copy instead of failing.
func Describe(cfg Configuration, c *Catalog) PackageDescription {
	d := PackageDescription{
		Shape:              cfg.Shape.String(),
		Closure:            closureLabel(cfg.Closure),
		Size:               SizeLabel(cfg.Size, mustLookup(c.Sizes, cfg.Size, "size").Display),
		Material:           cfg.Material.String(),
		Barrier:            cfg.Barrier.String(),
		Stiffness:          cfg.Stiffness.String(),
		Surface:            surfaceLabel(cfg.SurfaceSet()),
		AdditionalFeatures: featuresLabel(cfg),
	}

	info, err := ResolveStructure(c.Structures, cfg.Material, cfg.Barrier, cfg.Stiffness)
	switch {
	case err == nil:
		d.Structure = info.Structure
		d.Thickness = info.Thickness
		d.OTR = info.OTR
		d.WVTR = info.WVTR
		d.StructureFound = true
		d.StructureSource = info.Source
	case errors.Is(err, ErrStructureNotFound):
		d.Structure = PlaceholderStructure
		d.Thickness = PlaceholderFigure
		d.OTR = PlaceholderFigure
		d.WVTR = PlaceholderFigure
	default:
		invariant("structure lookup: %v", err)
	}
	return d
}

// SizeLabel renders e.g. "M · 160 x 230 + 90 mm (12 oz)".
func SizeLabel(s SizeClass, d SizeDisplay) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s · %d x %d", s, d.WidthMM, d.HeightMM)
	if d.GussetMM > 0 {
		fmt.Fprintf(&b, " + %d", d.GussetMM)
	}
	b.WriteString(" mm")
	if d.Capacity != "" {
		fmt.Fprintf(&b, " (%s)", d.Capacity)
	}
	return b.String()
}

func closureLabel(c Closure) string {
	if c == ClosureNone {
		return "No closure"
	}
	return c.String()
}

func surfaceLabel(surfaces []Surface) string {
	if len(surfaces) == 0 {
		return "Glossy (standard)"
	}
	parts := make([]string, len(surfaces))
	for i, s := range surfaces {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

func featuresLabel(cfg Configuration) string {
	var parts []string
	if cfg.DegassingValve {
		parts = append(parts, "Degassing Valve")
	}
	if cfg.LaserScoring {
		parts = append(parts, "Laser Scoring")
	}
	if cfg.IrregularDieCut {
		parts = append(parts, "Irregular Die Cut")
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}
