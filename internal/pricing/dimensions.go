package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOption is returned when a label does not name a member of a dimension.
var ErrUnknownOption = errors.New("unknown option")

// Shape is the physical form factor of a pouch.
type Shape uint8

const (
	ShapeStandUp Shape = iota + 1
	ShapeThreeSideSeal
	ShapeFlatBottom
	ShapeSideGusset
	ShapeQuadSeal
	ShapeCenterSeal
	ShapeShaped
)

// Shapes lists every shape in display order.
var Shapes = []Shape{ShapeStandUp, ShapeThreeSideSeal, ShapeFlatBottom, ShapeSideGusset, ShapeQuadSeal, ShapeCenterSeal, ShapeShaped}

func (s Shape) String() string {
	switch s {
	case ShapeStandUp:
		return "Stand Up Pouch"
	case ShapeThreeSideSeal:
		return "3 Side Seal Pouch"
	case ShapeFlatBottom:
		return "Flat Bottom Pouch (Box Bottom)"
	case ShapeSideGusset:
		return "Side Gusset Pouch"
	case ShapeQuadSeal:
		return "Quad Seal Pouch"
	case ShapeCenterSeal:
		return "Center Seal Pouch (Pillow)"
	case ShapeShaped:
		return "Shaped Pouch"
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// Material is the film family a pouch is made from.
type Material uint8

const (
	MaterialPCRBio Material = iota + 1
	MaterialMonoRecyclable
	MaterialCompostable
)

// Materials lists every material family in display order.
var Materials = []Material{MaterialPCRBio, MaterialMonoRecyclable, MaterialCompostable}

func (m Material) String() string {
	switch m {
	case MaterialPCRBio:
		return "PCR or Bio Plastic"
	case MaterialMonoRecyclable:
		return "Mono Recyclable Plastic"
	case MaterialCompostable:
		return "Biodegradable and Compostable"
	}
	return fmt.Sprintf("Material(%d)", uint8(m))
}

// SizeClass is one of the eight ordered size classes.
type SizeClass uint8

const (
	SizeXXXS SizeClass = iota + 1
	SizeXXS
	SizeXS
	SizeS
	SizeM
	SizeL
	SizeXL
	SizeXXL
)

// Sizes lists every size class from smallest to largest.
var Sizes = []SizeClass{SizeXXXS, SizeXXS, SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

func (s SizeClass) String() string {
	switch s {
	case SizeXXXS:
		return "XXXS"
	case SizeXXS:
		return "XXS"
	case SizeXS:
		return "XS"
	case SizeS:
		return "S"
	case SizeM:
		return "M"
	case SizeL:
		return "L"
	case SizeXL:
		return "XL"
	case SizeXXL:
		return "XXL"
	}
	return fmt.Sprintf("SizeClass(%d)", uint8(s))
}

// Barrier is the oxygen/moisture barrier level of the laminate.
type Barrier uint8

const (
	BarrierLow Barrier = iota + 1
	BarrierMid
	BarrierHigh
	BarrierAluminum
)

// Barriers lists every barrier level from lowest to highest.
var Barriers = []Barrier{BarrierLow, BarrierMid, BarrierHigh, BarrierAluminum}

func (b Barrier) String() string {
	switch b {
	case BarrierLow:
		return "Low barrier (No window)"
	case BarrierMid:
		return "Mid clear mid barrier (Optional Window)"
	case BarrierHigh:
		return "High clear high barrier (Optional Window)"
	case BarrierAluminum:
		return "Aluminum highest barrier (No window)"
	}
	return fmt.Sprintf("Barrier(%d)", uint8(b))
}

// Stiffness says whether the laminate carries a paper lining.
type Stiffness uint8

const (
	StiffnessUnlined Stiffness = iota + 1
	StiffnessPaperLined
)

// Stiffnesses lists both stiffness options.
var Stiffnesses = []Stiffness{StiffnessUnlined, StiffnessPaperLined}

func (s Stiffness) String() string {
	switch s {
	case StiffnessUnlined:
		return "Without Paper Lining (softer)"
	case StiffnessPaperLined:
		return "With Paper Lining (stiffer)"
	}
	return fmt.Sprintf("Stiffness(%d)", uint8(s))
}

// Closure is the reclosing or dispensing feature of a pouch.
type Closure uint8

const (
	ClosureNone Closure = iota + 1
	ClosureRegularZipper
	ClosurePocketZipper
	ClosureSliderZipper
	ClosureChildResistantZipper
	ClosureVelcroZipper
	ClosureSpout
	ClosureTinTie
)

// Closures lists every closure in display order.
var Closures = []Closure{
	ClosureNone, ClosureRegularZipper, ClosurePocketZipper, ClosureSliderZipper,
	ClosureChildResistantZipper, ClosureVelcroZipper, ClosureSpout, ClosureTinTie,
}

func (c Closure) String() string {
	switch c {
	case ClosureNone:
		return "No"
	case ClosureRegularZipper:
		return "Regular Zipper"
	case ClosurePocketZipper:
		return "Pocket Zipper"
	case ClosureSliderZipper:
		return "Slider Zipper"
	case ClosureChildResistantZipper:
		return "Child Resistant Zipper"
	case ClosureVelcroZipper:
		return "Velcro Zipper"
	case ClosureSpout:
		return "Spout"
	case ClosureTinTie:
		return "Tin Tie"
	}
	return fmt.Sprintf("Closure(%d)", uint8(c))
}

// Surface is a print finish or embellishment. A configuration carries a set of them.
type Surface uint8

const (
	SurfaceGloss Surface = iota + 1
	SurfaceMatte
	SurfaceSoftTouchMatte
	SurfaceSpotUV
	SurfaceFoilStamping
	SurfaceEmbossing
)

// Surfaces lists every surface treatment in evaluation order.
var Surfaces = []Surface{SurfaceGloss, SurfaceMatte, SurfaceSoftTouchMatte, SurfaceSpotUV, SurfaceFoilStamping, SurfaceEmbossing}

func (s Surface) String() string {
	switch s {
	case SurfaceGloss:
		return "Gloss Finish"
	case SurfaceMatte:
		return "Matte Finish"
	case SurfaceSoftTouchMatte:
		return "Soft Touch Matte"
	case SurfaceSpotUV:
		return "Spot UV Coating"
	case SurfaceFoilStamping:
		return "Foil Stamping"
	case SurfaceEmbossing:
		return "Embossing"
	}
	return fmt.Sprintf("Surface(%d)", uint8(s))
}

// ShippingMethod selects the freight mode.
type ShippingMethod uint8

const (
	ShippingAir ShippingMethod = iota + 1
	ShippingSea
	ShippingDual
)

// ShippingMethods lists every shipping method.
var ShippingMethods = []ShippingMethod{ShippingAir, ShippingSea, ShippingDual}

func (m ShippingMethod) String() string {
	switch m {
	case ShippingAir:
		return "air"
	case ShippingSea:
		return "sea"
	case ShippingDual:
		return "dual"
	}
	return fmt.Sprintf("ShippingMethod(%d)", uint8(m))
}

// PrintMethod is the press a quantity tier is produced on.
type PrintMethod uint8

const (
	PrintDigital PrintMethod = iota + 1
	PrintFlexo
)

func (p PrintMethod) String() string {
	switch p {
	case PrintDigital:
		return "Digital"
	case PrintFlexo:
		return "Flexo"
	}
	return fmt.Sprintf("PrintMethod(%d)", uint8(p))
}

// MinDesigns and MaxDesigns bound the number of artwork designs in one order.
const (
	MinDesigns = 1
	MaxDesigns = 5
)

// ParseShape resolves a shape label, ignoring case and surrounding space.
func ParseShape(label string) (Shape, error) { return parseLabel("shape", label, Shapes) }

// ParseMaterial resolves a material label.
func ParseMaterial(label string) (Material, error) { return parseLabel("material", label, Materials) }

// ParseSize resolves a size class label such as "XS".
func ParseSize(label string) (SizeClass, error) { return parseLabel("size", label, Sizes) }

// ParseBarrier resolves a barrier label. Catalog copy has been seen with mixed casing,
// so matching is case-insensitive.
func ParseBarrier(label string) (Barrier, error) { return parseLabel("barrier", label, Barriers) }

// ParseStiffness resolves a stiffness label.
func ParseStiffness(label string) (Stiffness, error) {
	return parseLabel("stiffness", label, Stiffnesses)
}

// ParseClosure resolves a closure label. An empty label means no closure.
func ParseClosure(label string) (Closure, error) {
	if strings.TrimSpace(label) == "" {
		return ClosureNone, nil
	}
	return parseLabel("closure", label, Closures)
}

// ParseSurface resolves a surface treatment label.
func ParseSurface(label string) (Surface, error) { return parseLabel("surface", label, Surfaces) }

// ParsePrintMethod resolves "Digital" or "Flexo".
func ParsePrintMethod(label string) (PrintMethod, error) {
	return parseLabel("print method", label, []PrintMethod{PrintDigital, PrintFlexo})
}

// ParseShippingMethod resolves "air", "sea" or "dual".
func ParseShippingMethod(label string) (ShippingMethod, error) {
	return parseLabel("shipping method", label, ShippingMethods)
}

func parseLabel[T fmt.Stringer](dimension, label string, members []T) (T, error) {
	want := normalizeLabel(label)
	for _, m := range members {
		if normalizeLabel(m.String()) == want {
			return m, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownOption, dimension, label)
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Shape) UnmarshalText(text []byte) error {
	v, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (m Material) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Material) UnmarshalText(text []byte) error {
	v, err := ParseMaterial(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (s SizeClass) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SizeClass) UnmarshalText(text []byte) error {
	v, err := ParseSize(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (b Barrier) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Barrier) UnmarshalText(text []byte) error {
	v, err := ParseBarrier(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func (s Stiffness) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stiffness) UnmarshalText(text []byte) error {
	v, err := ParseStiffness(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (c Closure) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Closure) UnmarshalText(text []byte) error {
	v, err := ParseClosure(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (s Surface) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Surface) UnmarshalText(text []byte) error {
	v, err := ParseSurface(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (m ShippingMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ShippingMethod) UnmarshalText(text []byte) error {
	v, err := ParseShippingMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (p PrintMethod) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PrintMethod) UnmarshalText(text []byte) error {
	v, err := ParsePrintMethod(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
