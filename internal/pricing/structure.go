package pricing

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrStructureNotFound reports that neither an exact nor a paper-lined fallback
// structure exists for a material/barrier/stiffness triple.
var ErrStructureNotFound = errors.New("structure not found")

// KraftPaperLayer is inserted after the outer layer when a paper-lined variant is
// synthesized from its unlined base.
const KraftPaperLayer Layer = "Kraft Paper 50gsm"

// PaperLinedThicknessMicrons is the thickness reported for synthesized paper-lined structures.
const PaperLinedThicknessMicrons = 180

// Layer is one ply of a laminate, outermost first.
type Layer string

// StructureSpec is a catalogued laminate.
type StructureSpec struct {
	Layers           []Layer
	ThicknessMicrons int
	OTR              string
	WVTR             string
}

// StructureCatalog is keyed material → barrier → stiffness.
type StructureCatalog map[Material]map[Barrier]map[Stiffness]StructureSpec

func (c StructureCatalog) lookup(m Material, b Barrier, s Stiffness) (StructureSpec, bool) {
	spec, ok := c[m][b][s]
	return spec, ok
}

func (c StructureCatalog) clone() StructureCatalog {
	out := make(StructureCatalog, len(c))
	for m, byBarrier := range c {
		nb := make(map[Barrier]map[Stiffness]StructureSpec, len(byBarrier))
		for b, byStiffness := range byBarrier {
			ns := maps.Clone(byStiffness)
			for s, spec := range ns {
				spec.Layers = slices.Clone(spec.Layers)
				ns[s] = spec
			}
			nb[b] = ns
		}
		out[m] = nb
	}
	return out
}

// StructureSource says how a StructureInfo was obtained.
type StructureSource string

const (
	StructureExact              StructureSource = "exact"
	StructurePaperLinedFallback StructureSource = "paper_lined_fallback"
)

// StructureInfo is the display description of a laminate. It never feeds into cost.
type StructureInfo struct {
	Layers           []Layer         `json:"layers"`
	Structure        string          `json:"structure"`
	ThicknessMicrons int             `json:"thickness_microns"`
	Thickness        string          `json:"thickness"`
	OTR              string          `json:"otr"`
	WVTR             string          `json:"wvtr"`
	Source           StructureSource `json:"source"`
}

// RenderLayers joins layers outermost first.
func RenderLayers(layers []Layer) string {
	parts := make([]string, len(layers))
	for i, l := range layers {
		parts[i] = string(l)
	}
	return strings.Join(parts, " / ")
}

// ResolveStructure looks up the laminate for a triple. When a paper-lined variant is
// not catalogued but its unlined base is, the paper layer is inserted at index 1 and
// the barrier figures of the base are kept.
func ResolveStructure(c StructureCatalog, m Material, b Barrier, s Stiffness) (StructureInfo, error) {
	if spec, ok := c.lookup(m, b, s); ok {
		return newStructureInfo(spec.Layers, spec.ThicknessMicrons, spec, StructureExact), nil
	}

	switch s {
	case StiffnessUnlined:
	case StiffnessPaperLined:
		if base, ok := c.lookup(m, b, StiffnessUnlined); ok {
			return newStructureInfo(withPaperLining(base.Layers), PaperLinedThicknessMicrons, base, StructurePaperLinedFallback), nil
		}
	default:
		invariant("stiffness %v has no structure rule", s)
	}
	return StructureInfo{}, fmt.Errorf("%w: %s / %s / %s", ErrStructureNotFound, m, b, s)
}

func withPaperLining(base []Layer) []Layer {
	at := min(1, len(base))
	return slices.Insert(slices.Clone(base), at, KraftPaperLayer)
}

func newStructureInfo(layers []Layer, microns int, figures StructureSpec, src StructureSource) StructureInfo {
	layers = slices.Clone(layers)
	return StructureInfo{
		Layers:           layers,
		Structure:        RenderLayers(layers),
		ThicknessMicrons: microns,
		Thickness:        fmt.Sprintf("%d microns", microns),
		OTR:              figures.OTR,
		WVTR:             figures.WVTR,
		Source:           src,
	}
}

func defaultStructures() StructureCatalog {
	return StructureCatalog{
		MaterialPCRBio: {
			BarrierLow: {
				StiffnessUnlined:    {Layers: []Layer{"PET 12μm", "PCR PE 100μm"}, ThicknessMicrons: 115, OTR: "< 120 cc/m²/24h", WVTR: "< 5.0 g/m²/24h"},
				StiffnessPaperLined: {Layers: []Layer{"PET 12μm", KraftPaperLayer, "PCR PE 80μm"}, ThicknessMicrons: 165, OTR: "< 110 cc/m²/24h", WVTR: "< 4.5 g/m²/24h"},
			},
			BarrierMid: {
				StiffnessUnlined: {Layers: []Layer{"PET 12μm", "Clear SiOx PET 12μm", "PCR PE 100μm"}, ThicknessMicrons: 125, OTR: "< 2.0 cc/m²/24h", WVTR: "< 2.0 g/m²/24h"},
			},
			BarrierHigh: {
				StiffnessUnlined:    {Layers: []Layer{"PET 12μm", "EVOH co-ex PCR PE 110μm"}, ThicknessMicrons: 130, OTR: "< 1.0 cc/m²/24h", WVTR: "< 1.5 g/m²/24h"},
				StiffnessPaperLined: {Layers: []Layer{"PET 12μm", KraftPaperLayer, "EVOH co-ex PCR PE 90μm"}, ThicknessMicrons: 170, OTR: "< 1.0 cc/m²/24h", WVTR: "< 1.5 g/m²/24h"},
			},
			BarrierAluminum: {
				StiffnessUnlined: {Layers: []Layer{"PET 12μm", "AL 7μm", "PCR PE 100μm"}, ThicknessMicrons: 120, OTR: "< 0.1 cc/m²/24h", WVTR: "< 0.1 g/m²/24h"},
			},
		},
		MaterialMonoRecyclable: {
			BarrierLow: {
				StiffnessUnlined: {Layers: []Layer{"MDO-PE 25μm", "PE 90μm"}, ThicknessMicrons: 115, OTR: "< 150 cc/m²/24h", WVTR: "< 4.0 g/m²/24h"},
			},
			BarrierMid: {
				StiffnessUnlined: {Layers: []Layer{"MDO-PE 25μm", "Clear AlOx MDO-PE 25μm", "PE 80μm"}, ThicknessMicrons: 130, OTR: "< 3.0 cc/m²/24h", WVTR: "< 2.5 g/m²/24h"},
			},
			BarrierHigh: {
				StiffnessUnlined: {Layers: []Layer{"MDO-PE 25μm", "EVOH co-ex PE 100μm"}, ThicknessMicrons: 125, OTR: "< 1.0 cc/m²/24h", WVTR: "< 2.0 g/m²/24h"},
			},
		},
		MaterialCompostable: {
			BarrierLow: {
				StiffnessUnlined:    {Layers: []Layer{"Cellulose NK 23μm", "PBAT/PLA 80μm"}, ThicknessMicrons: 103, OTR: "< 20 cc/m²/24h", WVTR: "< 25 g/m²/24h"},
				StiffnessPaperLined: {Layers: []Layer{KraftPaperLayer, "PBAT/PLA 70μm"}, ThicknessMicrons: 150, OTR: "< 20 cc/m²/24h", WVTR: "< 25 g/m²/24h"},
			},
			BarrierMid: {
				StiffnessUnlined: {Layers: []Layer{"Cellulose NK 23μm", "Metallised Cellulose 23μm", "PBAT/PLA 70μm"}, ThicknessMicrons: 116, OTR: "< 3.0 cc/m²/24h", WVTR: "< 5.0 g/m²/24h"},
			},
			BarrierHigh: {
				StiffnessUnlined: {Layers: []Layer{"Cellulose NK 23μm", "AlOx PLA 20μm", "PBAT 80μm"}, ThicknessMicrons: 123, OTR: "< 1.0 cc/m²/24h", WVTR: "< 3.0 g/m²/24h"},
			},
		},
	}
}
