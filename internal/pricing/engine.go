package pricing

import "fmt"

// CatalogSource supplies the catalog snapshot for one pricing call.
type CatalogSource interface {
	Current() *Catalog
}

// Engine prices configurations against whatever catalog its source currently publishes.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalogs CatalogSource
}

func NewEngine(src CatalogSource) *Engine {
	return &Engine{catalogs: src}
}

// Quote is a priced configuration together with its package description.
type Quote struct {
	Configuration  Configuration      `json:"configuration"`
	Breakdown      PriceBreakdown     `json:"breakdown"`
	Package        PackageDescription `json:"package"`
	CatalogVersion string             `json:"catalog_version"`
}

// Price prices cfg. On ErrUnknownQuantityTier no part of a quote is returned.
func (e *Engine) Price(cfg Configuration) (Quote, error) {
	c := e.catalogs.Current()
	b, err := PriceWith(c, cfg)
	if err != nil {
		return Quote{}, fmt.Errorf("price configuration: %w", err)
	}
	return Quote{
		Configuration:  cfg.normalized(),
		Breakdown:      b,
		Package:        Describe(cfg, c),
		CatalogVersion: c.Version,
	}, nil
}

// Structure resolves the laminate for a triple against the current catalog.
func (e *Engine) Structure(m Material, b Barrier, s Stiffness) (StructureInfo, error) {
	return ResolveStructure(e.catalogs.Current().Structures, m, b, s)
}

// TierOption describes one quantity tier for pickers.
type TierOption struct {
	Label       string      `json:"label"`
	Units       int         `json:"units"`
	PrintMethod PrintMethod `json:"print_method"`
}

// Options lists every selectable label per dimension.
type Options struct {
	CatalogVersion  string       `json:"catalog_version"`
	Shapes          []string     `json:"shapes"`
	Materials       []string     `json:"materials"`
	Sizes           []string     `json:"sizes"`
	Barriers        []string     `json:"barriers"`
	Stiffness       []string     `json:"stiffness"`
	Closures        []string     `json:"closures"`
	Surfaces        []string     `json:"surfaces"`
	ShippingMethods []string     `json:"shipping_methods"`
	Quantities      []TierOption `json:"quantities"`
	MinDesigns      int          `json:"min_designs"`
	MaxDesigns      int          `json:"max_designs"`
}

func (e *Engine) Options() Options {
	c := e.catalogs.Current()
	o := Options{
		CatalogVersion:  c.Version,
		Shapes:          labels(Shapes),
		Materials:       labels(Materials),
		Barriers:        labels(Barriers),
		Stiffness:       labels(Stiffnesses),
		Closures:        labels(Closures),
		Surfaces:        labels(Surfaces),
		ShippingMethods: labels(ShippingMethods),
		MinDesigns:      MinDesigns,
		MaxDesigns:      MaxDesigns,
	}
	for _, s := range Sizes {
		o.Sizes = append(o.Sizes, SizeLabel(s, c.Sizes[s].Display))
	}
	for _, t := range c.Tiers {
		o.Quantities = append(o.Quantities, TierOption{Label: t.Label, Units: t.Units, PrintMethod: t.Method})
	}
	return o
}

func labels[T fmt.Stringer](members []T) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.String()
	}
	return out
}
