package main

import (
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/ecopouch/internal/catalogfile"
	"github.com/Simplici0/ecopouch/internal/pricing"
	"github.com/Simplici0/ecopouch/internal/quoteview"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var catalogPath string

	root := &cobra.Command{
		Use:   "pouchquote",
		Short: "Price eco digital pouch configurations",
		Long: `pouchquote runs the pouch pricing engine locally.

Examples:
  pouchquote price --shape "Stand Up Pouch" --material "PCR or Bio Plastic" --size M \
    --barrier "High clear high barrier (Optional Window)" --quantity "1,000 (Digital print)"
  pouchquote options
  pouchquote structure --material "Biodegradable and Compostable" --barrier "Low barrier (No window)"`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML catalog override file")

	engine := func() (*pricing.Engine, error) {
		c := pricing.Default()
		if catalogPath != "" {
			var err error
			if c, err = catalogfile.Load(catalogPath, c); err != nil {
				return nil, err
			}
		}
		store, err := pricing.NewCatalogStore(c)
		if err != nil {
			return nil, err
		}
		return pricing.NewEngine(store), nil
	}

	root.AddCommand(newPriceCmd(engine), newOptionsCmd(engine), newStructureCmd(engine), newVersionCmd())
	return root
}

type engineFunc func() (*pricing.Engine, error)

func newPriceCmd(engine engineFunc) *cobra.Command {
	var (
		shape, material, size, barrier, stiffness, closure string
		quantity, shipping                                 string
		surfaces                                           []string
		laser, valve, dieCut, asJSON                       bool
		designs                                            int
		seaPortion                                         float64
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price one configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := pricing.Configuration{
				Surfaces:        make([]pricing.Surface, 0, len(surfaces)),
				LaserScoring:    laser,
				DegassingValve:  valve,
				IrregularDieCut: dieCut,
				Quantity:        quantity,
				Designs:         designs,
			}
			for _, p := range []struct {
				dst   encoding.TextUnmarshaler
				label string
			}{
				{&cfg.Shape, shape},
				{&cfg.Material, material},
				{&cfg.Size, size},
				{&cfg.Barrier, barrier},
				{&cfg.Stiffness, stiffness},
				{&cfg.Closure, closure},
				{&cfg.Shipping, shipping},
			} {
				if err := p.dst.UnmarshalText([]byte(p.label)); err != nil {
					return err
				}
			}
			for _, label := range surfaces {
				s, err := pricing.ParseSurface(label)
				if err != nil {
					return err
				}
				cfg.Surfaces = append(cfg.Surfaces, s)
			}
			if cmd.Flags().Changed("sea-portion") {
				cfg.SeaPortion = &seaPortion
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			e, err := engine()
			if err != nil {
				return err
			}
			q, err := e.Price(cfg)
			if err != nil {
				return err
			}
			view := quoteview.New(q)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			return quoteview.WriteText(cmd.OutOrStdout(), quoteview.Meta{}, view)
		},
	}

	f := cmd.Flags()
	f.StringVar(&shape, "shape", pricing.ShapeStandUp.String(), "pouch shape")
	f.StringVar(&material, "material", pricing.MaterialPCRBio.String(), "material family")
	f.StringVar(&size, "size", pricing.SizeM.String(), "size class (XXXS to XXL)")
	f.StringVar(&barrier, "barrier", pricing.BarrierLow.String(), "barrier level")
	f.StringVar(&stiffness, "stiffness", pricing.StiffnessUnlined.String(), "paper lining")
	f.StringVar(&closure, "closure", "", "closure (empty for none)")
	f.StringSliceVar(&surfaces, "surface", nil, "surface treatment, repeatable")
	f.BoolVar(&laser, "laser-scoring", false, "add laser scoring")
	f.BoolVar(&valve, "valve", false, "add a degassing valve")
	f.BoolVar(&dieCut, "die-cut", false, "irregular die cut")
	f.StringVar(&quantity, "quantity", "1,000 (Digital print)", "quantity tier label")
	f.IntVar(&designs, "designs", pricing.MinDesigns, "number of artwork designs")
	f.StringVar(&shipping, "shipping", pricing.ShippingDual.String(), "air, sea or dual")
	f.Float64Var(&seaPortion, "sea-portion", 0, "sea share of a dual shipment (catalog default when unset)")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newOptionsCmd(engine engineFunc) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List every selectable option",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := engine()
			if err != nil {
				return err
			}
			o := e.Options()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), o)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Catalog:\t%s\n", o.CatalogVersion)
			for _, row := range []struct {
				name   string
				values []string
			}{
				{"Shapes", o.Shapes},
				{"Materials", o.Materials},
				{"Sizes", o.Sizes},
				{"Barriers", o.Barriers},
				{"Stiffness", o.Stiffness},
				{"Closures", o.Closures},
				{"Surfaces", o.Surfaces},
				{"Shipping", o.ShippingMethods},
			} {
				fmt.Fprintf(tw, "%s:\t%s\n", row.name, strings.Join(row.values, "; "))
			}
			for _, t := range o.Quantities {
				fmt.Fprintf(tw, "Quantity:\t%s\t%d units\t%s\n", t.Label, t.Units, t.PrintMethod)
			}
			fmt.Fprintf(tw, "Designs:\t%d-%d\n", o.MinDesigns, o.MaxDesigns)
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newStructureCmd(engine engineFunc) *cobra.Command {
	var material, barrier, stiffness string
	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Show the laminate for a material, barrier and stiffness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := pricing.ParseMaterial(material)
			if err != nil {
				return err
			}
			b, err := pricing.ParseBarrier(barrier)
			if err != nil {
				return err
			}
			s, err := pricing.ParseStiffness(stiffness)
			if err != nil {
				return err
			}
			e, err := engine()
			if err != nil {
				return err
			}
			info, err := e.Structure(m, b, s)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Structure: %s\n", info.Structure)
			fmt.Fprintf(out, "Thickness: %s\n", info.Thickness)
			fmt.Fprintf(out, "OTR: %s\n", info.OTR)
			fmt.Fprintf(out, "WVTR: %s\n", info.WVTR)
			if info.Source == pricing.StructurePaperLinedFallback {
				fmt.Fprintln(out, "Derived from the unlined structure.")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&material, "material", pricing.MaterialPCRBio.String(), "material family")
	f.StringVar(&barrier, "barrier", pricing.BarrierLow.String(), "barrier level")
	f.StringVar(&stiffness, "stiffness", pricing.StiffnessUnlined.String(), "paper lining")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pouchquote %s (catalog %s)\n", version, pricing.Default().Version)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
