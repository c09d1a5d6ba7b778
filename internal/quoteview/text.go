package quoteview

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Meta is the saved-quote header printed above a quote.
type Meta struct {
	ID           int64
	Title        string
	Notes        string
	ContactEmail string
	CreatedAt    time.Time
}

// WriteText renders a plain-text summary suitable for pasting into an email.
func WriteText(w io.Writer, meta Meta, q Quote) error {
	var b strings.Builder

	if meta.ID != 0 {
		fmt.Fprintf(&b, "Quote #%d", meta.ID)
		if q.Reference != "" {
			fmt.Fprintf(&b, " (%s)", q.Reference)
		}
		b.WriteString("\n")
	}
	if meta.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", meta.Title)
	}
	if !meta.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", meta.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	if meta.ContactEmail != "" {
		fmt.Fprintf(&b, "Contact: %s\n", meta.ContactEmail)
	}
	if meta.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", meta.Notes)
	}
	fmt.Fprintf(&b, "Catalog: %s\n\n", q.CatalogVersion)

	p := q.Package
	b.WriteString("Package:\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, row := range [][2]string{
		{"Shape", p.Shape},
		{"Size", p.Size},
		{"Material", p.Material},
		{"Barrier", p.Barrier},
		{"Stiffness", p.Stiffness},
		{"Structure", p.Structure},
		{"Thickness", p.Thickness},
		{"OTR", p.OTR},
		{"WVTR", p.WVTR},
		{"Closure", p.Closure},
		{"Surface", p.Surface},
		{"Features", p.AdditionalFeatures},
	} {
		fmt.Fprintf(tw, "  %s:\t%s\n", row[0], row[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	d := q.Breakdown
	b.WriteString("\nBreakdown:\n")
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Quantity:\t%s, %d design(s), %s print\n", d.QuantityTier, d.Designs, d.PrintMethod)
	fmt.Fprintf(tw, "  Unit weight:\t%s g\n", d.UnitWeightGrams.StringFixed(WeightPlaces))
	fmt.Fprintf(tw, "  Pouch cost:\t%s %s\n", d.UnitCost.StringFixed(UnitPlaces), d.Currency)
	fmt.Fprintf(tw, "  Fixed components:\t%s %s\n", d.FixedCostPerUnit.StringFixed(UnitPlaces), d.Currency)
	fmt.Fprintf(tw, "  Setup (per unit):\t%s %s\n", d.SetupCostPerUnit.StringFixed(UnitPlaces), d.Currency)
	fmt.Fprintf(tw, "  Shipping (%s):\t%s %s\n", d.ShippingMethod, d.ShippingPerUnit.StringFixed(UnitPlaces), d.Currency)
	fmt.Fprintf(tw, "  Unit price:\t%s %s\n", d.CurrentUnitPrice.StringFixed(UnitPlaces), d.Currency)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(&b, "\nTotal: %s %s\n", d.TotalInvestment.StringFixed(TotalPlaces), d.Currency)

	_, err := io.WriteString(w, b.String())
	return err
}
