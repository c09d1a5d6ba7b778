package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result and outcome label values.
const (
	ResultSuccess     = "success"
	ResultUnknownTier = "unknown_quantity_tier"
	ResultInvalid     = "invalid"

	OutcomeExact    = "exact"
	OutcomeFallback = "fallback"
	OutcomeNotFound = "not_found"
)

// DomainMetrics counts pricing activity.
type DomainMetrics struct {
	QuotesPriced     *prometheus.CounterVec
	StructureLookups *prometheus.CounterVec
	CatalogReloads   *prometheus.CounterVec
}

// NewDomainMetrics registers the pricing collectors on reg.
func NewDomainMetrics(namespace string, reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &DomainMetrics{
		QuotesPriced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_priced_total",
			Help:      "Pricing requests by result.",
		}, []string{"result"}),
		StructureLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structure_lookups_total",
			Help:      "Material structure lookups by outcome.",
		}, []string{"outcome"}),
		CatalogReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog reloads by result.",
		}, []string{"result"}),
	}
	register(reg, m.QuotesPriced, func(c prometheus.Collector) { m.QuotesPriced = c.(*prometheus.CounterVec) })
	register(reg, m.StructureLookups, func(c prometheus.Collector) { m.StructureLookups = c.(*prometheus.CounterVec) })
	register(reg, m.CatalogReloads, func(c prometheus.Collector) { m.CatalogReloads = c.(*prometheus.CounterVec) })
	return m
}

// ObservePrice counts a pricing result.
func (m *DomainMetrics) ObservePrice(result string) {
	m.QuotesPriced.WithLabelValues(result).Inc()
}

// ObserveStructure counts a structure lookup outcome.
func (m *DomainMetrics) ObserveStructure(outcome string) {
	m.StructureLookups.WithLabelValues(outcome).Inc()
}

// ObserveReload counts a catalog reload result.
func (m *DomainMetrics) ObserveReload(result string) {
	m.CatalogReloads.WithLabelValues(result).Inc()
}
