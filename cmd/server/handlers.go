package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/ecopouch/internal/obs"
	"github.com/Simplici0/ecopouch/internal/pricing"
	"github.com/Simplici0/ecopouch/internal/quotes"
	"github.com/Simplici0/ecopouch/internal/quoteview"
)

var validate = newValidator()

func (s *server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Options())
}

func (s *server) handleStructure(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, errM := pricing.ParseMaterial(q.Get("material"))
	b, errB := pricing.ParseBarrier(q.Get("barrier"))
	st, errS := pricing.ParseStiffness(q.Get("stiffness"))
	if err := errors.Join(errM, errB, errS); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_option", err.Error(), nil)
		return
	}

	info, err := s.engine.Structure(m, b, st)
	if errors.Is(err, pricing.ErrStructureNotFound) {
		s.metrics.ObserveStructure(obs.OutcomeNotFound)
		writeError(w, http.StatusNotFound, "structure_not_found", err.Error(), map[string]string{
			"structure": pricing.PlaceholderStructure,
			"otr":       pricing.PlaceholderFigure,
			"wvtr":      pricing.PlaceholderFigure,
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "structure lookup failed", nil)
		return
	}
	s.metrics.ObserveStructure(structureOutcome(info.Source, true))
	writeJSON(w, http.StatusOK, info)
}

func (s *server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	q, ok := s.price(w, r, &req, &req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, quoteview.New(q))
}

func (s *server) handleSaveQuote(w http.ResponseWriter, r *http.Request) {
	var req saveQuoteRequest
	q, ok := s.price(w, r, &req, &req.priceRequest)
	if !ok {
		return
	}

	rec, err := s.quotes.Save(r.Context(), quotes.NewQuote{
		Title:        strings.TrimSpace(req.Title),
		Notes:        strings.TrimSpace(req.Notes),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Quote:        q,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("save quote")
		writeError(w, http.StatusInternalServerError, "internal", "could not save quote", nil)
		return
	}

	view := quoteview.New(rec.Quote())
	view.Reference = rec.Reference
	w.Header().Set("Location", "/api/eco-digital/quotes/"+rec.Reference)
	writeJSON(w, http.StatusCreated, view)
}

func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	rec, err := s.quotes.GetByReference(r.Context(), chi.URLParam(r, "reference"))
	if errors.Is(err, quotes.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "quote not found", nil)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("load quote")
		writeError(w, http.StatusInternalServerError, "internal", "could not load quote", nil)
		return
	}
	view := quoteview.New(rec.Quote())
	view.Reference = rec.Reference
	writeJSON(w, http.StatusOK, view)
}

// price decodes body, validates it and prices the embedded configuration. It writes
// the error response itself and reports false when pricing did not happen.
func (s *server) price(w http.ResponseWriter, r *http.Request, body any, req *priceRequest) (pricing.Quote, bool) {
	if err := decodeRequest(r, body); err != nil {
		s.metrics.ObservePrice(obs.ResultInvalid)
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return pricing.Quote{}, false
	}
	req.applyDefaults()
	if err := validate.Struct(body); err != nil {
		s.metrics.ObservePrice(obs.ResultInvalid)
		writeError(w, http.StatusBadRequest, "validation_failed", "request failed validation", validationDetails(err))
		return pricing.Quote{}, false
	}

	cfg, err := req.configuration()
	if err != nil {
		s.writePricingError(w, err)
		return pricing.Quote{}, false
	}
	q, err := s.engine.Price(cfg)
	if err != nil {
		s.writePricingError(w, err)
		return pricing.Quote{}, false
	}

	s.metrics.ObservePrice(obs.ResultSuccess)
	s.metrics.ObserveStructure(structureOutcome(q.Package.StructureSource, q.Package.StructureFound))
	return q, true
}

func (s *server) writePricingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrUnknownQuantityTier):
		s.metrics.ObservePrice(obs.ResultUnknownTier)
		tiers := s.engine.Options().Quantities
		labels := make([]string, len(tiers))
		for i, t := range tiers {
			labels[i] = t.Label
		}
		writeError(w, http.StatusUnprocessableEntity, "unknown_quantity_tier", err.Error(), map[string]any{"quantities": labels})
	case errors.Is(err, pricing.ErrUnknownOption):
		s.metrics.ObservePrice(obs.ResultInvalid)
		writeError(w, http.StatusUnprocessableEntity, "invalid_option", err.Error(), nil)
	default:
		s.metrics.ObservePrice(obs.ResultInvalid)
		writeError(w, http.StatusBadRequest, "invalid_configuration", err.Error(), nil)
	}
}

func structureOutcome(src pricing.StructureSource, found bool) string {
	switch {
	case !found:
		return obs.OutcomeNotFound
	case src == pricing.StructurePaperLinedFallback:
		return obs.OutcomeFallback
	}
	return obs.OutcomeExact
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "request failed validation", validationDetails(err))
		return
	}

	ok, err := s.auth.validateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("validate credentials")
		writeError(w, http.StatusInternalServerError, "internal", "login failed", nil)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect", nil)
		return
	}
	s.auth.setSessionCookie(w, req.Email)
	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (s *server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type quoteSummary struct {
	ID              int64           `json:"id"`
	Reference       string          `json:"reference"`
	CreatedAt       time.Time       `json:"created_at"`
	Title           string          `json:"title"`
	ContactEmail    string          `json:"contact_email"`
	QuantityTier    string          `json:"quantity_tier"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalInvestment decimal.Decimal `json:"total_investment"`
}

func (s *server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	list, err := s.quotes.List(r.Context(), query)
	if err != nil {
		s.log.Error().Err(err).Msg("list quotes")
		writeError(w, http.StatusInternalServerError, "internal", "could not list quotes", nil)
		return
	}

	out := make([]quoteSummary, len(list))
	for i, q := range list {
		out[i] = quoteSummary{
			ID:              q.ID,
			Reference:       q.Reference,
			CreatedAt:       q.CreatedAt,
			Title:           q.Title,
			ContactEmail:    q.ContactEmail,
			QuantityTier:    q.QuantityTier,
			UnitPrice:       quoteview.Unit(q.UnitPrice),
			TotalInvestment: quoteview.Total(q.TotalInvestment),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "quotes": out})
}

type quoteDetail struct {
	ID           int64           `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Title        string          `json:"title"`
	Notes        string          `json:"notes"`
	ContactEmail string          `json:"contact_email"`
	Quote        quoteview.Quote `json:"quote"`
}

func (s *server) handleAdminQuote(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	view := quoteview.New(rec.Quote())
	view.Reference = rec.Reference
	writeJSON(w, http.StatusOK, quoteDetail{
		ID:           rec.ID,
		CreatedAt:    rec.CreatedAt,
		Title:        rec.Title,
		Notes:        rec.Notes,
		ContactEmail: rec.ContactEmail,
		Quote:        view,
	})
}

func (s *server) handleAdminQuoteText(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	view := quoteview.New(rec.Quote())
	view.Reference = rec.Reference

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	meta := quoteview.Meta{
		ID:           rec.ID,
		Title:        rec.Title,
		Notes:        rec.Notes,
		ContactEmail: rec.ContactEmail,
		CreatedAt:    rec.CreatedAt,
	}
	if err := quoteview.WriteText(w, meta, view); err != nil {
		s.log.Error().Err(err).Int64("quote_id", rec.ID).Msg("write quote text")
	}
}

func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (quotes.Record, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "quote id must be a positive integer", nil)
		return quotes.Record{}, false
	}
	rec, err := s.quotes.Get(r.Context(), id)
	if errors.Is(err, quotes.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "quote not found", nil)
		return quotes.Record{}, false
	}
	if err != nil {
		s.log.Error().Err(err).Int64("quote_id", id).Msg("load quote")
		writeError(w, http.StatusInternalServerError, "internal", "could not load quote", nil)
		return quotes.Record{}, false
	}
	return rec, true
}

func (s *server) handleReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		writeError(w, http.StatusConflict, "catalog_file_not_configured", "no catalog override file is configured", nil)
		return
	}
	c, err := s.reloader.Reload()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "catalog_invalid", err.Error(), map[string]string{"path": s.reloader.Path()})
		return
	}
	s.log.Info().Str("admin", adminEmail(r.Context())).Str("catalog_version", c.Version).Msg("catalog reloaded by admin")
	writeJSON(w, http.StatusOK, map[string]string{"catalog_version": c.Version})
}
