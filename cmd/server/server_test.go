package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"

	"github.com/Simplici0/ecopouch/internal/catalogfile"
	"github.com/Simplici0/ecopouch/internal/db"
	"github.com/Simplici0/ecopouch/internal/migrations"
	"github.com/Simplici0/ecopouch/internal/obs"
	"github.com/Simplici0/ecopouch/internal/pricing"
	"github.com/Simplici0/ecopouch/internal/quotes"
	"github.com/Simplici0/ecopouch/internal/seed"
)

const (
	testAdminEmail    = "admin@ecopouch.test"
	testAdminPassword = "correct horse"
)

type testEnv struct {
	srv      *server
	handler  http.Handler
	registry *prometheus.Registry
	catalogs *pricing.CatalogStore
}

func newTestEnv(t *testing.T, rate limiter.Rate) *testEnv {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	_, err = migrations.Up(ctx, database)
	require.NoError(t, err)
	_, err = seed.Run(ctx, database, seed.Config{AdminEmail: testAdminEmail, AdminPassword: testAdminPassword})
	require.NoError(t, err)

	catalogs, err := pricing.NewCatalogStore(pricing.Default())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	srv := &server{
		auth:    newAuthService(database, "test-secret"),
		engine:  pricing.NewEngine(catalogs),
		quotes:  quotes.NewStore(database),
		metrics: obs.NewDomainMetrics("test", reg),
		log:     zerolog.Nop(),
	}
	h := srv.routes(routerConfig{
		AllowedOrigins: []string{"http://shop.test"},
		QuoteRate:      rate,
		HTTPMetrics:    obs.NewHTTPMetrics("test", reg),
		Registry:       reg,
	})
	return &testEnv{srv: srv, handler: h, registry: reg, catalogs: catalogs}
}

func boundaryRequest() map[string]any {
	return map[string]any{
		"shape":     "3 Side Seal Pouch",
		"material":  "Mono Recyclable Plastic",
		"size":      "XXXS",
		"barrier":   "Low barrier (No window)",
		"stiffness": "Without Paper Lining (softer)",
		"closure":   "No",
		"quantity":  "100 (Digital print)",
		"designs":   1,
		"shipping":  "air",
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return errBody["code"].(string)
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/admin/login", map[string]string{"email": testAdminEmail, "password": testAdminPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func TestPriceBoundaryScenario(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})

	rec := env.do(t, http.MethodPost, "/api/eco-digital/price", boundaryRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	b := body["breakdown"].(map[string]any)
	require.Equal(t, "0.7056", b["unit_cost"])
	require.Equal(t, "0.4", b["shipping_per_unit"])
	require.Equal(t, "1.1056", b["current_unit_price"])
	require.Equal(t, "110.56", b["total_investment"])
	require.Equal(t, "Digital", b["print_method"])

	pkg := body["package"].(map[string]any)
	require.Equal(t, true, pkg["structure_found"])
	require.Equal(t, "No closure", pkg["closure"])
	require.Empty(t, body["reference"])
}

func TestPriceUnknownQuantityTier(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	req := boundaryRequest()
	req["quantity"] = "100"

	rec := env.do(t, http.MethodPost, "/api/eco-digital/price", req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	errBody := body["error"].(map[string]any)
	require.Equal(t, "unknown_quantity_tier", errBody["code"])
	details := errBody["details"].(map[string]any)
	require.Len(t, details["quantities"], 12)
	require.NotContains(t, body, "breakdown")
}

func TestPriceRejectsUnknownOption(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	req := boundaryRequest()
	req["shape"] = "Round Pouch"
	req["surfaces"] = []string{"Matte Finish", "Holographic"}

	rec := env.do(t, http.MethodPost, "/api/eco-digital/price", req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	msg := body["error"].(map[string]any)["message"].(string)
	require.Contains(t, msg, "Round Pouch")
	require.Contains(t, msg, "Holographic")
}

func TestPriceValidation(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	req := boundaryRequest()
	delete(req, "shape")
	req["designs"] = 9
	req["sea_portion"] = 1.5

	rec := env.do(t, http.MethodPost, "/api/eco-digital/price", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeBody(t, rec)["error"].(map[string]any)
	require.Equal(t, "validation_failed", errBody["code"])
	details := errBody["details"].(map[string]any)
	require.Equal(t, "required", details["shape"])
	require.Equal(t, "max", details["designs"])
	require.Equal(t, "lte", details["sea_portion"])
}

func TestPriceRejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	req := boundaryRequest()
	req["colour"] = "green"

	rec := env.do(t, http.MethodPost, "/api/eco-digital/price", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_body", errorCode(t, rec))
}

func TestPriceDefaultsToOneDesign(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	req := boundaryRequest()
	delete(req, "designs")

	rec := env.do(t, http.MethodPost, "/api/eco-digital/price", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, float64(1), decodeBody(t, rec)["breakdown"].(map[string]any)["designs"])
}

func TestPriceAcceptsPickerSizeLabel(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	req := boundaryRequest()
	req["size"] = env.srv.engine.Options().Sizes[0]

	rec := env.do(t, http.MethodPost, "/api/eco-digital/price", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "110.56", decodeBody(t, rec)["breakdown"].(map[string]any)["total_investment"])
}

func TestPriceFormPost(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	form := url.Values{
		"shape":         {"Stand Up Pouch"},
		"material":      {"PCR or Bio Plastic"},
		"size":          {"M"},
		"barrier":       {"High clear high barrier (Optional Window)"},
		"stiffness":     {"Without Paper Lining (softer)"},
		"closure":       {"Regular Zipper"},
		"surfaces":      {"Matte Finish", " ", "Matte Finish"},
		"laser_scoring": {"on"},
		"quantity":      {"1,000 (Digital print)"},
		"designs":       {"2"},
		"shipping":      {"dual"},
		"sea_portion":   {"0.5"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/eco-digital/price", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	cfg := body["configuration"].(map[string]any)
	require.Equal(t, []any{"Matte Finish"}, cfg["surfaces"])
	require.Equal(t, true, cfg["laser_scoring"])
	require.Equal(t, 0.5, cfg["sea_portion"])
	require.Equal(t, "Laser Scoring", body["package"].(map[string]any)["additional_features"])
}

func TestParseConfigurationFormRejectsBadNumbers(t *testing.T) {
	for _, tc := range []struct {
		name  string
		field string
		value string
	}{
		{name: "designs", field: "designs", value: "two"},
		{name: "sea portion", field: "sea_portion", value: "half"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{tc.field: {tc.value}}.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			require.NoError(t, r.ParseForm())

			var req priceRequest
			err := parseConfigurationForm(r, &req)
			require.ErrorIs(t, err, errBadBody)
			require.Contains(t, err.Error(), tc.value)
		})
	}
}

func TestPriceFormRejectsNaNSeaPortion(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	form := url.Values{
		"shape":       {"Stand Up Pouch"},
		"material":    {"PCR or Bio Plastic"},
		"size":        {"M"},
		"barrier":     {"Low barrier (No window)"},
		"stiffness":   {"Without Paper Lining (softer)"},
		"quantity":    {"1,000 (Digital print)"},
		"shipping":    {"dual"},
		"sea_portion": {"NaN"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/eco-digital/price", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.NotContains(t, decodeBody(t, rec), "breakdown")
}

func TestCheckedValues(t *testing.T) {
	for v, want := range map[string]bool{"": false, "0": false, "false": false, "OFF": false, "1": true, "on": true, "true": true} {
		require.Equal(t, want, checked(v), v)
	}
}

func TestOptions(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	rec := env.do(t, http.MethodGet, "/api/eco-digital/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Len(t, body["shapes"], len(pricing.Shapes))
	require.Len(t, body["quantities"], 12)
	require.Equal(t, float64(pricing.MaxDesigns), body["max_designs"])
}

func TestStructureEndpoint(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})

	q := url.Values{
		"material":  {"PCR or Bio Plastic"},
		"barrier":   {"Mid clear mid barrier (Optional Window)"},
		"stiffness": {"With Paper Lining (stiffer)"},
	}
	rec := env.do(t, http.MethodGet, "/api/eco-digital/structure?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	require.Equal(t, string(pricing.StructurePaperLinedFallback), body["source"])
	require.Equal(t, "180 microns", body["thickness"])

	q.Set("material", "Mono Recyclable Plastic")
	q.Set("barrier", "Aluminum highest barrier (No window)")
	rec = env.do(t, http.MethodGet, "/api/eco-digital/structure?"+q.Encode(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "structure_not_found", errorCode(t, rec))

	q.Set("barrier", "Titanium")
	rec = env.do(t, http.MethodGet, "/api/eco-digital/structure?"+q.Encode(), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSaveAndFetchQuote(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	req := boundaryRequest()
	req["title"] = "  Coffee launch "
	req["contact_email"] = "buyer@roastery.test"

	rec := env.do(t, http.MethodPost, "/api/eco-digital/quotes", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decodeBody(t, rec)
	ref := saved["reference"].(string)
	require.NotEmpty(t, ref)
	require.Equal(t, "/api/eco-digital/quotes/"+ref, rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/api/eco-digital/quotes/"+ref, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeBody(t, rec)
	require.Equal(t, saved["breakdown"], fetched["breakdown"])
	require.Equal(t, ref, fetched["reference"])

	rec = env.do(t, http.MethodGet, "/api/eco-digital/quotes/00000000-0000-4000-8000-000000000000", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/eco-digital/quotes/not-a-reference", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveQuoteValidatesEmail(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	req := boundaryRequest()
	req["contact_email"] = "not-an-email"

	rec := env.do(t, http.MethodPost, "/api/eco-digital/quotes", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeBody(t, rec)["error"].(map[string]any)["details"].(map[string]any)
	require.Equal(t, "email", details["contact_email"])
}

func TestSaveQuoteUnknownTierStoresNothing(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	req := boundaryRequest()
	req["quantity"] = "7 (Digital print)"

	rec := env.do(t, http.MethodPost, "/api/eco-digital/quotes", req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	list, err := env.srv.quotes.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})

	rec := env.do(t, http.MethodGet, "/admin/quotes", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/quotes", nil, &http.Cookie{Name: sessionCookieName, Value: "forged.00"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})

	rec := env.do(t, http.MethodPost, "/admin/login", map[string]string{"email": testAdminEmail, "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_credentials", errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/admin/login", map[string]string{"email": "nobody", "password": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	cookie := env.login(t)
	require.True(t, cookie.HttpOnly)

	rec = env.do(t, http.MethodPost, "/admin/logout", nil, cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, -1, cleared[0].MaxAge)
}

func TestAdminQuotes(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	cookie := env.login(t)

	for _, title := range []string{"Coffee launch", "Tea refill"} {
		req := boundaryRequest()
		req["title"] = title
		rec := env.do(t, http.MethodPost, "/api/eco-digital/quotes", req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/admin/quotes?q=coffee", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)["quotes"].([]any)
	require.Len(t, list, 1)
	row := list[0].(map[string]any)
	require.Equal(t, "Coffee launch", row["title"])
	require.Equal(t, "100 (Digital print)", row["quantity_tier"])
	require.Equal(t, "110.56", row["total_investment"])
	id := int64(row["id"].(float64))

	rec = env.do(t, http.MethodGet, "/admin/quotes/"+strconv.FormatInt(id, 10), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody(t, rec)
	require.Equal(t, "Coffee launch", detail["title"])
	require.NotEmpty(t, detail["quote"].(map[string]any)["reference"])

	rec = env.do(t, http.MethodGet, "/admin/quotes/"+strconv.FormatInt(id, 10)+"/text", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.Contains(t, rec.Body.String(), "Title: Coffee launch")
	require.Contains(t, rec.Body.String(), "Total: 110.56 USD")

	rec = env.do(t, http.MethodGet, "/admin/quotes/abc", nil, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodGet, "/admin/quotes/9999", nil, cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReloadCatalog(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	cookie := env.login(t)

	rec := env.do(t, http.MethodPost, "/admin/catalog/reload", nil, cookie)
	require.Equal(t, http.StatusConflict, rec.Code)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: summer-2026\n"), 0o600))
	env.srv.reloader = catalogfile.NewReloader(path, pricing.Default(), env.catalogs, zerolog.Nop(), env.srv.metrics.ObserveReload)

	rec = env.do(t, http.MethodPost, "/admin/catalog/reload", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "summer-2026", decodeBody(t, rec)["catalog_version"])

	rec = env.do(t, http.MethodPost, "/api/eco-digital/price", boundaryRequest())
	require.Equal(t, "summer-2026", decodeBody(t, rec)["catalog_version"])

	require.NoError(t, os.WriteFile(path, []byte("shapes:\n  Round Pouch: {cost: 0.1}\n"), 0o600))
	rec = env.do(t, http.MethodPost, "/admin/catalog/reload", nil, cookie)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "summer-2026", env.catalogs.Current().Version)
}

func TestQuoteRateLimit(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{Period: time.Minute, Limit: 1})

	rec := env.do(t, http.MethodPost, "/api/eco-digital/price", boundaryRequest())
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/eco-digital/price", boundaryRequest())
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limited", errorCode(t, rec))

	rec = env.do(t, http.MethodGet, "/api/eco-digital/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, limiter.Rate{})
	env.do(t, http.MethodPost, "/api/eco-digital/price", boundaryRequest())

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `test_quotes_priced_total{result="success"} 1`)
	require.Contains(t, rec.Body.String(), `test_structure_lookups_total{outcome="exact"} 1`)
}

func TestSessionValue(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &authService{sessionSecret: []byte("s3cret"), now: func() time.Time { return now }}

	value := a.createSessionValue(testAdminEmail)
	email, ok := a.verifySessionValue(value)
	require.True(t, ok)
	require.Equal(t, testAdminEmail, email)

	other := &authService{sessionSecret: []byte("other"), now: a.now}
	_, ok = other.verifySessionValue(value)
	require.False(t, ok)

	now = now.Add(sessionTTL)
	_, ok = a.verifySessionValue(value)
	require.False(t, ok)

	unkeyed := &authService{now: a.now}
	_, ok = unkeyed.verifySessionValue(unkeyed.createSessionValue(testAdminEmail))
	require.False(t, ok)

	for _, bad := range []string{"", "nodot", "abc.zz", "." + a.sign("")} {
		_, ok := a.verifySessionValue(bad)
		require.False(t, ok, bad)
	}
}
