package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Simplici0/ecopouch/internal/pricing"
)

const maxBodyBytes = 64 << 10

var errBadBody = errors.New("malformed request body")

// priceRequest carries a configuration as option labels.
type priceRequest struct {
	Shape           string   `json:"shape" validate:"required"`
	Material        string   `json:"material" validate:"required"`
	Size            string   `json:"size" validate:"required"`
	Barrier         string   `json:"barrier" validate:"required"`
	Stiffness       string   `json:"stiffness" validate:"required"`
	Closure         string   `json:"closure"`
	Surfaces        []string `json:"surfaces" validate:"max=6,dive,required"`
	LaserScoring    bool     `json:"laser_scoring"`
	DegassingValve  bool     `json:"degassing_valve"`
	IrregularDieCut bool     `json:"irregular_die_cut"`
	Quantity        string   `json:"quantity" validate:"required"`
	Designs         int      `json:"designs" validate:"min=1,max=5"`
	Shipping        string   `json:"shipping" validate:"required"`
	SeaPortion      *float64 `json:"sea_portion" validate:"omitempty,gte=0,lte=1"`
}

type saveQuoteRequest struct {
	priceRequest
	Title        string `json:"title" validate:"max=200"`
	Notes        string `json:"notes" validate:"max=2000"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email,max=254"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationDetails maps json field names to the failed rule.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// decodeRequest fills dst from a JSON body or, for form posts, from form values.
func decodeRequest(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", errBadBody, err)
		}
		return decodeForm(r, dst)
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

func decodeForm(r *http.Request, dst any) error {
	switch v := dst.(type) {
	case *priceRequest:
		return parseConfigurationForm(r, v)
	case *saveQuoteRequest:
		v.Title = strings.TrimSpace(r.FormValue("title"))
		v.Notes = strings.TrimSpace(r.FormValue("notes"))
		v.ContactEmail = strings.TrimSpace(r.FormValue("contact_email"))
		return parseConfigurationForm(r, &v.priceRequest)
	case *loginRequest:
		v.Email = strings.TrimSpace(r.FormValue("email"))
		v.Password = r.FormValue("password")
		return nil
	}
	return fmt.Errorf("%w: form posts not accepted here", errBadBody)
}

// parseConfigurationForm reads a configuration posted as an HTML form. Checkbox
// features count as selected for any non-empty value other than "0", "false" or "off".
func parseConfigurationForm(r *http.Request, req *priceRequest) error {
	req.Shape = strings.TrimSpace(r.FormValue("shape"))
	req.Material = strings.TrimSpace(r.FormValue("material"))
	req.Size = strings.TrimSpace(r.FormValue("size"))
	req.Barrier = strings.TrimSpace(r.FormValue("barrier"))
	req.Stiffness = strings.TrimSpace(r.FormValue("stiffness"))
	req.Closure = strings.TrimSpace(r.FormValue("closure"))
	req.Quantity = strings.TrimSpace(r.FormValue("quantity"))
	req.Shipping = strings.TrimSpace(r.FormValue("shipping"))
	req.Surfaces = nil
	for _, s := range r.Form["surfaces"] {
		if s = strings.TrimSpace(s); s != "" {
			req.Surfaces = append(req.Surfaces, s)
		}
	}
	req.LaserScoring = checked(r.FormValue("laser_scoring"))
	req.DegassingValve = checked(r.FormValue("degassing_valve"))
	req.IrregularDieCut = checked(r.FormValue("irregular_die_cut"))

	if raw := strings.TrimSpace(r.FormValue("designs")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: designs %q is not a whole number", errBadBody, raw)
		}
		req.Designs = n
	}
	if raw := strings.TrimSpace(r.FormValue("sea_portion")); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: sea_portion %q is not a number", errBadBody, raw)
		}
		req.SeaPortion = &p
	}
	return nil
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// applyDefaults fills in the single-design default before validation.
func (p *priceRequest) applyDefaults() {
	if p.Designs == 0 {
		p.Designs = pricing.MinDesigns
	}
}

// configuration resolves every label. All unknown labels are reported together.
func (p priceRequest) configuration() (pricing.Configuration, error) {
	var errs []error
	parse := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := pricing.Configuration{
		LaserScoring:    p.LaserScoring,
		DegassingValve:  p.DegassingValve,
		IrregularDieCut: p.IrregularDieCut,
		Quantity:        strings.TrimSpace(p.Quantity),
		Designs:         p.Designs,
		SeaPortion:      p.SeaPortion,
	}
	var err error
	cfg.Shape, err = pricing.ParseShape(p.Shape)
	parse(err)
	cfg.Material, err = pricing.ParseMaterial(p.Material)
	parse(err)
	// Accept the full picker label ("M · 160 x 230 + 90 mm ...") as well as "M".
	sizeClass, _, _ := strings.Cut(p.Size, "·")
	cfg.Size, err = pricing.ParseSize(sizeClass)
	parse(err)
	cfg.Barrier, err = pricing.ParseBarrier(p.Barrier)
	parse(err)
	cfg.Stiffness, err = pricing.ParseStiffness(p.Stiffness)
	parse(err)
	cfg.Closure, err = pricing.ParseClosure(p.Closure)
	parse(err)
	cfg.Shipping, err = pricing.ParseShippingMethod(p.Shipping)
	parse(err)
	for _, label := range p.Surfaces {
		s, err := pricing.ParseSurface(label)
		parse(err)
		cfg.Surfaces = append(cfg.Surfaces, s)
	}
	if len(errs) > 0 {
		return pricing.Configuration{}, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}
