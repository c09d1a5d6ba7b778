// Package quotes persists priced quotes as immutable snapshots. A saved quote is never
// re-priced on read, even after the catalog changes.
package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/ecopouch/internal/pricing"
)

// ErrNotFound is returned when no quote matches an id or reference.
var ErrNotFound = errors.New("quote not found")

const (
	timeLayout = "2006-01-02 15:04:05.000000"
	listLimit  = 200
)

// Record is a saved quote.
type Record struct {
	ID              int64
	Reference       string
	CreatedAt       time.Time
	Title           string
	Notes           string
	ContactEmail    string
	CatalogVersion  string
	Configuration   pricing.Configuration
	Breakdown       pricing.PriceBreakdown
	Package         pricing.PackageDescription
	UnitPrice       float64
	TotalInvestment float64
}

// Quote returns the priced quote stored in the record.
func (r Record) Quote() pricing.Quote {
	return pricing.Quote{
		Configuration:  r.Configuration,
		Breakdown:      r.Breakdown,
		Package:        r.Package,
		CatalogVersion: r.CatalogVersion,
	}
}

// Summary is one row of the admin list.
type Summary struct {
	ID              int64
	Reference       string
	CreatedAt       time.Time
	Title           string
	ContactEmail    string
	QuantityTier    string
	UnitPrice       float64
	TotalInvestment float64
}

// NewQuote is what a caller supplies to Save.
type NewQuote struct {
	Title        string
	Notes        string
	ContactEmail string
	Quote        pricing.Quote
}

type Store struct {
	db     *sql.DB
	now    func() time.Time
	newRef func() string
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now, newRef: uuid.NewString}
}

// Save stores a snapshot of q and returns it with its id and public reference.
func (s *Store) Save(ctx context.Context, q NewQuote) (Record, error) {
	rec := Record{
		Reference:       s.newRef(),
		CreatedAt:       s.now().UTC(),
		Title:           strings.TrimSpace(q.Title),
		Notes:           strings.TrimSpace(q.Notes),
		ContactEmail:    strings.TrimSpace(q.ContactEmail),
		CatalogVersion:  q.Quote.CatalogVersion,
		Configuration:   q.Quote.Configuration,
		Breakdown:       q.Quote.Breakdown,
		Package:         q.Quote.Package,
		UnitPrice:       q.Quote.Breakdown.CurrentUnitPrice,
		TotalInvestment: q.Quote.Breakdown.TotalInvestment,
	}

	configJSON, err := json.Marshal(rec.Configuration)
	if err != nil {
		return Record{}, fmt.Errorf("marshal quote configuration: %w", err)
	}
	breakdownJSON, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return Record{}, fmt.Errorf("marshal quote breakdown: %w", err)
	}
	packageJSON, err := json.Marshal(rec.Package)
	if err != nil {
		return Record{}, fmt.Errorf("marshal quote package: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (
			reference, created_at, title, notes, contact_email, catalog_version,
			configuration_json, breakdown_json, package_json, unit_price, total_investment
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Reference,
		rec.CreatedAt.Format(timeLayout),
		rec.Title,
		rec.Notes,
		rec.ContactEmail,
		rec.CatalogVersion,
		string(configJSON),
		string(breakdownJSON),
		string(packageJSON),
		rec.UnitPrice,
		rec.TotalInvestment,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert quote: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("read quote id: %w", err)
	}
	rec.CreatedAt, err = time.Parse(timeLayout, rec.CreatedAt.Format(timeLayout))
	if err != nil {
		return Record{}, fmt.Errorf("normalize quote timestamp: %w", err)
	}
	return rec, nil
}

const selectRecord = `
	SELECT id, reference, created_at, title, notes, contact_email, catalog_version,
		configuration_json, breakdown_json, package_json, unit_price, total_investment
	FROM quotes
`

// Get reads a saved quote by id.
func (s *Store) Get(ctx context.Context, id int64) (Record, error) {
	return s.getOne(ctx, selectRecord+` WHERE id = ?`, id)
}

// GetByReference reads a saved quote by its public reference.
func (s *Store) GetByReference(ctx context.Context, reference string) (Record, error) {
	if _, err := uuid.Parse(reference); err != nil {
		return Record{}, ErrNotFound
	}
	return s.getOne(ctx, selectRecord+` WHERE reference = ?`, strings.ToLower(reference))
}

func (s *Store) getOne(ctx context.Context, query string, arg any) (Record, error) {
	var rec Record
	var createdAt, configJSON, breakdownJSON, packageJSON string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&rec.ID,
		&rec.Reference,
		&createdAt,
		&rec.Title,
		&rec.Notes,
		&rec.ContactEmail,
		&rec.CatalogVersion,
		&configJSON,
		&breakdownJSON,
		&packageJSON,
		&rec.UnitPrice,
		&rec.TotalInvestment,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query quote: %w", err)
	}

	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Record{}, fmt.Errorf("parse quote created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &rec.Configuration); err != nil {
		return Record{}, fmt.Errorf("decode quote configuration: %w", err)
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &rec.Breakdown); err != nil {
		return Record{}, fmt.Errorf("decode quote breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(packageJSON), &rec.Package); err != nil {
		return Record{}, fmt.Errorf("decode quote package: %w", err)
	}
	return rec, nil
}

// List returns the newest quotes first. A non-empty query filters on title, notes,
// contact email and reference.
func (s *Store) List(ctx context.Context, query string) ([]Summary, error) {
	sqlQuery := `
		SELECT id, reference, created_at, title, contact_email,
			COALESCE(json_extract(breakdown_json, '$.quantity_tier'), ''),
			unit_price, total_investment
		FROM quotes
	`
	args := []any{}
	query = strings.TrimSpace(query)
	if query != "" {
		sqlQuery += `
		WHERE title LIKE ? OR notes LIKE ? OR contact_email LIKE ? OR reference LIKE ?
		`
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}
	sqlQuery += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, listLimit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var (
			sum       Summary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Reference, &createdAt, &sum.Title, &sum.ContactEmail, &sum.QuantityTier, &sum.UnitPrice, &sum.TotalInvestment); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if sum.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse quote created_at: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return out, nil
}
