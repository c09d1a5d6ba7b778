package quotes

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/ecopouch/internal/db"
	"github.com/Simplici0/ecopouch/internal/migrations"
	"github.com/Simplici0/ecopouch/internal/pricing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "quotes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	_, err = migrations.Up(context.Background(), database)
	require.NoError(t, err)

	s := NewStore(database)
	clock := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	return s
}

func priceQuote(t *testing.T, tier string) pricing.Quote {
	t.Helper()
	store, err := pricing.NewCatalogStore(pricing.Default())
	require.NoError(t, err)
	q, err := pricing.NewEngine(store).Price(pricing.Configuration{
		Shape:     pricing.ShapeStandUp,
		Material:  pricing.MaterialCompostable,
		Size:      pricing.SizeS,
		Barrier:   pricing.BarrierMid,
		Stiffness: pricing.StiffnessPaperLined,
		Closure:   pricing.ClosureSpout,
		Surfaces:  []pricing.Surface{pricing.SurfaceMatte},
		Quantity:  tier,
		Designs:   2,
		Shipping:  pricing.ShippingDual,
	})
	require.NoError(t, err)
	return q
}

func TestSaveAndGetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	q := priceQuote(t, "2,000 (Digital print)")

	saved, err := s.Save(ctx, NewQuote{Title: " Cold brew ", Notes: "rush", ContactEmail: "buyer@example.com", Quote: q})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.Equal(t, "Cold brew", saved.Title)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved, got)
	require.Equal(t, q, got.Quote())
	require.Equal(t, q.Breakdown.TotalInvestment, got.TotalInvestment)

	byRef, err := s.GetByReference(ctx, saved.Reference)
	require.NoError(t, err)
	require.Equal(t, saved.ID, byRef.ID)
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Get(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetByReference(ctx, "not-a-uuid")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetByReference(ctx, "6f1c2b1e-0000-4000-8000-000000000000")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersNewestFirstAndFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i, title := range []string{"Coffee", "Tea", "Granola"} {
		_, err := s.Save(ctx, NewQuote{
			Title:        title,
			Notes:        fmt.Sprintf("note %d", i),
			ContactEmail: "buyer@example.com",
			Quote:        priceQuote(t, "500 (Digital print)"),
		})
		require.NoError(t, err)
	}
	_, err := s.Save(ctx, NewQuote{Title: "Tea refill", ContactEmail: "shop@tea.example", Quote: priceQuote(t, "10,000 (Flexo print)")})
	require.NoError(t, err)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, []string{"Tea refill", "Granola", "Tea", "Coffee"}, []string{all[0].Title, all[1].Title, all[2].Title, all[3].Title})
	require.Equal(t, "10,000 (Flexo print)", all[0].QuantityTier)

	tea, err := s.List(ctx, "tea")
	require.NoError(t, err)
	require.Len(t, tea, 2)

	byNote, err := s.List(ctx, "note 2")
	require.NoError(t, err)
	require.Len(t, byNote, 1)
	require.Equal(t, "Granola", byNote[0].Title)
}
