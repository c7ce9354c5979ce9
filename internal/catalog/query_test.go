package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery_feed/internal/domain"
)

type staticLoader []domain.Product

func (l staticLoader) Load(context.Context) []domain.Product { return l }

func ptr(v float64) *float64 { return &v }

var fixtures = staticLoader{
	{ID: "1", Title: "Letmælk 1 l", Brand: "Arla", Description: "Frisk mælk", Category: "Mejeri", Price: 12},
	{ID: "2", Title: "Havarti", Brand: "Arla", Description: "Skiveost af mælk", Category: "Ost m.v.", Price: 30, SalePrice: ptr(25)},
	{ID: "3", Title: "Rugbrød", Brand: "Schulstad", Description: "Groft brød", Category: "Brød & Bavinchi", Price: 22},
	{ID: "4", Title: "Cheddar", Brand: "Castello", Description: "Lagret OST", Category: "Ost m.v.", Price: 35},
	{ID: "5", Title: "Kaffe", Brand: "Peter Larsen", Category: "Kolonial", Price: 50, SalePrice: ptr(45)},
}

func newTestQuery() *Query {
	cache := NewCache(fixtures, 30*time.Minute)
	return NewQuery(cache, func() time.Time { return t0 })
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestQuery_All(t *testing.T) {
	q := newTestQuery()
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(q.All(context.Background())))
}

func TestQuery_ByCategory(t *testing.T) {
	q := newTestQuery()
	ctx := context.Background()

	assert.Equal(t, []string{"2", "4"}, ids(q.ByCategory(ctx, "Ost m.v.")))
	assert.Empty(t, q.ByCategory(ctx, "ost m.v."))
	assert.Empty(t, q.ByCategory(ctx, "Frost"))
}

func TestQuery_ByID(t *testing.T) {
	q := newTestQuery()
	ctx := context.Background()

	p, ok := q.ByID(ctx, "3")
	require.True(t, ok)
	assert.Equal(t, "Rugbrød", p.Title)

	_, ok = q.ByID(ctx, "missing")
	assert.False(t, ok)
}

func TestQuery_OnSale(t *testing.T) {
	q := newTestQuery()
	assert.Equal(t, []string{"2", "5"}, ids(q.OnSale(context.Background())))
}

func TestQuery_Categories(t *testing.T) {
	q := newTestQuery()

	names, counts := q.Categories(context.Background())

	assert.Equal(t, []string{"Mejeri", "Ost m.v.", "Brød & Bavinchi", "Kolonial"}, names)
	assert.Equal(t, 2, counts["Ost m.v."])
}

func TestQuery_MatchingAllAndAny(t *testing.T) {
	q := newTestQuery()
	ctx := context.Background()
	terms := []string{"mælk", "ost"}

	assert.Equal(t, []string{"2"}, ids(q.MatchingAll(ctx, terms)))
	assert.Equal(t, []string{"1", "2", "4"}, ids(q.MatchingAny(ctx, terms)))
}

func TestQuery_MatchingAcrossFields(t *testing.T) {
	q := newTestQuery()
	ctx := context.Background()

	// brand and description satisfy different terms
	assert.Equal(t, []string{"3"}, ids(q.MatchingAll(ctx, []string{"schulstad", "groft"})))
	assert.Equal(t, []string{"5"}, ids(q.MatchingAll(ctx, SplitTerms("Peter KAFFE"))))
}

func TestQuery_MatchingWithoutTerms(t *testing.T) {
	q := newTestQuery()
	ctx := context.Background()

	assert.Len(t, q.MatchingAll(ctx, nil), len(fixtures))
	assert.Empty(t, q.MatchingAny(ctx, nil))
}

func TestQuery_UsesClock(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCache(loader, time.Minute)
	now := t0
	q := NewQuery(cache, func() time.Time { return now })

	q.All(context.Background())
	now = now.Add(30 * time.Second)
	q.All(context.Background())
	assert.Equal(t, int32(1), loader.calls.Load())

	now = now.Add(30 * time.Second)
	q.All(context.Background())
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestSplitTerms(t *testing.T) {
	assert.Equal(t, []string{"økologisk", "mælk"}, SplitTerms("  Økologisk   MÆLK "))
	assert.Empty(t, SplitTerms("   "))
}
