package catalog

import (
	"context"
	"strings"
	"time"

	"grocery_feed/internal/domain"
)

// Query is the read-only view the HTTP layer uses. Every call reads the
// cache at the current clock time, which may trigger a refresh.
type Query struct {
	cache *Cache
	clock func() time.Time
}

func NewQuery(cache *Cache, clock func() time.Time) *Query {
	if clock == nil {
		clock = time.Now
	}
	return &Query{cache: cache, clock: clock}
}

func (q *Query) snapshot(ctx context.Context) *domain.Catalog {
	return q.cache.Get(ctx, q.clock())
}

func (q *Query) All(ctx context.Context) []domain.Product {
	return q.snapshot(ctx).Products()
}

// ByCategory filters by exact, case-sensitive category name.
func (q *Query) ByCategory(ctx context.Context, name string) []domain.Product {
	return filter(q.snapshot(ctx).Products(), func(p domain.Product) bool {
		return p.Category == name
	})
}

func (q *Query) ByID(ctx context.Context, id string) (domain.Product, bool) {
	return q.snapshot(ctx).Get(id)
}

// OnSale returns the products whose effective price is a sale price.
func (q *Query) OnSale(ctx context.Context) []domain.Product {
	return filter(q.snapshot(ctx).Products(), domain.Product.OnSale)
}

// Categories lists distinct non-empty categories in first-seen order with
// their product counts.
func (q *Query) Categories(ctx context.Context) ([]string, map[string]int) {
	var names []string
	counts := make(map[string]int)
	for _, p := range q.snapshot(ctx).Products() {
		if p.Category == "" {
			continue
		}
		if _, ok := counts[p.Category]; !ok {
			names = append(names, p.Category)
		}
		counts[p.Category]++
	}
	return names, counts
}

// MatchingAll returns products where every term is a substring of the
// lowercased title, brand or description. No terms match everything.
func (q *Query) MatchingAll(ctx context.Context, terms []string) []domain.Product {
	return filter(q.snapshot(ctx).Products(), func(p domain.Product) bool {
		return matchesAll(p, terms)
	})
}

// MatchingAny returns products where at least one term is a substring of
// the lowercased title, brand or description. No terms match nothing.
func (q *Query) MatchingAny(ctx context.Context, terms []string) []domain.Product {
	if len(terms) == 0 {
		return nil
	}
	return filter(q.snapshot(ctx).Products(), func(p domain.Product) bool {
		return matchesAny(p, terms)
	})
}

// SplitTerms lowercases a free-text query and splits it on whitespace.
func SplitTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

func matchesAll(p domain.Product, terms []string) bool {
	fields := searchFields(p)
	for _, term := range terms {
		if !containsTerm(fields, term) {
			return false
		}
	}
	return true
}

func matchesAny(p domain.Product, terms []string) bool {
	fields := searchFields(p)
	for _, term := range terms {
		if containsTerm(fields, term) {
			return true
		}
	}
	return false
}

func searchFields(p domain.Product) [3]string {
	return [3]string{
		strings.ToLower(p.Title),
		strings.ToLower(p.Brand),
		strings.ToLower(p.Description),
	}
}

func containsTerm(fields [3]string, term string) bool {
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}

func filter(products []domain.Product, keep func(domain.Product) bool) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
