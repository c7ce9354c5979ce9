// Package merge combines per-source product lists into one list keyed by
// product id, keeping the cheapest offer.
package merge

import (
	"math"

	"grocery_feed/internal/domain"
)

type Stats struct {
	Records  int
	Unique   int
	Replaced int
	Skipped  int
}

// Merge processes results in the given order and records in arrival order.
// A later record replaces the current winner when its effective price is
// less than or equal to the winner's, so exact ties go to the source merged
// last. Output order is the order in which ids were first seen.
func Merge(results ...domain.FetchResult) []domain.Product {
	products, _ := MergeWithStats(results...)
	return products
}

func MergeWithStats(results ...domain.FetchResult) ([]domain.Product, Stats) {
	var stats Stats
	var winners []domain.Product
	index := make(map[string]int)

	for _, res := range results {
		for _, p := range res.Products {
			stats.Records++
			if p.ID == "" {
				stats.Skipped++
				continue
			}

			i, seen := index[p.ID]
			if !seen {
				index[p.ID] = len(winners)
				winners = append(winners, p)
				continue
			}

			if cheaperOrEqual(p.EffectivePrice(), winners[i].EffectivePrice()) {
				winners[i] = p
				stats.Replaced++
			}
		}
	}

	stats.Unique = len(winners)
	return winners, stats
}

// cheaperOrEqual orders NaN after every number so a broken price never wins
// against a real one.
func cheaperOrEqual(candidate, current float64) bool {
	switch {
	case math.IsNaN(candidate):
		return math.IsNaN(current)
	case math.IsNaN(current):
		return true
	default:
		return candidate <= current
	}
}
