package domain

import "time"

// Catalog is an immutable snapshot of merged products. Products keep the
// position at which their id was first seen during the merge.
type Catalog struct {
	CapturedAt time.Time
	products   []Product
	byID       map[string]int
}

func NewCatalog(products []Product, capturedAt time.Time) *Catalog {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &Catalog{
		CapturedAt: capturedAt,
		products:   products,
		byID:       byID,
	}
}

// Products returns the catalog contents. Callers must not modify the slice.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	return c.products
}

func (c *Catalog) Get(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}
