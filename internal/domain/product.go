package domain

import "math"

// SourceID identifies the adapter that produced a record.
type SourceID string

type Product struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Brand         string   `json:"brand"`
	ImageURL      string   `json:"image_url"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	SalePrice     *float64 `json:"sale_price,omitempty"`
	SaleWindowRaw string   `json:"sale_window_raw,omitempty"`
	SaleEnd       string   `json:"sale_end,omitempty"` // dd/mm, display only
	Source        SourceID `json:"source"`
}

// EffectivePrice is the sale price when present and a number, otherwise the regular price.
func (p Product) EffectivePrice() float64 {
	if p.hasSalePrice() {
		return *p.SalePrice
	}
	return p.Price
}

// OnSale reports whether the effective price comes from a sale price.
func (p Product) OnSale() bool {
	return p.hasSalePrice()
}

func (p Product) hasSalePrice() bool {
	return p.SalePrice != nil && !math.IsNaN(*p.SalePrice)
}
