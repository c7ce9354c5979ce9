package api

import (
	"strconv"

	"grocery_feed/internal/domain"
)

type Page struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
	PerPage    int              `json:"per_page"`
}

// paginate clamps page into [1, totalPages]. An empty list is page 1 of 0.
func paginate(products []domain.Product, page, perPage int) Page {
	total := len(products)
	totalPages := (total + perPage - 1) / perPage

	page = max(page, 1)
	if totalPages > 0 {
		page = min(page, totalPages)
	} else {
		page = 1
	}

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	items := products[start:end]
	if items == nil {
		items = []domain.Product{}
	}

	return Page{
		Products:   items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		PerPage:    perPage,
	}
}

// parsePage reads a page number, falling back to 1 when it is not an integer.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return page
}
