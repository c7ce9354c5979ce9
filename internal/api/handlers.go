package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"grocery_feed/internal/catalog"
	"grocery_feed/internal/domain"
)

type searchPage struct {
	Page
	Query string `json:"query"`
}

type categoryPage struct {
	Page
	Category string `json:"category"`
}

type categorySummary struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type homeGroup struct {
	Name     string           `json:"name"`
	Slug     string           `json:"slug"`
	Products []domain.Product `json:"products"`
}

type suggestResponse struct {
	Query    string           `json:"query"`
	Products []domain.Product `json:"products"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if s.opts.CapturedAt != nil {
		if captured := s.opts.CapturedAt(); !captured.IsZero() {
			resp["catalog_captured_at"] = captured.UTC().Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// handleListProducts serves the whole catalog, or an AND search when q is set.
func (s *Server) handleListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	query := c.Query("q")

	var products []domain.Product
	if terms := catalog.SplitTerms(query); len(terms) > 0 {
		products = s.catalog.MatchingAll(ctx, terms)
	} else {
		products = s.catalog.All(ctx)
	}

	c.JSON(http.StatusOK, searchPage{
		Page:  paginate(products, parsePage(c.Query("page")), s.opts.PerPage),
		Query: query,
	})
}

func (s *Server) handleGetProduct(c *gin.Context) {
	id := c.Param("id")
	p, ok := s.catalog.ByID(c.Request.Context(), id)
	if !ok {
		writeNotFound(c, "product "+id+" not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleListCategories(c *gin.Context) {
	_, counts := s.catalog.Categories(c.Request.Context())

	summaries := make([]categorySummary, 0, len(KnownCategories))
	for _, name := range KnownCategories {
		summaries = append(summaries, categorySummary{
			Name:  name,
			Slug:  CategorySlug(name),
			Count: counts[name],
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": summaries})
}

func (s *Server) handleCategoryProducts(c *gin.Context) {
	name, ok := ResolveCategory(c.Param("name"))
	if !ok {
		writeNotFound(c, "category "+c.Param("name")+" not found")
		return
	}

	products := s.catalog.ByCategory(c.Request.Context(), name)
	c.JSON(http.StatusOK, categoryPage{
		Page:     paginate(products, parsePage(c.Query("page")), s.opts.PerPage),
		Category: name,
	})
}

// handleHome serves the front page overview: weekly offers first, then
// every known category. Empty groups are left out.
func (s *Server) handleHome(c *gin.Context) {
	ctx := c.Request.Context()

	groups := make([]homeGroup, 0, len(KnownCategories)+1)
	add := func(name, slug string, products []domain.Product) {
		if len(products) == 0 {
			return
		}
		if len(products) > HomeGroupSize {
			products = products[:HomeGroupSize]
		}
		groups = append(groups, homeGroup{Name: name, Slug: slug, Products: products})
	}

	add(SaleGroupName, SaleGroupSlug, s.catalog.OnSale(ctx))
	for _, name := range KnownCategories {
		add(name, CategorySlug(name), s.catalog.ByCategory(ctx, name))
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *Server) handleSale(c *gin.Context) {
	products := s.catalog.OnSale(c.Request.Context())
	c.JSON(http.StatusOK, paginate(products, parsePage(c.Query("page")), s.opts.PerPage))
}

// handleSuggest is the type-ahead endpoint: OR search, truncated to limit.
func (s *Server) handleSuggest(c *gin.Context) {
	limit := DefaultSuggestLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxSuggestLimit {
			writeBadRequest(c, "limit must be an integer between 1 and "+strconv.Itoa(MaxSuggestLimit))
			return
		}
		limit = n
	}

	query := c.Query("q")
	products := s.catalog.MatchingAny(c.Request.Context(), catalog.SplitTerms(query))
	if len(products) > limit {
		products = products[:limit]
	}
	if products == nil {
		products = []domain.Product{}
	}

	c.JSON(http.StatusOK, suggestResponse{Query: query, Products: products})
}
