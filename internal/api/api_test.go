package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery_feed/internal/catalog"
	"grocery_feed/internal/domain"
)

type staticLoader []domain.Product

func (l staticLoader) Load(context.Context) []domain.Product {
	return l
}

func ptr(f float64) *float64 { return &f }

func fixtures() []domain.Product {
	return []domain.Product{
		{ID: "1", Title: "Letmælk 1L", Brand: "Arla", Category: "Mejeri", Price: 12.95, Source: "xml_feed"},
		{ID: "2", Title: "Danbo ost", Brand: "Arla", Category: "Ost m.v.", Price: 45, SalePrice: ptr(39), Source: "xml_feed"},
		{ID: "3", Title: "Rugbrød", Brand: "Schulstad", Category: "Brød & Bavinchi", Price: 22, Source: "spreadsheet"},
		{ID: "4", Title: "Bananer", Category: "Frugt & grønt", Price: 3.5, SalePrice: ptr(2.5), Source: "spreadsheet"},
		{ID: "5", Title: "Chokolademælk", Brand: "Cocio", Category: "Mejeri", Price: 15, Source: "spreadsheet"},
	}
}

func newTestServer(t *testing.T, products []domain.Product, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cache := catalog.NewCache(staticLoader(products), time.Hour)
	query := catalog.NewQuery(cache, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}
	return NewServer(query, opts, logger)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestHealthz(t *testing.T) {
	captured := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	s := newTestServer(t, fixtures(), Options{CapturedAt: func() time.Time { return captured }})

	w := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2024-03-10T08:00:00Z", body["catalog_captured_at"])
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	w := get(t, s, "/api/products")
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[searchPage](t, w)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(page.Products))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, DefaultPerPage, page.PerPage)
}

func TestListProducts_SearchIsConjunctive(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	page := decode[searchPage](t, get(t, s, "/api/products?q=ARLA+m%C3%A6lk"))
	assert.Equal(t, []string{"1"}, ids(page.Products))
	assert.Equal(t, "ARLA mælk", page.Query)

	page = decode[searchPage](t, get(t, s, "/api/products?q=ingenting"))
	assert.Empty(t, page.Products)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, 1, page.Page)
}

func TestListProducts_PageIsClamped(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{PerPage: 2})

	tests := []struct {
		query    string
		wantPage int
		wantIDs  []string
	}{
		{"", 1, []string{"1", "2"}},
		{"?page=2", 2, []string{"3", "4"}},
		{"?page=3", 3, []string{"5"}},
		{"?page=99", 3, []string{"5"}},
		{"?page=-4", 1, []string{"1", "2"}},
		{"?page=abc", 1, []string{"1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page := decode[searchPage](t, get(t, s, "/api/products"+tt.query))
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, 3, page.TotalPages)
			assert.Equal(t, tt.wantIDs, ids(page.Products))
		})
	}
}

func TestGetProduct(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	w := get(t, s, "/api/products/2")
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[domain.Product](t, w)
	assert.Equal(t, "Danbo ost", p.Title)
	require.NotNil(t, p.SalePrice)
	assert.InDelta(t, 39, *p.SalePrice, 1e-9)
}

func TestGetProduct_NotFound(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	w := get(t, s, "/api/products/999")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, problemContentType, w.Header().Get("Content-Type"))

	pd := decode[ProblemDetails](t, w)
	assert.Equal(t, http.StatusNotFound, pd.Status)
	assert.Equal(t, "Not Found", pd.Title)
	assert.Equal(t, "/api/products/999", pd.Instance)
}

func TestListCategories(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	body := decode[struct {
		Categories []categorySummary `json:"categories"`
	}](t, get(t, s, "/api/categories"))

	require.Len(t, body.Categories, len(KnownCategories))
	counts := make(map[string]int)
	for _, c := range body.Categories {
		counts[c.Name] = c.Count
	}
	assert.Equal(t, 2, counts["Mejeri"])
	assert.Equal(t, 1, counts["Frugt & grønt"])
	assert.Equal(t, 0, counts["Slik"])
	assert.Equal(t, "Kolonial", body.Categories[0].Name)
}

func TestCategoryProducts(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	for _, name := range []string{"Frugt_og_groent", "Frugt & grønt", "Frugt_og_groent.html"} {
		t.Run(name, func(t *testing.T) {
			w := get(t, s, "/api/categories/"+url.PathEscape(name)+"/products")
			require.Equal(t, http.StatusOK, w.Code)

			page := decode[categoryPage](t, w)
			assert.Equal(t, "Frugt & grønt", page.Category)
			assert.Equal(t, []string{"4"}, ids(page.Products))
		})
	}
}

func TestCategoryProducts_Unknown(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	w := get(t, s, "/api/categories/Elektronik/products")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, problemContentType, w.Header().Get("Content-Type"))
}

func TestSale(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	page := decode[Page](t, get(t, s, "/api/sale"))
	assert.Equal(t, []string{"2", "4"}, ids(page.Products))
}

type homeResponse struct {
	Groups []homeGroup `json:"groups"`
}

func TestHome(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	w := get(t, s, "/api/home")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[homeResponse](t, w)
	require.Len(t, resp.Groups, 5)

	var names []string
	for _, g := range resp.Groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{SaleGroupName, "Mejeri", "Frugt & grønt", "Ost m.v.", "Brød & Bavinchi"}, names)
	assert.Equal(t, SaleGroupSlug, resp.Groups[0].Slug)
	assert.Equal(t, "Frugt_og_groent", resp.Groups[2].Slug)

	assert.Equal(t, []string{"2", "4"}, ids(resp.Groups[0].Products))
	assert.Equal(t, []string{"1", "5"}, ids(resp.Groups[1].Products))
	assert.Equal(t, []string{"4"}, ids(resp.Groups[2].Products))
}

func TestHome_GroupsAreCapped(t *testing.T) {
	products := make([]domain.Product, 0, 9)
	for i := range 8 {
		products = append(products, domain.Product{
			ID: fmt.Sprint(i), Title: "Pasta", Category: "Kolonial", Price: 10, SalePrice: ptr(8),
		})
	}
	products = append(products, domain.Product{ID: "x", Title: "Vaskepulver", Category: "Ukendt", Price: 50})
	s := newTestServer(t, products, Options{})

	resp := decode[homeResponse](t, get(t, s, "/api/home"))
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, SaleGroupName, resp.Groups[0].Name)
	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5"}, ids(resp.Groups[0].Products))
	assert.Equal(t, "Kolonial", resp.Groups[1].Name)
	assert.Len(t, resp.Groups[1].Products, HomeGroupSize)
}

func TestHome_EmptyCatalog(t *testing.T) {
	s := newTestServer(t, nil, Options{})

	w := get(t, s, "/api/home")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"groups":[]}`, w.Body.String())
}

func TestSuggest(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	resp := decode[suggestResponse](t, get(t, s, "/api/suggest?q=ost+bananer"))
	assert.Equal(t, []string{"2", "4"}, ids(resp.Products))

	resp = decode[suggestResponse](t, get(t, s, "/api/suggest?q=m%C3%A6lk&limit=1"))
	assert.Equal(t, []string{"1"}, ids(resp.Products))

	w := get(t, s, "/api/suggest?q=")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"query":"","products":[]}`, w.Body.String())
}

func TestSuggest_DefaultLimit(t *testing.T) {
	products := make([]domain.Product, 0, 25)
	for i := range 25 {
		products = append(products, domain.Product{ID: fmt.Sprint(i), Title: "Æble", Price: 1})
	}
	s := newTestServer(t, products, Options{})

	resp := decode[suggestResponse](t, get(t, s, "/api/suggest?q=%C3%A6ble"))
	assert.Len(t, resp.Products, DefaultSuggestLimit)
}

func TestSuggest_BadLimit(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	for _, limit := range []string{"0", "abc", "1000"} {
		w := get(t, s, "/api/suggest?q=ost&limit="+limit)
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "grocery_feed_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	s := newTestServer(t, fixtures(), Options{Gatherer: reg})

	w := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "grocery_feed_test_total 1")
}

func TestDocs(t *testing.T) {
	dir := t.TempDir()
	doc := []byte("openapi: 3.0.3\ninfo:\n  title: Grocery Feed API\n  version: 1.0.0\npaths: {}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.yaml"), doc, 0o644))

	s := newTestServer(t, fixtures(), Options{DocsDir: dir})

	w := get(t, s, "/docs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Grocery Feed API")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, fixtures(), Options{})

	w := get(t, s, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, problemContentType, w.Header().Get("Content-Type"))
}
