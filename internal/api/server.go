package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grocery_feed/internal/api/middleware"
	"grocery_feed/internal/domain"
)

const (
	DefaultPerPage      = 60
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 100

	// HomeGroupSize caps every group on the home overview.
	HomeGroupSize = 6
	SaleGroupName = "Ugens Tilbud"
	SaleGroupSlug = "sale"
)

// Catalog is the read side of the product catalog.
type Catalog interface {
	All(ctx context.Context) []domain.Product
	ByCategory(ctx context.Context, name string) []domain.Product
	ByID(ctx context.Context, id string) (domain.Product, bool)
	OnSale(ctx context.Context) []domain.Product
	Categories(ctx context.Context) ([]string, map[string]int)
	MatchingAll(ctx context.Context, terms []string) []domain.Product
	MatchingAny(ctx context.Context, terms []string) []domain.Product
}

type Options struct {
	PerPage  int
	DocsDir  string
	Gatherer prometheus.Gatherer
	// CapturedAt reports the age of the cached catalog for /healthz.
	CapturedAt func() time.Time
}

type Server struct {
	catalog Catalog
	opts    Options
	logger  *slog.Logger
	router  *gin.Engine
}

func NewServer(catalog Catalog, opts Options, logger *slog.Logger) *Server {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		catalog: catalog,
		opts:    opts,
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/docs", s.handleDocs)

	api := s.router.Group("/api")
	api.GET("/home", s.handleHome)
	api.GET("/products", s.handleListProducts)
	api.GET("/products/:id", s.handleGetProduct)
	api.GET("/categories", s.handleListCategories)
	api.GET("/categories/:name/products", s.handleCategoryProducts)
	api.GET("/sale", s.handleSale)
	api.GET("/suggest", s.handleSuggest)

	s.router.NoRoute(func(c *gin.Context) {
		writeNotFound(c, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})
}
