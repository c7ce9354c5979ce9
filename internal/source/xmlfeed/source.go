package xmlfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"grocery_feed/internal/domain"
	"grocery_feed/internal/normalize"
)

const (
	SourceID   domain.SourceID = "xml_feed"
	SourceName                 = "Remote XML product feed"

	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "GroceryFeed/1.0"
)

var (
	ErrMissingContainer = errors.New("document has no <products> container")
	ErrMissingID        = errors.New("product has no id")
)

// Config holds XML feed source configuration.
type Config struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Source fetches the remote XML product feed.
type Source struct {
	httpClient *http.Client
	url        string
	userAgent  string
	logger     *slog.Logger
}

// New creates a new XML feed source.
func New(cfg Config, logger *slog.Logger) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Source{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:       cfg.URL,
		userAgent: ua,
		logger:    logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() domain.SourceID {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// Fetch downloads and maps the feed. Network, status and shape failures
// are reported through the result's Err with no products.
func (s *Source) Fetch(ctx context.Context) domain.FetchResult {
	start := time.Now()
	result := domain.FetchResult{Source: SourceID}

	doc, err := s.doRequest(ctx)
	if err != nil {
		s.logger.Error("fetch feed failed", "url", s.url, "error", err)
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	items, err := productNodes(doc)
	if err != nil {
		s.logger.Error("unexpected feed shape", "url", s.url, "error", err)
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	result.Products = make([]domain.Product, 0, len(items))
	for i, item := range items {
		p, err := s.transform(item, &result)
		if err != nil {
			s.logger.Warn("skipping product", "index", i, "error", err)
			result.AddDiagnostic(domain.DiagMissingID, "", fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		result.Products = append(result.Products, p)
	}

	result.Duration = time.Since(start)
	s.logger.Info("fetched feed",
		"products", len(result.Products),
		"diagnostics", len(result.Diagnostics),
		"duration", result.Duration,
	)
	return result
}

func (s *Source) doRequest(ctx context.Context) (*xmlquery.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/xml, text/xml")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return doc, nil
}

// productNodes checks the products > product shape and returns the items.
func productNodes(doc *xmlquery.Node) ([]*xmlquery.Node, error) {
	container := doc.SelectElement(elemContainer)
	if container == nil {
		return nil, ErrMissingContainer
	}
	return container.SelectElements(elemItem), nil
}

func (s *Source) transform(item *xmlquery.Node, result *domain.FetchResult) (domain.Product, error) {
	id := text(item, elemID)
	if id == "" {
		return domain.Product{}, ErrMissingID
	}

	p := domain.Product{
		ID:            id,
		Title:         text(item, elemTitle),
		Description:   text(item, elemDesc),
		Brand:         text(item, elemBrand),
		ImageURL:      text(item, elemImage),
		Category:      text(item, elemCategory),
		SaleWindowRaw: text(item, elemSaleWindow),
		Source:        SourceID,
	}

	price, err := normalize.Price(text(item, elemPrice))
	if err != nil {
		result.AddDiagnostic(domain.DiagPrice, id, err.Error())
	}
	p.Price = price

	sale, err := normalize.Discount(text(item, elemSalePrice))
	if err != nil {
		result.AddDiagnostic(domain.DiagSalePrice, id, err.Error())
	}
	p.SalePrice = sale

	end, err := normalize.SaleEndErr(p.SaleWindowRaw)
	if err != nil {
		result.AddDiagnostic(domain.DiagSaleWindow, id, err.Error())
	}
	p.SaleEnd = end

	return p, nil
}

func text(n *xmlquery.Node, name string) string {
	child := n.SelectElement(name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.InnerText())
}
