// Package spreadsheet reads the local product export workbook.
package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"grocery_feed/internal/domain"
	"grocery_feed/internal/normalize"
)

const (
	SourceID   domain.SourceID = "spreadsheet"
	SourceName                 = "Local spreadsheet export"

	// DefaultHeaderRow skips the title row above the column headers.
	DefaultHeaderRow = 1
)

// Column headers of the export.
const (
	ColID         = "/product/id"
	ColTitle      = "/product/title"
	ColPrice      = "/product/price"
	ColSalePrice  = "/product/sale_price"
	ColDesc       = "/product/description"
	ColBrand      = "/product/brand"
	ColImage      = "/product/imageLink"
	ColCategory   = "/product/product_type"
	ColSaleWindow = "/product/sale_price_effective_date"
)

var (
	ErrNoSheets    = errors.New("workbook has no sheets")
	ErrNoHeaderRow = errors.New("header row not found")
	ErrNoIDColumn  = errors.New("id column not found")
)

type Config struct {
	Path  string
	Sheet string // first sheet when empty
	// HeaderRow is the zero-based index of the header row; values below 1
	// fall back to DefaultHeaderRow.
	HeaderRow int
}

type Source struct {
	path      string
	sheet     string
	headerRow int
	logger    *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Source {
	headerRow := cfg.HeaderRow
	if headerRow < 1 {
		headerRow = DefaultHeaderRow
	}
	return &Source{
		path:      cfg.Path,
		sheet:     cfg.Sheet,
		headerRow: headerRow,
		logger:    logger.With("source", SourceID),
	}
}

func (s *Source) ID() domain.SourceID {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

// Fetch reads the workbook from disk on every call. Open and schema
// failures are reported through the result's Err with no products.
func (s *Source) Fetch(ctx context.Context) domain.FetchResult {
	start := time.Now()
	result := domain.FetchResult{Source: SourceID}

	rows, err := s.readRows()
	if err != nil {
		s.logger.Error("read spreadsheet failed", "path", s.path, "error", err)
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	cols, err := s.columns(rows)
	if err != nil {
		s.logger.Error("unexpected spreadsheet schema", "path", s.path, "error", err)
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	for i, row := range rows[s.headerRow+1:] {
		if err := ctx.Err(); err != nil {
			result.Err = err
			result.Products = nil
			break
		}

		rowNum := s.headerRow + 2 + i
		p, ok := s.transform(row, cols, &result)
		if !ok {
			result.AddDiagnostic(domain.DiagMissingID, cols.cell(row, ColID), fmt.Sprintf("row %d: unusable id", rowNum))
			continue
		}
		result.Products = append(result.Products, p)
	}

	result.Duration = time.Since(start)
	s.logger.Info("read spreadsheet",
		"products", len(result.Products),
		"diagnostics", len(result.Diagnostics),
		"duration", result.Duration,
	)
	return result
}

func (s *Source) readRows() ([][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheets
		}
		sheet = sheets[0]
	}

	// Raw values keep number formats such as "#,##0.00" out of prices.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

type columnIndex map[string]int

func (c columnIndex) cell(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[i])
	if isNaN(v) {
		return ""
	}
	return v
}

func (s *Source) columns(rows [][]string) (columnIndex, error) {
	if len(rows) <= s.headerRow {
		return nil, fmt.Errorf("%w at index %d", ErrNoHeaderRow, s.headerRow)
	}

	cols := make(columnIndex)
	for i, name := range rows[s.headerRow] {
		name = strings.TrimSpace(name)
		if _, dup := cols[name]; name != "" && !dup {
			cols[name] = i
		}
	}
	if _, ok := cols[ColID]; !ok {
		return nil, ErrNoIDColumn
	}
	return cols, nil
}

func (s *Source) transform(row []string, cols columnIndex, result *domain.FetchResult) (domain.Product, bool) {
	id, ok := canonicalID(cols.cell(row, ColID))
	if !ok {
		return domain.Product{}, false
	}

	p := domain.Product{
		ID:            id,
		Title:         cols.cell(row, ColTitle),
		Description:   cols.cell(row, ColDesc),
		Brand:         cols.cell(row, ColBrand),
		ImageURL:      cols.cell(row, ColImage),
		Category:      cols.cell(row, ColCategory),
		SaleWindowRaw: cols.cell(row, ColSaleWindow),
		Source:        SourceID,
	}

	price, err := normalize.Price(cols.cell(row, ColPrice))
	if err != nil {
		result.AddDiagnostic(domain.DiagPrice, id, err.Error())
	}
	p.Price = price

	sale, err := normalize.Discount(cols.cell(row, ColSalePrice))
	if err != nil {
		result.AddDiagnostic(domain.DiagSalePrice, id, err.Error())
	}
	p.SalePrice = sale

	end, err := normalize.SaleEndErr(p.SaleWindowRaw)
	if err != nil {
		result.AddDiagnostic(domain.DiagSaleWindow, id, err.Error())
	}
	p.SaleEnd = end

	return p, true
}

// canonicalID accepts numeric-looking ids only. Digit strings are kept
// verbatim; float renderings such as "90357.0" become "90357".
func canonicalID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if isDigits(raw) {
		return raw, true
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return raw, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isNaN(s string) bool {
	return strings.EqualFold(s, "nan")
}
