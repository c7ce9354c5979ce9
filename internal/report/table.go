// Package report renders refresh results as aligned plain-text tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"grocery_feed/internal/domain"
)

const maxTitleWidth = 40

// Table renders rows under a header, padding cells by display width so
// Danish letters and wide runes line up.
func Table(w io.Writer, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	sep := make([]string, len(header))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, formatRow(header, widths), formatRow(sep, widths))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func formatRow(row []string, widths []int) string {
	var sb strings.Builder
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(runewidth.FillRight(cell, width))
	}
	return strings.TrimRight(sb.String(), " ")
}

// Products writes up to limit products. A limit of zero or less writes all.
func Products(w io.Writer, products []domain.Product, limit int) error {
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		sale := ""
		if p.OnSale() {
			sale = formatPrice(*p.SalePrice)
			if p.SaleEnd != "" {
				sale += " (til " + p.SaleEnd + ")"
			}
		}
		rows = append(rows, []string{
			p.ID,
			runewidth.Truncate(p.Title, maxTitleWidth, "…"),
			p.Category,
			formatPrice(p.Price),
			sale,
			string(p.Source),
		})
	}

	return Table(w, []string{"ID", "TITLE", "CATEGORY", "PRICE", "SALE", "SOURCE"}, rows)
}

// Stats writes a per-source summary followed by the run totals.
func Stats(w io.Writer, stats *domain.RefreshStats) error {
	rows := make([][]string, 0, len(stats.Sources))
	for _, src := range stats.Sources {
		rows = append(rows, []string{
			string(src.SourceID),
			strconv.Itoa(src.Fetched),
			strconv.Itoa(src.Diagnostics),
			src.Duration.Round(time.Millisecond).String(),
			src.Err,
		})
	}
	if err := Table(w, []string{"SOURCE", "FETCHED", "DIAGNOSTICS", "DURATION", "ERROR"}, rows); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nrun %s: %d products, %d replaced, %d price events, %d errors in %s\n",
		stats.RunID, stats.Merged, stats.Replaced, stats.PriceEvents, stats.Errors, stats.Duration.Round(time.Millisecond))
	return err
}

// Runs writes refresh history rows, newest first.
func Runs(w io.Writer, runs []domain.RefreshRun) error {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			strconv.FormatInt(run.DurationMs, 10) + "ms",
			strconv.Itoa(run.Merged),
			strconv.Itoa(run.Replaced),
			strconv.Itoa(run.Errors),
		})
	}
	return Table(w, []string{"RUN", "STARTED", "DURATION", "MERGED", "REPLACED", "ERRORS"}, rows)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SourceStates writes the last recorded outcome of each source.
func SourceStates(w io.Writer, states []domain.SourceState) error {
	rows := make([][]string, 0, len(states))
	for _, st := range states {
		rows = append(rows, []string{
			st.SourceID,
			st.LastRefreshedAt.Format("2006-01-02 15:04:05"),
			strconv.FormatInt(st.LastCount, 10),
			strconv.FormatInt(st.TotalRefreshes, 10),
			st.LastError,
		})
	}
	return Table(w, []string{"SOURCE", "LAST REFRESH", "COUNT", "REFRESHES", "LAST ERROR"}, rows)
}
