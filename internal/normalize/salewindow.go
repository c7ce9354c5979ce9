package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNoSaleWindow = errors.New("sale window has no end date")

const saleEndLayout = "02/01"

var saleDateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04Z07:00",
}

// SaleEnd extracts the end of a "start/end" sale window as "dd/mm".
// Anything it cannot read yields "".
func SaleEnd(raw string) string {
	end, _ := SaleEndErr(raw)
	return end
}

// SaleEndErr is SaleEnd with the reason for an empty result. Blank input is
// not an error.
func SaleEndErr(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	parts := strings.Split(raw, "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("%q: %w", raw, ErrNoSaleWindow)
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("%q: %w", raw, ErrNoSaleWindow)
	}

	var lastErr error
	for _, layout := range saleDateLayouts {
		t, err := time.Parse(layout, token)
		if err == nil {
			return t.Format(saleEndLayout), nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("parse sale end %q: %w", token, lastErr)
}
