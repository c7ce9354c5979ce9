// Package normalize turns free-form feed values into typed product fields.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var ErrUnparsable = errors.New("unparsable price")

// Currency tokens stripped before parsing. Longer tokens come first so that
// "kr." is not left behind as ".".
var currencyTokens = []string{"DKK", "EUR", "kr.", "kr", "€"}

type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("price %q: %v", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Price parses a price string such as "12,95 DKK". Empty input yields 0.
// On failure it returns 0 together with a *ParseError; the value is always
// usable by the caller.
func Price(raw string) (float64, error) {
	v, ok, err := parse(raw)
	if err != nil || !ok {
		return 0, err
	}
	return v, nil
}

// OptionalPrice is Price for discount fields: empty input and parse failures
// yield nil so that "no discount" and a zero amount stay distinguishable.
func OptionalPrice(raw string) (*float64, error) {
	v, ok, err := parse(raw)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func parse(raw string) (float64, bool, error) {
	cleaned := clean(raw)
	if cleaned == "" {
		return 0, false, nil
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false, &ParseError{Raw: raw, Err: ErrUnparsable}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, &ParseError{Raw: raw, Err: ErrUnparsable}
	}
	return v, true, nil
}

func clean(raw string) string {
	s := raw
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.ReplaceAll(s, ",", ".")
}

// Discount is OptionalPrice for feeds that send 0 when a product has no
// active discount: a zero amount is reported as absent.
func Discount(raw string) (*float64, error) {
	v, err := OptionalPrice(raw)
	if v != nil && *v == 0 {
		return nil, err
	}
	return v, err
}
