package internal

import (
	"bytes"
	"fmt"
	"strings"
)

// CurrencyCode is an ISO-4217 alphabetic currency code, always uppercase.
// The set of currencies the system tracks lives in the currency directory,
// not here; this type only guarantees shape.
type CurrencyCode string

func NewCurrencyCode(s string) (CurrencyCode, error) {
	ccy := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if !ccy.IsValid() {
		return "", fmt.Errorf("invalid currency code %q", s)
	}
	return ccy, nil
}

const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	CHF CurrencyCode = "CHF"
	JPY CurrencyCode = "JPY"
)

// IsValid reports whether the code is three ASCII letters, uppercase.
func (c CurrencyCode) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

func (c CurrencyCode) IsBlank() bool { return strings.TrimSpace(string(c)) == "" }

func (c CurrencyCode) String() string { return string(c) }

func (c CurrencyCode) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", c.String())), nil
}

func (c *CurrencyCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := strings.Trim(string(b), "\"")
	ccy, err := NewCurrencyCode(s)
	if err != nil {
		return err
	}
	*c = ccy
	return nil
}
