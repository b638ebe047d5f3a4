// Package money holds the exact-precision monetary types shared by the
// merchant client and the emulator. Amounts never pass through float64.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/govalues/decimal"
)

// ErrInvalidAmount is returned when a value cannot be parsed as a decimal.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is an arbitrary-precision decimal. The zero value is 0.
//
// On the wire an Amount is written as its exact decimal string ("12.50")
// and read back from either a JSON string or a bare JSON number literal.
type Amount struct {
	d decimal.Decimal
}

// Parse converts a decimal literal such as "12.50" into an Amount.
// The scale of the literal is preserved.
func Parse(s string) (Amount, error) {
	d, err := decimal.Parse(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return Amount{d: d}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromDecimal wraps an existing decimal value.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// Decimal returns the underlying decimal.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

func (a Amount) String() string {
	return a.d.String()
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// Equal reports whether a and b are numerically equal (12.5 == 12.50).
func (a Amount) Equal(b Amount) bool {
	return a.d.Cmp(b.d) == 0
}

// Less reports whether a < b.
func (a Amount) Less(b Amount) bool {
	return a.d.Cmp(b.d) < 0
}

// Add returns a + b. It fails only when the result overflows.
func (a Amount) Add(b Amount) (Amount, error) {
	d, err := a.d.Add(b.d)
	if err != nil {
		return Amount{}, fmt.Errorf("add %s + %s: %w", a, b, err)
	}
	return Amount{d: d}, nil
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) (Amount, error) {
	d, err := a.d.Sub(b.d)
	if err != nil {
		return Amount{}, fmt.Errorf("sub %s - %s: %w", a, b, err)
	}
	return Amount{d: d}, nil
}

// Sign returns -1, 0 or +1 depending on the sign of a.
func (a Amount) Sign() int {
	return a.d.Sign()
}

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool {
	return a.d.Sign() > 0
}

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool {
	return a.d.Sign() == 0
}

// MarshalJSON writes the exact decimal string, quoted.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.d.String())), nil
}

// UnmarshalJSON accepts "12.50" and 12.50 alike.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, s)
		}
		s = unq
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText lets an Amount be used in query strings and form values.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.d.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Money is the structured amount record used by the API: a value and the
// ISO 4217 currency it is expressed in.
type Money struct {
	Value    Amount `json:"value"`
	Currency string `json:"currency,omitempty"`
}

// New builds a Money from a decimal literal and a currency code.
func New(value, currency string) (Money, error) {
	a, err := Parse(value)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: a, Currency: strings.ToUpper(strings.TrimSpace(currency))}, nil
}

func (m Money) String() string {
	if m.Currency == "" {
		return m.Value.String()
	}
	return m.Value.String() + " " + m.Currency
}

// UnmarshalJSON accepts the structured {"value":..,"currency":..} form and,
// for older payloads, a bare amount with no currency.
func (m *Money) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var a Amount
		if err := a.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		*m = Money{Value: a}
		return nil
	}
	type plain Money
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*m = Money(out)
	return nil
}

// ValueOf returns m.Value, or zero when m is nil. Callers use it to compare
// optional order amounts without nil checks at every site.
func ValueOf(m *Money) Amount {
	if m == nil {
		return Amount{}
	}
	return m.Value
}
