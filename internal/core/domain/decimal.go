package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decimal carries a numeric value as its exact decimal text. Coordinates and
// sensor readings are never converted through float64 on the write path, so a
// value ingested as 10.5 is stored and served back as 10.5, not 10.499999.
type Decimal string

// ParseDecimal interprets a raw JSON value (number or numeric string) as a
// Decimal. It returns false when the value is absent or not a number.
func ParseDecimal(raw json.RawMessage) (Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return "", false
	}
	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return "", false
		}
		s = strings.TrimSpace(unquoted)
	}
	if !isFiniteNumber(s) {
		return "", false
	}
	return Decimal(s), true
}

// isFiniteNumber reports whether s is a finite decimal. ParseFloat alone is
// not enough: it accepts "NaN" and "Inf", which are not valid JSON numbers
// and would poison every later read of the partition.
func isFiniteNumber(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// DecimalFromString validates a stored decimal text, e.g. from a NUMERIC
// column read back as text.
func DecimalFromString(s string) (Decimal, error) {
	if !isFiniteNumber(s) {
		return "", fmt.Errorf("invalid decimal %q", s)
	}
	return Decimal(s), nil
}

// IsZero reports whether the value is absent.
func (d Decimal) IsZero() bool { return d == "" }

// Float64 converts to float64 for consumers that tolerate rounding
// (GraphQL, distance math). The JSON path never uses it.
func (d Decimal) Float64() float64 {
	f, _ := strconv.ParseFloat(string(d), 64)
	return f
}

func (d Decimal) String() string { return string(d) }

// MarshalJSON writes the decimal text verbatim as a JSON number.
func (d Decimal) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	if !isFiniteNumber(string(d)) {
		return nil, fmt.Errorf("decimal %q is not a number", string(d))
	}
	return []byte(d), nil
}

// UnmarshalJSON accepts either a JSON number or a numeric string.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	v, ok := ParseDecimal(data)
	if !ok {
		return fmt.Errorf("cannot parse %q as decimal", string(data))
	}
	*d = v
	return nil
}
