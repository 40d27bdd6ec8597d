package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a whole-currency-unit value read from user input. Decoding never
// fails: anything that is not a number becomes zero, fractions are floored and
// negatives clamp to zero.
type Amount int64

// UnmarshalJSON accepts JSON numbers and numeric strings
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		raw = s
	}

	*a = Amount(ParseAmount(raw))
	return nil
}

// Int64 returns the amount as int64
func (a Amount) Int64() int64 {
	return int64(a)
}

// ParseAmount parses a whole-unit amount, failing soft to zero.
// Thousands separators ("1.500.000") are not interpreted; use plain digits.
func ParseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return ClampAmount(d.Floor().IntPart())
}

// ClampAmount enforces the non-negative invariant on monetary fields
func ClampAmount(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
