package util

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/dafibh/arthaku/internal/domain"
)

var (
	periodKeyRegex = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)
	yearRegex      = regexp.MustCompile(`^\d{4}$`)
)

// Now is the clock used for the current period. Tests may replace it.
var Now = time.Now

// PeriodKey formats a year and month as YYYY-MM
func PeriodKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// CurrentPeriodKey returns the key of the current calendar month
func CurrentPeriodKey() string {
	now := Now()
	return PeriodKey(now.Year(), int(now.Month()))
}

// ParsePeriodKey splits a YYYY-MM key into year and month
func ParsePeriodKey(key string) (int, int, error) {
	m := periodKeyRegex.FindStringSubmatch(key)
	if m == nil {
		return 0, 0, fmt.Errorf("period key %q: %w", key, domain.ErrInvalidFormat)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return year, month, nil
}

// ShiftPeriodKey moves a key by whole months, rolling over year boundaries
func ShiftPeriodKey(key string, deltaMonths int) (string, error) {
	year, month, err := ParsePeriodKey(key)
	if err != nil {
		return "", err
	}
	// Day 1 so normalisation never spills into a third month
	t := time.Date(year, time.Month(month)+time.Month(deltaMonths), 1, 0, 0, 0, 0, time.UTC)
	if t.Year() < 1 || t.Year() > 9999 {
		return "", fmt.Errorf("shifting %q by %d months leaves the four-digit year range: %w", key, deltaMonths, domain.ErrInvalidFormat)
	}
	return PeriodKey(t.Year(), int(t.Month())), nil
}

// PeriodYear returns the four-digit year of a key
func PeriodYear(key string) (string, error) {
	year, _, err := ParsePeriodKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", year), nil
}

// ParseYear validates a four-digit year string
func ParseYear(year string) (int, error) {
	if !yearRegex.MatchString(year) {
		return 0, fmt.Errorf("year %q: %w", year, domain.ErrInvalidFormat)
	}
	y, _ := strconv.Atoi(year)
	return y, nil
}

// IsHistoricalPeriod returns true if the key is before the current month
func IsHistoricalPeriod(key string) bool {
	return key < CurrentPeriodKey()
}
