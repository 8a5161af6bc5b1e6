package shopify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// moneyScale is the fixed storage precision for monetary amounts
const moneyScale = 4

// ErrInvalidMoney indicates a monetary string that could not be parsed
var ErrInvalidMoney = errors.New("shopify: invalid monetary amount")

// ParseMoney parses a decimal-string monetary amount into fixed precision.
// The platform sends amounts as strings ("19.99"); they are rounded half-up
// to the storage scale, never parsed through floats.
func ParseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty string", ErrInvalidMoney)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	return d.Round(moneyScale), nil
}

// ParseMoneyPtr parses an optional monetary string. Empty input yields nil,
// not zero: absence and a zero amount are different facts.
func ParseMoneyPtr(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ParseMoney(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseTime parses a platform ISO-8601 timestamp
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("shopify: empty timestamp")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("shopify: invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ParseTimePtr parses an optional timestamp. Empty input yields nil.
func ParseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EpochMillis converts a timestamp to epoch milliseconds
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// StripGID reduces a platform URI identifier ("gid://shopify/Product/123")
// to the bare external id ("123"). Bare ids pass through unchanged.
func StripGID(id string) string {
	if !strings.HasPrefix(id, "gid://") {
		return id
	}
	idx := strings.LastIndex(id, "/")
	if idx < 0 || idx == len(id)-1 {
		return id
	}
	// Drop a ?query suffix some gids carry
	bare := id[idx+1:]
	if q := strings.IndexByte(bare, '?'); q >= 0 {
		bare = bare[:q]
	}
	return bare
}

// JoinTags normalizes the platform's tag field, which arrives either as a
// comma-separated string or a list, into one canonical comma-joined string.
func JoinTags(tags []string) string {
	trimmed := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return strings.Join(trimmed, ", ")
}

// SplitTags splits a comma-separated tag string into trimmed tags
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
