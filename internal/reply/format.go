package reply

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPrice renders an amount of đồng the single canonical way used by
// every renderer in this package. The fidelity guard compares numeric
// tokens literally, so no other price formatting may appear in bot output.
func FormatPrice(price float64) string {
	switch {
	case price >= 1_000_000:
		millions := price / 1_000_000
		if millions == float64(int64(millions)) {
			return fmt.Sprintf("%d triệu", int64(millions))
		}
		return fmt.Sprintf("%.1f triệu", millions)
	case price >= 1_000:
		return fmt.Sprintf("%.0fk", price/1_000)
	default:
		return fmt.Sprintf("%.0f đ", price)
	}
}

// ParsePrice is the inverse of FormatPrice for the three rendered forms.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "triệu"):
		raw := strings.TrimSpace(strings.TrimSuffix(s, "triệu"))
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parse price %q: %w", s, err)
		}
		return value * 1_000_000, nil
	case strings.HasSuffix(s, "k"):
		value, err := strconv.ParseFloat(strings.TrimSuffix(s, "k"), 64)
		if err != nil {
			return 0, fmt.Errorf("parse price %q: %w", s, err)
		}
		return value * 1_000, nil
	case strings.HasSuffix(s, "đ"):
		raw := strings.TrimSpace(strings.TrimSuffix(s, "đ"))
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parse price %q: %w", s, err)
		}
		return value, nil
	default:
		return 0, fmt.Errorf("parse price %q: unknown unit", s)
	}
}
