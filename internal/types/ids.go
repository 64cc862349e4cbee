package types

import (
	"encoding/json"
	"strconv"
)

// FormatID renders a numeric identity as the canonical string join key:
// integral values print without a fractional part ("101", not "101.0").
func FormatID(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatReviewID renders a review id. Integers are printed digit for digit,
// whatever their size; other numbers go through FormatID.
func FormatReviewID(id json.Number) string {
	s := id.String()
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FormatID(f)
	}
	return s
}
