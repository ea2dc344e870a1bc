package metrics

import (
	"fmt"
	"strings"
)

// FormatDuration renders minutes as "30m" below an hour and "1.5h" above.
func FormatDuration(minutes float64) string {
	if hours := minutes / 60; hours >= 1 {
		return fmt.Sprintf("%.1fh", hours)
	}
	return fmt.Sprintf("%.0fm", minutes)
}

// FormatNumber renders n with thousands separators.
func FormatNumber[T ~int | ~int64 | ~uint64](n T) string {
	s := fmt.Sprintf("%d", n)
	if digits, ok := strings.CutPrefix(s, "-"); ok {
		return "-" + group(digits)
	}
	return group(s)
}

func group(digits string) string {
	var out []byte
	for i := 0; i < len(digits); i++ {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return string(out)
}
