package statement

import (
	"strconv"
	"strings"
)

// ParseAmount converts a raw upstream amount string to a signed integer in
// won. Thousands separators and surrounding whitespace are stripped first.
// An empty string or a bare "-" placeholder means the figure is absent, not
// zero, and reports ok=false; so does anything that fails to parse.
func ParseAmount(raw string) (int64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" || s == "-" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
