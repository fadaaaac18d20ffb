package present

import (
	"fmt"
	"strconv"
	"strings"
)

// Korean numeral tiers, in won.
const (
	tierMan = 10_000
	tierEok = 100_000_000
	tierJo  = 1_000_000_000_000
)

// group renders n with thousands separators.
func group(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// Magnitude renders n in Korean numeral tiers (조, 억, 만). Tier counts use
// floor division, never rounding, so 1.9조 stays "1조 9,000억" instead of
// drifting up a unit. Mixed rendering keeps the next tier down when it is
// non-zero, e.g. "1조 2,345억".
func Magnitude(n int64) string {
	if n == 0 {
		return "0"
	}
	abs, sign := n, ""
	if n < 0 {
		abs, sign = -n, "-"
	}

	switch {
	case abs >= tierJo:
		jo := abs / tierJo
		rem := abs % tierJo
		if rem == 0 {
			return fmt.Sprintf("%s%d조", sign, jo)
		}
		if rem >= tierEok {
			return fmt.Sprintf("%s%d조 %s억", sign, jo, group(rem/tierEok))
		}
		return fmt.Sprintf("%s%.2f조", sign, float64(abs)/tierJo)
	case abs >= tierEok:
		eok := abs / tierEok
		rem := abs % tierEok
		if rem == 0 {
			return fmt.Sprintf("%s%d억", sign, eok)
		}
		if rem >= tierMan {
			return fmt.Sprintf("%s%d억 %s만", sign, eok, group(rem/tierMan))
		}
		return fmt.Sprintf("%s%.2f억", sign, float64(abs)/tierEok)
	case abs >= tierMan:
		return fmt.Sprintf("%s%.1f만", sign, float64(abs)/tierMan)
	default:
		return group(n)
	}
}

// FormatAmount renders a table cell: absent figures become "-", figures of
// at least one 만 use tier notation, smaller ones plain grouping.
func FormatAmount(n *int64) string {
	if n == nil {
		return "-"
	}
	v := *n
	if v >= tierMan || v <= -tierMan {
		return Magnitude(v)
	}
	return group(v)
}

// AxisTick renders a chart axis tick: a single coarse tier with fixed
// precision, no mixed rendering.
func AxisTick(n int64) string {
	if n == 0 {
		return "0"
	}
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= tierJo:
		return fmt.Sprintf("%.1f조", float64(n)/tierJo)
	case abs >= tierEok:
		return fmt.Sprintf("%.0f억", float64(n)/tierEok)
	case abs >= tierMan:
		return fmt.Sprintf("%.0f만", float64(n)/tierMan)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// Tooltip renders a hover label pairing the exact figure with its tier
// reading, e.g. "1,234,567,890,000원 (1조 2,345억)".
func Tooltip(n int64) string {
	return fmt.Sprintf("%s원 (%s)", group(n), Magnitude(n))
}
