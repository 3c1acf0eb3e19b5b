package dice

import (
	"fmt"
	"math"
	"strconv"
)

// formatInt renders n for trace output, switching to scientific notation once
// its magnitude reaches 10^MaxExponentDigits. Inside brackets the scientific
// form is parenthesized to keep it apart from the surrounding syntax; at the
// trailing result position it is not.
func formatInt(cfg Config, n int64, atResult bool) string {
	if !needsExponent(cfg, n) {
		return strconv.FormatInt(n, 10)
	}
	s := strconv.FormatFloat(float64(n), 'e', cfg.MaxExponentDigits, 64)
	if atResult {
		return s
	}
	return "(" + s + ")"
}

func needsExponent(cfg Config, n int64) bool {
	if cfg.MaxExponentDigits <= 0 {
		return false
	}
	threshold := int64(1)
	for i := 0; i < cfg.MaxExponentDigits; i++ {
		if threshold > math.MaxInt64/10 {
			return false
		}
		threshold *= 10
	}
	if n < 0 {
		n = -n
	}
	if n < 0 {
		// -MinInt64 overflows back to itself; its magnitude clears any
		// representable threshold.
		return true
	}
	return n >= threshold
}

// tooLongItems is the placeholder substituted for an itemized bracket body
// once the declared count reaches MaxOutputItems.
func tooLongItems(count int64) string {
	return fmt.Sprintf("{I18N:%s,length=%d}", KeyOutputTooLong, count)
}

// clampDetail replaces a trace that overruns MaxOutputLength with the generic
// placeholder. The numeric result is never affected.
func clampDetail(cfg Config, detail string) string {
	if len(detail) > cfg.MaxOutputLength {
		return "{I18N:" + KeyTooLong + "}"
	}
	return detail
}
