package cell

import (
	"errors"
	"math"
	"strconv"
)

// Native string->number coercion. The runtime extracts the longest valid
// numeric prefix of a string and parses that, so "50sec" numifies to 50
// and "ololo" to 0. Checked host-side conversions instead demand a fully
// consumed literal; they use LooksLikeNumber.

// NumericPrefix returns the longest prefix of b (after leading ASCII
// whitespace) that forms a valid decimal numeric literal, and whether any
// such prefix exists.
func NumericPrefix(b []byte) (string, bool) {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	start := i
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	intDigits := 0
	for i < len(b) && isDigit(b[i]) {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(b) && b[i] == '.' {
		j := i + 1
		for j < len(b) && isDigit(b[j]) {
			j++
			fracDigits++
		}
		if intDigits > 0 || fracDigits > 0 {
			i = j
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return "", false
	}
	// Exponent part only counts when complete.
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		j := i + 1
		if j < len(b) && (b[j] == '+' || b[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(b) && isDigit(b[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			i = j
		}
	}
	return string(b[start:i]), true
}

// LooksLikeNumber reports whether b is, in its entirety, a valid numeric
// literal. Empty strings and partial literals like "50sec" are rejected.
func LooksLikeNumber(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	p, ok := NumericPrefix(b)
	return ok && len(p) == len(b)
}

// NumifyFloat is the runtime's native best-effort string->float coercion:
// the longest numeric prefix parsed as a double, 0 when no prefix exists.
func NumifyFloat(b []byte) float64 {
	p, ok := NumericPrefix(b)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(p, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	// On ErrRange ParseFloat still reports the closest representable
	// value (±Inf for over-range literals), which is what the runtime's
	// own parser produces for "1e999".
	return f
}

// NumifyInt is the native string->integer coercion: the longest numeric
// prefix, truncated toward zero. Pure-integer prefixes parse exactly;
// fractional or exponent forms go through the float path.
func NumifyInt(b []byte) int64 {
	p, ok := NumericPrefix(b)
	if !ok {
		return 0
	}
	if isIntegral(p) {
		if v, err := strconv.ParseInt(p, 10, 64); err == nil {
			return v
		}
	}
	return TruncInt(NumifyFloat(b))
}

// TruncInt truncates a float toward zero with the runtime's saturation
// rules for out-of-range values.
func TruncInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// FormatInt renders an integer the way the runtime stringifies it.
func FormatInt(v int64) string { return strconv.FormatInt(v, 10) }

// FormatFloat renders a float the way the runtime stringifies it.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isIntegral(p string) bool {
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '.' || c == 'e' || c == 'E' {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
