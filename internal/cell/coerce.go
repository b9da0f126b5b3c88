package cell

import "fmt"

// Truth applies the runtime's native boolean coercion: undef, integer 0,
// float 0.0, "" and "0" are false; every other value, including "00" and
// "000", is true. References and containers are always true.
func Truth(c *Cell) bool {
	switch c.Tag() {
	case TagUndef:
		return false
	case TagInt:
		return c.i != 0
	case TagFloat:
		return c.f != 0
	case TagStr:
		return !(len(c.s) == 0 || (len(c.s) == 1 && c.s[0] == '0'))
	}
	return true
}

// Stringify applies the runtime's native string coercion. References and
// containers render as a diagnostic naming their kind and identity, the
// same shape the runtime prints them with.
func Stringify(c *Cell) string {
	switch c.Tag() {
	case TagUndef:
		return ""
	case TagInt:
		return FormatInt(c.i)
	case TagFloat:
		return FormatFloat(c.f)
	case TagStr:
		return string(c.s)
	case TagRef:
		return refString(c)
	case TagArray:
		return fmt.Sprintf("ARRAY(%p)", c)
	case TagHash:
		return fmt.Sprintf("HASH(%p)", c)
	case TagCode:
		return fmt.Sprintf("CODE(%p)", c)
	}
	return ""
}

func refString(c *Cell) string {
	kind := "SCALAR"
	switch c.ref.Tag() {
	case TagArray:
		kind = "ARRAY"
	case TagHash:
		kind = "HASH"
	case TagCode:
		kind = "CODE"
	case TagRef:
		kind = "REF"
	}
	s := fmt.Sprintf("%s(%p)", kind, c.ref)
	if c.class != "" {
		s = c.class + "=" + s
	}
	return s
}

// Numify applies the runtime's native numeric coercion, reporting the
// value as either an exact integer or a float.
func Numify(c *Cell) (i int64, f float64, isFloat bool) {
	switch c.Tag() {
	case TagInt:
		return c.i, 0, false
	case TagFloat:
		return 0, c.f, true
	case TagStr:
		p, ok := NumericPrefix(c.s)
		if !ok {
			return 0, 0, false
		}
		if isIntegral(p) {
			return NumifyInt(c.s), 0, false
		}
		return 0, NumifyFloat(c.s), true
	}
	// undef and every non-scalar numify to zero
	return 0, 0, false
}
