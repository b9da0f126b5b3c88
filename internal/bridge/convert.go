package bridge

import (
	"reflect"

	"petra/internal/cell"
	"petra/internal/errors"
)

// Cell-level conversion kernels. The Scalar methods, the container bulk
// conversions and the call binder all funnel through these so the
// coercion table lives in exactly one place.
//
// Checked mode fails on undef, on text that is not a fully consumed
// numeric literal (for numeric targets), and on references (except the
// boolean target, which any reference satisfies as true). Unchecked mode
// never fails and mirrors the runtime's native coercions.

func checkedBool(c *cell.Cell) (bool, error) {
	switch c.Tag() {
	case cell.TagUndef:
		return false, errors.New(errors.ConversionError, "undefined value")
	case cell.TagRef:
		// Any reference is true.
		return true, nil
	}
	return cell.Truth(c), nil
}

func checkedInt(c *cell.Cell) (int64, error) {
	switch c.Tag() {
	case cell.TagUndef:
		return 0, errors.New(errors.ConversionError, "undefined value")
	case cell.TagInt:
		return c.IntVal(), nil
	case cell.TagFloat:
		return cell.TruncInt(c.FloatVal()), nil
	case cell.TagStr:
		if !cell.LooksLikeNumber(c.StrVal()) {
			return 0, errors.Newf(errors.ConversionError, "%q is not a number", c.StrVal())
		}
		return cell.NumifyInt(c.StrVal()), nil
	case cell.TagRef:
		return 0, errors.New(errors.ConversionError, "reference in numeric conversion")
	}
	return 0, errors.Newf(errors.ConversionError, "%s value in numeric conversion", c.Tag())
}

func checkedFloat(c *cell.Cell) (float64, error) {
	switch c.Tag() {
	case cell.TagUndef:
		return 0, errors.New(errors.ConversionError, "undefined value")
	case cell.TagInt:
		return float64(c.IntVal()), nil
	case cell.TagFloat:
		return c.FloatVal(), nil
	case cell.TagStr:
		if !cell.LooksLikeNumber(c.StrVal()) {
			return 0, errors.Newf(errors.ConversionError, "%q is not a number", c.StrVal())
		}
		return cell.NumifyFloat(c.StrVal()), nil
	case cell.TagRef:
		return 0, errors.New(errors.ConversionError, "reference in numeric conversion")
	}
	return 0, errors.Newf(errors.ConversionError, "%s value in numeric conversion", c.Tag())
}

func checkedStr(c *cell.Cell) (string, error) {
	switch c.Tag() {
	case cell.TagUndef:
		return "", errors.New(errors.ConversionError, "undefined value")
	case cell.TagInt:
		return cell.FormatInt(c.IntVal()), nil
	case cell.TagFloat:
		return cell.FormatFloat(c.FloatVal()), nil
	case cell.TagStr:
		// Byte-exact, including embedded NULs.
		return string(c.StrVal()), nil
	case cell.TagRef:
		return "", errors.New(errors.ConversionError, "reference in string conversion")
	}
	return "", errors.Newf(errors.ConversionError, "%s value in string conversion", c.Tag())
}

func forceBool(c *cell.Cell) bool { return cell.Truth(c) }

func forceInt(c *cell.Cell) int64 {
	switch c.Tag() {
	case cell.TagInt:
		return c.IntVal()
	case cell.TagFloat:
		return cell.TruncInt(c.FloatVal())
	case cell.TagStr:
		return cell.NumifyInt(c.StrVal())
	case cell.TagRef:
		// The runtime numifies a reference to its cell identity.
		return int64(reflect.ValueOf(c.Target()).Pointer())
	}
	return 0
}

func forceFloat(c *cell.Cell) float64 {
	switch c.Tag() {
	case cell.TagInt:
		return float64(c.IntVal())
	case cell.TagFloat:
		return c.FloatVal()
	case cell.TagStr:
		return cell.NumifyFloat(c.StrVal())
	case cell.TagRef:
		return float64(int64(reflect.ValueOf(c.Target()).Pointer()))
	}
	return 0
}

func forceStr(c *cell.Cell) string { return cell.Stringify(c) }

func errTypef(format string, args ...any) error {
	return errors.Newf(errors.UnexpectedValueType, format, args...)
}
