package bridge

import (
	"petra/internal/cell"
)

// Scalar conversion protocol. Each host type comes in three modes:
//
//	Checked      Int()       fails on undef, partial numerics, references
//	Nilable      IntOpt()    undef becomes (zero, false, nil) instead of failing
//	Unchecked    ForceInt()  never fails; the runtime's own loose coercion
//
// Unchecked fallbacks: undef converts to the zero value; text numifies by
// longest numeric prefix ("50sec" is 50, "ololo" is 0); references are
// true as booleans, their cell identity as numbers, and a kind diagnostic
// such as "ARRAY(0x...)" as strings.

// Defined reports whether the scalar is anything but undef.
func (s *Scalar) Defined() bool { return s.Cell().Tag() != cell.TagUndef }

// Bool is the checked boolean conversion.
func (s *Scalar) Bool() (bool, error) { return checkedBool(s.Cell()) }

// BoolOpt is the checked-nilable boolean conversion.
func (s *Scalar) BoolOpt() (bool, bool, error) {
	if !s.Defined() {
		return false, false, nil
	}
	v, err := checkedBool(s.Cell())
	return v, err == nil, err
}

// ForceBool is the unchecked boolean conversion.
func (s *Scalar) ForceBool() bool { return forceBool(s.Cell()) }

// Int is the checked integer conversion. Fractional sources truncate
// toward zero, so "42.5" converts to 42.
func (s *Scalar) Int() (int64, error) { return checkedInt(s.Cell()) }

// IntOpt is the checked-nilable integer conversion.
func (s *Scalar) IntOpt() (int64, bool, error) {
	if !s.Defined() {
		return 0, false, nil
	}
	v, err := checkedInt(s.Cell())
	return v, err == nil, err
}

// ForceInt is the unchecked integer conversion.
func (s *Scalar) ForceInt() int64 { return forceInt(s.Cell()) }

// Float is the checked float conversion.
func (s *Scalar) Float() (float64, error) { return checkedFloat(s.Cell()) }

// FloatOpt is the checked-nilable float conversion.
func (s *Scalar) FloatOpt() (float64, bool, error) {
	if !s.Defined() {
		return 0, false, nil
	}
	v, err := checkedFloat(s.Cell())
	return v, err == nil, err
}

// ForceFloat is the unchecked float conversion.
func (s *Scalar) ForceFloat() float64 { return forceFloat(s.Cell()) }

// Str is the checked string conversion. String payloads come back
// byte-exact, embedded NULs and all.
func (s *Scalar) Str() (string, error) { return checkedStr(s.Cell()) }

// StrOpt is the checked-nilable string conversion.
func (s *Scalar) StrOpt() (string, bool, error) {
	if !s.Defined() {
		return "", false, nil
	}
	v, err := checkedStr(s.Cell())
	return v, err == nil, err
}

// ForceStr is the unchecked string conversion. References render as the
// runtime's kind diagnostic rather than failing.
func (s *Scalar) ForceStr() string { return forceStr(s.Cell()) }

// IsRef reports whether the scalar holds a reference.
func (s *Scalar) IsRef() bool { return s.Cell().Tag() == cell.TagRef }

// Class reports the blessing of a reference scalar, "" otherwise.
func (s *Scalar) Class() string {
	if !s.IsRef() {
		return ""
	}
	return s.Cell().Class()
}

// Deref follows a reference scalar to its target, wrapped as its most
// specific variant with a fresh reference. Non-reference scalars fail
// with UnexpectedValueType.
func (s *Scalar) Deref() (Wrapper, error) {
	c := s.Cell()
	if c.Tag() != cell.TagRef {
		return nil, errTypef("dereference of %s cell", c.Tag())
	}
	return FromCell(s.Interp(), c.Target(), false), nil
}
