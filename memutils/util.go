package memutils

import (
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Unsigned | ~int
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two.
// The result wraps if value is within alignment of the top of T's range; use AlignUpChecked
// when value is caller-controlled.
func AlignUp[T constraints.Unsigned](value T, alignment T) T {
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignUpChecked is AlignUp for uint that reports false instead of wrapping.
func AlignUpChecked(value uint, alignment uint) (uint, bool) {
	sum, carry := bits.Add(value, alignment-1, 0)
	if carry != 0 {
		return 0, false
	}
	return sum &^ (alignment - 1), true
}

// AddChecked returns a+b, or false if the sum does not fit in a uint.
func AddChecked(a, b uint) (uint, bool) {
	sum, carry := bits.Add(a, b, 0)
	return sum, carry == 0
}
