// Package money converts between human-readable amounts and the
// smallest-unit integer strings every monetary column stores. Amounts
// never pass through floats.
package money

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToSmallestUnit scales amount by 10^decimals and returns the integer
// result as a decimal string. Fails on negative amounts and on amounts
// with more fractional digits than the token carries.
func ToSmallestUnit(amount decimal.Decimal, decimals int) (string, error) {
	if decimals < 0 {
		return "", fmt.Errorf("negative decimals: %d", decimals)
	}
	if amount.IsNegative() {
		return "", fmt.Errorf("negative amount: %s", amount.String())
	}

	scaled := amount.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return "", fmt.Errorf("amount %s has more than %d decimal places", amount.String(), decimals)
	}

	return scaled.Truncate(0).BigInt().String(), nil
}

// FromSmallestUnit parses a smallest-unit decimal string back into a
// human-readable amount.
func FromSmallestUnit(units string, decimals int) (decimal.Decimal, error) {
	if decimals < 0 {
		return decimal.Zero, fmt.Errorf("negative decimals: %d", decimals)
	}

	n, ok := new(big.Int).SetString(strings.TrimSpace(units), 10)
	if !ok {
		return decimal.Zero, fmt.Errorf("malformed smallest-unit amount: %q", units)
	}
	if n.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("negative smallest-unit amount: %q", units)
	}

	return decimal.NewFromBigInt(n, 0).Shift(-int32(decimals)), nil
}

// Cmp compares two smallest-unit decimal strings. Returns -1, 0 or 1.
func Cmp(a, b string) (int, error) {
	x, ok := new(big.Int).SetString(strings.TrimSpace(a), 10)
	if !ok {
		return 0, fmt.Errorf("malformed smallest-unit amount: %q", a)
	}
	y, ok := new(big.Int).SetString(strings.TrimSpace(b), 10)
	if !ok {
		return 0, fmt.Errorf("malformed smallest-unit amount: %q", b)
	}
	return x.Cmp(y), nil
}
