// Package amount converts between SCRT decimal strings and integer uSCRT
// base units and validates user-entered amounts.
//
// All arithmetic is done on strings and math/big integers; floating point is
// never involved, so amounts above 2^53 base units survive unchanged.
package amount

import (
	"errors"
	"math/big"
	"regexp"
	"strings"
)

// Decimals is the number of fractional digits of the display currency.
const Decimals = 6

var (
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrNegativeAmount   = errors.New("negative_amount")
	ErrValidationFailed = errors.New("validation_failed")
)

var (
	decimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
	unitsPerCoin   = big.NewInt(1_000_000)
)

// UnitsPerCoin returns a fresh copy of 10^Decimals.
func UnitsPerCoin() *big.Int {
	return new(big.Int).Set(unitsPerCoin)
}

// ToBaseUnits parses a decimal SCRT string into uSCRT. Fractional digits past
// the sixth are truncated, never rounded.
func ToBaseUnits(decimal string) (*big.Int, error) {
	if !decimalPattern.MatchString(decimal) {
		return nil, ErrInvalidAmount
	}
	whole, frac, _ := strings.Cut(decimal, ".")
	if len(frac) > Decimals {
		frac = frac[:Decimals]
	}
	frac += strings.Repeat("0", Decimals-len(frac))

	out, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, ErrInvalidAmount
	}
	return out, nil
}

// ToDecimal renders uSCRT as the shortest SCRT string: trailing fractional
// zeros are dropped and the point is omitted for whole amounts.
func ToDecimal(baseUnits *big.Int) (string, error) {
	if baseUnits == nil {
		return "", ErrInvalidAmount
	}
	if baseUnits.Sign() < 0 {
		return "", ErrNegativeAmount
	}
	whole, frac := new(big.Int).QuoRem(baseUnits, unitsPerCoin, new(big.Int))
	fracStr := strings.TrimRight(padLeft(frac.String(), Decimals), "0")
	if fracStr == "" {
		return whole.String(), nil
	}
	return whole.String() + "." + fracStr, nil
}

// MustDecimal is ToDecimal for values already known to be valid.
func MustDecimal(baseUnits *big.Int) string {
	s, err := ToDecimal(baseUnits)
	if err != nil {
		panic(err)
	}
	return s
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
