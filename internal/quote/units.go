// Package quote holds the pure pricing math mirroring the pool
// contract's integer arithmetic. Nothing here performs I/O, and no
// floating point touches the amount path; floats never appear at all —
// display formatting is done with integer division and padding.
package quote

import (
	"errors"
	"math/big"
	"strings"
)

// Token decimal conventions at the contract boundary.
const (
	DecimalsA  = 18
	DecimalsB  = 6
	DecimalsLP = 18
)

// ErrInvalidAmount marks user input that cannot produce a quote:
// empty, non-numeric, or negative.
var ErrInvalidAmount = errors.New("invalid amount")

var ten = big.NewInt(10)

func pow10(n int) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(n)), nil)
}

// ParseUnits converts a human-entered decimal string into fixed-point
// integer units, truncating fractional digits beyond the token's
// precision. Equivalent to floor(value * 10^decimals) for non-negative
// input. Signs, exponents and anything non-numeric are rejected.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidAmount
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return nil, ErrInvalidAmount
	}
	// A second dot ends up inside fracPart and fails the digit check.
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return nil, ErrInvalidAmount
	}

	// Truncate excess fractional digits, pad the rest to full scale.
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	value := new(big.Int)
	if intPart != "" {
		if _, ok := value.SetString(intPart, 10); !ok {
			return nil, ErrInvalidAmount
		}
	}
	value.Mul(value, pow10(decimals))

	if fracPart != "" {
		frac := new(big.Int)
		if _, ok := frac.SetString(fracPart, 10); !ok {
			return nil, ErrInvalidAmount
		}
		value.Add(value, frac)
	}

	return value, nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatUnits renders fixed-point units as a decimal string with
// exactly places fractional digits, truncating toward zero.
func FormatUnits(v *big.Int, decimals, places int) string {
	if v == nil {
		v = new(big.Int)
	}

	scale := pow10(decimals)
	whole, rem := new(big.Int).QuoRem(v, scale, new(big.Int))

	if places == 0 {
		return whole.String()
	}

	frac := rem.String()
	if len(frac) < decimals {
		frac = strings.Repeat("0", decimals-len(frac)) + frac
	}
	if len(frac) > places {
		frac = frac[:places]
	} else if len(frac) < places {
		frac += strings.Repeat("0", places-len(frac))
	}

	return whole.String() + "." + frac
}
