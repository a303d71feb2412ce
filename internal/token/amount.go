// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ParseAmount converts a user supplied amount into base units. Integers are
// taken as base units already; a decimal point scales by decimals.
func ParseAmount(s string, decimals uint32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, errors.Errorf("negative amount %s", s)
	}

	whole, frac, hasPoint := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	if !hasPoint {
		v, ok := new(big.Int).SetString(whole, 10)
		if !ok {
			return nil, errors.Errorf("invalid amount %q", s)
		}
		return v, nil
	}

	if uint32(len(frac)) > decimals {
		return nil, errors.Errorf("amount %s has more than %d decimal places", s, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatAmount renders base units with decimals fractional digits,
// trimming trailing zeros.
func FormatAmount(v *big.Int, decimals uint32) string {
	if v == nil {
		return "0"
	}
	if decimals == 0 {
		return v.String()
	}

	neg := v.Sign() < 0
	digits := new(big.Int).Abs(v).String()
	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}
	point := len(digits) - int(decimals)
	out := digits[:point]
	if frac := strings.TrimRight(digits[point:], "0"); frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
