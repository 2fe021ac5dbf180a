package utils

import "github.com/shopspring/decimal"

// RoundTo rounds a float half away from zero to the specified decimal places.
//
// Rounding goes through a decimal representation so that values such as
// 1.005 round to 1.01 rather than to the nearest binary neighbour.
func RoundTo(val float64, decimals int32) float64 {
	return decimal.NewFromFloat(val).Round(decimals).InexactFloat64()
}

// RoundPtr applies RoundTo to an optional value.
func RoundPtr(val *float64, decimals int32) *float64 {
	if val == nil {
		return nil
	}
	r := RoundTo(*val, decimals)
	return &r
}
