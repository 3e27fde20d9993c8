package domain

import "math"

// MultiplyCents applies a float factor to an integer cent amount with
// round-half-up. Every modifier application rounds independently so the
// fold order is observable in the result.
func MultiplyCents(cents int64, factor float64) int64 {
	return RoundHalfUp(float64(cents) * factor)
}

// PercentOf returns pct percent of an integer cent amount, round-half-up.
func PercentOf(cents int64, pct float64) int64 {
	return RoundHalfUp(float64(cents) * pct / 100)
}

// RoundHalfUp rounds to the nearest integer cent with .5 rounding away
// from zero.
func RoundHalfUp(v float64) int64 {
	if v < 0 {
		return -int64(math.Floor(-v + 0.5))
	}
	return int64(math.Floor(v + 0.5))
}
