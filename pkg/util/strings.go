package util

import "strconv"

// Round2 rounds a float to 2 decimal places for wire payloads.
func Round2(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}
