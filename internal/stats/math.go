package stats

import "math"

// Round2 rounds to two decimals, the precision every reported hour value uses.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SafeMean divides total by n and returns 0 for an empty denominator.
func SafeMean(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
