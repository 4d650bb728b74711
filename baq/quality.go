package baq

import "math"

// errProb[q] is the error probability 10^(-q/10) for a phred-scaled quality
// q. It is process-wide and computed once here rather than per decode
// call.
var errProb [256]float64

func init() {
	for q := range errProb {
		errProb[q] = math.Pow(10, float64(q)/-10)
	}
}
