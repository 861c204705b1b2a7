package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Normalize scales counts into a probability distribution summing to 1.
// Returns an empty slice when the total is zero.
func Normalize(counts []float64) []float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return []float64{}
	}

	probs := make([]float64, len(counts))
	for i, c := range counts {
		probs[i] = c / total
	}
	return probs
}

// Entropy calculates the Shannon entropy (nats) of a count distribution
func Entropy(counts []float64) float64 {
	probs := Normalize(counts)
	if len(probs) == 0 {
		return 0
	}

	h := stat.Entropy(probs)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	return h
}

// Proportion returns part/total, guarding against a zero total
func Proportion(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total
}
