// Basic calculation functions
package calc

import "slices"

type Number interface {
	~int | ~int64 | ~uint64 | ~float64
}

// Mean of values after dropping trimPercent of them from each end of the sorted order.
// At least one value always remains.
func TrimmedMean[T Number](values []T, trimPercent float64) (mean T) {
	n := len(values)
	if n == 0 {
		return
	}
	trimPercent = max(trimPercent, 0)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	// How many values to drop from each end
	trimCount := int(float64(n) * trimPercent)
	if trimCount*2 >= n {
		trimCount = (n - 1) / 2
	}
	kept := sorted[trimCount : n-trimCount]

	var sum T
	for _, v := range kept {
		sum += v
	}
	mean = sum / T(len(kept))
	return
}

// Largest value, zero for none
func Max[T Number](values []T) (largest T) {
	if len(values) == 0 {
		return
	}
	largest = slices.Max(values)
	return
}
