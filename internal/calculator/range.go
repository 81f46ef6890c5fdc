package calculator

// ArgMin returns the index of the smallest value in values[from:to].
// Ties resolve to the earliest index. Returns -1 for an empty range.
func ArgMin(values []float64, from, to int) int {
	from, to = clampRange(len(values), from, to)
	idx := -1
	for i := from; i < to; i++ {
		if idx < 0 || values[i] < values[idx] {
			idx = i
		}
	}
	return idx
}

// ArgMax returns the index of the largest value in values[from:to].
// Ties resolve to the earliest index. Returns -1 for an empty range.
func ArgMax(values []float64, from, to int) int {
	from, to = clampRange(len(values), from, to)
	idx := -1
	for i := from; i < to; i++ {
		if idx < 0 || values[i] > values[idx] {
			idx = i
		}
	}
	return idx
}

// IsLocalMax reports whether values[i] starts a peak: it rises from (or is)
// the first point and the next distinct value after it is lower. A flat top
// is therefore reported once, at its earliest index.
func IsLocalMax(values []float64, i int) bool {
	if i < 0 || i >= len(values) {
		return false
	}
	if i > 0 && values[i-1] >= values[i] {
		return false
	}
	for j := i + 1; j < len(values); j++ {
		if values[j] != values[i] {
			return values[j] < values[i]
		}
	}
	return false
}

// LocalMaxima lists every peak index in ascending order.
func LocalMaxima(values []float64) []int {
	var peaks []int
	for i := range values {
		if IsLocalMax(values, i) {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// PercentChange returns |b-a| as a percentage of a.
func PercentChange(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	d := (b - a) / a * 100
	if d < 0 {
		return -d
	}
	return d
}

func clampRange(n, from, to int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	return from, to
}
