package calculator

// MovingAverage returns a centred moving average of the same length as prices.
// Near the edges the window shrinks to the neighbours that exist, so every
// output position is defined. A window of 1 or less returns a plain copy.
// The input slice is never modified.
func MovingAverage(prices []float64, window int) []float64 {
	out := make([]float64, len(prices))
	if window <= 1 {
		copy(out, prices)
		return out
	}
	before := window / 2
	after := (window - 1) / 2
	for i := range prices {
		lo := i - before
		if lo < 0 {
			lo = 0
		}
		hi := i + after
		if hi > len(prices)-1 {
			hi = len(prices) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += prices[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
