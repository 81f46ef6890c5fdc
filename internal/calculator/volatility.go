package calculator

import "math"

// Volatility is the mean of the rolling (5-sample) standard deviation of
// one-step returns. ok is false when there are too few samples for a
// single full window.
func Volatility(prices []float64) (vol float64, ok bool) {
	const window = 5
	if len(prices) < window+1 {
		return 0, false
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}

	sum, count := 0.0, 0
	for end := window; end <= len(returns); end++ {
		sum += sampleStdDev(returns[end-window : end])
		count++
	}
	if count == 0 {
		return 0, false
	}
	vol = sum / float64(count)
	if math.IsNaN(vol) {
		return 0, false
	}
	return vol, true
}

// AutoSmoothingWindow picks a smoothing width from the series volatility:
// calm series get 5, moderate 7, choppy 10. Unknown volatility counts as 1%.
func AutoSmoothingWindow(prices []float64) int {
	vol, ok := Volatility(prices)
	if !ok {
		vol = 0.01
	}
	switch {
	case vol < 0.005:
		return 5
	case vol < 0.015:
		return 7
	default:
		return 10
	}
}

func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
