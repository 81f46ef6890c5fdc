package detector

import (
	"CupSentinel/internal/calculator"
	"CupSentinel/internal/model"
)

// match holds the landmark indices of one complete pattern.
type match struct {
	left, bottom, right, handle, breakout int
	confidence                            float64
}

func (m *match) landmarks(window []model.PricePoint, s []float64) []model.Landmark {
	roles := []struct {
		role model.Role
		idx  int
	}{
		{model.RoleLeftRim, m.left},
		{model.RoleCupBottom, m.bottom},
		{model.RoleRightRim, m.right},
		{model.RoleHandleLow, m.handle},
		{model.RoleBreakout, m.breakout},
	}
	out := make([]model.Landmark, len(roles))
	for i, r := range roles {
		out[i] = model.Landmark{
			Role:  r.role,
			Index: r.idx,
			Time:  window[r.idx].Time,
			Price: window[r.idx].Price,
			Level: s[r.idx],
		}
	}
	return out
}

// match tries to complete a pattern starting at the left rim. On failure it
// returns the name of the step that failed.
func (d *Detector) match(s, raw []float64, left int) (*match, string) {
	last := len(s) - 1

	bottom, ok := findCupBottom(s, left, d.cfg.MinCupDepthPct)
	if !ok {
		return nil, "cup too shallow"
	}

	right := findRightRim(s, left, bottom, d.cfg.RimTolerancePct)
	if right < 0 {
		return nil, "no right rim"
	}

	handle := calculator.ArgMin(s, right+1, len(s))
	if handle < 0 || handle >= last {
		return nil, "no breakout"
	}
	cupDepth := s[left] - s[bottom]
	ratio := (s[right] - s[handle]) / cupDepth
	if ratio > d.cfg.MaxHandleDepthRatio {
		return nil, "handle too deep"
	}
	if last-right >= right-left {
		return nil, "handle too long"
	}

	// the close must clear the rim's actual price, not its smoothed level
	if raw[last] < raw[right] {
		return nil, "no breakout"
	}

	rimGap := calculator.PercentChange(s[left], s[right])
	return &match{
		left:       left,
		bottom:     bottom,
		right:      right,
		handle:     handle,
		breakout:   last,
		confidence: confidence(rimGap, d.cfg.RimTolerancePct, ratio, d.cfg.MaxHandleDepthRatio),
	}, ""
}

// findCupBottom returns the lowest point after left when its decline from the
// left rim reaches minDepthPct.
func findCupBottom(s []float64, left int, minDepthPct float64) (int, bool) {
	bottom := calculator.ArgMin(s, left+1, len(s))
	if bottom < 0 || s[left] <= 0 {
		return -1, false
	}
	depth := (s[left] - s[bottom]) / s[left] * 100
	if depth <= 0 || depth < minDepthPct {
		return -1, false
	}
	return bottom, true
}

// findRightRim returns the first peak after bottom, short of the last point,
// whose level is within tolPct of the left rim, or -1.
func findRightRim(s []float64, left, bottom int, tolPct float64) int {
	for i := bottom + 1; i < len(s)-1; i++ {
		if calculator.IsLocalMax(s, i) && calculator.PercentChange(s[left], s[i]) <= tolPct {
			return i
		}
	}
	return -1
}

// confidence averages how comfortably the rim match and the handle depth sit
// inside their limits.
func confidence(rimGap, rimTol, handleRatio, maxRatio float64) float64 {
	c := 0.5*(1-rimGap/rimTol) + 0.5*(1-handleRatio/maxRatio)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
