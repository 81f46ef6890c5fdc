package model

import "time"

// Role tags a landmark inside a cup-and-handle window.
type Role string

const (
	RoleLeftRim   Role = "left-rim"
	RoleCupBottom Role = "cup-bottom"
	RoleRightRim  Role = "right-rim"
	RoleHandleLow Role = "handle-low"
	RoleBreakout  Role = "breakout"
)

// Landmark is a point of the analysis window with a role in the pattern.
type Landmark struct {
	Role  Role      `json:"role"`
	Index int       `json:"index"`
	Time  time.Time `json:"timestamp"`
	Price float64   `json:"price"` // raw sample price
	Level float64   `json:"level"` // smoothed price used for the shape tests
}

// DetectionResult is the verdict of one detection call. It is never stored.
type DetectionResult struct {
	Company         Company    `json:"company"`
	Detected        bool       `json:"detected"`
	Landmarks       []Landmark `json:"landmarks"`
	Confidence      float64    `json:"confidence"`
	Reason          string     `json:"reason,omitempty"`
	Points          int        `json:"points"`
	SmoothingWindow int        `json:"smoothing_window"`
}

// Landmark returns the landmark with the given role, if present.
func (r *DetectionResult) Landmark(role Role) (Landmark, bool) {
	for _, l := range r.Landmarks {
		if l.Role == role {
			return l, true
		}
	}
	return Landmark{}, false
}
