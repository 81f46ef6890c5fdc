package model

import "time"

// PricePoint is a single stored sample of a company's quoted price.
type PricePoint struct {
	Time   time.Time `json:"timestamp"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume,omitempty"` // 0 when the source did not report it
}

// Quote is what a price source returns for one company on one fetch.
type Quote struct {
	Time   time.Time
	Price  float64
	Volume float64
}

// Point converts the quote into a storable sample.
func (q Quote) Point() PricePoint {
	return PricePoint{Time: q.Time.UTC(), Price: q.Price, Volume: q.Volume}
}

// Prices extracts the price column of a series.
func Prices(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}
