// Package store holds the in-memory, append-only price series of every
// tracked company.
package store

import (
	"fmt"
	"math"
	"sync"

	"CupSentinel/internal/model"
)

// series is one company's samples behind its own reader/writer gate.
type series struct {
	mu     sync.RWMutex
	points []model.PricePoint
}

// Store keeps one series per company. The company set is fixed at
// construction; appends to different companies never contend.
type Store struct {
	series map[model.Company]*series
}

// New creates a store for the given companies, or for every known company
// when none are given.
func New(companies ...model.Company) *Store {
	if len(companies) == 0 {
		companies = model.Companies()
	}
	s := &Store{series: make(map[model.Company]*series, len(companies))}
	for _, c := range companies {
		s.series[c] = &series{}
	}
	return s
}

func (s *Store) get(c model.Company) (*series, error) {
	ser, ok := s.series[c]
	if !ok {
		return nil, &model.UnknownCompanyError{Name: string(c)}
	}
	return ser, nil
}

// Append adds p at the tail of c's series. The sample must be strictly newer
// than the current last sample and carry a positive, finite price.
func (s *Store) Append(c model.Company, p model.PricePoint) error {
	ser, err := s.get(c)
	if err != nil {
		return err
	}
	if p.Time.IsZero() {
		return fmt.Errorf("%w: %s: zero timestamp", model.ErrInvalidSample, c)
	}
	if p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("%w: %s: price %v", model.ErrInvalidSample, c, p.Price)
	}
	p.Time = p.Time.UTC()

	ser.mu.Lock()
	defer ser.mu.Unlock()
	if n := len(ser.points); n > 0 && !p.Time.After(ser.points[n-1].Time) {
		return fmt.Errorf("%w: %s: %s is not after %s", model.ErrOutOfOrderSample, c,
			p.Time.Format("2006-01-02T15:04:05Z"), ser.points[n-1].Time.Format("2006-01-02T15:04:05Z"))
	}
	ser.points = append(ser.points, p)
	return nil
}

// Snapshot returns a private copy of c's full series.
func (s *Store) Snapshot(c model.Company) ([]model.PricePoint, error) {
	ser, err := s.get(c)
	if err != nil {
		return nil, err
	}
	ser.mu.RLock()
	defer ser.mu.RUnlock()
	out := make([]model.PricePoint, len(ser.points))
	copy(out, ser.points)
	return out, nil
}

// Len returns the number of samples stored for c.
func (s *Store) Len(c model.Company) (int, error) {
	ser, err := s.get(c)
	if err != nil {
		return 0, err
	}
	ser.mu.RLock()
	defer ser.mu.RUnlock()
	return len(ser.points), nil
}

// Last returns the newest sample of c, if any.
func (s *Store) Last(c model.Company) (model.PricePoint, bool, error) {
	ser, err := s.get(c)
	if err != nil {
		return model.PricePoint{}, false, err
	}
	ser.mu.RLock()
	defer ser.mu.RUnlock()
	if len(ser.points) == 0 {
		return model.PricePoint{}, false, nil
	}
	return ser.points[len(ser.points)-1], true, nil
}

// Companies lists the companies this store was built for.
func (s *Store) Companies() []model.Company {
	out := make([]model.Company, 0, len(s.series))
	for _, c := range model.Companies() {
		if _, ok := s.series[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
