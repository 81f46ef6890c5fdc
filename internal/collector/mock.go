package collector

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"CupSentinel/internal/model"
)

// MockSource returns scripted quotes for development and testing.
// Each company's script is consumed in order; an exhausted script or a
// company listed in Fail returns a FetchError.
type MockSource struct {
	mu      sync.Mutex
	Scripts map[model.Company][]model.Quote
	Fail    map[model.Company]error
	calls   map[model.Company]int
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Quote(ctx context.Context, c model.Company) (model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return model.Quote{}, &model.FetchError{Source: m.Name(), Company: c, Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[model.Company]int)
	}
	m.calls[c]++
	if err, ok := m.Fail[c]; ok {
		return model.Quote{}, &model.FetchError{Source: m.Name(), Company: c, Err: err, Retryable: true}
	}
	script := m.Scripts[c]
	if len(script) == 0 {
		return model.Quote{}, &model.FetchError{Source: m.Name(), Company: c, Err: fmt.Errorf("script exhausted")}
	}
	q := script[0]
	m.Scripts[c] = script[1:]
	return q, nil
}

// Calls returns how many times c was quoted.
func (m *MockSource) Calls(c model.Company) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[c]
}

// RandomWalkSource produces a bounded random walk per company, stamped with
// the wall clock. It backs the "mock" provider for offline runs.
type RandomWalkSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	last  map[model.Company]float64
	clock func() time.Time
}

func NewRandomWalkSource(seed int64) *RandomWalkSource {
	return &RandomWalkSource{
		rng:   rand.New(rand.NewSource(seed)),
		last:  make(map[model.Company]float64),
		clock: time.Now,
	}
}

func (r *RandomWalkSource) Name() string { return "mock" }

func (r *RandomWalkSource) Quote(ctx context.Context, c model.Company) (model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return model.Quote{}, &model.FetchError{Source: r.Name(), Company: c, Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.last[c]
	if !ok {
		p = 100 + 50*r.rng.Float64()
	}
	p *= 1 + (r.rng.Float64()-0.5)*0.01
	if p < 1 {
		p = 1
	}
	r.last[c] = p
	return model.Quote{Time: r.clock().UTC(), Price: roundCents(p)}, nil
}
