package seed

import "context"

// NoopLoader is used when no seed is configured.
type NoopLoader struct{}

func NewNoopLoader() *NoopLoader { return &NoopLoader{} }

func (n *NoopLoader) Load(_ context.Context) ([]Row, error) { return nil, nil }
func (n *NoopLoader) Close() error                         { return nil }
