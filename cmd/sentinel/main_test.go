package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupSentinel/internal/detector"
	"CupSentinel/internal/model"
	"CupSentinel/internal/store"
)

func TestParseCompanies(t *testing.T) {
	all, err := parseCompanies(nil)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	some, err := parseCompanies([]string{"nvda", "Meta"})
	require.NoError(t, err)
	assert.Equal(t, []model.Company{model.Nvidia, model.Meta}, some)

	_, err = parseCompanies([]string{"Apple", "Nokia"})
	assert.ErrorIs(t, err, model.ErrUnknownCompany)
}

func TestVerdicts(t *testing.T) {
	st := store.New()
	t0 := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		require.NoError(t, st.Append(model.Amazon, model.PricePoint{Time: t0.Add(time.Duration(i) * time.Minute), Price: 200 - float64(i)}))
	}
	a := &app{log: zerolog.Nop(), store: st, detector: detector.New(detector.DefaultConfig(), st)}

	out, err := a.verdicts([]model.Company{model.Amazon, model.Apple})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.False(t, out[0].Detected)
	assert.Empty(t, out[0].Error)
	assert.Equal(t, model.Apple, out[1].Company)
	assert.Contains(t, out[1].Error, "insufficient data")
}
