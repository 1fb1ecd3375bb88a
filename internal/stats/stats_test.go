package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanMedianStdDev(t *testing.T) {
	values := []float64{0.8, 0.2, 0.6, 0.4}
	assert.InDelta(t, 0.5, Mean(values), 1e-12)
	assert.InDelta(t, 0.5, Median(values), 1e-12)
	assert.InDelta(t, 0.2236, PopulationStdDev(values), 1e-4)
	// Median must not reorder its input.
	assert.Equal(t, []float64{0.8, 0.2, 0.6, 0.4}, values)

	assert.Equal(t, 0.6, Median([]float64{0.9, 0.6, 0.1}))
}

func TestEmpty(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.Zero(t, Median(nil))
	assert.Zero(t, PopulationStdDev(nil))
	assert.Zero(t, Ratio(3, 0))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 66.67, Round(200.0/3.0, 2))
	assert.Equal(t, 33.33, Round(100.0/3.0, 2))
	assert.Equal(t, 0.5, Round(0.5000000000000001, 3))
}
