package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictScenario(t *testing.T) {
	model := New(DefaultWeights)

	// Window after appending 0.90 to [0.10 0.20 0.40 0.70].
	forecast := model.Predict([]float64{0.20, 0.40, 0.70, 0.90})

	assert.InDelta(t, 0.90, forecast.Current, 1e-12)
	assert.InDelta(t, 0.1642996296, forecast.Delta, 1e-6)
	assert.InDelta(t, 1.0642996296, forecast.Value, 1e-6)
	assert.InDelta(t, 0.7/3.0, forecast.Features.Velocity, 1e-9)
}

func TestPredictBeforeAppend(t *testing.T) {
	forecast := New(DefaultWeights).Predict([]float64{0.10, 0.20, 0.40, 0.70})
	assert.InDelta(t, 0.83518, forecast.Value, 1e-6)
}

func TestPredictIsDeterministic(t *testing.T) {
	model := New(DefaultWeights)
	window := []float64{0.31, 0.33, 0.32, 0.36, 0.41, 0.40}

	first := model.Predict(window)
	second := model.Predict(window)
	require.Equal(t, first, second)
	require.Equal(t, []float64{0.31, 0.33, 0.32, 0.36, 0.41, 0.40}, window)
}

func TestPredictFlatSignal(t *testing.T) {
	forecast := New(DefaultWeights).Predict([]float64{0.5, 0.5, 0.5})
	assert.Equal(t, 0.5, forecast.Value)
	assert.Equal(t, 0.0, forecast.Delta)
}

func TestSingleTermWeights(t *testing.T) {
	window := []float64{1, 2, 4, 7} // slopes 1 2 3

	testcases := []struct {
		name     string
		weights  Weights
		expected float64
	}{
		{"slope", Weights{1}, 2},                              // mean slope
		{"velocity", Weights{0, 1}, 2},                        // broadcast into every sample
		{"acceleration", Weights{0, 0, 1}, 1},                 // mean second difference
		{"curvature", Weights{0, 0, 0, 1}, 2.0 / 3.0},         // population variance
		{"momentum", Weights{0, 0, 0, 0, 1}, 14.0 / 6.0},      // recency weighted
		{"slope*curvature", Weights{5: 1}, 2 * 2.0 / 3.0},     // mean(s)*C
		{"slope*momentum", Weights{6: 1}, 2 * 14.0 / 6.0},     // mean(s)*M
		{"slope squared", Weights{7: 1}, (1.0 + 4 + 9) / 3.0}, // mean(s*s)
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			forecast := New(tc.weights).Predict(window)
			assert.InDelta(t, tc.expected, forecast.Delta, 1e-9)
			assert.InDelta(t, 7+tc.expected, forecast.Value, 1e-9)
		})
	}
}

func TestSetWeightsBeforeFirstPrediction(t *testing.T) {
	model := New(DefaultWeights)
	loaded := Weights{1, 2, 3, 4, 5, 6, 7, 8}

	require.NoError(t, model.SetWeights(loaded))
	require.Equal(t, loaded, model.Weights())

	model.Predict([]float64{0.1, 0.2, 0.3})
	require.ErrorIs(t, model.SetWeights(DefaultWeights), ErrModelSealed)
	require.Equal(t, loaded, model.Weights())
}

func TestWeightsReturnsCopy(t *testing.T) {
	model := New(DefaultWeights)
	w := model.Weights()
	w[0] = 42
	require.Equal(t, DefaultWeights, model.Weights())
}
