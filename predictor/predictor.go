/*
 * Predictor:
 * Forecasts the next normalized reading from a history window
 * with a fixed 8-coefficient model over the slope features.
 */

package predictor

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"thomas-leister.de/plantforecast/features"
)

const WeightCount = 8

/*
 * Model coefficients, in order:
 *   W0 slope, W1 velocity, W2 acceleration, W3 curvature, W4 momentum,
 *   W5 slope*curvature, W6 slope*momentum, W7 slope*slope
 */
type Weights [WeightCount]float64

// Sample coefficients used when no weights file could be loaded.
var DefaultWeights = Weights{-0.12, 0.85, -0.05, 0.07, -0.03, 0.01, 0.02, -0.005}

var ErrModelSealed = errors.New("model weights are fixed once predictions started")

type Forecast struct {
	Current  float64 // newest reading in the window
	Delta    float64 // predicted change
	Value    float64 // Current + Delta
	Features features.Features
}

type Model struct {
	weights Weights
	sealed  bool
}

func New(weights Weights) *Model {
	return &Model{weights: weights}
}

// Weights returns a copy of the coefficients in use.
func (m *Model) Weights() Weights {
	return m.weights
}

/*
 * Replaces all coefficients at once.
 * Only allowed during initialization, before the first Predict call.
 */
func (m *Model) SetWeights(weights Weights) error {
	if m.sealed {
		return ErrModelSealed
	}
	m.weights = weights
	return nil
}

/*
 * Scores every slope sample and averages the scores into the forecast delta.
 * history must be a complete window (at least three readings, oldest first).
 * The first call also fixes the weights: SetWeights fails from then on.
 */
func (m *Model) Predict(history []float64) Forecast {
	m.sealed = true

	slopes := features.Slopes(history)
	f := features.Extract(slopes)
	w := m.weights

	// Terms that do not depend on the individual slope sample.
	global := w[1]*f.Velocity + w[2]*f.Acceleration + w[3]*f.Curvature + w[4]*f.Momentum

	var sum float64
	for _, s := range slopes {
		sum += w[0]*s + global + w[5]*(s*f.Curvature) + w[6]*(s*f.Momentum) + w[7]*(s*s)
	}
	delta := sum / float64(len(slopes))

	current := history[len(history)-1]
	log.Debugf("Predictor: v=%.5f a=%.5f c=%.5f m=%.5f delta=%.5f", f.Velocity, f.Acceleration, f.Curvature, f.Momentum, delta)

	return Forecast{
		Current:  current,
		Delta:    delta,
		Value:    current + delta,
		Features: f,
	}
}
