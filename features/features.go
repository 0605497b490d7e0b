/*
 * Features:
 * Shape descriptors of the recent sensor trajectory.
 * Everything here is derived from the slope sequence of a history window
 * and recomputed on every cycle.
 */

package features

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Features struct {
	Velocity     float64 // mean slope
	Acceleration float64 // mean change of slope
	Curvature    float64 // population variance of the slopes
	Momentum     float64 // recency weighted mean slope
}

// Slopes returns the first differences of history: slopes[i] = history[i+1] - history[i].
func Slopes(history []float64) []float64 {
	if len(history) < 2 {
		return nil
	}
	return floats.SubTo(make([]float64, len(history)-1), history[1:], history[:len(history)-1])
}

func Velocity(slopes []float64) float64 {
	return stat.Mean(slopes, nil)
}

/*
 * Mean of the second difference.
 * Needs at least two slopes (a window of three readings); callers guarantee
 * that through the minimum window size.
 */
func Acceleration(slopes []float64) float64 {
	return stat.Mean(Slopes(slopes), nil)
}

func Curvature(slopes []float64) float64 {
	return stat.PopVariance(slopes, nil)
}

// Momentum weights slope i with i+1, so later slopes count more.
func Momentum(slopes []float64) float64 {
	weights := make([]float64, len(slopes))
	for i := range weights {
		weights[i] = float64(i + 1)
	}
	return stat.Mean(slopes, weights)
}

func Extract(slopes []float64) Features {
	return Features{
		Velocity:     Velocity(slopes),
		Acceleration: Acceleration(slopes),
		Curvature:    Curvature(slopes),
		Momentum:     Momentum(slopes),
	}
}
