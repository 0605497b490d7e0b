package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"thomas-leister.de/plantforecast/history"
	"thomas-leister.de/plantforecast/predictor"
	"thomas-leister.de/plantforecast/sensor"
)

/*
 * One prediction cycle per raw sensor value:
 * normalize, append to the history window, predict.
 * All state is owned by the goroutine calling Fill and Step.
 */
type forecastCycle struct {
	sensor  *sensor.Sensor
	history *history.Buffer
	model   *predictor.Model
}

func newForecastCycle(s *sensor.Sensor, windowSize int, model *predictor.Model) (*forecastCycle, error) {
	buffer, err := history.New(windowSize)
	if err != nil {
		return nil, err
	}
	return &forecastCycle{sensor: s, history: buffer, model: model}, nil
}

/*
 * Fill takes the first window of readings from read,
 * waiting the settle delay after each one.
 */
func (c *forecastCycle) Fill(read func() (int, error), settle time.Duration) error {
	log.Printf("Collecting %d initial sensor values ...", c.history.Len())
	return c.history.Fill(func() (float64, error) {
		raw, err := read()
		if err != nil {
			return 0, err
		}
		return c.sensor.UpdateCurrentValue(raw), nil
	}, settle)
}

// channelReader reads raw values from rawValueChannel until ctx is done.
func channelReader(ctx context.Context, rawValueChannel <-chan int) func() (int, error) {
	return func() (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case raw := <-rawValueChannel:
			return raw, nil
		}
	}
}

func (c *forecastCycle) Step(raw int) predictor.Forecast {
	value := c.sensor.UpdateCurrentValue(raw)
	c.history.Append(value)
	forecast := c.model.Predict(c.history.Values())

	log.Printf("Current moisture: %.3f  Predicted next: %.3f", value, forecast.Value)
	return forecast
}
