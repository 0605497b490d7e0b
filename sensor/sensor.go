/*
 * package sensor offers functions to retrieve
 * calibrated / normalized values from any sensor raw value
 */

package sensor

import (
	"time"

	log "github.com/sirupsen/logrus"

	"thomas-leister.de/plantforecast/configmanager"
)

type Sensor struct {
	Adc struct {
		RawLowerBound int
		RawUpperBound int
		Invert        bool // raw value is "dryness": high => more dry
	}
	Current struct {
		Raw   int
		Value float64 // normalized reading, 0 <= value <= 1
	}
	LastUpdated time.Time // Time of last sensor value update
}

func (s *Sensor) Init(config *configmanager.Config) {
	log.Println("Initializing sensor ...")

	s.Adc.RawLowerBound = config.Sensor.Adc.RawLowerBound
	s.Adc.RawUpperBound = config.Sensor.Adc.RawUpperBound
	s.Adc.Invert = config.Sensor.Adc.Invert
	log.Printf("Sensor: raw range %d - %d, inverted: %t", s.Adc.RawLowerBound, s.Adc.RawUpperBound, s.Adc.Invert)
}

/*
 * Feeds new raw sensor value into sensor
 * Normalizes new value and returns it
 */
func (s *Sensor) UpdateCurrentValue(currentRaw int) float64 {
	s.Current.Raw = currentRaw
	s.Current.Value = s.NormalizeRawValue(currentRaw)
	s.LastUpdated = time.Now()

	log.Debugf("Sensor: raw value %d => normalized %.3f", currentRaw, s.Current.Value)
	return s.Current.Value
}

/*
 * Scales a raw ADC value into the range 0 - 1.
 * Values outside the configured bounds are clamped.
 * With Invert set, dryness is turned into wetness.
 */
func (s *Sensor) NormalizeRawValue(rawValue int) float64 {
	// Normalize range
	value := float64(rawValue-s.Adc.RawLowerBound) / float64(s.Adc.RawUpperBound-s.Adc.RawLowerBound)

	// Safety first: We cannot accept values < 0 or > 1.
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}

	if s.Adc.Invert {
		value = 1 - value
	}
	return value
}
