package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configManagerPkg "thomas-leister.de/plantforecast/configmanager"
	testingInit "thomas-leister.de/plantforecast/testing_init"
)

func TestNormalizeRawValue(t *testing.T) {
	// Define test cases
	var testData = map[int]float64{
		3624: 0,
		2557: 0.5,
		1491: 1,
		4000: 0, // clamped, above upper bound
		1000: 1, // clamped, below lower bound
	}

	// Read config
	config, err := configManagerPkg.ReadConfig(testingInit.ConfigPath)
	require.NoError(t, err)

	// Init sensor
	sensor := Sensor{}
	sensor.Init(&config)

	// Loop through testcases
	for input, expected := range testData {
		assert.InDelta(t, expected, sensor.NormalizeRawValue(input), 1e-3, "raw value %d", input)
	}
}

func TestNormalizeFullScale(t *testing.T) {
	// Plain 10 bit ADC, no inversion.
	sensor := Sensor{}
	sensor.Adc.RawUpperBound = 1023

	assert.Equal(t, 0.0, sensor.NormalizeRawValue(0))
	assert.Equal(t, 1.0, sensor.NormalizeRawValue(1023))
	assert.InDelta(t, 512.0/1023.0, sensor.NormalizeRawValue(512), 1e-12)
}

func TestUpdateCurrentValue(t *testing.T) {
	sensor := Sensor{}
	sensor.Adc.RawUpperBound = 100

	value := sensor.UpdateCurrentValue(25)
	assert.Equal(t, 0.25, value)
	assert.Equal(t, 25, sensor.Current.Raw)
	assert.Equal(t, 0.25, sensor.Current.Value)
	assert.False(t, sensor.LastUpdated.IsZero())
}
