package weightloader

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thomas-leister.de/plantforecast/predictor"
	_ "thomas-leister.de/plantforecast/testing_init"
)

func writeWeights(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "weights.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseLenient(t *testing.T) {
	assert.Equal(t, 0.85, ParseLenient("0.85"))
	assert.Equal(t, -0.005, ParseLenient("  -0.005\r"))
	assert.Equal(t, 1e-3, ParseLenient("1e-3"))
	assert.Equal(t, 0.0, ParseLenient("garbage"))
	assert.Equal(t, 0.0, ParseLenient("1.2.3"))

	// Only finite decimal literals are coefficients.
	for _, line := range []string{"NaN", "nan", "Inf", "-Inf", "+Infinity", "0x1p-2", "1_000", "1e999"} {
		assert.Equal(t, 0.0, ParseLenient(line), "line %q", line)
	}
}

func TestLoadEightValues(t *testing.T) {
	weights, err := Load(strings.NewReader("1\n2\n3\n4\n5\n6\n7\n8\n"))
	require.NoError(t, err)
	require.Equal(t, predictor.Weights{1, 2, 3, 4, 5, 6, 7, 8}, weights)
}

func TestLoadSkipsBlankLinesAndStopsAtEight(t *testing.T) {
	weights, err := Load(strings.NewReader("\n1\n  \n2\n3\n\n4\n5\n6\n7\n8\n9\n10"))
	require.NoError(t, err)
	require.Equal(t, predictor.Weights{1, 2, 3, 4, 5, 6, 7, 8}, weights)
}

func TestLoadMalformedLineCountsAsZero(t *testing.T) {
	weights, err := Load(strings.NewReader("1\n2\nthree\n4\n5\n6\n7\n8"))
	require.NoError(t, err)
	require.Equal(t, predictor.Weights{1, 2, 0, 4, 5, 6, 7, 8}, weights)
}

func TestLoadNonDecimalLinesCountAsZero(t *testing.T) {
	weights, err := Load(strings.NewReader("NaN\n0.85\nInf\n0x1p-2\n5\n6\n7\n8"))
	require.NoError(t, err)
	require.Equal(t, predictor.Weights{0, 0.85, 0, 0, 5, 6, 7, 8}, weights)

	forecast := predictor.New(weights).Predict([]float64{0.2, 0.4, 0.7, 0.9})
	assert.False(t, math.IsNaN(forecast.Value))
	assert.False(t, math.IsInf(forecast.Value, 0))
}

func TestLoadOversizedLineCountsAsZero(t *testing.T) {
	huge := strings.Repeat("9", 200*1024) + "x"
	weights, err := Load(strings.NewReader(huge + "\n2\n3\n4\n5\n6\n7\n8\n"))
	require.NoError(t, err)
	require.Equal(t, predictor.Weights{0, 2, 3, 4, 5, 6, 7, 8}, weights)
}

func TestLoadIncomplete(t *testing.T) {
	_, err := Load(strings.NewReader("1\n2\n3\n4\n5\n"))
	require.ErrorIs(t, err, ErrIncomplete)

	_, err = Load(strings.NewReader(""))
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestApplySuccess(t *testing.T) {
	var out bytes.Buffer
	tableOutput = &out

	model := predictor.New(predictor.DefaultWeights)
	path := writeWeights(t, "0.1\n0.2\n0.3\n0.4\n0.5\n0.6\n0.7\n0.8\n")

	require.NoError(t, Apply(model, path))
	require.Equal(t, predictor.Weights{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}, model.Weights())
	assert.Contains(t, out.String(), "0.800000")
	assert.Contains(t, out.String(), "slope*momentum")
}

func TestApplyIncompleteKeepsDefaults(t *testing.T) {
	model := predictor.New(predictor.DefaultWeights)
	path := writeWeights(t, "9\n9\n9\n9\n9\n")

	require.ErrorIs(t, Apply(model, path), ErrIncomplete)
	require.Equal(t, predictor.DefaultWeights, model.Weights())
}

func TestApplyMissingFileKeepsDefaults(t *testing.T) {
	model := predictor.New(predictor.DefaultWeights)

	err := Apply(model, filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, predictor.DefaultWeights, model.Weights())
}

func TestApplyExampleWeightsFile(t *testing.T) {
	tableOutput = &bytes.Buffer{}
	model := predictor.New(predictor.Weights{})

	require.NoError(t, Apply(model, "./weights.txt"))
	require.Equal(t, predictor.DefaultWeights, model.Weights())
}
