/*
 * Weightloader:
 * Reads the predictor coefficients from a line based text file,
 * one coefficient per non-blank line, W0 first.
 */

package weightloader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"thomas-leister.de/plantforecast/predictor"
)

var (
	ErrUnavailable = errors.New("weights file unavailable")
	ErrIncomplete  = errors.New("weights file incomplete")
)

// isDecimal reports whether s only uses the characters of a plain decimal literal.
func isDecimal(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !strings.ContainsRune("0123456789+-.eE", r)
	}) == -1
}

/*
 * Parses a coefficient line. Anything that is not a finite decimal number
 * (including NaN, Inf and hex floats) counts as 0, so a partially corrupted
 * file still yields a full, usable weight vector.
 */
func ParseLenient(line string) float64 {
	text := strings.TrimSpace(line)
	if !isDecimal(text) {
		log.Warnf("Weightloader: cannot parse %q, using 0", line)
		return 0
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		log.Warnf("Weightloader: cannot parse %q, using 0", line)
		return 0
	}
	return value
}

/*
 * Collects up to predictor.WeightCount coefficients from r.
 * Blank lines are skipped. Reading stops after the last coefficient.
 * Lines have no length limit, an oversized line is just another malformed one.
 * Fewer coefficients than needed is an error and no weights are returned.
 */
func Load(r io.Reader) (predictor.Weights, error) {
	var staged predictor.Weights
	count := 0

	reader := bufio.NewReader(r)
	for count < predictor.WeightCount {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return predictor.Weights{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if text := strings.TrimSpace(line); text != "" {
			staged[count] = ParseLenient(text)
			count++
		}
		if err == io.EOF {
			break
		}
	}
	if count != predictor.WeightCount {
		return predictor.Weights{}, fmt.Errorf("%w: found %d of %d coefficients", ErrIncomplete, count, predictor.WeightCount)
	}
	return staged, nil
}

func LoadFile(path string) (predictor.Weights, error) {
	file, err := os.Open(path)
	if err != nil {
		return predictor.Weights{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer file.Close()

	return Load(file)
}

/*
 * Loads the weights file into model.
 * On any error the model keeps the weights it already has.
 */
func Apply(model *predictor.Model, path string) error {
	weights, err := LoadFile(path)
	if err != nil {
		return err
	}
	if err := model.SetWeights(weights); err != nil {
		return err
	}

	log.Printf("Weights loaded from %s:", path)
	printWeightTable(weights)
	return nil
}
