/*
 * Quantifier:
 * Translates normalized moisture values and forecasts into discrete moisture levels
 * and reports whether the forecast leaves the level of the current reading.
 */

package quantifier

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"thomas-leister.de/plantforecast/configmanager"
)

type QuantificationLevel struct {
	Start                float64       // Quantification Level Start value (0 <= value <= 1)
	End                  float64       // ""
	Name                 string        // Level name, such as "low", "normal", "high"
	ChatMessageForecast  string        // Message to send if a forecast enters this level
	GifKeywords          string        // Keywords for an optional GIF
	ChatMessageReminder  string        // Message to repeat while the forecast stays in this level
	NotificationInterval time.Duration // Reminder interval, 0 = no reminders
}

type QuantificationResult struct {
	Current        QuantificationLevel // Level of the current reading
	Forecast       QuantificationLevel // Level of the forecast
	LevelDirection int                 // -1 = forecast level below current | 0 = same | +1 = above
}

type Quantifier struct {
	QuantificationLevels []QuantificationLevel // All available quantification levels.
	History              *QuantificationResult // Last evaluation, nil before the first one
}

func (q *Quantifier) Init(config *configmanager.Config) {
	log.Println("Initializing quantifier ...")

	q.History = nil

	// Read all quantification levels from config and copy them into q.QuantificationLevels
	q.QuantificationLevels = make([]QuantificationLevel, 0, len(config.Levels))
	for _, level := range config.Levels {
		q.QuantificationLevels = append(q.QuantificationLevels, QuantificationLevel{
			Start:                level.Start,
			End:                  level.End,
			Name:                 level.Name,
			ChatMessageForecast:  level.ChatMessageForecast,
			GifKeywords:          level.GifKeywords,
			ChatMessageReminder:  level.ChatMessageReminder,
			NotificationInterval: time.Duration(level.NotificationInterval) * time.Second,
		})
	}

	// Output table showing quantification levels and thresholds
	fmt.Printf("\nAvailable quantification levels:\n\n")
	printLevelTable(q.QuantificationLevels)
	fmt.Printf("\n")
}

/*
 * Quantification function
 * Forecasts may overshoot the sensor range, so values are clamped to 0 - 1 first.
 * The first level containing the value wins.
 */
func (q *Quantifier) Quantify(value float64) (QuantificationLevel, error) {
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}

	for _, quantificationLevel := range q.QuantificationLevels {
		if value >= quantificationLevel.Start && value <= quantificationLevel.End {
			return quantificationLevel, nil
		}
	}

	return QuantificationLevel{}, fmt.Errorf("cannot assign quantification level to %.3f - value out of range", value)
}

/*
 * Quantifies the current reading and its forecast.
 * Returns true if the forecast level differs from the current level
 * and this is news compared to the previous evaluation.
 */
func (q *Quantifier) EvaluateForecast(current, forecast float64) (QuantificationResult, bool, error) {
	currentLevel, err := q.Quantify(current)
	if err != nil {
		return QuantificationResult{}, false, fmt.Errorf("could not evaluate current value: %w", err)
	}
	forecastLevel, err := q.Quantify(forecast)
	if err != nil {
		return QuantificationResult{}, false, fmt.Errorf("could not evaluate forecast: %w", err)
	}

	result := QuantificationResult{Current: currentLevel, Forecast: forecastLevel}
	if forecastLevel.Name != currentLevel.Name {
		if forecastLevel.Start > currentLevel.Start {
			result.LevelDirection = 1
		} else {
			result.LevelDirection = -1
		}
	}

	notify := result.LevelDirection != 0
	if q.History != nil && *q.History == result {
		// Same level change as last time, already reported.
		notify = false
	}
	q.History = &result

	log.Debugf("Quantifier: current level %s, forecast level %s", currentLevel.Name, forecastLevel.Name)
	return result, notify, nil
}
