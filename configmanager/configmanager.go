/*
 * Configmanager:
 * Reads configuration from YAML config file
 */

package configmanager

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	SourceMqtt = "mqtt"
	SourceAdc  = "adc"
)

// Smallest usable window: acceleration divides by window_size - 2.
const MinWindowSize = 3

var ErrInvalidConfig = errors.New("invalid configuration")

type Level struct {
	Start               float64 `yaml:"start"`
	End                 float64 `yaml:"end"`
	Name                string  `yaml:"name"`
	ChatMessageForecast string  `yaml:"chat_message_forecast"`
	GifKeywords         string  `yaml:"gif_keywords"`
	// Seconds between reminders while a forecast stays in this level. 0 disables reminders.
	NotificationInterval int    `yaml:"notification_interval"`
	ChatMessageReminder  string `yaml:"chat_message_reminder"`
}

type Config struct {
	Xmpp struct {
		Host       string   `yaml:"host"`
		Port       int      `yaml:"port"`
		Username   string   `yaml:"username"`
		Password   string   `yaml:"password"`
		Recipients []string `yaml:"recipients"`
	} `yaml:"xmpp"`

	Mqtt struct {
		Host          string `yaml:"host"`
		Port          int    `yaml:"port"`
		Username      string `yaml:"username"`
		Password      string `yaml:"password"`
		Topic         string `yaml:"topic"`
		ForecastTopic string `yaml:"forecast_topic"`
	} `yaml:"mqtt"`

	Giphy struct {
		ApiKey string `yaml:"api_key"`
	} `yaml:"giphy"`

	Sensor struct {
		Source string `yaml:"source"`
		Adc    struct {
			RawLowerBound int    `yaml:"raw_lower_bound"`
			RawUpperBound int    `yaml:"raw_upper_bound"`
			Invert        bool   `yaml:"invert"`
			I2cBus        string `yaml:"i2c_bus"`
			I2cAddress    uint16 `yaml:"i2c_address"`
		} `yaml:"adc"`
	} `yaml:"sensor"`

	Predictor struct {
		WindowSize     int       `yaml:"window_size"`
		WeightsFile    string    `yaml:"weights_file"`
		DefaultWeights []float64 `yaml:"default_weights"`
		SampleInterval int       `yaml:"sample_interval"` // seconds, adc source only
		SettleDelay    int       `yaml:"settle_delay"`    // milliseconds between initial samples
	} `yaml:"predictor"`

	Watchdog struct {
		Timeout int `yaml:"timeout"` // seconds
	} `yaml:"watchdog"`

	Levels []Level `yaml:"levels"`
}

func ReadConfig(configPath string) (Config, error) {
	config := Config{}

	// Open config file
	file, err := os.Open(configPath)
	if err != nil {
		return config, err
	}
	defer file.Close()

	// Init new YAML decode
	d := yaml.NewDecoder(file)
	// Start YAML decoding from file
	if err := d.Decode(&config); err != nil {
		return config, err
	}

	return config, config.Validate()
}

/*
 * Rejects configurations the predictor cannot run with.
 * A too small window is fatal: the prediction cycle must not start.
 */
func (c *Config) Validate() error {
	if c.Predictor.WindowSize < MinWindowSize {
		return fmt.Errorf("%w: predictor.window_size must be at least %d, got %d",
			ErrInvalidConfig, MinWindowSize, c.Predictor.WindowSize)
	}
	if n := len(c.Predictor.DefaultWeights); n != 0 && n != 8 {
		return fmt.Errorf("%w: predictor.default_weights needs exactly 8 values, got %d", ErrInvalidConfig, n)
	}
	switch c.Sensor.Source {
	case SourceMqtt, SourceAdc:
	default:
		return fmt.Errorf("%w: unknown sensor.source %q", ErrInvalidConfig, c.Sensor.Source)
	}
	if c.Sensor.Adc.RawUpperBound == c.Sensor.Adc.RawLowerBound {
		return fmt.Errorf("%w: sensor.adc bounds must differ", ErrInvalidConfig)
	}
	for _, level := range c.Levels {
		if level.Start > level.End {
			return fmt.Errorf("%w: level %q starts after it ends", ErrInvalidConfig, level.Name)
		}
		if level.NotificationInterval < 0 {
			return fmt.Errorf("%w: level %q has a negative notification_interval", ErrInvalidConfig, level.Name)
		}
	}
	return nil
}
