/*
 * SPDX-License-Identifier: MIT
 * (valid for all sub-packages)
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"thomas-leister.de/plantforecast/adc"
	configManagerPkg "thomas-leister.de/plantforecast/configmanager"
	gifManagerPkg "thomas-leister.de/plantforecast/gifmanager"
	messengerPkg "thomas-leister.de/plantforecast/messenger"
	mqttManagerPkg "thomas-leister.de/plantforecast/mqttmanager"
	"thomas-leister.de/plantforecast/predictor"
	quantifierPkg "thomas-leister.de/plantforecast/quantifier"
	reminderPkg "thomas-leister.de/plantforecast/reminder"
	sensorPkg "thomas-leister.de/plantforecast/sensor"
	watchdogPkg "thomas-leister.de/plantforecast/watchdog"
	"thomas-leister.de/plantforecast/weightloader"
	xmppManagerPkg "thomas-leister.de/plantforecast/xmppmanager"
)

/* Version string. Is manipulated by build script.*/
var versionString string = "0.0.0"

type Args struct {
	Config   string `arg:"-c, --config" help:"Path to the YAML config file"`
	LogLevel string `arg:"-l, --log-level" help:"Set the logging level (debug, info, warn, error)"`
}

func (Args) Version() string {
	return "plantforecast " + versionString
}

var defaultArgs = Args{
	Config:   "./config.yaml",
	LogLevel: "info",
}

func procArgs() Args {
	args := defaultArgs
	arg.MustParse(&args)
	return args
}

func main() {
	args := procArgs()

	level, err := log.ParseLevel(args.LogLevel)
	if err != nil {
		log.Fatal("Invalid log level: ", err)
	}
	log.SetLevel(level)

	// Welcome message and version
	log.Printf("Starting Plantforecast %s ...", versionString)

	if err := run(args); err != nil {
		log.Fatal("Plant forecast failed: ", err)
	}
}

/*
 * Builds the model from the configured defaults and tries to replace them
 * with the weights file. A missing or broken weights file is not fatal.
 */
func initModel(config *configManagerPkg.Config) *predictor.Model {
	defaults := predictor.DefaultWeights
	if len(config.Predictor.DefaultWeights) == predictor.WeightCount {
		copy(defaults[:], config.Predictor.DefaultWeights)
	}
	model := predictor.New(defaults)

	if err := weightloader.Apply(model, config.Predictor.WeightsFile); err != nil {
		log.Warnf("Could not load weights (%v). Using default weights.", err)
	}
	return model
}

func run(args Args) error {
	// Read config. A window below the minimum size stops us here.
	config, err := configManagerPkg.ReadConfig(args.Config)
	if err != nil {
		return fmt.Errorf("could not parse config: %w", err)
	}
	log.Println("Config was read and parsed!")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model := initModel(&config)

	// Init sensor
	sensor := sensorPkg.Sensor{}
	sensor.Init(&config)

	cycle, err := newForecastCycle(&sensor, config.Predictor.WindowSize, model)
	if err != nil {
		return err
	}

	// Init quantifier
	quantifier := quantifierPkg.Quantifier{}
	quantifier.Init(&config)

	// Init Giphy
	giphyclient := gifManagerPkg.GiphyClient{}
	giphyclient.Init(config.Giphy.ApiKey)

	xmppMessageOutChannel := make(chan interface{}, 16)
	xmppMessageInChannel := make(chan xmppManagerPkg.XmppInMessage)
	rawValueChannel := make(chan int, 8)

	// Init xmppmanager
	xmppclient := xmppManagerPkg.XmppClient{}
	xmppclient.Init(&config)

	// Init messenger
	messenger := messengerPkg.Messenger{}
	var gifSource messengerPkg.GifSource
	if giphyclient.Enabled() {
		gifSource = &giphyclient
	}
	messenger.Init(&config, xmppMessageOutChannel, xmppMessageInChannel, gifSource)

	// Init watchdog
	watchdog := watchdogPkg.Watchdog{}
	watchdog.Init(&config, &messenger)
	defer watchdog.Stop()

	// Init reminder
	reminder := reminderPkg.Reminder{}
	reminder.Init(&messenger)
	defer reminder.Stop()

	// Start XMPP sender. Without XMPP the plant forecast keeps running, messages are dropped.
	go func() {
		if err := xmppclient.RunXMPPClient(xmppMessageOutChannel, xmppMessageInChannel); err != nil {
			log.Errorf("XMPP client failed, dropping chat messages: %v", err)
			for range xmppMessageOutChannel {
			}
		}
	}()

	// Start Messenger responder: Responds to incoming XMPP messages
	go messenger.ResponderLoop()

	group, ctx := errgroup.WithContext(ctx)

	// Init sensor value source and fill the history window
	mqttclient := mqttManagerPkg.MqttClient{}
	mqttclient.Init(&config)
	defer mqttclient.Disconnect()

	watchdog.Reset()
	switch config.Sensor.Source {
	case configManagerPkg.SourceAdc:
		converter, err := adc.Open(config.Sensor.Adc.I2cBus, config.Sensor.Adc.I2cAddress)
		if err != nil {
			return fmt.Errorf("could not open ADC: %w", err)
		}
		defer converter.Close()

		settle := time.Duration(config.Predictor.SettleDelay) * time.Millisecond
		if err := cycle.Fill(converter.Read, settle); err != nil {
			return stopped(err)
		}

		interval := time.Duration(config.Predictor.SampleInterval) * time.Second
		group.Go(func() error {
			return converter.Run(ctx, interval, rawValueChannel)
		})

		// Publish forecasts if a broker is configured.
		if config.Mqtt.Host != "" {
			if err := mqttclient.RunMQTTPublisher(); err != nil {
				log.Warnf("Forecasts will not be published: %v", err)
			}
		}
	default:
		if err := mqttclient.RunMQTTListener(rawValueChannel); err != nil {
			return err
		}
		// TTN uplinks arrive at their own pace, no settling needed.
		if err := cycle.Fill(channelReader(ctx, rawValueChannel), 0); err != nil {
			return stopped(err)
		}
	}

	group.Go(func() error {
		return forecastLoop(ctx, cycle, rawValueChannel, &quantifier, &messenger, &reminder, &watchdog, &mqttclient)
	})

	return stopped(group.Wait())
}

// Shutting down on a signal is not an error.
func stopped(err error) error {
	if errors.Is(err, context.Canceled) {
		log.Println("Plant forecast stopped.")
		return nil
	}
	return err
}

/*
 * Watch the raw value channel and run one prediction cycle per sensor value.
 * The history window must be filled already.
 */
func forecastLoop(ctx context.Context, cycle *forecastCycle, rawValueChannel <-chan int,
	quantifier *quantifierPkg.Quantifier, messenger *messengerPkg.Messenger, reminder *reminderPkg.Reminder,
	watchdog *watchdogPkg.Watchdog, mqttclient *mqttManagerPkg.MqttClient) error {

	for {
		var raw int
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw = <-rawValueChannel:
		}

		// Satisfy watchdog
		watchdog.Reset()

		forecast := cycle.Step(raw)
		messenger.UpdateStatus(forecast)

		if err := mqttclient.PublishForecast(forecast); err != nil {
			log.Warnf("Could not publish forecast: %v", err)
		}

		result, notify, err := quantifier.EvaluateForecast(forecast.Current, forecast.Value)
		if err != nil {
			log.Warnf("Could not quantify forecast: %v", err)
			continue
		}
		notifyForecast(result, notify, forecast, messenger, reminder)
	}
}

/*
 * Sends the alert for a new forecast level change and keeps reminding while it lasts.
 * Reminders end as soon as the forecast is back in the current level.
 */
func notifyForecast(result quantifierPkg.QuantificationResult, notify bool, forecast predictor.Forecast,
	messenger *messengerPkg.Messenger, reminder *reminderPkg.Reminder) {

	if notify {
		messenger.SendForecastAlert(result, forecast)
		reminder.Set(result)
		return
	}
	if result.LevelDirection == 0 {
		reminder.Stop()
	}
	log.Debugln("Forecast level change already reported or no change. No need to notify.")
}
