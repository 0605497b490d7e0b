/*
 * Adc:
 * Reads raw moisture values from an ADS1115 converter on the local I2C bus.
 * Used when the probe is wired to the device instead of sending over TTN.
 */

package adc

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	DefaultAddress = 0x48

	regConversion = 0x00
	regConfig     = 0x01

	// Single shot, AIN0 against GND, +-4.096V, 128 samples per second, comparator off.
	configSingleShotAIN0 = 0xC383

	conversionTime = 10 * time.Millisecond
	maxTxAttempts  = 3
	txRetryDelay   = 100 * time.Millisecond
)

var sleepFn = time.Sleep

type Adc struct {
	dev *i2c.Dev
	bus i2c.BusCloser
}

// Open initializes the host drivers and opens the named I2C bus ("" for the first one).
func Open(busName string, address uint16) (*Adc, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	a := New(bus, address)
	a.bus = bus
	return a, nil
}

func New(bus i2c.Bus, address uint16) *Adc {
	if address == 0 {
		address = DefaultAddress
	}
	return &Adc{dev: &i2c.Dev{Bus: bus, Addr: address}}
}

// Read makes one conversion and returns the raw value. Negative readings are clamped to 0.
func (a *Adc) Read() (int, error) {
	var raw int
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		raw, err = a.readAttempt()
		if err == nil {
			return raw, nil
		}
		log.Debugf("ADC: read attempt %d failed: %v", attempt, err)
		sleepFn(txRetryDelay)
	}
	return 0, err
}

func (a *Adc) readAttempt() (int, error) {
	if _, err := a.dev.Write([]byte{regConfig, configSingleShotAIN0 >> 8, configSingleShotAIN0 & 0xFF}); err != nil {
		return 0, err
	}
	sleepFn(conversionTime)

	data := make([]byte, 2)
	if err := a.dev.Tx([]byte{regConversion}, data); err != nil {
		return 0, err
	}
	raw := int(int16(uint16(data[0])<<8 | uint16(data[1])))
	if raw < 0 {
		raw = 0
	}
	return raw, nil
}

/*
 * Samples every interval and puts the raw values into rawValueChannel
 * until ctx is done. Failed reads are logged and skipped.
 */
func (a *Adc) Run(ctx context.Context, interval time.Duration, rawValueChannel chan<- int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		raw, err := a.Read()
		if err != nil {
			log.Errorf("ADC: could not read sensor: %v", err)
		} else {
			select {
			case rawValueChannel <- raw:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *Adc) Close() error {
	if a.bus == nil {
		return nil
	}
	return a.bus.Close()
}
