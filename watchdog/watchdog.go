/*
 * Watchdog: Observes sensor data and notifies users if
 * no new sensor data has been received for a certain time.
 */

package watchdog

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"thomas-leister.de/plantforecast/configmanager"
)

type Notifier interface {
	SendSensorWarning(timeout time.Duration)
}

type Watchdog struct {
	Notifier Notifier
	Timeout  time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func (w *Watchdog) Init(config *configmanager.Config, notifier Notifier) {
	log.Println("Initializing watchdog ...")

	w.Timeout = time.Duration(config.Watchdog.Timeout) * time.Second
	w.Notifier = notifier
}

/*
 * Resets timer and starts it on first use.
 * This function should be called whenever a new sensor value has arrived.
 * If no further value follows in time, the timer will trigger.
 * A zero timeout disables the watchdog.
 */
func (w *Watchdog) Reset() {
	if w.Timeout <= 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer == nil {
		w.timer = time.AfterFunc(w.Timeout, func() {
			log.Warn("Watchdog triggered!")
			w.Notifier.SendSensorWarning(w.Timeout)
		})
		return
	}
	w.timer.Stop()
	w.timer.Reset(w.Timeout)
}

func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}
