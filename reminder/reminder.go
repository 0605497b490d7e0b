/*
 * Reminder:
 * Implements goroutines with timer for repeating forecast alerts
 * while the forecast stays in a critical moisture level.
 */

package reminder

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"thomas-leister.de/plantforecast/quantifier"
)

type Notifier interface {
	SendForecastReminder(result quantifier.QuantificationResult)
}

type Reminder struct {
	quitChannel   chan bool // Control channel to end reminder loop
	tickerRunning bool
	Notifier      Notifier // Sends the reminder messages

	mu sync.Mutex
	wg sync.WaitGroup
}

/*
 * Reminder Notification Loop:
 * Is running as a Goroutine if a ticker / reminder is active.
 * Is _not_ running if no reminder is running.
 * Goroutine / ticker can be quit by putting "true" into quitChannel
 */
func (r *Reminder) reminderNotificationLoop(quitChannel chan bool, notificationInterval time.Duration, result quantifier.QuantificationResult) {
	log.Println("Reminder: Started reminder loop")

	ticker := time.NewTicker(notificationInterval)
	defer r.wg.Done()

	for {
		select {
		case <-quitChannel:
			ticker.Stop()
			log.Println("Reminder: Ticker stopped. Quitting goroutine ...")
			return
		case <-ticker.C:
			log.Printf("Reminder: Forecast still in level %s, reminding user ...", result.Forecast.Name)
			r.Notifier.SendForecastReminder(result)
		}
	}
}

func (r *Reminder) Init(notifier Notifier) {
	log.Println("Reminder: Initializing reminder ...")

	r.Notifier = notifier
	r.quitChannel = make(chan bool)
}

/*
 * Stop any running reminder
 * and launch a new reminder goroutine for the forecast level of result.
 * Levels without a notification interval get no reminder.
 */
func (r *Reminder) Set(result quantifier.QuantificationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stop()

	interval := result.Forecast.NotificationInterval
	if interval <= 0 {
		log.Debugf("Reminder: No reminders for level %s", result.Forecast.Name)
		return
	}

	log.Printf("Reminder: Creating a new reminder goroutine (every %s)", interval)
	r.wg.Add(1)
	go r.reminderNotificationLoop(r.quitChannel, interval, result)
	r.tickerRunning = true
}

/*
 * Just stop the reminder Goroutine
 * and don't start a new one.
 */
func (r *Reminder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stop()
}

func (r *Reminder) stop() {
	if !r.tickerRunning {
		return
	}
	log.Println("Reminder: Stopping current reminder goroutine")
	r.quitChannel <- true

	// Wait until goroutine has quit
	r.wg.Wait()
	r.tickerRunning = false
	log.Println("Reminder: Reminder goroutine was quit")
}

// Running reports whether a reminder loop is active.
func (r *Reminder) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickerRunning
}
