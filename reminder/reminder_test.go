package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thomas-leister.de/plantforecast/quantifier"
)

type notifierMock struct {
	reminders chan quantifier.QuantificationResult
}

func (n *notifierMock) SendForecastReminder(result quantifier.QuantificationResult) {
	n.reminders <- result
}

func newReminder() (*Reminder, *notifierMock) {
	notifier := &notifierMock{reminders: make(chan quantifier.QuantificationResult, 100)}
	r := Reminder{}
	r.Init(notifier)
	return &r, notifier
}

func resultWithInterval(name string, interval time.Duration) quantifier.QuantificationResult {
	return quantifier.QuantificationResult{
		Current:        quantifier.QuantificationLevel{Name: "normal"},
		Forecast:       quantifier.QuantificationLevel{Name: name, NotificationInterval: interval},
		LevelDirection: -1,
	}
}

func waitForReminder(t *testing.T, notifier *notifierMock) quantifier.QuantificationResult {
	select {
	case result := <-notifier.reminders:
		return result
	case <-time.After(time.Second):
		t.Fatal("no reminder sent")
	}
	return quantifier.QuantificationResult{}
}

func TestReminderRepeatsUntilStopped(t *testing.T) {
	r, notifier := newReminder()

	r.Set(resultWithInterval("low", 10*time.Millisecond))
	require.True(t, r.Running())
	require.Equal(t, "low", waitForReminder(t, notifier).Forecast.Name)
	require.Equal(t, "low", waitForReminder(t, notifier).Forecast.Name)

	r.Stop()
	require.False(t, r.Running())

	// The loop has quit, drain what was sent before and expect silence.
	for len(notifier.reminders) > 0 {
		<-notifier.reminders
	}
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, notifier.reminders)
}

func TestSetReplacesRunningReminder(t *testing.T) {
	r, notifier := newReminder()
	defer r.Stop()

	r.Set(resultWithInterval("low", time.Hour))
	r.Set(resultWithInterval("high", 10*time.Millisecond))

	require.Equal(t, "high", waitForReminder(t, notifier).Forecast.Name)
}

func TestSetWithoutIntervalStartsNoLoop(t *testing.T) {
	r, notifier := newReminder()

	r.Set(resultWithInterval("low", 10*time.Millisecond))
	r.Set(resultWithInterval("normal", 0))
	require.False(t, r.Running())

	for len(notifier.reminders) > 0 {
		<-notifier.reminders
	}
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, notifier.reminders)
}

func TestStopWithoutReminder(t *testing.T) {
	r, _ := newReminder()
	r.Stop()
	require.False(t, r.Running())
}
