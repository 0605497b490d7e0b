/*
 * Messenger package:
 * Translates forecast level changes into text / GIF messages and sends them to XmppManager.
 * Also answers status requests from known recipients.
 */
package messenger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"thomas-leister.de/plantforecast/configmanager"
	"thomas-leister.de/plantforecast/predictor"
	"thomas-leister.de/plantforecast/quantifier"
	"thomas-leister.de/plantforecast/xmppmanager"
)

type GifSource interface {
	GetGifURL(keywords string) (string, error)
}

type Messenger struct {
	XmppMessageOutChannel chan<- interface{}
	XmppMessageInChannel  <-chan xmppmanager.XmppInMessage
	GifSource             GifSource
	Recipients            []string

	mu           sync.Mutex
	lastForecast *predictor.Forecast
}

/*
 * Init messenger and set
 * - xmpp channels to use
 * - GIF source to use (may be nil)
 */
func (m *Messenger) Init(config *configmanager.Config, xmppMessageOutChannel chan<- interface{}, xmppMessageInChannel <-chan xmppmanager.XmppInMessage, gifSource GifSource) {
	m.XmppMessageOutChannel = xmppMessageOutChannel
	m.XmppMessageInChannel = xmppMessageInChannel
	m.GifSource = gifSource
	m.Recipients = config.Xmpp.Recipients
}

func percent(value float64) string {
	return fmt.Sprintf("%.0f %%", value*100)
}

/*
 * Builds the alert text for a forecast that leaves the current level.
 */
func (m *Messenger) GetForecastMessage(result quantifier.QuantificationResult, forecast predictor.Forecast) string {
	text := result.Forecast.ChatMessageForecast
	if text == "" {
		text = fmt.Sprintf("Moisture is heading for level %q.", result.Forecast.Name)
	}
	return fmt.Sprintf("%s \nBodenfeuchte: %s, erwartet: %s", text, percent(forecast.Current), percent(forecast.Value))
}

/*
 * Sends the forecast alert and, if the target level has GIF keywords, a GIF.
 */
func (m *Messenger) SendForecastAlert(result quantifier.QuantificationResult, forecast predictor.Forecast) {
	textMessage := m.GetForecastMessage(result, forecast)
	log.Printf("Sending message: %q", textMessage)
	m.XmppMessageOutChannel <- xmppmanager.XmppTextMessage(textMessage)

	if result.Forecast.GifKeywords == "" || m.GifSource == nil {
		return
	}
	gifUrl, err := m.GifSource.GetGifURL(result.Forecast.GifKeywords)
	if err != nil {
		log.Printf("Could not retrieve GIF URL for %q: %v", result.Forecast.GifKeywords, err)
		return
	}
	if gifUrl != "" {
		m.XmppMessageOutChannel <- xmppmanager.XmppGifMessage(gifUrl)
	}
}

/*
 * Repeats the warning for a forecast level that did not change since the alert.
 * Uses the latest known forecast for the numbers.
 */
func (m *Messenger) SendForecastReminder(result quantifier.QuantificationResult) {
	text := result.Forecast.ChatMessageReminder
	if text == "" {
		text = result.Forecast.ChatMessageForecast
	}
	if text == "" {
		text = fmt.Sprintf("Moisture is still heading for level %q.", result.Forecast.Name)
	}

	m.mu.Lock()
	if m.lastForecast != nil {
		text = fmt.Sprintf("%s \nBodenfeuchte: %s, erwartet: %s", text, percent(m.lastForecast.Current), percent(m.lastForecast.Value))
	}
	m.mu.Unlock()

	log.Printf("Sending reminder: %q", text)
	m.XmppMessageOutChannel <- xmppmanager.XmppTextMessage(text)
}

// Called by the watchdog if no sensor value arrived in time.
func (m *Messenger) SendSensorWarning(timeout time.Duration) {
	m.XmppMessageOutChannel <- xmppmanager.XmppTextMessage(fmt.Sprintf("No sensor value received for %s. Is the sensor still alive?", timeout))
}

// Remembers the latest forecast for status requests.
func (m *Messenger) UpdateStatus(forecast predictor.Forecast) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastForecast = &forecast
}

func (m *Messenger) GetStatusMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastForecast == nil {
		return "No forecast yet, still collecting sensor values."
	}
	return fmt.Sprintf("Bodenfeuchte: %s, erwartet: %s", percent(m.lastForecast.Current), percent(m.lastForecast.Value))
}

func (m *Messenger) isRecipient(jid string) bool {
	for _, recipient := range m.Recipients {
		if strings.EqualFold(recipient, jid) {
			return true
		}
	}
	return false
}

/*
 * Responds to incoming XMPP messages of known recipients with the current status.
 * Runs until the in channel is closed.
 */
func (m *Messenger) ResponderLoop() {
	for inMessage := range m.XmppMessageInChannel {
		sender, err := senderFromToJID(inMessage.From)
		if err != nil {
			log.Println("Messenger: ", err)
			continue
		}
		if !m.isRecipient(sender) {
			log.Printf("Messenger: ignoring message from unknown sender %s", sender)
			continue
		}

		log.Printf("Messenger: status request from %s", sender)
		m.XmppMessageOutChannel <- xmppmanager.XmppTextMessage(m.GetStatusMessage())
	}
}
