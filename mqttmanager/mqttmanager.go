/*
 * MqttManager:
 * Receives raw sensor values from the TTN uplink topic
 * and publishes current reading and forecast for other consumers.
 */

package mqttmanager

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"thomas-leister.de/plantforecast/configmanager"
	"thomas-leister.de/plantforecast/predictor"
)

type MqttClient struct {
	Host          string
	Port          int
	Username      string
	Password      string
	Topic         string
	ForecastTopic string
	client        mqtt.Client
}

type MqttDecodedPayload struct {
	MoistureRaw uint16 `json:"moisture_raw"`
}

type MqttUplinkMessage struct {
	DecodedPayload MqttDecodedPayload `json:"decoded_payload"` //decoded_payload stores the already-decoded payload from TTN
}

type MqttPayload struct {
	UplinkMessage MqttUplinkMessage `json:"uplink_message"`
}

// Published on the forecast topic after every prediction cycle.
type ForecastPayload struct {
	Timestamp time.Time `json:"timestamp"`
	Current   float64   `json:"current"`
	Forecast  float64   `json:"forecast"`
	Delta     float64   `json:"delta"`
}

func ParsePayload(payload []byte) (MqttPayload, error) {
	var mqttPayload MqttPayload

	if err := json.Unmarshal(payload, &mqttPayload); err != nil {
		return mqttPayload, fmt.Errorf("could not decode uplink message: %w", err)
	}
	return mqttPayload, nil
}

func EncodeForecast(forecast predictor.Forecast, timestamp time.Time) ([]byte, error) {
	return json.Marshal(ForecastPayload{
		Timestamp: timestamp,
		Current:   forecast.Current,
		Forecast:  forecast.Value,
		Delta:     forecast.Delta,
	})
}

func (m *MqttClient) ConnectHandler(client mqtt.Client) {
	log.Printf("MQTT: Connected to %s", m.Host)
}

func (m *MqttClient) ConnectLostHandler(client mqtt.Client, err error) {
	log.Printf("MQTT: Connection lost: %v", err)
}

func (m *MqttClient) Init(config *configmanager.Config) {
	m.Host = config.Mqtt.Host
	m.Port = config.Mqtt.Port
	m.Username = config.Mqtt.Username
	m.Password = config.Mqtt.Password
	m.Topic = config.Mqtt.Topic
	m.ForecastTopic = config.Mqtt.ForecastTopic
}

func (m *MqttClient) newClientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()

	// Set options for connection
	opts.AddBroker(fmt.Sprintf("mqtts://%s:%d", m.Host, m.Port))
	opts.SetClientID("go_mqtt_plantforecast")
	opts.SetUsername(m.Username)
	opts.SetPassword(m.Password)
	opts.SetAutoReconnect(true)

	// Set callback functions
	opts.OnConnect = m.ConnectHandler
	opts.OnConnectionLost = m.ConnectLostHandler
	return opts
}

func (m *MqttClient) connect(opts *mqtt.ClientOptions) error {
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	m.client = client
	return nil
}

/*
 * Connects to the broker and subscribes to the uplink topic.
 * Every decodable uplink message puts its raw moisture value into rawValueChannel.
 * Broken messages are logged and dropped.
 */
func (m *MqttClient) RunMQTTListener(rawValueChannel chan<- int) error {
	opts := m.newClientOptions()
	opts.SetDefaultPublishHandler(func(c mqtt.Client, msg mqtt.Message) {
		payload, err := ParsePayload(msg.Payload())
		if err != nil {
			log.Warnf("MQTT: Dropping message on %s: %v", msg.Topic(), err)
			return
		}
		log.Println("Received new sensor value via MQTT!")
		rawValueChannel <- int(payload.UplinkMessage.DecodedPayload.MoistureRaw)
	})

	if err := m.connect(opts); err != nil {
		return err
	}

	// Subscribe to topic
	if token := m.client.Subscribe(m.Topic, 1, nil); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe to %s: %w", m.Topic, token.Error())
	}
	log.Printf("MQTT: Subscribed to topic %s", m.Topic)
	return nil
}

// Connects without subscribing, for publishing forecasts of a locally read sensor.
func (m *MqttClient) RunMQTTPublisher() error {
	return m.connect(m.newClientOptions())
}

/*
 * Publishes a forecast on the forecast topic.
 * Does nothing if no forecast topic is configured or the listener is not connected.
 */
func (m *MqttClient) PublishForecast(forecast predictor.Forecast) error {
	if m.ForecastTopic == "" || m.client == nil {
		return nil
	}

	payload, err := EncodeForecast(forecast, time.Now())
	if err != nil {
		return err
	}

	token := m.client.Publish(m.ForecastTopic, 0, false, payload)
	token.Wait()
	return token.Error()
}

func (m *MqttClient) Disconnect() {
	if m.client != nil {
		m.client.Disconnect(250)
	}
}
