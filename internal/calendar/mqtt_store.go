package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"voicetasks/internal/config"
)

const (
	mqttQoS         = 1
	mqttWaitTimeout = 10 * time.Second
	// retained state normally arrives right after subscribing
	mqttStateWait   = 5 * time.Second
)

// Permission states reported by the device
const (
	PermissionGranted      = "granted"
	PermissionDenied       = "denied"
	PermissionUndetermined = "undetermined"
)

var errBridgeOffline = errors.New("device bridge not connected")

// broker is the part of mqtt.Client the store uses.
type broker interface {
	IsConnected() bool
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// DeviceState is the retained message a device publishes on <prefix>/calendars.
type DeviceState struct {
	Permission        string     `json:"permission"`
	DefaultCalendarID string     `json:"defaultCalendarId,omitempty"`
	Calendars         []Calendar `json:"calendars"`
}

type eventMessage struct {
	EventID string `json:"eventId"`
	EventRequest
}

// MQTTStore writes events to a device calendar over an MQTT bridge.
type MQTTStore struct {
	client      broker
	stateTopic  string
	eventsTopic string
	timeout     time.Duration
	stateWait   time.Duration

	mu        sync.RWMutex
	state     *DeviceState
	ready     chan struct{}
	readyOnce sync.Once
}

// ConnectMQTT dials the configured broker.
func ConnectMQTT(cfg *config.Config) (mqtt.Client, error) {
	if cfg.MQTTBroker == "" {
		return nil, errors.New("MQTT_BROKER is not set")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetUsername(cfg.MQTTUsername)
	opts.SetPassword(cfg.MQTTPassword)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Println("[Calendar] MQTT client connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("[Calendar] MQTT connection lost: %v", err)
	})
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(mqttWaitTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttWaitTimeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", cfg.MQTTBroker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	log.Println("[Calendar] Connected to MQTT broker:", cfg.MQTTBroker)
	return client, nil
}

// NewMQTTStore subscribes to the device state topic under prefix.
func NewMQTTStore(client broker, prefix string) (*MQTTStore, error) {
	s := &MQTTStore{
		client:      client,
		stateTopic:  prefix + "/calendars",
		eventsTopic: prefix + "/events",
		timeout:     mqttWaitTimeout,
		stateWait:   mqttStateWait,
		ready:       make(chan struct{}),
	}

	token := client.Subscribe(s.stateTopic, mqttQoS, s.handleState)
	if !token.WaitTimeout(s.timeout) {
		return nil, fmt.Errorf("timed out subscribing to %s", s.stateTopic)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.stateTopic, err)
	}

	log.Printf("[Calendar] Subscribed to device state topic: %s", s.stateTopic)
	return s, nil
}

func (s *MQTTStore) Name() string { return "mqtt" }

func (s *MQTTStore) handleState(_ mqtt.Client, msg mqtt.Message) {
	var state DeviceState
	if err := json.Unmarshal(msg.Payload(), &state); err != nil {
		log.Printf("[Calendar] Ignoring malformed device state on %s: %v", msg.Topic(), err)
		return
	}

	s.mu.Lock()
	s.state = &state
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	log.Printf("[Calendar] Device state updated: permission=%s, %d calendar(s)", state.Permission, len(state.Calendars))
}

func (s *MQTTStore) snapshot() (*DeviceState, error) {
	if !s.client.IsConnected() {
		return nil, errBridgeOffline
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, nil
	}
	st := *s.state
	st.Calendars = append([]Calendar(nil), s.state.Calendars...)
	return &st, nil
}

// waitForState blocks until the device has reported once or stateWait elapses.
func (s *MQTTStore) waitForState(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	default:
	}

	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.stateWait):
		log.Printf("[Calendar] No device state on %s after %v", s.stateTopic, s.stateWait)
		return nil
	}
}

// RequestPermission reports the permission last published by the device.
// It gives a freshly subscribed store a moment to receive the retained state;
// a device that still has not reported counts as not granted.
func (s *MQTTStore) RequestPermission(ctx context.Context) (bool, error) {
	if !s.client.IsConnected() {
		return false, errBridgeOffline
	}
	if err := s.waitForState(ctx); err != nil {
		return false, err
	}
	st, err := s.snapshot()
	if err != nil {
		return false, err
	}
	if st == nil {
		return false, nil
	}
	return st.Permission == PermissionGranted, nil
}

func (s *MQTTStore) DefaultCalendar(ctx context.Context) (*Calendar, error) {
	st, err := s.snapshot()
	if err != nil || st == nil || st.DefaultCalendarID == "" {
		return nil, err
	}
	for _, c := range st.Calendars {
		if c.ID == st.DefaultCalendarID {
			cal := c
			return &cal, nil
		}
	}
	return nil, nil
}

func (s *MQTTStore) Calendars(ctx context.Context) ([]Calendar, error) {
	st, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, nil
	}
	return st.Calendars, nil
}

// CreateEvent publishes the event at QoS 1 and waits for the broker to acknowledge it.
func (s *MQTTStore) CreateEvent(ctx context.Context, req EventRequest) (string, error) {
	if !s.client.IsConnected() {
		return "", errBridgeOffline
	}

	msg := eventMessage{EventID: uuid.NewString(), EventRequest: req}
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	token := s.client.Publish(s.eventsTopic, mqttQoS, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.timeout):
		return "", fmt.Errorf("timed out publishing event to %s", s.eventsTopic)
	}
	if err := token.Error(); err != nil {
		return "", fmt.Errorf("failed to publish event: %w", err)
	}

	return msg.EventID, nil
}
