package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/jgoulah/epichart/internal/config"
	"github.com/jgoulah/epichart/pkg/models"
)

// Publisher sends render reports to MQTT and/or Home Assistant
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
	http        *http.Client
	log         logrus.FieldLogger
}

// New creates a new publisher. At least one of MQTT or Home Assistant must be enabled.
func New(mqttCfg config.MQTTConfig, haCfg config.HAConfig, log logrus.FieldLogger) (*Publisher, error) {
	if !mqttCfg.Enabled && !haCfg.Enabled {
		return nil, fmt.Errorf("neither MQTT nor Home Assistant is enabled in config")
	}

	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	p := &Publisher{
		topicPrefix: mqttCfg.GetTopicPrefix(),
		haConfig:    haCfg,
		http:        &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}

	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("epichart")
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		p.client = mqtt.NewClient(opts)
		if token := p.client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
		log.WithField("broker", mqttCfg.Broker).Debug("connected to MQTT broker")
	}

	return p, nil
}

// Payload is the JSON document published for a report
type Payload struct {
	City                 string `json:"city"`
	Date                 string `json:"date"`
	Positive             int    `json:"positive"`
	Confirmed            int    `json:"confirmed"`
	Asymptomatic         int    `json:"asymptomatic"`
	ConfirmedFromRisk    int    `json:"confirmed_from_risk"`
	AsymptomaticFromRisk int    `json:"asymptomatic_from_risk"`
	Severe               int    `json:"severe"`
	Critical             int    `json:"critical"`
	Death                int    `json:"death"`
	InHospital           int    `json:"in_hospital"`
	RunID                string `json:"run_id"`
	RenderedAt           string `json:"rendered_at"`
}

// NewPayload converts a report to its published form
func NewPayload(r models.Report) Payload {
	return Payload{
		City:                 r.City,
		Date:                 r.LatestDate.Format("2006-01-02"),
		Positive:             r.Positive(),
		Confirmed:            r.Confirmed,
		Asymptomatic:         r.Asymptomatic,
		ConfirmedFromRisk:    r.ConfirmedFromRisk,
		AsymptomaticFromRisk: r.AsymptomaticFromRisk,
		Severe:               r.Severe,
		Critical:             r.Critical,
		Death:                r.Death,
		InHospital:           r.InHospital,
		RunID:                r.RunID,
		RenderedAt:           r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Topic returns the retained MQTT topic of a city
func Topic(prefix, city string) string {
	return fmt.Sprintf("%s/%s/state", strings.TrimSuffix(prefix, "/"), city)
}

// EntityID returns the Home Assistant entity of a city, e.g. sensor.epichart_shanghai
func EntityID(base, city string) string {
	return base + "_" + strings.ReplaceAll(city, "-", "_")
}

// HAState matches the body of the Home Assistant states API
type HAState struct {
	State      string  `json:"state"`
	Attributes Payload `json:"attributes"`
}

// Publish sends a report to every enabled destination
func (p *Publisher) Publish(ctx context.Context, r models.Report) error {
	payload := NewPayload(r)

	if p.client != nil {
		if err := p.publishMQTT(payload); err != nil {
			return err
		}
	}
	if p.haConfig.Enabled {
		if err := p.publishHA(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishMQTT(payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	topic := Topic(p.topicPrefix, payload.City)
	token := p.client.Publish(topic, 1, true, body)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	p.log.WithField("topic", topic).Debug("published report")
	return nil
}

func (p *Publisher) publishHA(ctx context.Context, payload Payload) error {
	entity := EntityID(p.haConfig.EntityID, payload.City)
	apiURL := fmt.Sprintf("%s/api/states/%s", strings.TrimSuffix(p.haConfig.URL, "/"), entity)

	body, err := json.Marshal(HAState{
		State:      fmt.Sprintf("%d", payload.Positive),
		Attributes: payload,
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	// 200 updates an existing entity, 201 creates it
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	p.log.WithField("entity", entity).Debug("published report")
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
