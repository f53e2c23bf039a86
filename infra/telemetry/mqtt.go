// Package telemetry provides the MQTT implementation of the step
// publisher.
package telemetry

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/h2fleet/h2fleet/core/logger"
	"github.com/h2fleet/h2fleet/core/metrics"
	infralog "github.com/h2fleet/h2fleet/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Topic      string `json:"topic"`
	QoS        byte   `json:"qos"`
	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`
}

// pahoClient is the subset of the Paho API the publisher uses; tests
// substitute a fake.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTPublisher streams step records to an MQTT broker as JSON, one
// message per step under <topic>/<run-id>/step.
type MQTTPublisher struct {
	cli   pahoClient
	topic string
	qos   byte
	runID string
	log   logger.Logger
}

// New connects to the broker and returns a publisher tagged with a
// fresh run ID.
func New(cfg Config) (*MQTTPublisher, error) {
	if cfg.Topic == "" {
		cfg.Topic = "h2fleet"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "h2fleet-" + uuid.NewString()[:8]
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second)

	if cfg.UseTLS {
		tlsCfg, err := newTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect: %w", token.Error())
	}

	return &MQTTPublisher{
		cli:   cli,
		topic: cfg.Topic,
		qos:   cfg.QoS,
		runID: uuid.NewString(),
		log:   infralog.New("mqtt-telemetry"),
	}, nil
}

func newTLSConfig(cfg Config) (*tls.Config, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CABundle != "" {
		ca, err := os.ReadFile(cfg.CABundle)
		if err != nil {
			return nil, fmt.Errorf("telemetry: read ca bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, fmt.Errorf("telemetry: invalid ca bundle %s", cfg.CABundle)
		}
		tlsCfg.RootCAs = pool
	}
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("telemetry: load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return tlsCfg, nil
}

// RunID returns the identifier embedded in the publish topic.
func (p *MQTTPublisher) RunID() string { return p.runID }

// PublishStep marshals the record and publishes it.
func (p *MQTTPublisher) PublishStep(rec metrics.StepRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%s/step", p.topic, p.runID)
	token := p.cli.Publish(topic, p.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		p.log.Errorf("publish step %d: %v", rec.Step, token.Error())
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	p.cli.Disconnect(250)
	return nil
}
