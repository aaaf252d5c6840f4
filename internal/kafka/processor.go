// Package kafka wires the service to Kafka: the broker dialer and transport
// shared by the audit producer, and the consumer of hospital request events.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/events/modules/requests"
)

// Config holds the broker and credential settings
type Config struct {
	Brokers      []string
	Username     string
	Password     string
	RequestTopic string
	GroupID      string
}

func (c Config) secure() bool {
	return c.Username != "" && c.Password != ""
}

// NewDialer returns a dialer, configured for SASL/PLAIN over TLS when credentials are set
func NewDialer(cfg Config) *kafka.Dialer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.secure() {
		dialer.SASLMechanism = plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return dialer
}

// NewTransport returns the writer transport. It is nil (the kafka-go default)
// unless credentials are set.
func NewTransport(cfg Config) kafka.RoundTripper {
	if !cfg.secure() {
		return nil
	}
	return &kafka.Transport{
		SASL: plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		},
		TLS:         &tls.Config{MinVersion: tls.VersionTLS12},
		DialTimeout: 10 * time.Second,
	}
}

// RunEventProcessor checks the brokers are reachable and then consumes hospital
// request events in the background until ctx is cancelled.
func RunEventProcessor(ctx context.Context, cfg Config, sink requests.RequestSink, logger *zap.Logger) error {
	if len(cfg.Brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	dialer := NewDialer(cfg)

	var err error
	// Retry logic: 3 tries
	for i := 1; i <= 3; i++ {
		logger.Info("Kafka connection attempt", zap.Int("attempt", i), zap.Int("of", 3))
		var conn *kafka.Conn
		conn, err = dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
		if err == nil {
			conn.Close()
			break
		}
		if i < 3 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.RequestTopic,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	go func() {
		defer reader.Close()

		logger.Info("Kafka Event Processor started. Listening for hospital request events...", zap.String("topic", cfg.RequestTopic))

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Failed to read hospital request event", zap.Error(err))
				continue
			}
			if err := requests.HandleHospitalRequestCreated(ctx, msg.Value, sink, logger); err != nil {
				logger.Error("Dropped hospital request event",
					zap.Int64("offset", msg.Offset), zap.Int("partition", msg.Partition), zap.Error(err))
			}
		}
	}()

	return nil
}
