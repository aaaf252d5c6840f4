package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewTransport(t *testing.T) {
	assert.Nil(t, NewTransport(Config{}))

	rt := NewTransport(Config{Username: "key", Password: "secret"})
	tr, ok := rt.(*kafka.Transport)
	assert.True(t, ok)
	assert.NotNil(t, tr.SASL)
	assert.NotNil(t, tr.TLS)
}

func TestNewDialer(t *testing.T) {
	d := NewDialer(Config{})
	assert.Nil(t, d.SASLMechanism)
	assert.Nil(t, d.TLS)

	d = NewDialer(Config{Username: "key", Password: "secret"})
	assert.NotNil(t, d.SASLMechanism)
	assert.NotNil(t, d.TLS)
}

func TestRunEventProcessorRequiresBrokers(t *testing.T) {
	err := RunEventProcessor(context.Background(), Config{}, nil, zap.NewNop())
	assert.ErrorContains(t, err, "no kafka brokers")
}
