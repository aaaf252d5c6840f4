// Package services holds the blood-bank administration and audit business logic.
package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/metrics"
)

type common struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func defaultCommon() common {
	return common{
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// Option configures a service.
type Option func(*common)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *common) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *common) {
		c.metrics = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *common) {
		if now != nil {
			c.now = now
		}
	}
}

func applyOptions(opts []Option) common {
	c := defaultCommon()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// stamp returns the current time at stored precision.
func (c *common) stamp() time.Time {
	return c.now().UTC().Truncate(time.Millisecond)
}
